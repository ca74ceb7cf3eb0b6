package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSnapshot is a fixed grid of contents keyed by label
type mapSnapshot struct {
	cells map[Coord]string
	rows  int
	cols  int
}

func newMapSnapshot(t *testing.T, rows, cols int, contents map[string]string) mapSnapshot {
	t.Helper()
	s := mapSnapshot{cells: make(map[Coord]string, len(contents)), rows: rows, cols: cols}
	for label, content := range contents {
		c, err := FromLabel(label)
		require.NoError(t, err)
		s.cells[c] = content
	}
	return s
}

func (s mapSnapshot) Content(c Coord) (string, bool) {
	content, ok := s.cells[c]
	return content, ok
}

func (s mapSnapshot) Bounds() (rows, cols int) {
	return s.rows, s.cols
}

func TestEvaluateValues(t *testing.T) {
	snapshot := newMapSnapshot(t, 10, 10, map[string]string{
		"A1": "1",
		"A2": "2",
		"A3": "x",
		"B1": "5",
		"B2": " 2.5 ",
		"C1": "hello",
	})

	tests := []struct {
		formula string
		want    Primitive
	}{
		{"=1+2*3", 7.0},
		{"=(1+2)*3", 9.0},
		{"=10/4", 2.5},
		{"=-B1", -5.0},
		{"=--B1", 5.0},
		{"=B1+1", 6.0},
		{"=b1*b2", 12.5},
		{"=D9", 0.0},
		{"=D9+1", 1.0},
		{"=C1", "hello"},
		{`="a ""quoted"" word"`, `a "quoted" word`},
		{`="3"*2`, 6.0},
		{"=SUM(A1:A3)", 3.0},
		{"=SUM(A3:A1)", 3.0},
		{"=SUM(A1:A3, 10, B1)", 18.0},
		{"=AVERAGE(A1:A3)", 1.5},
		{"=COUNT(A1:C3)", 4.0},
		{"=COUNT()", 0.0},
		{"=SUM()", 0.0},
		{"=MIN(A1:B2)", 1.0},
		{"=MAX(A1:B2)", 5.0},
		{"=MIN(A1:A3, -4)", -4.0},
		{"=MAX(E1:E5)", 0.0},
		{"=SUM(A1:A2)*2+AVERAGE(B1:B2)", 9.75},
		{"=1e3", 1000.0},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := Evaluate(tt.formula, snapshot)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	snapshot := newMapSnapshot(t, 10, 10, map[string]string{
		"A1": "1",
		"A2": ErrorDisplay,
		"B1": "text",
	})

	tests := []struct {
		formula string
		kind    ErrorKind
	}{
		{"=10/0", DivisionByZero},
		{"=1/(A1-1)", DivisionByZero},
		{"=1/C5", DivisionByZero},
		{"=AVERAGE(C1:C3)", DivisionByZero},
		{"=AVERAGE(B1:B1)", DivisionByZero},
		{"=Z99", UnresolvedReference},
		{"=K1", UnresolvedReference},
		{"=SUM(A1:A11)", UnresolvedReference},
		{"=A0", UnresolvedReference},
		{"=B1+1", TypeMismatch},
		{"=-B1", TypeMismatch},
		{`="a"*2`, TypeMismatch},
		{"=A2", TypeMismatch},
		{"=A2+1", TypeMismatch},
		{"=SUM(A1:A2)", TypeMismatch},
		{"=A1:B2", TypeMismatch},
		{`=SUM("x")`, TypeMismatch},
		{"=1e308*10", TypeMismatch},
		{"=", SyntaxError},
		{"=1+", SyntaxError},
		{"=NOPE(1)", SyntaxError},
		{"=1 1", SyntaxError},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := Evaluate(tt.formula, snapshot)
			require.Error(t, err)
			assert.Nil(t, got)

			evalErr, ok := err.(*EvaluationError)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tt.kind, evalErr.Kind, evalErr.Error())
		})
	}
}

func TestEvaluateDepthOption(t *testing.T) {
	snapshot := newMapSnapshot(t, 1, 1, nil)

	got, err := Evaluate("=((1))", snapshot, WithEvalDepth(3))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	_, err = Evaluate("=(((1)))", snapshot, WithEvalDepth(3))
	require.Error(t, err)
	assert.Equal(t, SyntaxError, AsEvaluationError(err).Kind)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-7, "-7"},
		{0.5, "0.5"},
		{2.50, "2.5"},
		{1.0 / 3.0, "0.3333333333333333"},
		{123456789, "123456789"},
		{1e20, "100000000000000000000"},
		{1.5e21, "1.5e+21"},
		{1e-7, "1e-07"},
		{0.000001, "0.000001"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "", Display(nil))
	assert.Equal(t, "6", Display(6.0))
	assert.Equal(t, "abc", Display("abc"))
}

func TestAsEvaluationError(t *testing.T) {
	assert.Nil(t, AsEvaluationError(nil))

	original := NewEvaluationError(DivisionByZero, "x")
	assert.Same(t, original, AsEvaluationError(original))

	converted := AsEvaluationError(assert.AnError)
	assert.Equal(t, SyntaxError, converted.Kind)
	assert.Equal(t, "syntax error: "+assert.AnError.Error(), converted.Error())

	assert.Equal(t, "circular reference", NewEvaluationError(CircularReference, "").Error())
}
