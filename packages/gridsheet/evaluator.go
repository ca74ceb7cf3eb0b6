package gridsheet

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// Primitive represents a value produced while evaluating a formula.
// types:
//   - float64: numeric values
//   - string: text values
//   - nil: empty cells
//   - *rangeValue: a block of cells passed to an aggregate
type Primitive any

// Snapshot is the read-only view of the grid a formula is evaluated
// against. Content returns the cached display content of a cell.
type Snapshot interface {
	Content(c Coord) (string, bool)
	Bounds() (rows, cols int)
}

// EvalContext carries the snapshot through one evaluation call
type EvalContext struct {
	snapshot Snapshot
	rows     int
	cols     int
}

func newEvalContext(snapshot Snapshot) *EvalContext {
	rows, cols := snapshot.Bounds()
	return &EvalContext{snapshot: snapshot, rows: rows, cols: cols}
}

func (ctx *EvalContext) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < ctx.rows && c.Col < ctx.cols
}

// value reads a cell as a primitive: numbers become float64, empty cells nil.
func (ctx *EvalContext) value(c Coord) (Primitive, error) {
	content, ok := ctx.snapshot.Content(c)
	if !ok || content == "" {
		return nil, nil
	}
	if content == ErrorDisplay {
		return nil, NewEvaluationError(TypeMismatch, fmt.Sprintf("%s holds an error", ToLabel(c)))
	}
	if num, ok := parseNumber(content); ok {
		return num, nil
	}
	return content, nil
}

// rangeValue is the lazy result of a RangeNode
type rangeValue struct {
	bounds Range
	ctx    *EvalContext
}

// Values iterates the range's cells in row-major order
func (r *rangeValue) Values() iter.Seq2[Primitive, error] {
	return func(yield func(Primitive, error) bool) {
		for c := range r.bounds.Coords() {
			if !yield(r.ctx.value(c)) {
				return
			}
		}
	}
}

// EvalOption tunes a single evaluation
type EvalOption func(*evalOptions)

type evalOptions struct {
	maxDepth int
}

// WithEvalDepth bounds expression nesting for one call.
func WithEvalDepth(depth int) EvalOption {
	return func(o *evalOptions) {
		o.maxDepth = depth
	}
}

// Compile parses a formula (with or without its leading '=') into an AST.
func Compile(formula string, opts ...EvalOption) (ASTNode, error) {
	o := evalOptions{maxDepth: DefaultMaxFormulaDepth}
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := NewLexer(strings.TrimPrefix(formula, "=")).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, o.maxDepth).Parse()
}

// Evaluate parses and evaluates a formula against a snapshot. the result is
// a float64 or a string; failures are always *EvaluationError.
func Evaluate(formula string, snapshot Snapshot, opts ...EvalOption) (Primitive, error) {
	node, err := Compile(formula, opts...)
	if err != nil {
		return nil, AsEvaluationError(err)
	}
	return evaluateNode(node, snapshot)
}

func evaluateNode(node ASTNode, snapshot Snapshot) (Primitive, error) {
	result, err := node.Eval(newEvalContext(snapshot))
	if err != nil {
		return nil, AsEvaluationError(err)
	}

	switch v := result.(type) {
	case nil:
		return 0.0, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, NewEvaluationError(TypeMismatch, "result is not a finite number")
		}
		return v, nil
	case string:
		return v, nil
	case *rangeValue:
		return nil, NewEvaluationError(TypeMismatch, "a range can only be used inside an aggregate")
	default:
		return nil, NewEvaluationError(TypeMismatch, fmt.Sprintf("unexpected result %T", result))
	}
}

// Display renders an evaluation result as cell content
func Display(value Primitive) string {
	switch v := value.(type) {
	case float64:
		return FormatNumber(v)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// FormatNumber prints a number without trailing zeros, switching to
// exponent form only for very large or very small magnitudes.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toNumber coerces a primitive in a numeric context
func toNumber(value Primitive) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case nil:
		return 0, nil
	case string:
		if num, ok := parseNumber(v); ok {
			return num, nil
		}
		return 0, NewEvaluationError(TypeMismatch, fmt.Sprintf("%q is not a number", v))
	case *rangeValue:
		return 0, NewEvaluationError(TypeMismatch, "a range can only be used inside an aggregate")
	default:
		return 0, NewEvaluationError(TypeMismatch, fmt.Sprintf("unexpected value %T", value))
	}
}
