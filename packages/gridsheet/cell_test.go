package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferDataType(t *testing.T) {
	tests := map[string]DataType{
		"":           DataTypeText,
		"hello":      DataTypeText,
		"42":         DataTypeNumber,
		"-3.25":      DataTypeNumber,
		" 7 ":        DataTypeNumber,
		"1e3":        DataTypeNumber,
		"NaN":        DataTypeText,
		"Inf":        DataTypeText,
		"12abc":      DataTypeText,
		"1/2/2024":   DataTypeDate,
		"12/31/1999": DataTypeDate,
		"2024-01-31": DataTypeDate,
		"2024-1-31":  DataTypeText,
		"=1+2":       DataTypeText,
	}
	for raw, want := range tests {
		assert.Equal(t, want, InferDataType(raw), "InferDataType(%q)", raw)
	}
}

func TestIsFormula(t *testing.T) {
	assert.True(t, IsFormula("=A1"))
	assert.True(t, IsFormula("="))
	assert.False(t, IsFormula(" =A1"))
	assert.False(t, IsFormula("A1"))
}

func TestStyleClone(t *testing.T) {
	assert.Nil(t, Style(nil).Clone())
	assert.Nil(t, Style{}.Clone())

	s := Style{"fontWeight": "bold"}
	clone := s.Clone()
	clone["color"] = "red"
	assert.Len(t, s, 1)
	assert.Equal(t, "bold", clone["fontWeight"])
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "text", DataTypeText.String())
	assert.Equal(t, "number", DataTypeNumber.String())
	assert.Equal(t, "date", DataTypeDate.String())
	assert.Equal(t, "formula", DataTypeFormula.String())
}
