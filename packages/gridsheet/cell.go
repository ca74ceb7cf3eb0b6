package gridsheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrorDisplay is the content shown by any formula cell whose evaluation failed.
const ErrorDisplay = "#ERROR!"

// DataType classifies what a cell holds
type DataType uint8

const (
	DataTypeText    DataType = 0
	DataTypeNumber  DataType = 1
	DataTypeDate    DataType = 2
	DataTypeFormula DataType = 3
)

func (d DataType) String() string {
	switch d {
	case DataTypeNumber:
		return "number"
	case DataTypeDate:
		return "date"
	case DataTypeFormula:
		return "formula"
	default:
		return "text"
	}
}

// Style is an opaque bag of presentation attributes. keys are host-defined
// (fontWeight, color, textAlign...) and never interpreted here.
type Style map[string]any

// Clone returns a shallow copy, nil for an empty style.
func (s Style) Clone() Style {
	if len(s) == 0 {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Cell represents a spreadsheet cell with its data and metadata
type Cell struct {
	Content  string           // display string; cached result for formula cells
	Formula  string           // raw formula source, empty unless DataType is formula
	DataType DataType         // inferred from the raw input
	Style    Style            // presentation attributes
	Err      *EvaluationError // last evaluation failure, nil when content is a real result
}

func (c *Cell) isEmpty() bool {
	return c.Formula == "" && c.Content == "" && len(c.Style) == 0
}

func (c *Cell) view() CellView {
	return CellView{
		Content:  c.Content,
		Formula:  c.Formula,
		DataType: c.DataType,
		Style:    c.Style.Clone(),
		Error:    c.Err,
	}
}

// CellView is the read-only projection of a cell handed to callers.
type CellView struct {
	Content  string           `json:"content"`
	Formula  string           `json:"formula,omitempty"`
	DataType DataType         `json:"dataType"`
	Style    Style            `json:"style,omitempty"`
	Error    *EvaluationError `json:"-"`
}

// HasFormula reports whether the view belongs to a formula cell.
func (v CellView) HasFormula() bool {
	return v.DataType == DataTypeFormula
}

var (
	slashDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsFormula reports whether raw input should be stored as a formula.
func IsFormula(raw string) bool {
	return strings.HasPrefix(raw, "=")
}

// InferDataType classifies non-formula input. formula detection is left to
// IsFormula so literal content can be re-typed without ever becoming one.
func InferDataType(raw string) DataType {
	if _, ok := parseNumber(raw); ok {
		return DataTypeNumber
	}
	if slashDatePattern.MatchString(raw) || isoDatePattern.MatchString(raw) {
		return DataTypeDate
	}
	return DataTypeText
}

// parseNumber parses trimmed content as a float. empty input, NaN and the
// infinities are not numbers.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
