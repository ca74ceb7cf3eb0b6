package gridio

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vogtb/go-gridsheet/packages/gridsheet"
	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"
	"go.alis.build/alog"
	"golang.org/x/image/colornames"
)

// workbook default font size, not carried into grid styles
const defaultFontSize = 11

// cellStyle is the subset of a grid style that maps onto an xlsx cell
// format. it is comparable so equal styles share one format id.
type cellStyle struct {
	bold      bool
	italic    bool
	underline bool
	size      float64
	family    string
	color     string
	fill      string
	align     string
}

func (s cellStyle) isZero() bool {
	return s == cellStyle{}
}

// toExcel builds the excelize style. colors are hex without '#'.
func (s cellStyle) toExcel() *excelize.Style {
	style := &excelize.Style{}
	if s.bold || s.italic || s.underline || s.size > 0 || s.family != "" || s.color != "" {
		style.Font = &excelize.Font{
			Bold:   s.bold,
			Italic: s.italic,
			Size:   s.size,
			Family: s.family,
			Color:  s.color,
		}
		if s.underline {
			style.Font.Underline = "single"
		}
	}
	if s.fill != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.fill}}
	}
	if s.align != "" {
		style.Alignment = &excelize.Alignment{Horizontal: s.align}
	}
	return style
}

// styleFromGrid maps the style keys a grid host sets: fontWeight,
// fontStyle, textDecoration, fontSize, fontFamily, color, backgroundColor
// and textAlign. unknown keys and unparseable values are dropped.
func styleFromGrid(s gridsheet.Style) cellStyle {
	var cs cellStyle
	cs.bold = styleString(s, "fontWeight") == "bold"
	cs.italic = styleString(s, "fontStyle") == "italic"
	cs.underline = strings.Contains(styleString(s, "textDecoration"), "underline")
	cs.family = styleString(s, "fontFamily")
	cs.color = hexColor(styleString(s, "color"))
	cs.fill = hexColor(styleString(s, "backgroundColor"))
	switch a := styleString(s, "textAlign"); a {
	case "left", "center", "right":
		cs.align = a
	}
	switch v := s["fontSize"].(type) {
	case float64:
		cs.size = v
	case int:
		cs.size = float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
			cs.size = f
		}
	}
	return cs
}

func styleString(s gridsheet.Style, key string) string {
	v, _ := s[key].(string)
	return strings.TrimSpace(v)
}

// styleToGrid is the inverse of styleFromGrid. defaultFamily is dropped so
// plain cells come back without style keys.
func styleToGrid(style *excelize.Style, defaultFamily string) gridsheet.Style {
	out := gridsheet.Style{}
	if style == nil {
		return out
	}
	if f := style.Font; f != nil {
		if f.Bold {
			out["fontWeight"] = "bold"
		}
		if f.Italic {
			out["fontStyle"] = "italic"
		}
		if f.Underline != "" && f.Underline != "none" {
			out["textDecoration"] = "underline"
		}
		if f.Size > 0 && f.Size != defaultFontSize {
			out["fontSize"] = f.Size
		}
		if f.Family != "" && f.Family != defaultFamily {
			out["fontFamily"] = f.Family
		}
		if c := cssColor(f.Color); c != "" && c != "#000000" {
			out["color"] = c
		}
	}
	if style.Fill.Type == "pattern" && style.Fill.Pattern == 1 && len(style.Fill.Color) > 0 {
		if c := cssColor(style.Fill.Color[0]); c != "" {
			out["backgroundColor"] = c
		}
	}
	if a := style.Alignment; a != nil {
		switch a.Horizontal {
		case "left", "center", "right":
			out["textAlign"] = a.Horizontal
		}
	}
	return out
}

// hexColor turns "#rgb", "#rrggbb" or a CSS color name into six upper-case
// hex digits. anything else yields "".
func hexColor(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "#") {
		c, ok := colornames.Map[strings.ToLower(v)]
		if !ok {
			return ""
		}
		return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
	}
	h := v[1:]
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return ""
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return ""
	}
	return strings.ToUpper(h)
}

// cssColor normalizes an excelize color (RRGGBB or AARRGGBB) to "#rrggbb"
func cssColor(v string) string {
	v = strings.TrimPrefix(v, "#")
	if len(v) == 8 {
		v = v[2:]
	}
	if len(v) != 6 {
		return ""
	}
	return "#" + strings.ToLower(v)
}

// WriteXLSX writes the document as a single-sheet workbook. formulas are
// written as formulas without cached values; numbers in canonical form are
// written as numbers, everything else as text.
func WriteXLSX(ctx context.Context, w io.Writer, doc gridsheet.Document) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			alog.Warnf(ctx, "close workbook: %v", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:      doc.Name,
		Identifier: doc.ID,
		Creator:    "gridsheet",
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	styles := map[cellStyle]int{}
	for r, row := range doc.Rows {
		for c, rec := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := writeXLSXCell(f, sheet, cell, rec.Content); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}

			cs := styleFromGrid(rec.Style)
			if cs.isZero() {
				continue
			}
			id, ok := styles[cs]
			if !ok {
				if id, err = f.NewStyle(cs.toExcel()); err != nil {
					return fmt.Errorf("style %s: %w", cell, err)
				}
				styles[cs] = id
			}
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return fmt.Errorf("style %s: %w", cell, err)
			}
		}
	}

	rows, cols := doc.Dimensions()
	if rows > 0 && cols > 0 {
		last, err := excelize.CoordinatesToCellName(cols, rows)
		if err != nil {
			return err
		}
		if err := f.SetSheetDimension(sheet, "A1:"+last); err != nil {
			return fmt.Errorf("set dimension: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	alog.Debugf(ctx, "wrote xlsx for document %s (%d formats)", doc.ID, len(styles))
	return nil
}

func writeXLSXCell(f *excelize.File, sheet, cell, content string) error {
	switch {
	case content == "":
		return nil
	case gridsheet.IsFormula(content):
		return f.SetCellFormula(sheet, cell, strings.TrimPrefix(content, "="))
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(content), 64); err == nil &&
		gridsheet.InferDataType(content) == gridsheet.DataTypeNumber &&
		gridsheet.FormatNumber(v) == strings.TrimSpace(content) {
		return f.SetCellFloat(sheet, cell, v, -1, 64)
	}
	return f.SetCellStr(sheet, cell, content)
}

// ReadXLSX imports the first sheet of a workbook. formulas the grid can
// evaluate are kept as formulas; others are replaced by their cached value.
func ReadXLSX(ctx context.Context, r io.Reader) (gridsheet.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return gridsheet.Document{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			alog.Warnf(ctx, "close workbook: %v", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return gridsheet.Document{}, ErrEmptyWorkbook
	}
	sheet := sheets[0]

	values, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return gridsheet.Document{}, fmt.Errorf("read %s: %w", sheet, err)
	}

	rows, cols := len(values), 0
	for _, row := range values {
		cols = max(cols, len(row))
	}
	// GetRows trims trailing empty cells, the dimension keeps them
	if ref, err := f.GetSheetDimension(sheet); err == nil && ref != "" {
		parts := strings.Split(ref, ":")
		if c, r, err := excelize.CellNameToCoordinates(parts[len(parts)-1]); err == nil {
			rows, cols = max(rows, r), max(cols, c)
		}
	}

	defaultFamily, _ := f.GetDefaultFont()
	styleCache := map[int]gridsheet.Style{}

	doc := gridsheet.Document{Name: sheet, Rows: make([][]gridsheet.Record, rows)}
	if props, err := f.GetDocProps(); err == nil {
		if props.Title != "" {
			doc.Name = props.Title
		}
		doc.ID = props.Identifier
	}

	var dropped int
	for r := range doc.Rows {
		doc.Rows[r] = make([]gridsheet.Record, cols)
		for c := range doc.Rows[r] {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return gridsheet.Document{}, err
			}

			rec := gridsheet.Record{Style: gridsheet.Style{}}
			if r < len(values) && c < len(values[r]) {
				rec.Content = values[r][c]
			}

			formula, err := f.GetCellFormula(sheet, cell)
			if err != nil {
				return gridsheet.Document{}, fmt.Errorf("read formula %s: %w", cell, err)
			}
			if formula != "" {
				if translated, ok := TranslateFormula(formula); ok {
					rec.Value = rec.Content
					rec.Content = "=" + translated
				} else {
					dropped++
					alog.Debugf(ctx, "xlsx %s!%s: keeping cached value of =%s", sheet, cell, formula)
				}
			}

			id, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return gridsheet.Document{}, fmt.Errorf("read style %s: %w", cell, err)
			}
			if id != 0 {
				st, ok := styleCache[id]
				if !ok {
					xs, err := f.GetStyle(id)
					if err != nil {
						return gridsheet.Document{}, fmt.Errorf("read style %s: %w", cell, err)
					}
					st = styleToGrid(xs, defaultFamily)
					styleCache[id] = st
				}
				rec.Style = st.Clone()
			}
			doc.Rows[r][c] = rec
		}
	}

	if dropped > 0 {
		alog.Infof(ctx, "xlsx import of %s: %d formulas replaced by their values", sheet, dropped)
	}
	return doc, nil
}

// TranslateFormula rewrites an xlsx formula (without '=') into grid
// syntax. absolute markers are dropped. it reports false for anything the
// grid cannot evaluate: other sheets, logical or error literals, postfix
// and comparison operators, unions, and functions other than the grid's
// aggregates.
func TranslateFormula(formula string) (string, bool) {
	ps := efp.ExcelParser()
	tokens := ps.Parse(formula)
	if len(tokens) == 0 {
		return "", false
	}

	var b strings.Builder
	for _, tok := range tokens {
		switch tok.TType {
		case efp.TokenTypeOperand:
			switch tok.TSubType {
			case efp.TokenSubTypeText:
				b.WriteString(`"` + strings.ReplaceAll(tok.TValue, `"`, `""`) + `"`)
			case efp.TokenSubTypeNumber:
				b.WriteString(tok.TValue)
			case efp.TokenSubTypeRange:
				if strings.Contains(tok.TValue, "!") {
					return "", false
				}
				b.WriteString(strings.ReplaceAll(tok.TValue, "$", ""))
			default:
				return "", false
			}
		case efp.TokenTypeFunction:
			switch tok.TSubType {
			case efp.TokenSubTypeStart:
				if strings.HasPrefix(tok.TValue, "ARRAY") {
					return "", false
				}
				b.WriteString(strings.ToUpper(tok.TValue) + "(")
			case efp.TokenSubTypeStop:
				b.WriteString(")")
			default:
				return "", false
			}
		case efp.TokenTypeSubexpression:
			if tok.TSubType == efp.TokenSubTypeStart {
				b.WriteString("(")
			} else {
				b.WriteString(")")
			}
		case efp.TokenTypeArgument:
			b.WriteString(",")
		case efp.TokenTypeOperatorInfix:
			if tok.TSubType != efp.TokenSubTypeMath {
				return "", false
			}
			switch tok.TValue {
			case "+", "-", "*", "/":
				b.WriteString(tok.TValue)
			default:
				return "", false
			}
		case efp.TokenTypeOperatorPrefix:
			b.WriteString(tok.TValue)
		case efp.TokenTypeWhitespace:
			b.WriteString(" ")
		default:
			return "", false
		}
	}

	out := b.String()
	if _, err := gridsheet.Compile(out); err != nil {
		return "", false
	}
	return out, true
}
