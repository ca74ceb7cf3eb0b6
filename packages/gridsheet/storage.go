package gridsheet

import (
	"context"

	"github.com/google/uuid"
	"go.alis.build/alog"
)

// Record is one cell of the persisted shape. formula cells persist their
// formula source as content and their last displayed result as value;
// value is ignored on load since formulas are re-evaluated.
type Record struct {
	Content string `json:"content"`
	Value   string `json:"value,omitempty"`
	Style   Style  `json:"style"`
}

// Display is what the cell showed when the document was taken
func (r Record) Display() string {
	if IsFormula(r.Content) {
		return r.Value
	}
	return r.Content
}

// Document is the persisted form of a grid: dense rows of records, as a
// host stores or exports them.
type Document struct {
	ID   string     `json:"id,omitempty"`
	Name string     `json:"name"`
	Rows [][]Record `json:"rows"`
}

// Dimensions returns the row count and the widest row of the document
func (d Document) Dimensions() (rows, cols int) {
	for _, row := range d.Rows {
		cols = max(cols, len(row))
	}
	return len(d.Rows), cols
}

// Document exports the grid as dense rows covering its full bounds
func (g *Grid) Document() Document {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := make([][]Record, g.rows)
	for r := range rows {
		rows[r] = make([]Record, g.cols)
		for c := range rows[r] {
			rows[r][c] = Record{Style: Style{}}
		}
	}
	for c, cell := range g.cells {
		rec := Record{Content: cell.Content, Style: cell.Style.Clone()}
		if cell.Formula != "" {
			rec.Content = cell.Formula
			rec.Value = cell.Content
		}
		if rec.Style == nil {
			rec.Style = Style{}
		}
		rows[c.Row][c.Col] = rec
	}

	return Document{ID: g.id, Name: g.name, Rows: rows}
}

// Load replaces the grid's contents with a document. bounds follow the
// document (at least one row and column); missing ids and names fall back
// to a fresh id and the configured name.
func (g *Grid) Load(doc Document) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows, cols := doc.Dimensions()
	g.rows = max(rows, 1)
	g.cols = max(cols, 1)
	g.id = doc.ID
	if g.id == "" {
		g.id = uuid.NewString()
	}
	g.name = doc.Name
	if g.name == "" {
		g.name = g.opts.Name
	}
	g.cells = make(map[Coord]*Cell)
	g.formulas.Clear()
	g.selector.Clear()

	for r, row := range doc.Rows {
		for c, rec := range row {
			coord := Coord{Row: r, Col: c}
			g.assign(coord, rec.Content)
			if len(rec.Style) > 0 {
				cell, ok := g.cells[coord]
				if !ok {
					cell = &Cell{}
				}
				cell.Style = rec.Style.Clone()
				g.put(coord, cell)
			}
		}
	}
	g.recalculate()
	alog.Debugf(context.Background(), "grid %s loaded %dx%d with %d cells", g.id, g.rows, g.cols, len(g.cells))
}

// FromDocument builds a grid from its persisted form
func FromDocument(doc Document, opts ...Option) *Grid {
	g := NewGrid(opts...)
	g.Load(doc)
	return g
}
