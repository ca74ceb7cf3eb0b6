package gridsheet

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"go.alis.build/alog"
	"google.golang.org/grpc/codes"
)

// Grid is the sparse cell store. it owns every cell, applies structural
// edits, and re-evaluates all formula cells after each mutation. every
// exported method is one atomic command: mutations hold the write lock for
// their whole duration (re-evaluation included), reads share the read lock.
type Grid struct {
	mu       sync.RWMutex
	id       string
	name     string
	cells    map[Coord]*Cell
	rows     int
	cols     int
	opts     Options
	selector Selector
	formulas *FormulaTable
}

type GridInterface interface {
	// cell methods

	Set(address string, raw string) (CellView, error)
	Get(address string) (CellView, bool, error)
	SetContent(c Coord, raw string) (CellView, error)
	GetCell(c Coord) (CellView, bool)
	SetStyle(c Coord, style Style) (CellView, error)

	// structural methods

	InsertRow(before int) bool
	InsertColumn(before int) bool
	DeleteRow(row int) bool
	DeleteColumn(col int) bool
	RemoveDuplicateRows(r Range) []int
	FindAndReplace(r Range, find, replace string) []Coord

	// selection and clipboard methods

	Select(anchor Coord, focus ...Coord) Range
	Copy(r Range) string
	Paste(text string, target Coord) []Coord

	// grid methods

	Bounds() (rows, cols int)
	Recalculate()
	Reset()
	Document() Document
	Load(doc Document)
}

var _ GridInterface = (*Grid)(nil)

// NewGrid creates an empty grid, 100 rows by 26 columns unless configured
// otherwise.
func NewGrid(opts ...Option) *Grid {
	o := buildOptions(opts)
	return &Grid{
		id:       uuid.NewString(),
		name:     o.Name,
		cells:    make(map[Coord]*Cell),
		rows:     o.Rows,
		cols:     o.Columns,
		opts:     o,
		formulas: NewFormulaTable(o.MaxFormulaDepth),
	}
}

// ID identifies the grid's persisted document
func (g *Grid) ID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *Grid) Name() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

// Rename sets the grid's display name
func (g *Grid) Rename(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.name = name
}

// Bounds returns the current row and column counts
func (g *Grid) Bounds() (rows, cols int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rows, g.cols
}

// Len returns the number of materialized cells
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Set assigns raw input to the cell at an "A1"-style address
func (g *Grid) Set(address string, raw string) (CellView, error) {
	c, err := FromLabel(address)
	if err != nil {
		return CellView{}, err
	}
	return g.SetContent(c, raw)
}

// Get reads the cell at an "A1"-style address
func (g *Grid) Get(address string) (CellView, bool, error) {
	c, err := FromLabel(address)
	if err != nil {
		return CellView{}, false, err
	}
	view, ok := g.GetCell(c)
	return view, ok, nil
}

// SetContent classifies raw input and stores it. input starting with '=' is
// a formula; its evaluation result (or #ERROR!) becomes the content.
// evaluation failures never surface as errors here.
func (g *Grid) SetContent(c Coord, raw string) (CellView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.inBounds(c) {
		return CellView{}, g.outOfBounds(c)
	}

	g.assign(c, raw)
	g.recalculate()

	if cell, ok := g.cells[c]; ok {
		return cell.view(), nil
	}
	return CellView{}, nil
}

// GetCell returns the cell at c, false if nothing is stored there
func (g *Grid) GetCell(c Coord) (CellView, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cell, ok := g.cells[c]
	if !ok {
		return CellView{}, false
	}
	return cell.view(), true
}

// SetStyle merges attributes over the cell's existing style
func (g *Grid) SetStyle(c Coord, style Style) (CellView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.inBounds(c) {
		return CellView{}, g.outOfBounds(c)
	}

	cell, ok := g.cells[c]
	if !ok {
		cell = &Cell{}
	}
	merged := cell.Style.Clone()
	if merged == nil {
		merged = Style{}
	}
	if err := mergo.Merge(&merged, style, mergo.WithOverride); err != nil {
		return CellView{}, NewApplicationError(codes.Internal, err, fmt.Sprintf("merge style of %s: %v", ToLabel(c), err))
	}
	cell.Style = merged
	g.put(c, cell)

	return cell.view(), nil
}

// Select records the selection spanning anchor and focus (anchor alone
// selects one cell) and returns it normalized
func (g *Grid) Select(anchor Coord, focus ...Coord) Range {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.selector.Start(anchor)
	if len(focus) > 0 {
		g.selector.Move(focus[len(focus)-1])
	}
	return g.selector.Release()
}

// Selection returns the last selected range, if any
func (g *Grid) Selection() (Range, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selector.Selection()
}

// Copy serializes a range as tab/newline delimited text. the range is
// clipped to the grid first.
func (g *Grid) Copy(r Range) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := r.clip(g.rows, g.cols)
	if !ok {
		return ""
	}
	return Serialize(r, gridView{g})
}

// Paste writes clipboard text starting at target. values landing outside
// the grid are dropped. returns the coordinates that were written.
func (g *Grid) Paste(text string, target Coord) []Coord {
	g.mu.Lock()
	defer g.mu.Unlock()

	assignments := Deserialize(text, target, g.rows, g.cols)
	affected := make([]Coord, 0, len(assignments))
	for _, a := range assignments {
		g.assign(a.Coord, a.Raw)
		affected = append(affected, a.Coord)
	}
	if len(affected) > 0 {
		g.recalculate()
	}
	return affected
}

// Recalculate forces a re-evaluation pass
func (g *Grid) Recalculate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recalculate()
}

// Reset replaces the grid with a fresh empty one at the configured bounds
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.id = uuid.NewString()
	g.name = g.opts.Name
	g.cells = make(map[Coord]*Cell)
	g.formulas.Clear()
	g.rows = g.opts.Rows
	g.cols = g.opts.Columns
	g.selector.Clear()
	alog.Debugf(context.Background(), "grid %s reset to %dx%d", g.id, g.rows, g.cols)
}

// Coords returns every stored coordinate in row-major order
func (g *Grid) Coords() []Coord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sortedCoords()
}

// assign stores raw input without re-evaluating. the existing style is kept.
func (g *Grid) assign(c Coord, raw string) {
	cell, ok := g.cells[c]
	if !ok {
		cell = &Cell{}
	}
	if cell.Formula != "" {
		g.formulas.Release(cell.Formula)
	}

	if IsFormula(raw) {
		g.formulas.Intern(raw)
		cell.Formula = raw
		cell.DataType = DataTypeFormula
	} else {
		cell.Formula = ""
		cell.Content = raw
		cell.DataType = InferDataType(raw)
		cell.Err = nil
	}
	g.put(c, cell)
}

// put stores a cell, dropping it when it holds nothing
func (g *Grid) put(c Coord, cell *Cell) {
	if cell.isEmpty() {
		delete(g.cells, c)
		return
	}
	g.cells[c] = cell
}

func (g *Grid) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < g.rows && c.Col < g.cols
}

func (g *Grid) outOfBounds(c Coord) error {
	return NewApplicationError(codes.OutOfRange, ErrOutOfBounds,
		fmt.Sprintf("%s is outside the %dx%d grid", ToLabel(c), g.rows, g.cols))
}

func (g *Grid) sortedCoords() []Coord {
	coords := make([]Coord, 0, len(g.cells))
	for c := range g.cells {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoords)
	return coords
}

// gridView exposes the cell contents to the evaluator and clipboard codec.
// callers must hold the grid lock.
type gridView struct {
	g *Grid
}

func (v gridView) Content(c Coord) (string, bool) {
	cell, ok := v.g.cells[c]
	if !ok {
		return "", false
	}
	return cell.Content, true
}

func (v gridView) Bounds() (rows, cols int) {
	return v.g.rows, v.g.cols
}
