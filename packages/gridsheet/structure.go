package gridsheet

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.alis.build/alog"
)

type axis uint8

const (
	axisRow axis = iota
	axisCol
)

func (a axis) String() string {
	if a == axisCol {
		return "column"
	}
	return "row"
}

func (a axis) index(c Coord) int {
	if a == axisCol {
		return c.Col
	}
	return c.Row
}

func (a axis) move(c Coord, delta int) Coord {
	if a == axisCol {
		return c.Offset(0, delta)
	}
	return c.Offset(delta, 0)
}

// InsertRow opens an empty row before the given index. rows at or after it
// move down by one. before must lie in [0, rows]; otherwise nothing happens.
func (g *Grid) InsertRow(before int) bool {
	return g.insert(axisRow, before)
}

// InsertColumn opens an empty column before the given index
func (g *Grid) InsertColumn(before int) bool {
	return g.insert(axisCol, before)
}

// DeleteRow removes a row and moves the rows below it up. the last
// remaining row cannot be deleted.
func (g *Grid) DeleteRow(row int) bool {
	return g.delete(axisRow, row)
}

// DeleteColumn removes a column and moves the columns after it left
func (g *Grid) DeleteColumn(col int) bool {
	return g.delete(axisCol, col)
}

func (g *Grid) count(a axis) *int {
	if a == axisCol {
		return &g.cols
	}
	return &g.rows
}

func (g *Grid) insert(a axis, before int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := g.count(a)
	if before < 0 || before > *count {
		alog.Debugf(context.Background(), "grid %s: insert %s %d ignored, outside [0, %d]", g.id, a, before, *count)
		return false
	}

	g.shift(a, before, 1)
	*count++
	g.recalculate()
	return true
}

func (g *Grid) delete(a axis, index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.deleteLocked(a, index) {
		return false
	}
	g.recalculate()
	return true
}

// deleteLocked removes one row or column without re-evaluating
func (g *Grid) deleteLocked(a axis, index int) bool {
	count := g.count(a)
	if *count <= 1 || index < 0 || index >= *count {
		alog.Debugf(context.Background(), "grid %s: delete %s %d ignored with %d %ss", g.id, a, index, *count, a)
		return false
	}

	for c, cell := range g.cells {
		if a.index(c) == index {
			if cell.Formula != "" {
				g.formulas.Release(cell.Formula)
			}
			delete(g.cells, c)
		}
	}
	g.shift(a, index+1, -1)
	*count--
	return true
}

// shift relocates every cell whose index along a is >= from by delta.
// moving outward runs in descending order and moving inward in ascending
// order, so no cell lands on one that has not moved yet.
func (g *Grid) shift(a axis, from, delta int) {
	var moving []Coord
	for c := range g.cells {
		if a.index(c) >= from {
			moving = append(moving, c)
		}
	}

	slices.SortFunc(moving, func(x, y Coord) int {
		if delta > 0 {
			return cmp.Compare(a.index(y), a.index(x))
		}
		return cmp.Compare(a.index(x), a.index(y))
	})

	for _, c := range moving {
		cell := g.cells[c]
		delete(g.cells, c)
		g.cells[a.move(c, delta)] = cell
	}
}

// RemoveDuplicateRows deletes rows whose contents, concatenated across the
// range's columns, repeat an earlier row in the range. the earliest row of
// each group is kept. returns the deleted row indices, highest first.
func (g *Grid) RemoveDuplicateRows(r Range) []int {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := r.clip(g.rows, g.cols)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, r.Rows())
	var duplicates []int
	for row := r.Start.Row; row <= r.End.Row; row++ {
		var key strings.Builder
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if cell, ok := g.cells[Coord{Row: row, Col: col}]; ok {
				key.WriteString(cell.Content)
			}
		}
		if _, dup := seen[key.String()]; dup {
			duplicates = append(duplicates, row)
			continue
		}
		seen[key.String()] = struct{}{}
	}

	// delete from the bottom so the remaining indices stay valid
	slices.Reverse(duplicates)
	deleted := make([]int, 0, len(duplicates))
	for _, row := range duplicates {
		if g.deleteLocked(axisRow, row) {
			deleted = append(deleted, row)
		}
	}
	if len(deleted) > 0 {
		g.recalculate()
	}
	return deleted
}

// FindAndReplace replaces every literal occurrence of find in the content
// of non-formula cells within r. formula cells are skipped since their
// content is derived. the data type is re-inferred. a replacement that
// would leave text starting with '=' is skipped, since that text would load
// back as a formula. returns the coordinates that changed.
func (g *Grid) FindAndReplace(r Range, find, replace string) []Coord {
	g.mu.Lock()
	defer g.mu.Unlock()

	if find == "" {
		return nil
	}

	var changed []Coord
	for _, c := range g.sortedCoords() {
		if !r.Contains(c) {
			continue
		}
		cell := g.cells[c]
		if cell.DataType == DataTypeFormula || !strings.Contains(cell.Content, find) {
			continue
		}
		content := strings.ReplaceAll(cell.Content, find, replace)
		if IsFormula(content) {
			continue
		}
		cell.Content = content
		cell.DataType = InferDataType(content)
		g.put(c, cell)
		changed = append(changed, c)
	}

	if len(changed) > 0 {
		g.recalculate()
	}
	return changed
}
