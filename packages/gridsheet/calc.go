package gridsheet

import (
	"context"
	"fmt"

	"go.alis.build/alog"
)

// recalculate re-evaluates every formula cell until no cached content
// changes. formulas are compiled once and ordered precedents-first, so an
// acyclic grid settles after one pass and a second confirms it. cells on a
// reference cycle show #ERROR! instead of iterating. callers hold the lock.
func (g *Grid) recalculate() {
	graph := NewDependencyGraph()
	for c, cell := range g.cells {
		if cell.DataType == DataTypeFormula {
			graph.AddFormula(c)
		}
	}
	if graph.NodeCount() == 0 {
		return
	}

	compiled := make(map[Coord]ASTNode, graph.NodeCount())
	failures := make(map[Coord]error)
	for c := range graph.nodes {
		node, err := g.formulas.Get(g.cells[c].Formula)
		if err != nil {
			failures[c] = err
			continue
		}
		compiled[c] = node
		graph.AddReferences(c, node)
	}

	order, cyclic := graph.GetCalculationOrder()
	if len(cyclic) > 0 {
		alog.Debugf(context.Background(), "grid %s: %d cells on reference cycles", g.id, len(cyclic))
	}

	view := gridView{g}
	for pass := 1; pass <= g.opts.MaxRecalcPasses; pass++ {
		changed := false
		for _, c := range order {
			var (
				value Primitive
				err   error
			)
			switch {
			case cyclic[c]:
				err = NewEvaluationError(CircularReference, fmt.Sprintf("%s depends on itself", ToLabel(c)))
			case failures[c] != nil:
				err = failures[c]
			default:
				value, err = evaluateNode(compiled[c], view)
			}
			if g.storeResult(c, value, err) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
	alog.Warnf(context.Background(), "grid %s: re-evaluation still changing after %d passes", g.id, g.opts.MaxRecalcPasses)
}

// storeResult writes an evaluation outcome into the formula cell's cache.
// reports whether the displayed content changed.
func (g *Grid) storeResult(c Coord, value Primitive, err error) bool {
	cell := g.cells[c]
	content := ErrorDisplay
	cell.Err = AsEvaluationError(err)
	if err == nil {
		content = Display(value)
	}
	if cell.Content == content {
		return false
	}
	cell.Content = content
	return true
}
