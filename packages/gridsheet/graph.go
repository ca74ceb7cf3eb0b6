package gridsheet

import (
	"cmp"
	"slices"
)

// DependencyNode is a formula cell and the formula cells it reads
type DependencyNode struct {
	Coord      Coord
	Precedents map[Coord]struct{}
}

// DependencyGraph links formula cells to the formula cells they reference.
// it is rebuilt for every re-evaluation pass and never kept between
// mutations; only formula cells are nodes since literal cells have nothing
// to order.
type DependencyGraph struct {
	nodes map[Coord]*DependencyNode
}

// NewDependencyGraph creates an empty graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[Coord]*DependencyNode),
	}
}

// AddFormula registers a formula cell as a node
func (dg *DependencyGraph) AddFormula(c Coord) *DependencyNode {
	if node, ok := dg.nodes[c]; ok {
		return node
	}
	node := &DependencyNode{
		Coord:      c,
		Precedents: make(map[Coord]struct{}),
	}
	dg.nodes[c] = node
	return node
}

// AddCellDependency records that from reads to. references to non-formula
// cells are ignored.
func (dg *DependencyGraph) AddCellDependency(from, to Coord) {
	fromNode, ok := dg.nodes[from]
	if !ok {
		return
	}
	if _, ok := dg.nodes[to]; !ok {
		return
	}
	fromNode.Precedents[to] = struct{}{}
}

// AddRangeDependency records that from reads every formula cell inside r
func (dg *DependencyGraph) AddRangeDependency(from Coord, r Range) {
	for c := range dg.nodes {
		if r.Contains(c) {
			dg.AddCellDependency(from, c)
		}
	}
}

// AddReferences walks a formula tree and records each reference it makes
func (dg *DependencyGraph) AddReferences(from Coord, node ASTNode) {
	switch n := node.(type) {
	case *CellRefNode:
		dg.AddCellDependency(from, n.Coord)
	case *RangeNode:
		dg.AddRangeDependency(from, n.Range)
	case *BinaryOpNode:
		dg.AddReferences(from, n.Left)
		dg.AddReferences(from, n.Right)
	case *UnaryOpNode:
		dg.AddReferences(from, n.Operand)
	case *FunctionCallNode:
		for _, arg := range n.Args {
			dg.AddReferences(from, arg)
		}
	}
}

// GetDirectPrecedents returns the formula cells c reads, row-major sorted
func (dg *DependencyGraph) GetDirectPrecedents(c Coord) []Coord {
	node, ok := dg.nodes[c]
	if !ok {
		return nil
	}
	return sortedCoords(node.Precedents)
}

// GetCalculationOrder returns every node with precedents before dependents,
// plus the set of nodes that sit on a reference cycle. nodes are visited in
// row-major order so the result is deterministic.
func (dg *DependencyGraph) GetCalculationOrder() ([]Coord, map[Coord]bool) {
	var (
		index   = make(map[Coord]int, len(dg.nodes))
		lowlink = make(map[Coord]int, len(dg.nodes))
		onStack = make(map[Coord]bool, len(dg.nodes))
		stack   []Coord
		order   = make([]Coord, 0, len(dg.nodes))
		cyclic  = make(map[Coord]bool)
		next    int
	)

	// tarjan's algorithm emits each strongly connected component after all
	// of its precedents, which is exactly calculation order
	var visit func(c Coord)
	visit = func(c Coord) {
		index[c] = next
		lowlink[c] = next
		next++
		stack = append(stack, c)
		onStack[c] = true

		for _, p := range dg.GetDirectPrecedents(c) {
			if _, seen := index[p]; !seen {
				visit(p)
				lowlink[c] = min(lowlink[c], lowlink[p])
			} else if onStack[p] {
				lowlink[c] = min(lowlink[c], index[p])
			}
		}

		if lowlink[c] != index[c] {
			return
		}

		var component []Coord
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == c {
				break
			}
		}

		_, selfLoop := dg.nodes[c].Precedents[c]
		if len(component) > 1 || selfLoop {
			for _, member := range component {
				cyclic[member] = true
			}
		}
		slices.SortFunc(component, compareCoords)
		order = append(order, component...)
	}

	for _, c := range dg.sortedNodes() {
		if _, seen := index[c]; !seen {
			visit(c)
		}
	}

	return order, cyclic
}

// NodeCount returns the number of formula cells in the graph
func (dg *DependencyGraph) NodeCount() int {
	return len(dg.nodes)
}

func (dg *DependencyGraph) sortedNodes() []Coord {
	coords := make([]Coord, 0, len(dg.nodes))
	for c := range dg.nodes {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoords)
	return coords
}

func sortedCoords(set map[Coord]struct{}) []Coord {
	coords := make([]Coord, 0, len(set))
	for c := range set {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoords)
	return coords
}

// compareCoords orders coordinates row-major
func compareCoords(a, b Coord) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}
