package gridsheet

// FormulaTable caches compiled formulas by source text so the re-evaluation
// pass run after every mutation does not re-parse unchanged formulas.
// entries are reference counted by the cells holding them.
type FormulaTable struct {
	entries  map[string]*formulaEntry
	maxDepth int
}

type formulaEntry struct {
	ast  ASTNode
	err  error // compile failure, cached like a result
	refs int
}

// NewFormulaTable creates a new formula table
func NewFormulaTable(maxDepth int) *FormulaTable {
	return &FormulaTable{
		entries:  make(map[string]*formulaEntry),
		maxDepth: maxDepth,
	}
}

// Intern compiles a formula if needed and adds a reference to it
func (ft *FormulaTable) Intern(source string) {
	ft.entry(source).refs++
}

// Release drops one reference, evicting the entry at zero
func (ft *FormulaTable) Release(source string) {
	e, ok := ft.entries[source]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(ft.entries, source)
	}
}

// Get returns the compiled form of a formula. formulas that were never
// interned are compiled and cached without a reference.
func (ft *FormulaTable) Get(source string) (ASTNode, error) {
	e := ft.entry(source)
	return e.ast, e.err
}

func (ft *FormulaTable) entry(source string) *formulaEntry {
	if e, ok := ft.entries[source]; ok {
		return e
	}
	ast, err := Compile(source, WithEvalDepth(ft.maxDepth))
	e := &formulaEntry{ast: ast, err: err}
	ft.entries[source] = e
	return e
}

// GetReferenceCount returns how many cells hold the formula
func (ft *FormulaTable) GetReferenceCount(source string) int {
	if e, ok := ft.entries[source]; ok {
		return e.refs
	}
	return 0
}

// Count returns the number of cached formulas
func (ft *FormulaTable) Count() int {
	return len(ft.entries)
}

// Clear removes everything
func (ft *FormulaTable) Clear() {
	ft.entries = make(map[string]*formulaEntry)
}
