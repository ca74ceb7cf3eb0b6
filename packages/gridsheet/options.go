package gridsheet

const (
	DefaultRows            = 100
	DefaultColumns         = 26
	DefaultName            = "Untitled spreadsheet"
	DefaultMaxFormulaDepth = 64

	// DefaultMaxRecalcPasses bounds the re-evaluation loop. dependency
	// ordering makes acyclic grids settle in one pass plus a confirming one.
	DefaultMaxRecalcPasses = 16
)

// Options configures a Grid
type Options struct {
	Rows            int
	Columns         int
	Name            string
	MaxFormulaDepth int
	MaxRecalcPasses int
}

// Option is a functional option for NewGrid.
type Option func(*Options)

// WithRows sets the initial row count.
func WithRows(rows int) Option {
	return func(o *Options) {
		o.Rows = rows
	}
}

// WithColumns sets the initial column count.
func WithColumns(cols int) Option {
	return func(o *Options) {
		o.Columns = cols
	}
}

// WithName sets the grid name shown by hosts.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithMaxFormulaDepth bounds how deeply a formula may nest.
func WithMaxFormulaDepth(depth int) Option {
	return func(o *Options) {
		o.MaxFormulaDepth = depth
	}
}

// WithMaxRecalcPasses bounds the number of full re-evaluation passes run
// after a mutation.
func WithMaxRecalcPasses(passes int) Option {
	return func(o *Options) {
		o.MaxRecalcPasses = passes
	}
}

func buildOptions(opts []Option) Options {
	o := Options{
		Rows:            DefaultRows,
		Columns:         DefaultColumns,
		Name:            DefaultName,
		MaxFormulaDepth: DefaultMaxFormulaDepth,
		MaxRecalcPasses: DefaultMaxRecalcPasses,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Rows < 1 {
		o.Rows = 1
	}
	if o.Columns < 1 {
		o.Columns = 1
	}
	if o.MaxFormulaDepth < 1 {
		o.MaxFormulaDepth = DefaultMaxFormulaDepth
	}
	if o.MaxRecalcPasses < 1 {
		o.MaxRecalcPasses = 1
	}
	return o
}
