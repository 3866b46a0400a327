package value

// Flags holds the per-cell bits from spec.md §3.1. They are orthogonal to
// Kind and travel with the cell across CopyCell (mostly -- see doc below).
type Flags uint16

const (
	// Protected forbids writes through this cell; attempts raise a fail.
	Protected Flags = 1 << iota
	// Const marks the value shallow-immutable through this reference.
	Const
	// Unevaluated marks a value placed by the scanner or an inert literal
	// copy -- never by a function result.
	Unevaluated
	// NewlineBefore is a molding cue recording a source linebreak.
	NewlineBefore
	// ArgMarkedChecked marks an argument slot whose type-check already
	// completed during fulfillment.
	ArgMarkedChecked
	// OutMarkedStale marks an output cell holding a previous step's value
	// that the current step has not overwritten.
	OutMarkedStale
	// MarkedHidden marks a context slot excluded from generic enumeration
	// (locals, already-consumed refinement args).
	MarkedHidden
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

func (f Flags) Set(bit Flags) Flags { return f | bit }

func (f Flags) Clear(bit Flags) Flags { return f &^ bit }
