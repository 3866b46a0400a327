package action

import "github.com/r3n/ren-c-sub001/internal/value"

// Flags are the action-level behavior bits from spec.md §3.4.
type Flags uint16

const (
	Enfixed Flags = 1 << iota
	QuotesFirst
	DefersLookback
	PostponesEntirely
	SkippableFirst
	IsInvisible
	IsNative
	ReturnRequotes
	HasReturn
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Outcome is what a Dispatcher reports happened, mirroring spec.md §4.H.3's
// "the dispatcher returns one of" list.
type Outcome uint8

const (
	OutcomeNormal Outcome = iota
	OutcomeNull
	OutcomeThrown
	OutcomeInvisible
	OutcomeRedoUnchecked
	OutcomeRedoChecked
)

// Activation is the minimal view of a running call frame that a Dispatcher
// needs. It is satisfied structurally by internal/callstack.Frame; defining
// it here (rather than importing eval) breaks what would otherwise be an
// action<->eval import cycle, since eval must import action to know what
// it's dispatching.
type Activation interface {
	Arg(index int) *value.Cell
	Out() *value.Cell
	Spare() *value.Cell
	NumArgs() int
}

// Dispatcher runs the body of an action against an already-fulfilled
// activation and reports what happened.
type Dispatcher func(act Activation) (Outcome, error)

// Meta is the optional descriptive record from spec.md §3.4.
type Meta struct {
	Description string
	ParamNotes  map[string]string
	ParamTypes  map[string]string
}

// Action is an immutable identity wrapping a paramlist, a dispatcher, and
// behavior flags (spec.md §3.4). Details holds dispatcher-specific data;
// for an interpreted (non-native) action, Details[0] is conventionally the
// function's body block and the dispatcher ignores its own Details slice
// and closes over the body instead -- this mirrors real Ren-C where the
// archetype cell occupies Details[0] and native dispatchers stash whatever
// they need after it.
type Action struct {
	Params     []Param
	Exemplar   []*value.Cell // nil entry = unspecialized; non-nil = pre-supplied value
	Details    *value.Series
	Dispatcher Dispatcher
	Meta       *Meta
	Flags      Flags
}

// ParamIndex returns the declaration-order index of sym, or -1.
func (a *Action) ParamIndex(sym *value.Symbol) int {
	for i := range a.Params {
		if a.Params[i].Symbol == sym {
			return i
		}
	}
	return -1
}

// RelativeBindingFor builds the opaque RelativeBinding payload spec.md §9
// describes for a word inside this action's compiled body referring to
// parameter paramIndex.
func (a *Action) RelativeBindingFor(paramIndex int) value.RelativeBinding {
	return value.RelativeBinding{ActionIdentity: a, ParamIndex: paramIndex}
}
