// Package context implements contexts (objects/frames/modules/errors),
// the binder, and LET-style virtual bindings (spec.md §3.3, §4.E).
package context

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/r3n/ren-c-sub001/internal/value"
)

// Kind distinguishes the context variants named in spec.md §3.3.
type Kind uint8

const (
	KindObject Kind = iota
	KindFrame
	KindModule
	KindError
)

// Context is a keyed container mapping symbols to varlist slots. The
// keylist and varlist are parallel series, index-for-index, which lets
// sibling contexts (e.g. a function's successive activations) share one
// keylist while each owns its own varlist.
type Context struct {
	kind    Kind
	keylist *value.Series // cells: WORD cells naming each slot, in declaration order
	varlist *value.Series // cells: the slot values, index-aligned with keylist
	index   map[uint64][]int
}

// New allocates a fresh context of the given kind with capacity slots
// pre-sized (0 is fine; Append grows as needed).
func New(kind Kind, capacity int) *Context {
	return &Context{
		kind:    kind,
		keylist: value.NewArray(value.FlavorKeylist, capacity),
		varlist: value.NewArray(value.FlavorVarlist, capacity),
		index:   make(map[uint64][]int),
	}
}

// NewSharingKeylist allocates a new varlist over an existing keylist, the
// way sibling frames of the same action share a paramlist-derived keylist
// (spec.md §3.3 "a keylist... shared across sibling contexts").
func NewSharingKeylist(kind Kind, keylist *value.Series) *Context {
	c := &Context{kind: kind, keylist: keylist, varlist: value.NewArray(value.FlavorVarlist, keylist.Len())}
	c.index = make(map[uint64][]int, keylist.Len())
	cells := keylist.Cells()
	for i := range cells {
		if w := cells[i].Word(); w != nil {
			c.index[w.Symbol.Hash()] = append(c.index[w.Symbol.Hash()], i)
		}
	}
	for i := 0; i < keylist.Len(); i++ {
		var blank value.Cell
		value.InitBlank(&blank, false)
		c.varlist.Push(blank)
	}
	return c
}

func (c *Context) Kind() Kind { return c.kind }

func (c *Context) Len() int { return c.varlist.Len() }

func (c *Context) Keylist() *value.Series { return c.keylist }

func (c *Context) Varlist() *value.Series { return c.varlist }

// Lookup finds sym's slot index in this context. A word's cached index
// (spec.md §3.3) should be re-validated against this before trusting it;
// Lookup itself always does a fresh search.
func (c *Context) Lookup(sym *value.Symbol) (int, bool) {
	for _, idx := range c.index[sym.Hash()] {
		if keySymbol(c.keylist, idx) == sym {
			return idx, true
		}
	}
	return 0, false
}

func keySymbol(keylist *value.Series, idx int) *value.Symbol {
	cells := keylist.Cells()
	if idx < 0 || idx >= len(cells) {
		return nil
	}
	w := cells[idx].Word()
	if w == nil {
		return nil
	}
	return w.Symbol
}

// Append adds a new slot for sym (mid-stream binding growth, spec.md
// §4.E), initialized to void, and returns its index.
func (c *Context) Append(sym *value.Symbol) int {
	if idx, ok := c.Lookup(sym); ok {
		return idx
	}
	var key value.Cell
	value.InitWord(&key, sym, false)
	idx := c.keylist.Push(key)
	c.index[sym.Hash()] = append(c.index[sym.Hash()], idx)

	var slot value.Cell
	value.InitVoid(&slot, false)
	c.varlist.Push(slot)
	return idx
}

// At returns a pointer to the varlist slot at idx for in-place reads or
// writes. The pointer is invalidated by a subsequent Append.
func (c *Context) At(idx int) *value.Cell { return c.varlist.AtPtr(idx) }

// Get copies the slot's value out by symbol.
func (c *Context) Get(sym *value.Symbol) (value.Cell, bool) {
	idx, ok := c.Lookup(sym)
	if !ok {
		return value.Cell{}, false
	}
	return c.varlist.At(idx), true
}

// Set writes v into sym's slot, appending the slot if absent and append
// is true. Returns false if the slot is PROTECTED or missing-and-!append.
func (c *Context) Set(sym *value.Symbol, v value.Cell, appendIfMissing bool) bool {
	idx, ok := c.Lookup(sym)
	if !ok {
		if !appendIfMissing {
			return false
		}
		idx = c.Append(sym)
	}
	slot := c.varlist.AtPtr(idx)
	if slot.HasFlag(value.Protected) {
		return false
	}
	value.CopyCell(slot, &v)
	return true
}

// Hide marks a slot MARKED_HIDDEN (locals, consumed refinement args),
// excluding it from generic enumeration without removing it.
func (c *Context) Hide(idx int) {
	c.varlist.AtPtr(idx).SetFlag(value.MarkedHidden)
}

// Symbols returns every bound symbol's canonical spelling in a stable
// (sorted) order, the way FRAME OF / debug dumps enumerate a context's
// keys without depending on map iteration order.
func (c *Context) Symbols() []string {
	seen := make(map[string]struct{}, len(c.index))
	for _, idxs := range c.index {
		for _, idx := range idxs {
			if sym := keySymbol(c.keylist, idx); sym != nil {
				seen[sym.String()] = struct{}{}
			}
		}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

func (c *Context) String() string {
	return fmt.Sprintf("#[%s! length: %d]", c.kindName(), c.Len())
}

func (c *Context) kindName() string {
	switch c.kind {
	case KindObject:
		return "object"
	case KindFrame:
		return "frame"
	case KindModule:
		return "module"
	case KindError:
		return "error"
	default:
		return "context"
	}
}
