package context

import "github.com/r3n/ren-c-sub001/internal/value"

// Patch is a one-entry virtual binding prepended to the front of a feed's
// binding chain, the mechanism spec.md §3.3/§4.E call a "LET patch". A
// word lookup walks patches front-to-back before falling back to the
// anchor context(s); binding never mutates the structure of the array
// being evaluated, only the chain a feed consults.
type Patch struct {
	sym  *value.Symbol
	slot value.Cell
	next *Patch
}

// NewPatch prepends a single (symbol -> value) entry onto outer.
func NewPatch(sym *value.Symbol, v value.Cell, outer *Patch) *Patch {
	p := &Patch{sym: sym, next: outer}
	value.CopyCell(&p.slot, &v)
	return p
}

// Slot returns a pointer to this patch's single value cell.
func (p *Patch) Slot() *value.Cell { return &p.slot }

// Chain resolves sym by walking the patch list front-to-back, then falling
// back to anchor if no patch matches. It returns the live cell slot and
// true on a hit.
func Chain(patches *Patch, anchor *Context, sym *value.Symbol) (*value.Cell, bool) {
	for p := patches; p != nil; p = p.next {
		if p.sym == sym {
			return &p.slot, true
		}
	}
	if anchor == nil {
		return nil, false
	}
	idx, ok := anchor.Lookup(sym)
	if !ok {
		return nil, false
	}
	return anchor.At(idx), true
}
