package context

import "github.com/r3n/ren-c-sub001/internal/value"

// KindMask selects which word-like Kinds BindDeep should touch.
type KindMask uint16

const (
	MaskWord KindMask = 1 << iota
	MaskSetWord
	MaskGetWord
	MaskSymWord
	MaskAllWords = MaskWord | MaskSetWord | MaskGetWord | MaskSymWord
)

func maskFor(k value.Kind) KindMask {
	switch k {
	case value.KindWord:
		return MaskWord
	case value.KindSetWord:
		return MaskSetWord
	case value.KindGetWord:
		return MaskGetWord
	case value.KindSymWord:
		return MaskSymWord
	default:
		return 0
	}
}

// BindDeep walks arr's cells recursively (descending into nested arrays),
// and for every word-like cell matching mask, looks its symbol up in
// target. On a hit it sets the word's binding and cached index; on a miss
// it appends a fresh slot to target if appendUnbound is set, otherwise
// leaves the word unbound. BindDeep never mutates array structure, only
// word cells' binding/index slots (spec.md §4.E contract).
func BindDeep(arr *value.Series, target *Context, mask KindMask, appendUnbound bool) {
	cells := arr.Cells()
	for i := range cells {
		bindCell(&cells[i], target, mask, appendUnbound)
	}
}

func bindCell(c *value.Cell, target *Context, mask KindMask, appendUnbound bool) {
	if w := c.Word(); w != nil && maskFor(c.Kind())&mask != 0 {
		idx, ok := target.Lookup(w.Symbol)
		if !ok && appendUnbound {
			idx = target.Append(w.Symbol)
			ok = true
		}
		if ok {
			w.Binding = target
			w.Cached = idx
		}
		return
	}
	if inner := c.SeriesPayload(); inner != nil && c.Kind() != value.KindText && c.Kind() != value.KindBinary {
		BindDeep(inner, target, mask, appendUnbound)
	}
}

// UnbindDeep is BindDeep's inverse: it clears the binding of every
// word-like cell currently bound to target (or to anything, if target is
// nil), recursively.
func UnbindDeep(arr *value.Series, target *Context) {
	cells := arr.Cells()
	for i := range cells {
		unbindCell(&cells[i], target)
	}
}

func unbindCell(c *value.Cell, target *Context) {
	if w := c.Word(); w != nil {
		if target == nil || w.Binding == target {
			w.Binding = nil
			w.Cached = -1
		}
		return
	}
	if inner := c.SeriesPayload(); inner != nil && c.Kind() != value.KindText && c.Kind() != value.KindBinary {
		UnbindDeep(inner, target)
	}
}

// Lookup resolves a bound word cell back to its slot pointer, re-validating
// the cached index the way spec.md §3.3 requires: "a mismatch triggers
// re-lookup." Returns nil if the word is unbound or the binding isn't a
// live *Context (e.g. it's still a RelativeBinding nobody has resolved).
func Lookup(c *value.Cell) *value.Cell {
	w := c.Word()
	if w == nil {
		return nil
	}
	ctx, ok := w.Binding.(*Context)
	if !ok {
		return nil
	}
	if w.Cached >= 0 && w.Cached < ctx.Len() && keySymbol(ctx.keylist, w.Cached) == w.Symbol {
		return ctx.At(w.Cached)
	}
	idx, found := ctx.Lookup(w.Symbol)
	if !found {
		return nil
	}
	w.Cached = idx
	return ctx.At(idx)
}
