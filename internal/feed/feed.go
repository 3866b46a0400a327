// Package feed implements the one-cell-lookahead value source the
// evaluator steps over (spec.md §4.G). A Feed is deliberately ignorant of
// the scanner: a variadic source scans fragments on demand through an
// injected ScanFunc rather than importing internal/scanner directly, which
// would otherwise create scanner->value<-feed<-scanner import noise for no
// benefit (only internal/eval needs both).
package feed

import "github.com/r3n/ren-c-sub001/internal/value"

// Flags are the per-step lookahead-control bits from spec.md §4.G.
type Flags uint8

const (
	NoLookahead Flags = 1 << iota
	DeferringEnfix
	BarrierHit
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Source supplies cells one at a time. internal/feed ships one
// implementation (arraySource); a variadic implementation lives in
// internal/eval because it needs the scanner and binder wired together.
type Source interface {
	// Next returns the next cell and true, or a stale Cell and false when
	// exhausted. specifier is the binding context relative words in the
	// fetched cell should resolve against (nil for already-absolute cells).
	Next() (cell value.Cell, specifier value.Specifier, ok bool)
}

// Feed is the one-token-lookahead cursor the evaluator's step function
// consumes (spec.md §4.G).
type Feed struct {
	src       Source
	current   value.Cell
	currentOK bool
	lookback  value.Cell
	specifier value.Specifier
	gotten    *value.Cell // cached lookup of current's word value, if any
	Flags     Flags
}

// New creates a feed over src and primes the lookahead by fetching once,
// mirroring Ren-C's Prep_Feed which always arrives with current already
// populated.
func New(src Source) *Feed {
	f := &Feed{src: src}
	f.FetchNext()
	return f
}

// Current returns the value at the logical cursor. Its Kind is the
// end-marker sentinel once the feed is exhausted (value.IsEnd reports it).
func (f *Feed) Current() *value.Cell { return &f.current }

// CurrentSpecifier returns the binding context current's word cells (if
// any) should resolve relative bindings against.
func (f *Feed) CurrentSpecifier() value.Specifier { return f.specifier }

// AtEnd reports whether the feed has been exhausted.
func (f *Feed) AtEnd() bool { return !f.currentOK }

// Lookback returns the cell fetched immediately before the current one.
// Valid only until the next FetchNext call overwrites it (spec.md §4.G).
func (f *Feed) Lookback() *value.Cell { return &f.lookback }

// FetchNext advances the cursor by one cell. The previous current becomes
// this call's lookback; any cached Gotten value is invalidated, matching
// spec.md §4.G's "also clears a cached gotten fetch of a word's value."
func (f *Feed) FetchNext() {
	if f.currentOK {
		value.CopyCell(&f.lookback, &f.current)
	}
	f.gotten = nil
	cell, spec, ok := f.src.Next()
	f.current = cell
	f.specifier = spec
	f.currentOK = ok
	if !ok {
		value.SetEnd(&f.current)
	}
}

// Gotten returns a cached lookup result for the current cell's word, or
// nil if nothing has been cached yet.
func (f *Feed) Gotten() *value.Cell { return f.gotten }

// SetGotten caches v as the looked-up value for the current word cell.
func (f *Feed) SetGotten(v *value.Cell) { f.gotten = v }

// arraySource walks a block (or any cell array) by index, the "array with
// a cursor index" source of spec.md §4.G.
type arraySource struct {
	series    *value.Series
	index     int
	specifier value.Specifier
}

// NewArraySource builds a Source over arr starting at index, with every
// fetched word resolved relative to specifier.
func NewArraySource(arr *value.Series, index int, specifier value.Specifier) Source {
	return &arraySource{series: arr, index: index, specifier: specifier}
}

func (a *arraySource) Next() (value.Cell, value.Specifier, bool) {
	if a.index >= a.series.Len() {
		return value.Cell{}, nil, false
	}
	c := a.series.At(a.index)
	a.index++
	return c, a.specifier, true
}

// SplicedFragment is one element of a variadic source: either an
// already-made Cell (Made == true) or raw Rebol-notation text the caller's
// injected scan function should tokenize on demand (spec.md §4.G "(b) a
// variadic sequence of UTF-8 fragments and already-made cells").
type SplicedFragment struct {
	Made bool
	Cell value.Cell
	Text string
}

// ScanFunc lazily tokenizes one text fragment into a one-shot Source of
// cells. internal/eval supplies the real implementation backed by
// internal/scanner; tests can supply a stub.
type ScanFunc func(text string) Source

// variadicSource drains a fixed list of fragments, expanding text
// fragments into sub-sources via scan on first touch.
type variadicSource struct {
	fragments []SplicedFragment
	scan      ScanFunc
	sub       Source
	specifier value.Specifier
}

// NewVariadicSource builds a Source over an interleaved sequence of
// pre-made cells and raw text fragments (spec.md §6's variadic_eval entry
// point, and §4.G's variadic feed source).
func NewVariadicSource(fragments []SplicedFragment, scan ScanFunc, specifier value.Specifier) Source {
	return &variadicSource{fragments: fragments, scan: scan, specifier: specifier}
}

func (v *variadicSource) Next() (value.Cell, value.Specifier, bool) {
	for {
		if v.sub != nil {
			if c, spec, ok := v.sub.Next(); ok {
				return c, spec, true
			}
			v.sub = nil
		}
		if len(v.fragments) == 0 {
			return value.Cell{}, nil, false
		}
		frag := v.fragments[0]
		v.fragments = v.fragments[1:]
		if frag.Made {
			return frag.Cell, v.specifier, true
		}
		v.sub = v.scan(frag.Text)
	}
}
