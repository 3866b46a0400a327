// Package gcguard implements the memory/GC contract spec.md §4.B asks the
// collector to honor: roots, a LIFO guard stack, and the managed/unmanaged
// transition on series. Go's runtime already does the actual mark-sweep;
// this package only enforces the bookkeeping contract the evaluator core
// depends on (an unbalanced guard pop is a programming error, not a normal
// runtime condition, so it panics the way the teacher's VM treats internal
// inconsistencies as panics rather than recoverable errors).
package gcguard

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
)

// Guards is a LIFO stack of values pinned alive for the duration of some
// C-level-equivalent routine. Push/Pop must nest; PopTo checks that the
// caller is popping back to a mark it actually pushed past.
type Guards struct {
	stack []any
}

func NewGuards() *Guards { return &Guards{} }

// Push pins v alive and returns a mark that Pop (or PopTo) must be given
// back, LIFO.
func (g *Guards) Push(v any) int {
	g.stack = append(g.stack, v)
	return len(g.stack) - 1
}

// Pop releases the most recently pushed guard. mark must equal the value
// Push returned; any other value indicates an imbalanced guard stack,
// which is a panic per spec.md §4.B ("Unbalanced guard on shutdown raises
// a debug assertion").
func (g *Guards) Pop(mark int) {
	if mark != len(g.stack)-1 {
		panic(fmt.Sprintf("gcguard: imbalanced guard pop: have %d, want %d", len(g.stack)-1, mark))
	}
	g.stack = g.stack[:mark]
}

// Depth reports the current guard-stack depth, for assertions in callers
// that push several guards and want to drop them all at once.
func (g *Guards) Depth() int { return len(g.stack) }

// PopAllTo truncates the guard stack back to depth, releasing everything
// pushed since. Used by fail unwinding, which "unwinds the guard stack as
// it unwinds frames" (spec.md §5).
func (g *Guards) PopAllTo(depth int) {
	if depth > len(g.stack) {
		panic("gcguard: PopAllTo below zero or above current depth")
	}
	g.stack = g.stack[:depth]
}

// Live returns the values currently pinned, for a mark phase to walk.
func (g *Guards) Live() []any { return g.stack }

// Roots is the set of cells/series treated as always-live regardless of
// reachability from a frame (spec.md §4.B).
type Roots struct {
	items map[any]struct{}
}

func NewRoots() *Roots { return &Roots{items: make(map[any]struct{})} }

func (r *Roots) Add(v any) { r.items[v] = struct{}{} }

func (r *Roots) Remove(v any) { delete(r.items, v) }

func (r *Roots) Each(fn func(any)) {
	for v := range r.items {
		fn(v)
	}
}

// MarkFunc walks whatever keep-alive structure a caller owns (e.g. the
// call-stack's argument/output/spare slots) and is invoked during Recycle
// so that package gcguard does not need to import internal/callstack.
type MarkFunc func()

// Recycle runs the collector at a safe point (spec.md §4.B: "end of an
// evaluation step, on allocation pressure, or on explicit request"). It
// invokes each registered mark function (normally one per live frame
// chain), then asks the Go runtime to collect, and returns a short
// human-readable report of the before/after heap size.
func Recycle(marks ...MarkFunc) string {
	for _, m := range marks {
		if m != nil {
			m()
		}
	}
	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	runtime.GC()
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	var freed uint64
	if before.HeapAlloc > after.HeapAlloc {
		freed = before.HeapAlloc - after.HeapAlloc
	}
	return fmt.Sprintf("recycle: heap %s -> %s (freed %s)",
		humanize.Bytes(before.HeapAlloc), humanize.Bytes(after.HeapAlloc), humanize.Bytes(freed))
}

// Ballast tracks the allocation-pressure counter spec.md §4.B calls
// "ballast": ticking it below zero is one of the triggers for a Recycle.
type Ballast struct {
	remaining int64
	capacity  int64
}

func NewBallast(capacity int64) *Ballast {
	return &Ballast{remaining: capacity, capacity: capacity}
}

// Spend decrements the ballast by n bytes (approximate) and reports
// whether it has run out, meaning the caller should Recycle.
func (b *Ballast) Spend(n int64) (exhausted bool) {
	b.remaining -= n
	return b.remaining < 0
}

func (b *Ballast) Refill() { b.remaining = b.capacity }

func (b *Ballast) String() string {
	return fmt.Sprintf("ballast: %s / %s remaining",
		humanize.Bytes(uint64(max64(b.remaining, 0))), humanize.Bytes(uint64(b.capacity)))
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
