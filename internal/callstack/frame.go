// Package callstack implements the call-stack chain of running actions
// (spec.md §3.5, §4.C): frame activation records, their argument/output/
// spare slots, and lazy reification into a heap context.
package callstack

import (
	"github.com/google/uuid"

	"github.com/r3n/ren-c-sub001/internal/action"
	"github.com/r3n/ren-c-sub001/internal/context"
	"github.com/r3n/ren-c-sub001/internal/feed"
	"github.com/r3n/ren-c-sub001/internal/value"
)

// Frame is the activation record of a running action (spec.md §3.5). It
// satisfies action.Activation (so a Dispatcher can read its args/out/spare)
// and value.Specifier (so words inside its compiled body resolve relative
// bindings against it) purely structurally -- neither of those packages
// imports this one.
type Frame struct {
	Feed    *feed.Feed
	Phase   *action.Action
	Args    []value.Cell
	out     value.Cell
	spare   value.Cell
	Prior   *Frame
	Label   string
	debugID uuid.UUID

	// Env carries the *eval.Env this frame's arguments were fulfilled
	// against, opaquely (internal/eval imports this package, so the
	// concrete type can't be named here without a cycle). A dispatcher
	// that itself runs a nested block of code -- IF's branch, a user
	// FUNC's body -- recovers it with a type assertion instead of falling
	// back to some outer anchor context, so names bound by an enclosing
	// FUNC call stay visible inside a branch it evaluates.
	Env any

	reified *context.Context // non-nil once FRAME OF / a definitional RETURN captures this
}

// returnSymbol names the synthesized RETURN parameter slot (which carries
// no declared symbol of its own) once reified into a heap context.
var returnSymbol = value.NewSymbolTable().Intern("return")

// Root builds the bottom sentinel frame of spec.md §4.C: "prior is null
// and which owns no parameters; it exists so API handles created at boot
// have somewhere to attach."
func Root() *Frame {
	return &Frame{Label: "boot", debugID: uuid.New()}
}

// Push creates a new frame for phase, chained above prior, with one arg
// slot per declared parameter.
func Push(prior *Frame, ph *action.Action, f *feed.Feed, label string) *Frame {
	return &Frame{
		Feed:    f,
		Phase:   ph,
		Args:    make([]value.Cell, len(ph.Params)),
		Prior:   prior,
		Label:   label,
		debugID: uuid.New(),
	}
}

// DebugID is this frame's stable tracing identity (SPEC_FULL.md's ambient
// debug-identity wiring for FRAME OF / CATCH/NAME tracing).
func (f *Frame) DebugID() uuid.UUID { return f.debugID }

// --- action.Activation ---

func (f *Frame) Arg(index int) *value.Cell {
	if index < 0 || index >= len(f.Args) {
		return nil
	}
	return &f.Args[index]
}

func (f *Frame) Out() *value.Cell { return &f.out }

func (f *Frame) Spare() *value.Cell { return &f.spare }

func (f *Frame) NumArgs() int { return len(f.Args) }

// --- value.Specifier ---

// Resolve implements value.Specifier: it turns a relative binding pointed
// at this frame's phase into an absolute binding against this frame's
// reified varlist (reifying it on first use).
func (f *Frame) Resolve(relative any) any {
	rel, ok := relative.(value.RelativeBinding)
	if !ok {
		return relative
	}
	if rel.ActionIdentity != f.Phase {
		// Bound to a different (e.g. outer) activation; hand back the
		// raw relative binding unchanged so an enclosing Resolve call
		// (walking Prior) gets a chance at it.
		if f.Prior != nil {
			return f.Prior.Resolve(relative)
		}
		return relative
	}
	return f.Reify()
}

// Reify captures this frame's argument slots into a heap Context, lazily,
// the way FRAME OF or a definitional RETURN triggers reification (spec.md
// §3.5: "its varlist may be reified into a heap context if someone
// captures it"). Subsequent calls return the same Context.
func (f *Frame) Reify() *context.Context {
	if f.reified != nil {
		return f.reified
	}
	ctx := context.New(context.KindFrame, len(f.Phase.Params))
	for i, p := range f.Phase.Params {
		sym := p.Symbol
		if sym == nil {
			sym = returnSymbol
		}
		idx := ctx.Append(sym)
		value.CopyCell(ctx.At(idx), &f.Args[i])
	}
	f.reified = ctx
	return ctx
}

// Drop releases this frame's argument slots, per spec.md §4.I's fail-unwind
// description ("each frame's drop logic releases its argument slots and
// unreifies its varlist if possible").
func (f *Frame) Drop() {
	for i := range f.Args {
		value.InitBlank(&f.Args[i], false)
	}
	if f.reified == nil {
		return
	}
	// A reified varlist already escaped to the heap (someone holds a
	// FRAME OF reference); it can't be un-reified out from under them,
	// so it is simply left alone for the GC to collect once unreachable.
}
