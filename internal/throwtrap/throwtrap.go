// Package throwtrap implements the three error-severity tiers of the
// evaluator's non-local-exit plumbing: recoverable Fail, labelled Throw,
// and unrecoverable Panic (spec.md §4.I, §7).
package throwtrap

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/r3n/ren-c-sub001/internal/value"
)

// Code is an error-taxonomy tag (spec.md §4.I's representative list).
type Code string

const (
	NoValue         Code = "no-value"
	NeedNonVoid     Code = "need-non-void"
	NeedNonNull     Code = "need-non-null"
	ArgType         Code = "arg-type"
	BadRefine       Code = "bad-refine"
	NoArg           Code = "no-arg"
	Overflow        Code = "overflow"
	AmbiguousInfix  Code = "ambiguous-infix"
	LiteralLeftPath Code = "literal-left-path"
	EvaluateNull    Code = "evaluate-null"
	VoidEvaluation  Code = "void-evaluation"
	ScanInvalid     Code = "scan-invalid"
	ScanMissing     Code = "scan-missing"
	ScanExtra       Code = "scan-extra"
	ScanMismatch    Code = "scan-mismatch"
	IllegalCR       Code = "illegal-cr"
	IllegalZeroByte Code = "illegal-zero-byte"
	DupVars         Code = "dup-vars"
	InvalidCompare  Code = "invalid-compare"
	NoCatch         Code = "no-catch-for-throw"
	Halt            Code = "halt"
	ZeroDivide      Code = "zero-divide"
)

// Near is the source-location stamp a Fail carries (spec.md §7: "a 'near'
// field set by the scanner or by the error-raising site").
type Near struct {
	File   string
	Line   int
	Column int
}

func (n Near) String() string {
	if n.File == "" && n.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", n.File, n.Line, n.Column)
}

// Frame is one entry of the call-stack trace attached to a Fail (mirrors
// the teacher's StackFrame).
type Frame struct {
	Label string
	Near  Near
}

// Fail is a recoverable error value (spec.md §7 tier 1). It implements the
// standard error interface so it can travel through normal Go error
// returns until a TRAP/CATCH boundary (internal/eval) intercepts it.
type Fail struct {
	Code    Code
	Message string
	At      Near
	Stack   []Frame
	cause   error
}

// NewFail builds a Fail with no location; WithNear/WithStack/WithCause
// attach context as the error propagates.
func NewFail(code Code, message string) *Fail {
	return &Fail{Code: code, Message: message}
}

func (f *Fail) WithNear(n Near) *Fail {
	f.At = n
	return f
}

func (f *Fail) WithStack(frames []Frame) *Fail {
	f.Stack = frames
	return f
}

// WithCause wraps an underlying Go error (e.g. a strconv failure during
// scanning) using pkg/errors so %+v still prints its stack trace.
func (f *Fail) WithCause(cause error) *Fail {
	f.cause = errors.WithStack(cause)
	return f
}

func (f *Fail) Unwrap() error { return f.cause }

func (f *Fail) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", f.Code, f.Message)
	if loc := f.At.String(); loc != "" {
		fmt.Fprintf(&sb, "\n  at %s", loc)
	}
	for _, fr := range f.Stack {
		fmt.Fprintf(&sb, "\n  called from %s (%s)", fr.Label, fr.Near)
	}
	if f.cause != nil {
		fmt.Fprintf(&sb, "\n  caused by: %v", f.cause)
	}
	return sb.String()
}

// AddFrame records one more call-stack entry as a Fail unwinds through
// internal/eval's Drop path, growing the trace outward-in the way spec.md
// §7 describes ("unwinds down to the nearest trap boundary, dropping
// actions and their argument slots").
func (f *Fail) AddFrame(label string, n Near) *Fail {
	f.Stack = append(f.Stack, Frame{Label: label, Near: n})
	return f
}

// Throw is a labelled non-local exit (spec.md §7 tier 2): RETURN, UNWIND,
// QUIT and user CATCH/NAME throws all funnel through this type. Label is
// compared by identity (pointer equality on an *action.Action, or value
// equality on a WORD! symbol) at the catching CATCH.
type Throw struct {
	Label any
	Value value.Cell
}

func (t *Throw) Error() string {
	return fmt.Sprintf("throw: uncaught non-local exit (label=%v)", t.Label)
}

// AsNoCatchFail converts an uncaught Throw reaching the top level into a
// Fail, per spec.md §7: "an uncaught throw at the top level becomes a
// fail (\"no catch for throw\")."
func (t *Throw) AsNoCatchFail() *Fail {
	return NewFail(NoCatch, t.Error())
}

// Panic signals an internal-consistency violation (spec.md §7 tier 3):
// never recoverable, never caught by TRAP/CATCH. Callers invoke Raise,
// which panics with this type so that only internal/eval's top-level
// recover (if any -- spec.md says this path is a process abort, so the
// reference cmd/renc entry point does not recover it) ever observes it.
type Panic struct {
	Message string
}

func (p Panic) String() string { return "panic: " + p.Message }

// Raise panics with a Panic value carrying msg. This is the only sanctioned
// call site for an unrecoverable internal-consistency abort (imbalanced
// guard stack, end-marker produced where a value was required, a dispatch
// table with a missing required hook).
func Raise(format string, args ...any) {
	panic(Panic{Message: fmt.Sprintf(format, args...)})
}
