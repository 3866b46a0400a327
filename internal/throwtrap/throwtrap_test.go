package throwtrap

import (
	"errors"
	"strings"
	"testing"
)

func TestFailErrorIncludesCodeAndNear(t *testing.T) {
	f := NewFail(ArgType, "expected integer!").WithNear(Near{File: "input", Line: 3, Column: 5})
	msg := f.Error()
	if !strings.Contains(msg, "arg-type") || !strings.Contains(msg, "input:3:5") {
		t.Fatalf("expected code and location in message, got %q", msg)
	}
}

func TestFailWithCauseUnwraps(t *testing.T) {
	cause := errors.New("bad digits")
	f := NewFail(ScanInvalid, "malformed integer").WithCause(cause)
	if !strings.Contains(f.Error(), "bad digits") {
		t.Fatalf("expected wrapped cause in message, got %q", f.Error())
	}
	if errors.Unwrap(f) == nil {
		t.Fatal("expected Unwrap to expose the underlying cause")
	}
}

func TestAddFrameAccumulates(t *testing.T) {
	f := NewFail(NoArg, "missing x").AddFrame("foo", Near{Line: 1}).AddFrame("bar", Near{Line: 2})
	if len(f.Stack) != 2 {
		t.Fatalf("expected 2 stack frames, got %d", len(f.Stack))
	}
}

func TestUncaughtThrowBecomesNoCatchFail(t *testing.T) {
	th := &Throw{Label: "foo"}
	f := th.AsNoCatchFail()
	if f.Code != NoCatch {
		t.Fatalf("expected NoCatch code, got %v", f.Code)
	}
}

func TestRaisePanicsWithPanicType(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Raise to panic")
		}
		if _, ok := r.(Panic); !ok {
			t.Fatalf("expected panic value of type Panic, got %T", r)
		}
	}()
	Raise("guard stack imbalance: depth %d", 3)
}
