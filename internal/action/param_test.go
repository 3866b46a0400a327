package action

import (
	"testing"

	"github.com/r3n/ren-c-sub001/internal/value"
)

func TestTypeSetAcceptsEmptyIsUnconstrained(t *testing.T) {
	var ts TypeSet
	if !ts.Accepts(value.KindInteger) {
		t.Fatal("zero-value TypeSet should accept any kind")
	}
}

func TestTypeSetOfRestricts(t *testing.T) {
	ts := TypeSetOf(value.KindInteger, value.KindText)
	if !ts.Accepts(value.KindInteger) || !ts.Accepts(value.KindText) {
		t.Fatal("expected both declared kinds to be accepted")
	}
	if ts.Accepts(value.KindLogic) {
		t.Fatal("expected an undeclared kind to be rejected")
	}
}

func TestParamIsRefinement(t *testing.T) {
	p := Param{Tags: TagRefinement}
	if !p.IsRefinement() {
		t.Fatal("expected TagRefinement to mark the param as a refinement")
	}
	p2 := Param{}
	if p2.IsRefinement() {
		t.Fatal("expected a bare Param to not be a refinement")
	}
}
