package context

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/r3n/ren-c-sub001/internal/value"
)

// TestSymbolsDumpMatchesExpectedShape uses kr/pretty's structural diff to
// assert a context's Symbols() dump exactly, the way a debug-dump
// assertion on a keylist/varlist pair wants a readable mismatch report
// rather than a single-line slice comparison failure.
func TestSymbolsDumpMatchesExpectedShape(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 2)
	ctx.Append(tbl.Intern("beta"))
	ctx.Append(tbl.Intern("alpha"))

	got := ctx.Symbols()
	want := []string{"alpha", "beta"}

	if diff := pretty.Diff(got, want); len(diff) != 0 {
		t.Fatalf("Symbols() dump mismatch:\n%s", pretty.Sprint(diff))
	}
}
