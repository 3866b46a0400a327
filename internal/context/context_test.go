package context

import (
	"testing"

	"github.com/r3n/ren-c-sub001/internal/value"
)

func TestAppendAndLookup(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 0)

	foo := tbl.Intern("foo")
	idx := ctx.Append(foo)

	var v value.Cell
	value.InitInteger(&v, 99, false)
	if !ctx.Set(foo, v, false) {
		t.Fatal("Set on an existing slot should succeed")
	}

	got, ok := ctx.Get(foo)
	if !ok || got.AsInteger() != 99 {
		t.Fatalf("expected 99, got ok=%v val=%v", ok, got)
	}
	if gotIdx, _ := ctx.Lookup(foo); gotIdx != idx {
		t.Fatalf("lookup index mismatch: %d vs %d", gotIdx, idx)
	}
}

func TestSetProtectedSlotFails(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 0)
	sym := tbl.Intern("x")
	ctx.Append(sym)
	ctx.At(0).SetFlag(value.Protected)

	var v value.Cell
	value.InitInteger(&v, 1, false)
	if ctx.Set(sym, v, false) {
		t.Fatal("Set must fail on a protected slot")
	}
}

func TestBindDeepAndCachedIndexReuse(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 0)
	x := tbl.Intern("x")
	ctx.Append(x)
	var ten value.Cell
	value.InitInteger(&ten, 10, false)
	ctx.Set(x, ten, false)

	arr := value.NewArray(value.FlavorArray, 1)
	var word value.Cell
	value.InitWord(&word, x, true)
	arr.Push(word)

	BindDeep(arr, ctx, MaskAllWords, false)

	slot := Lookup(arr.AtPtr(0))
	if slot == nil || slot.AsInteger() != 10 {
		t.Fatalf("expected bound word to resolve to 10, got %v", slot)
	}
}

func TestUnbindDeepClearsBinding(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 0)
	x := tbl.Intern("x")
	ctx.Append(x)

	arr := value.NewArray(value.FlavorArray, 1)
	var word value.Cell
	value.InitWord(&word, x, true)
	arr.Push(word)
	BindDeep(arr, ctx, MaskAllWords, false)

	UnbindDeep(arr, nil)
	if Lookup(arr.AtPtr(0)) != nil {
		t.Fatal("expected word to be unbound")
	}
}

func TestSymbolsReturnsSortedNames(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 0)
	ctx.Append(tbl.Intern("zeta"))
	ctx.Append(tbl.Intern("alpha"))

	got := ctx.Symbols()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
		t.Fatalf("expected sorted [alpha zeta], got %v", got)
	}
}

func TestLetPatchShadowsAnchor(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := New(KindObject, 0)
	x := tbl.Intern("x")
	ctx.Append(x)
	var outerVal value.Cell
	value.InitInteger(&outerVal, 1, false)
	ctx.Set(x, outerVal, false)

	var innerVal value.Cell
	value.InitInteger(&innerVal, 2, false)
	patch := NewPatch(x, innerVal, nil)

	slot, ok := Chain(patch, ctx, x)
	if !ok || slot.AsInteger() != 2 {
		t.Fatalf("expected patch to shadow anchor with 2, got %v", slot)
	}

	slot, ok = Chain(nil, ctx, x)
	if !ok || slot.AsInteger() != 1 {
		t.Fatalf("expected anchor fallback to yield 1, got %v", slot)
	}
}
