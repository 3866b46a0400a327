package eval

import (
	"testing"

	"github.com/r3n/ren-c-sub001/internal/action"
	"github.com/r3n/ren-c-sub001/internal/context"
	"github.com/r3n/ren-c-sub001/internal/scanner"
	"github.com/r3n/ren-c-sub001/internal/value"
)

func scanArray(t *testing.T, tbl *value.SymbolTable, src string) *value.Series {
	t.Helper()
	s := scanner.New(src, "test", tbl)
	cells, err := s.ScanToEnd()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	arr := value.NewArray(value.FlavorArray, len(cells))
	for _, c := range cells {
		arr.Push(c)
	}
	return arr
}

func TestLiteralsEvaluateToThemselves(t *testing.T) {
	tbl := value.NewSymbolTable()
	arr := scanArray(t, tbl, "1 2 3")
	out, err := New().DoArray(arr, &Env{Ctx: context.New(context.KindObject, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind() != value.KindInteger || out.AsInteger() != 3 {
		t.Fatalf("expected last literal 3, got %+v", out)
	}
}

func TestSetWordThenWordLookup(t *testing.T) {
	tbl := value.NewSymbolTable()
	arr := scanArray(t, tbl, "x: 10 x")
	ctx := context.New(context.KindObject, 1)
	ctx.Append(tbl.Intern("x"))
	out, err := New().DoArray(arr, &Env{Ctx: ctx})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInteger() != 10 {
		t.Fatalf("expected 10, got %v", out.AsInteger())
	}
}

func TestWordLookupOfUnboundFails(t *testing.T) {
	tbl := value.NewSymbolTable()
	arr := scanArray(t, tbl, "nope")
	_, err := New().DoArray(arr, &Env{Ctx: context.New(context.KindObject, 0)})
	if err == nil {
		t.Fatal("expected a no-value error for an unbound word")
	}
}

func TestGroupEvaluatesNestedExpression(t *testing.T) {
	tbl := value.NewSymbolTable()
	arr := scanArray(t, tbl, "(1)")
	out, err := New().DoArray(arr, &Env{Ctx: context.New(context.KindObject, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInteger() != 1 {
		t.Fatalf("expected 1, got %+v", out)
	}
}

func TestQuotedValueDropsOneLevel(t *testing.T) {
	tbl := value.NewSymbolTable()
	arr := scanArray(t, tbl, "''5")
	out, err := New().DoArray(arr, &Env{Ctx: context.New(context.KindObject, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.QuoteLevel(&out) != 1 {
		t.Fatalf("expected one remaining quote level, got %d", value.QuoteLevel(&out))
	}
}

// addDispatcher implements a two-argument NORMAL-class native, grounded on
// the argument-fulfillment table's "NORMAL, arg from feed" row.
func addDispatcher(act action.Activation) (action.Outcome, error) {
	a := act.Arg(0)
	b := act.Arg(1)
	value.InitInteger(act.Out(), a.AsInteger()+b.AsInteger(), false)
	return action.OutcomeNormal, nil
}

func makeAddAction(t *testing.T, tbl *value.SymbolTable) *action.Action {
	t.Helper()
	a := tbl.Intern("a")
	b := tbl.Intern("b")
	var wa, wb value.Cell
	value.InitWord(&wa, a, false)
	value.InitWord(&wb, b, false)
	act, err := action.MakeParamlist([]value.Cell{wa, wb}, addDispatcher, 0)
	if err != nil {
		t.Fatalf("unexpected MakeParamlist error: %v", err)
	}
	return act
}

func TestDispatchCallsNativeWithFulfilledArgs(t *testing.T) {
	tbl := value.NewSymbolTable()
	act := makeAddAction(t, tbl)

	ctx := context.New(context.KindObject, 1)
	idx := ctx.Append(tbl.Intern("add"))
	var actionCell value.Cell
	value.InitAction(&actionCell, act, false)
	value.CopyCell(ctx.At(idx), &actionCell)

	arr := scanArray(t, tbl, "add 3 4")
	out, err := New().DoArray(arr, &Env{Ctx: ctx})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind() != value.KindInteger || out.AsInteger() != 7 {
		t.Fatalf("expected 7, got %+v", out)
	}
}

func TestMissingRequiredArgFails(t *testing.T) {
	tbl := value.NewSymbolTable()
	act := makeAddAction(t, tbl)

	ctx := context.New(context.KindObject, 1)
	idx := ctx.Append(tbl.Intern("add"))
	var actionCell value.Cell
	value.InitAction(&actionCell, act, false)
	value.CopyCell(ctx.At(idx), &actionCell)

	arr := scanArray(t, tbl, "add 3")
	if _, err := New().DoArray(arr, &Env{Ctx: ctx}); err == nil {
		t.Fatal("expected a no-arg error for a missing second argument")
	}
}

func TestEnvBindShadowsAnchorContext(t *testing.T) {
	tbl := value.NewSymbolTable()
	ctx := context.New(context.KindObject, 1)
	sym := tbl.Intern("x")
	idx := ctx.Append(sym)
	value.InitInteger(ctx.At(idx), 1, false)

	var inner value.Cell
	value.InitInteger(&inner, 99, false)
	env := (&Env{Ctx: ctx}).Bind(sym, inner)

	arr := scanArray(t, tbl, "x")
	out, err := New().DoArray(arr, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInteger() != 99 {
		t.Fatalf("expected the LET patch's 99 to shadow the anchor's 1, got %v", out.AsInteger())
	}
}
