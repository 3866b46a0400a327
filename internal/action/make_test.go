package action

import (
	"testing"

	"github.com/r3n/ren-c-sub001/internal/value"
)

func refinementCell(tbl *value.SymbolTable, name string) value.Cell {
	arr := value.NewArray(value.FlavorArray, 2)
	var blank, word value.Cell
	value.InitBlank(&blank, false)
	value.InitWord(&word, tbl.Intern(name), false)
	arr.Push(blank)
	arr.Push(word)
	var c value.Cell
	value.InitPath(&c, value.KindPath, arr, 0, false)
	return c
}

func wordCell(tbl *value.SymbolTable, name string) value.Cell {
	var c value.Cell
	value.InitWord(&c, tbl.Intern(name), false)
	return c
}

func textCell(s string) value.Cell {
	var c value.Cell
	value.InitText(&c, value.NewStringSeries(s), 0, false)
	return c
}

func tagCell(s string) value.Cell {
	var c value.Cell
	value.InitTag(&c, value.NewStringSeries(s), 0, false)
	return c
}

func typeBlockCell(tbl *value.SymbolTable, names ...string) value.Cell {
	arr := value.NewArray(value.FlavorArray, len(names))
	for _, n := range names {
		arr.Push(wordCell(tbl, n))
	}
	var c value.Cell
	value.InitBlock(&c, arr, 0, false)
	return c
}

func TestMakeParamlistBasic(t *testing.T) {
	tbl := value.NewSymbolTable()
	spec := []value.Cell{
		textCell("adds two values"),
		wordCell(tbl, "x"),
		typeBlockCell(tbl, "integer!"),
		wordCell(tbl, "y"),
		refinementCell(tbl, "only"),
		tagCell("local"),
		wordCell(tbl, "z"),
	}

	act, err := MakeParamlist(spec, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(act.Params) != 4 {
		t.Fatalf("expected 4 params (x, y, only, z), got %d: %+v", len(act.Params), act.Params)
	}

	x := act.Params[0]
	if x.Symbol.String() != "x" || x.Class != ClassNormal {
		t.Fatalf("expected x to be a plain NORMAL param, got %+v", x)
	}
	if x.Notes != "adds two values" {
		t.Fatalf("expected x to carry the preceding note, got %q", x.Notes)
	}
	if !x.Types.Accepts(value.KindInteger) || x.Types.Accepts(value.KindText) {
		t.Fatalf("expected x's type set to accept only integer!, got %v", x.Types)
	}

	y := act.Params[1]
	if y.Symbol.String() != "y" {
		t.Fatalf("expected second param to be y, got %+v", y)
	}

	only := act.Params[2]
	if only.Symbol.String() != "only" || !only.IsRefinement() {
		t.Fatalf("expected /only to be parsed as a refinement param, got %+v", only)
	}

	z := act.Params[3]
	if z.Symbol.String() != "z" || z.Class != ClassLocal {
		t.Fatalf("expected z after <local> to be a LOCAL param, got %+v", z)
	}
}

func TestMakeParamlistDuplicateFails(t *testing.T) {
	tbl := value.NewSymbolTable()
	spec := []value.Cell{
		wordCell(tbl, "x"),
		wordCell(tbl, "x"),
	}
	if _, err := MakeParamlist(spec, nil, 0); err == nil {
		t.Fatal("expected a duplicate parameter to fail")
	}
}

func TestMakeParamlistReturnPrepended(t *testing.T) {
	tbl := value.NewSymbolTable()
	spec := []value.Cell{wordCell(tbl, "x")}
	act, err := MakeParamlist(spec, nil, HasReturn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(act.Params) != 2 || act.Params[0].Class != ClassReturn {
		t.Fatalf("expected a prepended RETURN param, got %+v", act.Params)
	}
}
