package scanner

import (
	"testing"

	"github.com/r3n/ren-c-sub001/internal/value"
)

func scanAll(t *testing.T, src string) []value.Cell {
	t.Helper()
	s := New(src, "test", value.NewSymbolTable())
	cells, err := s.ScanToEnd()
	if err != nil {
		t.Fatalf("unexpected scan error for %q: %v", src, err)
	}
	return cells
}

func TestScanIntegerAndDecimal(t *testing.T) {
	cells := scanAll(t, "1 -2 3.5")
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	if cells[0].Kind() != value.KindInteger || cells[0].AsInteger() != 1 {
		t.Fatalf("expected integer 1, got %+v", cells[0])
	}
	if cells[1].AsInteger() != -2 {
		t.Fatalf("expected integer -2, got %v", cells[1].AsInteger())
	}
	if cells[2].Kind() != value.KindDecimal || cells[2].AsDecimal() != 3.5 {
		t.Fatalf("expected decimal 3.5, got %+v", cells[2])
	}
}

func TestScanWordSetWordGetWord(t *testing.T) {
	cells := scanAll(t, "foo foo: :foo")
	if cells[0].Kind() != value.KindWord {
		t.Fatalf("expected WORD, got %v", cells[0].Kind())
	}
	if cells[1].Kind() != value.KindSetWord {
		t.Fatalf("expected SET-WORD, got %v", cells[1].Kind())
	}
	if cells[2].Kind() != value.KindGetWord {
		t.Fatalf("expected GET-WORD, got %v", cells[2].Kind())
	}
}

func TestScanBlockNesting(t *testing.T) {
	cells := scanAll(t, "[1 [2 3]]")
	if len(cells) != 1 || cells[0].Kind() != value.KindBlock {
		t.Fatalf("expected a single BLOCK cell, got %+v", cells)
	}
	outer := cells[0].SeriesPayload().Cells()
	if len(outer) != 2 || outer[0].AsInteger() != 1 {
		t.Fatalf("expected outer [1 [2 3]], got %+v", outer)
	}
	inner := outer[1].SeriesPayload().Cells()
	if len(inner) != 2 || inner[0].AsInteger() != 2 || inner[1].AsInteger() != 3 {
		t.Fatalf("expected inner [2 3], got %+v", inner)
	}
}

func TestScanMissingCloserFails(t *testing.T) {
	s := New("[1 2", "test", value.NewSymbolTable())
	if _, err := s.ScanToEnd(); err == nil {
		t.Fatal("expected a missing-closer error")
	}
}

func TestScanStringAndTag(t *testing.T) {
	cells := scanAll(t, `"hello" <local>`)
	if cells[0].Kind() != value.KindText || cells[0].SeriesPayload().Text() != "hello" {
		t.Fatalf("expected TEXT \"hello\", got %+v", cells[0])
	}
	if cells[1].Kind() != value.KindTag || cells[1].SeriesPayload().Text() != "local" {
		t.Fatalf("expected TAG <local>, got %+v", cells[1])
	}
}

func TestScanRefinementPath(t *testing.T) {
	cells := scanAll(t, "/only")
	if len(cells) != 1 || cells[0].Kind() != value.KindPath {
		t.Fatalf("expected a single PATH cell, got %+v", cells)
	}
	elems := cells[0].SeriesPayload().Cells()
	if len(elems) != 2 || elems[0].Kind() != value.KindBlank || elems[1].Kind() != value.KindWord {
		t.Fatalf("expected [blank only], got %+v", elems)
	}
}

func TestScanPathAndTuple(t *testing.T) {
	cells := scanAll(t, "a/b a.b.c")
	if cells[0].Kind() != value.KindPath {
		t.Fatalf("expected PATH for a/b, got %v", cells[0].Kind())
	}
	if cells[1].Kind() != value.KindTuple {
		t.Fatalf("expected TUPLE for a.b.c, got %v", cells[1].Kind())
	}
	tup := cells[1].SeriesPayload().Cells()
	if len(tup) != 3 {
		t.Fatalf("expected 3-element tuple, got %d", len(tup))
	}
}

func TestScanQuoteLevels(t *testing.T) {
	cells := scanAll(t, "''foo")
	if value.QuoteLevel(&cells[0]) != 2 {
		t.Fatalf("expected quote level 2, got %d", value.QuoteLevel(&cells[0]))
	}
}

func TestScanLogicWords(t *testing.T) {
	cells := scanAll(t, "true false")
	if cells[0].Kind() != value.KindLogic || !cells[0].AsLogic() {
		t.Fatalf("expected LOGIC true, got %+v", cells[0])
	}
	if cells[1].Kind() != value.KindLogic || cells[1].AsLogic() {
		t.Fatalf("expected LOGIC false, got %+v", cells[1])
	}
}

func TestScanIllegalCRFails(t *testing.T) {
	s := New("foo\rbar", "test", value.NewSymbolTable())
	if _, err := s.ScanToEnd(); err == nil {
		t.Fatal("expected illegal-cr error")
	}
}
