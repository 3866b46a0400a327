package value

import "testing"

func TestQuoteIdempotence(t *testing.T) {
	for _, n := range []uint8{0, 1, 2, 3, 4, 7, 20} {
		var c Cell
		InitInteger(&c, 42, false)
		Quotify(&c, n)
		if got := QuoteLevel(&c); got != int(n) {
			t.Fatalf("quote level: want %d, got %d", n, got)
		}
		for i := 0; i < int(n); i++ {
			Dequotify(&c)
		}
		if got := QuoteLevel(&c); got != 0 {
			t.Fatalf("after dequotify: want level 0, got %d", got)
		}
		if c.Kind() != KindInteger || c.AsInteger() != 42 {
			t.Fatalf("unquote(quote(v)) != v: kind=%s int=%d", c.Kind(), c.AsInteger())
		}
	}
}

func TestCopyCellClearsScannerFlags(t *testing.T) {
	var src Cell
	InitInteger(&src, 7, true)
	src.SetFlag(NewlineBefore)

	var dst Cell
	CopyCell(&dst, &src)

	if dst.HasFlag(Unevaluated) {
		t.Fatal("CopyCell must clear Unevaluated")
	}
	if dst.HasFlag(NewlineBefore) {
		t.Fatal("CopyCell must clear NewlineBefore")
	}
	if !src.HasFlag(Unevaluated) {
		t.Fatal("CopyCell must not mutate the source")
	}
}

func TestMoveCellZeroesSource(t *testing.T) {
	var src Cell
	InitInteger(&src, 9, false)
	var dst Cell
	MoveCell(&dst, &src)

	if dst.Kind() != KindInteger || dst.AsInteger() != 9 {
		t.Fatalf("move did not transfer payload: %v", dst)
	}
	if src.Kind() != KindBlank {
		t.Fatalf("move did not reset source: %v", src.Kind())
	}
}

func TestEndMarkerDistinctFromAllKinds(t *testing.T) {
	var end Cell
	SetEnd(&end)
	if !IsEnd(&end) {
		t.Fatal("SetEnd must produce an end marker")
	}
	for k := KindNull; k <= KindCustom; k++ {
		var c Cell
		reset(&c, k, false)
		if IsEnd(&c) {
			t.Fatalf("kind %s must never read as end", k)
		}
	}
}

func TestProtectedArrayRejectsExtendAfterFreeze(t *testing.T) {
	arr := NewArray(FlavorArray, 2)
	var one Cell
	InitInteger(&one, 1, true)
	arr.Push(one)
	arr.Manage()
	arr.FreezeDeep()

	defer func() {
		if recover() == nil {
			t.Fatal("Extend on a frozen managed series must panic")
		}
	}()
	arr.Extend([]Cell{one})
}

func TestSymbolInterningIsPointerStable(t *testing.T) {
	tbl := NewSymbolTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	if a != b {
		t.Fatal("interning the same spelling twice must return the same *Symbol")
	}
	if tbl.Intern("bar") == a {
		t.Fatal("different spellings must not collide")
	}
}
