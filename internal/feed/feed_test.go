package feed

import (
	"testing"

	"github.com/r3n/ren-c-sub001/internal/value"
)

func TestArraySourceFetchAdvancesLookback(t *testing.T) {
	arr := value.NewArray(value.FlavorArray, 2)
	var a, b value.Cell
	value.InitInteger(&a, 1, true)
	value.InitInteger(&b, 2, true)
	arr.Push(a)
	arr.Push(b)

	f := New(NewArraySource(arr, 0, nil))
	if f.Current().AsInteger() != 1 {
		t.Fatalf("expected first current to be 1, got %v", f.Current().AsInteger())
	}
	f.FetchNext()
	if f.Current().AsInteger() != 2 {
		t.Fatalf("expected current to advance to 2, got %v", f.Current().AsInteger())
	}
	if f.Lookback().AsInteger() != 1 {
		t.Fatalf("expected lookback to hold 1, got %v", f.Lookback().AsInteger())
	}
}

func TestFeedAtEndAfterExhaustion(t *testing.T) {
	arr := value.NewArray(value.FlavorArray, 1)
	var a value.Cell
	value.InitInteger(&a, 42, true)
	arr.Push(a)

	f := New(NewArraySource(arr, 0, nil))
	if f.AtEnd() {
		t.Fatal("expected feed not to be at end immediately after priming")
	}
	f.FetchNext()
	if !f.AtEnd() {
		t.Fatal("expected feed to be at end after consuming the only cell")
	}
	if !value.IsEnd(f.Current()) {
		t.Fatal("expected Current to be an end marker once exhausted")
	}
}

func TestFetchNextClearsGotten(t *testing.T) {
	arr := value.NewArray(value.FlavorArray, 2)
	var a, b value.Cell
	value.InitInteger(&a, 1, true)
	value.InitInteger(&b, 2, true)
	arr.Push(a)
	arr.Push(b)

	f := New(NewArraySource(arr, 0, nil))
	var cached value.Cell
	value.InitInteger(&cached, 99, false)
	f.SetGotten(&cached)
	if f.Gotten() == nil {
		t.Fatal("expected Gotten to be cached")
	}
	f.FetchNext()
	if f.Gotten() != nil {
		t.Fatal("expected FetchNext to clear the cached Gotten value")
	}
}

func TestVariadicSourceInterleavesMadeAndScannedFragments(t *testing.T) {
	var made value.Cell
	value.InitInteger(&made, 7, false)

	scan := func(text string) Source {
		arr := value.NewArray(value.FlavorArray, 1)
		var c value.Cell
		value.InitWord(&c, nil, true)
		_ = text
		arr.Push(c)
		return NewArraySource(arr, 0, nil)
	}

	fragments := []SplicedFragment{
		{Made: true, Cell: made},
		{Text: "foo"},
	}
	src := NewVariadicSource(fragments, scan, nil)
	f := New(src)
	if f.Current().AsInteger() != 7 {
		t.Fatalf("expected first fragment to be the made cell 7, got %v", f.Current().AsInteger())
	}
	f.FetchNext()
	if f.Current().Kind() != value.KindWord {
		t.Fatalf("expected second fragment to come from the scanned sub-source, got kind %v", f.Current().Kind())
	}
}
