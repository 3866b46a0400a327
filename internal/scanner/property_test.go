package scanner

import (
	"context"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/r3n/ren-c-sub001/internal/value"
)

func errScanNotRepeatable(src string, a, b int) error {
	return fmt.Errorf("scan of %q was not repeatable: %d cells vs %d", src, a, b)
}

// TestScanIsConcurrencySafePerTable fans a table of sources out across
// goroutines, each with its own SymbolTable, checking that scanning one
// source's result never depends on another source being scanned
// concurrently (each Scanner/SymbolTable pair is independent state, the
// property spec.md §4.D implicitly assumes for a multi-isolate host).
func TestScanIsConcurrencySafePerTable(t *testing.T) {
	sources := []string{
		"1 2 3", "foo: 10 foo", "[1 [2 3] 4]", "a/b.c", "''quoted",
		"true false", `"text" <tag>`, "/only x.y.z", "neg: -5 neg",
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, src := range sources {
		src := src
		g.Go(func() error {
			tbl := value.NewSymbolTable()
			s := New(src, "concurrent", tbl)
			first, err := s.ScanToEnd()
			if err != nil {
				return err
			}
			tbl2 := value.NewSymbolTable()
			second, err := New(src, "concurrent", tbl2).ScanToEnd()
			if err != nil {
				return err
			}
			if len(first) != len(second) {
				return errScanNotRepeatable(src, len(first), len(second))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
}

// TestQuoteIdempotenceUnderConcurrentScans checks that quote-depth
// accounting (spec.md §4.A's QuoteLevel) is stable across repeated
// concurrent scans of the same increasingly-quoted source.
func TestQuoteIdempotenceUnderConcurrentScans(t *testing.T) {
	levels := []string{"x", "'x", "''x", "'''x"}

	g, _ := errgroup.WithContext(context.Background())
	results := make([]int, len(levels))
	for i, src := range levels {
		i, src := i, src
		g.Go(func() error {
			tbl := value.NewSymbolTable()
			cells, err := New(src, "quote", tbl).ScanToEnd()
			if err != nil {
				return err
			}
			results[i] = value.QuoteLevel(&cells[0])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	for i, want := range []int{0, 1, 2, 3} {
		if results[i] != want {
			t.Fatalf("quote level for %q: expected %d, got %d", levels[i], want, results[i])
		}
	}
}
