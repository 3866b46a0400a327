// Package dispatch implements the per-kind hook surface of spec.md §4.J:
// comparison, molding/forming, and generic-action dispatch tables keyed by
// value.Kind. The bitwise type-set check lives in internal/action
// (TypeSet.Accepts), not here.
package dispatch

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/r3n/ren-c-sub001/internal/throwtrap"
	"github.com/r3n/ren-c-sub001/internal/value"
)

// CompareFunc orders or equates two cells of the same dispatch kind,
// spec.md §4.J's "CT" hook. It returns -1/0/1, or an error for kinds with
// no meaningful order ("cannot compare").
type CompareFunc func(a, b *value.Cell, strict bool) (int, error)

// MoldFunc renders a cell as re-readable (MOLD) or display (FORM) text,
// per the MOLD-vs-FORM distinction in SPEC_FULL.md.
type MoldFunc func(c *value.Cell, form bool) string

// GenericFunc implements one generic action (APPEND, PICK, LENGTH OF, ...)
// for a kind. args[0] is the subject cell whose kind selected this hook;
// the remaining entries are the action's other operands.
type GenericFunc func(args []*value.Cell) (value.Cell, error)

// Table is the per-kind hook set. A nil field means "unhooked": callers
// must fail with the taxonomy code spec.md names ("cannot compare",
// "no dispatcher") rather than panicking.
type Table struct {
	Compare  CompareFunc
	Mold     MoldFunc
	Generics map[string]GenericFunc
}

// registry is the closed per-kind hook table, populated by init and by
// Register for host-extensible kinds (e.g. a future CUSTOM! dispatcher).
var registry = make(map[value.Kind]*Table)

// Register installs or replaces the hook table for k.
func Register(k value.Kind, t *Table) { registry[k] = t }

// Lookup returns k's hook table, or nil if unhooked.
func Lookup(k value.Kind) *Table { return registry[k] }

// ErrNoCompare / ErrNoDispatcher mirror spec.md §4.J's named failures.
var (
	ErrNoCompare    = fmt.Errorf("cannot compare")
	ErrNoDispatcher = fmt.Errorf("no dispatcher")
)

// Compare orders/equates a and b, which must share a dispatch kind.
func Compare(a, b *value.Cell, strict bool) (int, error) {
	t := registry[a.Kind()]
	if t == nil || t.Compare == nil {
		return 0, ErrNoCompare
	}
	return t.Compare(a, b, strict)
}

// Mold renders c as MOLD (re-readable, form=false) or FORM (display,
// form=true) text.
func Mold(c *value.Cell, form bool) string {
	t := registry[c.Kind()]
	if t == nil || t.Mold == nil {
		return fmt.Sprintf("#[unmoldable %s!]", c.Kind())
	}
	return t.Mold(c, form)
}

// Dispatch runs the named generic action for subject's kind.
func Dispatch(name string, args []*value.Cell) (value.Cell, error) {
	if len(args) == 0 {
		return value.Cell{}, ErrNoDispatcher
	}
	t := registry[args[0].Kind()]
	if t == nil || t.Generics == nil {
		return value.Cell{}, ErrNoDispatcher
	}
	fn, ok := t.Generics[name]
	if !ok {
		return value.Cell{}, ErrNoDispatcher
	}
	return fn(args)
}

func init() {
	Register(value.KindInteger, &Table{
		Compare: func(a, b *value.Cell, _ bool) (int, error) {
			x, y := a.AsInteger(), b.AsInteger()
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			default:
				return 0, nil
			}
		},
		Mold: func(c *value.Cell, _ bool) string {
			return strconv.FormatInt(c.AsInteger(), 10)
		},
		Generics: map[string]GenericFunc{
			"add": func(args []*value.Cell) (value.Cell, error) {
				var out value.Cell
				value.InitInteger(&out, args[0].AsInteger()+args[1].AsInteger(), false)
				return out, nil
			},
			"subtract": func(args []*value.Cell) (value.Cell, error) {
				var out value.Cell
				value.InitInteger(&out, args[0].AsInteger()-args[1].AsInteger(), false)
				return out, nil
			},
			"multiply": func(args []*value.Cell) (value.Cell, error) {
				var out value.Cell
				value.InitInteger(&out, args[0].AsInteger()*args[1].AsInteger(), false)
				return out, nil
			},
			"divide": func(args []*value.Cell) (value.Cell, error) {
				divisor := args[1].AsInteger()
				if divisor == 0 {
					return value.Cell{}, throwtrap.NewFail(throwtrap.ZeroDivide, "zero-divide: division by zero")
				}
				var out value.Cell
				value.InitInteger(&out, args[0].AsInteger()/divisor, false)
				return out, nil
			},
		},
	})

	Register(value.KindLogic, &Table{
		Compare: func(a, b *value.Cell, _ bool) (int, error) {
			x, y := a.AsLogic(), b.AsLogic()
			if x == y {
				return 0, nil
			}
			if !x && y {
				return -1, nil
			}
			return 1, nil
		},
		Mold: func(c *value.Cell, _ bool) string {
			if c.AsLogic() {
				return "#[true]"
			}
			return "#[false]"
		},
	})

	Register(value.KindText, &Table{
		Compare: func(a, b *value.Cell, strict bool) (int, error) {
			x, y := textOf(a), textOf(b)
			if !strict {
				// case-insensitive default compare, per Rebol string
				// comparison rules without full locale folding.
				x, y = toLowerASCII(x), toLowerASCII(y)
			}
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			default:
				return 0, nil
			}
		},
		Mold: func(c *value.Cell, form bool) string {
			s := textOf(c)
			if form {
				return s
			}
			return "\"" + s + "\""
		},
	})

	Register(value.KindWord, &Table{
		Mold: func(c *value.Cell, _ bool) string {
			w := c.Word()
			if w == nil {
				return "#[word]"
			}
			return w.Symbol.String()
		},
	})

	Register(value.KindBlock, &Table{
		Mold: func(c *value.Cell, form bool) string {
			s := c.SeriesPayload()
			if s == nil {
				return "[]"
			}
			out := "["
			for i, cell := range s.Cells() {
				if i > 0 {
					out += " "
				}
				out += Mold(&cell, form)
			}
			return out + "]"
		},
	})

	Register(value.KindDate, &Table{
		Mold: func(c *value.Cell, _ bool) string {
			days, nanos := c.AsDate()
			t := time.Unix(days*86400, 0).UTC()
			layout := "%Y-%m-%d"
			if c.DateHasTime() {
				t = t.Add(time.Duration(nanos))
				layout = "%Y-%m-%dT%H:%M:%S"
			}
			return strftime.Format(layout, t)
		},
	})

	Register(value.KindTime, &Table{
		Mold: func(c *value.Cell, _ bool) string {
			nanos := c.AsTime()
			t := time.Unix(0, nanos).UTC()
			return strftime.Format("%H:%M:%S", t)
		},
	})

	Register(value.KindError, &Table{
		Mold: func(c *value.Cell, _ bool) string {
			fe, ok := c.ErrorPayload().(*throwtrap.Fail)
			if !ok {
				return "#[error!]"
			}
			return fmt.Sprintf("#[error! %s: %s]", fe.Code, fe.Message)
		},
	})
}

func textOf(c *value.Cell) string {
	s := c.SeriesPayload()
	if s == nil {
		return ""
	}
	return s.Text()
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
