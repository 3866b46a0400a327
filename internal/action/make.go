package action

import "github.com/r3n/ren-c-sub001/internal/value"

// specMode tracks which <with>/<local>/<void>/<elide> region of the spec
// block we're currently in (spec.md §4.F step 2).
type specMode uint8

const (
	modeParams specMode = iota
	modeWith
	modeLocal
)

// MakeParamlist builds an Action's Params from a spec block, following the
// seven steps in spec.md §4.F. specCells is the already-scanned spec
// array; dispatcher and flags are supplied by the caller (native or
// interpreted-body construction both funnel through here).
func MakeParamlist(specCells []value.Cell, dispatcher Dispatcher, flags Flags) (*Action, error) {
	act := &Action{Dispatcher: dispatcher, Flags: flags}
	mode := modeParams
	pendingNote := ""
	seen := make(map[*value.Symbol]bool)
	var currentRefinement *value.Symbol

	i := 0
	for i < len(specCells) {
		c := &specCells[i]
		switch {
		case c.Kind() == value.KindTag:
			switch tagText(c) {
			case "local":
				mode = modeLocal
				currentRefinement = nil
			case "with":
				mode = modeWith
				currentRefinement = nil
			case "void", "elide":
				act.Flags |= IsInvisible
			case "end":
				// <end> marks the immediately preceding parameter ENDABLE
				// (spec.md §4.F: "may be left unsupplied at the feed's end,
				// or skipped if the next value's type doesn't fit").
				if len(act.Params) > 0 {
					act.Params[len(act.Params)-1].Tags |= TagEndable
				}
			}
			i++
			continue

		case c.Kind() == value.KindText:
			pendingNote = textOf(c)
			i++
			continue

		case c.Kind().IsBlocklike():
			// A type-set block immediately follows the parameter it
			// constrains; attach it to the last-declared parameter.
			if len(act.Params) > 0 {
				act.Params[len(act.Params)-1].Types = typeSetFromBlock(c)
			}
			i++
			continue

		case isRefinementCell(c):
			sym, err := refinementSymbol(c)
			if err != nil {
				return nil, err
			}
			if seen[sym] {
				return nil, &DupVarsError{Symbol: sym}
			}
			seen[sym] = true
			p := Param{Symbol: sym, Class: ClassNormal, Tags: TagRefinement, Notes: pendingNote}
			pendingNote = ""
			act.Params = append(act.Params, p)
			currentRefinement = sym
			i++
			continue

		case c.Kind().IsWordlike() || c.Kind() == value.KindQuoted:
			sym, class := classify(c)
			if sym == nil {
				i++
				continue
			}
			if seen[sym] {
				return nil, &DupVarsError{Symbol: sym}
			}
			seen[sym] = true
			p := Param{Symbol: sym, Class: class, Notes: pendingNote}
			pendingNote = ""
			switch mode {
			case modeLocal:
				p.Class = ClassLocal
			case modeWith:
				p.Tags |= TagInvisible
			case modeParams:
				p.Refinement = currentRefinement
			}
			act.Params = append(act.Params, p)
			i++
			continue

		default:
			i++
		}
	}

	if flags.Has(HasReturn) {
		ret := Param{Symbol: nil, Class: ClassReturn}
		act.Params = append([]Param{ret}, act.Params...)
	}

	act.Exemplar = make([]*value.Cell, len(act.Params))
	act.Details = value.NewArray(value.FlavorDetails, 1)
	return act, nil
}

// classify determines a plain parameter's Class from its cell form
// (spec.md §4.F step 5): WORD! is NORMAL, GET-WORD! is SOFT, a single
// quote level is HARD, '@' (SYM-WORD!) is MEDIUM, and a quoted GET-WORD is
// MODAL. This is a simplification of Ren-C's richer quoting-class grammar,
// documented as an Open Question resolution in DESIGN.md.
func classify(c *value.Cell) (*value.Symbol, Class) {
	if value.QuoteLevel(c) > 0 {
		unwrapped := value.Unwrapped(c)
		if w := unwrapped.Word(); w != nil {
			if unwrapped.Kind() == value.KindGetWord {
				return w.Symbol, ClassModal
			}
			return w.Symbol, ClassHard
		}
		return nil, ClassNormal
	}
	w := c.Word()
	if w == nil {
		return nil, ClassNormal
	}
	switch c.Kind() {
	case value.KindGetWord:
		return w.Symbol, ClassSoft
	case value.KindSymWord:
		return w.Symbol, ClassMedium
	default:
		return w.Symbol, ClassNormal
	}
}

// isRefinementCell reports whether c is a PATH! of the shape (blank, word)
// -- the scanner's representation of a leading-slash refinement spec like
// /only (spec.md §4.D step 4: "a leading / ... inserts an implicit blank
// on the left").
func isRefinementCell(c *value.Cell) bool {
	if c.Kind() != value.KindPath {
		return false
	}
	arr := c.SeriesPayload()
	if arr == nil || arr.Len() != 2 {
		return false
	}
	cells := arr.Cells()
	return cells[0].Kind() == value.KindBlank && cells[1].Kind() == value.KindWord
}

func refinementSymbol(c *value.Cell) (*value.Symbol, error) {
	arr := c.SeriesPayload()
	cells := arr.Cells()
	w := cells[1].Word()
	if w == nil {
		return nil, &DupVarsError{}
	}
	return w.Symbol, nil
}

func tagText(c *value.Cell) string {
	s := c.SeriesPayload()
	if s == nil {
		return ""
	}
	return s.Text()
}

func textOf(c *value.Cell) string { return tagText(c) }

func typeSetFromBlock(c *value.Cell) TypeSet {
	arr := c.SeriesPayload()
	if arr == nil {
		return 0
	}
	var ts TypeSet
	for _, cell := range arr.Cells() {
		if dt := cell.Word(); dt != nil {
			if k, ok := kindFromDatatypeWord(dt.Symbol.String()); ok {
				ts |= 1 << uint(k)
			}
		}
	}
	return ts
}

// kindFromDatatypeWord maps a datatype-name word (e.g. "integer!") to its
// Kind. Only the spellings exercised by tests/boot words are included;
// this switch is the module's only datatype-name-to-Kind mapping.
func kindFromDatatypeWord(name string) (value.Kind, bool) {
	switch name {
	case "integer!":
		return value.KindInteger, true
	case "decimal!":
		return value.KindDecimal, true
	case "text!", "string!":
		return value.KindText, true
	case "word!":
		return value.KindWord, true
	case "block!":
		return value.KindBlock, true
	case "logic!":
		return value.KindLogic, true
	default:
		return 0, false
	}
}

// DupVarsError is raised when MakeParamlist finds the same symbol declared
// twice (spec.md §4.F step 6).
type DupVarsError struct {
	Symbol *value.Symbol
}

func (e *DupVarsError) Error() string {
	if e.Symbol == nil {
		return "dup-vars: duplicate parameter"
	}
	return "dup-vars: duplicate parameter " + e.Symbol.String()
}
