// Package scanner implements the tokenizer / array-assembler of spec.md
// §4.D: UTF-8 source bytes in, a tree of value.Cell out. Grounded on the
// teacher's own hand-written character-at-a-time scanner
// (internal/lexer/scanner.go: source/start/current/line fields and an
// advance/isAtEnd/addToken helper trio), adapted from "token list" output
// to "pushed cell run on a data stack, popped into an array" output, since
// Rebol notation is self-describing enough that lexing and parsing are one
// pass here.
package scanner

import (
	"strconv"
	"strings"

	"github.com/r3n/ren-c-sub001/internal/datastack"
	"github.com/r3n/ren-c-sub001/internal/throwtrap"
	"github.com/r3n/ren-c-sub001/internal/value"
)

// Scanner walks one source buffer left to right, assembling nested arrays
// on demand as BLOCK_BEGIN/GROUP_BEGIN are encountered.
type Scanner struct {
	src     []byte
	pos     int
	line    int
	col     int
	file    string
	tbl     *value.SymbolTable
	pendingNewline bool
}

// New builds a Scanner over src. file is used only for error/near
// reporting. tbl is the symbol table words are interned into.
func New(src string, file string, tbl *value.SymbolTable) *Scanner {
	return &Scanner{src: []byte(src), line: 1, col: 1, file: file, tbl: tbl}
}

func (s *Scanner) near() throwtrap.Near {
	return throwtrap.Near{File: s.file, Line: s.line, Column: s.col}
}

func (s *Scanner) fail(code throwtrap.Code, msg string) error {
	return throwtrap.NewFail(code, msg).WithNear(s.near())
}

// ScanToEnd scans the whole buffer as a top-level block body (no
// enclosing bracket expected) and returns the resulting cells as a slice
// suitable for value.Series.Extend or direct iteration.
func (s *Scanner) ScanToEnd() ([]value.Cell, error) {
	return s.scanUntil(0)
}

// ScanOne scans exactly one token/array and returns its cell, for the
// feed's "one-token mode" (spec.md §4.D).
func (s *Scanner) ScanOne() (value.Cell, bool, error) {
	s.skipWhitespaceAndComments()
	if s.atEnd() {
		return value.Cell{}, false, nil
	}
	c, err := s.scanAtom()
	if err != nil {
		return value.Cell{}, false, err
	}
	return c, true, nil
}

// closer is 0 for top-level, ']' for a BLOCK, ')' for a GROUP.
func (s *Scanner) scanUntil(closer byte) ([]value.Cell, error) {
	stack := datastack.New()
	mark := stack.Mark()
	for {
		s.skipWhitespaceAndComments()
		if s.atEnd() {
			if closer != 0 {
				return nil, s.fail(throwtrap.ScanMissing, "missing-closer: expected '"+string(closer)+"'")
			}
			break
		}
		if s.peek() == closer && closer != 0 {
			s.advance()
			break
		}
		if s.peek() == ']' || s.peek() == ')' {
			return nil, s.fail(throwtrap.ScanExtra, "extra-closer: unexpected '"+string(s.peek())+"'")
		}
		cell, err := s.scanAtom()
		if err != nil {
			return nil, err
		}
		stack.Push(cell)
	}
	return stack.PopRun(mark, value.FlavorArray).Cells(), nil
}

func (s *Scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *Scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *Scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *Scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		c := s.peek()
		switch {
		case c == '\r':
			// spec.md §4.D / §6: "CR in source is rejected."
			return
		case c == 0:
			return
		case c == ' ' || c == '\t':
			s.advance()
		case c == '\n':
			s.advance()
			s.pendingNewline = true
		case c == ';':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '[', ']', '(', ')', '{', '}', '"', ';', ',', ' ', '\t', '\n', '\r', 0:
		return true
	default:
		return false
	}
}

// scanAtom scans exactly one complete value (including any trailing
// path/tuple interstitial chain and any SET-/GET-/SYM- sigil and leading
// quote marks), per spec.md §4.D steps 2-5.
func (s *Scanner) scanAtom() (value.Cell, error) {
	if s.peek() == '\r' {
		return value.Cell{}, s.fail(throwtrap.IllegalCR, "illegal-cr: literal CR in source")
	}

	quotes := 0
	for s.peek() == '\'' {
		quotes++
		s.advance()
	}

	getSigil := false
	if s.peek() == ':' && !isDigit(s.peekAt(1)) {
		getSigil = true
		s.advance()
	}
	symSigil := false
	if s.peek() == '@' {
		symSigil = true
		s.advance()
	}

	leading := s.peek() == '/' || (s.peek() == '.' && !isDigit(s.peekAt(1)))

	var head value.Cell
	var err error
	if leading {
		value.InitBlank(&head, true)
	} else {
		head, err = s.scanPrimary()
		if err != nil {
			return value.Cell{}, err
		}
	}

	result, err := s.maybeAssemblePath(head)
	if err != nil {
		return value.Cell{}, err
	}

	if s.peek() == ':' {
		s.advance()
		applySetForm(&result)
	} else if getSigil {
		applyGetForm(&result)
	} else if symSigil {
		applySymForm(&result)
	}

	if quotes > 0 {
		value.Quotify(&result, uint8(quotes))
	}
	if s.pendingNewline {
		result.SetFlag(value.NewlineBefore)
		s.pendingNewline = false
	}
	return result, nil
}

// maybeAssemblePath implements spec.md §4.D step 4: a token followed
// immediately (no whitespace) by '/' or '.' begins a path/tuple chain. head
// is either the already-scanned leading element, or a leading blank if the
// atom itself started with the separator (e.g. "/only"). If no separator
// follows head, head is returned unchanged.
func (s *Scanner) maybeAssemblePath(head value.Cell) (value.Cell, error) {
	sep := s.peek()
	if sep != '/' && (sep != '.' || isDigit(s.peekAt(1))) {
		return head, nil
	}

	elems := []value.Cell{head}
	for s.peek() == sep {
		s.advance()
		if isDelimiter(s.peek()) {
			var blank value.Cell
			value.InitBlank(&blank, true)
			elems = append(elems, blank)
			break
		}
		next, err := s.scanPrimary()
		if err != nil {
			return value.Cell{}, err
		}
		elems = append(elems, next)
	}

	if len(elems) == 2 && elems[0].Kind() == value.KindBlank && elems[1].Kind() == value.KindBlank {
		var c value.Cell
		value.InitWord(&c, s.tbl.Intern("/"), true)
		return c, nil
	}

	arr := value.NewArray(value.FlavorArray, len(elems))
	arr.Extend(elems)
	var out value.Cell
	if sep == '/' {
		value.InitPath(&out, value.KindPath, arr, 0, true)
	} else {
		value.InitTuple(&out, value.KindTuple, arr, 0, true)
	}
	return out, nil
}

func applySetForm(c *value.Cell) {
	switch c.Kind() {
	case value.KindWord:
		c.ResetKindPreservingPayload(value.KindSetWord)
	case value.KindPath:
		c.ResetKindPreservingPayload(value.KindSetPath)
	case value.KindTuple:
		c.ResetKindPreservingPayload(value.KindSetTuple)
	case value.KindBlock:
		c.ResetKindPreservingPayload(value.KindSetBlock)
	case value.KindGroup:
		c.ResetKindPreservingPayload(value.KindSetGroup)
	}
}

func applyGetForm(c *value.Cell) {
	switch c.Kind() {
	case value.KindWord:
		c.ResetKindPreservingPayload(value.KindGetWord)
	case value.KindPath:
		c.ResetKindPreservingPayload(value.KindGetPath)
	case value.KindTuple:
		c.ResetKindPreservingPayload(value.KindGetTuple)
	case value.KindBlock:
		c.ResetKindPreservingPayload(value.KindGetBlock)
	case value.KindGroup:
		c.ResetKindPreservingPayload(value.KindGetGroup)
	}
}

func applySymForm(c *value.Cell) {
	switch c.Kind() {
	case value.KindWord:
		c.ResetKindPreservingPayload(value.KindSymWord)
	case value.KindPath:
		c.ResetKindPreservingPayload(value.KindSymPath)
	case value.KindTuple:
		c.ResetKindPreservingPayload(value.KindSymTuple)
	case value.KindBlock:
		c.ResetKindPreservingPayload(value.KindSymBlock)
	case value.KindGroup:
		c.ResetKindPreservingPayload(value.KindSymGroup)
	}
}

// scanPrimary scans one bracket-free, sigil-free, quote-free value: a
// number, string, block, group, or word.
func (s *Scanner) scanPrimary() (value.Cell, error) {
	c := s.peek()
	switch {
	case c == '[':
		s.advance()
		cells, err := s.scanUntil(']')
		if err != nil {
			return value.Cell{}, err
		}
		arr := value.NewArray(value.FlavorArray, len(cells))
		arr.Extend(cells)
		var out value.Cell
		value.InitBlock(&out, arr, 0, true)
		return out, nil

	case c == '(':
		s.advance()
		cells, err := s.scanUntil(')')
		if err != nil {
			return value.Cell{}, err
		}
		arr := value.NewArray(value.FlavorArray, len(cells))
		arr.Extend(cells)
		var out value.Cell
		value.InitGroup(&out, arr, 0, true)
		return out, nil

	case c == '"':
		return s.scanString()

	case c == '<':
		return s.scanTag()

	case c == '_' && isDelimiter(s.peekAt(1)):
		s.advance()
		var out value.Cell
		value.InitBlank(&out, true)
		return out, nil

	case isDigit(c) || ((c == '-' || c == '+') && isDigit(s.peekAt(1))):
		return s.scanNumber()

	default:
		return s.scanWord()
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *Scanner) scanNumber() (value.Cell, error) {
	start := s.pos
	if s.peek() == '-' || s.peek() == '+' {
		s.advance()
	}
	for isDigit(s.peek()) {
		s.advance()
	}
	isDecimal := false
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		isDecimal = true
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	isPercent := false
	if s.peek() == '%' {
		isPercent = true
		s.advance()
	}
	text := string(s.src[start:s.pos])
	var out value.Cell
	if isPercent {
		f, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
		if err != nil {
			return value.Cell{}, s.fail(throwtrap.ScanInvalid, "invalid-token: malformed percent "+text).WithCause(err)
		}
		value.InitPercent(&out, f/100.0, true)
		return out, nil
	}
	if isDecimal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Cell{}, s.fail(throwtrap.ScanInvalid, "invalid-token: malformed decimal "+text).WithCause(err)
		}
		value.InitDecimal(&out, f, true)
		return out, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Cell{}, s.fail(throwtrap.ScanInvalid, "invalid-token: malformed integer "+text).WithCause(err)
	}
	value.InitInteger(&out, n, true)
	return out, nil
}

func (s *Scanner) scanWord() (value.Cell, error) {
	start := s.pos
	for !s.atEnd() && !isDelimiter(s.peek()) && s.peek() != ':' && s.peek() != '/' && s.peek() != '.' {
		s.advance()
	}
	if s.pos == start {
		return value.Cell{}, s.fail(throwtrap.ScanInvalid, "invalid-token: empty token")
	}
	text := string(s.src[start:s.pos])
	switch text {
	case "true", "false":
		var out value.Cell
		value.InitLogic(&out, text == "true", true)
		return out, nil
	}
	var out value.Cell
	value.InitWord(&out, s.tbl.Intern(text), true)
	return out, nil
}

// scanString scans a "..." STRING! with the \" escape only; the fuller
// caret-escape grammar (^A..^_, ^(name)/^(hex)) of spec.md §4.D step 2 is
// a documented simplification (see DESIGN.md).
func (s *Scanner) scanString() (value.Cell, error) {
	s.advance() // opening quote
	var sb strings.Builder
	for {
		if s.atEnd() {
			return value.Cell{}, s.fail(throwtrap.ScanMissing, "missing-closer: unterminated string")
		}
		c := s.advance()
		if c == '"' {
			break
		}
		if c == '\\' && s.peek() == '"' {
			sb.WriteByte(s.advance())
			continue
		}
		sb.WriteByte(c)
	}
	var out value.Cell
	value.InitText(&out, value.NewStringSeries(sb.String()), 0, true)
	return out, nil
}

func (s *Scanner) scanTag() (value.Cell, error) {
	start := s.pos
	s.advance() // '<'
	for !s.atEnd() && s.peek() != '>' {
		s.advance()
	}
	if s.atEnd() {
		return value.Cell{}, s.fail(throwtrap.ScanMissing, "missing-closer: unterminated tag")
	}
	s.advance() // '>'
	text := string(s.src[start+1 : s.pos-1])
	var out value.Cell
	value.InitTag(&out, value.NewStringSeries(text), 0, true)
	return out, nil
}
