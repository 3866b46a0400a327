package value

import "math"

// Cell is a fixed-size value slot (spec.md §3.1). The payload is modeled
// as two machine-word slots (word0/word1) plus one "extra" slot, exactly
// as the spec describes, rather than as a Go union -- which the language
// doesn't have. Which fields are meaningful depends on Kind/Heart.
type Cell struct {
	kind  Kind
	heart Kind // sub-tag; equal to kind unless a syntactic form borrows another's payload shape
	depth uint8
	flags Flags

	word0 uint64 // integer bits, decimal bits, pair X, logic, char rune
	word1 uint64 // pair Y, series index, money scale
	extra any    // *Series, *Symbol, Binding, *Action, or nil
}

// Kind returns the cell's primary tag.
func (c *Cell) Kind() Kind { return c.kind }

// Heart returns the cell's sub-tag (equal to Kind for most cells).
func (c *Cell) Heart() Kind { return c.heart }

// QuoteDepth returns how many apostrophes semantically wrap this value.
func (c *Cell) QuoteDepth() uint8 { return c.depth }

func (c *Cell) Flags() Flags { return c.flags }

func (c *Cell) HasFlag(f Flags) bool { return c.flags.Has(f) }

func (c *Cell) SetFlag(f Flags) { c.flags = c.flags.Set(f) }

func (c *Cell) ClearFlag(f Flags) { c.flags = c.flags.Clear(f) }

// ---------------------------------------------------------------------
// End markers
// ---------------------------------------------------------------------

// IsEnd reports whether c is an end-marker cell. End markers are distinct
// from every value Kind and may never be produced by CopyCell/MoveCell.
func IsEnd(c *Cell) bool { return c.kind == kindEnd }

// SetEnd writes the end-marker tag into c. It is the only function in this
// package allowed to produce a kindEnd cell.
func SetEnd(c *Cell) {
	*c = Cell{kind: kindEnd, heart: kindEnd}
}

// ---------------------------------------------------------------------
// Construction (init_<kind> family, spec.md §4.A)
// ---------------------------------------------------------------------

// reset clears c to a bare cell of the given kind/heart, setting
// Unevaluated when fromScanner is true (scanner / inert literal path).
func reset(c *Cell, kind Kind, fromScanner bool) {
	*c = Cell{kind: kind, heart: kind}
	if fromScanner {
		c.flags = c.flags.Set(Unevaluated)
	}
}

// ResetCell re-tags c in place, clearing payload and flags except those
// passed in keep.
func ResetCell(c *Cell, kind Kind, keep Flags) {
	*c = Cell{kind: kind, heart: kind, flags: keep}
}

func InitBlank(c *Cell, fromScanner bool) { reset(c, KindBlank, fromScanner) }

func InitVoid(c *Cell, fromScanner bool) { reset(c, KindVoid, fromScanner) }

func InitNull(c *Cell) { reset(c, KindNull, false) }

func InitLogic(c *Cell, b bool, fromScanner bool) {
	reset(c, KindLogic, fromScanner)
	if b {
		c.word0 = 1
	}
}

// Truthy reports whether c counts as a true condition: only LOGIC! false
// and BLANK!/NULL are falsy, everything else (including 0 and an empty
// series) is truthy.
func Truthy(c *Cell) bool {
	switch c.Kind() {
	case KindBlank, KindNull:
		return false
	case KindLogic:
		return c.AsLogic()
	default:
		return true
	}
}

func InitInteger(c *Cell, n int64, fromScanner bool) {
	reset(c, KindInteger, fromScanner)
	c.word0 = uint64(n)
}

func InitDecimal(c *Cell, f float64, fromScanner bool) {
	reset(c, KindDecimal, fromScanner)
	c.word0 = math.Float64bits(f)
}

// InitPercent stores a DECIMAL! payload tagged as PERCENT! (spec.md §3.1:
// kinds sharing a payload shape use Heart to recover the syntactic form).
func InitPercent(c *Cell, f float64, fromScanner bool) {
	InitDecimal(c, f, fromScanner)
	c.kind = KindPercent
	c.heart = KindDecimal
}

// InitMoney stores an integer numerator plus a fixed scale (word1), which
// is sufficient to canonicalize and compare per spec.md §1's scope note:
// we do not chase bit-exact MONEY! arithmetic.
func InitMoney(c *Cell, numerator int64, scale uint8, fromScanner bool) {
	reset(c, KindMoney, fromScanner)
	c.word0 = uint64(numerator)
	c.word1 = uint64(scale)
}

func InitChar(c *Cell, r rune, fromScanner bool) {
	reset(c, KindChar, fromScanner)
	c.word0 = uint64(r)
}

func InitPair(c *Cell, x, y float64, fromScanner bool) {
	reset(c, KindPair, fromScanner)
	c.word0 = math.Float64bits(x)
	c.word1 = math.Float64bits(y)
}

// InitTime stores nanoseconds-since-midnight.
func InitTime(c *Cell, nanos int64, fromScanner bool) {
	reset(c, KindTime, fromScanner)
	c.word0 = uint64(nanos)
}

// InitDate stores a packed (days-since-epoch, time-of-day-nanos) pair; a
// zero word1 with dateHasTime false means "date only".
func InitDate(c *Cell, days int64, nanos int64, hasTime bool, fromScanner bool) {
	reset(c, KindDate, fromScanner)
	c.word0 = uint64(days)
	c.word1 = uint64(nanos)
	if hasTime {
		c.flags = c.flags.Set(dateHasTime)
	}
}

// dateHasTime reuses a currently-unused high bit of Flags local to this
// package's DATE! representation; it never leaks into generic flag checks
// because callers only ever test the public Flags constants.
const dateHasTime Flags = 1 << 15

func (c *Cell) DateHasTime() bool { return c.flags.Has(dateHasTime) }

func InitBitset(c *Cell, s *Series, fromScanner bool) {
	reset(c, KindBitset, fromScanner)
	c.extra = s
}

// initSeriesBacked is shared by all (series, index) payload kinds: strings,
// binaries, arrays (block/group/path/tuple and their SET-/GET-/SYM- forms).
func initSeriesBacked(c *Cell, kind Kind, s *Series, index int, fromScanner bool) {
	reset(c, kind, fromScanner)
	c.extra = s
	c.word1 = uint64(index)
}

func InitText(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindText, s, index, fromScanner)
}

func InitFile(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindFile, s, index, fromScanner)
}

func InitEmail(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindEmail, s, index, fromScanner)
}

func InitURL(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindURL, s, index, fromScanner)
}

func InitTag(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindTag, s, index, fromScanner)
}

func InitIssue(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindIssue, s, index, fromScanner)
}

func InitBinary(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindBinary, s, index, fromScanner)
}

// InitBlock/InitGroup and their SET-/GET-/SYM- variants all share the
// array payload shape; kind alone distinguishes syntactic form.
func InitBlock(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindBlock, s, index, fromScanner)
}

func InitGroup(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindGroup, s, index, fromScanner)
}

func InitSetBlock(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindSetBlock, s, index, fromScanner)
}

func InitGetBlock(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindGetBlock, s, index, fromScanner)
}

func InitSymBlock(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindSymBlock, s, index, fromScanner)
}

func InitSetGroup(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindSetGroup, s, index, fromScanner)
}

func InitGetGroup(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindGetGroup, s, index, fromScanner)
}

func InitSymGroup(c *Cell, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, KindSymGroup, s, index, fromScanner)
}

// InitPath initializes a PATH! (or SET-/GET-/SYM-PATH!) over an array. A
// path or tuple of length 2 whose elements are both blank collapses to a
// word-with-heart per spec.md §4.D step 4; that collapse is the scanner's
// job (internal/scanner), not this constructor's.
func InitPath(c *Cell, kind Kind, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, kind, s, index, fromScanner)
}

func InitTuple(c *Cell, kind Kind, s *Series, index int, fromScanner bool) {
	initSeriesBacked(c, kind, s, index, fromScanner)
}

// ResetKindPreservingPayload re-tags c to kind without touching its
// payload, flags, or quote depth. The scanner uses this for its post-hoc
// SET-/GET-/SYM- sigil pass (spec.md §4.D step 5), which changes a
// value's syntactic form after its payload has already been assembled.
func (c *Cell) ResetKindPreservingPayload(kind Kind) {
	c.kind = kind
	c.heart = kind
}

// SeriesPayload returns the backing series of a series-backed cell, or nil.
func (c *Cell) SeriesPayload() *Series {
	s, _ := c.extra.(*Series)
	return s
}

// InitAction tags c as an ACTION! cell carrying act (an *action.Action,
// kept as any here since value may not import action without a cycle).
func InitAction(c *Cell, act any, fromScanner bool) {
	reset(c, KindAction, fromScanner)
	c.extra = act
}

// ActionPayload returns the cell's action identity, or nil if c does not
// carry one.
func (c *Cell) ActionPayload() any { return c.extra }

// InitError tags c as an ERROR! cell carrying failErr (expected to be an
// *internal/throwtrap.Fail, kept as any here for the same reason
// InitAction keeps its payload untyped: value cannot import throwtrap
// without a cycle, since throwtrap already imports value).
func InitError(c *Cell, failErr any, fromScanner bool) {
	reset(c, KindError, fromScanner)
	c.extra = failErr
}

// ErrorPayload returns the cell's error payload, or nil if c does not
// carry one.
func (c *Cell) ErrorPayload() any { return c.extra }

// Index returns the cursor index into a series-backed cell's payload.
func (c *Cell) Index() int { return int(c.word1) }

func (c *Cell) SetIndex(i int) { c.word1 = uint64(i) }

// ---------------------------------------------------------------------
// Scalar extraction
// ---------------------------------------------------------------------

func (c *Cell) AsLogic() bool { return c.word0 != 0 }

func (c *Cell) AsInteger() int64 { return int64(c.word0) }

func (c *Cell) AsDecimal() float64 { return math.Float64frombits(c.word0) }

func (c *Cell) AsChar() rune { return rune(c.word0) }

func (c *Cell) AsPair() (x, y float64) {
	return math.Float64frombits(c.word0), math.Float64frombits(c.word1)
}

func (c *Cell) AsMoney() (numerator int64, scale uint8) {
	return int64(c.word0), uint8(c.word1)
}

func (c *Cell) AsTime() int64 { return int64(c.word0) }

func (c *Cell) AsDate() (days int64, nanos int64) { return int64(c.word0), int64(c.word1) }

// ---------------------------------------------------------------------
// Word payload: (symbol, binding, cached-index), spec.md §3.3
// ---------------------------------------------------------------------

// WordPayload is the extra-slot contents of a word-like cell.
type WordPayload struct {
	Symbol  *Symbol
	Binding any // *Context (absolute) or a relative-binding marker; nil if unbound
	Cached  int // cached slot index; valid only while Binding's shape is unchanged
}

func initWord(c *Cell, kind Kind, sym *Symbol, fromScanner bool) {
	reset(c, kind, fromScanner)
	c.extra = &WordPayload{Symbol: sym, Cached: -1}
}

func InitWord(c *Cell, sym *Symbol, fromScanner bool) { initWord(c, KindWord, sym, fromScanner) }

func InitSetWord(c *Cell, sym *Symbol, fromScanner bool) {
	initWord(c, KindSetWord, sym, fromScanner)
}

func InitGetWord(c *Cell, sym *Symbol, fromScanner bool) {
	initWord(c, KindGetWord, sym, fromScanner)
}

func InitSymWord(c *Cell, sym *Symbol, fromScanner bool) {
	initWord(c, KindSymWord, sym, fromScanner)
}

// Word returns the word payload of a wordlike cell, or nil.
func (c *Cell) Word() *WordPayload {
	w, _ := c.extra.(*WordPayload)
	return w
}

// ---------------------------------------------------------------------
// Copy / move / derelativize / quote (spec.md §4.A)
// ---------------------------------------------------------------------

// CopyCell copies payload and primary flags from src to dst, clearing
// Unevaluated and NewlineBefore: the copy was not placed by the scanner,
// even if src was.
func CopyCell(dst *Cell, src *Cell) {
	*dst = *src
	dst.flags = dst.flags.Clear(Unevaluated).Clear(NewlineBefore)
}

// MoveCell transfers src's payload to dst and resets src to a bare BLANK,
// the way an ownership transfer zeroes the source.
func MoveCell(dst *Cell, src *Cell) {
	*dst = *src
	InitBlank(src, false)
}

// Specifier resolves a relative binding against a live frame chain. It is
// implemented by internal/context so that this package does not need to
// import it (avoiding an import cycle: contexts are built of cells).
type Specifier interface {
	Resolve(relative any) (absolute any)
}

// Derelativize resolves src's binding against specifier and writes the
// result into dst. If src is already absolutely bound (or isn't a word),
// this behaves exactly like CopyCell.
func Derelativize(dst *Cell, src *Cell, specifier Specifier) {
	CopyCell(dst, src)
	w := dst.Word()
	if w == nil || specifier == nil {
		return
	}
	if rel, ok := w.Binding.(RelativeBinding); ok {
		w.Binding = specifier.Resolve(rel)
		w.Cached = -1
	}
}

// RelativeBinding tags a word's binding as relative to a particular
// action's parameter frame rather than absolute to a live context
// (spec.md §9 "Relative bindings in compiled bodies"). ActionIdentity is
// opaque here -- internal/action owns the concrete type and casts it back.
type RelativeBinding struct {
	ActionIdentity any
	ParamIndex     int
}

// Quotify wraps v in n additional quote levels. Depths 1-3 are encoded in
// the cell's own depth field; depth >= 4 requires an explicit QUOTED
// wrapper per spec.md §3.1, modeled here by nesting the payload in extra.
func Quotify(c *Cell, n uint8) {
	total := uint32(c.depth) + uint32(n)
	if total <= 3 {
		c.depth = uint8(total)
		return
	}
	wrapped := new(Cell)
	*wrapped = *c
	wrapped.depth = uint8(total) - 3
	*c = Cell{kind: KindQuoted, heart: KindQuoted, depth: 3, extra: wrapped}
}

// Dequotify removes one quote level from c in place and reports the kind
// actually unwrapped to (the caller's evaluator uses this for the QUOTED
// switch arm in spec.md §4.H.1).
func Dequotify(c *Cell) {
	if c.depth > 0 {
		c.depth--
		return
	}
	if c.kind == KindQuoted {
		if inner, ok := c.extra.(*Cell); ok {
			*c = *inner
			// The swap back to the inner representation is itself the
			// removal of the wrapper's own outermost level; without this
			// the wrapper/unwrap transition would absorb a level for free.
			Dequotify(c)
		}
	}
}

// QuoteLevel returns the total quote depth of c, chasing through a QUOTED
// wrapper if c.depth alone isn't the whole story.
func QuoteLevel(c *Cell) int {
	if c.kind != KindQuoted {
		return int(c.depth)
	}
	inner, _ := c.extra.(*Cell)
	if inner == nil {
		return int(c.depth)
	}
	return int(c.depth) + QuoteLevel(inner)
}

// Unwrapped returns the innermost (quote-level 0) view of c: the cell you'd
// get from calling Dequotify QuoteLevel(c) times, without mutating c.
func Unwrapped(c *Cell) Cell {
	tmp := *c
	for QuoteLevel(&tmp) > 0 {
		Dequotify(&tmp)
	}
	return tmp
}
