// Package value implements the tagged value representation shared by the
// scanner, evaluator and dispatch layers: a fixed-size Cell holding a Kind,
// a quote depth, a small set of flags and a two-word-plus-extra payload.
package value

// Kind is the primary tag of a Cell. The set is closed: every Cell holds
// exactly one Kind at a time (see the package doc for QUOTED, which wraps
// an inner Kind rather than being orthogonal to it).
type Kind uint8

const (
	KindNull Kind = iota
	KindBlank
	KindLogic
	KindInteger
	KindDecimal
	KindPercent
	KindMoney
	KindChar
	KindPair
	KindTime
	KindDate
	KindBinary
	KindText
	KindFile
	KindEmail
	KindURL
	KindTag
	KindIssue
	KindBitset
	KindBlock
	KindGroup
	KindPath
	KindTuple
	KindWord
	KindSetWord
	KindGetWord
	KindSymWord
	KindSetPath
	KindGetPath
	KindSymPath
	KindSetTuple
	KindGetTuple
	KindSymTuple
	KindSetBlock
	KindGetBlock
	KindSymBlock
	KindSetGroup
	KindGetGroup
	KindSymGroup
	KindAction
	KindFrame
	KindObject
	KindError
	KindPort
	KindModule
	KindVarargs
	KindMap
	KindHandle
	KindDatatype
	KindTypeset
	KindQuoted
	KindVoid
	KindCustom

	// kindEnd is the array terminator tag. It is deliberately outside the
	// value-kind range above: no constructor in this package can produce
	// it except SetEnd, and IsEnd is the only test for it.
	kindEnd
)

var kindNames = [...]string{
	"null", "blank", "logic", "integer", "decimal", "percent", "money",
	"char", "pair", "time", "date", "binary", "text", "file", "email",
	"url", "tag", "issue", "bitset", "block", "group", "path", "tuple",
	"word", "set-word", "get-word", "sym-word", "set-path", "get-path",
	"sym-path", "set-tuple", "get-tuple", "sym-tuple", "set-block",
	"get-block", "sym-block", "set-group", "get-group", "sym-group",
	"action", "frame", "object", "error", "port", "module", "varargs",
	"map", "handle", "datatype", "typeset", "quoted", "void", "custom",
	"<end>",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Inert reports whether a value of this Kind evaluates to itself. Word-like
// and active kinds (ACTION, GROUP, PATH-with-action-head, ...) are not
// inert; the evaluator consults this for the "literal inert kinds" switch
// arm in spec.md §4.H.1.
func (k Kind) Inert() bool {
	switch k {
	case KindWord, KindSetWord, KindGetWord, KindSymWord,
		KindPath, KindSetPath, KindGetPath, KindSymPath,
		KindTuple, KindSetTuple, KindGetTuple, KindSymTuple,
		KindGroup, KindSetGroup, KindGetGroup, KindSymGroup,
		KindSetBlock, KindGetBlock, KindSymBlock,
		KindAction, KindVarargs, KindQuoted:
		return false
	default:
		return true
	}
}

// IsWordlike reports whether Kind is one of the WORD family (plain or
// SET-/GET-/SYM- prefixed), which the binder resolves against a context.
func (k Kind) IsWordlike() bool {
	switch k {
	case KindWord, KindSetWord, KindGetWord, KindSymWord:
		return true
	default:
		return false
	}
}

// IsPathlike reports whether Kind is one of the PATH or TUPLE families
// (plain or SET-/GET-/SYM- prefixed).
func (k Kind) IsPathlike() bool {
	switch k {
	case KindPath, KindSetPath, KindGetPath, KindSymPath,
		KindTuple, KindSetTuple, KindGetTuple, KindSymTuple:
		return true
	default:
		return false
	}
}

// IsBlocklike reports whether Kind is BLOCK or one of its SET-/GET-/SYM-
// variants (used for the SET_BLOCK multi-return path, spec.md §4.H.1).
func (k Kind) IsBlocklike() bool {
	switch k {
	case KindBlock, KindSetBlock, KindGetBlock, KindSymBlock:
		return true
	default:
		return false
	}
}

// IsSeriesBacked reports whether a cell of this Kind stores its payload as
// a (series, index) pair rather than inline scalar data.
func (k Kind) IsSeriesBacked() bool {
	switch k {
	case KindBinary, KindText, KindFile, KindEmail, KindURL, KindTag, KindIssue,
		KindBlock, KindGroup, KindPath, KindTuple,
		KindSetPath, KindGetPath, KindSymPath,
		KindSetTuple, KindGetTuple, KindSymTuple,
		KindSetBlock, KindGetBlock, KindSymBlock,
		KindSetGroup, KindGetGroup, KindSymGroup,
		KindFrame, KindObject, KindError, KindPort, KindModule, KindMap, KindBitset:
		return true
	default:
		return false
	}
}
