package value

import "github.com/marcin-radoszewski/viroprof/internal/core"

// wordValue backs all four word variants (word, set-word, get-word,
// lit-word); they share a payload shape (a symbol) and differ only in how
// the evaluator dispatches on them.
type wordValue struct {
	kind   core.ValueType
	symbol string
}

func NewWordVal(s string) *wordValue    { return &wordValue{kind: core.TypeWord, symbol: s} }
func NewSetWordVal(s string) *wordValue { return &wordValue{kind: core.TypeSetWord, symbol: s} }
func NewGetWordVal(s string) *wordValue { return &wordValue{kind: core.TypeGetWord, symbol: s} }
func NewLitWordVal(s string) *wordValue { return &wordValue{kind: core.TypeLitWord, symbol: s} }

func (w *wordValue) GetType() core.ValueType { return w.kind }
func (w *wordValue) GetPayload() any         { return w.symbol }
func (w *wordValue) Symbol() string          { return w.symbol }

func (w *wordValue) String() string {
	switch w.kind {
	case core.TypeSetWord:
		return w.symbol + ":"
	case core.TypeGetWord:
		return ":" + w.symbol
	case core.TypeLitWord:
		return "'" + w.symbol
	default:
		return w.symbol
	}
}

func (w *wordValue) Equals(other core.Value) bool {
	ow, ok := other.(*wordValue)
	return ok && w.kind == ow.kind && w.symbol == ow.symbol
}

func AsWordValue(v core.Value) (string, bool) {
	w, ok := v.(*wordValue)
	if !ok {
		return "", false
	}
	return w.symbol, true
}

// ValidWordSymbol reports whether s is usable as a word symbol: non-empty,
// not starting with a digit, and composed only of word characters.
func ValidWordSymbol(s string) bool {
	if len(s) == 0 || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		if !isWordChar(r) {
			return false
		}
	}
	return true
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '?' || r == '!' || r == '*' || r == '+'
}
