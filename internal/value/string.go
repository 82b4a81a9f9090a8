package value

import "github.com/marcin-radoszewski/viroprof/internal/core"

// StringValue is a UTF-8 character sequence, stored as []rune so series
// operations (not implemented here, trimmed for this profiler's host) would
// be character-indexed rather than byte-indexed.
type StringValue struct {
	runes []rune
}

func NewStrVal(s string) *StringValue { return &StringValue{runes: []rune(s)} }

func (s *StringValue) GetType() core.ValueType { return core.TypeString }
func (s *StringValue) GetPayload() any         { return string(s.runes) }
func (s *StringValue) String() string          { return string(s.runes) }
func (s *StringValue) Runes() []rune           { return s.runes }
func (s *StringValue) Len() int                { return len(s.runes) }

func (s *StringValue) Equals(other core.Value) bool {
	os, ok := other.(*StringValue)
	if !ok || len(s.runes) != len(os.runes) {
		return false
	}
	for i := range s.runes {
		if s.runes[i] != os.runes[i] {
			return false
		}
	}
	return true
}

func AsStringValue(v core.Value) (*StringValue, bool) {
	sv, ok := v.(*StringValue)
	return sv, ok
}
