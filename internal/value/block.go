package value

import (
	"strings"

	"github.com/marcin-radoszewski/viroprof/internal/core"
)

// BlockValue is a series of values. As TypeBlock it evaluates lazily (the
// literal form is the value); as TypeParen it is evaluated immediately
// whenever encountered by the evaluator.
type BlockValue struct {
	kind     core.ValueType
	elements []core.Value
}

func NewBlockVal(e []core.Value) *BlockValue {
	return &BlockValue{kind: core.TypeBlock, elements: e}
}

func NewParenVal(e []core.Value) *BlockValue {
	return &BlockValue{kind: core.TypeParen, elements: e}
}

func (b *BlockValue) GetType() core.ValueType { return b.kind }
func (b *BlockValue) GetPayload() any         { return b.elements }
func (b *BlockValue) Elements() []core.Value  { return b.elements }
func (b *BlockValue) Len() int                { return len(b.elements) }

func (b *BlockValue) String() string {
	open, close := "[", "]"
	if b.kind == core.TypeParen {
		open, close = "(", ")"
	}
	parts := make([]string, len(b.elements))
	for i, e := range b.elements {
		parts[i] = e.String()
	}
	return open + strings.Join(parts, " ") + close
}

func (b *BlockValue) Equals(other core.Value) bool {
	ob, ok := other.(*BlockValue)
	if !ok || b.kind != ob.kind || len(b.elements) != len(ob.elements) {
		return false
	}
	for i := range b.elements {
		if !b.elements[i].Equals(ob.elements[i]) {
			return false
		}
	}
	return true
}

func AsBlockValue(v core.Value) (*BlockValue, bool) {
	bv, ok := v.(*BlockValue)
	return bv, ok
}
