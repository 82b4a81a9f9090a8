package value

import (
	"strconv"

	"github.com/marcin-radoszewski/viroprof/internal/core"
)

type NoneValue struct{}

func NewNoneVal() *NoneValue           { return &NoneValue{} }
func (n *NoneValue) GetType() core.ValueType { return core.TypeNone }
func (n *NoneValue) GetPayload() any    { return nil }
func (n *NoneValue) String() string     { return "none" }
func (n *NoneValue) Equals(other core.Value) bool {
	_, ok := other.(*NoneValue)
	return ok
}

type LogicValue struct{ value bool }

func NewLogicVal(b bool) *LogicValue         { return &LogicValue{value: b} }
func (l *LogicValue) GetType() core.ValueType { return core.TypeLogic }
func (l *LogicValue) GetPayload() any         { return l.value }
func (l *LogicValue) String() string {
	if l.value {
		return "true"
	}
	return "false"
}
func (l *LogicValue) Equals(other core.Value) bool {
	ol, ok := other.(*LogicValue)
	return ok && l.value == ol.value
}

type IntValue struct{ value int64 }

func NewIntVal(i int64) *IntValue            { return &IntValue{value: i} }
func (i *IntValue) GetType() core.ValueType  { return core.TypeInteger }
func (i *IntValue) GetPayload() any          { return i.value }
func (i *IntValue) String() string           { return strconv.FormatInt(i.value, 10) }
func (i *IntValue) Equals(other core.Value) bool {
	oi, ok := other.(*IntValue)
	return ok && i.value == oi.value
}

func AsIntValue(v core.Value) (int64, bool) {
	iv, ok := v.(*IntValue)
	if !ok {
		return 0, false
	}
	return iv.value, true
}

func AsLogicValue(v core.Value) (bool, bool) {
	lv, ok := v.(*LogicValue)
	if !ok {
		return false, false
	}
	return lv.value, true
}
