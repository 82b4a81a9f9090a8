// Package value implements the core value types for the Viro interpreter.
//
// All data in Viro is represented as implementations of the core.Value
// interface. Each value type implements the interface directly.
//
// Value types:
//   - None: absence of value (NoneValue)
//   - Logic: boolean true/false (LogicValue)
//   - Integer: 64-bit signed integers (IntValue)
//   - Decimal: arbitrary-precision decimals (*DecimalValue)
//   - String: character sequences (*StringValue)
//   - Word types: word, set-word, get-word, lit-word
//   - Block: series of values, deferred evaluation (*BlockValue)
//   - Paren: series of values, immediate evaluation (*BlockValue with TypeParen)
//   - Function: native or user-defined functions (*FunctionValue)
//
// Constructor functions (IntVal, StrVal, ...) are the only supported way to
// build values. Type assertion helpers (AsInteger, AsString, ...) perform
// safe payload extraction.
package value

import (
	"github.com/marcin-radoszewski/viroprof/internal/core"
)

func NoneVal() core.Value             { return NewNoneVal() }
func LogicVal(b bool) core.Value      { return NewLogicVal(b) }
func IntVal(i int64) core.Value       { return NewIntVal(i) }
func StrVal(s string) core.Value      { return NewStrVal(s) }
func WordVal(s string) core.Value     { return NewWordVal(s) }
func SetWordVal(s string) core.Value  { return NewSetWordVal(s) }
func GetWordVal(s string) core.Value  { return NewGetWordVal(s) }
func LitWordVal(s string) core.Value  { return NewLitWordVal(s) }
func BlockVal(e []core.Value) core.Value { return NewBlockVal(e) }
func ParenVal(e []core.Value) core.Value { return NewParenVal(e) }
func FuncVal(fn *FunctionValue) core.Value { return NewFuncVal(fn) }

func AsInteger(v core.Value) (int64, bool)        { return AsIntValue(v) }
func AsLogic(v core.Value) (bool, bool)           { return AsLogicValue(v) }
func AsString(v core.Value) (*StringValue, bool)  { return AsStringValue(v) }
func AsWord(v core.Value) (string, bool)          { return AsWordValue(v) }
func AsBlock(v core.Value) (*BlockValue, bool)    { return AsBlockValue(v) }
func AsFunction(v core.Value) (*FunctionValue, bool) { return AsFunctionValue(v) }
func AsDecimal(v core.Value) (*DecimalValue, bool) { return AsDecimalValue(v) }

// IsTruthy reports whether v is "true" in a conditional context: none and
// false are falsy, everything else (including 0, "", []) is truthy.
func IsTruthy(v core.Value) bool {
	switch v.GetType() {
	case core.TypeNone:
		return false
	case core.TypeLogic:
		b, _ := AsLogic(v)
		return b
	default:
		return true
	}
}
