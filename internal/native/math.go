// Package native implements built-in functions for the Viro interpreter.
package native

import (
	"math"
	"strconv"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/value"
	"github.com/marcin-radoszewski/viroprof/internal/verror"
)

func requireInts(op string, args []core.Value) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, verror.NewScriptError(verror.ErrIDArgCount, [3]string{op, "2", strconv.Itoa(len(args))})
	}
	a, ok := value.AsInteger(args[0])
	if !ok {
		return 0, 0, verror.NewScriptError(verror.ErrIDTypeMismatch, [3]string{op, "integer", ""})
	}
	b, ok := value.AsInteger(args[1])
	if !ok {
		return 0, 0, verror.NewScriptError(verror.ErrIDTypeMismatch, [3]string{op, "integer", ""})
	}
	return a, b, nil
}

func Add(args []core.Value, refValues map[string]core.Value, ev core.Evaluator) (core.Value, error) {
	a, b, err := requireInts("+", args)
	if err != nil {
		return value.NoneVal(), err
	}
	if a > 0 && b > 0 && a > math.MaxInt64-b {
		return value.NoneVal(), verror.NewMathError(verror.ErrIDOverflow, [3]string{"+", "", ""})
	}
	if a < 0 && b < 0 && a < math.MinInt64-b {
		return value.NoneVal(), verror.NewMathError(verror.ErrIDOverflow, [3]string{"+", "", ""})
	}
	return value.IntVal(a + b), nil
}

func Subtract(args []core.Value, refValues map[string]core.Value, ev core.Evaluator) (core.Value, error) {
	a, b, err := requireInts("-", args)
	if err != nil {
		return value.NoneVal(), err
	}
	return value.IntVal(a - b), nil
}

func Multiply(args []core.Value, refValues map[string]core.Value, ev core.Evaluator) (core.Value, error) {
	a, b, err := requireInts("*", args)
	if err != nil {
		return value.NoneVal(), err
	}
	if a != 0 && b != 0 {
		result := a * b
		if result/a != b {
			return value.NoneVal(), verror.NewMathError(verror.ErrIDOverflow, [3]string{"*", "", ""})
		}
		return value.IntVal(result), nil
	}
	return value.IntVal(0), nil
}

func Divide(args []core.Value, refValues map[string]core.Value, ev core.Evaluator) (core.Value, error) {
	a, b, err := requireInts("/", args)
	if err != nil {
		return value.NoneVal(), err
	}
	if b == 0 {
		return value.NoneVal(), verror.NewMathError(verror.ErrIDDivByZero, [3]string{"", "", ""})
	}
	return value.IntVal(a / b), nil
}

func LessThan(args []core.Value, refValues map[string]core.Value, ev core.Evaluator) (core.Value, error) {
	a, b, err := requireInts("<", args)
	if err != nil {
		return value.NoneVal(), err
	}
	return value.LogicVal(a < b), nil
}

// RegisterMathNatives binds +, -, *, /, < to rootFrame.
func RegisterMathNatives(rootFrame core.Frame) {
	bind := func(name string, fn core.NativeFunc) {
		rootFrame.Bind(name, value.FuncVal(value.NewNativeFunction(name, []value.ParamSpec{{Name: "left"}, {Name: "right"}}, fn)))
	}
	bind("+", Add)
	bind("-", Subtract)
	bind("*", Multiply)
	bind("/", Divide)
	bind("<", LessThan)
}
