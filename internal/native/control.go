package native

import (
	"strconv"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/value"
	"github.com/marcin-radoszewski/viroprof/internal/verror"
)

func typeError(op, want string, got core.Value) error {
	return verror.NewScriptError(verror.ErrIDTypeMismatch, [3]string{op, want, got.GetType().String()})
}

func arityError(op string, want, got int) error {
	return verror.NewScriptError(verror.ErrIDArgCount, [3]string{op, strconv.Itoa(want), strconv.Itoa(got)})
}

// If implements `if condition [true-block] [false-block]`.
func If(args []core.Value, refValues map[string]core.Value, eval core.Evaluator) (core.Value, error) {
	if len(args) != 3 {
		return value.NoneVal(), arityError("if", 3, len(args))
	}
	trueBlock, ok := value.AsBlock(args[1])
	if !ok {
		return value.NoneVal(), typeError("if", "block for true branch", args[1])
	}
	falseBlock, ok := value.AsBlock(args[2])
	if !ok {
		return value.NoneVal(), typeError("if", "block for false branch", args[2])
	}
	if value.IsTruthy(args[0]) {
		return eval.DoBlock(trueBlock.Elements())
	}
	return eval.DoBlock(falseBlock.Elements())
}

// Loop implements `loop count [body]`: executes body count times, returning
// the result of the last iteration (or none if count is 0).
func Loop(args []core.Value, refValues map[string]core.Value, eval core.Evaluator) (core.Value, error) {
	if len(args) != 2 {
		return value.NoneVal(), arityError("loop", 2, len(args))
	}
	count, ok := value.AsInteger(args[0])
	if !ok {
		return value.NoneVal(), typeError("loop", "integer for count", args[0])
	}
	if count < 0 {
		return value.NoneVal(), verror.NewScriptError(verror.ErrIDTypeMismatch, [3]string{"loop count must be non-negative", "", ""})
	}
	body, ok := value.AsBlock(args[1])
	if !ok {
		return value.NoneVal(), typeError("loop", "block for body", args[1])
	}

	var result core.Value = value.NoneVal()
	var err error
	for i := int64(0); i < count; i++ {
		result, err = eval.DoBlock(body.Elements())
		if err != nil {
			return value.NoneVal(), err
		}
	}
	return result, nil
}

// RegisterControlNatives binds if and loop to rootFrame.
func RegisterControlNatives(rootFrame core.Frame) {
	rootFrame.Bind("if", value.FuncVal(value.NewNativeFunction("if", []value.ParamSpec{{Name: "condition"}, {Name: "true-block"}, {Name: "false-block"}}, If)))
	rootFrame.Bind("loop", value.FuncVal(value.NewNativeFunction("loop", []value.ParamSpec{{Name: "count"}, {Name: "body"}}, Loop)))
}
