package native

import (
	"fmt"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/value"
)

// Print implements `print value`, writing to the evaluator's output writer.
func Print(args []core.Value, refValues map[string]core.Value, eval core.Evaluator) (core.Value, error) {
	if len(args) != 1 {
		return value.NoneVal(), arityError("print", 1, len(args))
	}
	w := eval.GetOutputWriter()
	if w == nil {
		return value.NoneVal(), nil
	}
	fmt.Fprintln(w, args[0].String())
	return value.NoneVal(), nil
}

// RegisterIONatives binds print to rootFrame.
func RegisterIONatives(rootFrame core.Frame) {
	rootFrame.Bind("print", value.FuncVal(value.NewNativeFunction("print", []value.ParamSpec{{Name: "value"}}, Print)))
}
