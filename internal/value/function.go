package value

import "github.com/marcin-radoszewski/viroprof/internal/core"

// FunctionType distinguishes native (built-in) from user-defined functions.
type FunctionType uint8

const (
	FuncNative FunctionType = iota
	FuncUser
)

// ParamSpec describes one formal parameter of a user-defined function.
type ParamSpec struct {
	Name     string
	Optional bool
}

// FunctionValue is an executable function, native or user-defined.
//
// Functions are immutable after creation. User functions close over the
// frame they were defined in (Parent, -1 if none); natives have no frame.
type FunctionValue struct {
	Kind   FunctionType
	Name   string
	Params []ParamSpec
	Body   *BlockValue
	Native core.NativeFunc
	Parent int
}

func NewNativeFunction(name string, params []ParamSpec, impl core.NativeFunc) *FunctionValue {
	return &FunctionValue{Kind: FuncNative, Name: name, Params: params, Native: impl, Parent: -1}
}

func NewUserFunction(name string, params []ParamSpec, body *BlockValue, parent int) *FunctionValue {
	return &FunctionValue{Kind: FuncUser, Name: name, Params: params, Body: body, Parent: parent}
}

func NewFuncVal(fn *FunctionValue) *FunctionValue { return fn }

func (f *FunctionValue) GetType() core.ValueType { return core.TypeFunction }
func (f *FunctionValue) GetPayload() any         { return f }

func (f *FunctionValue) String() string {
	if f.Name != "" {
		return "func:" + f.Name
	}
	return "func:anonymous"
}

func (f *FunctionValue) Equals(other core.Value) bool {
	of, ok := other.(*FunctionValue)
	return ok && f == of
}

func AsFunctionValue(v core.Value) (*FunctionValue, bool) {
	fv, ok := v.(*FunctionValue)
	return fv, ok
}
