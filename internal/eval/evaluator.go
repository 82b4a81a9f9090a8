// Package eval implements the core evaluation engine for the Viro
// interpreter.
//
// The evaluator uses type-based dispatch to evaluate REBOL-style
// expressions: literals evaluate to themselves, blocks are deferred,
// parens are evaluated immediately, words look up bindings and invoke
// functions. Frames are referenced by index into a frame store, not by
// pointer, so the store can grow without invalidating earlier references.
//
// Every function call and return, and every evaluated value (as a count
// event), passes through a single HookSink slot (core.HookSink) if one is
// installed — this is the seam internal/profiler attaches to. Tail-call and
// line events are never emitted.
package eval

import (
	"io"
	"strconv"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/frame"
	"github.com/marcin-radoszewski/viroprof/internal/value"
	"github.com/marcin-radoszewski/viroprof/internal/verror"
)

// Evaluator is the core evaluation engine.
type Evaluator struct {
	Frames     []core.Frame
	frameStore []core.Frame
	captured   map[int]bool
	callStack  []string

	hooks     core.HookSink
	allocator core.Allocator

	out io.Writer
}

func NewEvaluator() *Evaluator {
	global := frame.NewFrameWithCapacity(core.FrameGlobal, -1, 64)
	global.SetName("(top level)")
	global.SetIndex(0)
	return &Evaluator{
		Frames:     []core.Frame{global},
		frameStore: []core.Frame{global},
		captured:   map[int]bool{0: true},
		callStack:  []string{"(top level)"},
	}
}

func (e *Evaluator) Callstack() []string { return e.callStack }

func (e *Evaluator) Hooks() core.HookSink     { return e.hooks }
func (e *Evaluator) SetHooks(h core.HookSink) { e.hooks = h }
func (e *Evaluator) SetAllocator(a core.Allocator) { e.allocator = a }

func (e *Evaluator) SetOutputWriter(w io.Writer) { e.out = w }
func (e *Evaluator) GetOutputWriter() io.Writer  { return e.out }

func (e *Evaluator) emit(ev core.HookEvent) {
	if e.hooks != nil {
		e.hooks.Dispatch(ev)
	}
}

func (e *Evaluator) currentFrameIndex() int {
	if len(e.Frames) == 0 {
		return -1
	}
	return e.Frames[len(e.Frames)-1].GetIndex()
}

func (e *Evaluator) pushFrame(f core.Frame) int {
	idx := f.GetIndex()
	if idx < 0 {
		idx = len(e.frameStore)
		e.frameStore = append(e.frameStore, f)
		f.SetIndex(idx)
	}
	e.Frames = append(e.Frames, f)
	return idx
}

// popFrame removes the active frame and returns its store index.
func (e *Evaluator) popFrame() int {
	if len(e.Frames) == 0 {
		return -1
	}
	frm := e.Frames[len(e.Frames)-1]
	e.Frames = e.Frames[:len(e.Frames)-1]
	idx := frm.GetIndex()
	if !e.captured[idx] {
		e.frameStore[idx] = nil
	}
	return idx
}

func (e *Evaluator) pushCall(name string) {
	if name == "" {
		name = "(anonymous)"
	}
	e.callStack = append(e.callStack, name)
}

func (e *Evaluator) popCall() {
	if len(e.callStack) <= 1 {
		return
	}
	e.callStack = e.callStack[:len(e.callStack)-1]
}

func (e *Evaluator) MarkFrameCaptured(idx int) { e.captured[idx] = true }

func (e *Evaluator) CurrentFrameIndex() int { return e.currentFrameIndex() }

func (e *Evaluator) RegisterFrame(f core.Frame) int {
	idx := len(e.frameStore)
	e.frameStore = append(e.frameStore, f)
	f.SetIndex(idx)
	return idx
}

func (e *Evaluator) GetFrameByIndex(idx int) core.Frame {
	if idx < 0 || idx >= len(e.frameStore) {
		return nil
	}
	return e.frameStore[idx]
}

func (e *Evaluator) PushFrameContext(f core.Frame) int { return e.pushFrame(f) }
func (e *Evaluator) PopFrameContext()                  { e.popFrame() }

// Lookup walks the active frame chain (by parent index) for symbol.
func (e *Evaluator) Lookup(symbol string) (core.Value, bool) {
	idx := e.currentFrameIndex()
	for idx >= 0 {
		f := e.GetFrameByIndex(idx)
		if f == nil {
			return nil, false
		}
		if v, ok := f.Get(symbol); ok {
			return v, true
		}
		idx = f.GetParent()
	}
	return nil, false
}

// evalFunc is a type-specific evaluation function.
type evalFunc func(*Evaluator, core.Value) (core.Value, error)

var evalDispatch map[core.ValueType]evalFunc

func init() {
	evalDispatch = map[core.ValueType]evalFunc{
		core.TypeInteger:  evalLiteral,
		core.TypeString:   evalLiteral,
		core.TypeLogic:    evalLiteral,
		core.TypeNone:     evalLiteral,
		core.TypeDecimal:  evalLiteral,
		core.TypeBlock:    evalLiteral,
		core.TypeFunction: evalLiteral,
		core.TypeParen:    evalParen,
		core.TypeWord:     evalWordDispatch,
		core.TypeSetWord:  evalSetWordInIsolation,
		core.TypeGetWord:  evalGetWordDispatch,
		core.TypeLitWord:  evalLitWord,
	}
}

func evalLiteral(e *Evaluator, val core.Value) (core.Value, error) { return val, nil }

func evalParen(e *Evaluator, val core.Value) (core.Value, error) {
	block, ok := value.AsBlock(val)
	if !ok {
		return value.NoneVal(), verror.NewInternalError("paren value does not contain a block", [3]string{})
	}
	return e.DoBlock(block.Elements())
}

func evalWordDispatch(e *Evaluator, val core.Value) (core.Value, error) {
	w, _ := value.AsWord(val)
	v, ok := e.Lookup(w)
	if !ok {
		return value.NoneVal(), verror.NewScriptError(verror.ErrIDNoValue, [3]string{w, "", ""})
	}
	return v, nil
}

func evalSetWordInIsolation(e *Evaluator, val core.Value) (core.Value, error) {
	w, _ := value.AsWord(val)
	return value.NoneVal(), verror.NewScriptError(verror.ErrIDNoValue, [3]string{"set-word without value: " + w, "", ""})
}

func evalGetWordDispatch(e *Evaluator, val core.Value) (core.Value, error) {
	w, _ := value.AsWord(val)
	v, ok := e.Lookup(w)
	if !ok {
		return value.NoneVal(), nil
	}
	return v, nil
}

func evalLitWord(e *Evaluator, val core.Value) (core.Value, error) {
	w, _ := value.AsWord(val)
	return value.WordVal(w), nil
}

// DoNext evaluates a single value based on its type, via the dispatch
// table. This is where the per-value HookCount event is emitted.
func (e *Evaluator) DoNext(val core.Value) (core.Value, error) {
	e.emit(core.HookEvent{Kind: core.HookCount, FrameIndex: e.currentFrameIndex()})
	evalFn, found := evalDispatch[val.GetType()]
	if !found {
		return value.NoneVal(), verror.NewInternalError("unknown value type in DoNext", [3]string{})
	}
	return evalFn(e, val)
}

// DoBlock evaluates a sequence of values left to right. A set-word consumes
// the next value and binds the result; everything else flows through
// evaluateWithFunctionCall, which also handles function invocation.
func (e *Evaluator) DoBlock(vals []core.Value) (core.Value, error) {
	if len(vals) == 0 {
		return value.NoneVal(), nil
	}

	var lastResult core.Value = value.NoneVal()
	var err error

	for i := 0; i < len(vals); i++ {
		val := vals[i]

		if val.GetType() == core.TypeSetWord {
			lastResult, err = e.evalSetWord(val, vals, &i)
			if err != nil {
				return value.NoneVal(), err
			}
			continue
		}

		lastResult, err = e.evaluateWithFunctionCall(val, vals, &i, lastResult)
		if err != nil {
			return value.NoneVal(), err
		}
	}

	return lastResult, nil
}

func (e *Evaluator) evalSetWord(val core.Value, vals []core.Value, i *int) (core.Value, error) {
	w, _ := value.AsWord(val)
	if *i+1 >= len(vals) {
		return value.NoneVal(), verror.NewScriptError(verror.ErrIDNoValue, [3]string{"missing value after " + w + ":", "", ""})
	}
	*i++
	result, err := e.evaluateWithFunctionCall(vals[*i], vals, i, value.NoneVal())
	if err != nil {
		return value.NoneVal(), err
	}
	frm := e.GetFrameByIndex(e.currentFrameIndex())
	frm.Bind(w, result)
	return result, nil
}

func (e *Evaluator) evaluateWithFunctionCall(val core.Value, seq []core.Value, idx *int, lastResult core.Value) (core.Value, error) {
	if val.GetType() == core.TypeWord {
		w, _ := value.AsWord(val)
		if bound, ok := e.Lookup(w); ok {
			if fn, ok := value.AsFunction(bound); ok {
				return e.invokeFunction(fn, seq, idx, lastResult)
			}
		}
	}
	return e.DoNext(val)
}

// invokeFunction is the single invocation point for native and user
// functions alike: it emits Call then Return around every invocation.
// It has no tail-position analysis, so it never emits HookTailCall —
// every call looks the same to a HookSink regardless of source position.
func (e *Evaluator) invokeFunction(fn *value.FunctionValue, vals []core.Value, idx *int, lastResult core.Value) (core.Value, error) {
	startIdx := *idx
	name := functionDisplayName(fn)

	e.pushCall(name)
	defer e.popCall()

	tokens := vals[*idx+1:]
	posArgs, consumed, err := e.collectArgs(fn, tokens)
	if err != nil {
		*idx = startIdx
		return value.NoneVal(), err
	}
	*idx += consumed

	e.emit(core.HookEvent{Kind: core.HookCall, Func: fn, FrameIndex: e.currentFrameIndex()})

	var result core.Value
	if fn.Kind == value.FuncNative {
		result, err = e.callNative(fn, posArgs)
	} else {
		result, err = e.executeFunction(fn, posArgs)
	}

	e.emit(core.HookEvent{Kind: core.HookReturn, Func: fn, FrameIndex: e.currentFrameIndex()})

	if err != nil {
		return value.NoneVal(), err
	}
	return result, nil
}

func (e *Evaluator) collectArgs(fn *value.FunctionValue, tokens []core.Value) ([]core.Value, int, error) {
	args := make([]core.Value, 0, len(fn.Params))
	consumed := 0
	for range fn.Params {
		if consumed >= len(tokens) {
			return nil, 0, argCountError(fn, args)
		}
		val, next, err := e.evalExpressionAt(tokens, consumed)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, val)
		consumed = next
	}
	return args, consumed, nil
}

func argCountError(fn *value.FunctionValue, args []core.Value) *verror.Error {
	return verror.NewScriptError(verror.ErrIDArgCount, [3]string{fn.Name, strconv.Itoa(len(fn.Params)), strconv.Itoa(len(args))})
}

func (e *Evaluator) evalExpressionAt(tokens []core.Value, pos int) (core.Value, int, error) {
	if pos >= len(tokens) {
		return value.NoneVal(), pos, verror.NewScriptError(verror.ErrIDNoValue, [3]string{"missing expression", "", ""})
	}
	idx := pos
	result, err := e.evaluateWithFunctionCall(tokens[idx], tokens, &idx, value.NoneVal())
	if err != nil {
		return value.NoneVal(), pos, err
	}
	return result, idx + 1, nil
}

func (e *Evaluator) callNative(fn *value.FunctionValue, posArgs []core.Value) (core.Value, error) {
	result, err := fn.Native(posArgs, nil, e)
	if err == nil {
		return result, nil
	}
	if verr, ok := err.(*verror.Error); ok {
		return result, verr
	}
	return value.NoneVal(), verror.NewInternalError(err.Error(), [3]string{})
}

// executeFunction pushes a new activation frame, binds parameters, runs the
// body, and pops the frame. The frame is pushed/popped around the call so
// the profiler can observe both the function's own frame and where it
// returns to.
func (e *Evaluator) executeFunction(fn *value.FunctionValue, posArgs []core.Value) (core.Value, error) {
	parent := fn.Parent
	if parent < 0 {
		parent = 0
	}
	f := frame.NewFrameWithCapacity(core.FrameFunctionArgs, parent, len(fn.Params))
	f.SetName(fn.Name)

	for i, p := range fn.Params {
		if i < len(posArgs) {
			f.Bind(p.Name, posArgs[i])
		} else {
			f.Bind(p.Name, value.NoneVal())
		}
	}

	e.pushFrame(f)
	defer e.popFrame()

	if fn.Body == nil {
		return value.NoneVal(), nil
	}
	return e.DoBlock(fn.Body.Elements())
}

func functionDisplayName(fn *value.FunctionValue) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "(anonymous)"
}

