// Package frame implements the variable binding contexts for the Viro
// interpreter.
//
// Frames provide lexical scoping via word-to-value bindings stored in
// parallel arrays, linked to their lexical parent by index (not pointer) so
// a frame remains valid across the evaluator's frame-store growth.
package frame

import "github.com/marcin-radoszewski/viroprof/internal/core"

// Frame is a variable binding context: parallel Words/Values arrays plus a
// parent index for lexical lookup.
type Frame struct {
	kind   core.FrameType
	words  []string
	values []core.Value
	parent int
	index  int
	name   string
}

func NewFrame(kind core.FrameType, parent int) *Frame {
	return &Frame{kind: kind, parent: parent, index: -1}
}

func NewFrameWithCapacity(kind core.FrameType, parent int, capacity int) *Frame {
	return &Frame{
		kind:   kind,
		words:  make([]string, 0, capacity),
		values: make([]core.Value, 0, capacity),
		parent: parent,
		index:  -1,
	}
}

func (f *Frame) GetType() core.FrameType { return f.kind }

// Bind adds or updates a word binding in this frame (local-by-default).
func (f *Frame) Bind(symbol string, v core.Value) {
	for i, w := range f.words {
		if w == symbol {
			f.values[i] = v
			return
		}
	}
	f.words = append(f.words, symbol)
	f.values = append(f.values, v)
}

// Get looks up a word in this frame only (no parent traversal — that is the
// evaluator's job, since it needs the frame store to walk parent indices).
func (f *Frame) Get(symbol string) (core.Value, bool) {
	for i, w := range f.words {
		if w == symbol {
			return f.values[i], true
		}
	}
	return nil, false
}

func (f *Frame) Set(symbol string, v core.Value) bool {
	for i, w := range f.words {
		if w == symbol {
			f.values[i] = v
			return true
		}
	}
	return false
}

func (f *Frame) HasWord(symbol string) bool {
	_, ok := f.Get(symbol)
	return ok
}

func (f *Frame) GetParent() int    { return f.parent }
func (f *Frame) GetIndex() int     { return f.index }
func (f *Frame) SetIndex(idx int)  { f.index = idx }
func (f *Frame) Count() int        { return len(f.words) }
func (f *Frame) GetName() string   { return f.name }
func (f *Frame) SetName(n string)  { f.name = n }

func (f *Frame) GetAll() []core.Binding {
	out := make([]core.Binding, len(f.words))
	for i := range f.words {
		out[i] = core.Binding{Symbol: f.words[i], Value: f.values[i]}
	}
	return out
}
