// Package pstack implements the profiler's per-thread profile stack (C4):
// a fixed-capacity stack of activations that attributes self-time vs.
// subtree-time on pop, propagating overhead to the parent frame.
package pstack

import (
	"errors"

	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/timeline"
)

// ErrOverflow is returned by Next when the stack is already at capacity.
var ErrOverflow = errors.New("pstack: stack overflow")

// ErrEmpty is returned by operations that require a non-empty stack.
var ErrEmpty = errors.New("pstack: empty stack")

// EventRef is the timeline's page-array index type, re-exported here so a
// trace-mode stack frame can hold a begin-event reference without pstack
// needing its own incompatible copy of the same shape.
type EventRef = timeline.Ref

// Frame is one activation on the profile stack. TailCall marks a frame
// pushed in tail position, and the payload fields are populated by exactly
// one of graph mode or trace mode, selected once at profiler start.
type Frame struct {
	TailCall  bool
	LastLine  int
	LastCount int64

	// Graph-mode payload.
	Record       *record.Record
	NodeSnapshot measure.Unit
	PathAccum    measure.Unit
	Overhead     int64 // accumulated profiler-hook time charged against this scope

	// Trace-mode payload.
	BeginEvent  EventRef
	Measurement measure.Unit
}

// Stack is a fixed-capacity stack of Frames, bounded at creation (default
// 1024 per the data model). Overflow is a fatal profiler error, not
// silently dropped.
type Stack struct {
	frames []Frame
	top    int // index of next free slot; size is top
}

// New creates a stack with the given capacity (0 selects the default 1024).
func New(capacity int) *Stack {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Stack{frames: make([]Frame, capacity)}
}

// Size returns the current depth.
func (s *Stack) Size() int { return s.top }

// Peek returns the top frame, or nil if empty.
func (s *Stack) Peek() *Frame {
	if s.top == 0 {
		return nil
	}
	return &s.frames[s.top-1]
}

// Parent returns the frame one below the top, or nil if fewer than two
// frames are on the stack.
func (s *Stack) Parent() *Frame {
	if s.top < 2 {
		return nil
	}
	return &s.frames[s.top-2]
}

// At returns the frame at stack index i (0 = bottom), or nil if out of
// range. Used for top-down teardown traversal.
func (s *Stack) At(i int) *Frame {
	if i < 0 || i >= s.top {
		return nil
	}
	return &s.frames[i]
}

// Next reserves the next slot, marks its tail flag, and returns it zeroed
// apart from that flag. Returns ErrOverflow at capacity.
func (s *Stack) Next(tail bool) (*Frame, error) {
	if s.top >= len(s.frames) {
		return nil, ErrOverflow
	}
	f := &s.frames[s.top]
	*f = Frame{TailCall: tail}
	s.top++
	return f, nil
}

// Pop removes and returns the top frame.
func (s *Stack) Pop() (Frame, error) {
	if s.top == 0 {
		return Frame{}, ErrEmpty
	}
	s.top--
	return s.frames[s.top], nil
}

// MeasuredPush reserves a frame in graph mode: overhead=0, node=now, path=0.
func (s *Stack) MeasuredPush(rec *record.Record, now measure.Unit, tail bool) (*Frame, error) {
	f, err := s.Next(tail)
	if err != nil {
		return nil, err
	}
	f.Record = rec
	f.NodeSnapshot = now
	f.PathAccum = measure.Unit{}
	f.Overhead = 0
	return f, nil
}

// MeasuredPop pops the top graph-mode frame: computes total elapsed time
// since push (minus this frame's own profiler overhead), folds it into the
// record's path, propagates total and overhead up to the parent frame (now
// the new top), and attributes the remainder — total minus the children's
// accumulated path — to the record's own self time (node).
func (s *Stack) MeasuredPop(now measure.Unit) (Frame, error) {
	if s.top == 0 {
		return Frame{}, ErrEmpty
	}
	popped := s.frames[s.top-1]
	s.top--

	total := measure.Sub(now, popped.NodeSnapshot)
	total.Time -= popped.Overhead

	if popped.Record != nil {
		popped.Record.Path = measure.Add(popped.Record.Path, total)
		self := measure.Sub(total, popped.PathAccum)
		popped.Record.Node = measure.Add(popped.Record.Node, self)
		popped.Record.Count++
	}

	if parent := s.Peek(); parent != nil {
		parent.PathAccum = measure.Add(parent.PathAccum, total)
		parent.Overhead += popped.Overhead
	}

	return popped, nil
}
