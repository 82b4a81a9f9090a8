package pstack

import (
	"testing"

	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
)

func TestMeasuredPushPopAttributesSelfAndPath(t *testing.T) {
	s := New(8)
	parentRec := &record.Record{}
	childRec := &record.Record{}

	s.MeasuredPush(parentRec, measure.Unit{Time: 0}, false)
	s.MeasuredPush(childRec, measure.Unit{Time: 10}, false)

	if _, err := s.MeasuredPop(measure.Unit{Time: 30}); err != nil {
		t.Fatalf("pop child: %v", err)
	}
	if childRec.Node.Time != 20 || childRec.Path.Time != 20 {
		t.Errorf("child node=%d path=%d, want 20/20", childRec.Node.Time, childRec.Path.Time)
	}
	if childRec.Count != 1 {
		t.Errorf("child count = %d, want 1", childRec.Count)
	}

	if _, err := s.MeasuredPop(measure.Unit{Time: 50}); err != nil {
		t.Fatalf("pop parent: %v", err)
	}
	// parent total = 50, of which 20 went to the child's path -> self = 30
	if parentRec.Path.Time != 50 {
		t.Errorf("parent path = %d, want 50", parentRec.Path.Time)
	}
	if parentRec.Node.Time != 30 {
		t.Errorf("parent node (self) = %d, want 30", parentRec.Node.Time)
	}
}

func TestOverflowAtCapacityDoesNotMutateState(t *testing.T) {
	s := New(2)
	rec := &record.Record{}
	if _, err := s.MeasuredPush(rec, measure.Unit{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MeasuredPush(rec, measure.Unit{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MeasuredPush(rec, measure.Unit{}, false); err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if s.Size() != 2 {
		t.Errorf("Size() = %d, want 2 (failed push must not grow the stack)", s.Size())
	}
}

func TestOverheadPropagatesToParent(t *testing.T) {
	s := New(4)
	parentRec := &record.Record{}
	childRec := &record.Record{}

	s.MeasuredPush(parentRec, measure.Unit{Time: 0}, false)
	s.MeasuredPush(childRec, measure.Unit{Time: 0}, false)
	s.Peek().Overhead = 5

	s.MeasuredPop(measure.Unit{Time: 100}) // pop child
	parent := s.Peek()
	if parent.Overhead != 5 {
		t.Errorf("parent.Overhead = %d, want 5", parent.Overhead)
	}
	// child's total charged to record excludes its own overhead
	if childRec.Node.Time != 95 {
		t.Errorf("childRec.Node.Time = %d, want 95 (100 - 5 overhead)", childRec.Node.Time)
	}
}

func TestTailFlagPreservedThroughPushPop(t *testing.T) {
	s := New(4)
	f, _ := s.Next(true)
	if !f.TailCall {
		t.Fatal("Next(true) did not set TailCall")
	}
	popped, _ := s.Pop()
	if !popped.TailCall {
		t.Error("Pop lost the TailCall flag")
	}
}
