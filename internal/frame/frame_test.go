package frame

import (
	"testing"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/value"
)

func TestBindAndGet(t *testing.T) {
	f := NewFrame(core.FrameFunctionArgs, -1)
	f.Bind("x", value.IntVal(10))

	v, ok := f.Get("x")
	if !ok {
		t.Fatal("expected x to be bound")
	}
	n, _ := value.AsInteger(v)
	if n != 10 {
		t.Errorf("Get(x) = %d, want 10", n)
	}
}

func TestBindOverwritesExisting(t *testing.T) {
	f := NewFrame(core.FrameFunctionArgs, -1)
	f.Bind("x", value.IntVal(1))
	f.Bind("x", value.IntVal(2))

	if f.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (rebinding should not duplicate)", f.Count())
	}
	v, _ := f.Get("x")
	n, _ := value.AsInteger(v)
	if n != 2 {
		t.Errorf("Get(x) = %d, want 2", n)
	}
}

func TestSetRequiresExistingBinding(t *testing.T) {
	f := NewFrame(core.FrameFunctionArgs, -1)
	if f.Set("missing", value.IntVal(1)) {
		t.Error("Set on unbound word should return false")
	}
	f.Bind("y", value.NoneVal())
	if !f.Set("y", value.IntVal(5)) {
		t.Error("Set on bound word should return true")
	}
}

func TestHasWord(t *testing.T) {
	f := NewFrame(core.FrameFunctionArgs, -1)
	if f.HasWord("z") {
		t.Error("HasWord should be false before binding")
	}
	f.Bind("z", value.LogicVal(true))
	if !f.HasWord("z") {
		t.Error("HasWord should be true after binding")
	}
}

func TestGetAllPreservesOrder(t *testing.T) {
	f := NewFrame(core.FrameFunctionArgs, -1)
	f.Bind("a", value.IntVal(1))
	f.Bind("b", value.IntVal(2))

	all := f.GetAll()
	if len(all) != 2 || all[0].Symbol != "a" || all[1].Symbol != "b" {
		t.Fatalf("GetAll() = %+v, want [a b] in order", all)
	}
}
