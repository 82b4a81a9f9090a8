package timeline

import (
	"testing"

	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
)

func TestEnterExitCrossLink(t *testing.T) {
	tl := New(0)
	coord := Coordinate{Pid: 1, Tid: 1}
	info := &record.FunctionInfo{Name: "f"}

	enterRef, ok := tl.EmitEnterScope(coord, info, measure.Unit{Time: 0}, 0)
	if !ok {
		t.Fatal("EmitEnterScope failed")
	}
	exitRef, ok := tl.EmitExitScope(coord, enterRef, measure.Unit{Time: 10}, 0)
	if !ok {
		t.Fatal("EmitExitScope failed")
	}

	enter := tl.Get(enterRef)
	exit := tl.Get(exitRef)
	if enter.Sibling != exitRef {
		t.Error("enter.Sibling does not point at exit")
	}
	if exit.Sibling != enterRef {
		t.Error("exit.Sibling does not point at enter")
	}
}

func TestCanBufferPredictsAllocationSuccess(t *testing.T) {
	tl := New(1) // exactly one page
	if !tl.CanBuffer(eventsPerPage) {
		t.Fatal("CanBuffer should allow filling exactly one page")
	}
	for i := 0; i < eventsPerPage; i++ {
		if _, ok := tl.EmitSample(Coordinate{}, measure.Unit{}, 0); !ok {
			t.Fatalf("EmitSample failed before reaching page capacity at i=%d", i)
		}
	}
	if tl.CanBuffer(1) {
		t.Error("CanBuffer should report false once the single page is full and pageLimit is reached")
	}
	if _, ok := tl.EmitSample(Coordinate{}, measure.Unit{}, 0); ok {
		t.Error("EmitSample should fail once the page budget is exhausted")
	}
}

func TestPageUsageReportsFullAtBudgetExhaustion(t *testing.T) {
	tl := New(2)
	if got := tl.PageUsage(); got != 0.5 {
		t.Errorf("PageUsage() with 1/2 pages allocated = %v, want 0.5", got)
	}
	for i := 0; i < 2*eventsPerPage; i++ {
		tl.EmitSample(Coordinate{}, measure.Unit{}, 0)
	}
	if got := tl.PageUsage(); got != 1.0 {
		t.Errorf("PageUsage() at budget exhaustion = %v, want 1.0", got)
	}
}

func TestPageUsageUnboundedIsZero(t *testing.T) {
	tl := New(0)
	tl.EmitSample(Coordinate{}, measure.Unit{}, 0)
	if got := tl.PageUsage(); got != 0 {
		t.Errorf("PageUsage() with no page limit = %v, want 0", got)
	}
}

func TestCompressThresholdZeroIsNoOp(t *testing.T) {
	tl := New(0)
	coord := Coordinate{Pid: 1, Tid: 1}
	info := &record.FunctionInfo{}
	enterRef, _ := tl.EmitEnterScope(coord, info, measure.Unit{Time: 0}, 0)
	tl.EmitExitScope(coord, enterRef, measure.Unit{Time: 1}, 0)

	tl.Compress(CompressOptions{Threshold: 0})

	if tl.Get(enterRef).Kind != EnterScope {
		t.Error("Compress(threshold=0) must be a no-op (R2)")
	}
}

func TestCompressElidesShortScopes(t *testing.T) {
	tl := New(0)
	coord := Coordinate{Pid: 1, Tid: 1}
	info := &record.FunctionInfo{}

	shortEnter, _ := tl.EmitEnterScope(coord, info, measure.Unit{Time: 0}, 0)
	tl.EmitExitScope(coord, shortEnter, measure.Unit{Time: 1}, 0) // 1ns scope

	longEnter, _ := tl.EmitEnterScope(coord, info, measure.Unit{Time: 10}, 0)
	tl.EmitExitScope(coord, longEnter, measure.Unit{Time: 1000}, 0) // 990ns scope

	tl.Compress(CompressOptions{Threshold: 100})

	if tl.Get(shortEnter).Kind != IgnoreScope {
		t.Error("short scope should have been rewritten to IgnoreScope")
	}
	if tl.Get(longEnter).Kind != EnterScope {
		t.Error("long scope should survive compression")
	}
}

func TestAdjustSubtractsBaseTimeAndOverhead(t *testing.T) {
	tl := New(0)
	coord := Coordinate{Pid: 1, Tid: 1}
	tl.EmitSample(coord, measure.Unit{Time: 1000}, 10)
	tl.EmitSample(coord, measure.Unit{Time: 1100}, 5)

	tl.Adjust()

	var times []int64
	tl.ForEach(func(_ Ref, ev *Event) { times = append(times, ev.Measurement.Time) })
	if times[0] != -10 {
		t.Errorf("first adjusted time = %d, want -10 (0 base - 10 overhead)", times[0])
	}
	if times[1] != 95 {
		t.Errorf("second adjusted time = %d, want 95 (100 elapsed - 5 overhead)", times[1])
	}
}
