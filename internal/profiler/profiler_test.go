package profiler

import (
	"io"
	"testing"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
	"github.com/marcin-radoszewski/viroprof/internal/value"
	"github.com/rs/zerolog"
)

// fakeHost is a minimal core.Evaluator stand-in exercising only the surface
// Start/Stop/Dispatch touch: the single hook-sink and allocator slots.
type fakeHost struct {
	hook  core.HookSink
	alloc core.Allocator
}

func (h *fakeHost) CurrentFrameIndex() int                { return 0 }
func (h *fakeHost) RegisterFrame(core.Frame) int          { return 0 }
func (h *fakeHost) GetFrameByIndex(int) core.Frame        { return nil }
func (h *fakeHost) PushFrameContext(core.Frame) int       { return 0 }
func (h *fakeHost) PopFrameContext()                      {}
func (h *fakeHost) Lookup(string) (core.Value, bool)      { return nil, false }
func (h *fakeHost) DoNext(v core.Value) (core.Value, error) { return v, nil }
func (h *fakeHost) DoBlock([]core.Value) (core.Value, error) { return nil, nil }
func (h *fakeHost) Callstack() []string                   { return nil }
func (h *fakeHost) SetOutputWriter(io.Writer)              {}
func (h *fakeHost) GetOutputWriter() io.Writer              { return nil }
func (h *fakeHost) Hooks() core.HookSink                   { return h.hook }
func (h *fakeHost) SetHooks(s core.HookSink)               { h.hook = s }
func (h *fakeHost) SetAllocator(a core.Allocator)          { h.alloc = a }

func newTestProfiler(t *testing.T, modeNames ...string) *Profiler {
	t.Helper()
	modes, err := ParseModes(modeNames...)
	if err != nil {
		t.Fatalf("ParseModes: %v", err)
	}
	p, err := New(modes, DefaultOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestStartInstallsHooksAndTransitionsToRunning(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	host := &fakeHost{}

	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if host.Hooks() == nil {
		t.Error("Start did not install the profiler as the host's hook sink")
	}
	if !p.has(FlagRunning) {
		t.Error("profiler should be in FlagRunning after Start")
	}

	if err := p.Stop(host); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if host.Hooks() != nil {
		t.Error("Stop did not detach the hook sink")
	}
}

func TestStartRefusesWhenHostAlreadyHooked(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	host := &fakeHost{hook: &fakeHost{}}

	if err := p.Start(host); err == nil {
		t.Fatal("expected RegistrationError when host already has a hook sink")
	}
}

func TestStartRefusesSecondConcurrentProfiler(t *testing.T) {
	p1 := newTestProfiler(t, "instrument")
	host1 := &fakeHost{}
	if err := p1.Start(host1); err != nil {
		t.Fatalf("Start p1: %v", err)
	}
	defer p1.Stop(host1)

	p2 := newTestProfiler(t, "instrument")
	host2 := &fakeHost{}
	if err := p2.Start(host2); err == nil {
		t.Fatal("expected RegistrationError: a profiler is already the active singleton")
	}
}

func TestDispatchIgnoredWhenNotCurrentSingleton(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	// Never Start()ed, so current() != p and FlagRunning is unset.
	nativeFn := value.NewNativeFunction("add", nil, nil)
	p.Dispatch(core.HookEvent{Kind: core.HookCall, Func: nativeFn})
	if p.Table().Len() != 0 {
		t.Error("Dispatch should be a no-op before Start")
	}
}

func TestCallReturnCountsRecordedOnce(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop(host)

	fn := value.NewNativeFunction("add", nil, nil)
	p.Dispatch(core.HookEvent{Kind: core.HookCall, Func: fn})
	p.Dispatch(core.HookEvent{Kind: core.HookReturn, Func: fn})

	var found *record.Record
	p.Table().ForEach(func(r *record.Record) {
		if r.Info.Name == "add" {
			found = r
		}
	})
	if found == nil {
		t.Fatal("no record created for the dispatched call")
	}
	if found.Count != 1 {
		t.Errorf("count = %d, want 1", found.Count)
	}
}

func TestStopDetectsUnclosedStackAsMismatch(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fn := value.NewNativeFunction("loop", nil, nil)
	p.Dispatch(core.HookEvent{Kind: core.HookCall, Func: fn}) // never returns

	if err := p.Stop(host); err == nil {
		t.Fatal("expected ConsistencyError for an unclosed frame at stop")
	}
}

func TestStopToleratesMismatchWhenOptedIn(t *testing.T) {
	opts := DefaultOptions()
	opts.Mismatch = true
	modes, _ := ParseModes("instrument")
	p, err := New(modes, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fn := value.NewNativeFunction("loop", nil, nil)
	p.Dispatch(core.HookEvent{Kind: core.HookCall, Func: fn})

	if err := p.Stop(host); err != nil {
		t.Fatalf("Stop should synthesize the unwind instead of erroring: %v", err)
	}
}

func TestHandleReturnUnwindsTailCallChain(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop(host)

	root := value.NewNativeFunction("root", nil, nil)
	tail := value.NewNativeFunction("tail", nil, nil)

	p.Dispatch(core.HookEvent{Kind: core.HookCall, Func: root})
	p.Dispatch(core.HookEvent{Kind: core.HookTailCall, Func: tail})
	p.Dispatch(core.HookEvent{Kind: core.HookReturn, Func: tail})

	tc := p.threadFor(mainHandle)
	if tc.stack.Size() != 0 {
		t.Errorf("stack.Size() = %d after unwinding a tail-call chain, want 0", tc.stack.Size())
	}
}

func TestFuncIdentityUsesPointerStrategyWhenSelected(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	p.SetIdentityStrategy(record.ByPointer)
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop(host)

	fn := value.NewNativeFunction("add", nil, nil)
	p.Dispatch(core.HookEvent{Kind: core.HookCall, Func: fn})
	p.Dispatch(core.HookEvent{Kind: core.HookReturn, Func: fn})

	var found *record.Record
	p.Table().ForEach(func(r *record.Record) {
		if r.Info.Name == "add" {
			found = r
		}
	})
	if found == nil {
		t.Fatal("no record created for the dispatched call")
	}
	if found.FuncID != record.IdentityFuncID(fn) {
		t.Errorf("FuncID = %d, want pointer identity %d", found.FuncID, record.IdentityFuncID(fn))
	}
}

func TestBeginEndFrameNoOpWithoutDrawFrame(t *testing.T) {
	p := newTestProfiler(t, "instrument", "trace")
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop(host)

	p.BeginFrame()
	p.EndFrame()
	if p.tl.FrameCount() != 0 {
		t.Errorf("FrameCount() = %d without DrawFrame set, want 0", p.tl.FrameCount())
	}
}

func TestBeginEndFrameEmitsBoundariesWhenEnabled(t *testing.T) {
	opts := DefaultOptions()
	opts.DrawFrame = true
	modes, _ := ParseModes("instrument", "trace")
	p, err := New(modes, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	host := &fakeHost{}
	if err := p.Start(host); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop(host)

	p.BeginFrame()
	p.EndFrame()
	if p.tl.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d after one BeginFrame/EndFrame pair, want 1", p.tl.FrameCount())
	}
}

func TestSetGetOptionRoundTrip(t *testing.T) {
	t.Cleanup(func() { SetOption("verbose", false) })

	if err := SetOption("verbose", true); err != nil {
		t.Fatalf("SetOption: %v", err)
	}
	v, ok := GetOption("verbose")
	if !ok || v != true {
		t.Errorf("GetOption(verbose) = %v, %v, want true, true", v, ok)
	}
}

func TestSetOptionRejectsWrongType(t *testing.T) {
	if err := SetOption("verbose", "yes"); err == nil {
		t.Error("expected an error for a string value on a bool option")
	}
}

func TestSetOptionRejectsUnknownKey(t *testing.T) {
	if err := SetOption("bogus", true); err == nil {
		t.Error("expected an error for an unknown option key")
	}
}

func TestGetOptionUnknownKeyNotOK(t *testing.T) {
	if _, ok := GetOption("bogus"); ok {
		t.Error("expected ok=false for an unknown option key")
	}
}

func TestHasIOReflectsSetIOSink(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	if p.HasIO() {
		t.Fatal("HasIO() should be false before SetIOSink")
	}
	p.SetIOSink(io.Discard)
	if !p.HasIO() {
		t.Error("HasIO() should be true after SetIOSink")
	}
}

func TestIgnoreSetSuppressesFutureLookups(t *testing.T) {
	p := newTestProfiler(t, "instrument")
	fid := uint64(42)
	if p.IsIgnored(fid) {
		t.Fatal("fid should not start ignored")
	}
	p.Ignore(fid)
	if !p.IsIgnored(fid) {
		t.Error("Ignore did not mark fid as ignored")
	}
	p.Unignore(fid)
	if p.IsIgnored(fid) {
		t.Error("Unignore did not clear fid")
	}
}
