package profiler

import (
	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/perr"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/timeline"
	"github.com/marcin-radoszewski/viroprof/internal/value"
)

// mainHandle is the single cooperative-thread identity viroprof's own
// embedding (internal/eval) ever reports; a host with real coroutines
// would pass distinct handles instead. See ThreadHandle.
var mainHandle ThreadHandle = "main"

// Dispatch implements core.HookSink: it checks the registry and the
// Running flag, consumes a pending IgnoreNextCall, samples the clock,
// charges the calibration constant, suppresses allocation tracking while
// it dispatches by event kind, and adds its own measured cost to the
// overhead counter. Thread switches are not detected: every event is
// attributed to the mainHandle thread.
func (p *Profiler) Dispatch(ev core.HookEvent) {
	if current() != p {
		return
	}
	if !p.has(FlagRunning) {
		return
	}
	if p.has(FlagIgnoreNextCall) {
		p.clear(FlagIgnoreNextCall)
		return
	}

	entryTime := p.clock.Sample()
	p.overhead += p.calibration
	p.set(FlagIgnoreAlloc)

	tc := p.threadFor(mainHandle)

	switch ev.Kind {
	case core.HookCall, core.HookTailCall:
		p.handleCall(tc, ev)
	case core.HookReturn:
		p.handleReturn(tc, ev)
	case core.HookLine:
		p.handleLine(tc, ev)
	case core.HookCount:
		p.handleCount(tc, ev)
	}

	p.clear(FlagIgnoreAlloc)
	exitTime := p.clock.Sample()
	p.overhead += measure.Diff(exitTime, entryTime)
}

// OnAlloc implements core.Allocator. Allocation deltas observed while
// IgnoreAlloc is set (i.e. from the profiler's own bookkeeping, never from
// user code) are discarded.
func (p *Profiler) OnAlloc(amount int64) {
	if p.has(FlagIgnoreAlloc) || !p.modes.Has(ModeMemory) {
		return
	}
	tc := p.threads[mainHandle]
	if tc == nil {
		return
	}
	f := tc.stack.Peek()
	if f == nil {
		return
	}
	if amount >= 0 {
		f.NodeSnapshot.Allocated -= amount // offset so the eventual diff still nets the delta into the live frame
	} else {
		f.NodeSnapshot.Deallocated -= (-amount)
	}
}

func (p *Profiler) sampleUnit() measure.Unit {
	return measure.Unit{Time: p.clock.Sample()}
}

func (p *Profiler) coordFor(tc *threadContext) timeline.Coordinate {
	return timeline.Coordinate{Pid: p.opts.Process, Tid: tc.tid}
}

// funcIdentity derives a (fid, name, what, native) tuple for a function
// value reported through a hook event. viroprof's trimmed host has no
// source/line-defined metadata on FunctionValue, so the hash ignores
// those components; a fuller host would pass them through HookEvent.
// Identity derivation itself follows p.idStrategy: ByHash interns by
// content (stable even if the host's own GC ever relocated closures),
// ByPointer trusts the value's address directly.
func (p *Profiler) funcIdentity(v core.Value) (fid uint64, name, what string, isNative bool) {
	if v == nil {
		return record.UnknownID, "?", "user", false
	}
	fn, ok := value.AsFunctionValue(v)
	if !ok {
		return record.UnknownID, "?", "user", false
	}
	isNative = fn.Kind == value.FuncNative
	what = "user"
	if isNative {
		what = "native"
	}
	name = fn.Name
	if name == "" {
		name = "anonymous"
	}
	if p.idStrategy == record.ByPointer {
		return record.IdentityFuncID(fn), name, what, isNative
	}
	return record.HashFuncID(name, "", 0), name, what, isNative
}

func (p *Profiler) handleCall(tc *threadContext, ev core.HookEvent) {
	fid, name, what, isNative := p.funcIdentity(ev.Func)
	if p.stopFuncID != 0 && fid == p.stopFuncID {
		return
	}
	ignored := p.ignoreSet[fid]

	var pid uint64 = record.RootID
	var parentLine int
	if top := tc.stack.Peek(); top != nil && top.Record != nil {
		pid = top.Record.FuncID
		parentLine = top.LastLine
	}

	rec := p.table.GetOrCreate(fid, pid, parentLine, func(id int) *record.Record {
		return &record.Record{ID: id}
	})
	rec.Update(record.FunctionInfo{Name: name, What: what, IsNative: isNative, Ignored: ignored})

	now := p.sampleUnit()
	tail := ev.Kind == core.HookTailCall

	if p.modes.Has(ModeTrace) && p.tl != nil {
		f, err := tc.stack.Next(tail)
		if err != nil {
			p.raise(perr.CaptureError, perr.CodeStackOverflow, "profile stack overflow")
			return
		}
		f.Record = rec
		f.Measurement = now
		if !ignored {
			ref, ok := p.tl.EmitEnterScope(p.coordFor(tc), &rec.Info, now, p.overhead)
			if !ok {
				p.raise(perr.CaptureError, perr.CodePageBudgetExhausted, "trace timeline page budget exhausted")
				return
			}
			f.BeginEvent = ref
		}
		return
	}

	if _, err := tc.stack.MeasuredPush(rec, now, tail); err != nil {
		p.raise(perr.CaptureError, perr.CodeStackOverflow, "profile stack overflow")
	}
}

// handleReturn implements spec §4.6.3's pop-while contract: a return may
// close more than one activation at once, because a chain of tail calls
// replaces the caller's frame rather than nesting it. It pops frames
// (charging each one) while the popped frame was itself pushed as a tail
// call, or its record doesn't match the fid actually returning, stopping
// at the first ordinary frame whose fid matches. viroprof's evaluator
// never emits HookTailCall and never unwinds more than one frame per
// HookReturn, so every call here runs exactly one iteration in practice —
// but the loop, not a single unconditional pop, is what's implemented.
func (p *Profiler) handleReturn(tc *threadContext, ev core.HookEvent) {
	if tc.stack.Size() == 0 {
		return
	}
	fid, _, _, _ := p.funcIdentity(ev.Func)

	for tc.stack.Size() > 0 {
		now := p.sampleUnit()

		if p.modes.Has(ModeTrace) && p.tl != nil {
			f, err := tc.stack.Pop()
			if err != nil {
				p.raise(perr.CaptureError, perr.CodeStackMismatch, "profile stack underflow on return")
				return
			}
			if f.Record != nil && !f.Record.Info.Ignored {
				p.tl.EmitExitScope(p.coordFor(tc), f.BeginEvent, now, p.overhead)
			}
			if !f.TailCall && (f.Record == nil || f.Record.FuncID == fid) {
				return
			}
			continue
		}

		popped, err := tc.stack.MeasuredPop(now)
		if err != nil {
			p.raise(perr.CaptureError, perr.CodeStackMismatch, "profile stack underflow on return")
			return
		}
		if !popped.TailCall && (popped.Record == nil || popped.Record.FuncID == fid) {
			return
		}
	}
}

func (p *Profiler) handleLine(tc *threadContext, ev core.HookEvent) {
	top := tc.stack.Peek()
	if top == nil {
		return
	}
	top.LastLine = ev.Line

	if p.modes.Has(ModeTrace) && p.tl != nil {
		if top.BeginEvent.Set {
			p.tl.EmitLineScope(p.coordFor(tc), top.BeginEvent, p.sampleUnit(), p.overhead)
		}
		return
	}
	if p.opts.LineFreq && top.Record != nil {
		top.Record.BumpLine(ev.Line)
	}
}

// handleCount only does anything in sample mode. When instrument mode is
// also set, it only advances the top frame's instruction counter
// (LastCount): instrument mode already derives counts from
// measured-push/pop, and treating every evaluated expression as a distinct
// call would inflate I1's count invariant.
func (p *Profiler) handleCount(tc *threadContext, ev core.HookEvent) {
	if !p.modes.Has(ModeSample) {
		return
	}
	top := tc.stack.Peek()
	if top == nil {
		return
	}
	if p.modes.Has(ModeInstrument) {
		top.LastCount++
		return
	}
	if p.modes.Has(ModeTrace) && p.tl != nil {
		p.tl.EmitSample(p.coordFor(tc), p.sampleUnit(), p.overhead)
		return
	}
	if top.Record != nil {
		top.Record.Count++
	}
}
