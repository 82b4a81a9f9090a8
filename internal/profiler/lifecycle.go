package profiler

import (
	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/perr"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/timeline"
)

// Start attaches the profiler to host: installs it as the host's hook sink
// (and, in memory mode, its allocator), measures the calibration constant,
// and transitions Configured -> SettingUp -> Running. Mirrors spec
// §4.6.1's lifecycle and refuses (ConfigError/RegistrationError) before
// ever touching host state.
func (p *Profiler) Start(host core.Evaluator) error {
	if p.phase != PhaseConfigured {
		return perr.Configf(perr.CodeInvalidModeCombo, "profiler already started or finalized")
	}
	if current() != nil {
		return perr.Registrationf(perr.CodeSingletonOwned, "a profiler is already running in this process")
	}
	if host.Hooks() != nil {
		return perr.Registrationf(perr.CodeHookAlreadyInstalled, "host already has a debug hook installed")
	}

	p.phase = PhaseSettingUp
	p.set(FlagSettingUp)
	// IgnoreNextCall exists to swallow a host-level "start profiling" call
	// that is itself visible through the hook (e.g. a script-level
	// profile.start() invocation). viroprof's embedder calls Start
	// directly from Go, never through a traced call, so there is nothing
	// to swallow here.

	p.calibration = measureCalibration(p.clock)
	p.startedAt = p.clock.Sample()

	p.mainHandle = mainHandle
	p.activeHandle = mainHandle
	tc := p.threadFor(mainHandle)
	tc.name = p.name

	if p.modes.Has(ModeTrace) && p.tl == nil {
		p.tl = timeline.New(p.opts.PageLimit)
	}
	if p.tl != nil {
		p.tl.EmitProcessMeta(timeline.Coordinate{Pid: p.opts.Process}, p.name)
		p.tl.EmitThreadMeta(timeline.Coordinate{Pid: p.opts.Process, Tid: tc.tid}, tc.displayName())
	}

	host.SetHooks(p)
	if p.modes.Has(ModeMemory) {
		host.SetAllocator(p)
	}

	register(p)
	p.clear(FlagSettingUp)
	p.set(FlagRunning)
	p.phase = PhaseRunning
	return nil
}

// measureCalibration is split out so the clock dependency is explicit and
// testable without going through Start.
func measureCalibration(clock interface{ Sample() int64 }) int64 {
	start := clock.Sample()
	for i := 0; i < 1000; i++ {
		_ = clock.Sample()
	}
	end := clock.Sample()
	if end <= start {
		return 0
	}
	return (end - start) / 1000
}

// Stop detaches the profiler from host, runs the trace adjust/compress
// passes if applicable, and transitions Running -> Finalized.
// Any activation records still on an open stack are popped with a
// synthesized measurement so the report reflects a consistent tree; when
// opts.Mismatch is false this instead raises ConsistencyError.
func (p *Profiler) Stop(host core.Evaluator) error {
	if !p.has(FlagRunning) && !p.has(FlagPaused) {
		return perr.Consistencyf(perr.CodeStackMismatch, "stop called while not running")
	}

	for _, tc := range p.threads {
		if tc.stack.Size() == 0 {
			continue
		}
		if !p.opts.Mismatch {
			p.detach(host)
			return perr.Consistencyf(perr.CodeStackMismatch, "profile stack has %d unclosed frame(s) at stop", tc.stack.Size())
		}
		p.synthesizeUnwind(tc)
	}

	if p.tl != nil {
		p.tl.Adjust()
		if p.opts.Compress {
			p.tl.Compress(timeline.CompressOptions{Threshold: p.opts.Threshold})
		}
	}

	p.detach(host)
	p.phase = PhaseFinalized
	return nil
}

// Quit tears down without producing a report: the hashtable and timeline
// are discarded rather than adjusted/compressed.
func (p *Profiler) Quit(host core.Evaluator) {
	p.detach(host)
	p.table.Destroy()
	p.phase = PhaseFinalized
}

func (p *Profiler) detach(host core.Evaluator) {
	if host.Hooks() == core.HookSink(p) {
		host.SetHooks(nil)
	}
	host.SetAllocator(nil)
	unregister(p)
	p.clear(FlagRunning | FlagPaused | FlagSettingUp)
}

// synthesizeUnwind pops every remaining frame on tc's stack top-down,
// charging it whatever time/overhead it had accrued, so open activations
// still contribute to the report instead of vanishing silently.
func (p *Profiler) synthesizeUnwind(tc *threadContext) {
	now := p.sampleUnit()
	for tc.stack.Size() > 0 {
		if p.tl != nil {
			f := tc.stack.At(tc.stack.Size() - 1)
			if f != nil && f.BeginEvent.Set {
				p.tl.EmitExitScope(p.coordFor(tc), f.BeginEvent, now, p.overhead)
			}
			tc.stack.Pop()
			continue
		}
		tc.stack.MeasuredPop(now)
	}
}

// Pause suspends capture: in trace mode it emits synthetic exit events for
// every open frame so the timeline stays well-formed across the gap.
func (p *Profiler) Pause() {
	if !p.has(FlagRunning) {
		return
	}
	p.clear(FlagRunning)
	p.set(FlagPaused)
	if p.tl == nil {
		return
	}
	now := p.sampleUnit()
	for _, tc := range p.threads {
		for i := 0; i < tc.stack.Size(); i++ {
			f := tc.stack.At(i)
			if f != nil && f.BeginEvent.Set {
				p.tl.EmitExitScope(p.coordFor(tc), f.BeginEvent, now, p.overhead)
			}
		}
	}
}

// Resume re-enters Running, emitting synthetic enter events in trace mode
// to bracket the paused interval.
func (p *Profiler) Resume() {
	if !p.has(FlagPaused) {
		return
	}
	p.clear(FlagPaused)
	p.set(FlagRunning)
	if p.tl == nil {
		return
	}
	now := p.sampleUnit()
	for _, tc := range p.threads {
		for i := 0; i < tc.stack.Size(); i++ {
			f := tc.stack.At(i)
			if f != nil && f.Record != nil {
				ref, ok := p.tl.EmitEnterScope(p.coordFor(tc), &f.Record.Info, now, p.overhead)
				if ok {
					f.BeginEvent = ref
				}
			}
		}
	}
}

// Table exposes the activation-record hashtable for report generation.
func (p *Profiler) Table() *record.Table { return p.table }

// Timeline exposes the trace-event log for report generation, or nil if
// the profiler was not configured in trace mode.
func (p *Profiler) Timeline() *timeline.Timeline { return p.tl }

// Overhead returns the running overhead counter, in nanoseconds.
func (p *Profiler) Overhead() int64 { return p.overhead }

// ElapsedWallTime returns the time since Start, in nanoseconds, per I4's
// conservation check: sum(node.time) + overhead + calibration ≈ this.
func (p *Profiler) ElapsedWallTime() int64 { return p.clock.Sample() - p.startedAt }

// Calibration returns the per-hook calibration constant measured at Start.
func (p *Profiler) Calibration() int64 { return p.calibration }

// ModesInUse returns the configured mode bitset.
func (p *Profiler) ModesInUse() Modes { return p.modes }

// OptionsInUse returns the normalized option set.
func (p *Profiler) OptionsInUse() Options { return p.opts }

// Name returns the profiler's display name (set via SetName or the name
// option).
func (p *Profiler) Name() string { return p.name }

// SetName labels the main thread and the session for reporting.
func (p *Profiler) SetName(name string) { p.name = name }

// TimeUnit returns the clock's unit label.
func (p *Profiler) TimeUnit() string { return p.clock.Label() }

// Ignore adds fid to the suppression set. In trace mode, calls to fid emit
// no scope events (the compress pass also rewrites any scope whose record
// is ignored as IgnoreScope); graph-mode output still lists the record,
// with its Ignored flag set.
func (p *Profiler) Ignore(fid uint64) { p.ignoreSet[fid] = true }

// Unignore removes fid from the suppression set.
func (p *Profiler) Unignore(fid uint64) { delete(p.ignoreSet, fid) }

// IsIgnored reports whether fid is currently suppressed.
func (p *Profiler) IsIgnored(fid uint64) bool { return p.ignoreSet[fid] }
