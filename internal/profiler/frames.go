package profiler

// BeginFrame implements the programmatic `begin_frame()` operation from
// spec §6: it injects a synthetic render-frame boundary into the trace
// timeline, gated on the DrawFrame option. A no-op outside trace mode or
// when DrawFrame wasn't requested, so hosts that never call it pay
// nothing.
func (p *Profiler) BeginFrame() {
	if !p.opts.DrawFrame || p.tl == nil || !p.has(FlagRunning) {
		return
	}
	tc := p.threadFor(p.activeHandle)
	p.tl.EmitBeginFrame(p.coordFor(tc), p.sampleUnit(), p.overhead, p.tl.FrameCount())
}

// EndFrame closes the frame boundary opened by the most recent BeginFrame.
func (p *Profiler) EndFrame() {
	if !p.opts.DrawFrame || p.tl == nil || !p.has(FlagRunning) {
		return
	}
	tc := p.threadFor(p.activeHandle)
	p.tl.EmitEndFrame(p.coordFor(tc), p.sampleUnit(), p.overhead)
}
