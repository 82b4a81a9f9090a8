package profiler

// Flags are the non-exclusive state bits a Profiler can carry
// simultaneously, per spec §4.6.1.
type Flags uint16

const (
	FlagSettingUp Flags = 1 << iota
	FlagRunning
	FlagPaused
	FlagError
	FlagIgnoreAlloc
	FlagIgnoreNextCall
	FlagGcWasRunning
	FlagPersistent
)

func (p *Profiler) has(f Flags) bool  { return p.flags&f != 0 }
func (p *Profiler) set(f Flags)       { p.flags |= f }
func (p *Profiler) clear(f Flags)     { p.flags &^= f }

// Phase is the coarse lifecycle phase, mirroring the diagram in §4.6.1:
//
//	(none) -> Configured -> SettingUp -> Running -> {Reporting -> Finalized | Error -> Finalized}
//	                                     Running <-> Paused
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseConfigured
	PhaseSettingUp
	PhaseRunning
	PhasePaused
	PhaseReporting
	PhaseError
	PhaseFinalized
)

// Phase returns the coarse phase held in the explicit phase field tracked
// on Profiler; it does not consult the flag bits.
func (p *Profiler) Phase() Phase { return p.phase }
