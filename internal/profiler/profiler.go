// Package profiler is the profiler's root package: Profiler State (C6) and
// Hook Dispatch (C7). It owns the activation-record hashtable, the
// per-thread profile-stack registry, and (in trace mode) the trace-event
// timeline, and it is the core.HookSink/core.Allocator the host evaluator
// is wired to.
package profiler

import (
	"fmt"
	"io"

	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/perr"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/timeline"
	"github.com/rs/zerolog"
)

// Profiler is the root owner, one per active session (a fresh value is
// created by New; registry.go holds the package-level slot for the one
// running profiler, which Dispatch checks before acting).
type Profiler struct {
	modes Modes
	opts  Options
	flags Flags
	phase Phase

	log zerolog.Logger

	clock       measure.Clock
	calibration int64
	overhead    int64 // running overhead counter, monotonically non-decreasing
	startedAt   int64

	table *record.Table

	threads       map[ThreadHandle]*threadContext
	mainHandle    ThreadHandle
	activeHandle  ThreadHandle
	nextTid       int64
	stackCapacity int

	tl *timeline.Timeline

	ignoreSet map[uint64]bool // funcID -> ignored, per the ignore-set registry

	idStrategy record.IDStrategy
	stopFuncID uint64 // identity the profiler uses to decline recording itself

	name string // current thread's display name, set via SetName
	url  string

	errCallback func(*perr.Error)

	counterTick int

	gcWasRunning bool

	ioSink io.Writer // set via SetIOSink; backs the has_io() programmatic query
}

// New builds a reusable, unstarted profiler configured with the given
// modes and options. Corresponds to the programmatic `create(modes...)`
// operation; it does not install any hooks.
func New(modes Modes, opts Options, logger zerolog.Logger) (*Profiler, error) {
	opts = opts.Normalize()
	p := &Profiler{
		modes:         modes,
		opts:          opts,
		phase:         PhaseConfigured,
		log:           logger,
		clock:         measure.NewNanoClock(),
		table:         record.New(opts.HashSize),
		threads:       make(map[ThreadHandle]*threadContext),
		stackCapacity: 1024,
		ignoreSet:     make(map[uint64]bool),
		idStrategy:    record.ByHash,
		url:           opts.URL,
		name:          opts.Name,
	}
	if modes.Has(ModeTrace) {
		p.tl = timeline.New(opts.PageLimit)
	}
	return p, nil
}

// SetErrorCallback installs the callback invoked on CaptureError.
func (p *Profiler) SetErrorCallback(cb func(*perr.Error)) { p.errCallback = cb }

// SetIOSink records the writer the embedder intends to write the report
// to, if any. Purely informational: HasIO reports whether one has been
// set, answering the programmatic `has_io()` query without the profiler
// itself owning report I/O (that stays in cmd/viroprof and
// internal/profiler/report).
func (p *Profiler) SetIOSink(w io.Writer) { p.ioSink = w }

// HasIO implements the programmatic `has_io()` operation: whether the
// embedder has wired up a destination the eventual report can be written
// to.
func (p *Profiler) HasIO() bool { return p.ioSink != nil }

// SetIdentityStrategy overrides how function identity is derived (see
// record.IDStrategy). Must be called before Start; New always begins with
// record.ByHash, the safe default for a host whose GC may relocate
// closures.
func (p *Profiler) SetIdentityStrategy(s record.IDStrategy) { p.idStrategy = s }

func (p *Profiler) raise(cat perr.Category, code perr.Code, format string, args ...any) *perr.Error {
	e := perr.New(cat, code, fmt.Sprintf(format, args...))
	if cat == perr.CaptureError {
		p.set(FlagError)
		p.phase = PhaseError
		if p.errCallback != nil {
			p.errCallback(e)
		}
	}
	return e
}
