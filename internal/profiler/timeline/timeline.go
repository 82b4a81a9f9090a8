// Package timeline implements the profiler's trace-event timeline (C5): a
// paged, bounded, append-only log of ordered events with a post-pass
// compression algorithm that elides short-duration scopes.
package timeline

import (
	"unsafe"

	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
)

// EventKind discriminates the Trace Event variant.
type EventKind uint8

const (
	BeginFrame EventKind = iota
	EndFrame
	BeginRoutine
	EndRoutine
	EnterScope
	ExitScope
	LineScope
	Sample
	ProcessMeta
	ThreadMeta
	IgnoreScope
)

// Coordinate identifies a timeline lane: (pid, tid).
type Coordinate struct {
	Pid int64
	Tid int64
}

// Ref is an index into the timeline's page array: (pageIndex, slotIndex).
// Enter/Exit sibling links and line-scope chains are expressed this way
// instead of pointers, so the owning forest stays acyclic and cross-links
// are pure lookups.
type Ref struct {
	Page int
	Slot int
	Set  bool
}

// Event is one entry in the timeline.
type Event struct {
	Kind        EventKind
	Coord       Coordinate
	Measurement measure.Unit
	Overhead    int64

	Info        *record.FunctionInfo
	Sibling     Ref
	FrameNumber int
	SampleNext  Ref
	LinesHead   Ref
	Previous    Ref // reverse link for LineScope chains
	DisplayName string
}

const defaultPageBytes = 32 * 1024

// eventsPerPage is how many Events fit in the default 32 KiB page budget.
const eventsPerPage = defaultPageBytes / int(unsafe.Sizeof(Event{}))

// Page is a fixed-capacity array of events, forming a singly-linked list.
type Page struct {
	events [eventsPerPage]Event
	count  int
	next   *Page
}

// Timeline is the paged ordered event log.
type Timeline struct {
	head, curr *Page
	pageCount  int
	pageLimit  int // 0 = unbounded
	frameCount int
	baseTime   int64
	baseSet    bool
}

// New creates a timeline with the given page budget, in pages (0 =
// unbounded).
func New(pageLimit int) *Timeline {
	t := &Timeline{pageLimit: pageLimit}
	first := &Page{}
	t.head, t.curr = first, first
	t.pageCount = 1
	return t
}

// PageCount returns the number of pages currently allocated.
func (t *Timeline) PageCount() int { return t.pageCount }

// PageUsage returns allocated-pages / pageLimit, or 0 if unbounded.
func (t *Timeline) PageUsage() float64 {
	if t.pageLimit <= 0 {
		return 0
	}
	return float64(t.pageCount) / float64(t.pageLimit)
}

// CanBuffer reports whether the next n events can be appended without an
// allocation failure.
func (t *Timeline) CanBuffer(n int) bool {
	remaining := eventsPerPage - t.curr.count
	pages := t.pageCount
	for remaining < n {
		n -= remaining
		if t.pageLimit > 0 && pages >= t.pageLimit {
			return false
		}
		pages++
		remaining = eventsPerPage
	}
	return true
}

// alloc reserves the next event slot, returning its Ref, or Ref{} with ok
// false when the page budget is exhausted.
func (t *Timeline) alloc() (Ref, bool) {
	if t.curr.count == eventsPerPage {
		if t.curr.next != nil {
			t.curr = t.curr.next
		} else {
			if t.pageLimit > 0 && t.pageCount >= t.pageLimit {
				return Ref{}, false
			}
			next := &Page{}
			t.curr.next = next
			t.curr = next
			t.pageCount++
		}
	}
	slot := t.curr.count
	t.curr.count++
	return Ref{Page: t.pageCount - 1, Slot: slot, Set: true}, true
}

// page returns the page at the given logical index (0-based, in
// allocation order), or nil if out of range.
func (t *Timeline) page(idx int) *Page {
	p := t.head
	for i := 0; i < idx && p != nil; i++ {
		p = p.next
	}
	return p
}

// Get resolves a Ref to its Event, or nil if unset or out of range.
func (t *Timeline) Get(ref Ref) *Event {
	if !ref.Set {
		return nil
	}
	p := t.page(ref.Page)
	if p == nil || ref.Slot >= p.count {
		return nil
	}
	return &p.events[ref.Slot]
}

// emit allocates and fills an event, returning its Ref. Returns Ref{},false
// on page-budget exhaustion; the caller drops the event.
func (t *Timeline) emit(kind EventKind, coord Coordinate, m measure.Unit, overhead int64) (Ref, *Event, bool) {
	ref, ok := t.alloc()
	if !ok {
		return Ref{}, nil, false
	}
	ev := t.Get(ref)
	ev.Kind = kind
	ev.Coord = coord
	ev.Measurement = m
	ev.Overhead = overhead
	return ref, ev, true
}

// EmitEnterScope records a scope entry. The caller stashes the returned Ref
// in the profile-stack frame so the matching exit can cross-link.
func (t *Timeline) EmitEnterScope(coord Coordinate, info *record.FunctionInfo, m measure.Unit, overhead int64) (Ref, bool) {
	ref, ev, ok := t.emit(EnterScope, coord, m, overhead)
	if !ok {
		return Ref{}, false
	}
	ev.Info = info
	return ref, true
}

// EmitExitScope records a scope exit and cross-links it with the stored
// enter Ref, if that enter event is still resolvable.
func (t *Timeline) EmitExitScope(coord Coordinate, enterRef Ref, m measure.Unit, overhead int64) (Ref, bool) {
	ref, ev, ok := t.emit(ExitScope, coord, m, overhead)
	if !ok {
		return Ref{}, false
	}
	ev.Sibling = enterRef
	if enter := t.Get(enterRef); enter != nil {
		enter.Sibling = ref
	}
	return ref, true
}

// EmitLineScope records a line-change event for the active scope, chaining
// it onto the enter event's lines list via Previous links.
func (t *Timeline) EmitLineScope(coord Coordinate, enterRef Ref, m measure.Unit, overhead int64) (Ref, bool) {
	ref, ev, ok := t.emit(LineScope, coord, m, overhead)
	if !ok {
		return Ref{}, false
	}
	enter := t.Get(enterRef)
	if enter == nil {
		return ref, true
	}
	ev.Previous = enter.LinesHead
	enter.LinesHead = ref
	return ref, true
}

// EmitSample records a count-mode sample event.
func (t *Timeline) EmitSample(coord Coordinate, m measure.Unit, overhead int64) (Ref, bool) {
	ref, _, ok := t.emit(Sample, coord, m, overhead)
	return ref, ok
}

// EmitBeginRoutine / EmitEndRoutine record coroutine-switch boundaries.
func (t *Timeline) EmitBeginRoutine(coord Coordinate, m measure.Unit, overhead int64) (Ref, bool) {
	ref, _, ok := t.emit(BeginRoutine, coord, m, overhead)
	return ref, ok
}

func (t *Timeline) EmitEndRoutine(coord Coordinate, m measure.Unit, overhead int64) (Ref, bool) {
	ref, _, ok := t.emit(EndRoutine, coord, m, overhead)
	return ref, ok
}

// EmitBeginFrame / EmitEndFrame inject a synthetic render-frame boundary.
func (t *Timeline) EmitBeginFrame(coord Coordinate, m measure.Unit, overhead int64, frameNumber int) (Ref, bool) {
	ref, ev, ok := t.emit(BeginFrame, coord, m, overhead)
	if ok {
		ev.FrameNumber = frameNumber
		t.frameCount++
	}
	return ref, ok
}

func (t *Timeline) EmitEndFrame(coord Coordinate, m measure.Unit, overhead int64) (Ref, bool) {
	ref, _, ok := t.emit(EndFrame, coord, m, overhead)
	return ref, ok
}

// EmitProcessMeta / EmitThreadMeta record display-name metadata.
func (t *Timeline) EmitProcessMeta(coord Coordinate, name string) (Ref, bool) {
	ref, ev, ok := t.emit(ProcessMeta, coord, measure.Unit{}, 0)
	if ok {
		ev.DisplayName = name
	}
	return ref, ok
}

func (t *Timeline) EmitThreadMeta(coord Coordinate, name string) (Ref, bool) {
	ref, ev, ok := t.emit(ThreadMeta, coord, measure.Unit{}, 0)
	if ok {
		ev.DisplayName = name
	}
	return ref, ok
}

// ForEach visits every event in allocation order across all pages.
func (t *Timeline) ForEach(cb func(ref Ref, ev *Event)) {
	pageIdx := 0
	for p := t.head; p != nil; p = p.next {
		for i := 0; i < p.count; i++ {
			cb(Ref{Page: pageIdx, Slot: i, Set: true}, &p.events[i])
		}
		pageIdx++
	}
}

// participatesInOrdering reports whether a variant's time is subject to
// the monotonic-ordering invariant (metadata events are exempt).
func participatesInOrdering(k EventKind) bool {
	switch k {
	case ProcessMeta, ThreadMeta:
		return false
	default:
		return true
	}
}

// Adjust subtracts baseTime (the first ordering-participating event's time,
// captured once) and each event's own overhead from its Measurement.Time,
// then zeroes that overhead so it is never subtracted twice. It does not
// repair ordering violations it finds; it only diagnoses them
// via the returned count.
func (t *Timeline) Adjust() (violations int) {
	if !t.baseSet {
		t.ForEach(func(_ Ref, ev *Event) {
			if !t.baseSet && participatesInOrdering(ev.Kind) {
				t.baseTime = ev.Measurement.Time
				t.baseSet = true
			}
		})
	}
	last := map[int64]int64{}
	t.ForEach(func(_ Ref, ev *Event) {
		if !participatesInOrdering(ev.Kind) {
			return
		}
		ev.Measurement.Time -= t.baseTime + ev.Overhead
		ev.Overhead = 0
		if prev, ok := last[ev.Coord.Tid]; ok && ev.Measurement.Time < prev {
			violations++
		}
		last[ev.Coord.Tid] = ev.Measurement.Time
	})
	return violations
}

// ResetBase sets the captured base time to 0 (and marks it captured), so a
// subsequent Adjust call subtracts nothing further from already-adjusted
// times, whose overheads the earlier Adjust has zeroed: it is idempotent.
func (t *Timeline) ResetBase() {
	t.baseTime = 0
	t.baseSet = true
}

// CompressOptions parameterize the compress pass.
type CompressOptions struct {
	PidFilter int64
	TidFilter int64
	UseFilter bool
	Threshold int64 // nanoseconds; scopes shorter than this are elided
}

// Compress rewrites short-duration scopes (and any scope whose record is
// ignored) as IgnoreScope, along with every line-scope event chained to
// that scope's enter event. Emitters skip IgnoreScope on output. A
// threshold of 0 is defined as a no-op.
func (t *Timeline) Compress(opts CompressOptions) {
	if opts.Threshold <= 0 {
		return
	}
	t.ForEach(func(_ Ref, ev *Event) {
		if ev.Kind != EnterScope || !ev.Sibling.Set {
			return
		}
		if opts.UseFilter && (ev.Coord.Pid != opts.PidFilter || ev.Coord.Tid != opts.TidFilter) {
			return
		}
		sibling := t.Get(ev.Sibling)
		if sibling == nil {
			return
		}
		delta := sibling.Measurement.Time - ev.Measurement.Time
		ignored := ev.Info != nil && ev.Info.Ignored
		if delta >= opts.Threshold && !ignored {
			return
		}
		ev.Kind = IgnoreScope
		sibling.Kind = IgnoreScope
		for ref := ev.LinesHead; ref.Set; {
			line := t.Get(ref)
			if line == nil {
				break
			}
			line.Kind = IgnoreScope
			ref = line.Previous
		}
	})
}

// FrameCount returns the number of synthetic render-frame boundaries
// emitted so far.
func (t *Timeline) FrameCount() int { return t.frameCount }
