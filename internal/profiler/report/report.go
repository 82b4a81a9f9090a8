// Package report implements the profiler's Report Emitter (C8): it reads
// the activation-record hashtable and the trace-event timeline and
// produces either the graph report shape or the timeline report shape
// described in spec §6.
package report

import (
	"encoding/json"
	"io"

	"github.com/ericlagergren/decimal"

	"github.com/marcin-radoszewski/viroprof/internal/profiler"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/record"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/timeline"
)

// GraphHeader is the graph report's metadata block.
type GraphHeader struct {
	ClockUnit       string  `json:"clock_unit"`
	Instrument      bool    `json:"instrument"`
	Memory          bool    `json:"memory"`
	Lines           bool    `json:"lines"`
	Sample          bool    `json:"sample"`
	SamplerCount    int64   `json:"sampler_count"`
	InstrCount      int64   `json:"instr_count"`
	ProfileOverhead int64   `json:"profile_overhead"`
	Calibration     int64   `json:"calibration"`
	// PageUsage is the trace timeline's allocated-pages/page-limit ratio
	// (1.0 once a bounded timeline's page budget is exhausted), or 0 when
	// the profiler wasn't run in trace mode.
	PageUsage float64 `json:"page_usage"`
}

// GraphRecord is one hashtable entry as it appears in a graph report.
type GraphRecord struct {
	ID               int     `json:"id"`
	Func             uint64  `json:"func"`
	Parent           uint64  `json:"parent"`
	ParentLine       int     `json:"parent_line"`
	Ignored          bool    `json:"ignored"`
	Name             string  `json:"name"`
	What             string  `json:"what"`
	Source           string  `json:"source"`
	Count            int64   `json:"count"`
	Time             int64   `json:"time"`
	TotalTime        int64   `json:"total_time"`
	Allocated        int64   `json:"allocated"`
	Deallocated      int64   `json:"deallocated"`
	TotalAllocated   int64   `json:"total_allocated"`
	TotalDeallocated int64   `json:"total_deallocated"`
	LineDefined      int     `json:"linedefined"`
	LastLineDefined  int     `json:"lastlinedefined"`
	Nups             int     `json:"nups"`
	IsVararg         bool    `json:"isvararg"`
	Lines            []int64 `json:"lines,omitempty"`

	// SharePercent is node-time as a percentage of total wall time,
	// computed with arbitrary-precision decimal arithmetic so large
	// sessions don't accumulate float rounding error across thousands of
	// records before the numbers are ever compared by a human.
	SharePercent string `json:"share_percent"`
}

// Graph is the full graph report.
type Graph struct {
	Header  GraphHeader   `json:"header"`
	Records []GraphRecord `json:"records"`
}

// BuildGraph reads p's hashtable and assembles the graph report shape.
// totalWallTime is the session's elapsed time in nanoseconds, used only
// for the human-facing SharePercent field.
func BuildGraph(p *profiler.Profiler, totalWallTime int64) Graph {
	opts := p.OptionsInUse()
	modes := p.ModesInUse()
	var pageUsage float64
	if tl := p.Timeline(); tl != nil {
		pageUsage = tl.PageUsage()
	}
	g := Graph{Header: GraphHeader{
		ClockUnit:       p.TimeUnit(),
		Instrument:      modes.Has(profiler.ModeInstrument),
		Memory:          modes.Has(profiler.ModeMemory),
		Lines:           opts.LineFreq,
		Sample:          modes.Has(profiler.ModeSample),
		ProfileOverhead: p.Overhead(),
		Calibration:     p.Calibration(),
		PageUsage:       pageUsage,
	}}

	ctx := decimal.Context{Precision: 34, RoundingMode: decimal.ToNearestEven}
	total := new(decimal.Big).SetUint64(uint64(totalWallTime))
	hundred := new(decimal.Big).SetUint64(100)

	p.Table().ForEach(func(r *record.Record) {
		share := "0"
		if totalWallTime > 0 {
			nodeTime := new(decimal.Big).SetUint64(uint64(max64(r.Node.Time, 0)))
			pct := new(decimal.Big)
			ctx.Quo(pct, nodeTime, total)
			ctx.Mul(pct, pct, hundred)
			share = pct.Round(4).String()
		}
		g.Header.SamplerCount += r.Count
		g.Records = append(g.Records, GraphRecord{
			ID:               r.ID,
			Func:             r.FuncID,
			Parent:           r.ParentID,
			ParentLine:       r.ParentLine,
			Ignored:          r.Info.Ignored,
			Name:             r.Info.Name,
			What:             r.Info.What,
			Source:           r.Info.Source,
			Count:            r.Count,
			Time:             r.Node.Time,
			TotalTime:        r.Path.Time,
			Allocated:        r.Node.Allocated,
			Deallocated:      r.Node.Deallocated,
			TotalAllocated:   r.Path.Allocated,
			TotalDeallocated: r.Path.Deallocated,
			LineDefined:      r.Info.LineDefined,
			LastLineDefined:  r.Info.LastLineDefined,
			Nups:             r.Info.Upvalues,
			IsVararg:         r.Info.IsVararg,
			Lines:            r.Lines,
			SharePercent:     share,
		})
	})
	return g
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// WriteGraph serializes g as JSON to w.
func WriteGraph(w io.Writer, g Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// TimelineEntry is one Chrome-tracing-style event.
type TimelineEntry struct {
	Cat  string         `json:"cat"`
	Name string         `json:"name"`
	Ph   string         `json:"ph"`
	Pid  int64          `json:"pid"`
	Tid  int64          `json:"tid"`
	Ts   int64          `json:"ts"`
	Dur  int64          `json:"dur,omitempty"`
	Args map[string]any `json:"args,omitempty"`
}

// BuildTimeline translates p's trace-event log into the ordered
// Chrome-tracing-like array described in spec §6. IgnoreScope events are
// skipped. Returns nil if the profiler was not run in trace mode.
func BuildTimeline(p *profiler.Profiler) []TimelineEntry {
	tl := p.Timeline()
	if tl == nil {
		return nil
	}
	opts := p.OptionsInUse()
	memoryMode := p.ModesInUse().Has(profiler.ModeMemory)

	var entries []TimelineEntry
	entries = append(entries,
		TimelineEntry{Cat: "__metadata", Name: "process_name", Ph: "M", Pid: opts.Process, Args: map[string]any{"name": p.Name(), "page_usage": tl.PageUsage()}},
		TimelineEntry{Cat: "__metadata", Name: "thread_name", Ph: "M", Pid: opts.Process, Tid: 1, Args: map[string]any{"name": "browser"}},
		TimelineEntry{Cat: "__metadata", Name: "thread_name", Ph: "M", Pid: opts.Process, Tid: 2, Args: map[string]any{"name": "sampler"}},
	)
	if opts.Tracing {
		entries = append(entries, TimelineEntry{Cat: "disabled-by-default-devtools.timeline", Name: "TracingStartedInPage", Ph: "I", Pid: opts.Process,
			Args: map[string]any{"data": map[string]any{"name": p.Name(), "url": opts.URL}}})
	}

	counterTick := 0
	tl.ForEach(func(_ timeline.Ref, ev *timeline.Event) {
		if ev.Kind == timeline.IgnoreScope {
			return
		}
		name := ev.DisplayName
		if ev.Info != nil {
			name = ev.Info.Name
		}
		switch ev.Kind {
		case timeline.ProcessMeta, timeline.ThreadMeta:
			return // not re-emitted; only the fixed process_name and browser/sampler thread_name entries above are written, none for the profiled thread
		case timeline.BeginFrame:
			entries = append(entries, TimelineEntry{Cat: "frame", Name: "Frame", Ph: "B", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time,
				Args: map[string]any{"frame": ev.FrameNumber}})
		case timeline.EndFrame:
			entries = append(entries, TimelineEntry{Cat: "frame", Name: "Frame", Ph: "E", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time})
		case timeline.BeginRoutine:
			entries = append(entries, TimelineEntry{Cat: "routine", Name: "Routine", Ph: "B", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time})
		case timeline.EndRoutine:
			entries = append(entries, TimelineEntry{Cat: "routine", Name: "Routine", Ph: "E", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time})
		case timeline.EnterScope:
			entries = append(entries, TimelineEntry{Cat: "function", Name: name, Ph: "B", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time})
		case timeline.ExitScope:
			entries = append(entries, TimelineEntry{Cat: "function", Name: name, Ph: "E", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time})
			counterTick++
			if memoryMode && opts.CounterFreq > 0 && counterTick%opts.CounterFreq == 0 {
				entries = append(entries, TimelineEntry{Cat: "memory", Name: "UpdateCounters", Ph: "I", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time,
					Args: map[string]any{"live_bytes": ev.Measurement.LiveBytes()}})
			}
		case timeline.LineScope:
			entries = append(entries, TimelineEntry{Cat: "line", Name: "line", Ph: "I", Pid: ev.Coord.Pid, Tid: ev.Coord.Tid, Ts: ev.Measurement.Time})
		case timeline.Sample:
			entries = append(entries, TimelineEntry{Cat: "sample", Name: "sample", Ph: "I", Pid: ev.Coord.Pid, Tid: 2, Ts: ev.Measurement.Time})
		}
	})
	return entries
}

// WriteTimeline serializes entries as a JSON array to w.
func WriteTimeline(w io.Writer, entries []TimelineEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
