// Package measure implements the profiler's clock and measurement-unit
// arithmetic: monotonic time sampling and the (time, allocated,
// deallocated) triple that every activation record and stack frame
// accumulates.
package measure

import "time"

// Unit is a measurement triple: elapsed monotonic time in nanoseconds, and
// cumulative bytes allocated/deallocated. It is closed under componentwise
// add/subtract. The Go fields are signed: a frame's starting snapshot can
// hold negative allocation counters, because allocation deltas are offset
// into it.
type Unit struct {
	Time         int64
	Allocated    int64
	Deallocated  int64
}

// Add returns a+b componentwise.
func Add(a, b Unit) Unit {
	return Unit{
		Time:        a.Time + b.Time,
		Allocated:   a.Allocated + b.Allocated,
		Deallocated: a.Deallocated + b.Deallocated,
	}
}

// Sub returns a-b componentwise.
func Sub(a, b Unit) Unit {
	return Unit{
		Time:        a.Time - b.Time,
		Allocated:   a.Allocated - b.Allocated,
		Deallocated: a.Deallocated - b.Deallocated,
	}
}

// LiveBytes clamps allocated-deallocated to zero: a net-negative live count
// only happens at a measurement boundary artifact, never in reality.
func (u Unit) LiveBytes() int64 {
	live := u.Allocated - u.Deallocated
	if live < 0 {
		return 0
	}
	return live
}

// Clock samples monotonic time. The default backend wraps time.Now(); a
// cycle-counter backend can be substituted by implementing the same
// interface, per spec: only one unit label is reported per session.
type Clock interface {
	Sample() int64
	Label() string
}

type nanoClock struct{ start time.Time }

// NewNanoClock returns a Clock backed by the OS monotonic clock, reporting
// nanoseconds since the clock was created.
func NewNanoClock() Clock {
	return &nanoClock{start: time.Now()}
}

func (c *nanoClock) Sample() int64  { return time.Since(c.start).Nanoseconds() }
func (c *nanoClock) Label() string  { return "ns" }

// Diff returns |a-b|, handling the (practically unreachable with a
// monotonic Go clock) case of apparent wraparound.
func Diff(a, b int64) int64 {
	if a >= b {
		return a - b
	}
	return b - a
}

// Calibrate measures the fixed per-hook overhead this process incurs by
// running a tight loop of empty clock samples and averaging the per-sample
// cost. Profiler.Start does not call it: the profiler measures its own
// calibration constant with a separate loop (measureCalibration).
func Calibrate(clock Clock, iterations int) int64 {
	if iterations <= 0 {
		iterations = 10000
	}
	start := clock.Sample()
	for i := 0; i < iterations; i++ {
		_ = clock.Sample()
	}
	end := clock.Sample()
	total := Diff(end, start)
	return total / int64(iterations)
}
