package profiler

import "github.com/marcin-radoszewski/viroprof/internal/profiler/pstack"

// ThreadHandle identifies a cooperative thread/coroutine the embedding
// language multiplexes onto its single OS thread. The host need only
// supply something comparable; viroprof's own embedding (internal/eval)
// has no coroutines, so it always reports the same handle and the
// registry holds exactly one entry.
type ThreadHandle any

// threadContext is the profiler's per-thread bookkeeping: its profile
// stack, display name, and last-observed position (for line/count dispatch
// and for detecting thread switches).
type threadContext struct {
	tid      int64
	name     string
	stack    *pstack.Stack
	lastFid  uint64
	lastLine int
}

// threadFor returns the context for handle, creating one (with a fresh
// tid and a stack of p.stackCapacity frames) on first sight.
func (p *Profiler) threadFor(handle ThreadHandle) *threadContext {
	if tc, ok := p.threads[handle]; ok {
		return tc
	}
	p.nextTid++
	tc := &threadContext{tid: p.nextTid, stack: pstack.New(p.stackCapacity)}
	p.threads[handle] = tc
	return tc
}

// SetThreadName labels handle's thread for report display.
func (p *Profiler) SetThreadName(handle ThreadHandle, name string) {
	p.threadFor(handle).name = name
}

// displayName returns the thread's display name, defaulting to "main" for
// tid 1 and "thread" for any other tid.
func (tc *threadContext) displayName() string {
	if tc.name != "" {
		return tc.name
	}
	if tc.tid == 1 {
		return "main"
	}
	return "thread"
}
