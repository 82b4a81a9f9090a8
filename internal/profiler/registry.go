package profiler

// singleton tracks the one active profiler for this process, mirroring
// the host-interpreter registry lookup design note: a hook dispatch must
// be able to detect "the profiler went away under me" (e.g. because a new
// coroutine inherited a stale hook after teardown) without relying on a
// hidden static global baked into the hook itself.
var singleton *Profiler

func current() *Profiler { return singleton }

func register(p *Profiler) { singleton = p }

func unregister(p *Profiler) {
	if singleton == p {
		singleton = nil
	}
}
