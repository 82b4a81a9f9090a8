package profiler

import "fmt"

// Options holds the tuning knobs from spec §6's option-key table. Zero
// values are the profiler's defaults except where noted.
type Options struct {
	DisableGC   bool
	ReinitClock bool
	Micro       bool
	Instructions int // count-mode instruction mask; 0 = host default
	LoadStack   bool
	Mismatch    bool // tolerate stack mismatch at stop instead of raising
	Verbose     bool
	LineFreq    bool
	HashSize    int // bucket count, clamped to ≤1031
	CounterFreq int // emit UpdateCounters every Nth scope boundary
	IgnoreYield bool
	Process     int64
	URL         string
	Name        string
	DrawFrame   bool
	Split       bool
	Tracing     bool
	PageLimit   int   // 0 = unbounded
	Compress    bool
	Threshold   int64 // nanoseconds, clamped to ≤1048576
}

// defaultOptions is the package-level option set new profilers start from
// when a caller builds on DefaultOptions(). SetOption/GetOption implement
// spec §6's Programmatic Surface `set_option(k, v)`/`get_option(k)` pair
// against this shared baseline, mirroring a host where option state lives
// globally rather than being threaded through every create() call.
var defaultOptions = Options{
	HashSize:    251,
	CounterFreq: 1,
	Process:     1,
	PageLimit:   0,
	Threshold:   1000,
}

// DefaultOptions returns a copy of the profiler's built-in defaults, as
// last adjusted by SetOption.
func DefaultOptions() Options {
	return defaultOptions
}

// SetOption mutates the package-level default option set by key, in the
// same names the CLI flags use. Returns an error for an unknown key or a
// value of the wrong type.
func SetOption(key string, value any) error {
	switch key {
	case "disable_gc":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.DisableGC = v
	case "reinit_clock":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.ReinitClock = v
	case "micro":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.Micro = v
	case "instructions":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("profiler: option %q wants an int", key)
		}
		defaultOptions.Instructions = v
	case "load_stack":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.LoadStack = v
	case "mismatch":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.Mismatch = v
	case "verbose":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.Verbose = v
	case "line_freq":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.LineFreq = v
	case "hash_size":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("profiler: option %q wants an int", key)
		}
		defaultOptions.HashSize = v
	case "counter_freq":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("profiler: option %q wants an int", key)
		}
		defaultOptions.CounterFreq = v
	case "ignore_yield":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.IgnoreYield = v
	case "process":
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("profiler: option %q wants an int64", key)
		}
		defaultOptions.Process = v
	case "url":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a string", key)
		}
		defaultOptions.URL = v
	case "name":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a string", key)
		}
		defaultOptions.Name = v
	case "draw_frame":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.DrawFrame = v
	case "split":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.Split = v
	case "tracing":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.Tracing = v
	case "page_limit":
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("profiler: option %q wants an int", key)
		}
		defaultOptions.PageLimit = v
	case "compress":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("profiler: option %q wants a bool", key)
		}
		defaultOptions.Compress = v
	case "threshold":
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("profiler: option %q wants an int64", key)
		}
		defaultOptions.Threshold = v
	default:
		return fmt.Errorf("profiler: unknown option %q", key)
	}
	return nil
}

// GetOption reads a key out of the package-level default option set.
// Returns ok=false for an unknown key.
func GetOption(key string) (value any, ok bool) {
	o := defaultOptions
	switch key {
	case "disable_gc":
		return o.DisableGC, true
	case "reinit_clock":
		return o.ReinitClock, true
	case "micro":
		return o.Micro, true
	case "instructions":
		return o.Instructions, true
	case "load_stack":
		return o.LoadStack, true
	case "mismatch":
		return o.Mismatch, true
	case "verbose":
		return o.Verbose, true
	case "line_freq":
		return o.LineFreq, true
	case "hash_size":
		return o.HashSize, true
	case "counter_freq":
		return o.CounterFreq, true
	case "ignore_yield":
		return o.IgnoreYield, true
	case "process":
		return o.Process, true
	case "url":
		return o.URL, true
	case "name":
		return o.Name, true
	case "draw_frame":
		return o.DrawFrame, true
	case "split":
		return o.Split, true
	case "tracing":
		return o.Tracing, true
	case "page_limit":
		return o.PageLimit, true
	case "compress":
		return o.Compress, true
	case "threshold":
		return o.Threshold, true
	default:
		return nil, false
	}
}

// Normalize clamps option values into their documented ranges.
func (o Options) Normalize() Options {
	if o.HashSize <= 0 {
		o.HashSize = 251
	}
	if o.HashSize > 1031 {
		o.HashSize = 1031
	}
	if o.Threshold > 1048576 {
		o.Threshold = 1048576
	}
	if o.Process == 0 {
		o.Process = 1
	}
	if o.CounterFreq <= 0 {
		o.CounterFreq = 1
	}
	return o
}
