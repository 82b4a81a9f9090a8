// Package config parses the viroprof CLI's flags into a profiler.Modes
// bitset and a profiler.Options value, using the standard library's flag
// package the way the host interpreter's own CLI does.
package config

import (
	"flag"
	"strings"

	"github.com/marcin-radoszewski/viroprof/internal/profiler"
)

// Config is the fully parsed command line.
type Config struct {
	Script  string
	OutPath string
	Modes   profiler.Modes
	Opts    profiler.Options
}

// Parse parses args (excluding argv[0]) into a Config.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("viroprof", flag.ContinueOnError)

	modesFlag := fs.String("modes", "instrument,single_thread", "comma-separated capture modes")
	outPath := fs.String("out", "", "write the report to this path instead of stdout")

	disableGC := fs.Bool("disable_gc", false, "stop the host GC for the session (no-op on a GC-less host)")
	reinitClock := fs.Bool("reinit_clock", false, "reset the clock at session start")
	micro := fs.Bool("micro", false, "prefer a finer clock resolution if available")
	instructions := fs.Int("instructions", 0, "instruction-count mask for count-mode hooks")
	loadStack := fs.Bool("load_stack", false, "seed the profile stack from the host's current call stack")
	mismatch := fs.Bool("mismatch", false, "tolerate stack mismatch at stop instead of raising")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	lineFreq := fs.Bool("line_freq", false, "record per-line frequency vectors")
	hashSize := fs.Int("hash_size", 251, "activation-record hashtable bucket count (<=1031)")
	counterFreq := fs.Int("counter_freq", 1, "emit UpdateCounters every Nth scope boundary")
	ignoreYield := fs.Bool("ignore_yield", false, "do not treat coroutine yield as a thread switch")
	process := fs.Int64("process", 1, "logical process id reported in the output")
	url := fs.String("url", "", "url recorded in timeline TracingStarted metadata")
	name := fs.String("name", "viroprof", "session display name")
	drawFrame := fs.Bool("draw_frame", false, "inject synthetic frame boundaries")
	split := fs.Bool("split", false, "split output across multiple files")
	tracing := fs.Bool("tracing", false, "emit a TracingStarted metadata record")
	pageLimit := fs.Int("page_limit", 0, "timeline page budget (0 = unbounded)")
	compress := fs.Bool("compress", true, "run the timeline compression pass")
	threshold := fs.Int64("threshold", 1000, "compression threshold in nanoseconds (<=1048576)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var names []string
	for _, n := range strings.Split(*modesFlag, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	modes, err := profiler.ParseModes(names...)
	if err != nil {
		return Config{}, err
	}

	opts := profiler.Options{
		DisableGC:    *disableGC,
		ReinitClock:  *reinitClock,
		Micro:        *micro,
		Instructions: *instructions,
		LoadStack:    *loadStack,
		Mismatch:     *mismatch,
		Verbose:      *verbose,
		LineFreq:     *lineFreq,
		HashSize:     *hashSize,
		CounterFreq:  *counterFreq,
		IgnoreYield:  *ignoreYield,
		Process:      *process,
		URL:          *url,
		Name:         *name,
		DrawFrame:    *drawFrame,
		Split:        *split,
		Tracing:      *tracing,
		PageLimit:    *pageLimit,
		Compress:     *compress,
		Threshold:    *threshold,
	}.Normalize()

	cfg := Config{Modes: modes, Opts: opts, OutPath: *outPath}
	if fs.NArg() > 0 {
		cfg.Script = fs.Arg(0)
	}
	return cfg, nil
}
