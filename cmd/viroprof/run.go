package main

import (
	"fmt"
	"os"

	"github.com/marcin-radoszewski/viroprof/internal/config"
	"github.com/marcin-radoszewski/viroprof/internal/eval"
	"github.com/marcin-radoszewski/viroprof/internal/native"
	"github.com/marcin-radoszewski/viroprof/internal/parse"
	"github.com/marcin-radoszewski/viroprof/internal/profiler"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/perr"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/plog"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/report"
)

// run implements the programmatic `file(input, [path], modes...)`
// operation from the embedder's perspective: load, run under a fresh
// profiler, auto-stop, and report.
func run(cfg config.Config) error {
	src, err := os.ReadFile(cfg.Script)
	if err != nil {
		return err
	}

	vals, parseErr := parse.Parse(string(src))
	if parseErr != nil {
		return parseErr
	}

	ev := eval.NewEvaluator()
	root := ev.GetFrameByIndex(0)
	native.RegisterMathNatives(root)
	native.RegisterControlNatives(root)
	native.RegisterIONatives(root)
	ev.SetOutputWriter(os.Stdout)

	logger := plog.New(os.Stderr, cfg.Opts.Verbose)
	prof, err := profiler.New(cfg.Modes, cfg.Opts, logger)
	if err != nil {
		return err
	}
	prof.SetErrorCallback(func(e *perr.Error) {
		fmt.Fprintln(os.Stderr, "viroprof: capture error:", e.Error())
	})

	if err := prof.Start(ev); err != nil {
		return err
	}

	prof.BeginFrame()
	_, evalErr := ev.DoBlock(vals)
	prof.EndFrame()

	if err := prof.Stop(ev); err != nil {
		return err
	}
	if evalErr != nil {
		fmt.Fprintln(os.Stderr, "viroprof: script error:", evalErr)
	}

	return writeReport(cfg, prof)
}

func writeReport(cfg config.Config, prof *profiler.Profiler) error {
	out := os.Stdout
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	prof.SetIOSink(out)

	if cfg.Modes.Has(profiler.ModeTrace) {
		entries := report.BuildTimeline(prof)
		return report.WriteTimeline(out, entries)
	}
	g := report.BuildGraph(prof, prof.ElapsedWallTime())
	return report.WriteGraph(out, g)
}
