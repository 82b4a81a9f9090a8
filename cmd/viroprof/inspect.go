package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/marcin-radoszewski/viroprof/internal/eval"
	"github.com/marcin-radoszewski/viroprof/internal/native"
	"github.com/marcin-radoszewski/viroprof/internal/parse"
	"github.com/marcin-radoszewski/viroprof/internal/profiler"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/plog"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/report"
)

// runInspect drops into a line-edited REPL that runs each entered
// expression under a profiler started fresh for that single line, printing
// the resulting per-call node/path times. Useful for poking at a function
// without writing a whole script + profile() wrapper.
func runInspect() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "viroprof> ",
		HistoryFile: historyPath(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "viroprof: inspect:", err)
		os.Exit(1)
	}
	defer rl.Close()

	ev := eval.NewEvaluator()
	root := ev.GetFrameByIndex(0)
	native.RegisterMathNatives(root)
	native.RegisterControlNatives(root)
	native.RegisterIONatives(root)
	ev.SetOutputWriter(os.Stdout)

	logger := plog.New(io.Discard, false)

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		inspectLine(ev, logger, line)
	}
}

func inspectLine(ev *eval.Evaluator, logger zerolog.Logger, line string) {
	vals, parseErr := parse.Parse(line)
	if parseErr != nil {
		fmt.Println("parse error:", parseErr)
		return
	}

	modes, _ := profiler.ParseModes("instrument", "single_thread")
	opts := profiler.DefaultOptions()
	prof, err := profiler.New(modes, opts, logger)
	if err != nil {
		fmt.Println("profiler error:", err)
		return
	}
	if err := prof.Start(ev); err != nil {
		fmt.Println("profiler error:", err)
		return
	}

	result, evalErr := ev.DoBlock(vals)
	if err := prof.Stop(ev); err != nil {
		fmt.Println("profiler error:", err)
	}
	if evalErr != nil {
		fmt.Println("error:", evalErr)
		return
	}
	fmt.Println("=>", result.String())

	g := report.BuildGraph(prof, prof.ElapsedWallTime())
	for _, rec := range g.Records {
		if rec.Count == 0 {
			continue
		}
		fmt.Printf("  %-16s count=%-4d self=%dns total=%dns\n", rec.Name, rec.Count, rec.Time, rec.TotalTime)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".viroprof_history"
	}
	return home + "/.viroprof_history"
}
