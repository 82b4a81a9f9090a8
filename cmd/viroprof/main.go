// Command viroprof runs a Viro script under the profiler and emits a
// graph or timeline report.
package main

import (
	"fmt"
	"os"

	"github.com/marcin-radoszewski/viroprof/internal/config"
	"github.com/marcin-radoszewski/viroprof/internal/profiler/perr"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "viroprof:", err)
		os.Exit(2)
	}

	if cfg.Script == "inspect" {
		runInspect()
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "viroprof:", err)
		if pe, ok := err.(*perr.Error); ok {
			os.Exit(perr.ToExitCode(pe.Category))
		}
		os.Exit(1)
	}
}
