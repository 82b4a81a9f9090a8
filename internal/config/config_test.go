package config

import (
	"testing"

	"github.com/marcin-radoszewski/viroprof/internal/profiler"
)

func TestParseSeparatesOutPathFromScriptArgument(t *testing.T) {
	cfg, err := Parse([]string{"-out", "report.json", "script.viro"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.OutPath != "report.json" {
		t.Errorf("OutPath = %q, want %q", cfg.OutPath, "report.json")
	}
	if cfg.Script != "script.viro" {
		t.Errorf("Script = %q, want %q", cfg.Script, "script.viro")
	}
}

func TestParseDefaultsToInstrumentSingleThread(t *testing.T) {
	cfg, err := Parse([]string{"script.viro"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Modes.Has(profiler.ModeInstrument) || !cfg.Modes.Has(profiler.ModeSingleThread) {
		t.Errorf("Modes = %v, want instrument|single_thread", cfg.Modes)
	}
}

func TestParseRejectsInvalidModeCombination(t *testing.T) {
	if _, err := Parse([]string{"-modes", "time,memory", "script.viro"}); err == nil {
		t.Fatal("expected an error for an invalid mode combination")
	}
}

func TestParseNormalizesOptions(t *testing.T) {
	cfg, err := Parse([]string{"-hash_size", "5000", "-threshold", "99999999", "script.viro"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Opts.HashSize != 1031 {
		t.Errorf("HashSize = %d, want clamped to 1031", cfg.Opts.HashSize)
	}
	if cfg.Opts.Threshold != 1048576 {
		t.Errorf("Threshold = %d, want clamped to 1048576", cfg.Opts.Threshold)
	}
}

func TestParseWithNoScriptArgumentLeavesScriptEmpty(t *testing.T) {
	cfg, err := Parse([]string{"-verbose"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Script != "" {
		t.Errorf("Script = %q, want empty", cfg.Script)
	}
}
