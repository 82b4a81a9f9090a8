package profiler

import (
	"fmt"
	"strings"
)

// Modes is the bitset of capture modes selected at Create/Start, per
// spec §6's mode-string table.
type Modes uint16

const (
	ModeTime Modes = 1 << iota
	ModeInstrument
	ModeMemory
	ModeTrace
	ModeLines
	ModeSample
	ModeSingleThread
)

func (m Modes) Has(bit Modes) bool { return m&bit != 0 }

var modeNames = map[string]Modes{
	"time":          ModeTime,
	"instrument":    ModeInstrument,
	"memory":        ModeMemory,
	"trace":         ModeTrace,
	"lines":         ModeLines,
	"sample":        ModeSample,
	"single_thread": ModeSingleThread,
}

// ParseModes validates and combines mode strings per spec §6's
// constraints: time is mutually exclusive with every other mode;
// trace∧sample requires single_thread; sample without instrument forbids
// memory and lines.
func ParseModes(names ...string) (Modes, error) {
	var m Modes
	for _, n := range names {
		bit, ok := modeNames[strings.TrimSpace(n)]
		if !ok {
			return 0, fmt.Errorf("profiler: unknown mode %q", n)
		}
		m |= bit
	}
	if m.Has(ModeTime) && m != ModeTime {
		return 0, fmt.Errorf("profiler: mode %q is mutually exclusive with every other mode", "time")
	}
	if m.Has(ModeTrace) && m.Has(ModeSample) && !m.Has(ModeSingleThread) {
		return 0, fmt.Errorf("profiler: trace+sample requires single_thread")
	}
	if m.Has(ModeSample) && !m.Has(ModeInstrument) {
		if m.Has(ModeMemory) {
			return 0, fmt.Errorf("profiler: sample without instrument forbids memory")
		}
		if m.Has(ModeLines) {
			return 0, fmt.Errorf("profiler: sample without instrument forbids lines")
		}
	}
	return m, nil
}

func (m Modes) String() string {
	var parts []string
	for name, bit := range modeNames {
		if m.Has(bit) {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "|")
}
