package profiler

import "testing"

func TestParseModesCombinesBits(t *testing.T) {
	m, err := ParseModes("instrument", "memory")
	if err != nil {
		t.Fatalf("ParseModes: %v", err)
	}
	if !m.Has(ModeInstrument) || !m.Has(ModeMemory) {
		t.Errorf("m = %v, want instrument|memory", m)
	}
}

func TestParseModesRejectsUnknown(t *testing.T) {
	if _, err := ParseModes("bogus"); err == nil {
		t.Fatal("expected error for unknown mode name")
	}
}

func TestParseModesTimeIsExclusive(t *testing.T) {
	if _, err := ParseModes("time", "memory"); err == nil {
		t.Fatal("expected error combining time with another mode")
	}
	if _, err := ParseModes("time"); err != nil {
		t.Fatalf("time alone should be valid: %v", err)
	}
}

func TestParseModesTraceSampleRequiresSingleThread(t *testing.T) {
	if _, err := ParseModes("trace", "sample"); err == nil {
		t.Fatal("expected error: trace+sample without single_thread")
	}
	if _, err := ParseModes("trace", "sample", "single_thread"); err != nil {
		t.Fatalf("trace+sample+single_thread should be valid: %v", err)
	}
}

func TestParseModesSampleWithoutInstrumentForbidsMemoryAndLines(t *testing.T) {
	if _, err := ParseModes("sample", "memory"); err == nil {
		t.Fatal("expected error: sample+memory without instrument")
	}
	if _, err := ParseModes("sample", "lines"); err == nil {
		t.Fatal("expected error: sample+lines without instrument")
	}
	if _, err := ParseModes("sample", "instrument", "memory"); err != nil {
		t.Fatalf("sample+instrument+memory should be valid: %v", err)
	}
}
