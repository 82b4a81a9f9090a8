package profiler

import "testing"

func TestNormalizeClampsHashSize(t *testing.T) {
	if got := (Options{HashSize: 0}).Normalize().HashSize; got != 251 {
		t.Errorf("HashSize=0 normalized to %d, want 251", got)
	}
	if got := (Options{HashSize: 5000}).Normalize().HashSize; got != 1031 {
		t.Errorf("HashSize=5000 normalized to %d, want 1031", got)
	}
}

func TestNormalizeClampsThreshold(t *testing.T) {
	if got := (Options{Threshold: 9999999}).Normalize().Threshold; got != 1048576 {
		t.Errorf("Threshold normalized to %d, want 1048576", got)
	}
}

func TestNormalizeDefaultsProcessAndCounterFreq(t *testing.T) {
	o := Options{}.Normalize()
	if o.Process != 1 {
		t.Errorf("Process = %d, want 1", o.Process)
	}
	if o.CounterFreq != 1 {
		t.Errorf("CounterFreq = %d, want 1", o.CounterFreq)
	}
}
