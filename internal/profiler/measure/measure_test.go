package measure

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	a := Unit{Time: 10, Allocated: 100, Deallocated: 20}
	b := Unit{Time: 5, Allocated: 40, Deallocated: 10}

	sum := Add(a, b)
	back := Sub(sum, b)
	if back != a {
		t.Fatalf("Sub(Add(a,b),b) = %+v, want %+v", back, a)
	}
}

func TestLiveBytesClampsToZero(t *testing.T) {
	u := Unit{Allocated: 10, Deallocated: 50}
	if got := u.LiveBytes(); got != 0 {
		t.Errorf("LiveBytes() = %d, want 0", got)
	}
	u2 := Unit{Allocated: 100, Deallocated: 40}
	if got := u2.LiveBytes(); got != 60 {
		t.Errorf("LiveBytes() = %d, want 60", got)
	}
}

type fakeClock struct{ t int64 }

func (c *fakeClock) Sample() int64 { c.t++; return c.t }
func (c *fakeClock) Label() string { return "fake" }

func TestDiffHandlesWraparoundAsAbsolute(t *testing.T) {
	if got := Diff(5, 10); got != 5 {
		t.Errorf("Diff(5,10) = %d, want 5", got)
	}
	if got := Diff(10, 5); got != 5 {
		t.Errorf("Diff(10,5) = %d, want 5", got)
	}
}

func TestCalibrateReturnsNonNegative(t *testing.T) {
	c := &fakeClock{}
	got := Calibrate(c, 100)
	if got < 0 {
		t.Errorf("Calibrate() = %d, want >= 0", got)
	}
}
