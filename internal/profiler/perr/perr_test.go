package perr

import "testing"

func TestErrorFormatsCategoryAndMessage(t *testing.T) {
	err := Capturef(CodeStackOverflow, "stack depth %d exceeded", 1024)
	want := "profiler: capture: stack depth 1024 exceeded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestToExitCodeMapsEveryCategory(t *testing.T) {
	cases := map[Category]int{
		ConfigError:        2,
		RegistrationError:  2,
		CaptureError:       70,
		ConsistencyError:   70,
		IoError:            74,
		Category(0):        1,
	}
	for cat, want := range cases {
		if got := ToExitCode(cat); got != want {
			t.Errorf("ToExitCode(%v) = %d, want %d", cat, got, want)
		}
	}
}
