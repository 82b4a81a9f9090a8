package verror

import (
	"strings"
	"testing"
)

func TestErrorHeader(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "syntax error",
			err:  NewSyntaxError(ErrIDInvalidSyntax, [3]string{"token", "", ""}),
			want: "Syntax error (200): Invalid syntax: token",
		},
		{
			name: "script error with two args",
			err:  NewScriptError(ErrIDArgCount, [3]string{"add", "2", "1"}),
			want: "Script error (300): Wrong argument count for 'add': expected 2, got 1",
		},
		{
			name: "math error",
			err:  NewMathError(ErrIDDivByZero, [3]string{"", "", ""}),
			want: "Math error (400): Division by zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			line := strings.SplitN(got, "\n", 2)[0]
			if line != tt.want {
				t.Fatalf("Error() header mismatch\nwant: %q\ngot: %q", tt.want, line)
			}
		})
	}
}

func TestErrorNearAndWhere(t *testing.T) {
	err := NewScriptError(ErrIDNoValue, [3]string{"foo", "", ""}).
		SetNear("a b >>foo<< c").
		SetWhere([]string{"inner", "outer"})

	got := err.Error()
	if !strings.Contains(got, "Near: a b >>foo<< c") {
		t.Fatalf("missing near context: %q", got)
	}
	if !strings.Contains(got, "Where: inner <- outer") {
		t.Fatalf("missing where context: %q", got)
	}
}

func TestToExitCode(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want int
	}{
		{ErrSyntax, 2},
		{ErrScript, 1},
		{ErrMath, 1},
		{ErrInternal, 70},
	}
	for _, tt := range tests {
		if got := ToExitCode(tt.cat); got != tt.want {
			t.Errorf("ToExitCode(%v) = %d, want %d", tt.cat, got, tt.want)
		}
	}
}

func TestUnknownIDFallsBackToTemplate(t *testing.T) {
	err := NewScriptError("totally-unknown-id", [3]string{"a", "b", "c"})
	if err.Message != "Error: a b c" {
		t.Fatalf("unexpected fallback message: %q", err.Message)
	}
}
