package value

import "testing"

func TestIntValueRoundTrip(t *testing.T) {
	v := IntVal(42)
	n, ok := AsInteger(v)
	if !ok || n != 42 {
		t.Fatalf("AsInteger() = (%d, %v), want (42, true)", n, ok)
	}
	if v.String() != "42" {
		t.Errorf("String() = %q, want %q", v.String(), "42")
	}
}

func TestLogicEquality(t *testing.T) {
	if !LogicVal(true).Equals(LogicVal(true)) {
		t.Error("LogicVal(true) should equal LogicVal(true)")
	}
	if LogicVal(true).Equals(LogicVal(false)) {
		t.Error("LogicVal(true) should not equal LogicVal(false)")
	}
}

func TestIsTruthy(t *testing.T) {
	if IsTruthy(NoneVal()) {
		t.Error("none should be falsy")
	}
	if IsTruthy(LogicVal(false)) {
		t.Error("false should be falsy")
	}
	if !IsTruthy(LogicVal(true)) {
		t.Error("true should be truthy")
	}
	if !IsTruthy(IntVal(0)) {
		t.Error("integer 0 should be truthy")
	}
	if !IsTruthy(StrVal("")) {
		t.Error("empty string should be truthy")
	}
}

func TestWordVariantsDistinctTypes(t *testing.T) {
	w := WordVal("foo")
	sw := SetWordVal("foo")
	if w.Equals(sw) {
		t.Error("word and set-word with same symbol must not be equal")
	}
	if w.String() != "foo" {
		t.Errorf("word String() = %q, want %q", w.String(), "foo")
	}
	if sw.String() != "foo:" {
		t.Errorf("set-word String() = %q, want %q", sw.String(), "foo:")
	}
}

func TestValidWordSymbol(t *testing.T) {
	cases := map[string]bool{
		"foo":    true,
		"foo-bar": true,
		"foo?":   true,
		"":       false,
		"1foo":   false,
	}
	for sym, want := range cases {
		if got := ValidWordSymbol(sym); got != want {
			t.Errorf("ValidWordSymbol(%q) = %v, want %v", sym, got, want)
		}
	}
}
