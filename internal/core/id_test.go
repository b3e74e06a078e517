package core

import "testing"

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 24 || len(b) != 24 {
		t.Fatalf("expected 24-char ids, got %q and %q", a, b)
	}
	if a == b {
		t.Fatalf("expected distinct ids")
	}
	if !ValidID(a) {
		t.Fatalf("generated id should validate: %q", a)
	}
}

func TestValidID(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"5f1d7a2b3c4d5e6f70819203", true},
		{"5F1D7A2B3C4D5E6F70819203", true},
		{"short", false},
		{"", false},
		{"5f1d7a2b3c4d5e6f7081920g", false}, // non-hex
		{"5f1d7a2b3c4d5e6f708192031", false},
	}
	for _, tc := range cases {
		if got := ValidID(tc.in); got != tc.ok {
			t.Fatalf("ValidID(%q) = %v, want %v", tc.in, got, tc.ok)
		}
	}
}
