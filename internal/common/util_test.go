package common

import (
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Fatalf("two 256-bit random strings are identical: %s", a)
	}
}

func TestIsHexString(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want bool
	}{
		{"00ff", 4, true},
		{"00ff", 6, false},
		{"00FF", 4, false},
		{"zz11", 4, false},
		{"", 0, true},
	}
	for _, tt := range tests {
		if got := IsHexString(tt.in, tt.n); got != tt.want {
			t.Fatalf("IsHexString(%q, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
		}
	}
}
