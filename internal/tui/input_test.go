package tui

import (
	"strings"
	"testing"
)

func TestEditRune(t *testing.T) {
	tests := []struct {
		name string
		text string
		key  string
		want string
	}{
		{"append letter", "lewi", "s", "lewis"},
		{"backspace", "lewis", "backspace", "lewi"},
		{"backspace empty", "", "backspace", ""},
		{"ignores named keys", "lewis", "enter", "lewis"},
		{"ignores arrows", "lewis", "left", "lewis"},
		{"multibyte rune", "p", "é", "pé"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.text, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.text, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneClampsLength(t *testing.T) {
	text := strings.Repeat("a", maxInputLen)
	if got := editRune(text, "b"); got != text {
		t.Errorf("expected input clamped at %d runes", maxInputLen)
	}
}

func TestEditDigits(t *testing.T) {
	tests := []struct {
		text string
		key  string
		want string
	}{
		{"4", "4", "44"},
		{"4", "a", "4"},
		{"44", "backspace", "4"},
		{"", "0", "0"},
	}
	for _, tc := range tests {
		if got := editDigits(tc.text, tc.key); got != tc.want {
			t.Errorf("editDigits(%q, %q) = %q, want %q", tc.text, tc.key, got, tc.want)
		}
	}
}

func TestEditPrice(t *testing.T) {
	tests := []struct {
		text string
		key  string
		want string
	}{
		{"12", ".", "12."},
		{"12.5", ".", "12.5"},
		{"12", "x", "12"},
		{"12.50", "backspace", "12.5"},
	}
	for _, tc := range tests {
		if got := editPrice(tc.text, tc.key); got != tc.want {
			t.Errorf("editPrice(%q, %q) = %q, want %q", tc.text, tc.key, got, tc.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"3", 3},
		{"12", 12},
		{"junk", 1},
	}
	for _, tc := range tests {
		if got := parseQuantity(tc.text); got != tc.want {
			t.Errorf("parseQuantity(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	if got := parsePrice(""); got != nil {
		t.Errorf("expected nil for empty price, got %v", *got)
	}
	got := parsePrice("249.99")
	if got == nil || *got != 249.99 {
		t.Errorf("parsePrice(\"249.99\") = %v, want 249.99", got)
	}
}

func TestMaskValue(t *testing.T) {
	if got := maskValue("secret"); got != "••••••" {
		t.Errorf("maskValue = %q, want six bullets", got)
	}
	if got := maskValue(""); got != "" {
		t.Errorf("maskValue(\"\") = %q, want empty", got)
	}
}
