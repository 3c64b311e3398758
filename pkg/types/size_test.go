package types

import (
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0B", 0},
		{"512B", 512},
		{"1KB", 1024},
		{"5.5MB", 5767168},
		{"500MB", 500 * 1024 * 1024},
		{"1.2GB", 1288490188},
		{" 10 MB ", 10 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if err != nil {
			t.Fatalf("ParseSize(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseSize_Malformed(t *testing.T) {
	// A size that does not match the unit pattern is an error, never a
	// silent zero.
	for _, input := range []string{"", "  ", "abc", "12 parsecs", "MB"} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) expected error, got nil", input)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(600 * 1024 * 1024); !strings.Contains(got, "600") {
		t.Errorf("FormatSize(600MiB) = %q, want it to contain 600", got)
	}
	if got := FormatSize(0); got == "" {
		t.Error("FormatSize(0) returned empty string")
	}
}
