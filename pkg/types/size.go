package types

import (
	"fmt"
	"strings"

	units "github.com/docker/go-units"
)

// ParseSize converts a human-readable size string ("5.5MB", "1.2 GB", "0B")
// to bytes using binary units (1KB = 1024B, matching docker CLI output).
// A string that does not match the unit pattern is an error, never zero.
func ParseSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size string")
	}
	n, err := units.RAMInBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("unparseable size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return n, nil
}

// FormatSize renders bytes as a human-readable binary-unit string.
func FormatSize(n int64) string {
	return units.BytesSize(float64(n))
}
