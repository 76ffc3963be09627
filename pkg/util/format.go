package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// FormatMagnitude renders a raw quantity as a short human string: 1234 ->
// "1.2K", 24_000_000 -> "24M", 1_230_000_000 -> "1.2B". Values under a
// thousand keep at most two decimals.
func FormatMagnitude(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return trimZeros(fmt.Sprintf("%.1f", v/1e9)) + "B"
	case abs >= 1e6:
		return trimZeros(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case abs >= 1e3:
		return trimZeros(fmt.Sprintf("%.1f", v/1e3)) + "K"
	default:
		return trimZeros(fmt.Sprintf("%.2f", v))
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// NormalizeQuery canonicalizes a search term for cache keys and matching.
func NormalizeQuery(q string) string {
	return strings.ToUpper(strings.TrimSpace(q))
}
