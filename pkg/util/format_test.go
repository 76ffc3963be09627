package util

import "testing"

func TestFormatMagnitudeBillions(t *testing.T) {
	if got := FormatMagnitude(1_230_000_000); got != "1.2B" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatMagnitudeMillions(t *testing.T) {
	if got := FormatMagnitude(24_000_000); got != "24M" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatMagnitudeThousands(t *testing.T) {
	if got := FormatMagnitude(530_500); got != "530.5K" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatMagnitudeSmall(t *testing.T) {
	if got := FormatMagnitude(12.5); got != "12.5" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNormalizeQuery(t *testing.T) {
	if got := NormalizeQuery("  btc "); got != "BTC" {
		t.Fatalf("unexpected %q", got)
	}
}
