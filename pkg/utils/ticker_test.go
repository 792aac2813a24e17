package utils

import (
	"testing"
	"time"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"$TSLA", "TSLA"},
		{"GOOGL", "GOOG"},
		{"google", "GOOG"},
		{"FB", "META"},
		{"Facebook", "META"},
		{"BRK.B", "BRK.B"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeTicker(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidTicker(t *testing.T) {
	for _, ok := range []string{"AAPL", "BRK.B", "BF-B", "X"} {
		if !ValidTicker(ok) {
			t.Errorf("ValidTicker(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "aapl", "TOOLONGTICKER", "AA PL"} {
		if ValidTicker(bad) {
			t.Errorf("ValidTicker(%q) = true, want false", bad)
		}
	}
}

func TestValidateFiscalYear(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := ValidateFiscalYear(2023, now); err != nil {
		t.Errorf("2023: unexpected error %v", err)
	}
	if err := ValidateFiscalYear(2025, now); err != nil {
		t.Errorf("2025: unexpected error %v", err)
	}
	if err := ValidateFiscalYear(2026, now); err == nil {
		t.Error("2026: expected future-year error")
	}
	if err := ValidateFiscalYear(1980, now); err == nil {
		t.Error("1980: expected too-early error")
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "2024-01-02 03:04:05" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}
