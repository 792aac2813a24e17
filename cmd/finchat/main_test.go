package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seenimoa/finchat/pkg/models"
)

func TestParseRequest(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	req, err := parseRequest([]string{"googl", "2023", "Q1"})
	if err != nil {
		t.Fatalf("parseRequest: %v", err)
	}
	want := models.Request{Ticker: "GOOG", Year: 2023, Period: models.PeriodQ1}
	if req != want {
		t.Errorf("got %+v, want %+v", req, want)
	}

	bad := [][]string{
		{"not a ticker", "2023", "q1"},
		{"AAPL", "twenty", "q1"},
		{"AAPL", "1900", "q1"},
		{"AAPL", "2030", "q1"},
		{"AAPL", "2023", "q7"},
	}
	for _, args := range bad {
		if _, err := parseRequest(args); err == nil {
			t.Errorf("parseRequest(%q) should fail", args)
		}
	}
}

func TestReportPath(t *testing.T) {
	req := models.Request{Ticker: "AAPL", Year: 2023, Period: models.PeriodQ1}
	dir := t.TempDir()

	if got := reportPath(filepath.Join(dir, "out.html"), req); got != filepath.Join(dir, "out.html") {
		t.Errorf("file path should be kept, got %q", got)
	}
	if got := reportPath(dir, req); got != filepath.Join(dir, "AAPL_2023_q1.md") {
		t.Errorf("existing directory: got %q", got)
	}
	newDir := filepath.Join(dir, "reports") + string(os.PathSeparator)
	if got := reportPath(newDir, req); got != filepath.Join(dir, "reports", "AAPL_2023_q1.md") {
		t.Errorf("trailing separator: got %q", got)
	}
}
