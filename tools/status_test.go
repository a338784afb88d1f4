package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/stylecache-mcp/ignore"
	"github.com/lexandro/stylecache-mcp/index"
	"github.com/lexandro/stylecache-mcp/pass"
)

// --- formatDuration ---

func Test_FormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"Seconds_zero", 0, "0s"},
		{"Seconds_30", 30 * time.Second, "30s"},
		{"Minutes_1m0s", 60 * time.Second, "1m0s"},
		{"Minutes_5m30s", 5*time.Minute + 30*time.Second, "5m30s"},
		{"Hours_1h30m", 90 * time.Minute, "1h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.expected {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

// --- StatusHandler ---

func newTestStatusHandler(t *testing.T) *StatusHandler {
	t.Helper()
	ci, err := index.NewCSSIndex()
	if err != nil {
		t.Fatalf("failed to create css index: %v", err)
	}
	t.Cleanup(func() { ci.Close() })

	return &StatusHandler{
		Store:     index.NewStore(),
		CSSIndex:  ci,
		StartTime: time.Now(),
		RootDir:   "/srv/app/styles",
		Logger:    testLogger(),
	}
}

func Test_StatusHandler_Handle(t *testing.T) {
	h := newTestStatusHandler(t)

	entries := []*index.Entry{
		newTestEntry("base", ".a{}"),
		index.NewEntry("reset.css", "/srv/app/styles/reset.css", "reset.css", "CSS", ".r{}"),
	}
	h.Store.Replace(entries)
	h.CSSIndex.Replace(entries)
	h.LastResult = func() (pass.Result, bool) {
		return pass.Result{
			Root:       "/srv/app/styles",
			Tier:       ignore.TierFullWalk,
			Candidates: 3,
			Eligible:   2,
			Compiled:   2,
			FinishedAt: time.Now(),
		}, true
	}

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	text := resultText(t, result)
	checks := []string{
		"stylecache-mcp Status",
		"/srv/app/styles",
		"Cached stylesheets: 2",
		"Search-indexed stylesheets: 2",
		"Discovery: full-walk, 3 candidates, 2 eligible",
		"Snapshot generation: 1",
		"Snapshot installed: 0s ago",
		"SCSS",
		"CSS",
	}
	for _, check := range checks {
		if !strings.Contains(text, check) {
			t.Errorf("expected output to contain %q, got:\n%s", check, text)
		}
	}
}

func Test_StatusHandler_BeforeFirstPass(t *testing.T) {
	h := newTestStatusHandler(t)
	h.LastResult = func() (pass.Result, bool) { return pass.Result{}, false }

	result, _, _ := h.Handle(context.Background(), nil, StatusArgs{})
	text := resultText(t, result)
	if strings.Contains(text, "Last pass") {
		t.Errorf("expected no last-pass section, got:\n%s", text)
	}
	if !strings.Contains(text, "Cached stylesheets: 0") {
		t.Errorf("expected empty cache, got:\n%s", text)
	}
	if !strings.Contains(text, "Snapshot installed: never") {
		t.Errorf("expected no installed snapshot, got:\n%s", text)
	}
}
