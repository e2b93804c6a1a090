package layout

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
)

func TestGetLayoutStrategy(t *testing.T) {
	tests := []struct {
		name        string
		layoutStyle int
		wantName    string
	}{
		{name: "full_style", layoutStyle: StyleFull, wantName: "Full Dashboard"},
		{name: "compact_style", layoutStyle: StyleCompact, wantName: "Compact"},
		{name: "unknown_style_defaults_to_full", layoutStyle: 99, wantName: "Full Dashboard"},
		{name: "negative_style_defaults_to_full", layoutStyle: -1, wantName: "Full Dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := GetLayoutStrategy(tt.layoutStyle)
			if strategy == nil {
				t.Fatal("GetLayoutStrategy returned nil")
			}
			if strategy.GetName() != tt.wantName {
				t.Errorf("GetName() = %q, want %q", strategy.GetName(), tt.wantName)
			}
		})
	}
}

func TestNextStyle(t *testing.T) {
	if NextStyle(StyleFull) != StyleCompact {
		t.Error("expected compact after full")
	}
	if NextStyle(StyleCompact) != StyleFull {
		t.Error("expected full after compact")
	}
}

func testView(n int) View {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	records := make([]model.LogRecord, n)
	for i := range records {
		level := model.LevelInfo
		if i%3 == 0 {
			level = model.LevelError
		}
		records[i] = model.LogRecord{
			Timestamp: now.Add(-time.Duration(i) * time.Second),
			Level:     level,
			Module:    "scraper",
			Message:   strings.Repeat("payload ", 30),
		}
	}
	return View{
		Poll: poller.Snapshot{
			State:    poller.Running,
			Filter:   model.Filter{Level: model.FilterAll, Module: "scraper"},
			Cursor:   "t42",
			Records:  records,
			Capacity: 100,
			Interval: 5 * time.Second,
			LastPoll: now.Add(-3 * time.Second),
		},
		Stats: &model.Stats{TotalRequests: 1000, TotalLogs: 500, TotalErrors: 120, ErrorRate: 24},
		Live:  &model.LiveMetrics{TotalOperations: 40, ErrorCount: 1, ErrorRate: 2.5, AvgDuration: 0.1, TimeRangeHours: 24},
		Now:   now,
	}
}

func TestFullLayoutRender(t *testing.T) {
	sizer := NewSizer(100, 30)
	lines := (&FullLayoutStrategy{}).Render(testView(50), sizer)

	// leave one line for the status bar
	if len(lines) != sizer.Height-1 {
		t.Errorf("expected %d lines, got %d", sizer.Height-1, len(lines))
	}
	for i, line := range lines {
		if w := runewidth.StringWidth(stripANSI(line)); w > sizer.Width {
			t.Errorf("line %d is %d cells wide: %q", i, w, stripANSI(line))
		}
	}

	joined := stripANSI(strings.Join(lines, "\n"))
	for _, want := range []string{"LOG MONITOR", "LIVE", "every 5s", "level=ALL module=scraper", "Cursor: t42", "Buffer: 50/100", "3s ago", "Requests 1,000", "24.0%", "Live 24h", "MESSAGE", "[q] quit"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected frame to contain %q", want)
		}
	}
}

func TestFullLayoutColorsErrorRate(t *testing.T) {
	lines := (&FullLayoutStrategy{}).Render(testView(1), NewSizer(100, 30))
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "\033[31m24.0%") {
		t.Error("danger error rate should be red")
	}
	if !strings.Contains(joined, "\033[32m2.5%") {
		t.Error("low error rate should be green")
	}
}

func TestFullLayoutStatsStates(t *testing.T) {
	view := testView(0)
	view.Stats, view.Live = nil, nil

	joined := stripANSI(strings.Join((&FullLayoutStrategy{}).Render(view, NewSizer(100, 30)), "\n"))
	if !strings.Contains(joined, "Stats: loading...") {
		t.Error("expected loading placeholder")
	}
	if !strings.Contains(joined, "No logs yet") {
		t.Error("expected empty table placeholder")
	}

	view.StatsError = errors.New("connection refused")
	joined = stripANSI(strings.Join((&FullLayoutStrategy{}).Render(view, NewSizer(100, 30)), "\n"))
	if !strings.Contains(joined, "Stats unavailable: connection refused") {
		t.Error("expected stats error")
	}
}

func TestFullLayoutShowsPollFailure(t *testing.T) {
	view := testView(1)
	view.Poll.LastError = errors.New("server error\x1b[2J")
	view.Poll.ConsecutiveFailures = 2

	joined := stripANSI(strings.Join((&FullLayoutStrategy{}).Render(view, NewSizer(100, 30)), "\n"))
	if !strings.Contains(joined, "FAILING") || !strings.Contains(joined, "Error (2x): server error") {
		t.Errorf("expected failure details in frame:\n%s", joined)
	}
	if strings.Contains(joined, "\x1b") {
		t.Error("control sequences from the error leaked into the frame")
	}
}

func TestCompactLayoutRender(t *testing.T) {
	view := testView(50)
	view.Poll.State = poller.Stopped
	sizer := NewSizer(80, 20)

	lines := (&CompactLayoutStrategy{}).Render(view, sizer)
	if len(lines) != sizer.Height-1 {
		t.Errorf("expected %d lines, got %d", sizer.Height-1, len(lines))
	}
	if !strings.Contains(stripANSI(lines[0]), "PAUSED") {
		t.Errorf("expected paused badge, got %q", lines[0])
	}
	if !strings.Contains(stripANSI(lines[0]), "logs 500  errors 24.0%") {
		t.Errorf("expected stats summary, got %q", lines[0])
	}
	for i, line := range lines {
		if w := runewidth.StringWidth(stripANSI(line)); i > 0 && w > sizer.Width {
			t.Errorf("line %d is %d cells wide", i, w)
		}
	}
}

func TestTableRowSanitizesMessage(t *testing.T) {
	var b BaseStrategy
	sizer := NewSizer(80, 24)
	view := testView(0)
	record := model.LogRecord{Level: "CUSTOM", Message: "line1\nline2\x1b[31m\x07"}

	row := stripANSI(b.TableRow(record, view, sizer.Columns(8), sizer))
	if strings.ContainsAny(row, "\n\x07\x1b") {
		t.Errorf("row contains control characters: %q", row)
	}
	if !strings.Contains(row, "line1 line2[31m") {
		t.Errorf("unexpected row: %q", row)
	}
	// unknown levels are styled as INFO
	if b.LevelColor(record.Class()) != b.LevelColor(model.ClassInfo) {
		t.Error("unknown level should use the info colour")
	}
}
