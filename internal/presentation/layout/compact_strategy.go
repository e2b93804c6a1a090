package layout

import (
	"fmt"

	"github.com/penwyp/go-log-monitor/internal/util"
)

// CompactLayoutStrategy gives almost the whole screen to the log table
type CompactLayoutStrategy struct {
	BaseStrategy
}

func (s *CompactLayoutStrategy) GetName() string {
	return "Compact"
}

func (s *CompactLayoutStrategy) Render(view View, sizer *Sizer) []string {
	snap := view.Poll
	status := fmt.Sprintf("%s  %s  %d/%d  %s",
		s.StatusBadge(snap),
		util.SanitizeLine(snap.Filter.String()),
		len(snap.Records), snap.Capacity,
		view.formatTime(view.Now))
	if view.Stats != nil {
		status += fmt.Sprintf("  logs %s  errors %s",
			util.FormatCompact(view.Stats.TotalLogs),
			util.Colorize(s.RateColor(view.Stats.ErrorRate), util.FormatPercent(view.Stats.ErrorRate)))
	}
	if snap.LastError != nil {
		status += util.Colorize(util.ColorRed, fmt.Sprintf("  error (%dx)", snap.ConsecutiveFailures))
	}

	lines := []string{status}
	// one line kept for the status bar
	body := sizer.BodyLines(len(lines), 1)
	return append(lines, s.LogTable(view, sizer, body)...)
}
