package layout

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-log-monitor/internal/util"
)

// FullLayoutStrategy draws the header, stat cards, the log table and key hints
type FullLayoutStrategy struct {
	BaseStrategy
}

func (s *FullLayoutStrategy) GetName() string {
	return "Full Dashboard"
}

func (s *FullLayoutStrategy) Render(view View, sizer *Sizer) []string {
	lines := []string{
		s.title(view, sizer),
		s.FilterLine(view.Poll, sizer),
		s.PollLine(view, sizer),
		s.SeparatorLine(sizer.Width),
	}
	lines = append(lines, s.statsCards(view, sizer)...)
	lines = append(lines, s.SeparatorLine(sizer.Width))

	// footer: separator + key hints, plus one line kept for the status bar
	body := sizer.BodyLines(len(lines), 3)
	lines = append(lines, s.LogTable(view, sizer, body)...)

	lines = append(lines, s.SeparatorLine(sizer.Width), s.KeyHints(sizer))
	return lines
}

func (s *FullLayoutStrategy) title(view View, sizer *Sizer) string {
	left := util.FormatHeaderTitle("LOG MONITOR") + "  " + s.StatusBadge(view.Poll) +
		fmt.Sprintf("  every %s", view.Poll.Interval.String())
	clock := view.formatTime(view.Now)

	gap := sizer.Width - util.GetDisplayWidth(stripANSI(left)) - util.GetDisplayWidth(clock)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + clock
}

func (s *FullLayoutStrategy) statsCards(view View, sizer *Sizer) []string {
	if view.Stats == nil && view.Live == nil {
		msg := "Stats: loading..."
		if view.StatsError != nil {
			msg = "Stats unavailable: " + util.SanitizeLine(view.StatsError.Error())
			return []string{util.Colorize(util.ColorRed, util.TruncateToWidth(msg, sizer.Width)), ""}
		}
		return []string{util.Colorize(util.ColorGray, msg), ""}
	}

	lines := make([]string, 0, 2)
	if st := view.Stats; st != nil {
		lines = append(lines, fmt.Sprintf("%s Requests %s │ Logs %s │ Errors %s │ Error rate %s",
			util.FormatOverviewTitle("Overview"),
			util.FormatNumber(st.TotalRequests),
			util.FormatNumber(st.TotalLogs),
			util.Colorize(util.ColorRed, util.FormatNumber(st.TotalErrors)),
			util.Colorize(s.RateColor(st.ErrorRate), util.FormatPercent(st.ErrorRate))))
	} else {
		lines = append(lines, "")
	}

	if lm := view.Live; lm != nil {
		lines = append(lines, fmt.Sprintf("%s Ops %s │ Errors %s │ Error rate %s │ Avg %.3fs",
			util.FormatOverviewTitle(fmt.Sprintf("Live %.0fh", lm.TimeRangeHours)),
			util.FormatNumber(lm.TotalOperations),
			util.FormatNumber(lm.ErrorCount),
			util.Colorize(s.RateColor(lm.ErrorRate), util.FormatPercent(lm.ErrorRate)),
			lm.AvgDuration))
	} else {
		lines = append(lines, "")
	}
	return lines
}
