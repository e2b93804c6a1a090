package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// StatsReport bundles the dashboard summary and the rolling-window metrics.
// Either part may be nil when its endpoint failed.
type StatsReport struct {
	Stats       *model.Stats       `json:"stats,omitempty"`
	LiveMetrics *model.LiveMetrics `json:"live_metrics,omitempty"`
}

// StatsFormatter prints a StatsReport as text or JSON
type StatsFormatter struct {
	w     io.Writer
	json  bool
	color bool
}

// NewStatsFormatter accepts "table" (default) or "json"
func NewStatsFormatter(w io.Writer, format string, color bool) (*StatsFormatter, error) {
	switch strings.ToLower(format) {
	case "", OutputTable, OutputSummary:
		return &StatsFormatter{w: w, color: color}, nil
	case OutputJSON:
		return &StatsFormatter{w: w, json: true}, nil
	default:
		return nil, fmt.Errorf("invalid output format '%s' for stats: must be table or json", format)
	}
}

func (f *StatsFormatter) Format(report StatsReport) error {
	if f.json {
		return writeIndented(f.w, report)
	}

	var b strings.Builder
	if s := report.Stats; s != nil {
		b.WriteString("Overview\n")
		fmt.Fprintf(&b, "  Total Requests: %s\n", util.FormatNumber(s.TotalRequests))
		fmt.Fprintf(&b, "  Total Logs:     %s\n", util.FormatNumber(s.TotalLogs))
		fmt.Fprintf(&b, "  Total Errors:   %s\n", util.FormatNumber(s.TotalErrors))
		fmt.Fprintf(&b, "  Error Rate:     %s\n", f.rate(s.ErrorRate))
		if len(s.TopIPs) > 0 {
			b.WriteString("  Top IPs:\n")
			for _, ip := range s.TopIPs {
				fmt.Fprintf(&b, "    %-40s %s\n", util.SanitizeLine(ip.IP), util.FormatNumber(ip.Count))
			}
		}
	}

	if m := report.LiveMetrics; m != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Live Metrics (last %sh)\n", trimFloat(m.TimeRangeHours))
		fmt.Fprintf(&b, "  Operations:   %s\n", util.FormatNumber(m.TotalOperations))
		fmt.Fprintf(&b, "  Errors:       %s\n", util.FormatNumber(m.ErrorCount))
		fmt.Fprintf(&b, "  Error Rate:   %s\n", f.rate(m.ErrorRate))
		fmt.Fprintf(&b, "  Avg Duration: %.3fs\n", m.AvgDuration)
	}

	if b.Len() == 0 {
		b.WriteString("No statistics available\n")
	}
	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *StatsFormatter) rate(rate float64) string {
	text := util.FormatPercent(rate)
	if !f.color {
		return text
	}
	return util.Colorize(BandColor(model.BandForRate(rate)), text)
}

// BandColor maps an error-rate band to its terminal colour
func BandColor(band model.RateBand) string {
	switch band {
	case model.BandDanger:
		return util.ColorRed
	case model.BandWarning:
		return util.ColorYellow
	default:
		return util.ColorGreen
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
