package layout

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// BaseStrategy provides the pieces shared by every layout
type BaseStrategy struct{}

// SeparatorLine creates a separator line of the given width
func (b *BaseStrategy) SeparatorLine(width int) string {
	return util.FormatSectionSeparator(width)
}

// StatusBadge renders the polling state
func (b *BaseStrategy) StatusBadge(snap poller.Snapshot) string {
	switch {
	case snap.State != poller.Running:
		return util.Colorize(util.ColorYellow, "⏸ PAUSED")
	case snap.ConsecutiveFailures > 0:
		return util.Colorize(util.ColorRed, "● FAILING")
	default:
		return util.Colorize(util.ColorGreen, "● LIVE")
	}
}

// LevelColor returns the colour of a record level
func (b *BaseStrategy) LevelColor(class model.LevelClass) string {
	switch class {
	case model.ClassError:
		return util.ColorRed
	case model.ClassWarning:
		return util.ColorYellow
	default:
		return util.ColorBlue
	}
}

// RateColor returns the colour of an error-rate band
func (b *BaseStrategy) RateColor(rate float64) string {
	switch model.BandForRate(rate) {
	case model.BandDanger:
		return util.ColorRed
	case model.BandWarning:
		return util.ColorYellow
	default:
		return util.ColorGreen
	}
}

// PollLine summarizes buffer fill, poll age and the last failure
func (b *BaseStrategy) PollLine(view View, sizer *Sizer) string {
	snap := view.Poll
	line := fmt.Sprintf("Buffer: %d/%d  Last poll: %s",
		len(snap.Records), snap.Capacity, util.FormatAge(snap.LastPoll, view.Now))
	if snap.InFlight {
		line += "  ⟳"
	}
	if snap.LastError != nil {
		failure := fmt.Sprintf("  Error (%dx): %s", snap.ConsecutiveFailures, util.SanitizeLine(snap.LastError.Error()))
		room := sizer.Width - util.GetDisplayWidth(line)
		return line + util.Colorize(util.ColorRed, util.TruncateToWidth(failure, room))
	}
	return line
}

// FilterLine renders the active filters and the cursor
func (b *BaseStrategy) FilterLine(snap poller.Snapshot, sizer *Sizer) string {
	cursor := "none"
	if !snap.Cursor.IsNull() {
		cursor = string(snap.Cursor)
	}
	line := fmt.Sprintf("Filter: %s  Cursor: %s", snap.Filter.String(), cursor)
	return util.TruncateToWidth(util.SanitizeLine(line), sizer.Width)
}

// TableHeader renders the column titles
func (b *BaseStrategy) TableHeader(cols ColumnWidths, sizer *Sizer) string {
	cells := []string{
		sizer.Fit("TIME", cols.Time),
		sizer.Fit("LEVEL", cols.Level),
		sizer.Fit("SOURCE", cols.Source),
		sizer.Fit("MESSAGE", cols.Message),
	}
	return util.ColorBold + strings.Join(cells, " ") + util.ColorReset
}

// TableRow renders one record. Untrusted fields are sanitized before they
// are measured.
func (b *BaseStrategy) TableRow(r model.LogRecord, view View, cols ColumnWidths, sizer *Sizer) string {
	level := sizer.Fit(util.SanitizeLine(r.Level), cols.Level)
	cells := []string{
		sizer.Fit(util.SanitizeLine(r.TimestampText(view.formatTime)), cols.Time),
		util.Colorize(b.LevelColor(r.Class()), level),
		util.Colorize(util.ColorGray, sizer.Fit(util.SanitizeLine(r.Source()), cols.Source)),
		sizer.Fit(util.SanitizeLine(r.Message), cols.Message),
	}
	return strings.Join(cells, " ")
}

// LogTable renders the header and as many records as fit in rows lines
func (b *BaseStrategy) LogTable(view View, sizer *Sizer, rows int) []string {
	timeWidth := util.GetDisplayWidth(view.formatTime(view.Now))
	cols := sizer.Columns(timeWidth)

	lines := []string{b.TableHeader(cols, sizer)}
	records := view.Poll.Records
	if len(records) == 0 {
		return append(lines, util.Colorize(util.ColorGray, "  No logs yet. Waiting for the next poll..."))
	}

	limit := min(len(records), max(rows-1, 0))
	for _, r := range records[:limit] {
		lines = append(lines, b.TableRow(r, view, cols, sizer))
	}
	return lines
}

// KeyHints lists the main shortcuts on one line
func (b *BaseStrategy) KeyHints(sizer *Sizer) string {
	hints := "[p] pause  [a/i/w/e] level  [/] search  [m] module  [c] clear  [r] reload  [s] save  [t] layout  [h] help  [q] quit"
	return util.Colorize(util.ColorGray, util.TruncateToWidth(hints, sizer.Width))
}
