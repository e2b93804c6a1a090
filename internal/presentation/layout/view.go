package layout

import (
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
)

// View is everything a layout needs to draw one frame
type View struct {
	Poll       poller.Snapshot
	Stats      *model.Stats
	Live       *model.LiveMetrics
	StatsError error
	Now        time.Time
	// FormatTime renders record timestamps and the clock
	FormatTime func(time.Time) string
}

func (v View) formatTime(t time.Time) string {
	if v.FormatTime == nil {
		return t.Format("15:04:05")
	}
	return v.FormatTime(t)
}
