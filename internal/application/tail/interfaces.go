package tail

import (
	"context"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-log-monitor/internal/presentation/layout"
)

// LogPoller is the incremental poller driving the log table
type LogPoller interface {
	Start(ctx context.Context) error
	Stop() error
	Toggle(ctx context.Context) (poller.State, error)
	State() poller.State
	Reload(ctx context.Context) error
	SetFilter(filter model.Filter)
	SetLevel(level model.LevelFilter)
	Filter() model.Filter
	Snapshot() poller.Snapshot
	Updates() <-chan struct{}
}

// StatsSource provides the summary cards
type StatsSource interface {
	FetchStats(ctx context.Context) (model.Stats, error)
	FetchLiveMetrics(ctx context.Context) (model.LiveMetrics, error)
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// RenderWithState draws one frame
	RenderWithState(view layout.View, state model.InteractionState)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// FileMonitor watches the filter profile for changes
type FileMonitor interface {
	// Events returns a channel of file change events
	Events() <-chan model.FileEvent
	// Close stops monitoring and cleans up resources
	Close() error
}
