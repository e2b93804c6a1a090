package tail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/data/client"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// StatsRefresher fetches the summary cards. Overlapping refreshes are
// skipped rather than queued.
type StatsRefresher struct {
	source  StatsSource
	state   *StateManager
	timeout time.Duration
	now     func() time.Time

	refreshMutex sync.Mutex
}

// NewStatsRefresher creates a refresher writing into state
func NewStatsRefresher(source StatsSource, state *StateManager, timeout time.Duration) *StatsRefresher {
	return &StatsRefresher{
		source:  source,
		state:   state,
		timeout: timeout,
		now:     time.Now,
	}
}

// Refresh fetches /stats and /live-metrics. It returns false when another
// refresh was already running.
func (r *StatsRefresher) Refresh(ctx context.Context) bool {
	if !r.refreshMutex.TryLock() {
		util.LogDebug("stats refresh skipped, previous refresh still running")
		return false
	}
	defer r.refreshMutex.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		stats *model.Stats
		live  *model.LiveMetrics
		errs  []error
	)

	if s, err := r.source.FetchStats(ctx); err != nil {
		util.LogError("failed to fetch stats", util.F("kind", client.KindOf(err).String()), util.F("error", err.Error()))
		errs = append(errs, err)
	} else {
		stats = &s
	}

	if m, err := r.source.FetchLiveMetrics(ctx); err != nil {
		util.LogError("failed to fetch live metrics", util.F("kind", client.KindOf(err).String()), util.F("error", err.Error()))
		errs = append(errs, err)
	} else {
		live = &m
	}

	r.state.UpdateStats(stats, live, errors.Join(errs...), r.now())
	return true
}
