package tail

import (
	"sync"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

// StateManager manages application state in a thread-safe manner. Poll
// state lives in the poller; this holds everything else on screen.
type StateManager struct {
	mu sync.RWMutex

	// Summary cards; nil until the first successful fetch
	stats           *model.Stats
	liveMetrics     *model.LiveMetrics
	statsErr        error
	lastStatsUpdate time.Time

	// Loading state
	isLoading      bool
	loadingMessage string

	// Interaction state
	interactionState model.InteractionState
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{}
}

// GetStats returns the last good summary values and the last fetch error
func (sm *StateManager) GetStats() (*model.Stats, *model.LiveMetrics, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stats, sm.liveMetrics, sm.statsErr
}

// UpdateStats stores fetched values. A nil value keeps the previous one so
// a failed fetch leaves the last good numbers on screen.
func (sm *StateManager) UpdateStats(stats *model.Stats, live *model.LiveMetrics, err error, at time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if stats != nil {
		sm.stats = stats
	}
	if live != nil {
		sm.liveMetrics = live
	}
	sm.statsErr = err
	if err == nil {
		sm.lastStatsUpdate = at
	}
}

// GetLastStatsUpdate returns when stats last refreshed without error
func (sm *StateManager) GetLastStatsUpdate() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastStatsUpdate
}

// GetLoadingState returns current loading state and message
func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isLoading, sm.loadingMessage
}

// SetLoadingState updates loading state and message
func (sm *StateManager) SetLoadingState(isLoading bool, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isLoading = isLoading
	sm.loadingMessage = message
}

// GetInteractionState returns current interaction state
func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.interactionState
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	updateFunc(&sm.interactionState)
}

// SetStatus replaces the status bar message
func (sm *StateManager) SetStatus(message string) {
	sm.UpdateInteractionState(func(s *model.InteractionState) {
		s.StatusMessage = message
	})
}
