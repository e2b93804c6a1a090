package tail

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/data/client"
	"github.com/penwyp/go-log-monitor/internal/data/profile"
	"github.com/penwyp/go-log-monitor/internal/presentation/display"
	"github.com/penwyp/go-log-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-log-monitor/internal/presentation/layout"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// Dependencies lets callers replace the terminal and network edges. Nil
// fields are created by Run.
type Dependencies struct {
	Logs    poller.Source
	Stats   StatsSource
	Display DisplayController
	Input   InputHandler
	Monitor FileMonitor
}

// Orchestrator coordinates all components for the tail command
type Orchestrator struct {
	config *TailConfig

	// Core components
	poller       LogPoller
	stats        *StatsRefresher
	stateManager *StateManager

	// UI components
	display  DisplayController
	keyboard InputHandler

	// Monitoring
	watcher FileMonitor
}

// NewOrchestrator creates an orchestrator talking to the configured API
func NewOrchestrator(config *TailConfig) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	apiClient, err := client.New(config.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return NewOrchestratorWithDeps(config, Dependencies{
		Logs:  apiClient,
		Stats: apiClient,
		Display: display.NewTerminalDisplay(&display.DisplayConfig{
			TimeFormat: config.TimeFormat,
		}),
	})
}

// NewOrchestratorWithDeps creates an orchestrator over the given components
func NewOrchestratorWithDeps(config *TailConfig, deps Dependencies) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Logs == nil || deps.Stats == nil || deps.Display == nil {
		return nil, errors.New("log source, stats source and display are required")
	}

	stateManager := NewStateManager()
	logPoller := poller.New(deps.Logs, config.PollerConfig(),
		poller.WithLogger(util.GetLogger().With(util.F("component", "poller"))))

	return &Orchestrator{
		config:       config,
		poller:       logPoller,
		stats:        NewStatsRefresher(deps.Stats, stateManager, config.Timeout),
		stateManager: stateManager,
		display:      deps.Display,
		keyboard:     deps.Input,
		watcher:      deps.Monitor,
	}, nil
}

// Run starts the orchestrator main loop. It returns when the user quits or
// ctx is done; polling is stopped on the way out.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting log tail", util.F("api", o.config.APIURL), util.F("filter", o.config.Filter.String()))

	// Ensure cleanup on exit
	defer o.Close()

	// Initialize global time provider with configured timezone
	if err := util.InitializeTimeProvider(o.config.Timezone); err != nil {
		return fmt.Errorf("failed to initialize timezone: %w", err)
	}

	// Phase 1: Initialize keyboard
	if o.keyboard == nil {
		keyboard, err := interaction.NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.keyboard = keyboard
	}

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	o.stateManager.SetLoadingState(true, "Loading logs...")
	o.updateDisplay()

	// Phase 2: initial full fetch and summary cards
	if err := o.poller.Reload(ctx); err != nil {
		o.stateManager.SetStatus("Initial load failed: " + err.Error())
	}
	o.stats.Refresh(ctx)
	o.stateManager.SetLoadingState(false, "")

	// Phase 3: start polling and profile monitoring
	if err := o.poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}
	defer func() {
		if o.poller.State() == poller.Running {
			_ = o.poller.Stop()
		}
	}()
	o.startWatcher()

	// Phase 4: Main event loop
	uiTicker := time.NewTicker(time.Duration(1000/o.config.UIRefreshRate) * time.Millisecond)
	defer uiTicker.Stop()

	statsTicker := time.NewTicker(o.config.StatsInterval)
	defer statsTicker.Stop()

	var fileEvents <-chan model.FileEvent
	if o.watcher != nil {
		fileEvents = o.watcher.Events()
	}

	o.updateDisplay()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down log tail...")
			return nil

		case <-uiTicker.C:
			o.updateDisplay()

		case <-statsTicker.C:
			// paused means paused for the cards too
			if o.poller.State() == poller.Running {
				go o.stats.Refresh(ctx)
			}

		case <-o.poller.Updates():
			o.updateDisplay()

		case event, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			o.handleProfileChange(ctx, event)
			o.updateDisplay()

		case keyEvent := <-o.keyboard.Events():
			if o.handleKeyboard(ctx, keyEvent) {
				return nil // Exit requested
			}
			o.updateDisplay()
		}
	}
}

// updateDisplay renders the current poller snapshot and UI state
func (o *Orchestrator) updateDisplay() {
	isLoading, loadingMessage := o.stateManager.GetLoadingState()
	state := o.stateManager.GetInteractionState()
	state.IsLoading = isLoading
	if isLoading {
		state.StatusMessage = loadingMessage
	}

	o.display.RenderWithState(o.buildView(), state)
}

func (o *Orchestrator) buildView() layout.View {
	stats, live, statsErr := o.stateManager.GetStats()
	tp := util.GetTimeProvider()
	return layout.View{
		Poll:       o.poller.Snapshot(),
		Stats:      stats,
		Live:       live,
		StatsError: statsErr,
		Now:        tp.Now(),
		FormatTime: func(t time.Time) string {
			return tp.FormatClock(t, o.config.TimeFormat)
		},
	}
}

// handleKeyboard handles keyboard events. It returns true when the user
// asked to quit.
func (o *Orchestrator) handleKeyboard(ctx context.Context, event interaction.KeyEvent) bool {
	if event.Type == interaction.KeyChar && event.Key == interaction.KeyCtrlC {
		return true
	}

	state := o.stateManager.GetInteractionState()

	if state.InputMode != model.InputNone {
		o.handleTextInput(ctx, event, state)
		return false
	}

	if state.ShowHelp {
		switch {
		case event.Type == interaction.KeyEscape, event.Key == 'h', event.Key == 'H', event.Key == '?':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.ShowHelp = false
			})
		case event.Key == 'q', event.Key == 'Q':
			return true
		}
		return false
	}

	switch event.Type {
	case interaction.KeyEscape:
		return true
	case interaction.KeyChar:
		return o.handleCommandKey(ctx, event.Key)
	}
	return false
}

func (o *Orchestrator) handleCommandKey(ctx context.Context, key rune) bool {
	switch key {
	case 'q', 'Q':
		return true
	case 'p', 'P', ' ':
		o.togglePolling(ctx)
	case 'a', 'A':
		o.setLevel(ctx, model.FilterAll)
	case 'i', 'I':
		o.setLevel(ctx, model.FilterInfo)
	case 'w', 'W':
		o.setLevel(ctx, model.FilterWarning)
	case 'e', 'E':
		o.setLevel(ctx, model.FilterError)
	case '/':
		o.beginInput(model.InputSearch, o.poller.Filter().Search)
	case 'm', 'M':
		o.beginInput(model.InputModule, o.poller.Filter().Module)
	case 'c', 'C':
		f := o.poller.Filter()
		f.Module, f.Search = "", ""
		o.applyFilter(ctx, f, "Module and search cleared")
	case 'r', 'R':
		o.reload(ctx, "Reloaded")
	case 's', 'S':
		o.saveProfile()
	case 't', 'T':
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.LayoutStyle = layout.NextStyle(s.LayoutStyle)
		})
	case 'h', 'H', '?':
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ShowHelp = true
		})
	}
	return false
}

func (o *Orchestrator) handleTextInput(ctx context.Context, event interaction.KeyEvent, state model.InteractionState) {
	switch event.Type {
	case interaction.KeyEscape:
		o.endInput("")
	case interaction.KeyEnter:
		o.endInput("")
		f := o.poller.Filter()
		if state.InputMode == model.InputSearch {
			f.Search = state.InputBuffer
		} else {
			f.Module = state.InputBuffer
		}
		o.applyFilter(ctx, f, "Filter applied")
	case interaction.KeyBackspace:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			if s.InputBuffer != "" {
				_, size := utf8.DecodeLastRuneInString(s.InputBuffer)
				s.InputBuffer = s.InputBuffer[:len(s.InputBuffer)-size]
			}
		})
	case interaction.KeyChar:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.InputBuffer += string(event.Key)
		})
	}
}

func (o *Orchestrator) beginInput(mode model.InputMode, initial string) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.InputMode = mode
		s.InputBuffer = initial
		s.StatusMessage = ""
	})
}

func (o *Orchestrator) endInput(status string) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.InputMode = model.InputNone
		s.InputBuffer = ""
		s.StatusMessage = status
	})
}

func (o *Orchestrator) togglePolling(ctx context.Context) {
	state, err := o.poller.Toggle(ctx)
	if err != nil {
		util.LogWarn("failed to toggle polling", util.F("error", err.Error()))
		return
	}
	if state == poller.Running {
		o.stateManager.SetStatus("Polling resumed")
	} else {
		o.stateManager.SetStatus("Polling paused")
	}
}

func (o *Orchestrator) setLevel(ctx context.Context, level model.LevelFilter) {
	f := o.poller.Filter()
	if f.Level == level {
		return
	}
	f.Level = level
	o.applyFilter(ctx, f, "Level "+string(level))
}

// applyFilter resets the cursor under the new filters and refills the
// buffer so rows from the old filters do not linger.
func (o *Orchestrator) applyFilter(ctx context.Context, f model.Filter, status string) {
	f = f.Normalized()
	if f == o.poller.Filter() {
		return
	}
	o.poller.SetFilter(f)
	o.reload(ctx, status)
}

// reload runs a full fetch without blocking the event loop
func (o *Orchestrator) reload(ctx context.Context, status string) {
	o.stateManager.SetStatus("Reloading...")
	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()

		err := o.poller.Reload(reqCtx)
		switch {
		case errors.Is(err, poller.ErrStale):
			// superseded by a newer reload or filter change
		case err != nil:
			o.stateManager.SetStatus("Reload failed: " + err.Error())
		default:
			o.stateManager.SetStatus(status)
		}
	}()
}

func (o *Orchestrator) saveProfile() {
	if o.config.ProfilePath == "" {
		o.stateManager.SetStatus("No profile file configured (--profile)")
		return
	}
	if err := profile.Save(o.config.ProfilePath, profile.FromFilter(o.poller.Filter())); err != nil {
		util.LogError("failed to save profile", util.F("path", o.config.ProfilePath), util.F("error", err.Error()))
		o.stateManager.SetStatus("Save failed: " + err.Error())
		return
	}
	util.LogInfo("profile saved", util.F("path", o.config.ProfilePath))
	o.stateManager.SetStatus("Filters saved to " + o.config.ProfilePath)
}

// startWatcher watches the profile file when one is configured. A watcher
// failure only disables live profile reloads.
func (o *Orchestrator) startWatcher() {
	if o.watcher != nil || o.config.ProfilePath == "" {
		return
	}
	watcher, err := profile.NewWatcher(o.config.ProfilePath)
	if err != nil {
		util.LogWarn("profile watch disabled", util.F("path", o.config.ProfilePath), util.F("error", err.Error()))
		return
	}
	o.watcher = watcher
}

// handleProfileChange applies filters edited in the profile file
func (o *Orchestrator) handleProfileChange(ctx context.Context, event model.FileEvent) {
	util.LogDebug("profile changed", util.F("path", event.Path), util.F("op", event.Operation))

	p, err := profile.Load(o.config.ProfilePath)
	if err != nil {
		util.LogWarn("ignoring invalid profile", util.F("error", err.Error()))
		o.stateManager.SetStatus("Profile not applied: " + err.Error())
		return
	}
	// our own save also lands here
	o.applyFilter(ctx, p.Filter(), "Profile applied")
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	var errs []error
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close profile watcher: %w", err))
		}
		o.watcher = nil
	}
	if o.keyboard != nil {
		if err := o.keyboard.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore terminal: %w", err))
		}
		o.keyboard = nil
	}
	return errors.Join(errs...)
}
