package tail

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/data/client"
	"github.com/penwyp/go-log-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-log-monitor/internal/presentation/layout"
)

// fakeAPI serves every endpoint the tail app reads. Cursorless requests
// with a limit are reloads and return records; polls return nothing.
type fakeAPI struct {
	mu          sync.Mutex
	records     []model.LogRecord
	windowCalls []url.Values
	stats       model.Stats
	live        model.LiveMetrics
	statsErr    error
	statsHits   int
}

func (f *fakeAPI) StreamLogs(ctx context.Context, params url.Values) (client.StreamPage, error) {
	if !params.Has("limit") {
		return client.StreamPage{NextSince: "c1"}, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windowCalls = append(f.windowCalls, params)
	return client.StreamPage{Records: f.records, NextSince: "c0"}, nil
}

func (f *fakeAPI) FetchStats(ctx context.Context) (model.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsHits++
	return f.stats, f.statsErr
}

func (f *fakeAPI) FetchLiveMetrics(ctx context.Context) (model.LiveMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live, f.statsErr
}

func (f *fakeAPI) lastWindow() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.windowCalls) == 0 {
		return nil
	}
	return f.windowCalls[len(f.windowCalls)-1]
}

func (f *fakeAPI) windowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windowCalls)
}

// fakeDisplay records rendered frames
type fakeDisplay struct {
	mu      sync.Mutex
	entered bool
	exited  bool
	views   []layout.View
	states  []model.InteractionState
}

func (d *fakeDisplay) EnterAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entered = true
}

func (d *fakeDisplay) ExitAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exited = true
}

func (d *fakeDisplay) RenderWithState(view layout.View, state model.InteractionState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.views = append(d.views, view)
	d.states = append(d.states, state)
}

func (d *fakeDisplay) lastView() (layout.View, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.views) == 0 {
		return layout.View{}, false
	}
	return d.views[len(d.views)-1], true
}

// fakeInput is an InputHandler fed by the test
type fakeInput struct {
	events chan interaction.KeyEvent
	closed bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{events: make(chan interaction.KeyEvent, 8)}
}

func (i *fakeInput) Events() <-chan interaction.KeyEvent { return i.events }

func (i *fakeInput) Close() error {
	i.closed = true
	return nil
}

func key(r rune) interaction.KeyEvent {
	return interaction.KeyEvent{Key: r, Type: interaction.KeyChar}
}

var errFake = errors.New("boom")
