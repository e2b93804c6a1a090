// Package poller implements the incremental log poller: a cursor-driven
// polling loop feeding a bounded newest-first display buffer.
package poller

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/query"
	"github.com/penwyp/go-log-monitor/internal/data/client"
	"github.com/penwyp/go-log-monitor/internal/util"
)

const (
	DefaultInterval       = 5 * time.Second
	DefaultCapacity       = 100
	DefaultRequestTimeout = 10 * time.Second
	DefaultRetryBase      = 250 * time.Millisecond
)

var (
	ErrNotRunning     = errors.New("poller is not running")
	ErrAlreadyRunning = errors.New("poller is already running")
	ErrInFlight       = errors.New("previous poll still in flight")
	ErrStale          = errors.New("poll result discarded")
)

// Source is the log API as seen by the poller
type Source interface {
	StreamLogs(ctx context.Context, params url.Values) (client.StreamPage, error)
}

// State is the scheduling state of the poller
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Config holds poller settings. Zero values take the defaults.
type Config struct {
	Interval       time.Duration
	Capacity       int
	RequestTimeout time.Duration
	Filter         model.Filter

	// RetryAttempts > 0 retries a failed poll within the same tick, waiting
	// RetryBase, 2*RetryBase, ... between attempts, each wait capped at
	// Interval. Zero disables retries.
	RetryAttempts int
	RetryBase     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = 0
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	c.Filter = c.Filter.Normalized()
	return c
}

// Snapshot is a read-only view of the poller state for renderers
type Snapshot struct {
	State               State
	Filter              model.Filter
	Cursor              model.Cursor
	Records             []model.LogRecord
	Capacity            int
	Interval            time.Duration
	InFlight            bool
	LastPoll            time.Time
	LastError           error
	ConsecutiveFailures int
}

// Option customizes a Poller
type Option func(*Poller)

// WithLogger sets the diagnostic sink for poll failures
func WithLogger(logger util.LoggerInterface) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithClock overrides the time source used for LastPoll
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

// WithBatchHandler registers fn to receive every applied stream batch, in
// server order. fn runs on the polling goroutine after the state lock is
// released and must not block for long.
func WithBatchHandler(fn func(records []model.LogRecord)) Option {
	return func(p *Poller) {
		p.onBatch = fn
	}
}

// Poller owns the cursor, the filters and the display buffer. Responses are
// applied only when the generation captured at request time is still
// current; Stop, SetFilter and Reload advance the generation.
type Poller struct {
	cfg    Config
	source Source
	logger util.LoggerInterface
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	onBatch func(records []model.LogRecord)

	mu         sync.Mutex
	state      State
	filter     model.Filter
	cursor     model.Cursor
	buffer     *Buffer
	generation uint64
	inFlight   bool
	reloads    int
	lastPoll   time.Time
	lastErr    error
	failures   int

	cancel context.CancelFunc
	done   chan struct{}

	updates chan struct{}
}

// New creates a stopped poller
func New(source Source, cfg Config, opts ...Option) *Poller {
	cfg = cfg.withDefaults()

	p := &Poller{
		cfg:     cfg,
		source:  source,
		now:     time.Now,
		sleep:   sleepContext,
		state:   Stopped,
		filter:  cfg.Filter,
		buffer:  NewBuffer(cfg.Capacity),
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = util.GetLogger().With(util.F("component", "poller"))
	}
	return p
}

// Start schedules a repeating tick every Interval. No tick fires
// immediately. The schedule ends on Stop or when ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.state = Running
	p.cancel = cancel
	p.done = done

	go p.run(ctx, loopCtx, done)

	p.logger.Info("polling started", util.F("interval", p.cfg.Interval.String()), util.F("filter", p.filter.String()))
	p.notify()
	return nil
}

// Stop cancels the schedule. A request already in flight may complete but
// its result is discarded.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if p.state != Running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.state = Stopped
	p.generation++
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	<-done

	p.logger.Info("polling stopped")
	p.notify()
	return nil
}

// Toggle starts a stopped poller or stops a running one
func (p *Poller) Toggle(ctx context.Context) (State, error) {
	if p.State() == Running {
		return Stopped, p.Stop()
	}
	return Running, p.Start(ctx)
}

// State returns the scheduling state
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// run drives ticks until loopCtx is cancelled. Each tick runs in its own
// goroutine so a slow response never delays the schedule.
func (p *Poller) run(ctx, loopCtx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			p.mu.Lock()
			if p.done == done && p.state == Running {
				// parent context ended without Stop
				p.state = Stopped
				p.generation++
				p.cancel = nil
				p.notify()
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			go func() {
				reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
				defer cancel()
				_ = p.Tick(reqCtx)
			}()
		}
	}
}

// Tick performs one poll cycle synchronously. It returns ErrNotRunning when
// stopped, ErrInFlight when the previous poll or a reload is unresolved,
// ErrStale when the result arrived after Stop, a filter change or a reload,
// or the fetch error.
func (p *Poller) Tick(ctx context.Context) error {
	p.mu.Lock()
	if p.state != Running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	if p.inFlight || p.reloads > 0 {
		p.mu.Unlock()
		p.logger.Debug("tick skipped, previous request in flight")
		return ErrInFlight
	}
	p.inFlight = true
	gen := p.generation
	params := query.StreamParams(p.filter, p.cursor)
	p.mu.Unlock()

	page, err := p.fetchWithRetry(ctx, gen, params)

	var applied []model.LogRecord
	defer func() {
		if len(applied) > 0 && p.onBatch != nil {
			p.onBatch(applied)
		}
	}()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	if gen != p.generation || p.state != Running {
		p.logger.Debug("discarding poll result", util.F("generation", gen), util.F("current", p.generation))
		return ErrStale
	}

	if err != nil {
		p.lastErr = err
		p.failures++
		p.logger.Error("poll failed",
			util.F("kind", client.KindOf(err).String()),
			util.F("failures", p.failures),
			util.F("error", err.Error()))
		p.notify()
		return err
	}

	evicted := p.buffer.Prepend(page.Records)
	applied = page.Records
	p.cursor = page.NextSince
	p.lastPoll = p.now()
	p.lastErr = nil
	p.failures = 0

	if len(page.Records) > 0 {
		p.logger.Debug("poll applied",
			util.F("records", len(page.Records)),
			util.F("evicted", evicted),
			util.F("cursor", string(p.cursor)))
	}
	p.notify()
	return nil
}

// fetchWithRetry issues the stream request, retrying with exponential
// backoff when configured. Retries stop once the generation moves on.
func (p *Poller) fetchWithRetry(ctx context.Context, gen uint64, params url.Values) (client.StreamPage, error) {
	delay := p.cfg.RetryBase
	for attempt := 0; ; attempt++ {
		page, err := p.source.StreamLogs(ctx, params)
		if err == nil || attempt >= p.cfg.RetryAttempts || !p.isCurrent(gen) {
			return page, err
		}

		wait := min(delay, p.cfg.Interval)
		p.logger.Debug("poll failed, retrying",
			util.F("attempt", attempt+1),
			util.F("wait", wait.String()),
			util.F("error", err.Error()))
		if sleepErr := p.sleep(ctx, wait); sleepErr != nil {
			return page, err
		}
		delay *= 2
	}
}

func (p *Poller) isCurrent(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation && p.state == Running
}

// Reload replaces the buffer with the newest window under the current
// filter, fetched from the stream endpoint without a cursor, and takes the
// cursor from that response. It is valid in either state. Any poll in
// flight when Reload starts is discarded and ticks are skipped until the
// reload resolves.
func (p *Poller) Reload(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	p.reloads++
	gen := p.generation
	params := query.ListParams(p.filter, p.buffer.Capacity())
	p.mu.Unlock()

	page, err := p.source.StreamLogs(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads--

	if gen != p.generation {
		p.logger.Debug("discarding reload result", util.F("generation", gen))
		return ErrStale
	}

	if err != nil {
		p.lastErr = err
		p.logger.Error("reload failed",
			util.F("kind", client.KindOf(err).String()),
			util.F("error", err.Error()))
		p.notify()
		return err
	}

	p.buffer.Replace(page.Records)
	p.cursor = page.NextSince
	p.lastPoll = p.now()
	p.lastErr = nil
	p.failures = 0
	p.logger.Info("buffer reloaded",
		util.F("records", p.buffer.Len()),
		util.F("cursor", string(p.cursor)),
		util.F("filter", p.filter.String()))
	p.notify()
	return nil
}

// SetFilter replaces the filters and resets the cursor. The running state
// is unchanged; a poll in flight under the old filters is discarded.
func (p *Poller) SetFilter(filter model.Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.filter = filter.Normalized()
	p.cursor = ""
	p.generation++

	p.logger.Info("filter changed", util.F("filter", p.filter.String()))
	p.notify()
}

// SetLevel changes only the level filter
func (p *Poller) SetLevel(level model.LevelFilter) {
	f := p.Filter()
	f.Level = level
	p.SetFilter(f)
}

// SetModule changes only the module filter
func (p *Poller) SetModule(module string) {
	f := p.Filter()
	f.Module = module
	p.SetFilter(f)
}

// SetSearch changes only the search filter
func (p *Poller) SetSearch(search string) {
	f := p.Filter()
	f.Search = search
	p.SetFilter(f)
}

// Filter returns the active filters
func (p *Poller) Filter() model.Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Cursor returns the held continuation token
func (p *Poller) Cursor() model.Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Snapshot returns a copy of the state for rendering
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Snapshot{
		State:               p.state,
		Filter:              p.filter,
		Cursor:              p.cursor,
		Records:             p.buffer.Records(),
		Capacity:            p.buffer.Capacity(),
		Interval:            p.cfg.Interval,
		InFlight:            p.inFlight,
		LastPoll:            p.lastPoll,
		LastError:           p.lastErr,
		ConsecutiveFailures: p.failures,
	}
}

// Updates is signalled after every state change. Signals coalesce; read
// Snapshot after receiving one.
func (p *Poller) Updates() <-chan struct{} {
	return p.updates
}

// Interval returns the configured tick interval
func (p *Poller) Interval() time.Duration {
	return p.cfg.Interval
}

func (p *Poller) notify() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
