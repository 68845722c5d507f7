// Package refresh owns the polling loop of the dashboard: the recurring
// timer, manual refreshes, and reactions to visibility and network changes.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ipdash/internal/notify"
	"ipdash/internal/snapshot"
	"ipdash/internal/status"
)

// DefaultInterval is the auto-refresh period.
const DefaultInterval = 30 * time.Second

// Trigger records why a cycle ran.
type Trigger int

const (
	TriggerInitial Trigger = iota
	TriggerTimer
	TriggerManual
	TriggerVisible
	TriggerNetwork
)

func (t Trigger) String() string {
	switch t {
	case TriggerTimer:
		return "timer"
	case TriggerManual:
		return "manual"
	case TriggerVisible:
		return "visible"
	case TriggerNetwork:
		return "network"
	default:
		return "initial"
	}
}

// Sink receives the results of refresh cycles. Calls are serialised.
type Sink interface {
	SetStatus(kind status.Kind, label string)
	ApplySnapshot(s snapshot.Snapshot)
}

// Options configures a Controller. Zero values pick defaults, except
// AutoRefresh: the zero value leaves auto-refresh off.
type Options struct {
	Interval    time.Duration
	AutoRefresh bool
	Profile     Profile
	Clock       Clock
	Logger      zerolog.Logger
}

// armedTimer is a running ticker loop.
type armedTimer struct {
	ticker Ticker
	quit   chan struct{}
}

// Controller is the state of one dashboard's refresh loop. At most one
// timer is armed at any time. Fetches may overlap; each is numbered when it
// is issued and a result older than the last applied one is dropped.
type Controller struct {
	source   snapshot.Source
	sink     Sink
	notifier notify.Notifier
	interval time.Duration
	profile  Profile
	clock    Clock
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	auto    bool
	visible bool
	timer   *armedTimer
	closed  bool

	issued atomic.Uint64

	// emitMu orders sink calls and guards applied.
	emitMu  sync.Mutex
	applied uint64
}

// New creates a stopped controller.
func New(src snapshot.Source, sink Sink, n notify.Notifier, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = RealClock
	}
	if opts.Profile.Name == "" {
		opts.Profile = Portal
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		source:   src,
		sink:     sink,
		notifier: n,
		interval: opts.Interval,
		profile:  opts.Profile,
		clock:    opts.Clock,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		auto:     opts.AutoRefresh,
		visible:  true,
	}
}

// Profile returns the active profile.
func (c *Controller) Profile() Profile {
	return c.profile
}

// Interval returns the auto-refresh period.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// AutoRefresh reports whether auto-refresh is enabled.
func (c *Controller) AutoRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}

// Armed reports whether a timer is currently running.
func (c *Controller) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Boot performs the initial load and arms the timer.
func (c *Controller) Boot() {
	c.spawn(TriggerInitial)
	c.Start()
}

// Start cancels any armed timer and, when auto-refresh is on, arms a new
// one. It does not fetch by itself.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
}

// Stop disarms the timer. In-flight fetches are not cancelled.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()
}

// Toggle flips auto-refresh, arms or disarms the timer accordingly and
// returns the new setting.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	c.auto = !c.auto
	on := c.auto
	if on {
		c.startLocked()
	} else {
		c.disarmLocked()
	}
	c.mu.Unlock()

	if on {
		c.notifier.Notify(c.profile.AutoOnNotice, notify.Success)
	} else {
		c.notifier.Notify(c.profile.AutoOffNotice, notify.Success)
	}
	c.log.Info().Bool("auto_refresh", on).Msg("auto refresh toggled")
	return on
}

// Refresh runs one cycle now, independent of the timer.
func (c *Controller) Refresh() {
	c.spawn(TriggerManual)
	if c.profile.ManualNotice != "" {
		c.notifier.Notify(c.profile.ManualNotice, notify.Success)
	}
}

// SetVisible reacts to the dashboard being hidden or shown. Hiding only
// disarms the timer; showing again fetches once and re-arms so the data is
// never older than one period after a long absence.
func (c *Controller) SetVisible(visible bool) {
	c.mu.Lock()
	if c.visible == visible {
		c.mu.Unlock()
		return
	}
	c.visible = visible
	auto := c.auto
	if !visible && auto {
		c.disarmLocked()
	}
	c.mu.Unlock()

	c.log.Debug().Bool("visible", visible).Msg("visibility changed")
	if visible && auto {
		c.spawn(TriggerVisible)
		c.Start()
	}
}

// NetworkChanged reacts to connectivity transitions.
func (c *Controller) NetworkChanged(online bool) {
	if online {
		c.notifier.Notify(NetworkUpNotice, notify.Success)
		if c.AutoRefresh() {
			c.spawn(TriggerNetwork)
		}
		return
	}
	c.notifier.Notify(NetworkDownNotice, notify.Error)
	c.goTracked(func() {
		c.emitMu.Lock()
		defer c.emitMu.Unlock()
		c.sink.SetStatus(status.Offline, NetworkOfflineLabel)
	})
}

// RunOnce runs a cycle on the calling goroutine and reports whether the
// fetch succeeded.
func (c *Controller) RunOnce(ctx context.Context) bool {
	return c.cycle(ctx, TriggerInitial, c.issued.Add(1))
}

// Close disarms the timer, cancels in-flight fetches and waits for every
// goroutine the controller started.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.disarmLocked()
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) startLocked() {
	c.disarmLocked()
	if !c.auto || c.closed {
		return
	}
	t := &armedTimer{ticker: c.clock.NewTicker(c.interval), quit: make(chan struct{})}
	c.timer = t
	c.wg.Add(1)
	go c.loop(t)
}

func (c *Controller) disarmLocked() {
	if c.timer == nil {
		return
	}
	c.timer.ticker.Stop()
	close(c.timer.quit)
	c.timer = nil
}

func (c *Controller) loop(t *armedTimer) {
	defer c.wg.Done()
	for {
		select {
		case <-t.ticker.C():
			select {
			case <-t.quit:
				return
			default:
			}
			c.spawn(TriggerTimer)
		case <-t.quit:
			return
		}
	}
}

// spawn numbers the cycle before starting it, so issue order and
// generation order agree.
func (c *Controller) spawn(tr Trigger) {
	seq := c.issued.Add(1)
	c.goTracked(func() { c.cycle(c.ctx, tr, seq) })
}

func (c *Controller) goTracked(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Controller) preLabels(tr Trigger) []string {
	var labels []string
	switch tr {
	case TriggerTimer:
		labels = append(labels, c.profile.TickLabel)
	case TriggerManual:
		labels = append(labels, c.profile.ManualLabel)
	}
	return append(labels, c.profile.LoadLabel)
}

// cycle fetches once and hands the outcome to the sink. Errors and panics
// end here; the dashboard shows offline and the next trigger tries again.
func (c *Controller) cycle(ctx context.Context, tr Trigger, seq uint64) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("trigger", tr.String()).Uint64("seq", seq).Msg("refresh cycle panicked")
			c.emitMu.Lock()
			c.sink.SetStatus(status.Offline, CrashLabel)
			c.emitMu.Unlock()
			ok = false
		}
	}()

	for _, label := range c.preLabels(tr) {
		if label != "" {
			c.emitPending(seq, label)
		}
	}

	snap, err := c.source.Fetch(ctx)
	if ctx.Err() != nil {
		return false
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if seq < c.applied {
		c.log.Debug().Uint64("seq", seq).Uint64("applied", c.applied).Msg("dropping stale fetch result")
		return false
	}
	c.applied = seq
	if err != nil {
		c.log.Warn().Err(err).Str("trigger", tr.String()).Msg("snapshot fetch failed")
		c.sink.SetStatus(status.Offline, c.profile.OfflineLabel)
		c.sink.ApplySnapshot(snapshot.Unavailable(c.clock.Now(), c.profile.ErrorHistoryEntry))
		return false
	}
	c.sink.ApplySnapshot(snap)
	c.sink.SetStatus(status.Online, c.profile.OnlineLabel)
	c.log.Debug().Str("trigger", tr.String()).Str("ip", snap.LocalIP).Msg("snapshot applied")
	return true
}

func (c *Controller) emitPending(seq uint64, label string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if seq <= c.applied {
		return
	}
	c.sink.SetStatus(status.Updating, label)
}
