package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/metrics"
	"github.com/mauv0809/matchdesk/internal/notifier"
	"github.com/mauv0809/matchdesk/internal/pubsub"
	"github.com/mauv0809/matchdesk/internal/scheduler"
	"github.com/mauv0809/matchdesk/internal/store"
)

// Controller owns one observer's copy of the current match. Every change goes through
// it: local changes are persisted and broadcast, remote ones replace the local record.
type Controller struct {
	observerID string
	rules      clock.Rules
	store      *store.MatchStore
	bus        pubsub.Bus
	sched      *scheduler.Scheduler
	clock      clockwork.Clock
	metrics    metrics.Metrics
	counters   metrics.MetricsStore
	notifier   notifier.Notifier
	dryRun     bool

	mu            sync.Mutex
	rec           match.Record
	lastPersisted []byte

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	runCtx      context.Context
	cancelRun   context.CancelFunc
	unsubscribe func()
	done        chan struct{}
	notifyWG    sync.WaitGroup
}

// New creates a Controller holding the default unconfigured record. Call Load before use.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.New(opts.Clock, scheduler.DefaultInterval)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMock()
	}
	if opts.Notifier == nil {
		opts.Notifier = notifier.Noop{}
	}
	if opts.Rules == (clock.Rules{}) {
		opts.Rules = clock.DefaultRules()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		observerID: opts.ObserverID,
		rules:      opts.Rules,
		store:      opts.Store,
		bus:        opts.Bus,
		sched:      opts.Scheduler,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		counters:   opts.Counters,
		notifier:   opts.Notifier,
		dryRun:     opts.DryRun,
		rec:        match.New(opts.Rules),
		listeners:  make(map[int]Listener),
		runCtx:     ctx,
		cancelRun:  cancel,
	}
	c.sched.OnTick(c.onTick)
	return c
}

// ObserverID identifies this controller on the bus.
func (c *Controller) ObserverID() string { return c.observerID }

// Now reads the controller clock. Event wall times are stamped with it.
func (c *Controller) Now() time.Time { return c.clock.Now() }

// Rules returns the sport rules new records are created with.
func (c *Controller) Rules() clock.Rules { return c.rules }

// Load reads the current match from the store and joins the bus. A corrupt snapshot is
// logged and replaced in memory by the default record; the stored bytes are not touched.
func (c *Controller) Load(ctx context.Context) error {
	rec, data, err := c.store.LoadCurrent(ctx)
	var serr *store.SerializationError
	if err != nil && !errors.As(err, &serr) {
		return fmt.Errorf("failed to load current match: %w", err)
	}

	c.mu.Lock()
	c.rec = rec
	c.lastPersisted = data
	c.mu.Unlock()

	feed, unsubscribe := c.bus.Subscribe(c.observerID)
	c.unsubscribe = unsubscribe
	c.done = make(chan struct{})
	go c.listen(feed, c.done)

	if rec.Active() {
		c.sched.Start(c.runCtx)
	}
	log.Info("Controller loaded", "observer", c.observerID, "status", rec.Status, "match_id", rec.ID)
	return nil
}

// Close stops the scheduler, leaves the bus and waits for pending notifications.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		<-c.done
	}
	c.sched.Stop()
	c.cancelRun()
	c.notifyWG.Wait()
}

// Current returns a copy of the local record.
func (c *Controller) Current() match.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.Clone()
}

// History returns the finished matches, oldest first. A corrupt history reads as empty.
func (c *Controller) History(ctx context.Context) ([]match.Record, error) {
	h, err := c.store.LoadHistory(ctx)
	var serr *store.SerializationError
	if errors.As(err, &serr) {
		return h, nil
	}
	return h, err
}

// Subscribe registers a listener for local record changes and returns its cancel func.
func (c *Controller) Subscribe(fn Listener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

// Configure starts a new match with the given rosters. It fails with match.ErrValidation
// when a match is already configured, leaving the record unchanged.
func (c *Controller) Configure(ctx context.Context, home, away match.Team) (match.Record, error) {
	c.mu.Lock()
	rec, changed, err := c.commit(ctx, func(r match.Record) (match.Record, error) {
		return match.Configure(r, home, away, c.clock.Now())
	})
	if err != nil {
		c.mu.Unlock()
		return rec, err
	}
	c.handoff(rec, changed)

	if c.counters != nil {
		c.counters.Increment(metrics.KeyMatchesConfigured)
	}
	c.sched.Start(c.runCtx)
	log.Info("Match configured", "match_id", rec.ID, "home", rec.Home.Name, "away", rec.Away.Name)
	return rec, nil
}

// Mutate applies fn to a copy of the active record and commits the result as a whole.
// An error from fn leaves the record unchanged. Records that are not active reject
// every mutation with match.ErrNotActive.
func (c *Controller) Mutate(ctx context.Context, fn match.Updater) (match.Record, error) {
	c.mu.Lock()
	if !c.rec.Active() {
		rec := c.rec.Clone()
		c.mu.Unlock()
		c.metrics.IncRejectedMutations()
		return rec, match.ErrNotActive
	}
	rec, changed, err := c.commit(ctx, fn)
	if err != nil {
		c.mu.Unlock()
		return rec, err
	}
	c.handoff(rec, changed)
	return rec, nil
}

// Tick advances the clocks by delta seconds. It is a no-op, with no write, while
// neither the game clock nor a timeout is running.
func (c *Controller) Tick(delta float64) {
	c.mu.Lock()
	c.advance(delta)
}

// onTick drops a tick whose delta was measured before a remote snapshot rebased the
// scheduler; that time is already part of the snapshot.
func (c *Controller) onTick(t scheduler.Tick) {
	c.mu.Lock()
	if c.sched.Stale(t) {
		c.mu.Unlock()
		c.metrics.IncNoopTicks()
		log.Debug("Dropping stale tick", "delta", t.Delta)
		return
	}
	c.advance(t.Delta)
}

// advance commits the clock advance. c.mu must be held; it is released on return.
func (c *Controller) advance(delta float64) {
	if !c.rec.Active() || !c.rec.Clocks.Ticking() || delta <= 0 {
		c.mu.Unlock()
		c.metrics.IncNoopTicks()
		return
	}
	rec, changed, err := c.commit(c.runCtx, match.Advance(delta))
	if err != nil {
		c.mu.Unlock()
		log.Error("Tick failed", "error", err, "delta", delta)
		return
	}
	c.handoff(rec, changed)
	c.metrics.IncTicks()
}

// Finish force-stops the clocks, archives the record into history, clears the current
// slot and resets the local record to the default. It returns the finished record.
func (c *Controller) Finish(ctx context.Context) (match.Record, error) {
	c.mu.Lock()
	if !c.rec.Active() {
		c.mu.Unlock()
		return match.Record{}, match.ErrNotActive
	}
	finished, err := match.Finish(c.rec.Clone(), c.clock.Now())
	if err != nil {
		c.mu.Unlock()
		return match.Record{}, err
	}

	history, err := c.store.LoadHistory(ctx)
	var serr *store.SerializationError
	if errors.As(err, &serr) {
		// The archive is rewritten below; keep the unreadable bytes aside first.
		key, perr := c.store.PreserveHistory(ctx, c.clock.Now())
		if perr != nil {
			c.mu.Unlock()
			return match.Record{}, fmt.Errorf("history is corrupt and could not be preserved: %w", perr)
		}
		log.Error("Match history is corrupt, starting a new archive", "error", serr, "preserved_as", key)
	} else if err != nil {
		c.mu.Unlock()
		return match.Record{}, fmt.Errorf("failed to load history: %w", err)
	}
	histData, err := c.store.SaveHistory(ctx, append(history, finished))
	if err != nil {
		c.mu.Unlock()
		return match.Record{}, fmt.Errorf("failed to archive match: %w", err)
	}
	if err := c.store.ClearCurrent(ctx); err != nil {
		c.mu.Unlock()
		return match.Record{}, fmt.Errorf("failed to clear current match: %w", err)
	}
	c.publish(ctx, pubsub.Change{Key: store.HistoryKey, Value: histData})
	c.publish(ctx, pubsub.Change{Key: store.CurrentKey, Deleted: true})

	c.rec = match.New(c.rules)
	c.lastPersisted = nil
	c.handoff(c.rec.Clone(), true)

	c.sched.Stop()
	if c.counters != nil {
		c.counters.Increment(metrics.KeyMatchesFinished)
	}
	c.announce(finished, c.dryRun || notifier.IsDryRun(ctx))
	log.Info("Match finished", "match_id", finished.ID, "events", len(finished.Events))
	return finished, nil
}

// Discard removes a finished match from history. It fails with match.ErrNotFound
// when no history entry has the id.
func (c *Controller) Discard(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	history, err := c.History(ctx)
	if err != nil {
		return err
	}
	kept := make([]match.Record, 0, len(history))
	for _, r := range history {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(history) {
		return fmt.Errorf("%w: %s", match.ErrNotFound, id)
	}

	data, err := c.store.SaveHistory(ctx, kept)
	if err != nil {
		return fmt.Errorf("failed to rewrite history: %w", err)
	}
	c.publish(ctx, pubsub.Change{Key: store.HistoryKey, Value: data})
	if c.counters != nil {
		c.counters.Increment(metrics.KeyMatchesDiscarded)
	}
	log.Info("Match discarded", "match_id", id)
	return nil
}

// commit applies fn to a clone of the record and, unless the encoded result matches the
// last persisted bytes, persists and broadcasts it. c.mu must be held; it is still held
// on return.
func (c *Controller) commit(ctx context.Context, fn match.Updater) (match.Record, bool, error) {
	start := c.clock.Now()
	prev := c.rec
	next, err := fn(prev.Clone())
	if err != nil {
		c.metrics.IncRejectedMutations()
		return prev.Clone(), false, err
	}

	data, err := store.EncodeRecord(next)
	if err != nil {
		return prev.Clone(), false, &store.SerializationError{Key: store.CurrentKey, Err: err}
	}
	if bytes.Equal(data, c.lastPersisted) {
		c.rec = next
		c.metrics.IncSkippedWrites()
		return next.Clone(), false, nil
	}
	if err := c.store.SaveCurrent(ctx, data); err != nil {
		return prev.Clone(), false, fmt.Errorf("failed to persist match: %w", err)
	}

	c.rec = next
	c.lastPersisted = data
	c.metrics.IncMutations()
	c.metrics.IncSnapshotWrites()
	if n := len(next.Events) - len(prev.Events); n > 0 {
		c.metrics.IncEventsAppended(n)
	}
	c.publish(ctx, pubsub.Change{Key: store.CurrentKey, Value: data})
	c.metrics.ObserveCommitDuration(c.clock.Since(start).Seconds())
	return next.Clone(), true, nil
}

// publish broadcasts a change. Delivery is best-effort so failures are only logged.
func (c *Controller) publish(ctx context.Context, change pubsub.Change) {
	change.Origin = c.observerID
	change.At = c.clock.Now()
	if err := c.bus.Publish(ctx, change); err != nil {
		log.Warn("Failed to broadcast change", "error", err, "key", change.Key)
	}
}

// handoff releases c.mu and, when changed, runs the listeners with rec. Concurrent
// writers may reach their listeners in either order.
func (c *Controller) handoff(rec match.Record, changed bool) {
	c.mu.Unlock()
	if !changed {
		return
	}

	c.listenersMu.Lock()
	fns := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(rec.Clone())
	}
}

// announce sends the result notification in the background.
func (c *Controller) announce(rec match.Record, dryRun bool) {
	c.notifyWG.Add(1)
	go func() {
		defer c.notifyWG.Done()
		if _, err := c.notifier.SendMatchResult(rec, dryRun); err != nil {
			log.Error("Failed to send match result", "error", err, "match_id", rec.ID)
		}
	}()
}
