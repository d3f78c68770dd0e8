package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the nominal tick period (5Hz).
const DefaultInterval = 200 * time.Millisecond

// Tick is one firing of the scheduler. Delta is the measured wall-clock time since the
// previous tick, in seconds. Epoch identifies the baseline Delta was measured against.
type Tick struct {
	Delta float64
	Epoch uint64
}

// TickFunc receives every tick.
type TickFunc func(t Tick)

// Scheduler drives the match clocks at a fixed cadence.
//
// The delta handed to callbacks is measured against the clock, not assumed from the
// interval, so timer jitter and process suspension are corrected on the next tick.
type Scheduler struct {
	clock    clockwork.Clock
	interval time.Duration

	mu        sync.Mutex
	callbacks []TickFunc
	last      time.Time
	epoch     uint64
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Scheduler. A nil clock uses the real clock and a non-positive interval uses DefaultInterval.
func New(clock clockwork.Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		clock:    clock,
		interval: interval,
	}
}

// OnTick registers a callback. Callbacks run in registration order on the scheduler goroutine.
func (s *Scheduler) OnTick(fn TickFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Start anchors the baseline to now and begins ticking. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.last = s.clock.Now()
	s.running = true

	ticker := s.clock.NewTicker(s.interval)
	go s.loop(ctx, ticker, s.done)
	log.Debug("Tick scheduler started", "interval", s.interval)
}

// Stop halts ticking and waits for an in-flight tick to finish.
// It must not be called from inside a tick callback.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	log.Debug("Tick scheduler stopped")
}

// Running reports whether the scheduler is ticking.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Rebase re-anchors the delta baseline to now, discarding time accumulated since the last tick.
// A tick measured before the rebase but not yet consumed becomes stale.
func (s *Scheduler) Rebase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = s.clock.Now()
	s.epoch++
}

// Epoch returns the current baseline generation.
func (s *Scheduler) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Stale reports whether t was measured against a baseline that has since been rebased.
func (s *Scheduler) Stale(t Tick) bool {
	return t.Epoch != s.Epoch()
}

func (s *Scheduler) loop(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.tick()
		}
	}
}

// tick measures the elapsed time since the baseline and fans it out to the callbacks.
func (s *Scheduler) tick() {
	s.mu.Lock()
	now := s.clock.Now()
	delta := now.Sub(s.last).Seconds()
	s.last = now
	epoch := s.epoch
	callbacks := make([]TickFunc, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	if delta < 0 {
		delta = 0
	}
	for _, fn := range callbacks {
		fn(Tick{Delta: delta, Epoch: epoch})
	}
}
