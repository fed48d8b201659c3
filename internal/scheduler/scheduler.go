// Package scheduler keeps a waiting client's view of the game fresh by
// polling on a fixed period. Polling stops after a run of polls with no user
// activity, on any error, and for good once the game is over.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jwebster45206/piously-console/internal/logger"
)

// State is the scheduler's position in its lifecycle.
type State int

const (
	Idle State = iota
	Running
	Paused
	Halted
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Halted:
		return "halted"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Stopped is true for Paused and Halted. A key event restarts a stopped
// scheduler.
func (s State) Stopped() bool {
	return s == Paused || s == Halted
}

// Poller is the part of the controller the scheduler drives.
type Poller interface {
	Poll(ctx context.Context) error
	ShouldPoll() bool
	GameOver() bool
}

// Status is a snapshot for the UI.
type Status struct {
	State State
	Ticks int
	Err   error
}

// Label is the status line text.
func (s Status) Label() string {
	switch s.State {
	case Running:
		return "auto-refresh active"
	case Paused, Halted:
		return "auto-refresh paused"
	case Terminated:
		return "auto-refresh off, game over"
	default:
		return ""
	}
}

type Scheduler struct {
	clock    clockwork.Clock
	poller   Poller
	interval time.Duration
	maxTicks int
	logger   *slog.Logger

	mu       sync.Mutex
	ctx      context.Context
	state    State
	ticks    int
	err      error
	timer    clockwork.Timer
	cancel   chan struct{}
	gen      uint64
	onChange []func(Status)
}

// New creates an idle scheduler. In production pass clockwork.NewRealClock().
func New(clock clockwork.Clock, poller Poller, interval time.Duration, maxTicks int, log *slog.Logger) *Scheduler {
	return &Scheduler{
		clock:    clock,
		poller:   poller,
		interval: interval,
		maxTicks: maxTicks,
		logger:   log,
		ctx:      context.Background(),
	}
}

// OnChange registers fn to be called after every state transition.
func (s *Scheduler) OnChange(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Scheduler) statusLocked() Status {
	return Status{State: s.state, Ticks: s.ticks, Err: s.err}
}

// Start arms the timer for a new session. Polls run with ctx until it is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.disarmLocked()
	s.ctx = ctx
	s.ticks = 0
	s.err = nil
	s.state = Running
	s.armLocked()
	s.mu.Unlock()

	s.logger.Debug("Auto-refresh started", "interval", s.interval, "max_ticks", s.maxTicks)
	s.notify()
}

// ResetTicks restarts the idle countdown after a successful user action.
func (s *Scheduler) ResetTicks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = 0
}

// Halt stops polling after a failed request. Only a key event restarts it.
func (s *Scheduler) Halt(err error) {
	s.mu.Lock()
	if s.state == Terminated {
		s.mu.Unlock()
		return
	}
	if s.state == Halted {
		s.err = err
		s.mu.Unlock()
		return
	}
	s.disarmLocked()
	s.state = Halted
	s.err = err
	s.mu.Unlock()

	logger.WithError(s.logger, err).Info("Auto-refresh halted")
	s.notify()
}

// Resume restarts a stopped scheduler with a fresh tick count. It reports
// whether polling restarted. A stopped scheduler whose game has ended is
// terminated instead.
func (s *Scheduler) Resume() bool {
	if s.poller.GameOver() {
		if s.Status().State.Stopped() {
			s.Terminate()
		}
		return false
	}

	s.mu.Lock()
	if !s.state.Stopped() {
		s.mu.Unlock()
		return false
	}
	s.ticks = 0
	s.err = nil
	s.state = Running
	s.armLocked()
	s.mu.Unlock()

	s.logger.Debug("Auto-refresh resumed")
	s.notify()
	return true
}

// Stop cancels the timer and returns to Idle. Used when a session is
// abandoned.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.disarmLocked()
	s.state = Idle
	s.ticks = 0
	s.err = nil
	s.mu.Unlock()

	s.notify()
}

// Terminate stops polling for good once the game is over, whatever state
// the scheduler is in. Only Start leaves Terminated.
func (s *Scheduler) Terminate() {
	s.mu.Lock()
	if s.state == Terminated {
		s.mu.Unlock()
		return
	}
	s.disarmLocked()
	s.state = Terminated
	s.mu.Unlock()

	s.logger.Info("Game over, auto-refresh terminated")
	s.notify()
}

// armLocked schedules the next firing. Callers hold s.mu.
func (s *Scheduler) armLocked() {
	s.gen++
	gen := s.gen
	timer := s.clock.NewTimer(s.interval)
	cancel := make(chan struct{})
	s.timer = timer
	s.cancel = cancel
	ctx := s.ctx

	go func() {
		select {
		case <-timer.Chan():
			s.fire(ctx, gen)
		case <-cancel:
		case <-ctx.Done():
			stopAndDrainTimer(timer)
		}
	}()
}

// disarmLocked cancels any pending firing. Callers hold s.mu.
func (s *Scheduler) disarmLocked() {
	s.gen++
	if s.timer != nil {
		stopAndDrainTimer(s.timer)
		s.timer = nil
	}
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
}

func (s *Scheduler) fire(ctx context.Context, gen uint64) {
	if !s.current(gen) {
		return
	}

	if s.poller.GameOver() {
		s.terminate(gen)
		return
	}

	if s.poller.ShouldPoll() {
		s.mu.Lock()
		s.ticks++
		tick := s.ticks
		s.mu.Unlock()

		s.logger.Debug("Polling game state", "tick", tick)
		if err := s.poller.Poll(ctx); err != nil {
			// A poll from a stopped or restarted run must not halt the new one.
			if s.current(gen) {
				s.Halt(err)
			}
			return
		}
		if s.poller.GameOver() {
			s.terminate(gen)
			return
		}
	}

	s.mu.Lock()
	// Halted, stopped, or restarted while the poll was in flight.
	if gen != s.gen || s.state != Running {
		s.mu.Unlock()
		return
	}
	if s.ticks >= s.maxTicks {
		s.timer = nil
		s.cancel = nil
		s.state = Paused
		s.mu.Unlock()

		s.logger.Info("Auto-refresh paused after idle polls", "ticks", s.maxTicks)
		s.notify()
		return
	}
	s.armLocked()
	s.mu.Unlock()
}

func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen && s.state == Running
}

func (s *Scheduler) terminate(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Running {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.cancel = nil
	s.state = Terminated
	s.mu.Unlock()

	s.logger.Info("Game over, auto-refresh terminated")
	s.notify()
}

func (s *Scheduler) notify() {
	s.mu.Lock()
	st := s.statusLocked()
	fns := append([]func(Status){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
