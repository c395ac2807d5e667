// Package session tracks one launched application per Session, runs each
// launch on its own goroutine and keeps all sessions of a process in a
// Registry so the coordinator can tell whether anything is still running.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/mfulz/launchgeist/internal/userdir"
)

// Planner performs the work of a run. The first run calls Init and Launch,
// later runs call Prepare and Launch against the same directory.
type Planner interface {
	Init(ctx context.Context) (userdir.WorkingDirectory, error)
	Prepare(ctx context.Context, dir string) error
	Launch(ctx context.Context, dir string) error
}

// Info is a point-in-time snapshot of a session.
type Info struct {
	ID         string
	App        string
	Jdk        string
	UserDir    string
	Plugins    []string
	WorkingDir string
	Ephemeral  bool
	State      State
	Runs       int
	LastError  error
	CreatedAt  time.Time
	StartedAt  time.Time
	EndedAt    time.Time
}

// Session is one launchable Configuration and its lifecycle.
type Session struct {
	id      string
	cfg     resource.Configuration
	planner Planner
	metrics MetricsCollector
	ctx     context.Context

	mu          sync.Mutex
	state       State
	dir         userdir.WorkingDirectory
	initialized bool
	runs        int
	lastErr     error
	createdAt   time.Time
	startedAt   time.Time
	endedAt     time.Time
	done        chan struct{}
	observers   []func(StateChange)
	pending     []pendingChange
	delivering  bool
}

// pendingChange is a transition waiting for delivery. after runs once the
// observers returned.
type pendingChange struct {
	change    StateChange
	observers []func(StateChange)
	after     func()
}

// Option configures a Session.
type Option func(*Session)

// WithMetrics sets the MetricsCollector.
func WithMetrics(m MetricsCollector) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithContext sets the context runs are executed with.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// New creates a PENDING session for cfg.
func New(cfg resource.Configuration, planner Planner, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		planner:   planner,
		metrics:   NewNoopMetricsCollector(),
		ctx:       context.Background(),
		state:     StatePending,
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Configuration returns the configuration the session launches.
func (s *Session) Configuration() resource.Configuration {
	return s.cfg
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRunning reports whether a run is in progress.
func (s *Session) IsRunning() bool {
	return s.State() == StateStarted
}

// LastError returns the error of the most recent finished run.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers fn for state transitions. fn is called outside the
// session lock, one transition at a time and in the order the transitions
// happened.
func (s *Session) Subscribe(fn func(StateChange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Execute starts a run in the background and returns true, or returns false
// without doing anything if a run is already in progress.
func (s *Session) Execute() bool {
	s.mu.Lock()
	if s.state == StateStarted {
		s.mu.Unlock()
		return false
	}
	old := s.state
	s.state = StateStarted
	s.runs++
	s.startedAt = time.Now()
	s.done = make(chan struct{})
	done := s.done
	s.enqueue(StateChange{SessionID: s.id, Old: old, New: StateStarted}, nil)
	s.mu.Unlock()

	s.deliver()
	go s.run(done)
	return true
}

// Wait blocks until the current run finishes and its observers were
// notified, or until ctx is done. It returns immediately for a session that
// never ran.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	plugins := make([]string, 0, len(s.cfg.Plugins))
	for _, p := range s.cfg.Plugins {
		plugins = append(plugins, p.Label)
	}

	return Info{
		ID:         s.id,
		App:        s.cfg.App.Label,
		Jdk:        s.cfg.Jdk.Label,
		UserDir:    s.cfg.ResolvedUserDir().Label,
		Plugins:    plugins,
		WorkingDir: s.dir.Path,
		Ephemeral:  s.dir.Ephemeral,
		State:      s.state,
		Runs:       s.runs,
		LastError:  s.lastErr,
		CreatedAt:  s.createdAt,
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
	}
}

func (s *Session) run(done chan struct{}) {
	start := time.Now()
	err := s.work()
	if err != nil {
		logging.Log.Errorf("[session] %s (%s) failed: %v", s.id, s.cfg.App.Label, err)
	} else {
		logging.Log.Infof("[session] %s (%s) finished", s.id, s.cfg.App.Label)
	}

	s.mu.Lock()
	s.state = StateDone
	s.lastErr = err
	s.endedAt = time.Now()
	s.enqueue(StateChange{SessionID: s.id, Old: StateStarted, New: StateDone, Err: err}, func() { close(done) })
	s.mu.Unlock()

	s.metrics.RunCompleted(time.Since(start), err)
	s.deliver()
}

// work runs one Init-or-Prepare then Launch cycle. Panics become errors.
func (s *Session) work() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during run: %v", r)
		}
	}()

	s.mu.Lock()
	initialized := s.initialized
	dir := s.dir
	s.mu.Unlock()

	if !initialized {
		wd, err := s.planner.Init(s.ctx)
		s.mu.Lock()
		if wd.Path != "" {
			s.dir = wd
		}
		s.initialized = err == nil
		s.mu.Unlock()
		if err != nil {
			return err
		}
		dir = wd
	} else if err := s.planner.Prepare(s.ctx, dir.Path); err != nil {
		return err
	}

	if dir.Path == "" {
		return errors.New("planner returned no working directory")
	}
	return s.planner.Launch(s.ctx, dir.Path)
}

func (s *Session) snapshotObservers() []func(StateChange) {
	out := make([]func(StateChange), len(s.observers))
	copy(out, s.observers)
	return out
}

// enqueue records a transition for delivery. The caller holds s.mu, so the
// queue order is the transition order.
func (s *Session) enqueue(change StateChange, after func()) {
	s.pending = append(s.pending, pendingChange{change: change, observers: s.snapshotObservers(), after: after})
}

// deliver drains the queue. A goroutine that finds another one delivering
// leaves its transitions to it.
func (s *Session) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.notify(next.observers, next.change)
		if next.after != nil {
			next.after()
		}

		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func (s *Session) notify(observers []func(StateChange), change StateChange) {
	s.metrics.StateTransition(change.Old, change.New)
	for _, fn := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Log.Warnf("[session] observer panicked on %s -> %s: %v", change.Old, change.New, r)
				}
			}()
			fn(change)
		}()
	}
}
