// Package manager is the coordinator of launchgeist: it resolves client
// selections against the resource catalog, creates sessions, keeps them in
// the registry and answers status queries.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mfulz/launchgeist/internal/launch"
	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/mfulz/launchgeist/internal/session"
	"github.com/mfulz/launchgeist/protocol"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the catalog and the session registry.
type Manager struct {
	mu       sync.RWMutex
	catalog  *resource.Catalog
	registry *session.Registry
	planOpts launch.Options
	metrics  session.MetricsCollector
	ctx      context.Context
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics sets the collector handed to every session.
func WithMetrics(m session.MetricsCollector) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithContext sets the context sessions run with.
func WithContext(ctx context.Context) Option {
	return func(mgr *Manager) {
		mgr.ctx = ctx
	}
}

// WithRegistry uses an existing registry.
func WithRegistry(r *session.Registry) Option {
	return func(mgr *Manager) {
		mgr.registry = r
	}
}

// New creates a Manager for catalog. planOpts is used for every launch plan.
func New(catalog *resource.Catalog, planOpts launch.Options, opts ...Option) *Manager {
	if catalog == nil {
		catalog = &resource.Catalog{}
	}
	m := &Manager{
		catalog:  catalog,
		registry: session.NewRegistry(),
		planOpts: planOpts,
		metrics:  session.NewNoopMetricsCollector(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the current catalog.
func (m *Manager) Catalog() *resource.Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog
}

// SetCatalog replaces the catalog. Existing sessions keep their configuration.
func (m *Manager) SetCatalog(c *resource.Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = c
}

// Registry returns the session registry.
func (m *Manager) Registry() *session.Registry {
	return m.registry
}

// Launch resolves sel, creates a session for it and starts its first run.
func (m *Manager) Launch(sel resource.Selection) (*session.Session, error) {
	cfg, err := m.Catalog().Resolve(sel)
	if err != nil {
		return nil, err
	}
	return m.LaunchConfiguration(cfg)
}

// LaunchConfiguration creates and starts a session for an already resolved configuration.
func (m *Manager) LaunchConfiguration(cfg resource.Configuration) (*session.Session, error) {
	s, err := m.Create(cfg)
	if err != nil {
		return nil, err
	}
	s.Execute()
	logging.Log.Infof("[manager] launched session %s (%s on %s)", s.ID(), cfg.App.Label, cfg.Jdk.Label)
	return s, nil
}

// Create registers a PENDING session for cfg without starting it.
func (m *Manager) Create(cfg resource.Configuration) (*session.Session, error) {
	plan, err := launch.NewPlan(cfg, m.planOpts)
	if err != nil {
		return nil, err
	}
	s := session.New(cfg, plan, session.WithMetrics(m.metrics), session.WithContext(m.ctx))
	if err := m.registry.Add(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Relaunch starts another run of session id. It returns false if the
// session is still running.
func (m *Manager) Relaunch(id string) (*session.Session, bool, error) {
	s, ok := m.registry.Get(id)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	started := s.Execute()
	if started {
		logging.Log.Infof("[manager] relaunched session %s", id)
	} else {
		logging.Log.Infof("[manager] session %s is still running, relaunch ignored", id)
	}
	return s, started, nil
}

// Status returns the snapshot of session id.
func (m *Manager) Status(id string) (session.Info, error) {
	s, ok := m.registry.Get(id)
	if !ok {
		return session.Info{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.Info(), nil
}

// List returns snapshots of every session in creation order.
func (m *Manager) List() []session.Info {
	sessions := m.registry.Sessions()
	out := make([]session.Info, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Info())
	}
	return out
}

// AnyRunning reports whether any session is STARTED.
func (m *Manager) AnyRunning() bool {
	return m.registry.IsAnyRunning()
}

// Running returns the number of STARTED sessions.
func (m *Manager) Running() int {
	return m.registry.Running()
}

// WaitAll blocks until no session is running or ctx is done.
func (m *Manager) WaitAll(ctx context.Context) error {
	for {
		pending := false
		for _, s := range m.registry.Sessions() {
			if s.IsRunning() {
				pending = true
				if err := s.Wait(ctx); err != nil {
					return err
				}
			}
		}
		if !pending {
			return nil
		}
	}
}

// SessionInfo converts a snapshot to its wire form.
func SessionInfo(i session.Info) protocol.SessionInfo {
	out := protocol.SessionInfo{
		ID:         i.ID,
		App:        i.App,
		Jdk:        i.Jdk,
		UserDir:    i.UserDir,
		Plugins:    i.Plugins,
		WorkingDir: i.WorkingDir,
		Ephemeral:  i.Ephemeral,
		State:      i.State.String(),
		Runs:       i.Runs,
		CreatedAt:  i.CreatedAt,
		StartedAt:  i.StartedAt,
		EndedAt:    i.EndedAt,
	}
	if i.LastError != nil {
		out.LastError = i.LastError.Error()
		out.ErrorCode = string(launcherr.CodeOf(i.LastError))
	}
	return out
}

// Resources lists the catalog in wire form.
func (m *Manager) Resources() protocol.ResourceListResponse {
	c := m.Catalog()
	out := protocol.ResourceListResponse{
		Apps:     []protocol.ResourceItem{},
		Jdks:     []protocol.ResourceItem{},
		UserDirs: []protocol.ResourceItem{{Label: resource.TempLabel}},
		Plugins:  []protocol.ResourceItem{},
	}
	for _, a := range c.Apps {
		out.Apps = append(out.Apps, protocol.ResourceItem{Label: a.Label, Location: a.File})
	}
	for _, j := range c.Jdks {
		out.Jdks = append(out.Jdks, protocol.ResourceItem{Label: j.Label, Location: j.JavaHome})
	}
	for _, u := range c.UserDirs {
		out.UserDirs = append(out.UserDirs, protocol.ResourceItem{Label: u.Label, Location: u.Folder, Clone: u.Clone})
	}
	for _, p := range c.Plugins {
		out.Plugins = append(out.Plugins, protocol.ResourceItem{Label: p.Label, Location: p.File})
	}
	return out
}
