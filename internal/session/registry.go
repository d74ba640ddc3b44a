package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/google/uuid"
)

// Factory builds a session for a new id
type Factory func(ctx context.Context, id string) (*Session, error)

// Registry keeps the live sessions of the HTTP server and expires idle ones
type Registry struct {
	factory       Factory
	catalog       *CatalogLoader
	idleTimeout   time.Duration
	sweepInterval time.Duration
	maxSessions   int
	logger        *observability.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	ready    atomic.Bool
}

var _ serviceinterfaces.Lifecycle = (*Registry)(nil)

// NewRegistry creates a registry. catalog is the loader shared by every session the factory builds.
func NewRegistry(cfg *config.SessionConfig, catalog *CatalogLoader, factory Factory, logger *observability.Logger) *Registry {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = config.DefaultSessionIdleTimeout
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = config.DefaultSessionSweepInterval
	}
	return &Registry{
		factory:       factory,
		catalog:       catalog,
		idleTimeout:   idle,
		sweepInterval: sweep,
		maxSessions:   cfg.MaxSessions,
		logger:        logger,
		sessions:      make(map[string]*Session),
	}
}

// Languages returns the shared language catalog
func (r *Registry) Languages(ctx context.Context) (Catalog, error) {
	return r.catalog.Load(ctx)
}

// Create builds and registers a new session
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	full := r.maxSessions > 0 && len(r.sessions) >= r.maxSessions
	r.mu.Unlock()
	if full {
		return nil, contextutils.Derive(contextutils.ErrServiceUnavailable, "too many active sessions", nil)
	}

	s, err := r.factory(ctx, uuid.NewString())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	observability.AddActiveSessions(ctx, 1)
	r.logger.Info(ctx, "Session created", map[string]interface{}{"session_id": s.ID()})
	return s, nil
}

// Get returns a live session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, contextutils.Derive(contextutils.ErrSessionNotFound, id, nil)
	}
	return s, nil
}

// Remove closes and forgets a session. Unknown ids are ignored.
func (r *Registry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
		observability.AddActiveSessions(ctx, -1)
		r.logger.Info(ctx, "Session removed", map[string]interface{}{"session_id": id})
	}
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns how many it closed
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastActive()) > r.idleTimeout {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		observability.AddActiveSessions(ctx, -1)
	}
	if len(expired) > 0 {
		r.logger.Info(ctx, "Expired idle sessions", map[string]interface{}{"count": len(expired)})
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(ctx, now)
		}
	}
}

// Startup marks the registry ready
func (r *Registry) Startup(_ context.Context) error {
	r.ready.Store(true)
	return nil
}

// Shutdown closes every session
func (r *Registry) Shutdown(ctx context.Context) error {
	r.ready.Store(false)

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	observability.AddActiveSessions(ctx, -int64(len(sessions)))
	r.logger.Info(ctx, "Closed all sessions", map[string]interface{}{"count": len(sessions)})
	return nil
}

// IsReady reports whether the registry accepts sessions
func (r *Registry) IsReady() bool {
	return r.ready.Load()
}
