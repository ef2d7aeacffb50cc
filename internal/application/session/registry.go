package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/reviewlens/internal/application"
	"github.com/bryanwahyu/reviewlens/internal/application/analysis"
)

const sweepInterval = time.Minute

type entry struct {
	controller *analysis.Controller
	lastSeen   time.Time
}

// Registry keeps one analysis controller per browser session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	factory  func() *analysis.Controller
	clock    application.Clock
}

// NewRegistry creates a registry whose controllers come from factory.
// Sessions unused for longer than ttl are dropped by Sweep.
func NewRegistry(ttl time.Duration, factory func() *analysis.Controller, clock application.Clock) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		clock:    application.OrSystem(clock),
	}
}

// Get returns the controller for id without creating one.
func (r *Registry) Get(id string) (*analysis.Controller, bool) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	r.touch(id)
	return e.controller, true
}

// Acquire returns the controller for id, creating a new session when id is
// empty or unknown. The returned id is the one the caller should keep.
func (r *Registry) Acquire(id string) (string, *analysis.Controller) {
	if id != "" {
		if c, ok := r.Get(id); ok {
			return id, c
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if e, ok := r.sessions[id]; ok && id != "" {
		e.lastSeen = r.clock.Now()
		return id, e.controller
	}

	id = uuid.NewString()
	c := r.factory()
	r.sessions[id] = &entry{controller: c, lastSeen: r.clock.Now()}
	slog.Debug("[Sessions] Session created", slog.String("session_id", id))
	return id, c
}

func (r *Registry) touch(id string) {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.clock.Now()
	}
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the ttl. Sessions with an
// analysis in flight are kept so the outcome is not lost.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	removed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl && !e.controller.Busy() {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on a ticker until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("[Sessions] Expired sessions removed",
					slog.Int("removed", n),
					slog.Int("remaining", r.Len()))
			}
		}
	}
}
