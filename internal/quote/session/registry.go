package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"property-quote/internal/common/errors"
	"property-quote/internal/common/metrics"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/rating"
	"property-quote/internal/quote/scheduler"
)

// Registry keeps sessions in memory. Each session gets its own scheduler.
type Registry struct {
	engine    *rating.Engine
	schedOpts []scheduler.Option
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	catalog  *catalog.Catalog
	sessions map[string]*Session
}

// NewRegistry creates a registry. Sessions idle for longer than idleTTL are removed by Sweep;
// zero disables expiry.
func NewRegistry(c *catalog.Catalog, idleTTL time.Duration, schedOpts ...scheduler.Option) *Registry {
	return &Registry{
		engine:    rating.NewEngine(c),
		schedOpts: schedOpts,
		idleTTL:   idleTTL,
		now:       time.Now,
		catalog:   c,
		sessions:  make(map[string]*Session),
	}
}

// Catalog returns the catalog new sessions are created with.
func (r *Registry) Catalog() *catalog.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

// SetCatalog swaps the catalog used for new sessions (after a reference-data refresh).
// Existing sessions keep the catalog they started with.
func (r *Registry) SetCatalog(c *catalog.Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = c
	r.engine = rating.NewEngine(c)
}

func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sched := scheduler.New(r.engine.Quote, r.schedOpts...)
	s := newSession(uuid.NewString(), r.catalog, sched, r.now().UTC())
	r.sessions[s.ID] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	return s, nil
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}
