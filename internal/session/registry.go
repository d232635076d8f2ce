package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
	"github.com/capitalize-ai/travelers-buddy/pkg/metrics"
)

// Factory builds the controller for a newly seen session ID.
type Factory func(id string) *Controller

type entry struct {
	mu       sync.Mutex
	ctrl     *Controller
	refs     int
	lastSeen time.Time
}

// Registry holds one controller per browser session. Operations on the same
// session run one at a time; sessions idle for longer than the timeout are
// dropped together with their archive.
type Registry struct {
	factory Factory
	idle    time.Duration
	logger  *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates a registry.
func NewRegistry(factory Factory, idle time.Duration, log *logger.Logger) *Registry {
	return &Registry{
		factory:  factory,
		idle:     idle,
		logger:   log,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Do runs fn with exclusive access to the controller of session id,
// creating the session on first use.
func (r *Registry) Do(id string, fn func(*Controller) error) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		e = &entry{ctrl: r.factory(id)}
		r.sessions[id] = e
		metrics.SessionsActive.Inc()
		r.logger.Debug("session created", zap.String("session_id", id))
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()
	err := fn(e.ctrl)
	e.mu.Unlock()

	r.mu.Lock()
	e.refs--
	e.lastSeen = r.now()
	r.mu.Unlock()

	return err
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap drops sessions that have been idle for longer than the timeout and
// returns how many were removed.
func (r *Registry) Reap() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	removed := 0
	for id, e := range r.sessions {
		if e.refs == 0 && e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
			metrics.SessionsActive.Dec()
			r.logger.Debug("session expired", zap.String("session_id", id))
		}
	}
	return removed
}

// Run reaps idle sessions periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(); n > 0 {
				r.logger.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}
