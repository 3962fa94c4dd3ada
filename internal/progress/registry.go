// Package progress tracks the percent-complete signal of running separation
// tasks. A Registry is owned by the server and shared by the job runner
// (writer) and the progress streams (readers).
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
)

type entry struct {
	terminalAt time.Time
	changed    chan struct{}
	value      domain.Progress
}

// Registry maps task ids to their latest progress value.
// Once an entry holds 100 or -1 it never changes again.
type Registry struct {
	entries   map[string]*entry
	now       func() time.Time
	logger    *logger.Logger
	retention time.Duration
	mu        sync.RWMutex
}

func NewRegistry(retention time.Duration, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Default()
	}
	return &Registry{
		entries:   make(map[string]*entry),
		now:       time.Now,
		logger:    log.WithComponent("progress"),
		retention: retention,
	}
}

// Set records a new value for id. It returns false when the entry is
// already terminal and the write was dropped.
func (r *Registry) Set(id string, value domain.Progress) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &entry{changed: make(chan struct{})}
		r.entries[id] = e
	} else if e.value.Terminal() {
		r.logger.Debug("Dropped write to terminal task", "task_id", id, "current", int(e.value), "attempted", int(value))
		return false
	}

	e.value = value
	if value.Terminal() {
		e.terminalAt = r.now()
	}
	close(e.changed)
	e.changed = make(chan struct{})
	return true
}

// Get returns the latest value for id, or 0 when the id is unknown.
func (r *Registry) Get(id string) domain.Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[id]; ok {
		return e.value
	}
	return domain.ProgressNotStarted
}

// Watch returns the current value and a channel closed on the next write.
// The channel is nil for unknown ids; readers never create entries.
func (r *Registry) Watch(id string) (domain.Progress, <-chan struct{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.ProgressNotStarted, nil
	}
	return e.value, e.changed
}

// Claim reserves id for a new job. A live (non-terminal) entry makes the
// claim fail with domain.ErrTaskInUse; a finished one is reset to 0.
func (r *Registry) Claim(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		if !e.value.Terminal() {
			return domain.ErrTaskInUse
		}
		close(e.changed)
	}

	r.entries[id] = &entry{changed: make(chan struct{})}
	return nil
}

// Evict drops terminal entries older than the retention period and
// returns how many were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.retention)
	removed := 0
	for id, e := range r.entries {
		if e.value.Terminal() && !e.terminalAt.After(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Run evicts finished entries periodically until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	r.run(ctx, constants.EvictionInterval)
}

func (r *Registry) run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.logger.Debug("Evicted finished tasks", "count", n, "remaining", r.Len())
			}
		}
	}
}
