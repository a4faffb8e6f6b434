package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepo keeps auth events in process, in append order. Tests and local
// runs only.
type MemoryRepo struct {
	mu  sync.RWMutex
	log []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.log = append(r.log, e)
	r.mu.Unlock()
	return nil
}

// Events is a copy of everything appended so far.
func (r *MemoryRepo) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.log)
}

// ByType filters Events by event type.
func (r *MemoryRepo) ByType(t EventType) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Event
	for _, e := range r.log {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
