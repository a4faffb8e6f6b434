package users

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and local runs.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[int64]Record
	err   error
	calls int
}

func NewMemoryRepo(records ...Record) *MemoryRepo {
	r := &MemoryRepo{byID: make(map[int64]Record, len(records))}
	for _, rec := range records {
		r.Put(rec)
	}
	return r
}

func (r *MemoryRepo) Put(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Email = NormalizeEmail(rec.Email)
	r.byID[rec.ID] = rec
}

// FailWith makes every subsequent lookup return err, simulating an outage.
func (r *MemoryRepo) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Calls is the number of lookups served so far.
func (r *MemoryRepo) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (Record, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return Record{}, false, r.err
	}
	rec, ok := r.byID[id]
	return rec, ok, nil
}

func (r *MemoryRepo) FindByEmail(ctx context.Context, email string) (Record, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return Record{}, false, r.err
	}
	email = NormalizeEmail(email)
	for _, rec := range r.byID {
		if rec.Email == email {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}
