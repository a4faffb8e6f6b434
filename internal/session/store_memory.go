package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu    sync.Mutex
	creds map[string]Credential
	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential), clock: time.Now}
}

// WithClock overrides the expiry clock.
func (s *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	s.clock = clock
	return s
}

func (s *MemoryStore) Save(ctx context.Context, c Credential) error {
	_ = ctx
	if c.Hash == "" || c.UserID == 0 {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[c.Hash] = c
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, raw string) (Credential, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	h := HashCredential(raw)
	c, ok := s.creds[h]
	if !ok {
		return Credential{}, false, nil
	}
	delete(s.creds, h)
	if c.Expired(s.clock()) {
		return Credential{}, false, nil
	}
	return c, true, nil
}

// Len is the number of stored credentials.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creds)
}
