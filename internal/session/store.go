package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists refresh credentials.
type Store interface {
	Save(ctx context.Context, c Credential) error
	// Consume atomically removes and returns the credential for raw. A
	// credential can be consumed once: refresh rotates it, logout just drops
	// it and keeps the owner for the audit trail.
	Consume(ctx context.Context, raw string) (Credential, bool, error)
}

const keyPrefix = "auth:refresh:"

// RedisStore keeps credentials as JSON values that expire with the credential.
type RedisStore struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, clock: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, c Credential) error {
	if s.rdb == nil {
		return errors.New("session: redis client is nil")
	}
	if c.Hash == "" || c.UserID == 0 {
		return ErrInvalidArgument
	}
	ttl := c.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return ErrInvalidArgument
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding refresh credential: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+c.Hash, payload, ttl).Err()
}

func (s *RedisStore) Consume(ctx context.Context, raw string) (Credential, bool, error) {
	if s.rdb == nil {
		return Credential{}, false, errors.New("session: redis client is nil")
	}
	if raw == "" {
		return Credential{}, false, nil
	}
	payload, err := s.rdb.GetDel(ctx, keyPrefix+HashCredential(raw)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credential{}, false, nil
		}
		return Credential{}, false, err
	}
	var c Credential
	if err := json.Unmarshal(payload, &c); err != nil {
		return Credential{}, false, fmt.Errorf("decoding refresh credential: %w", err)
	}
	if c.Expired(s.clock()) {
		return Credential{}, false, nil
	}
	return c, true, nil
}
