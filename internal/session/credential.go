package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidArgument = errors.New("session: invalid argument")

// Credential is a long-lived, single-use refresh credential. The raw value is
// handed to the client once; stores only ever see its hash.
type Credential struct {
	Hash      string    `json:"hash"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// NewCredential mints a 256-bit random refresh credential for a user.
func NewCredential(userID int64, email string, ttl time.Duration, now time.Time) (raw string, c Credential, err error) {
	if userID == 0 || email == "" || ttl <= 0 {
		return "", Credential{}, ErrInvalidArgument
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", Credential{}, fmt.Errorf("generating refresh credential: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, Credential{
		Hash:      HashCredential(raw),
		UserID:    userID,
		Email:     email,
		IssuedAt:  now.UTC(),
		ExpiresAt: now.Add(ttl).UTC(),
	}, nil
}

// HashCredential is the storage key of a raw credential.
func HashCredential(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
