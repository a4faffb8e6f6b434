package auth

import (
	"errors"
	"log/slog"
)

// MinKeyLength is the smallest HS256 secret, in bytes, not reported as weak.
const MinKeyLength = 32

var ErrMissingSecret = errors.New("JWT_SECRET is required")

// SigningKey is the single symmetric secret used to sign and verify tokens.
// It is immutable after construction and safe for concurrent reads.
type SigningKey struct {
	b []byte
}

// NewSigningKey validates the configured secret. An empty secret is fatal; a
// short one is accepted with a warning.
func NewSigningKey(secret string, log *slog.Logger) (SigningKey, error) {
	if secret == "" {
		return SigningKey{}, ErrMissingSecret
	}
	k := SigningKey{b: []byte(secret)}
	if k.Weak() && log != nil {
		log.Warn("jwt signing secret is weak; use at least 32 bytes for HS256",
			"length", k.Len(),
			"recommended", MinKeyLength,
		)
	}
	return k, nil
}

func (k SigningKey) Len() int { return len(k.b) }

func (k SigningKey) Weak() bool { return len(k.b) < MinKeyLength }

func (k SigningKey) bytes() []byte { return k.b }

// String never reveals the secret.
func (k SigningKey) String() string { return "[REDACTED]" }

func (k SigningKey) GoString() string { return "[REDACTED]" }
