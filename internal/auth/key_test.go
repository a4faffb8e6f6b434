package auth

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"tenant-platform/internal/config"
	"tenant-platform/pkg/logger"
)

func TestNewSigningKey_EmptySecretIsFatal(t *testing.T) {
	if _, err := NewSigningKey("", nil); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestNewSigningKey_WeakSecretWarns(t *testing.T) {
	var buf bytes.Buffer
	k, err := NewSigningKey("short", logger.NewWithWriter("production", &buf))
	if err != nil {
		t.Fatalf("weak key must not be fatal: %v", err)
	}
	if !k.Weak() {
		t.Fatalf("expected weak key")
	}
	if !strings.Contains(buf.String(), "weak") {
		t.Fatalf("expected weak-key warning, got %q", buf.String())
	}
}

func TestNewSigningKey_StrongSecretIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	k, err := NewSigningKey(testSecret, logger.NewWithWriter("production", &buf))
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if k.Weak() || buf.Len() != 0 {
		t.Fatalf("expected no warning for a %d-byte key, got %q", k.Len(), buf.String())
	}
}

func TestSigningKey_NeverPrintsSecret(t *testing.T) {
	k, _ := NewSigningKey(testSecret, nil)
	for _, s := range []string{fmt.Sprint(k), fmt.Sprintf("%v", k), fmt.Sprintf("%#v", k)} {
		if strings.Contains(s, testSecret) {
			t.Fatalf("secret leaked: %q", s)
		}
	}
}

func TestNewManager_LogsLifetimeAndSkew(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewManager(config.AuthConfig{
		JWTSecret:      testSecret,
		AccessTokenTTL: 90 * time.Second,
		ClockSkew:      30 * time.Second,
	}, logger.NewWithWriter("production", &buf))
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"token_ttl_ms":90000`) || !strings.Contains(out, `"clock_skew_seconds":30`) {
		t.Fatalf("expected startup log with ttl and skew, got %q", out)
	}
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(config.AuthConfig{AccessTokenTTL: time.Minute}, logger.Discard())
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
