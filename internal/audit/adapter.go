package audit

import (
	"context"
	"encoding/json"
	"time"

	"tenant-platform/internal/rbac"
	"tenant-platform/pkg/logger"
)

// Actor is the slice of the identity facade the denial adapter reads.
type Actor interface {
	CurrentUserID(ctx context.Context) (int64, bool)
	CurrentUserEmail(ctx context.Context) (string, bool)
}

// DenialAdapter bridges rbac denials to the audit Service. It keeps rbac free
// of any persistence dependency.
type DenialAdapter struct {
	Audit *Service
	Actor Actor
	// Timeout caps the append; zero means defaultDenialTimeout.
	Timeout time.Duration
}

const defaultDenialTimeout = 500 * time.Millisecond

// RecordDenied matches rbac.DenyHook. The append runs on the request path but
// never longer than Timeout, and is not cut short by the client going away.
func (a DenialAdapter) RecordDenied(ctx context.Context, d rbac.Decision) {
	if a.Audit == nil {
		return
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultDenialTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	e := Event{
		Type:      EventTypeAccessDenied,
		ActorRole: d.Role,
		Message:   d.Message,
	}
	if a.Actor != nil {
		e.ActorUserID, _ = a.Actor.CurrentUserID(ctx)
		e.ActorEmail, _ = a.Actor.CurrentUserEmail(ctx)
	}
	if meta, err := json.Marshal(map[string]any{"required": []string(d.Required)}); err == nil {
		e.Metadata = string(meta)
	}
	if err := a.Audit.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit append failed", "type", e.Type, "err", err)
	}
}
