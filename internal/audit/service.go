package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records auth events. Callers treat it as best-effort: a failed
// append is logged, never surfaced to the client.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	if e.IPAddress == "" {
		e.IPAddress = ClientIPFromContext(ctx)
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) LogLoginSucceeded(ctx context.Context, userID int64, email, role string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLoginSucceeded,
		ActorUserID: userID,
		ActorEmail:  email,
		ActorRole:   role,
		Message:     "login succeeded",
	})
}

// LogLoginFailed records the attempted email; the reason stays generic.
func (s *Service) LogLoginFailed(ctx context.Context, email, reason string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeLoginFailed,
		ActorEmail: email,
		Message:    reason,
	})
}

func (s *Service) LogTokenRefreshed(ctx context.Context, userID int64, email string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeTokenRefreshed,
		ActorUserID: userID,
		ActorEmail:  email,
		Message:     "access token reissued from refresh credential",
	})
}

func (s *Service) LogLogout(ctx context.Context, userID int64, email string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLogout,
		ActorUserID: userID,
		ActorEmail:  email,
		Message:     "refresh credential revoked",
	})
}
