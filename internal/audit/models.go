package audit

import "time"

// Event is an immutable, append-only audit record of an authentication or
// authorization event.
//
// Invariants:
// - Events are never updated or deleted.
// - actor and ip capture are best-effort; do not block critical flows on audit failures.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// ActorUserID is zero when the caller is unknown (e.g. failed login).
	ActorUserID int64  `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorEmail  string `json:"actor_email,omitempty" db:"actor_email"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress is the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLoginSucceeded EventType = "login_succeeded"
	EventTypeLoginFailed    EventType = "login_failed"
	EventTypeTokenRefreshed EventType = "token_refreshed"
	EventTypeLogout         EventType = "logout"
	EventTypeAccessDenied   EventType = "access_denied"
)
