package users

import "time"

// Record is the user profile row the auth core reads. TenantScopeID groups the
// user's data for tenancy isolation.
type Record struct {
	ID            int64  `json:"id" db:"id"`
	TenantScopeID int64  `json:"tenant_scope_id" db:"tenant_scope_id"`
	Email         string `json:"email" db:"email"`
	DisplayName   string `json:"display_name" db:"display_name"`
	Role          string `json:"role" db:"role"`

	// PasswordHash is a bcrypt hash. Never serialized.
	PasswordHash string `json:"-" db:"password_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
