package auth

import (
	"context"
	"log/slog"
	"slices"

	"tenant-platform/internal/rbac"
	"tenant-platform/internal/users"
	"tenant-platform/pkg/logger"
)

// UserLookup is the slice of the user store the identity facade needs.
type UserLookup interface {
	FindByID(ctx context.Context, userID int64) (users.Record, bool, error)
}

// Identity answers "who is calling" for the current request. It keeps no state
// of its own: every answer is derived from the bearer token that the token
// filter placed in ctx.
type Identity struct {
	tokens *Manager
	users  UserLookup
}

func NewIdentity(tokens *Manager, users UserLookup) *Identity {
	return &Identity{tokens: tokens, users: users}
}

// CurrentToken is the bearer token of the request, if one was presented and
// accepted by the filter.
func (i *Identity) CurrentToken(ctx context.Context) (string, bool) {
	return TokenFrom(ctx)
}

func (i *Identity) CurrentUserID(ctx context.Context) (int64, bool) {
	tok, ok := i.CurrentToken(ctx)
	if !ok {
		return 0, false
	}
	return i.tokens.ClaimInt64(tok, ClaimUserID)
}

// CurrentUserEmail is the token subject.
func (i *Identity) CurrentUserEmail(ctx context.Context) (string, bool) {
	tok, ok := i.CurrentToken(ctx)
	if !ok {
		return "", false
	}
	sub, err := i.tokens.ExtractSubject(tok)
	if err != nil {
		return "", false
	}
	return sub, true
}

func (i *Identity) CurrentUserDisplayName(ctx context.Context) (string, bool) {
	tok, ok := i.CurrentToken(ctx)
	if !ok {
		return "", false
	}
	return i.tokens.ClaimString(tok, ClaimDisplayName)
}

func (i *Identity) CurrentUserRole(ctx context.Context) (string, bool) {
	tok, ok := i.CurrentToken(ctx)
	if !ok {
		return "", false
	}
	return i.tokens.ClaimString(tok, ClaimRole)
}

func (i *Identity) HasRole(ctx context.Context, role string) bool {
	current, ok := i.CurrentUserRole(ctx)
	return ok && current == role
}

func (i *Identity) HasAnyRole(ctx context.Context, roles ...string) bool {
	current, ok := i.CurrentUserRole(ctx)
	return ok && slices.Contains(roles, current)
}

// IsOwnerOrAdmin is true for the owner of a resource and for ADMIN and
// SUPER_ADMIN callers regardless of ownership.
func (i *Identity) IsOwnerOrAdmin(ctx context.Context, ownerID int64) bool {
	if id, ok := i.CurrentUserID(ctx); ok && id == ownerID {
		return true
	}
	role, ok := i.CurrentUserRole(ctx)
	return ok && rbac.IsPrivileged(role)
}

// CurrentTenantScopeID resolves the caller's tenant scope from their user
// record. Callers without a record are scoped by their own user id: this keeps
// identities without a profile row working and assumes user ids and tenant
// scope ids never collide. Lookup failures degrade to unknown.
func (i *Identity) CurrentTenantScopeID(ctx context.Context) (int64, bool) {
	userID, ok := i.CurrentUserID(ctx)
	if !ok {
		return 0, false
	}
	if i.users == nil {
		return userID, true
	}

	rec, found, err := i.users.FindByID(ctx, userID)
	if err != nil {
		logger.From(ctx).Warn("tenant scope lookup failed", "user_id", userID, "err", err)
		return 0, false
	}
	if !found {
		logger.From(ctx).Debug("no user record; tenant scope falls back to user id", slog.Int64("user_id", userID))
		return userID, true
	}
	return rec.TenantScopeID, true
}
