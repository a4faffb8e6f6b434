package rbac

import (
	"context"
	"net/http"
	"strings"

	"tenant-platform/pkg/logger"
	"tenant-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	MessageAuthenticationRequired = "Access denied: no authenticated role"
	messageRoleRequired           = "Access denied: requires one of "
)

// RoleSource yields the role of the current caller.
type RoleSource interface {
	CurrentUserRole(ctx context.Context) (string, bool)
}

// Decision is the outcome of a role check. A denial is an ordinary result, not
// an error.
type Decision struct {
	Allowed  bool
	Status   int
	Message  string
	Role     string
	Required Declaration
}

// DenyHook observes denials, e.g. for auditing. It runs inline on the request
// path, so implementations bound their own latency.
type DenyHook func(ctx context.Context, d Decision)

// Interceptor enforces role declarations in front of protected operations.
type Interceptor struct {
	roles  RoleSource
	onDeny DenyHook
}

func NewInterceptor(roles RoleSource) *Interceptor {
	return &Interceptor{roles: roles}
}

// OnDeny registers a hook called after every denial.
func (i *Interceptor) OnDeny(h DenyHook) *Interceptor {
	i.onDeny = h
	return i
}

// Decide checks the caller's role against decl.
func (i *Interceptor) Decide(ctx context.Context, decl Declaration) Decision {
	if decl.Unrestricted() {
		return Decision{Allowed: true, Status: http.StatusOK}
	}

	role, ok := i.roles.CurrentUserRole(ctx)
	if !ok || strings.TrimSpace(role) == "" {
		return i.deny(ctx, Decision{
			Status:   http.StatusForbidden,
			Message:  MessageAuthenticationRequired,
			Required: decl,
		})
	}
	if !decl.Allows(role) {
		return i.deny(ctx, Decision{
			Status:   http.StatusForbidden,
			Message:  messageRoleRequired + decl.String(),
			Role:     role,
			Required: decl,
		})
	}
	return Decision{Allowed: true, Status: http.StatusOK, Role: role, Required: decl}
}

func (i *Interceptor) deny(ctx context.Context, d Decision) Decision {
	logger.From(ctx).Info("access denied", "role", d.Role, "required", d.Required.String())
	if i.onDeny != nil {
		i.onDeny(ctx, d)
	}
	return d
}

// Invoke runs op only if the caller satisfies decl. When denied, op is not
// called and the returned Decision carries the reason.
func (i *Interceptor) Invoke(ctx context.Context, decl Declaration, op func(context.Context) error) (Decision, error) {
	d := i.Decide(ctx, decl)
	if !d.Allowed {
		return d, nil
	}
	return d, op(ctx)
}

// Middleware attaches decl to a route group or handler chain.
// An empty declaration is allowed through with a warning so that routes
// without declared roles are never locked out by accident.
func (i *Interceptor) Middleware(decl Declaration) gin.HandlerFunc {
	log := logger.From(context.Background())
	if decl.Unrestricted() {
		log.Warn("role declaration is empty; route is unrestricted")
	}
	if unknown := decl.Unknown(); len(unknown) > 0 {
		log.Warn("role declaration names unknown roles", "unknown", unknown, "declared", decl.String())
	}
	return func(c *gin.Context) {
		d := i.Decide(c.Request.Context(), decl)
		if !d.Allowed {
			c.AbortWithStatusJSON(d.Status, response.Failed(d.Message))
			return
		}
		c.Next()
	}
}

// RequireAnyRole is Middleware(Require(roles...)).
func (i *Interceptor) RequireAnyRole(roles ...string) gin.HandlerFunc {
	return i.Middleware(Require(roles...))
}
