package httpapi

import (
	"tenant-platform/internal/auth"
	"tenant-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Register wires HTTP routes to handlers. The token filter is expected to run
// globally ahead of these routes.
// Keep this free of business logic. Handlers should delegate to internal modules.
func Register(r gin.IRouter, h Handlers, authz *rbac.Interceptor) {
	r.GET("/healthz", h.Health)

	// public
	r.POST("/auth/login", h.Login)
	r.POST(h.RefreshRoute(), h.Refresh)
	r.POST(LogoutPath, h.Logout)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequirePrincipal())
	{
		v1.GET("/me", h.Me)
		v1.POST("/auth/renew", h.RenewToken)
		v1.GET("/auth/token", h.TokenStatus)
		v1.GET("/users/:id", h.GetUser)

		admin := v1.Group("/admin")
		admin.Use(authz.RequireAnyRole(rbac.RoleAdmin, rbac.RoleSuperAdmin))
		{
			admin.GET("/users", h.FindUserByEmail)
		}

		platform := v1.Group("/platform")
		platform.Use(authz.RequireAnyRole(rbac.RolePlatformUser, rbac.RoleSuperAdmin))
		{
			platform.GET("/tenant", h.TenantScope)
		}
	}
}
