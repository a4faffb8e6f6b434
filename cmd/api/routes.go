package main

import (
	"log/slog"

	"tenant-platform/internal/auth"
	"tenant-platform/internal/httpapi"
	"tenant-platform/internal/rbac"
	"tenant-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// newRouter builds the engine: request logging, client IP capture and the
// bearer token filter run for every request, then the API routes.
func newRouter(log *slog.Logger, tokens *auth.Manager, h httpapi.Handlers, authz *rbac.Interceptor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(httpapi.ClientContext())
	r.Use(auth.TokenFilter(tokens, auth.FilterOptions{RefreshPath: h.RefreshRoute()}))

	httpapi.Register(r, h, authz)
	return r
}
