package auth

import (
	"net/http"

	"tenant-platform/pkg/logger"
	"tenant-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	HeaderTokenExpired = "X-Token-Expired"

	MessageTokenExpired = "Access token expired"
	MessageTokenInvalid = "Invalid access token"

	// ginSubjectKey mirrors the principal onto the gin context for handler convenience.
	ginSubjectKey = "subject"
)

type FilterOptions struct {
	// RefreshPath is let through untouched; refresh authenticates with its own
	// credential, not the bearer header.
	RefreshPath string
}

// TokenFilter parses an optional bearer token and stores the caller's principal
// in the request context. Requests without a bearer token pass through
// unauthenticated; route-level guards decide whether that is acceptable.
// It does not perform RBAC checks; those belong to internal/rbac.
func TokenFilter(m *Manager, opts FilterOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.RefreshPath != "" && c.Request.URL.Path == opts.RefreshPath {
			c.Next()
			return
		}

		tok, err := ExtractBearerToken(c.GetHeader(authorizationHeader))
		if err != nil {
			c.Next()
			return
		}

		subject, err := m.ExtractSubject(tok)
		if err != nil {
			log := logger.FromGin(c)
			if KindOf(err) == KindExpired {
				log.Debug("access token expired", "path", c.Request.URL.Path)
				c.Header(HeaderTokenExpired, "true")
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Reject(MessageTokenExpired))
				return
			}
			log.Info("access token rejected", "path", c.Request.URL.Path, "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Reject(MessageTokenInvalid))
			return
		}

		ctx := WithPrincipal(c.Request.Context(), Principal{Subject: subject, Token: tok})
		c.Request = c.Request.WithContext(ctx)
		c.Set(ginSubjectKey, subject)

		c.Next()
	}
}

// RequirePrincipal rejects requests the token filter did not authenticate.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Authentication required"))
			return
		}
		c.Next()
	}
}
