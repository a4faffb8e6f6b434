package httpapi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"tenant-platform/internal/audit"
	"tenant-platform/internal/auth"
	"tenant-platform/internal/ratelimit"
	"tenant-platform/internal/session"
	"tenant-platform/internal/users"
	"tenant-platform/pkg/logger"
	"tenant-platform/pkg/response"
	"tenant-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Tokens   *auth.Manager
	Identity *auth.Identity
	Users    users.Repository
	Sessions session.Store
	Audit    *audit.Service
	// Limiter throttles login attempts per email. Optional.
	Limiter ratelimit.Limiter

	RefreshTTL time.Duration
	// RefreshPath is where refresh is served; empty means DefaultRefreshPath.
	RefreshPath string
	// CookieSecure sets the Secure attribute on the refresh cookie.
	CookieSecure bool

	// Checks back the readiness endpoint, keyed by service name.
	Checks map[string]utils.Check

	Now func() time.Time
}

const (
	RefreshCookie      = "refresh_token"
	DefaultRefreshPath = "/auth/refresh"
	LogoutPath         = "/auth/logout"
	tokenTypeBearer    = "Bearer"
)

// RefreshRoute is the configured refresh path or the default.
func (h Handlers) RefreshRoute() string {
	if h.RefreshPath == "" {
		return DefaultRefreshPath
	}
	return h.RefreshPath
}

// cookiePath is the deepest directory shared by the refresh and logout paths,
// so the browser sends the refresh cookie to both and nowhere else.
func (h Handlers) cookiePath() string {
	refresh := strings.Split(strings.Trim(h.RefreshRoute(), "/"), "/")
	logout := strings.Split(strings.Trim(LogoutPath, "/"), "/")
	n := 0
	for n < len(refresh)-1 && n < len(logout)-1 && refresh[n] == logout[n] {
		n++
	}
	return "/" + strings.Join(refresh[:n], "/")
}

func (h Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// ClientContext attaches the resolved client IP to the request context so the
// audit layer can record it.
func ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(audit.WithClientIP(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// Health reports 503 when any backing service fails its check.
func (h Handlers) Health(c *gin.Context) {
	failed := utils.RunChecks(c.Request.Context(), h.Checks)
	if len(failed) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	names := make([]string, 0, len(failed))
	for name, err := range failed {
		logger.FromGin(c).Warn("health check failed", "check", name, "err", err)
		names = append(names, name)
	}
	slices.Sort(names)
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": names})
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Login checks email/password and issues an access token plus a refresh credential.
func (h Handlers) Login(c *gin.Context) {
	if h.Tokens == nil || h.Users == nil || h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("auth not configured"))
		return
	}
	log := logger.FromGin(c)
	ctx := c.Request.Context()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Failed("invalid json"))
		return
	}
	email := users.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Failed("email and password required"))
		return
	}

	if h.Limiter != nil {
		allowed, err := h.Limiter.Allow(ctx, email)
		if err != nil {
			// Throttling is best-effort; an outage must not lock everyone out.
			log.Warn("login limiter unavailable", "err", err)
		} else if !allowed {
			h.record(ctx, func(s *audit.Service) error { return s.LogLoginFailed(ctx, email, "rate limited") })
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Failed("Too many login attempts"))
			return
		}
	}

	rec, err := users.Authenticate(ctx, h.Users, email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.record(ctx, func(s *audit.Service) error { return s.LogLoginFailed(ctx, email, "invalid credentials") })
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Invalid email or password"))
			return
		}
		log.Error("login lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("login failed"))
		return
	}

	out, ok := h.issue(c, rec)
	if !ok {
		return
	}
	h.record(ctx, func(s *audit.Service) error { return s.LogLoginSucceeded(ctx, rec.ID, rec.Email, rec.Role) })
	c.JSON(http.StatusOK, response.OK("Login successful", out))
}

// Refresh trades a refresh credential for a new access token and rotates the
// credential. It is served without bearer parsing.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Tokens == nil || h.Users == nil || h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("auth not configured"))
		return
	}
	log := logger.FromGin(c)
	ctx := c.Request.Context()

	raw := refreshCredential(c)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Failed("refresh token required"))
		return
	}

	cred, found, err := h.Sessions.Consume(ctx, raw)
	if err != nil {
		log.Error("refresh credential lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("refresh failed"))
		return
	}
	if !found {
		h.clearRefreshCookie(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Invalid refresh token"))
		return
	}

	// Re-read the user so role and display name changes take effect.
	rec, found, err := h.Users.FindByID(ctx, cred.UserID)
	if err != nil {
		log.Error("refresh user lookup failed", "user_id", cred.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("refresh failed"))
		return
	}
	if !found {
		h.clearRefreshCookie(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Invalid refresh token"))
		return
	}

	out, ok := h.issue(c, rec)
	if !ok {
		return
	}
	h.record(ctx, func(s *audit.Service) error { return s.LogTokenRefreshed(ctx, rec.ID, rec.Email) })
	c.JSON(http.StatusOK, response.OK("Token refreshed", out))
}

// Logout revokes the presented refresh credential. Unknown credentials still
// succeed.
func (h Handlers) Logout(c *gin.Context) {
	if h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("auth not configured"))
		return
	}
	ctx := c.Request.Context()

	if raw := refreshCredential(c); raw != "" {
		cred, found, err := h.Sessions.Consume(ctx, raw)
		if err != nil {
			logger.FromGin(c).Error("logout revoke failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("logout failed"))
			return
		}
		if found {
			h.record(ctx, func(s *audit.Service) error { return s.LogLogout(ctx, cred.UserID, cred.Email) })
		}
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, response.OK("Logged out", nil))
}

func (h Handlers) issue(c *gin.Context, rec users.Record) (tokenResponse, bool) {
	log := logger.FromGin(c)

	access, err := h.Tokens.Issue(rec.Email, auth.IdentityClaims(rec.ID, rec.DisplayName, rec.Role), 0)
	if err != nil {
		log.Error("token issuance failed", "user_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("token issuance failed"))
		return tokenResponse{}, false
	}

	raw, cred, err := session.NewCredential(rec.ID, rec.Email, h.RefreshTTL, h.now())
	if err == nil {
		err = h.Sessions.Save(c.Request.Context(), cred)
	}
	if err != nil {
		log.Error("refresh credential issuance failed", "user_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("token issuance failed"))
		return tokenResponse{}, false
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, raw, int(h.RefreshTTL/time.Second), h.cookiePath(), "", h.CookieSecure, true)

	return tokenResponse{
		AccessToken:  access,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(h.Tokens.DefaultTTL() / time.Second),
		RefreshToken: raw,
	}, true
}

func (h Handlers) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, "", -1, h.cookiePath(), "", h.CookieSecure, true)
}

// refreshCredential reads the credential from the cookie, then the JSON body.
func refreshCredential(c *gin.Context) string {
	if v, err := c.Cookie(RefreshCookie); err == nil && v != "" {
		return v
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}

// record appends an audit event; failures are logged and swallowed.
func (h Handlers) record(ctx context.Context, fn func(*audit.Service) error) {
	if h.Audit == nil {
		return
	}
	if err := fn(h.Audit); err != nil {
		logger.From(ctx).Warn("audit append failed", "err", err)
	}
}

// --- Current identity ---

type meResponse struct {
	UserID        int64  `json:"user_id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	Role          string `json:"role"`
	TenantScopeID int64  `json:"tenant_scope_id,omitempty"`
}

func (h Handlers) Me(c *gin.Context) {
	ctx := c.Request.Context()
	email, ok := h.Identity.CurrentUserEmail(ctx)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Authentication required"))
		return
	}
	out := meResponse{Email: email}
	out.UserID, _ = h.Identity.CurrentUserID(ctx)
	out.DisplayName, _ = h.Identity.CurrentUserDisplayName(ctx)
	out.Role, _ = h.Identity.CurrentUserRole(ctx)
	out.TenantScopeID, _ = h.Identity.CurrentTenantScopeID(ctx)
	c.JSON(http.StatusOK, response.OK("Current user", out))
}

// RenewToken reissues the still-valid bearer token with a fresh lifetime.
func (h Handlers) RenewToken(c *gin.Context) {
	tok, ok := h.Identity.CurrentToken(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Authentication required"))
		return
	}
	renewed, err := h.Tokens.Refresh(tok, 0)
	if err != nil {
		if auth.KindOf(err) == auth.KindExpired {
			c.Header(auth.HeaderTokenExpired, "true")
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Reject(auth.MessageTokenExpired))
			return
		}
		if auth.KindOf(err) == auth.KindInvalid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Reject(auth.MessageTokenInvalid))
			return
		}
		logger.FromGin(c).Error("token renewal failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("token renewal failed"))
		return
	}
	c.JSON(http.StatusOK, response.OK("Token renewed", tokenResponse{
		AccessToken: renewed,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(h.Tokens.RemainingValidity(renewed) / time.Second),
	}))
}

type tokenStatusResponse struct {
	Subject     string `json:"subject"`
	RemainingMS int64  `json:"remaining_ms"`
}

func (h Handlers) TokenStatus(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Failed("Authentication required"))
		return
	}
	c.JSON(http.StatusOK, response.OK("Token status", tokenStatusResponse{
		Subject:     p.Subject,
		RemainingMS: h.Tokens.RemainingValidity(p.Token).Milliseconds(),
	}))
}

// --- Users ---

// GetUser returns a user profile to its owner or to an admin.
func (h Handlers) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Failed("invalid user id"))
		return
	}
	if !h.Identity.IsOwnerOrAdmin(ctx, id) {
		role, _ := h.Identity.CurrentUserRole(ctx)
		callerID, _ := h.Identity.CurrentUserID(ctx)
		h.record(ctx, func(s *audit.Service) error {
			return s.Append(ctx, audit.Event{
				Type:        audit.EventTypeAccessDenied,
				ActorUserID: callerID,
				ActorRole:   role,
				Message:     "user profile is owner-or-admin only",
			})
		})
		c.AbortWithStatusJSON(http.StatusForbidden, response.Failed("Access denied"))
		return
	}

	rec, found, err := h.Users.FindByID(ctx, id)
	if err != nil {
		logger.FromGin(c).Error("user lookup failed", "user_id", id, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("user lookup failed"))
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Failed("user not found"))
		return
	}
	c.JSON(http.StatusOK, response.OK("User", rec))
}

// FindUserByEmail is an admin lookup; RBAC is applied at the route.
func (h Handlers) FindUserByEmail(c *gin.Context) {
	email := users.NormalizeEmail(c.Query("email"))
	if email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Failed("email required"))
		return
	}
	rec, found, err := h.Users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		logger.FromGin(c).Error("user lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Failed("user lookup failed"))
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Failed("user not found"))
		return
	}
	c.JSON(http.StatusOK, response.OK("User", rec))
}

type tenantScopeResponse struct {
	TenantScopeID int64 `json:"tenant_scope_id"`
}

func (h Handlers) TenantScope(c *gin.Context) {
	scope, ok := h.Identity.CurrentTenantScopeID(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Failed("tenant scope unavailable"))
		return
	}
	c.JSON(http.StatusOK, response.OK("Tenant scope", tenantScopeResponse{TenantScopeID: scope}))
}
