package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tenant-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// iat and exp are written and read at millisecond precision; whole seconds
// would let a token expire before its TTL has elapsed.
func init() {
	jwt.TimePrecision = time.Millisecond
}

// Manager issues, verifies and reissues HS256 access tokens. It holds no
// per-token state; all methods are safe for concurrent use.
type Manager struct {
	key        SigningKey
	defaultTTL time.Duration
	skew       time.Duration
	log        *slog.Logger
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewManager(cfg config.AuthConfig, log *slog.Logger) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}
	key, err := NewSigningKey(cfg.JWTSecret, log)
	if err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access token ttl must be > 0")
	}
	if cfg.ClockSkew < 0 {
		return nil, errors.New("clock skew must be >= 0")
	}

	log.Info("jwt configured",
		"token_ttl_ms", cfg.AccessTokenTTL.Milliseconds(),
		"clock_skew_seconds", int64(cfg.ClockSkew/time.Second),
	)

	return &Manager{
		key:        key,
		defaultTTL: cfg.AccessTokenTTL,
		skew:       cfg.ClockSkew,
		log:        log,
		clock:      time.Now,
	}, nil
}

// DefaultTTL is the lifetime used when Issue or Refresh get no override.
func (m *Manager) DefaultTTL() time.Duration { return m.defaultTTL }

/* ===================== ISSUE TOKENS ===================== */

// Issue signs a new token for subject. ttl overrides the configured lifetime
// when positive. Extra claims are merged first so registered claims win.
func (m *Manager) Issue(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	now := m.clock()
	claims := jwt.MapClaims{}
	for name, v := range extra {
		claims[name] = v
	}
	claims[ClaimSubject] = subject
	claims[ClaimIssuedAt] = jwt.NewNumericDate(now)
	claims[ClaimExpiration] = jwt.NewNumericDate(now.Add(ttl))
	claims[ClaimTokenID] = uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.key.bytes())
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

/* ===================== VERIFY TOKEN ===================== */

// Validate reports whether token is well-formed, correctly signed, not expired
// (skew allowed) and issued to expectedSubject. It never fails loudly.
func (m *Manager) Validate(token, expectedSubject string) bool {
	claims, err := m.parse(token)
	if err != nil {
		return false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return false
	}
	return sub == expectedSubject
}

// ExtractSubject returns the token subject, or a *TokenError whose Kind tells
// an expired token apart from a malformed or mis-signed one.
func (m *Manager) ExtractSubject(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", invalid(err)
	}
	if sub == "" {
		return "", invalid(errors.New("subject missing"))
	}
	return sub, nil
}

// ExtractClaim returns the named claim of a verified token. Any parse failure
// reads as an absent claim.
func (m *Manager) ExtractClaim(token, name string) (any, bool) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, false
	}
	v, ok := claims[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (m *Manager) ClaimString(token, name string) (string, bool) {
	v, ok := m.ExtractClaim(token, name)
	if !ok {
		return "", false
	}
	return stringClaim(v)
}

func (m *Manager) ClaimInt64(token, name string) (int64, bool) {
	v, ok := m.ExtractClaim(token, name)
	if !ok {
		return 0, false
	}
	return int64Claim(v)
}

// RemainingValidity is the time left before exp, floored at zero. Tokens that
// do not verify have no validity left.
func (m *Manager) RemainingValidity(token string) time.Duration {
	claims, err := m.parse(token)
	if err != nil {
		return 0
	}
	exp, ok := timeClaim(claims[ClaimExpiration])
	if !ok {
		return 0
	}
	left := exp.Sub(m.clock())
	if left < 0 {
		return 0
	}
	return left
}

/* ===================== REFRESH ===================== */

// Refresh reissues a still-valid token with a fresh iat/exp and every
// non-registered claim copied over. Expired tokens are rejected with
// KindExpired: renewal after expiry goes through the refresh credential.
func (m *Manager) Refresh(token string, ttl time.Duration) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", invalid(errors.New("subject missing"))
	}

	extra := make(map[string]any, len(claims))
	for name, v := range claims {
		if isReserved(name) {
			continue
		}
		extra[name] = v
	}
	return m.Issue(sub, extra, ttl)
}

/* ===================== INTERNAL PARSE ===================== */

// parse verifies the signature, then checks exp, iat and nbf against the
// clock with skew, and classifies failures. Time claims are checked here
// rather than by the jwt parser so that millisecond dates compare exactly.
func (m *Manager) parse(token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, invalid(errors.New("empty token"))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	t, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key.bytes(), nil
	})
	if err != nil {
		return nil, invalid(err)
	}
	if !t.Valid {
		return nil, invalid(errors.New("token not valid"))
	}

	now := m.clock()
	exp, ok := timeClaim(claims[ClaimExpiration])
	if !ok {
		return nil, invalid(jwt.ErrTokenRequiredClaimMissing)
	}
	if !now.Before(exp.Add(m.skew)) {
		return nil, expired(jwt.ErrTokenExpired)
	}
	if v, present := claims[ClaimIssuedAt]; present {
		iat, ok := timeClaim(v)
		if !ok || iat.After(now.Add(m.skew)) {
			return nil, invalid(jwt.ErrTokenUsedBeforeIssued)
		}
	}
	if v, present := claims["nbf"]; present {
		nbf, ok := timeClaim(v)
		if !ok || nbf.After(now.Add(m.skew)) {
			return nil, invalid(jwt.ErrTokenNotValidYet)
		}
	}
	return claims, nil
}
