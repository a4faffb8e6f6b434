package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndExtractSubject_RoundTrip(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)

	for _, subject := range []string{"a@x.com", "user+tag@example.org", "ümlaut@x.de"} {
		tok, err := m.Issue(subject, nil, 0)
		require.NoError(t, err)

		got, err := m.ExtractSubject(tok)
		require.NoError(t, err)
		assert.Equal(t, subject, got)
		assert.True(t, m.Validate(tok, subject))
	}
}

func TestIssue_RejectsEmptySubject(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)
	_, err := m.Issue("", nil, 0)
	assert.Error(t, err)
}

func TestIssue_RegisteredClaimsWinOverExtras(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)

	tok, err := m.Issue("a@x.com", map[string]any{
		ClaimSubject:    "mallory@x.com",
		ClaimExpiration: t0.Add(100 * 365 * 24 * time.Hour).Unix(),
		ClaimRole:       "USER",
	}, 0)
	require.NoError(t, err)

	sub, err := m.ExtractSubject(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)
	assert.Equal(t, time.Minute, m.RemainingValidity(tok))

	role, ok := m.ClaimString(tok, ClaimRole)
	assert.True(t, ok)
	assert.Equal(t, "USER", role)
}

func TestIssue_TTLOverride(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)

	tok, err := m.Issue("a@x.com", nil, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, m.RemainingValidity(tok))

	tok, err = m.Issue("a@x.com", nil, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, m.RemainingValidity(tok), "non-positive override falls back to default")
}

func TestValidate_HonoursTTLPlusSkew(t *testing.T) {
	const ttl, skew = 10 * time.Second, 5 * time.Second
	m, clk := newTestManager(t, ttl, skew)

	tok, err := m.Issue("a@x.com", nil, 0)
	require.NoError(t, err)

	steps := []struct {
		at    time.Duration
		valid bool
	}{
		{at: 0, valid: true},
		{at: ttl - time.Millisecond, valid: true},
		{at: ttl, valid: true},
		{at: ttl + skew - time.Millisecond, valid: true},
		{at: ttl + skew + time.Millisecond, valid: false},
		{at: ttl + skew + time.Hour, valid: false},
	}
	for _, s := range steps {
		clk.now = t0.Add(s.at)
		assert.Equal(t, s.valid, m.Validate(tok, "a@x.com"), "at +%s", s.at)
	}
}

func TestExtractSubject_ExpiredOnlyAfterSkew(t *testing.T) {
	m, clk := newTestManager(t, time.Second, 2*time.Second)

	tok, err := m.Issue("a@x.com", nil, 0)
	require.NoError(t, err)

	clk.Advance(2500 * time.Millisecond)
	_, err = m.ExtractSubject(tok)
	require.NoError(t, err, "expired inside the skew window still verifies")

	clk.Advance(time.Second)
	_, err = m.ExtractSubject(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestExpiredScenario(t *testing.T) {
	m, clk := newTestManager(t, time.Hour, 0)

	tok, err := m.Issue("a@x.com", map[string]any{ClaimRole: "USER"}, 1000*time.Millisecond)
	require.NoError(t, err)

	clk.Advance(1100 * time.Millisecond)

	_, err = m.ExtractSubject(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
	assert.Equal(t, KindExpired, KindOf(err))

	assert.False(t, m.Validate(tok, "a@x.com"))
	assert.Zero(t, m.RemainingValidity(tok))

	_, ok := m.ExtractClaim(tok, ClaimRole)
	assert.False(t, ok)
}

func TestIssue_SubSecondClockKeepsFullTTL(t *testing.T) {
	m, clk := newTestManager(t, time.Minute, 0)

	clk.now = t0.Add(100 * time.Millisecond)
	short, err := m.Issue("a@x.com", nil, 300*time.Millisecond)
	require.NoError(t, err)
	sub, err := m.ExtractSubject(short)
	require.NoError(t, err, "a fresh token verifies immediately")
	assert.Equal(t, "a@x.com", sub)
	assert.True(t, m.Validate(short, "a@x.com"))

	clk.now = t0.Add(900 * time.Millisecond)
	tok, err := m.Issue("a@x.com", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, m.RemainingValidity(tok))

	clk.Advance(200 * time.Millisecond)
	assert.True(t, m.Validate(tok, "a@x.com"))
	assert.Equal(t, 800*time.Millisecond, m.RemainingValidity(tok))

	clk.Advance(799 * time.Millisecond)
	assert.True(t, m.Validate(tok, "a@x.com"))

	clk.Advance(time.Millisecond)
	assert.False(t, m.Validate(tok, "a@x.com"), "expires exactly when the TTL has elapsed")
	_, err = m.ExtractSubject(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestMalformedToken(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)

	for _, raw := range []string{"not-a-jwt", "", "a.b.c", "...."} {
		assert.False(t, m.Validate(raw, "a@x.com"))

		_, err := m.ExtractSubject(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Equal(t, KindInvalid, KindOf(err))

		assert.Zero(t, m.RemainingValidity(raw))
		_, ok := m.ExtractClaim(raw, ClaimSubject)
		assert.False(t, ok)
	}
}

func TestValidate_TamperedTokenIsAlwaysFalse(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)

	tok, err := m.Issue("a@x.com", map[string]any{ClaimRole: "USER"}, 0)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	forgedPayload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"sub":"a@x.com","role":"SUPER_ADMIN","iat":1700000000,"exp":1800000000}`))

	other, _ := newTestManager(t, time.Minute, 0)
	other.key = SigningKey{b: []byte("another-signing-key-32-characters")}
	foreign, err := other.Issue("a@x.com", nil, 0)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "a@x.com", "iat": t0.Unix(), "exp": t0.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tampered := []string{
		parts[0] + "." + forgedPayload + "." + parts[2],
		parts[0] + "." + parts[1] + "." + flipFirst(parts[2]),
		parts[0] + "." + parts[1] + ".",
		foreign,
		none,
	}

	for i, bad := range tampered {
		for _, subject := range []string{"a@x.com", "", "b@x.com"} {
			assert.False(t, m.Validate(bad, subject), "tampered #%d", i)
		}
		_, err := m.ExtractSubject(bad)
		assert.ErrorIs(t, err, ErrTokenInvalid, "tampered #%d", i)
	}
}

func TestExtractSubject_TimeClaimChecks(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)

	sign := func(claims jwt.MapClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return tok
	}

	noExp := sign(jwt.MapClaims{"sub": "a@x.com", "iat": t0.Unix()})
	_, err := m.ExtractSubject(noExp)
	assert.Equal(t, KindInvalid, KindOf(err), "exp is required")

	notYet := sign(jwt.MapClaims{"sub": "a@x.com", "exp": t0.Add(time.Hour).Unix(), "nbf": t0.Add(time.Minute).Unix()})
	_, err = m.ExtractSubject(notYet)
	assert.Equal(t, KindInvalid, KindOf(err))

	badExp := sign(jwt.MapClaims{"sub": "a@x.com", "exp": "tomorrow"})
	_, err = m.ExtractSubject(badExp)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestValidate_SubjectMismatch(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)
	tok, err := m.Issue("a@x.com", nil, 0)
	require.NoError(t, err)
	assert.False(t, m.Validate(tok, "b@x.com"))
	assert.False(t, m.Validate(tok, ""))
}

func TestExtractSubject_TokenFromTheFutureIsInvalid(t *testing.T) {
	m, clk := newTestManager(t, time.Minute, 5*time.Second)
	clk.Advance(time.Hour)
	tok, err := m.Issue("a@x.com", nil, 0)
	require.NoError(t, err)

	clk.now = t0
	_, err = m.ExtractSubject(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaimAccessors(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)
	tok, err := m.Issue("a@x.com", IdentityClaims(42, "Ada", "ADMIN"), 0)
	require.NoError(t, err)

	id, ok := m.ClaimInt64(tok, ClaimUserID)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	name, ok := m.ClaimString(tok, ClaimDisplayName)
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)

	_, ok = m.ExtractClaim(tok, "missing")
	assert.False(t, ok)
}

func TestRemainingValidity(t *testing.T) {
	m, clk := newTestManager(t, time.Minute, 30*time.Second)
	tok, err := m.Issue("a@x.com", nil, 0)
	require.NoError(t, err)

	clk.Advance(20 * time.Second)
	assert.Equal(t, 40*time.Second, m.RemainingValidity(tok))

	clk.Advance(50 * time.Second) // past exp, inside skew
	assert.Zero(t, m.RemainingValidity(tok))
}

func TestRefresh_PreservesExtraClaims(t *testing.T) {
	m, clk := newTestManager(t, time.Minute, 0)

	extra := IdentityClaims(42, "Ada", "ADMIN")
	extra["tenant"] = "acme"
	tok, err := m.Issue("a@x.com", extra, 0)
	require.NoError(t, err)
	before, err := m.parse(tok)
	require.NoError(t, err)

	clk.Advance(10 * time.Second)
	refreshed, err := m.Refresh(tok, 0)
	require.NoError(t, err)
	assert.NotEqual(t, tok, refreshed)

	after, err := m.parse(refreshed)
	require.NoError(t, err)

	sub, _ := after.GetSubject()
	assert.Equal(t, "a@x.com", sub)

	id, _ := m.ClaimInt64(refreshed, ClaimUserID)
	assert.Equal(t, int64(42), id)
	for _, name := range []string{ClaimDisplayName, ClaimRole, "tenant"} {
		want, _ := m.ClaimString(tok, name)
		got, ok := m.ClaimString(refreshed, name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	assert.NotEqual(t, before[ClaimTokenID], after[ClaimTokenID], "refresh mints a new token id")

	iatBefore, _ := before.GetIssuedAt()
	iatAfter, _ := after.GetIssuedAt()
	assert.False(t, iatAfter.Before(iatBefore.Time), "refreshed iat must not go backwards")
	assert.Equal(t, time.Minute, m.RemainingValidity(refreshed))
}

func TestRefresh_TTLOverride(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)
	tok, err := m.Issue("a@x.com", nil, 0)
	require.NoError(t, err)

	refreshed, err := m.Refresh(tok, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.RemainingValidity(refreshed))
}

func TestRefresh_RejectsExpiredToken(t *testing.T) {
	m, clk := newTestManager(t, time.Second, 0)
	tok, err := m.Issue("a@x.com", IdentityClaims(1, "", "USER"), 0)
	require.NoError(t, err)

	clk.Advance(2 * time.Second)
	refreshed, err := m.Refresh(tok, 0)
	assert.Empty(t, refreshed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.Equal(t, KindExpired, KindOf(err))
}

func TestRefresh_RejectsMalformedToken(t *testing.T) {
	m, _ := newTestManager(t, time.Minute, 0)
	_, err := m.Refresh("not-a-jwt", 0)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestTokenError_DoesNotMatchOtherKind(t *testing.T) {
	err := error(&TokenError{Kind: KindExpired})
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
	assert.Equal(t, "token expired", err.Error())
	assert.Equal(t, Kind(0), KindOf(errors.New("other")))
}

// flipFirst changes the first character; the last one may only carry
// base64 padding bits.
func flipFirst(s string) string {
	if s == "" {
		return "A"
	}
	repl := byte('A')
	if s[0] == 'A' {
		repl = 'B'
	}
	return string(repl) + s[1:]
}
