package auth

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Registered claim names. They are owned by the token service: they always
// overwrite caller-supplied extras on issue and are dropped before re-merging
// extras on refresh.
const (
	ClaimSubject    = "sub"
	ClaimIssuedAt   = "iat"
	ClaimExpiration = "exp"
	ClaimTokenID    = "jti"
)

// Identity claims carried as extras on access tokens.
const (
	ClaimUserID      = "user_id"
	ClaimDisplayName = "display_name"
	ClaimRole        = "role"
)

func isReserved(name string) bool {
	switch name {
	case ClaimSubject, ClaimIssuedAt, ClaimExpiration, ClaimTokenID:
		return true
	}
	return false
}

// IdentityClaims builds the extra claims for an access token.
func IdentityClaims(userID int64, displayName, role string) map[string]any {
	extra := map[string]any{ClaimUserID: userID}
	if displayName != "" {
		extra[ClaimDisplayName] = displayName
	}
	if role != "" {
		extra[ClaimRole] = role
	}
	return extra
}

func stringClaim(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, s != ""
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

// int64Claim accepts the shapes a numeric claim can take after a JSON round
// trip, including ids issued as strings.
func int64Claim(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// timeClaim reads a NumericDate claim. Decimal json.Numbers are parsed digit by
// digit: going through float64 can land a hair below the written value, and
// millisecond truncation then moves exp a whole millisecond earlier.
func timeClaim(v any) (time.Time, bool) {
	switch n := v.(type) {
	case json.Number:
		s := n.String()
		if strings.ContainsAny(s, "eE-") {
			f, err := n.Float64()
			if err != nil {
				return time.Time{}, false
			}
			return timeClaim(f)
		}
		whole, frac, _ := strings.Cut(s, ".")
		sec, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		if len(frac) > 9 {
			frac = frac[:9]
		}
		var nsec int64
		if frac != "" {
			nsec, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
			if err != nil {
				return time.Time{}, false
			}
		}
		return time.Unix(sec, nsec), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return time.Time{}, false
		}
		whole, frac := math.Modf(n)
		return time.Unix(int64(whole), int64(frac*1e9)), true
	case int64:
		return time.Unix(n, 0), true
	default:
		return time.Time{}, false
	}
}
