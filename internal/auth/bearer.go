package auth

import (
	"errors"
	"strings"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

var ErrNoBearerToken = errors.New("no bearer token")

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>"
// header value. The scheme is matched case-sensitively.
func ExtractBearerToken(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if !strings.HasPrefix(raw, bearerPrefix) {
		return "", ErrNoBearerToken
	}
	tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	if tok == "" {
		return "", ErrNoBearerToken
	}
	return tok, nil
}
