package auth

import "context"

type ctxKey int

const ctxPrincipal ctxKey = iota

// Principal is what the token filter learned about the caller: the raw bearer
// token and its verified subject. It lives in the request context and dies with
// the request.
type Principal struct {
	Subject string
	Token   string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	if !ok || p.Token == "" {
		return Principal{}, false
	}
	return p, true
}

// TokenFrom returns the current request's bearer token, if any.
func TokenFrom(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	return p.Token, ok
}
