package auth

import "errors"

// Kind classifies why a token was rejected.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindExpired:
		return "expired"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenError is the tagged result of a failed parse. Callers branch on Kind or
// with errors.Is against ErrTokenExpired / ErrTokenInvalid. Err holds the
// underlying codec error and must never be shown to clients.
type TokenError struct {
	Kind Kind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return e.sentinel().Error() + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error { return e.Err }

func (e *TokenError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *TokenError) sentinel() error {
	if e.Kind == KindExpired {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}

func invalid(err error) *TokenError { return &TokenError{Kind: KindInvalid, Err: err} }

func expired(err error) *TokenError { return &TokenError{Kind: KindExpired, Err: err} }

// KindOf reports the rejection kind of err, or 0 if err is not a token error.
func KindOf(err error) Kind {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
