// Package response holds the JSON envelopes shared by every HTTP surface.
package response

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Body is the standard envelope. Data is always emitted, as null when empty.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Rejection is the short envelope written by the token filter.
type Rejection struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func OK(message string, data any) Body {
	return Body{Status: StatusSuccess, Message: message, Data: data}
}

func Failed(message string) Body {
	return Body{Status: StatusFailed, Message: message}
}

func Reject(message string) Rejection {
	return Rejection{Status: StatusFailed, Message: message}
}
