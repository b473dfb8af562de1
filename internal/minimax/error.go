package minimax

import (
	"errors"
	"fmt"
)

// Error is a MiniMax API error, either from a non-200 response or from a
// non-zero base_resp.status_code.
type Error struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	TraceID    string `json:"trace_id"`
	HTTPStatus int    `json:"-"`
}

func (e *Error) Error() string {
	if e.TraceID == "" {
		return fmt.Sprintf("minimax: %s (code=%d)", e.StatusMsg, e.StatusCode)
	}
	return fmt.Sprintf("minimax: %s (code=%d, trace=%s)", e.StatusMsg, e.StatusCode, e.TraceID)
}

func (e *Error) IsRateLimit() bool {
	return e.StatusCode == 1002 || e.HTTPStatus == 429
}

func (e *Error) IsInvalidAPIKey() bool {
	return e.StatusCode == 1004 || e.StatusCode == 1001 || e.HTTPStatus == 401
}

func (e *Error) IsServerError() bool {
	return e.StatusCode >= 5000 || e.HTTPStatus >= 500
}

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	return e.IsRateLimit() || e.IsServerError() || e.StatusCode == 1000
}

func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
