package internal

import (
	"errors"
	"net/http"
)

// ErrEmptyBody is returned by BindJSON when the request carries no body.
var ErrEmptyBody = errors.New("request body is empty")

// ErrBodyTooLarge is returned by BindJSON when the body exceeds its limit.
var ErrBodyTooLarge = errors.New("request body too large")

// HTTPError is an error with a status code and a message safe to show the
// client. Err is the cause, kept for logs only.
type HTTPError struct {
	Err     error
	Message string
	Detail  string
	Code    int
}

// Error returns the client-facing message only.
func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

func (e *HTTPError) StatusText() string { return http.StatusText(e.Code) }

// HTTPErrorOption sets optional HTTPError fields.
type HTTPErrorOption func(*HTTPError)

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithDetail adds a longer client-facing explanation.
func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) { e.Detail = detail }
}

// WithError attaches the cause.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// AsHTTPError returns the first HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}
