package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/anonmail/internal"
	"github.com/dmitrymomot/anonmail/middlewares"
	"github.com/dmitrymomot/anonmail/relay"
)

const (
	msgServerError      = "Server error"
	msgUnexpectedDetail = "An unexpected error occurred"
	msgSendFailed       = "Failed to send email"
	msgBodyTooLarge     = "Request body too large"
	msgTimeoutDetail    = "The mail transport did not respond in time"
	msgNotFound         = "Endpoint not found"
	msgMethodNotAllowed = "Method not allowed"
)

// AvailableEndpoints is listed in 404 and 405 responses.
var AvailableEndpoints = []string{
	"GET /",
	"GET /health",
	"GET /health/live",
	"GET /health/ready",
	"POST " + SendPath,
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error              string   `json:"error"`
	Details            string   `json:"details,omitempty"`
	AvailableEndpoints []string `json:"availableEndpoints,omitempty"`
	Success            bool     `json:"success"`
}

// ErrorHandler renders handler errors as JSON.
//
// A timed-out send is a transport failure: 500 with the send-failure shape,
// whichever error the handler returned at the deadline.
func ErrorHandler(c internal.Context, err error) error {
	if middlewares.IsTimeoutError(err) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSendFailed, Details: msgTimeoutDetail})
	}

	if re, ok := relay.AsError(err); ok {
		status := http.StatusInternalServerError
		if re.Kind == relay.KindValidation {
			status = http.StatusBadRequest
		}
		return c.JSON(status, ErrorResponse{Error: re.Message, Details: re.Details})
	}

	if he := internal.AsHTTPError(err); he != nil {
		if he.Err != nil {
			c.LogDebug("request rejected", slog.Int("status", he.Code), slog.Any("error", he.Err))
		}
		return c.JSON(he.StatusCode(), ErrorResponse{Error: he.Message, Details: he.Detail})
	}

	// Recover already logged the panic with its stack.
	if !middlewares.IsPanicError(err) {
		c.LogError("unhandled error", slog.Any("error", err))
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgServerError, Details: msgUnexpectedDetail})
}

// NotFound answers unknown routes.
func NotFound(c internal.Context) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound, AvailableEndpoints: AvailableEndpoints})
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(c internal.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: msgMethodNotAllowed, AvailableEndpoints: AvailableEndpoints})
}
