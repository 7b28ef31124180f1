package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/anonmail/internal"
	"github.com/dmitrymomot/anonmail/middlewares"
	"github.com/dmitrymomot/anonmail/relay"
)

// SendPath is the anonymous send endpoint.
const SendPath = "/send-anonymous-email"

const msgNoData = "No data provided"

// Sender performs the anonymous send.
type Sender interface {
	Send(ctx context.Context, req relay.SendRequest) (*relay.SendResult, error)
}

// Relay handles anonymous send requests.
type Relay struct {
	svc     Sender
	timeout time.Duration
}

// RelayOption configures Relay.
type RelayOption func(*Relay)

// WithSendTimeout bounds each send request. Zero disables the bound.
func WithSendTimeout(d time.Duration) RelayOption {
	return func(h *Relay) {
		h.timeout = d
	}
}

// NewRelay creates a Relay handler.
func NewRelay(svc Sender, opts ...RelayOption) *Relay {
	h := &Relay{svc: svc, timeout: middlewares.DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements internal.Handler.
func (h *Relay) Routes(r internal.Router) {
	var mw []internal.Middleware
	if h.timeout > 0 {
		mw = append(mw, middlewares.Timeout(h.timeout))
	}
	r.POST(SendPath, h.send, mw...)
	r.OPTIONS(SendPath, h.preflight)
}

func (h *Relay) send(c internal.Context) error {
	var req relay.SendRequest
	if err := c.BindJSON(&req); err != nil {
		if errors.Is(err, internal.ErrEmptyBody) {
			return c.Error(http.StatusBadRequest, msgNoData)
		}
		if errors.Is(err, internal.ErrBodyTooLarge) {
			return c.Error(http.StatusRequestEntityTooLarge, msgBodyTooLarge, internal.WithDetail("The request body must not exceed 64 KiB"))
		}
		return c.Error(http.StatusBadRequest, msgNoData, internal.WithError(err))
	}

	res, err := h.svc.Send(c, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// preflight answers OPTIONS requests that the CORS middleware let through.
func (h *Relay) preflight(c internal.Context) error {
	return c.NoContent(http.StatusNoContent)
}
