package handlers

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/anonmail/internal"
)

const serviceName = "Anonymous Email Relay"

const (
	statusRunning            = "running"
	statusHealthy            = "healthy"
	statusNeedsConfiguration = "needs_configuration"
)

// ConfigChecker reports whether the mail transport has its credentials.
type ConfigChecker interface {
	Configured() bool
}

// Descriptor is the body of GET /.
type Descriptor struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Anonymous bool      `json:"anonymous"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
}

// Status serves the service descriptor and the configuration probe.
type Status struct {
	checker ConfigChecker
	now     func() time.Time
	version string
}

// StatusOption configures Status.
type StatusOption func(*Status)

// WithStatusClock overrides the descriptor timestamp source.
func WithStatusClock(now func() time.Time) StatusOption {
	return func(h *Status) {
		if now != nil {
			h.now = now
		}
	}
}

// NewStatus creates a Status handler.
func NewStatus(checker ConfigChecker, version string, opts ...StatusOption) *Status {
	h := &Status{checker: checker, version: version, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements internal.Handler.
func (h *Status) Routes(r internal.Router) {
	r.GET("/", h.index)
	r.GET("/health", h.health)
}

func (h *Status) index(c internal.Context) error {
	return c.JSON(http.StatusOK, Descriptor{
		Status:    statusRunning,
		Service:   serviceName,
		Version:   h.version,
		Anonymous: true,
		Timestamp: h.now().UTC(),
	})
}

// health always answers 200. Readiness probes should use /health/ready.
func (h *Status) health(c internal.Context) error {
	configured := h.checker.Configured()
	status := statusHealthy
	if !configured {
		status = statusNeedsConfiguration
	}
	return c.JSON(http.StatusOK, HealthStatus{Status: status, Configured: configured})
}
