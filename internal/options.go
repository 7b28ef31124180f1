package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/anonmail/pkg/health"
)

// Option configures an App.
type Option func(*App)

// WithMiddleware appends global middleware. The first one given is the
// outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.global = append(a.global, mw...) }
}

// WithHandlers registers route providers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithErrorHandler sets the renderer for handler errors. Without one, errors
// become a plain-text 500.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.onError = h }
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) { a.notFound = h }
}

func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) { a.notAllowed = h }
}

// WithCustomLogger sets the application logger. A nil logger is ignored.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

type healthConfig struct {
	livenessPath  string
	readinessPath string
	checks        health.Checks
}

// HealthOption configures the probe endpoints.
type HealthOption func(*healthConfig)

// WithHealthChecks mounts a liveness probe that always answers 200 and a
// readiness probe that runs every registered check.
//
//	internal.WithHealthChecks(
//	    internal.WithReadinessCheck("mail_transport", cfg.TransportCheck()),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		hc := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        health.Checks{},
		}
		for _, opt := range opts {
			opt(hc)
		}
		a.health = hc
	}
}

func WithLivenessPath(p string) HealthOption {
	return func(hc *healthConfig) {
		if p != "" {
			hc.livenessPath = p
		}
	}
}

func WithReadinessPath(p string) HealthOption {
	return func(hc *healthConfig) {
		if p != "" {
			hc.readinessPath = p
		}
	}
}

// WithReadinessCheck registers a named check. Registering the same name
// twice keeps the last one.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(hc *healthConfig) {
		if fn != nil {
			hc.checks[name] = fn
		}
	}
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	log             *slog.Logger
	base            context.Context
	shutdownTimeout time.Duration
	hooks           []func(context.Context) error
}

// Logger sets the logger used for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return func(rc *runConfig) {
		if l != nil {
			rc.log = l
		}
	}
}

// WithContext sets the parent context. Cancelling it stops the server the
// same way a signal does.
func WithContext(ctx context.Context) RunOption {
	return func(rc *runConfig) {
		if ctx != nil {
			rc.base = ctx
		}
	}
}

// ShutdownTimeout bounds draining plus all shutdown hooks. Defaults to 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(rc *runConfig) {
		if d > 0 {
			rc.shutdownTimeout = d
		}
	}
}

// ShutdownHook runs fn after the server stops accepting requests. Hooks run
// in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(rc *runConfig) {
		if fn != nil {
			rc.hooks = append(rc.hooks, fn)
		}
	}
}
