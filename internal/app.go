package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/anonmail/pkg/health"
	"github.com/dmitrymomot/anonmail/pkg/logger"
)

// http.Server limits. Sends are bounded separately per route.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// Handler declares routes on a router.
//
//	func (h *Relay) Routes(r internal.Router) {
//	    r.POST("/send-anonymous-email", h.send)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc serves a request. A non-nil error goes to the ErrorHandler
// unless the handler already wrote a response.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders an error returned by a handler or middleware.
type ErrorHandler func(c Context, err error) error

// App is the HTTP application. It is fully configured by New and not
// modified afterwards.
type App struct {
	mux        chi.Router
	log        *slog.Logger
	onError    ErrorHandler
	notFound   HandlerFunc
	notAllowed HandlerFunc
	health     *healthConfig
	global     []Middleware
	handlers   []Handler
}

// New builds an App from opts and mounts every route.
func New(opts ...Option) *App {
	a := &App{
		mux: chi.NewRouter(),
		log: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.mount()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Run listens on addr and serves until SIGINT or SIGTERM, then shuts down
// gracefully.
//
//	err := app.Run(cfg.Server.Addr(), internal.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	rc := runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&rc)
	}
	return serve(addr, a, rc)
}

func (a *App) mount() {
	// chi rejects Use after the first route.
	for _, mw := range a.global {
		a.mux.Use(a.lift(mw))
	}

	if a.notFound != nil {
		a.mux.NotFound(a.endpoint(a.notFound))
	}
	if a.notAllowed != nil {
		a.mux.MethodNotAllowed(a.endpoint(a.notAllowed))
	}

	if a.health != nil {
		a.mux.Get(a.health.livenessPath, health.LivenessHandler())
		a.mux.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks, health.WithLogger(a.log)))
	}

	r := &router{mux: a.mux, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// endpoint adapts h to net/http and routes its error to the ErrorHandler.
func (a *App) endpoint(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.log)
		if err := h(c); err != nil {
			a.fail(c, err)
		}
	}
}

func (a *App) fail(c Context, err error) {
	if c.Written() {
		a.log.DebugContext(c, "error after response was written", slog.Any("error", err))
		return
	}
	if a.onError == nil {
		http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if herr := a.onError(c, err); herr != nil {
		a.log.ErrorContext(c, "error handler failed", slog.Any("error", herr), slog.Any("cause", err))
	}
}
