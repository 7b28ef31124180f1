package health

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 5 * time.Second
)

// ErrCheckTimeout is reported for a check that outlives the probe timeout.
var ErrCheckTimeout = errors.New("health: check timeout")

// CheckFunc reports nil when the dependency it guards is usable.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name to its function.
type Checks map[string]CheckFunc

// Response is the aggregated probe result.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one named check.
type Check struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type probe struct {
	log     *slog.Logger
	timeout time.Duration
}

type Option func(*probe)

// WithTimeout bounds the whole probe. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *probe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets where failed checks are reported.
func WithLogger(l *slog.Logger) Option {
	return func(p *probe) {
		if l != nil {
			p.log = l
		}
	}
}

func newProbe(opts ...Option) *probe {
	p := &probe{
		log:     slog.New(slog.DiscardHandler),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type namedResult struct {
	name string
	Check
}

// run executes every check concurrently. Each goroutine sends exactly one
// result, so a failing check never cancels the others.
func (p *probe) run(ctx context.Context, checks Checks) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out := make(chan namedResult, len(checks))
	var g errgroup.Group
	for name, fn := range checks {
		g.Go(func() error {
			out <- namedResult{name: name, Check: p.check(ctx, name, fn)}
			return nil
		})
	}
	_ = g.Wait()
	close(out)

	resp := &Response{Status: StatusHealthy, Checks: make(map[string]Check, len(checks))}
	for r := range out {
		resp.Checks[r.name] = r.Check
		if r.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
		}
	}
	return resp
}

func (p *probe) check(ctx context.Context, name string, fn CheckFunc) Check {
	start := time.Now()
	err := callWithDeadline(ctx, fn)
	res := Check{Status: StatusHealthy, Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Error = err.Error()
		p.log.WarnContext(ctx, "health check failed", slog.String("check", name), slog.Any("error", err))
	}
	return res
}

// callWithDeadline returns ErrCheckTimeout when fn ignores ctx and keeps
// running past its deadline.
func callWithDeadline(ctx context.Context, fn CheckFunc) error {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrCheckTimeout
	}
}
