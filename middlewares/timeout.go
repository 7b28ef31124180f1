package middlewares

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/anonmail/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 45 * time.Second

// TimeoutError reports that a request outlived its deadline.
// It matches context.DeadlineExceeded and, when set, Err: the error the
// handler returned because of the deadline.
type TimeoutError struct {
	Err      error
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func (e *TimeoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{context.DeadlineExceeded}
	}
	return []error{context.DeadlineExceeded, e.Err}
}

// IsTimeoutError reports whether err holds a *TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

// AsTimeoutError extracts the *TimeoutError from err.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}

// Timeout returns middleware that bounds a request.
// The handler runs with a context carrying the deadline and writes into a
// buffer that is copied to the response only once it returns. A handler
// still running at the deadline never touches the response; the
// ErrorHandler gets a TimeoutError instead. Errors the handler returns
// because of the deadline are reported as TimeoutError too.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.SetContext(ctx)
			buf := internal.NewBufferedWriter()
			inner := c.WithResponse(buf)

			done := make(chan error, 1)
			go func() {
				// Panics cannot cross goroutines, so Recover upstream would miss them.
				defer func() {
					if r := recover(); r != nil {
						done <- &PanicError{Value: r}
					}
				}()
				done <- next(inner)
			}()

			timedOut := func(cause error) error {
				c.LogWarn("request timeout", "timeout", timeout.String())
				return &TimeoutError{Err: cause, Duration: timeout}
			}
			finish := func(err error) error {
				if err != nil && errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					err = timedOut(err)
				}
				if ferr := buf.FlushTo(c.Response()); ferr != nil && err == nil {
					return ferr
				}
				return err
			}

			select {
			case err := <-done:
				return finish(err)
			case <-ctx.Done():
			}

			select {
			case err := <-done:
				return finish(err)
			default:
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return timedOut(nil)
			}
			// Client went away; nobody is left to read a response.
			return ctx.Err()
		}
	}
}
