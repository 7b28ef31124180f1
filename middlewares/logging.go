package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/anonmail/internal"
)

// RequestLogger returns middleware that writes one "request completed" entry
// per request with method, path, status, size and duration. Register it
// before the other middlewares so it sees the final status. Bodies are never
// logged.
func RequestLogger() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			rw := c.ResponseWriter()
			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", rw.Status()),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			switch status := rw.Status(); {
			case status >= 500 || err != nil:
				c.LogError("request completed", attrs...)
			case status >= 400:
				c.LogWarn("request completed", attrs...)
			default:
				c.LogInfo("request completed", attrs...)
			}
			return err
		}
	}
}
