package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anonmail/internal"
	"github.com/dmitrymomot/anonmail/middlewares"
	"github.com/dmitrymomot/anonmail/pkg/logger"
)

type routes func(internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func errorHandler(c internal.Context, err error) error {
	switch {
	case middlewares.IsTimeoutError(err):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "timeout"})
	case middlewares.IsPanicError(err):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server error"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func newApp(t *testing.T, r routes, mw ...internal.Middleware) (*internal.App, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelDebug, middlewares.RequestIDExtractor())
	app := internal.New(
		internal.WithCustomLogger(log),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(r),
		internal.WithErrorHandler(errorHandler),
	)
	require.NotNil(t, app)
	return app, &buf
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
