package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxJSONBodyBytes caps request bodies accepted by BindJSON.
const maxJSONBodyBytes = 64 << 10

// Context is the per-request handle passed to handlers and middleware. It
// satisfies context.Context through the request's own context, so it can be
// handed straight to anything that blocks.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	Context() context.Context

	// SetContext swaps the request context. Everything further down the
	// chain observes it.
	SetContext(ctx context.Context)

	// Set and Get store values on the request context.
	Set(key, value any)
	Get(key any) any

	// Header reads a request header.
	Header(name string) string
	// SetHeader sets a response header.
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error

	// Error builds an HTTPError for the handler to return. Nothing is
	// written.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// BindJSON decodes the body into v. A missing or empty body yields
	// ErrEmptyBody, one over 64 KiB yields ErrBodyTooLarge.
	BindJSON(v any) error

	Written() bool
	ResponseWriter() *ResponseWriter

	// WithResponse returns a Context for the same request that writes to w.
	// State set on the copy does not flow back.
	WithResponse(w http.ResponseWriter) Context

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
}

type requestContext struct {
	r   *http.Request
	w   *ResponseWriter
	log *slog.Logger
}

// newContext reuses w when it is already a *ResponseWriter, so every
// layer of one request shares write state.
func newContext(w http.ResponseWriter, r *http.Request, log *slog.Logger) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{r: r, w: rw, log: log}
}

func (c *requestContext) Request() *http.Request          { return c.r }
func (c *requestContext) Response() http.ResponseWriter   { return c.w }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.w }
func (c *requestContext) Context() context.Context        { return c.r.Context() }
func (c *requestContext) Written() bool                   { return c.w.Written() }

func (c *requestContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *requestContext) Err() error                  { return c.r.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.r.Context().Value(key) }

func (c *requestContext) WithResponse(w http.ResponseWriter) Context {
	return newContext(w, c.r, c.log)
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.r = c.r.WithContext(ctx)
}

func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.r.Context(), key, value))
}

func (c *requestContext) Get(key any) any { return c.Value(key) }

func (c *requestContext) Header(name string) string { return c.r.Header.Get(name) }

func (c *requestContext) SetHeader(name, value string) { c.w.Header().Set(name, value) }

func (c *requestContext) JSON(code int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json response: %w", err)
	}
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(code)
	_, err = c.w.Write(append(body, '\n'))
	return err
}

func (c *requestContext) String(code int, s string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := io.WriteString(c.w, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.w.WriteHeader(code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) BindJSON(v any) error {
	if c.r.Body == nil || c.r.Body == http.NoBody {
		return ErrEmptyBody
	}
	body := http.MaxBytesReader(c.w, c.r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxJSONBodyBytes)
		}
		return fmt.Errorf("bind json: %w", err)
	}
	return nil
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.log.DebugContext(c.r.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.log.InfoContext(c.r.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.log.WarnContext(c.r.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.log.ErrorContext(c.r.Context(), msg, attrs...)
}
