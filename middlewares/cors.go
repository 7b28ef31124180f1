package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/anonmail/internal"
)

const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures CORS. An AllowOrigins entry of "*" admits every
// origin.
type CORSConfig struct {
	AllowOrigins  []string
	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        time.Duration
}

// DefaultCORSConfig lets any web page call the relay.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins:  []string{"*"},
	AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowHeaders:  []string{"Content-Type", "Accept", "Origin", "X-Request-ID"},
	ExposeHeaders: []string{"X-Request-ID"},
	MaxAge:        DefaultCORSMaxAge,
}

type CORSOption func(*CORSConfig)

func WithAllowOrigins(origins ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowOrigins = origins }
}

func WithAllowMethods(methods ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowMethods = methods }
}

func WithAllowHeaders(headers ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowHeaders = headers }
}

// WithMaxAge sets how long browsers may cache a preflight. Zero omits the
// header.
func WithMaxAge(d time.Duration) CORSOption {
	return func(c *CORSConfig) { c.MaxAge = d }
}

// corsPolicy is CORSConfig with the header values joined once.
type corsPolicy struct {
	wildcard bool
	origins  []string
	methods  string
	headers  string
	expose   string
	maxAge   string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{
		wildcard: slices.Contains(cfg.AllowOrigins, "*"),
		origins:  cfg.AllowOrigins,
		methods:  strings.Join(cfg.AllowMethods, ", "),
		headers:  strings.Join(cfg.AllowHeaders, ", "),
		expose:   strings.Join(cfg.ExposeHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	return origin != "" && (p.wildcard || slices.Contains(p.origins, origin))
}

func (p corsPolicy) decorate(h http.Header, origin string) {
	h.Add("Vary", "Origin")
	allowed := origin
	if p.wildcard {
		allowed = "*"
	}
	h.Set("Access-Control-Allow-Origin", allowed)
	if p.expose != "" {
		h.Set("Access-Control-Expose-Headers", p.expose)
	}
}

func (p corsPolicy) preflight(h http.Header) {
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Allow-Headers", p.headers)
	if p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
}

// CORS adds Cross-Origin Resource Sharing headers for allowed origins.
// Requests without an Origin, or from an origin not on the list, pass
// through untouched. A preflight (OPTIONS with Origin and
// Access-Control-Request-Method) gets 204 and never reaches next.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := DefaultCORSConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	p := newCORSPolicy(cfg)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if !p.allows(origin) {
				return next(c)
			}

			h := c.Response().Header()
			p.decorate(h, origin)

			if c.Request().Method != http.MethodOptions || c.Header("Access-Control-Request-Method") == "" {
				return next(c)
			}
			p.preflight(h)
			return c.NoContent(http.StatusNoContent)
		}
	}
}
