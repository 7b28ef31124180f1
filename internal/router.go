package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router is what handlers see when declaring routes. Middleware passed to
// a route runs after the global middleware, in the order given.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	OPTIONS(path string, h HandlerFunc, mw ...Middleware)

	// Group scopes Use calls to the routes declared inside fn.
	Group(fn func(r Router))
	Use(mw ...Middleware)
}

type router struct {
	mux chi.Router
	app *App
}

func (r *router) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.mux.Method(http.MethodGet, path, r.chain(h, mw))
}

func (r *router) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.mux.Method(http.MethodPost, path, r.chain(h, mw))
}

func (r *router) OPTIONS(path string, h HandlerFunc, mw ...Middleware) {
	r.mux.Method(http.MethodOptions, path, r.chain(h, mw))
}

func (r *router) Group(fn func(Router)) {
	r.mux.Group(func(sub chi.Router) {
		fn(&router{mux: sub, app: r.app})
	})
}

func (r *router) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(r.app.lift(m))
	}
}

func (r *router) chain(h HandlerFunc, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return r.app.endpoint(h)
}

// lift turns a Middleware into chi middleware. Each layer gets its own
// Context; the wrapped ResponseWriter is shared, so a layer sees the final
// status once next returns.
func (a *App) lift(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		tail := func(c Context) error {
			next.ServeHTTP(c.Response(), c.Request())
			return nil
		}
		wrapped := mw(tail)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := newContext(w, r, a.log)
			if err := wrapped(c); err != nil {
				a.fail(c, err)
			}
		})
	}
}
