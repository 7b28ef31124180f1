package health

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// LivenessHandler answers 200 while the process can serve HTTP at all.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and answers 503 when any
// of them fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	p := newProbe(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := p.run(r.Context(), checks)
		code := http.StatusOK
		if resp.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		write(w, r, code, resp)
	}
}

func wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func write(w http.ResponseWriter, r *http.Request, code int, resp *Response) {
	h := w.Header()
	h.Set("Cache-Control", "no-store")

	if wantsJSON(r) {
		h.Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	text := "OK"
	if code != http.StatusOK {
		text = http.StatusText(code)
	}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, text)
}
