package internal

import (
	"bytes"
	"net/http"
	"sync"
)

// ResponseWriter records the status and body size of a response. It is
// shared by every middleware layer of a request, and the first status
// written wins.
type ResponseWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	status  int
	size    int64
	started bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// start claims the header exactly once. It reports whether the caller owns
// the write of the status line.
func (w *ResponseWriter) start(code int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return false
	}
	w.started = true
	if code != 0 {
		w.status = code
	}
	return true
}

func (w *ResponseWriter) WriteHeader(code int) {
	if w.start(code) {
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.start(0) {
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)

	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size is the number of body bytes written so far.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the inner writer to http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// BufferedWriter holds a whole response in memory until FlushTo copies it
// to the real writer. It is not safe for concurrent use; hand it to a
// single goroutine and flush only after that goroutine is done.
type BufferedWriter struct {
	header http.Header
	body   bytes.Buffer
	code   int
}

func NewBufferedWriter() *BufferedWriter {
	return &BufferedWriter{header: http.Header{}}
}

func (b *BufferedWriter) Header() http.Header { return b.header }

func (b *BufferedWriter) WriteHeader(code int) {
	if b.code == 0 {
		b.code = code
	}
}

func (b *BufferedWriter) Write(p []byte) (int, error) {
	if b.code == 0 {
		b.code = http.StatusOK
	}
	return b.body.Write(p)
}

// FlushTo copies headers, status and body to w. Nothing is written when
// the buffer never received a status or body.
func (b *BufferedWriter) FlushTo(w http.ResponseWriter) error {
	if b.code == 0 {
		return nil
	}
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}
	w.WriteHeader(b.code)
	_, err := w.Write(b.body.Bytes())
	return err
}
