// Package middlewares provides the HTTP middleware used by the relay.
//
// # Request ID
//
// RequestID assigns every request an ID. An incoming X-Request-ID (or
// X-Correlation-ID) is reused, otherwise a ULID is generated. The ID is
// echoed in the X-Request-ID response header. Register RequestIDExtractor
// on the logger to add request_id to every entry written with the request
// context:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//
// # Request Logger
//
// RequestLogger writes one "request completed" entry per request with the
// method, path, status, size and duration. It never logs bodies.
//
// # Recover
//
// Recover converts panics into *PanicError so the ErrorHandler can answer
// with a generic 500 while the stack goes to the log.
//
// # Timeout
//
// Timeout replaces the request context with one carrying a deadline. Mail
// transports use that context, so a stalled send is abandoned when the
// deadline passes and the ErrorHandler receives a *TimeoutError. The handler
// writes into a buffer that reaches the client only if it finishes in time.
// Attach it to routes rather than globally:
//
//	r.POST("/send-anonymous-email", h.send, middlewares.Timeout(45*time.Second))
//
// # CORS
//
// CORS answers preflight requests and sets Access-Control-* headers. The
// defaults allow every origin with GET, POST and OPTIONS.
//
// # Order
//
//	internal.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.RequestLogger(),
//	    middlewares.Recover(),
//	    middlewares.CORS(),
//	)
package middlewares
