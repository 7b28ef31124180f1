// Package internal provides the HTTP application core of the relay.
//
// # Core Types
//
//   - App: Wires routing, middleware, health probes, and graceful shutdown
//   - Context: Request/response access, JSON helpers, and request-scoped logging
//   - Router: Interface handlers use to declare routes
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for route handlers that return errors
//   - Middleware: Wraps handlers to add cross-cutting concerns
//   - ErrorHandler: Renders errors returned by handlers
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context:
//
//	func (h *Relay) send(c internal.Context) error {
//	    res, err := h.svc.Send(c, req)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, res)
//	}
//
// # Application Structure
//
//	app := internal.New(
//	    internal.WithCustomLogger(log),
//	    internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    internal.WithHandlers(handlers.NewRelay(svc)),
//	    internal.WithErrorHandler(handlers.ErrorHandler),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("mail_transport", check)),
//	)
//	err := app.Run(cfg.Server.Addr(), internal.Logger(log))
//
// # Error Handling
//
// Handlers return errors instead of writing error responses. The configured
// ErrorHandler receives every non-nil error unless a response was already
// written. HTTPError carries a status code and a user-facing message.
package internal
