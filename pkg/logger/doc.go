// Package logger builds the relay's slog loggers.
//
// Every logger writes JSON to stdout. Context extractors add request-scoped
// attributes to each entry logged with a context:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "anonymous email sent", slog.String("tracking_id", id))
//	// {"level":"INFO","msg":"anonymous email sent","tracking_id":"1f3a9c0e","request_id":"01J..."}
//
// NewContextHandler adds the same behaviour to any slog.Handler.
//
// # Sentry
//
// NewWithSentry also forwards warnings and errors to Sentry when SENTRY_DSN
// is set. Errors become issues. Without a DSN, or when initialisation fails,
// it logs to stdout only. Register FlushSentry as a shutdown hook so buffered
// events are delivered:
//
//	app.Run(addr, internal.ShutdownHook(logger.FlushSentry))
//
// Message bodies must never be passed to a logger.
package logger
