// Package anonmail assembles the anonymous email relay.
//
// New turns a loaded configuration into a ready-to-run application: it
// selects the mail transport named by MAIL_TRANSPORT, builds the relay
// service and registers the HTTP handlers and middleware.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	log := logger.NewWithSentry(cfg.Sentry, middlewares.RequestIDExtractor())
//	app, err := anonmail.New(ctx, cfg, log)
//	if err != nil {
//	    return err
//	}
//	return app.Run(cfg.Server.Addr(),
//	    internal.Logger(log),
//	    internal.ShutdownTimeout(cfg.Server.ShutdownTimeout),
//	    internal.ShutdownHook(logger.FlushSentry),
//	)
//
// # Routes
//
//	GET     /                      service descriptor
//	GET     /health                configuration status, always 200
//	GET     /health/live           liveness probe
//	GET     /health/ready          readiness probe, 503 until configured
//	POST    /send-anonymous-email  anonymous send
//	OPTIONS /send-anonymous-email  CORS preflight
package anonmail
