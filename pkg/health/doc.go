// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] always answers OK while the process is running.
// [ReadinessHandler] runs a set of named [Checks] concurrently and answers
// 503 when any of them fails, which lets an orchestrator hold traffic until
// the mail transport is configured.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "mail_transport": cfg.TransportCheck(),
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" or "Service Unavailable") unless the client
// sends Accept: application/json or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "mail_transport": {"status": "unhealthy", "error": "OFFICIAL_EMAIL is not set"}
//	  }
//	}
//
// A check that does not return before the configured timeout is reported
// with [ErrCheckTimeout].
package health
