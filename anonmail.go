package anonmail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/anonmail/config"
	"github.com/dmitrymomot/anonmail/handlers"
	"github.com/dmitrymomot/anonmail/internal"
	"github.com/dmitrymomot/anonmail/middlewares"
	"github.com/dmitrymomot/anonmail/pkg/logger"
	"github.com/dmitrymomot/anonmail/pkg/mailer"
	"github.com/dmitrymomot/anonmail/pkg/mailer/resend"
	"github.com/dmitrymomot/anonmail/pkg/mailer/ses"
	"github.com/dmitrymomot/anonmail/pkg/mailer/smtp"
	"github.com/dmitrymomot/anonmail/relay"
)

// NewSender returns the transport selected by cfg.Transport.
// Sender construction never contacts the provider.
func NewSender(ctx context.Context, cfg config.Config) (mailer.Sender, error) {
	switch cfg.Transport {
	case config.TransportSMTP:
		return smtp.New(cfg.SMTP), nil
	case config.TransportResend:
		return resend.New(cfg.Resend), nil
	case config.TransportSES:
		s, err := ses.New(ctx, cfg.SES)
		if err != nil {
			return nil, fmt.Errorf("ses transport: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, cfg.Transport)
	}
}

// New builds the relay application from cfg.
// A nil log disables logging.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*internal.App, error) {
	if log == nil {
		log = logger.NewNope()
	}

	sender, err := NewSender(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := relay.NewService(sender, cfg, cfg.Mailer,
		relay.WithFrom(mailer.Address(cfg.Mail.FromName, cfg.Mail.OfficialEmail)),
		relay.WithTransportName(cfg.Transport),
		relay.WithMessageLength(cfg.Message.MinLength, cfg.Message.MaxLength),
		relay.WithLogger(log),
	)

	app := internal.New(
		internal.WithCustomLogger(log),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.RequestLogger(),
			middlewares.Recover(),
			middlewares.CORS(),
		),
		internal.WithHandlers(
			handlers.NewStatus(svc, cfg.Server.Version),
			handlers.NewRelay(svc, handlers.WithSendTimeout(cfg.Server.RequestTimeout)),
		),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithHealthChecks(
			internal.WithReadinessCheck("mail_transport", cfg.TransportCheck()),
		),
	)

	log.InfoContext(ctx, "relay configured",
		slog.String("transport", cfg.Transport),
		slog.Bool("configured", cfg.Configured()),
		slog.String("version", cfg.Server.Version),
	)
	if !cfg.Configured() {
		log.WarnContext(ctx, "mail transport not configured", slog.String("hint", cfg.ConfigurationHint()))
	}
	return app, nil
}
