package relay

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/anonmail/pkg/id"
	"github.com/dmitrymomot/anonmail/pkg/logger"
	"github.com/dmitrymomot/anonmail/pkg/mailer"
	"github.com/dmitrymomot/anonmail/pkg/sanitizer"
)

//go:embed templates
var templatesFS embed.FS

const (
	messageTemplate = "anonymous.md"
	anonymousSeed   = "anonymous"

	defaultMinLength = 10
	defaultMaxLength = 2000
)

// Configuration reports whether the mail transport can be used.
// config.Config implements it.
type Configuration interface {
	Configured() bool
	ConfigurationHint() string
}

// Service performs anonymous sends.
type Service struct {
	mailer    *mailer.Mailer
	config    Configuration
	logger    *slog.Logger
	now       func() time.Time
	from      string
	transport string
	minLength int
	maxLength int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the operator logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFrom sets the visible From address. Empty leaves the transport default.
func WithFrom(addr string) Option {
	return func(s *Service) {
		s.from = addr
	}
}

// WithTransportName records which transport is used, for logs only.
func WithTransportName(name string) Option {
	return func(s *Service) {
		s.transport = name
	}
}

// WithMessageLength sets the accepted message length in characters.
// A zero min disables the lower bound.
func WithMessageLength(minLen, maxLen int) Option {
	return func(s *Service) {
		if minLen >= 0 {
			s.minLength = minLen
		}
		if maxLen > 0 {
			s.maxLength = maxLen
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service that delivers through sender using the
// embedded message templates.
func NewService(sender mailer.Sender, cfg Configuration, mcfg mailer.Config, opts ...Option) *Service {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}

	s := &Service{
		mailer:    mailer.New(sender, mailer.NewRenderer(sub), mcfg),
		config:    cfg,
		logger:    logger.NewNope(),
		now:       time.Now,
		minLength: defaultMinLength,
		maxLength: defaultMaxLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether sends can be attempted.
func (s *Service) Configured() bool {
	return s.config.Configured()
}

// Send validates req and delivers it as one anonymous email.
// Failures are always *Error.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	req = req.normalize()
	if verr := req.validate(s.minLength, s.maxLength); verr != nil {
		return nil, verr
	}

	if !s.config.Configured() {
		return nil, &Error{
			Kind:    KindConfiguration,
			Message: msgNotConfigured,
			Details: s.config.ConfigurationHint(),
		}
	}

	now := s.now().UTC()
	seed := req.SenderEmail
	if seed == "" {
		seed = anonymousSeed
	}
	trackingID := id.NewTrackingID(seed, now)

	err := s.mailer.Send(ctx, mailer.SendParams{
		To:       req.RecipientEmail,
		Template: messageTemplate,
		From:     s.from,
		Data:     map[string]string{"Message": req.Message},
	})
	if err != nil {
		rerr := classify(err)
		s.logger.ErrorContext(ctx, "anonymous email failed",
			slog.String("tracking_id", trackingID),
			slog.String("transport", s.transport),
			slog.String("kind", rerr.Kind.String()),
			slog.String("error", err.Error()),
		)
		return nil, rerr
	}

	attrs := []any{
		slog.String("tracking_id", trackingID),
		slog.Time("timestamp", now),
		slog.String("recipient", req.RecipientEmail),
		slog.Int("message_length", sanitizer.CharCount(req.Message)),
		slog.String("transport", s.transport),
	}
	if req.SenderEmail != "" {
		attrs = append(attrs, slog.String("sender_email", req.SenderEmail))
	}
	if req.SenderName != "" {
		attrs = append(attrs, slog.String("sender_name", req.SenderName))
	}
	s.logger.InfoContext(ctx, "anonymous email sent", attrs...)

	return &SendResult{
		Success:    true,
		TrackingID: trackingID,
		Recipient:  req.RecipientEmail,
		Timestamp:  now,
	}, nil
}

// classify maps a mailer error to the client-facing outcome.
func classify(err error) *Error {
	switch {
	case errors.Is(err, mailer.ErrAuthFailed):
		return &Error{Kind: KindTransportAuth, Message: msgAuthFailed, Details: mailer.TransportDetail(err), Err: err}
	case errors.Is(err, mailer.ErrSendFailed):
		return &Error{Kind: KindTransport, Message: msgSendFailed, Details: mailer.TransportDetail(err), Err: err}
	default:
		return &Error{Kind: KindUnexpected, Message: msgServerError, Details: msgUnexpectedDetail, Err: err}
	}
}
