package logger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

var errSentryFlushTimeout = errors.New("logger: sentry flush timed out")

// SentryConfig configures stdout logging plus optional Sentry forwarding.
// With an empty DSN only stdout is used.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	Release     string `env:"APP_VERSION" envDefault:"1.0.0"`
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	// ForwardLevel is the lowest level kept as Sentry logs. Errors always
	// become Sentry issues.
	ForwardLevel string `env:"SENTRY_LOG_LEVEL" envDefault:"warn"`
}

func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	if cfg.DSN == "" {
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	})
	if err != nil {
		slog.New(stdout).Error("sentry disabled", slog.Any("error", err))
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	sh := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   levelsFrom(ParseLevel(cfg.ForwardLevel)),
	}.NewSentryHandler(context.Background())

	return slog.New(NewContextHandler(fanout{stdout, sh}, extractors...))
}

// levelsFrom lists the standard levels at or above lowest.
func levelsFrom(lowest slog.Level) []slog.Level {
	var out []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= lowest {
			out = append(out, l)
		}
	}
	return out
}

// FlushSentry delivers buffered events before exit. It is shaped for
// internal.ShutdownHook and does nothing when Sentry was never initialised.
func FlushSentry(ctx context.Context) error {
	if sentry.CurrentHub().Client() == nil {
		return nil
	}
	wait := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		wait = time.Until(dl)
	}
	if !sentry.Flush(wait) {
		return errSentryFlushTimeout
	}
	return nil
}
