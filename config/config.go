// Package config loads the relay's runtime configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/anonmail/pkg/logger"
	"github.com/dmitrymomot/anonmail/pkg/mailer"
	"github.com/dmitrymomot/anonmail/pkg/mailer/resend"
	"github.com/dmitrymomot/anonmail/pkg/mailer/ses"
	"github.com/dmitrymomot/anonmail/pkg/mailer/smtp"
)

// Transport names accepted by MAIL_TRANSPORT.
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
	TransportSES    = "ses"
)

// Sentinel errors.
var (
	ErrUnknownTransport = errors.New("config: unknown mail transport")
	ErrInvalidTLSMode   = errors.New("config: invalid smtp tls mode")
	ErrInvalidLengths   = errors.New("config: invalid message length bounds")
)

// Config is the complete runtime configuration. It is built once by Load
// and passed by value; nothing mutates it afterwards.
type Config struct {
	Server    Server
	Mail      Mail
	Message   Message
	Mailer    mailer.Config
	SMTP      smtp.Config
	Resend    resend.Config
	SES       ses.Config
	Sentry    logger.SentryConfig
	Transport string `env:"MAIL_TRANSPORT" envDefault:"smtp"`
}

// Server holds HTTP listener settings.
type Server struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"5000"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"45s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Version         string        `env:"APP_VERSION" envDefault:"1.0.0"`
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Mail holds the service mailbox identity shared by every transport.
type Mail struct {
	OfficialEmail string `env:"OFFICIAL_EMAIL"`
	FromName      string `env:"MAIL_FROM_NAME" envDefault:"Anonymous"`
}

// Message holds validation bounds for message text, counted in characters.
// A zero MinLength disables the lower bound.
type Message struct {
	MinLength int `env:"MESSAGE_MIN_LENGTH" envDefault:"10"`
	MaxLength int `env:"MESSAGE_MAX_LENGTH" envDefault:"2000"`
}

// Load reads an optional .env file and parses the environment.
// Variables already set in the environment take precedence over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.SMTP.TLSMode = strings.ToLower(strings.TrimSpace(cfg.SMTP.TLSMode))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport {
	case TransportSMTP, TransportResend, TransportSES:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.Transport)
	}
	switch c.SMTP.TLSMode {
	case smtp.TLSImplicit, smtp.TLSStartTLS:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTLSMode, c.SMTP.TLSMode)
	}
	if c.Message.MinLength < 0 || c.Message.MaxLength <= 0 || c.Message.MinLength > c.Message.MaxLength {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidLengths, c.Message.MinLength, c.Message.MaxLength)
	}
	return nil
}

// Missing returns the environment variables the active transport still needs.
// An empty result means the relay can send.
func (c Config) Missing() []string {
	var missing []string
	if IsPlaceholder(c.Mail.OfficialEmail) {
		missing = append(missing, "OFFICIAL_EMAIL")
	}

	switch c.Transport {
	case TransportResend:
		if IsPlaceholder(c.Resend.APIKey) {
			missing = append(missing, "RESEND_API_KEY")
		}
	case TransportSES:
		if IsPlaceholder(c.SES.AccessKeyID) {
			missing = append(missing, "AWS_ACCESS_KEY_ID")
		}
		if IsPlaceholder(c.SES.SecretAccessKey) {
			missing = append(missing, "AWS_SECRET_ACCESS_KEY")
		}
	default:
		if IsPlaceholder(c.SMTP.Password) {
			missing = append(missing, "GMAIL_APP_PASSWORD")
		}
	}
	return missing
}

// Configured reports whether the service mailbox and the active transport's
// credentials are set to real values.
func (c Config) Configured() bool {
	return len(c.Missing()) == 0
}

// ConfigurationHint tells an operator what to set. Empty when configured.
func (c Config) ConfigurationHint() string {
	missing := c.Missing()
	if len(missing) == 0 {
		return ""
	}
	return "Set " + strings.Join(missing, " and ") + " environment variables"
}

// TransportCheck returns a readiness check that fails until the relay is configured.
func (c Config) TransportCheck() func(context.Context) error {
	return func(context.Context) error {
		if missing := c.Missing(); len(missing) > 0 {
			return fmt.Errorf("%s transport not configured: missing %s", c.Transport, strings.Join(missing, ", "))
		}
		return nil
	}
}

var placeholderValues = map[string]struct{}{
	"changeme":    {},
	"change-me":   {},
	"placeholder": {},
	"xxx":         {},
	"todo":        {},
}

// templatePrefixes mark values copied from an example file, such as
// "your-app-password" or "your_api_key". A bare "your" prefix is not enough:
// "yoursecretsanta@gmail.com" is a real mailbox.
var templatePrefixes = []string{"your-", "your_", "your ", "your."}

func hasTemplatePrefix(v string) bool {
	for _, p := range templatePrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether v is empty or an obvious template value such
// as "your-app-password", "<api key>" or "changeme".
func IsPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return true
	}
	if v == "your" || hasTemplatePrefix(v) {
		return true
	}
	if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return true
	}
	_, ok := placeholderValues[v]
	return ok
}
