package smtp

import (
	"crypto/tls"
	"time"
)

// TLS modes.
const (
	// TLSImplicit negotiates TLS as soon as the connection opens (port 465).
	TLSImplicit = "implicit"
	// TLSStartTLS upgrades a plain connection with STARTTLS (port 587).
	TLSStartTLS = "starttls"
)

// Config holds SMTP relay configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host        string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port        int           `env:"SMTP_PORT" envDefault:"465"`
	TLSMode     string        `env:"SMTP_TLS_MODE" envDefault:"implicit"`
	Timeout     time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	Username    string        `env:"OFFICIAL_EMAIL"`
	Password    string        `env:"GMAIL_APP_PASSWORD"`
	SenderEmail string        `env:"OFFICIAL_EMAIL"`
	SenderName  string        `env:"MAIL_FROM_NAME" envDefault:"Anonymous"`

	// TLSConfig overrides the client TLS settings; ServerName defaults to Host.
	TLSConfig *tls.Config `env:"-"`
}
