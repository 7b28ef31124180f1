package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netsmtp "net/smtp"
	"strconv"
	"time"

	"github.com/dmitrymomot/anonmail/pkg/mailer"
)

const transportName = "smtp"

// ErrStartTLSUnsupported is returned when starttls mode is configured but the
// server does not advertise the extension.
var ErrStartTLSUnsupported = errors.New("server does not support STARTTLS")

// Sender implements mailer.Sender over SMTP. Each Send opens a new
// connection, authenticates, delivers one message, and closes it.
type Sender struct {
	config Config
}

// New creates a new SMTP sender.
func New(cfg Config) *Sender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSImplicit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Sender{config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	from := email.From
	if from == "" {
		from = mailer.Address(s.config.SenderName, s.config.SenderEmail)
	}

	msg, err := buildMessage(from, email, time.Now())
	if err != nil {
		return mailer.NewTransportError(transportName, false, "", fmt.Errorf("build message: %w", err))
	}

	// Connect, auth and delivery share one deadline.
	deadline := time.Now().Add(s.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := s.dial(ctx, deadline)
	if err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.SetDeadline(deadline); err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}

	client, err := netsmtp.NewClient(conn, s.config.Host)
	if err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}
	defer client.Close()

	return s.deliver(client, msg, email.To)
}

func (s *Sender) dial(ctx context.Context, deadline time.Time) (net.Conn, error) {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := &net.Dialer{Deadline: deadline}

	if s.config.TLSMode == TLSImplicit {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: s.tlsConfig()}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

func (s *Sender) deliver(client *netsmtp.Client, msg []byte, to []string) error {
	if s.config.TLSMode == TLSStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return mailer.NewTransportError(transportName, false, "", ErrStartTLSUnsupported)
		}
		if err := client.StartTLS(s.tlsConfig()); err != nil {
			return mailer.NewTransportError(transportName, false, "", err)
		}
	}

	if s.config.Username != "" {
		auth := netsmtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return mailer.NewTransportError(transportName, true, "", err)
		}
	}

	if err := client.Mail(s.config.SenderEmail); err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return mailer.NewTransportError(transportName, false, "", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}
	if _, err := w.Write(msg); err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}
	if err := w.Close(); err != nil {
		return mailer.NewTransportError(transportName, false, "", err)
	}

	// The message is accepted once DATA completes; a failed QUIT is not a delivery failure.
	_ = client.Quit()
	return nil
}

func (s *Sender) tlsConfig() *tls.Config {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if s.config.TLSConfig != nil {
		cfg = s.config.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = s.config.Host
	}
	return cfg
}
