package resend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/anonmail/pkg/mailer"
)

// transportName identifies this transport in errors and logs.
const transportName = "resend"

// maxBodyCapture bounds how much of an error response is kept.
const maxBodyCapture = 4 << 10

// Config holds the Resend credentials and the service mailbox.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"OFFICIAL_EMAIL"`
	SenderName  string `env:"MAIL_FROM_NAME" envDefault:"Anonymous"`

	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper `env:"-"`
}

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &Sender{config: cfg}
}

// Send implements mailer.Sender. Each call builds its own client so the
// recorded response belongs to this request only.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	rec := &recorder{next: s.config.Transport}
	client := resend.NewCustomClient(&http.Client{Transport: rec}, s.config.APIKey)

	from := email.From
	if from == "" {
		from = mailer.Address(s.config.SenderName, s.config.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		Headers: email.Headers,
	}

	if _, err := client.Emails.SendWithContext(ctx, req); err != nil {
		return classify(rec, err)
	}
	return nil
}

// classify maps a failed call to a mailer.TransportError using the recorded HTTP status.
func classify(rec *recorder, err error) error {
	switch {
	case rec.status == 0:
		return mailer.NewTransportError(transportName, false, "", err)
	case rec.status == http.StatusUnauthorized || rec.status == http.StatusForbidden:
		return mailer.NewTransportError(transportName, true, rec.detail(), err)
	default:
		return mailer.NewTransportError(transportName, false, rec.detail(), err)
	}
}

// recorder captures the status and error body of the API response.
type recorder struct {
	next   http.RoundTripper
	body   []byte
	status int
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	r.status = resp.StatusCode
	if resp.StatusCode < 300 {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyCapture))
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (r *recorder) detail() string {
	if text := strings.TrimSpace(string(r.body)); text != "" {
		return text
	}
	return http.StatusText(r.status)
}
