package relay_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anonmail/pkg/logger"
	"github.com/dmitrymomot/anonmail/pkg/mailer"
	"github.com/dmitrymomot/anonmail/relay"
)

// fakeSender records every delivery attempt.
type fakeSender struct {
	mu    sync.Mutex
	sent  []*mailer.Email
	err   error
	calls int
}

func (f *fakeSender) Send(_ context.Context, email *mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type staticConfig struct {
	hint string
	ok   bool
}

func (c staticConfig) Configured() bool          { return c.ok }
func (c staticConfig) ConfigurationHint() string { return c.hint }

var fixedNow = time.Date(2024, 12, 24, 18, 30, 0, 0, time.UTC)

func newService(sender mailer.Sender, opts ...relay.Option) *relay.Service {
	opts = append([]relay.Option{
		relay.WithFrom(mailer.Address("Anonymous", "relay@example.com")),
		relay.WithTransportName("smtp"),
		relay.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return relay.NewService(sender, staticConfig{ok: true}, mailer.Config{
		DefaultLayout:   "base.html",
		FallbackSubject: "You got an anonymous message",
	}, opts...)
}

func validRequest() relay.SendRequest {
	return relay.SendRequest{
		RecipientEmail: "bob@example.com",
		Message:        "Merry Christmas from someone you know!",
	}
}

func requireKind(t *testing.T, err error, kind relay.Kind, message string) *relay.Error {
	t.Helper()
	re, ok := relay.AsError(err)
	require.True(t, ok, "expected *relay.Error, got %T", err)
	require.Equal(t, kind, re.Kind)
	if message != "" {
		require.Equal(t, message, re.Message)
	}
	return re
}

func TestService_Send_Success(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	res, err := newService(sender).Send(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "bob@example.com", res.Recipient)
	assert.Len(t, res.TrackingID, 8)
	assert.Equal(t, fixedNow, res.Timestamp)

	require.Equal(t, 1, sender.calls)
	email := sender.sent[0]
	assert.Equal(t, []string{"bob@example.com"}, email.To)
	assert.Equal(t, "You got an anonymous message", email.Subject)
	assert.Equal(t, `"Anonymous" <relay@example.com>`, email.From)
	assert.Contains(t, email.Text, "Merry Christmas from someone you know!")
	assert.Contains(t, email.HTML, "Merry Christmas from someone you know!")
}

func TestService_Send_SenderNeverReachesEmail(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	req := validRequest()
	req.SenderEmail = "alice@example.com"
	req.SenderName = "Alice"

	_, err := newService(sender).Send(context.Background(), req)
	require.NoError(t, err)

	email := sender.sent[0]
	for _, part := range []string{email.From, email.Subject, email.Text, email.HTML} {
		assert.NotContains(t, part, "alice@example.com")
		assert.NotContains(t, part, "Alice")
	}
	for k, v := range email.Headers {
		assert.NotEqual(t, "reply-to", strings.ToLower(k))
		assert.NotContains(t, v, "alice@example.com")
	}
}

func TestService_Send_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*relay.SendRequest)
		message string
	}{
		{"missing both", func(r *relay.SendRequest) { *r = relay.SendRequest{} }, "Missing required fields: recipientEmail, message"},
		{"missing recipient", func(r *relay.SendRequest) { r.RecipientEmail = "" }, "Missing required fields: recipientEmail"},
		{"missing message", func(r *relay.SendRequest) { r.Message = "" }, "Missing required fields: message"},
		{"whitespace message", func(r *relay.SendRequest) { r.Message = " \n\t " }, "Missing required fields: message"},
		{"not an email", func(r *relay.SendRequest) { r.RecipientEmail = "not-an-email" }, "Invalid recipient email format"},
		{"no tld", func(r *relay.SendRequest) { r.RecipientEmail = "a@b" }, "Invalid recipient email format"},
		{"double at", func(r *relay.SendRequest) { r.RecipientEmail = "a@@b.com" }, "Invalid recipient email format"},
		{"bad sender", func(r *relay.SendRequest) { r.SenderEmail = "alice" }, "Invalid sender email format"},
		{"nine characters", func(r *relay.SendRequest) { r.Message = "123456789" }, "Message must be at least 10 characters"},
		{"too long", func(r *relay.SendRequest) { r.Message = strings.Repeat("a", 2001) }, "Message must be at most 2000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := &fakeSender{}
			req := validRequest()
			tt.mutate(&req)

			_, err := newService(sender).Send(context.Background(), req)
			requireKind(t, err, relay.KindValidation, tt.message)
			assert.Zero(t, sender.calls, "transport must not be called")
		})
	}
}

func TestService_Send_LengthBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
	}{
		{"exactly ten", "1234567890"},
		{"exactly max", strings.Repeat("a", 2000)},
		{"trimmed to ten", "   1234567890   "},
		{"multibyte counts as one", strings.Repeat("é", 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := &fakeSender{}
			req := validRequest()
			req.Message = tt.message

			_, err := newService(sender).Send(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, 1, sender.calls)
		})
	}
}

func TestService_Send_CustomLengths(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	svc := newService(sender, relay.WithMessageLength(0, 5))

	req := validRequest()
	req.Message = "hi"
	_, err := svc.Send(context.Background(), req)
	require.NoError(t, err)

	req.Message = "hello!"
	_, err = svc.Send(context.Background(), req)
	requireKind(t, err, relay.KindValidation, "Message must be at most 5 characters")
}

func TestService_Send_NotConfigured(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	svc := relay.NewService(sender, staticConfig{hint: "Set GMAIL_APP_PASSWORD environment variables"}, mailer.Config{DefaultLayout: "base.html"})

	_, err := svc.Send(context.Background(), validRequest())
	re := requireKind(t, err, relay.KindConfiguration, "Email service not configured")
	assert.Equal(t, "Set GMAIL_APP_PASSWORD environment variables", re.Details)
	assert.Zero(t, sender.calls)
	assert.False(t, svc.Configured())
}

func TestService_Send_ValidationBeforeConfiguration(t *testing.T) {
	t.Parallel()

	svc := relay.NewService(&fakeSender{}, staticConfig{}, mailer.Config{DefaultLayout: "base.html"})
	_, err := svc.Send(context.Background(), relay.SendRequest{})
	requireKind(t, err, relay.KindValidation, "")
}

func TestService_Send_TransportFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		kind    relay.Kind
		message string
		details string
	}{
		{
			name:    "auth",
			err:     mailer.NewTransportError("smtp", true, "535 5.7.8 Username and Password not accepted", nil),
			kind:    relay.KindTransportAuth,
			message: "authentication failed",
			details: "535 5.7.8 Username and Password not accepted",
		},
		{
			name:    "upstream",
			err:     mailer.NewTransportError("resend", false, `{"message":"domain not verified"}`, nil),
			kind:    relay.KindTransport,
			message: "Failed to send email",
			details: `{"message":"domain not verified"}`,
		},
		{
			name:    "long detail is cut",
			err:     mailer.NewTransportError("resend", false, strings.Repeat("x", 500), nil),
			kind:    relay.KindTransport,
			message: "Failed to send email",
			details: strings.Repeat("x", 200),
		},
		{
			name:    "unclassified",
			err:     errors.New("boom"),
			kind:    relay.KindTransport,
			message: "Failed to send email",
			details: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := &fakeSender{err: tt.err}

			_, err := newService(sender).Send(context.Background(), validRequest())
			re := requireKind(t, err, tt.kind, tt.message)
			if tt.details != "" {
				assert.Equal(t, tt.details, re.Details)
			}
			assert.Equal(t, 1, sender.calls, "exactly one attempt")
		})
	}
}

func TestService_Send_OperatorLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo)

	req := validRequest()
	req.SenderEmail = "alice@example.com"
	req.SenderName = "Alice"

	res, err := newService(&fakeSender{}, relay.WithLogger(log)).Send(context.Background(), req)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "anonymous email sent", entry["msg"])
	assert.Equal(t, res.TrackingID, entry["tracking_id"])
	assert.Equal(t, "bob@example.com", entry["recipient"])
	assert.Equal(t, "alice@example.com", entry["sender_email"])
	assert.Equal(t, "Alice", entry["sender_name"])
	assert.Equal(t, "smtp", entry["transport"])
	assert.InDelta(t, float64(len(req.Message)), entry["message_length"], 0)
	assert.NotContains(t, buf.String(), req.Message, "message body is never logged")
}

func TestService_Send_TrackingIDDependsOnSender(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeSender{})
	anon, err := svc.Send(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.SenderEmail = "alice@example.com"
	named, err := svc.Send(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, anon.TrackingID, named.TrackingID)
}
