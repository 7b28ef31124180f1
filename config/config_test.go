package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anonmail/config"
)

// noEnvFile points Load at a file that does not exist so tests never pick up a developer's .env.
func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "1.0.0", cfg.Server.Version)
	assert.Equal(t, config.TransportSMTP, cfg.Transport)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "implicit", cfg.SMTP.TLSMode)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, 10, cfg.Message.MinLength)
	assert.Equal(t, 2000, cfg.Message.MaxLength)
	assert.Equal(t, "Anonymous", cfg.Mail.FromName)
	assert.Equal(t, "You got an anonymous message", cfg.Mailer.FallbackSubject)
}

func TestLoad_SharesMailboxAcrossTransports(t *testing.T) {
	t.Setenv("OFFICIAL_EMAIL", "relay@example.com")
	t.Setenv("GMAIL_APP_PASSWORD", "abcd efgh ijkl mnop")

	cfg, err := config.Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "relay@example.com", cfg.Mail.OfficialEmail)
	assert.Equal(t, "relay@example.com", cfg.SMTP.Username)
	assert.Equal(t, "relay@example.com", cfg.SMTP.SenderEmail)
	assert.Equal(t, "relay@example.com", cfg.Resend.SenderEmail)
	assert.Equal(t, "relay@example.com", cfg.SES.SenderEmail)
	assert.True(t, cfg.Configured())
	assert.Empty(t, cfg.ConfigurationHint())
	require.NoError(t, cfg.TransportCheck()(context.Background()))
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=8080\nMAIL_TRANSPORT=Resend\n"), 0o600))
	t.Setenv("PORT", "9090")
	t.Cleanup(func() { _ = os.Unsetenv("MAIL_TRANSPORT") })

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "environment wins over .env")
	assert.Equal(t, config.TransportResend, cfg.Transport)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"unknown transport", map[string]string{"MAIL_TRANSPORT": "pigeon"}, config.ErrUnknownTransport},
		{"bad tls mode", map[string]string{"SMTP_TLS_MODE": "none"}, config.ErrInvalidTLSMode},
		{"min above max", map[string]string{"MESSAGE_MIN_LENGTH": "50", "MESSAGE_MAX_LENGTH": "10"}, config.ErrInvalidLengths},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(noEnvFile(t))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfig_Missing(t *testing.T) {
	t.Parallel()

	base := func(transport string) config.Config {
		var cfg config.Config
		cfg.Transport = transport
		cfg.Mail.OfficialEmail = "relay@example.com"
		return cfg
	}

	smtpCfg := base(config.TransportSMTP)
	smtpCfg.SMTP.Password = "your-app-password"
	assert.Equal(t, []string{"GMAIL_APP_PASSWORD"}, smtpCfg.Missing())
	assert.Equal(t, "Set GMAIL_APP_PASSWORD environment variables", smtpCfg.ConfigurationHint())

	resendCfg := base(config.TransportResend)
	resendCfg.Mail.OfficialEmail = ""
	assert.Equal(t, []string{"OFFICIAL_EMAIL", "RESEND_API_KEY"}, resendCfg.Missing())
	assert.Equal(t, "Set OFFICIAL_EMAIL and RESEND_API_KEY environment variables", resendCfg.ConfigurationHint())

	sesCfg := base(config.TransportSES)
	sesCfg.SES.AccessKeyID = "AKIDEXAMPLE"
	assert.Equal(t, []string{"AWS_SECRET_ACCESS_KEY"}, sesCfg.Missing())
	require.Error(t, sesCfg.TransportCheck()(context.Background()))
}

func TestConfig_ConfiguredWithYourPrefixedMailbox(t *testing.T) {
	t.Parallel()

	var cfg config.Config
	cfg.Transport = config.TransportSMTP
	cfg.Mail.OfficialEmail = "yourfriend@example.com"
	cfg.SMTP.Password = "abcdefghijklmnop"

	assert.Empty(t, cfg.Missing())
	assert.True(t, cfg.Configured())
	require.NoError(t, cfg.TransportCheck()(context.Background()))
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "  ", "your-email@gmail.com", "YOUR_KEY", "your app password", "your.name@example.com", "your", "<api-key>", "changeme", "Change-Me", "placeholder", "xxx", "TODO"} {
		assert.True(t, config.IsPlaceholder(v), "%q should be a placeholder", v)
	}
	for _, v := range []string{"relay@example.com", "re_123abc", "abcd efgh ijkl mnop", "youth@example.com", "yoursecretsanta@gmail.com", "young@example.com", "yourkeyABC123"} {
		assert.False(t, config.IsPlaceholder(v), "%q should not be a placeholder", v)
	}
}
