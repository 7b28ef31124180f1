package mailer

import (
	"context"
	"errors"
	"strings"
	texttemplate "text/template"
)

// Config holds the defaults applied to templated sends.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"You got an anonymous message"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
}

// Mailer renders templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	cfg      Config
}

func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, cfg: cfg}
}

// SendParams describes one templated message to a single recipient.
// Subject, Layout and From override the template or config defaults.
type SendParams struct {
	To       string
	Template string
	Data     any

	Subject string
	Layout  string
	From    string
}

// Send renders params.Template and delivers it. The subject comes from
// params, then the template's Subject metadata, then Config, and may use
// template syntax against params.Data.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.cfg.DefaultLayout
	}
	res, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject, err := expandSubject(m.subject(params.Subject, res.Metadata), params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	return m.SendRaw(ctx, &Email{
		To:      []string{params.To},
		From:    params.From,
		Subject: subject,
		HTML:    res.HTML,
		Text:    res.Text,
	})
}

// SendRaw validates email and delivers it as is. Sender errors that are not
// already classified come back as a *TransportError.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	err := m.sender.Send(ctx, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAuthFailed), errors.Is(err, ErrSendFailed):
		return err
	default:
		return NewTransportError("", false, "", err)
	}
}

func (m *Mailer) subject(override string, meta map[string]any) string {
	if override != "" {
		return override
	}
	if s, ok := meta["Subject"].(string); ok && s != "" {
		return s
	}
	return m.cfg.FallbackSubject
}

func expandSubject(subject string, data any) (string, error) {
	if !strings.Contains(subject, "{{") {
		return subject, nil
	}
	tmpl, err := texttemplate.New("subject").Option("missingkey=error").Parse(subject)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
