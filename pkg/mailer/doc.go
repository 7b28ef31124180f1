// Package mailer renders and delivers email through a pluggable transport.
//
// The package separates delivery (Sender implementations in the smtp, resend
// and ses subpackages) from rendering, so the transport can be switched by
// configuration while the message stays the same.
//
//   - Sender: Interface that transports implement
//   - Renderer: Converts markdown templates with YAML frontmatter to HTML
//   - Mailer: Combines a Sender and a Renderer
//
// # Usage
//
//	renderer := mailer.NewRenderer(templates.FS)
//	m := mailer.New(sender, renderer, mailer.Config{
//		FallbackSubject: "You got an anonymous message",
//		DefaultLayout:   "base.html",
//	})
//
//	err := m.Send(ctx, mailer.SendParams{
//		To:       "someone@example.com",
//		Template: "anonymous.md",
//		From:     mailer.Address("Anonymous", "relay@example.com"),
//		Data:     map[string]any{"Message": text},
//	})
//
// # Templates
//
// Templates are markdown files with optional YAML frontmatter:
//
//	---
//	Subject: You got an anonymous message
//	---
//
//	{{.Message}}
//
// The subject supports Go template syntax. Rendered markdown keeps line
// breaks, raw HTML in the source is dropped, and the result is passed
// through the sanitizer before it is placed in the layout's {{.Content}}.
//
// # Errors
//
// Transports report failures as *TransportError. Use errors.Is with
// ErrAuthFailed to tell rejected credentials apart from other delivery
// failures (ErrSendFailed), and TransportDetail to get a short upstream
// description that is safe to return to a client.
package mailer
