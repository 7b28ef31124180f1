package mailer

import (
	"errors"
	"unicode/utf8"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("email must have HTML content")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrAuthFailed indicates the transport rejected the configured credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)

// maxDetailLength bounds the upstream text surfaced to API clients.
const maxDetailLength = 200

// TransportError describes a delivery failure reported by a transport.
// It matches ErrAuthFailed when Auth is set and ErrSendFailed otherwise.
type TransportError struct {
	Err       error  // Underlying error, if any
	Transport string // "smtp", "resend", "ses"
	Detail    string // What the upstream said
	Auth      bool   // Credentials were rejected
}

// NewTransportError builds a TransportError. An empty detail falls back to err's text.
func NewTransportError(transport string, auth bool, detail string, err error) *TransportError {
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return &TransportError{Transport: transport, Auth: auth, Detail: detail, Err: err}
}

func (e *TransportError) Error() string {
	if e.Transport == "" {
		return e.Detail
	}
	return e.Transport + ": " + e.Detail
}

func (e *TransportError) Unwrap() []error {
	sentinel := ErrSendFailed
	if e.Auth {
		sentinel = ErrAuthFailed
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// TransportDetail returns the upstream description of err, cut to 200 characters.
func TransportDetail(err error) string {
	if err == nil {
		return ""
	}
	detail := err.Error()
	var te *TransportError
	if errors.As(err, &te) {
		detail = te.Detail
	}
	return truncate(detail, maxDetailLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
