package mailer

import "net/mail"

// Address formats a display name and mailbox as an RFC 5322 address.
// Non-ASCII names are encoded so the result is safe in a header.
// Returns the bare mailbox when name is empty.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return (&mail.Address{Name: name, Address: email}).String()
}

// Email represents a fully-prepared email message ready for sending.
//
// Email has no Reply-To: the relay never exposes a way back
// to whoever submitted the message.
type Email struct {
	Headers map[string]string // Custom headers
	Subject string            // Email subject
	HTML    string            // HTML body content
	Text    string            // Plain text alternative
	From    string            // Overrides the transport's configured sender
	To      []string          // Recipients (at least one required)
}

// Validate reports the first missing required field.
func (e *Email) Validate() error {
	switch {
	case len(e.To) == 0:
		return ErrNoRecipient
	case e.Subject == "":
		return ErrNoSubject
	case e.HTML == "":
		return ErrNoContent
	}
	return nil
}
