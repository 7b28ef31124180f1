package relay

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/anonmail/pkg/sanitizer"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidEmail reports whether s is an acceptable address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// SendRequest is the payload of an anonymous send.
type SendRequest struct {
	RecipientEmail string `json:"recipientEmail"`
	Message        string `json:"message"`
	SenderEmail    string `json:"senderEmail,omitempty"`
	SenderName     string `json:"senderName,omitempty"`
}

// SendResult is returned for a delivered message.
type SendResult struct {
	Timestamp  time.Time `json:"timestamp"`
	TrackingID string    `json:"trackingId"`
	Recipient  string    `json:"recipient"`
	Success    bool      `json:"success"`
}

// normalize trims addresses and cleans the message text.
func (r SendRequest) normalize() SendRequest {
	return SendRequest{
		RecipientEmail: strings.TrimSpace(r.RecipientEmail),
		Message:        sanitizer.NormalizeText(r.Message),
		SenderEmail:    strings.TrimSpace(r.SenderEmail),
		SenderName:     strings.TrimSpace(sanitizer.StripHTML(r.SenderName)),
	}
}

// validate checks a normalized request in order and returns the first failure.
func (r SendRequest) validate(minLen, maxLen int) *Error {
	var missing []string
	if r.RecipientEmail == "" {
		missing = append(missing, "recipientEmail")
	}
	if r.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return validationError(msgMissingFields + strings.Join(missing, ", "))
	}

	if !ValidEmail(r.RecipientEmail) {
		return validationError(msgInvalidRecipient)
	}
	if r.SenderEmail != "" && !ValidEmail(r.SenderEmail) {
		return validationError(msgInvalidSender)
	}

	n := sanitizer.CharCount(r.Message)
	if minLen > 0 && n < minLen {
		return validationError(fmt.Sprintf("Message must be at least %d characters", minLen))
	}
	if maxLen > 0 && n > maxLen {
		return validationError(fmt.Sprintf("Message must be at most %d characters", maxLen))
	}
	return nil
}
