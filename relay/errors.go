package relay

import "errors"

// Kind classifies a failed send.
type Kind int

const (
	// KindValidation means the request was rejected before any send.
	KindValidation Kind = iota + 1
	// KindConfiguration means the transport is not configured.
	KindConfiguration
	// KindTransportAuth means the transport rejected the service credentials.
	KindTransportAuth
	// KindTransport means the transport failed for any other reason.
	KindTransport
	// KindUnexpected covers everything else.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindTransportAuth:
		return "transport_auth"
	case KindTransport:
		return "transport"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Client-facing messages.
const (
	msgMissingFields    = "Missing required fields: "
	msgInvalidRecipient = "Invalid recipient email format"
	msgInvalidSender    = "Invalid sender email format"
	msgNotConfigured    = "Email service not configured"
	msgAuthFailed       = "authentication failed"
	msgSendFailed       = "Failed to send email"
	msgServerError      = "Server error"
	msgUnexpectedDetail = "An unexpected error occurred"
)

// Error is the failure outcome of Service.Send.
// Message and Details are safe to show to clients; Err is for logs only.
type Error struct {
	Err     error
	Message string
	Details string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts *Error from err.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	re, ok := AsError(err)
	return ok && re.Kind == kind
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}
