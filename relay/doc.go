// Package relay implements the anonymous send operation.
//
// A Service validates a SendRequest, refuses to send while the mail transport
// is unconfigured, renders the message through the embedded templates and
// hands it to exactly one mailer.Sender. Every failure is returned as *Error
// with a Kind that the HTTP layer maps to a status code.
//
// The sender's address and name, when supplied, are used only for the
// operator log line and the tracking ID. They never reach the email.
package relay
