// Package handlers exposes the relay over HTTP.
//
// Relay serves POST /send-anonymous-email, Status serves the service
// descriptor and the configuration probe. ErrorHandler renders every error a
// handler returns as a JSON body of the form
//
//	{"success": false, "error": "...", "details": "..."}
//
// Validation failures map to 400, everything else to 500. Internal details
// never reach the client; they are logged instead.
package handlers
