// Package errormsg converts raw upstream error text into messages safe to
// show end users. Database constraint text and parser errors never reach the
// client verbatim.
package errormsg

import "strings"

// DefaultMessage is the fallback when nothing in the error is recognized.
const DefaultMessage = "Something went wrong. Please try again."

// friendlyByPhrase maps known error substrings (matched case-insensitively)
// to user-facing messages.
var friendlyByPhrase = []struct {
	phrase  string
	message string
}{
	{"connection refused", "Unable to connect. Please check your internet connection."},
	{"network", "Unable to connect. Please check your internet connection."},
	{"timeout", "Request timed out. Please try again."},
	{"context deadline exceeded", "Request timed out. Please try again."},
	{"not authenticated", "Please sign in to continue."},
	{"invalid credentials", "Invalid email or password. Please try again."},
	{"email already registered", "An account with this email already exists."},
	{"token is expired", "Your session has expired. Please sign in again."},
	{"insufficient funds", "Your payment method has insufficient funds."},
	{"card was declined", "Your card was declined. Please try another payment method."},
}

// Friendly returns a user-facing message for err, falling back to fallback
// (or DefaultMessage when fallback is empty).
func Friendly(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultMessage
	}
	if err == nil {
		return fallback
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, f := range friendlyByPhrase {
		if strings.Contains(lower, f.phrase) {
			return f.message
		}
	}
	// Constraint violations and JSON shape errors are internal detail.
	if strings.Contains(msg, "violates") || strings.Contains(msg, "constraint") || strings.Contains(msg, "SQLSTATE") {
		return fallback
	}
	if strings.Contains(lower, "json") || strings.Contains(lower, "unmarshal") {
		return "Unable to save changes. Please try again."
	}
	return fallback
}
