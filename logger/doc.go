// Package logger provides security-aware structured logging for appkit
// applications, built on zerolog.
//
// Every record passes through a redaction filter before emission:
// structured fields whose names look sensitive (password, token, secret,
// api_key, ...) are replaced with a redaction marker, and free-text
// messages are scanned for credential-, card-, and SSN-like content.
//
// Security-relevant events can additionally be appended to a dedicated
// audit sink, one JSON line per event:
//
//	log := logger.Get("auth")
//	log.LogSecurityEvent("user_login", map[string]any{"user_id": id})
package logger
