// Package gateway is the thin JSON-over-HTTP client for the marketplace auth
// backend. It normalizes every response into a success payload or a classified
// error and is the only place allowed to interpret the backend's legacy message
// substrings ("Login successful", "invalid password", "captcha verification
// failed", "User not found").
//
// # What this package must NOT do
//
//   - Retry. Each flow decides what a failure means.
//   - Hold flow state. The client is stateless apart from its base URL and
//     HTTP client.
//   - Leak message-substring dispatch upward. Callers branch on APIError,
//     TransportError, and FailureCode only.
package gateway
