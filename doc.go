// Package authflow implements the authentication and account-recovery flow of a
// commercial-vehicle marketplace front end: password login, OTP-verified signup,
// and a forgot-password sequence, all driven by one challenge/verify state machine
// with countdown timers, CAPTCHA gating, and brute-force lockout counters.
//
// The package is client-side with respect to the auth backend: it never generates
// or stores OTPs, it only tracks the client-observable challenge lifecycle and the
// wire contract of the /auth endpoints.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Session], [Builder], [Config], the
// [Presenter] and [CaptchaProvider] capability interfaces, and value types
// (Challenge, AuditEvent, MetricsSnapshot). HTTP plumbing lives under
// internal/gateway and is never exported; session-flag persistence lives in the
// store subpackage.
//
// # What this package must NOT do
//
//   - Retry failed requests. Each flow decides what a failure means; nothing in
//     this subsystem is retried automatically.
//   - Issue more than one network call per flow at a time. The per-flow
//     submission lock is the only mutual-exclusion mechanism.
//   - Branch on server message substrings outside internal/gateway. Legacy
//     messages are parsed into classified errors at that boundary only.
package authflow
