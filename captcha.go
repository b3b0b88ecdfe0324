package authflow

import (
	"net"
	"net/url"
	"strings"
	"sync"
)

// WidgetCaptcha is the concrete CaptchaProvider over an embedded verification
// widget. The embedding page pushes tokens in through SetToken when the widget
// callback fires; the Session consumes them at most once per attempt.
//
// Captcha is never required for plain password login, and never required when
// the page origin is a local-development host (loopback, file origin, or LAN
// address), matching the production widget's availability.
type WidgetCaptcha struct {
	mu     sync.Mutex
	tokens map[string]string

	localEnv bool
}

// NewWidgetCaptcha describes the newwidgetcaptcha operation and its observable behavior.
//
// NewWidgetCaptcha may return an error when input validation, dependency calls, or security checks fail.
// NewWidgetCaptcha does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewWidgetCaptcha(origin string) *WidgetCaptcha {
	return &WidgetCaptcha{
		tokens:   make(map[string]string),
		localEnv: isLocalOrigin(origin),
	}
}

// SetToken records the widget callback's token for one widget instance,
// replacing any unconsumed token for that instance.
func (w *WidgetCaptcha) SetToken(widgetID, token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tokens[widgetID] = token
}

// Required describes the required operation and its observable behavior.
//
// Required may return an error when input validation, dependency calls, or security checks fail.
// Required does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (w *WidgetCaptcha) Required(purpose Purpose) bool {
	if w.localEnv {
		return false
	}
	return purpose == PurposeSignup || purpose == PurposePasswordReset
}

// Token describes the token operation and its observable behavior.
//
// Token may return an error when input validation, dependency calls, or security checks fail.
// Token does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (w *WidgetCaptcha) Token(widgetID string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tokens[widgetID]
}

// Reset describes the reset operation and its observable behavior.
//
// Reset may return an error when input validation, dependency calls, or security checks fail.
// Reset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (w *WidgetCaptcha) Reset(widgetID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.tokens, widgetID)
}

// NoopCaptcha is a CaptchaProvider that never requires verification. It backs
// tests and deployments without the widget.
type NoopCaptcha struct{}

// Required describes the required operation and its observable behavior.
//
// Required may return an error when input validation, dependency calls, or security checks fail.
// Required does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopCaptcha) Required(Purpose) bool { return false }

// Token describes the token operation and its observable behavior.
//
// Token may return an error when input validation, dependency calls, or security checks fail.
// Token does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopCaptcha) Token(string) string { return "" }

// Reset describes the reset operation and its observable behavior.
//
// Reset may return an error when input validation, dependency calls, or security checks fail.
// Reset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopCaptcha) Reset(string) {}

// isLocalOrigin reports whether the page origin is a local-development host.
// File-served pages report the literal origin "null".
func isLocalOrigin(origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" || origin == "null" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme == "file" {
		return true
	}

	host := u.Hostname()
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
