package authflow

import "sync"

// lockoutScope separates the wrong-password counter from the per-purpose OTP
// counters; each scope trips independently.
type lockoutScope uint8

const (
	scopePassword lockoutScope = iota
	scopeOTPLogin
	scopeOTPSignup
	scopeOTPReset

	lockoutScopeCount
)

func otpScope(purpose Purpose) lockoutScope {
	switch purpose {
	case PurposeSignup:
		return scopeOTPSignup
	case PurposePasswordReset:
		return scopeOTPReset
	default:
		return scopeOTPLogin
	}
}

// lockoutGuard tracks consecutive failed verifications per scope and reports
// when the configured threshold is reached. It is a pure counter: the Session
// owns all resulting UI and redirect actions.
//
// Counters live only as long as the Session. They are deliberately not
// persisted, so a page reload starts fresh; the lockout is hard only for the
// current page lifetime.
type lockoutGuard struct {
	mu        sync.Mutex
	threshold int
	counts    [lockoutScopeCount]int
}

func newLockoutGuard(threshold int) *lockoutGuard {
	return &lockoutGuard{threshold: threshold}
}

// record increments the scope's failure counter and returns true when the
// threshold has been reached (caller must lock the flow).
func (g *lockoutGuard) record(scope lockoutScope) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counts[scope]++
	return g.counts[scope] >= g.threshold
}

// failures returns the current count for a scope.
func (g *lockoutGuard) failures(scope lockoutScope) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[scope]
}
