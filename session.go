package authflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vahanlink/authflow/internal/gateway"
)

// Notice texts surfaced through the Presenter. The server-compat substrings
// stay inside internal/gateway; these are the client-owned replacements.
const (
	noticeContactInvalid    = "Please enter a valid 10-digit mobile number."
	noticePasswordEmpty     = "Please enter your password."
	noticeSignupDetails     = "Please fill in all required details."
	noticePasswordShort     = "Password must be at least 4 characters."
	noticePasswordMismatch  = "Passwords do not match."
	noticeOTPFormat         = "Please enter the 4-digit OTP."
	noticeOTPExpired        = "This OTP has expired."
	noticeOTPResent         = "A new OTP has been sent to your number."
	noticeCaptchaIncomplete = "Please complete the captcha first."
	noticeCaptchaRemediate  = "Captcha verification failed. Please use password or OTP login."
	noticeAlreadyRegistered = "This number is already registered. Please log in instead."
	noticeLockedOut         = "Too many failed attempts. Please try again later."
	noticeUnexpected        = "Unexpected response from the server. Please try again."
	noticeResetVerified     = "OTP verified. Please set your new password."
	noticeResetCompleted    = "Password reset successful! You can now log in."

	labelResend = "Resend OTP"
	labelVerify = "Verify OTP"
)

// Session orchestrates the password-login, signup-OTP, and forgot-password
// flows as three instances of one challenge/verify state machine. It owns the
// countdown timers, the lockout counters, and the submission locks; every
// user-visible effect goes through the configured Presenter.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	config    Config
	gateway   *gateway.Client
	store     SessionStore
	captcha   CaptchaProvider
	presenter Presenter
	audit     *auditDispatcher
	metrics   *Metrics
	log       zerolog.Logger
	validate  *validator.Validate
	lockout   *lockoutGuard

	mu    sync.Mutex
	flows [purposeCount]*otpFlow
}

// otpFlow is the per-purpose half of the state machine: the live challenge,
// its timer, and the submission lock. Guarded by Session.mu except for the
// timer, which synchronizes itself.
type otpFlow struct {
	purpose   Purpose
	timer     *Timer
	inFlight  bool
	challenge *Challenge
	locked    bool

	// expiryPending is set when the countdown reaches zero while a verify
	// call is in flight; the Expired transition is applied when it resolves.
	expiryPending bool
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) Close() {
	if s == nil {
		return
	}
	for _, f := range s.flows {
		if f != nil && f.timer != nil {
			f.timer.Cancel()
		}
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

func (s *Session) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

// Status describes the status operation and its observable behavior.
//
// Status may return an error when input validation, dependency calls, or security checks fail.
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) Status(purpose Purpose) ChallengeStatus {
	if s == nil || purpose >= purposeCount {
		return StatusIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.flows[purpose]
	if f.locked {
		return StatusLocked
	}
	if f.challenge == nil {
		return StatusIdle
	}
	return f.challenge.Status
}

// ActiveChallenge describes the activechallenge operation and its observable behavior.
//
// ActiveChallenge may return an error when input validation, dependency calls, or security checks fail.
// ActiveChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) ActiveChallenge(purpose Purpose) (Challenge, bool) {
	if s == nil || purpose >= purposeCount {
		return Challenge{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.flows[purpose]
	if f.challenge == nil {
		return Challenge{}, false
	}
	return *f.challenge, true
}

// Logout clears the persisted session pair. It shares the store with account
// deletion, which lives outside the OTP core.
func (s *Session) Logout(ctx context.Context) error {
	if s == nil || s.store == nil {
		return ErrSessionNotReady
	}
	err := s.store.Clear(ctx)
	s.emitAudit(ctx, auditEventSessionCleared, err == nil, "", PurposeLogin, "", err, nil)
	return err
}

/*
====================================
SUBMISSION LOCK
====================================
*/

// beginSubmission takes the per-flow submission lock and disables the flow's
// controls. At most one network call is in flight per flow; a second
// submission is rejected without touching the network.
func (s *Session) beginSubmission(purpose Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.flows[purpose]
	if f.inFlight {
		return ErrRequestInFlight
	}
	f.inFlight = true
	s.presenter.SetControlsEnabled(purpose, false)
	return nil
}

// endSubmission releases the lock. Controls are re-enabled unless the flow
// just moved to AwaitingOTP, where everything but the OTP field stays frozen.
func (s *Session) endSubmission(purpose Purpose, enableControls bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.flows[purpose]
	f.inFlight = false
	if enableControls {
		s.presenter.SetControlsEnabled(purpose, true)
	}
}

/*
====================================
EXPIRY / LOCKOUT TRANSITIONS
====================================
*/

// handleExpiry is the timer's onExpire callback. The transition to Expired
// happens exactly once per challenge, at countdown zero. When zero is reached
// mid-verification the transition is deferred until the call resolves; a
// successful verification wins over the pending expiry.
func (s *Session) handleExpiry(purpose Purpose) {
	s.mu.Lock()
	f := s.flows[purpose]
	ch := f.challenge
	if ch == nil {
		s.mu.Unlock()
		return
	}
	if ch.Status == StatusVerifying {
		f.expiryPending = true
		s.mu.Unlock()
		return
	}
	if ch.Status != StatusAwaitingOTP {
		s.mu.Unlock()
		return
	}
	ch.Status = StatusExpired
	challengeID := ch.ID
	contact := ch.Contact
	s.mu.Unlock()

	s.expireEffects(purpose, contact, challengeID)
}

// expireEffects surfaces an applied Expired transition: metric, notice, the
// resend label, and the audit record.
func (s *Session) expireEffects(purpose Purpose, contact, challengeID string) {
	s.metricInc(MetricOTPExpired)
	s.log.Debug().Str("purpose", purpose.String()).Msg("otp challenge expired")
	s.presenter.ShowNotice(noticeOTPExpired)
	s.presenter.SetActionLabel(purpose, labelResend)
	s.emitAudit(context.Background(), auditEventChallengeExpired, false, contact, purpose, challengeID, ErrOTPExpired, nil)
}

// lockFlow trips the terminal lockout for a flow: blocking notice, forced
// navigation home, and a dead challenge for the rest of the page lifetime.
func (s *Session) lockFlow(ctx context.Context, purpose Purpose, contact, eventType string) *FlowError {
	s.mu.Lock()
	f := s.flows[purpose]
	f.locked = true
	f.expiryPending = false
	var challengeID string
	if f.challenge != nil {
		f.challenge.Status = StatusLocked
		challengeID = f.challenge.ID
	}
	if f.timer != nil {
		f.timer.Cancel()
	}
	s.mu.Unlock()

	s.log.Warn().Str("purpose", purpose.String()).Msg("lockout threshold reached")
	s.presenter.ShowBlockingNotice(noticeLockedOut)
	s.presenter.Redirect(TargetIndex, 0)
	s.emitAudit(ctx, eventType, false, contact, purpose, challengeID, ErrLockedOut, nil)
	return lockoutError(noticeLockedOut)
}

/*
====================================
ERROR SURFACING
====================================
*/

// surfaceFailure converts a gateway error into the user notice and tagged
// FlowError for failures with no flow-specific handling.
func (s *Session) surfaceFailure(err error) *FlowError {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		s.presenter.ShowNotice(apiErr.Message)
		return apiError(apiErr.Message, err)
	}
	s.presenter.ShowNotice(noticeUnexpected)
	return transportError(noticeUnexpected, err)
}

func (s *Session) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	contact string,
	purpose Purpose,
	challengeID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		Contact:     contact,
		Purpose:     purpose.String(),
		ChallengeID: challengeID,
		Success:     success,
		Metadata:    metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	s.audit.Emit(ctx, event)
}
