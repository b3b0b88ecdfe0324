package authflow

import "time"

// Presenter is the capability interface over the page UI. The Session drives
// every user-visible effect through it, so the concrete widget layer (toasts,
// modals, DOM controls) stays outside this package and tests can record calls.
//
// Redirect and CloseResetDialog receive the delay to apply before navigating;
// the Session never sleeps itself.
type Presenter interface {
	// ShowNotice surfaces a transient, dismissable message.
	ShowNotice(message string)
	// ShowBlockingNotice surfaces a message the user must acknowledge before
	// the page navigates away (lockout, forced redirects).
	ShowBlockingNotice(message string)

	// SetControlsEnabled toggles the flow's submitting controls. The Session
	// disables them for the duration of every network call.
	SetControlsEnabled(purpose Purpose, enabled bool)
	// FocusOTPInput moves focus to the OTP field once a challenge is issued.
	FocusOTPInput(purpose Purpose)
	// ClearOTPInput empties the OTP field (resend path).
	ClearOTPInput(purpose Purpose)
	// SetActionLabel flips the flow's action control text, e.g. to "Resend OTP"
	// once the challenge expires.
	SetActionLabel(purpose Purpose, label string)

	// RenderCountdown paints the remaining challenge time, already formatted
	// as mm:ss.
	RenderCountdown(purpose Purpose, formatted string)

	// Redirect schedules navigation to target after the given delay.
	Redirect(target RedirectTarget, after time.Duration)
	// CloseResetDialog dismisses the forgot-password modal after the delay.
	CloseResetDialog(after time.Duration)
}

// NoopPresenter is a Presenter that discards every call. It backs headless
// sessions and tests that only assert on state.
type NoopPresenter struct{}

// ShowNotice describes the shownotice operation and its observable behavior.
//
// ShowNotice may return an error when input validation, dependency calls, or security checks fail.
// ShowNotice does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) ShowNotice(string) {}

// ShowBlockingNotice describes the showblockingnotice operation and its observable behavior.
//
// ShowBlockingNotice may return an error when input validation, dependency calls, or security checks fail.
// ShowBlockingNotice does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) ShowBlockingNotice(string) {}

// SetControlsEnabled describes the setcontrolsenabled operation and its observable behavior.
//
// SetControlsEnabled may return an error when input validation, dependency calls, or security checks fail.
// SetControlsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) SetControlsEnabled(Purpose, bool) {}

// FocusOTPInput describes the focusotpinput operation and its observable behavior.
//
// FocusOTPInput may return an error when input validation, dependency calls, or security checks fail.
// FocusOTPInput does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) FocusOTPInput(Purpose) {}

// ClearOTPInput describes the clearotpinput operation and its observable behavior.
//
// ClearOTPInput may return an error when input validation, dependency calls, or security checks fail.
// ClearOTPInput does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) ClearOTPInput(Purpose) {}

// SetActionLabel describes the setactionlabel operation and its observable behavior.
//
// SetActionLabel may return an error when input validation, dependency calls, or security checks fail.
// SetActionLabel does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) SetActionLabel(Purpose, string) {}

// RenderCountdown describes the rendercountdown operation and its observable behavior.
//
// RenderCountdown may return an error when input validation, dependency calls, or security checks fail.
// RenderCountdown does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) RenderCountdown(Purpose, string) {}

// Redirect describes the redirect operation and its observable behavior.
//
// Redirect may return an error when input validation, dependency calls, or security checks fail.
// Redirect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) Redirect(RedirectTarget, time.Duration) {}

// CloseResetDialog describes the closeresetdialog operation and its observable behavior.
//
// CloseResetDialog may return an error when input validation, dependency calls, or security checks fail.
// CloseResetDialog does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoopPresenter) CloseResetDialog(time.Duration) {}
