package authflow

import (
	"context"
	"time"

	"github.com/vahanlink/authflow/store"
)

// Purpose identifies which of the three concrete flows a challenge belongs to.
//
// Purpose instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Purpose uint8

const (
	// PurposeLogin is an exported constant or variable used by the authentication flow engine.
	PurposeLogin Purpose = iota
	// PurposeSignup is an exported constant or variable used by the authentication flow engine.
	PurposeSignup
	// PurposePasswordReset is an exported constant or variable used by the authentication flow engine.
	PurposePasswordReset

	purposeCount
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p Purpose) String() string {
	switch p {
	case PurposeLogin:
		return "login"
	case PurposeSignup:
		return "signup"
	case PurposePasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}

// ChallengeStatus is the lifecycle state of one OTP challenge instance.
//
// ChallengeStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChallengeStatus uint8

const (
	// StatusIdle is an exported constant or variable used by the authentication flow engine.
	StatusIdle ChallengeStatus = iota
	// StatusAwaitingOTP is an exported constant or variable used by the authentication flow engine.
	StatusAwaitingOTP
	// StatusVerifying is an exported constant or variable used by the authentication flow engine.
	StatusVerifying
	// StatusExpired is an exported constant or variable used by the authentication flow engine.
	StatusExpired
	// StatusAuthenticated is an exported constant or variable used by the authentication flow engine.
	StatusAuthenticated
	// StatusLocked is an exported constant or variable used by the authentication flow engine.
	StatusLocked
	// StatusSettingNewPassword is an exported constant or variable used by the authentication flow engine.
	StatusSettingNewPassword
	// StatusCompleted is an exported constant or variable used by the authentication flow engine.
	StatusCompleted
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s ChallengeStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaitingOTP:
		return "awaiting_otp"
	case StatusVerifying:
		return "verifying"
	case StatusExpired:
		return "expired"
	case StatusAuthenticated:
		return "authenticated"
	case StatusLocked:
		return "locked"
	case StatusSettingNewPassword:
		return "setting_new_password"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// terminal reports whether the status ends the challenge instance for good.
func (s ChallengeStatus) terminal() bool {
	return s == StatusLocked || s == StatusAuthenticated || s == StatusCompleted
}

// Challenge is one instance of the OTP lifecycle tied to a contact number and
// purpose. It is created when the user submits a valid contact number and reset
// to Idle on resend, expiry, success, or lockout.
type Challenge struct {
	ID         string
	Contact    string
	Purpose    Purpose
	IssuedAt   time.Time
	TTLSeconds int
	Status     ChallengeStatus

	// UserExists mirrors the issuance response flag; it decides the post-verify
	// redirect target for signup challenges.
	UserExists bool

	// verifiedOTP is retained after a successful forgot-verify so the
	// forgot-complete call can replay it alongside the new password.
	verifiedOTP string
}

// RedirectTarget is the post-authentication navigation destination.
//
// RedirectTarget instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectTarget string

const (
	// TargetIndex is an exported constant or variable used by the authentication flow engine.
	TargetIndex RedirectTarget = "index"
	// TargetRegister is an exported constant or variable used by the authentication flow engine.
	TargetRegister RedirectTarget = "register"
	// TargetDriverDashboard is an exported constant or variable used by the authentication flow engine.
	TargetDriverDashboard RedirectTarget = "driver-dashboard"
)

// SignupDetails carries the extra fields of a signup challenge. FullName and
// Password are required by the backend; Email is optional.
type SignupDetails struct {
	FullName string `validate:"required"`
	Password string `validate:"required,min=4"`
	Email    string `validate:"omitempty,email"`
}

// SessionStore persists the authenticated-session flag. Persist must write the
// logged-in marker and the verified phone as one atomic pair and clear any stale
// membership cache so a fresh session never inherits a previous user's state.
// Satisfied by [store.Redis] and [store.Memory].
type SessionStore interface {
	Persist(ctx context.Context, phone string) error
	Load(ctx context.Context) (store.Record, error)
	Clear(ctx context.Context) error
}

// CaptchaProvider is the capability interface over the human-verification
// widget. Token returns the current single-use token for a widget instance, or
// an empty string when the widget is unavailable; Reset invalidates it so a
// token is never reused across attempts.
type CaptchaProvider interface {
	Required(purpose Purpose) bool
	Token(widgetID string) string
	Reset(widgetID string)
}
