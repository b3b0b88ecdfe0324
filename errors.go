package authflow

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotReady is an exported constant or variable used by the authentication flow engine.
	ErrSessionNotReady = errors.New("session not initialized")
	// ErrRequestInFlight is an exported constant or variable used by the authentication flow engine.
	ErrRequestInFlight = errors.New("request already in flight for this flow")
	// ErrContactInvalid is an exported constant or variable used by the authentication flow engine.
	ErrContactInvalid = errors.New("contact number must be 10 digits starting with 6-9")
	// ErrPasswordEmpty is an exported constant or variable used by the authentication flow engine.
	ErrPasswordEmpty = errors.New("password must not be empty")
	// ErrOTPFormat is an exported constant or variable used by the authentication flow engine.
	ErrOTPFormat = errors.New("otp must be exactly 4 digits")
	// ErrOTPExpired is an exported constant or variable used by the authentication flow engine.
	ErrOTPExpired = errors.New("otp challenge expired")
	// ErrChallengeNotActive is an exported constant or variable used by the authentication flow engine.
	ErrChallengeNotActive = errors.New("no active otp challenge")
	// ErrChallengeTerminal is an exported constant or variable used by the authentication flow engine.
	ErrChallengeTerminal = errors.New("challenge already reached a terminal state")
	// ErrCaptchaRequired is an exported constant or variable used by the authentication flow engine.
	ErrCaptchaRequired = errors.New("captcha must be completed before requesting an otp")
	// ErrCaptchaRejected is an exported constant or variable used by the authentication flow engine.
	ErrCaptchaRejected = errors.New("captcha verification failed by backend")
	// ErrAlreadyRegistered is an exported constant or variable used by the authentication flow engine.
	ErrAlreadyRegistered = errors.New("contact number already registered")
	// ErrInvalidPassword is an exported constant or variable used by the authentication flow engine.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUserNotFound is an exported constant or variable used by the authentication flow engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrLockedOut is an exported constant or variable used by the authentication flow engine.
	ErrLockedOut = errors.New("too many failed attempts, flow locked")
	// ErrPasswordMismatch is an exported constant or variable used by the authentication flow engine.
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")
	// ErrPasswordTooShort is an exported constant or variable used by the authentication flow engine.
	ErrPasswordTooShort = errors.New("new password must be at least 4 characters")
	// ErrBackendUnavailable is an exported constant or variable used by the authentication flow engine.
	ErrBackendUnavailable = errors.New("auth backend unavailable or returned an unexpected response")
)

// ErrorKind classifies a flow failure for caller branching, replacing the
// original's message-substring dispatch.
//
// ErrorKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorKind uint8

const (
	// KindUnknown is an exported constant or variable used by the authentication flow engine.
	KindUnknown ErrorKind = iota
	// KindValidation is an exported constant or variable used by the authentication flow engine.
	KindValidation
	// KindAPI is an exported constant or variable used by the authentication flow engine.
	KindAPI
	// KindTransport is an exported constant or variable used by the authentication flow engine.
	KindTransport
	// KindLockout is an exported constant or variable used by the authentication flow engine.
	KindLockout
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAPI:
		return "api"
	case KindTransport:
		return "transport"
	case KindLockout:
		return "lockout"
	default:
		return "unknown"
	}
}

// FlowError is the tagged error returned by every Session operation that fails.
// Detail holds the user-presentable notice text; Err holds the underlying
// sentinel or wrapped cause.
type FlowError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Error describes the error operation and its observable behavior.
//
// Error may return an error when input validation, dependency calls, or security checks fail.
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap may return an error when input validation, dependency calls, or security checks fail.
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *FlowError) Unwrap() error {
	return e.Err
}

func validationError(detail string, err error) *FlowError {
	return &FlowError{Kind: KindValidation, Detail: detail, Err: err}
}

func apiError(detail string, err error) *FlowError {
	return &FlowError{Kind: KindAPI, Detail: detail, Err: err}
}

func transportError(detail string, err error) *FlowError {
	return &FlowError{Kind: KindTransport, Detail: detail, Err: err}
}

func lockoutError(detail string) *FlowError {
	return &FlowError{Kind: KindLockout, Detail: detail, Err: ErrLockedOut}
}

// KindOf describes the kindof operation and its observable behavior.
//
// KindOf may return an error when input validation, dependency calls, or security checks fail.
// KindOf does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func KindOf(err error) ErrorKind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
