package authflow

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authflow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Gateway  GatewayConfig
	OTP      OTPConfig
	Lockout  LockoutConfig
	Captcha  CaptchaConfig
	Redirect RedirectConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// GatewayConfig defines a public type used by authflow APIs.
//
// GatewayConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GatewayConfig struct {
	// BaseURL is the auth backend origin, e.g. "https://api.example.in".
	// All endpoints live under the /auth prefix beneath it.
	BaseURL string
	Timeout time.Duration
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by authflow APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	// LoginTTL is the challenge lifetime for login and signup purposes;
	// ResetTTL is the longer forgot-password lifetime.
	LoginTTL time.Duration
	ResetTTL time.Duration
	Digits   int
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by authflow APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	// Threshold is the failed-verification count that locks a flow for the
	// rest of the Session lifetime. Counters are deliberately not persisted.
	Threshold int
}

/*
====================================
CAPTCHA CONFIG
====================================
*/

// CaptchaConfig defines a public type used by authflow APIs.
//
// CaptchaConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CaptchaConfig struct {
	// Origin is the running page origin used for local-development bypass
	// detection, e.g. "http://localhost:5500" or "file://".
	Origin string

	// Widget instance ids, one per captcha-gated flow.
	SignupWidgetID string
	ResetWidgetID  string
}

/*
====================================
REDIRECT CONFIG
====================================
*/

// RedirectConfig defines a public type used by authflow APIs.
//
// RedirectConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectConfig struct {
	// Param is the value of the page's "redirect" query parameter; it selects
	// the post-authentication target (register, driver-dashboard, else index).
	Param string

	LoginDelay      time.Duration
	VerifyDelay     time.Duration
	ResetCloseDelay time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by authflow APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authflow APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			Timeout: 15 * time.Second,
		},
		OTP: OTPConfig{
			LoginTTL: 30 * time.Second,
			ResetTTL: 60 * time.Second,
			Digits:   4,
		},
		Lockout: LockoutConfig{
			Threshold: 3,
		},
		Captcha: CaptchaConfig{
			SignupWidgetID: "captcha-signup",
			ResetWidgetID:  "captcha-reset",
		},
		Redirect: RedirectConfig{
			LoginDelay:      800 * time.Millisecond,
			VerifyDelay:     1500 * time.Millisecond,
			ResetCloseDelay: 1000 * time.Millisecond,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Gateway
	if strings.TrimSpace(c.Gateway.BaseURL) == "" {
		return errors.New("Gateway BaseURL must be set")
	}
	if c.Gateway.Timeout <= 0 {
		return errors.New("Gateway Timeout must be > 0")
	}

	// OTP
	if c.OTP.LoginTTL < time.Second {
		return errors.New("OTP LoginTTL must be >= 1s")
	}
	if c.OTP.ResetTTL < time.Second {
		return errors.New("OTP ResetTTL must be >= 1s")
	}
	if c.OTP.Digits != 4 {
		return errors.New("OTP Digits must be 4; the verify endpoints accept no other length")
	}

	// Lockout
	if c.Lockout.Threshold <= 0 {
		return errors.New("Lockout Threshold must be > 0")
	}

	// Redirect
	if c.Redirect.LoginDelay < 0 || c.Redirect.VerifyDelay < 0 || c.Redirect.ResetCloseDelay < 0 {
		return errors.New("Redirect delays must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}

func (c *Config) challengeTTL(purpose Purpose) time.Duration {
	if purpose == PurposePasswordReset {
		return c.OTP.ResetTTL
	}
	return c.OTP.LoginTTL
}

func (c *Config) captchaWidgetID(purpose Purpose) string {
	if purpose == PurposePasswordReset {
		return c.Captcha.ResetWidgetID
	}
	return c.Captcha.SignupWidgetID
}

// ResolveRedirect maps the page's redirect query parameter to a navigation
// target: "register" and "driver-dashboard" pass through, everything else
// falls back to the index page.
func ResolveRedirect(param string) RedirectTarget {
	switch param {
	case string(TargetRegister):
		return TargetRegister
	case string(TargetDriverDashboard):
		return TargetDriverDashboard
	default:
		return TargetIndex
	}
}
