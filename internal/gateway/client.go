package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	authPrefix = "/auth"

	captchaTokenHeader = "X-Captcha-Token"

	maxErrorBodyBytes = 4 << 10
)

// APIError is a structured, non-2xx backend response. Message is the server's
// "message" field or a generic fallback if absent.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// TransportError wraps an unreachable server or a response body that was not
// valid JSON. Callers degrade it to a generic notice.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FailureCode classifies the backend's known failure messages so callers never
// match substrings themselves.
type FailureCode uint8

const (
	FailureUnknown FailureCode = iota
	FailureInvalidPassword
	FailureCaptchaRejected
	FailureUserNotFound
)

// Classify maps an error returned by this package to a FailureCode. The legacy
// substrings live here and nowhere else.
func Classify(err error) FailureCode {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return FailureUnknown
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(msg, "invalid password"):
		return FailureInvalidPassword
	case strings.Contains(msg, "captcha verification failed"):
		return FailureCaptchaRejected
	case strings.Contains(msg, "user not found"):
		return FailureUserNotFound
	default:
		return FailureUnknown
	}
}

// envelope is the backend's uniform response shape. UserExists is a string
// flag ("true"/"false") on the OTP issuance endpoint.
type envelope struct {
	Message    string `json:"message"`
	UserExists string `json:"userExists"`
}

// Client issues the /auth calls. It never retries and carries no flow state.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New returns a Client for the given backend origin.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// LoginResult is the normalized /auth/login response. Success reflects the
// backend's "Login successful" marker.
type LoginResult struct {
	Success bool
	Message string
}

// Login posts credentials. An empty password is omitted from the body; the
// signup flow uses that shape as an existence probe.
func (c *Client) Login(ctx context.Context, contact, password string) (LoginResult, error) {
	body := struct {
		ContactNumber string `json:"contactNumber"`
		Password      string `json:"password,omitempty"`
	}{ContactNumber: contact, Password: password}

	var out envelope
	if err := c.post(ctx, "/login", body, &out, nil); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Success: strings.Contains(out.Message, "Login successful"),
		Message: out.Message,
	}, nil
}

// SignupRequest carries the direct-signup fields; Email may be empty.
type SignupRequest struct {
	FullName      string `json:"fullName"`
	ContactNumber string `json:"contactNumber"`
	Password      string `json:"password"`
	Email         string `json:"email,omitempty"`
}

// SignupDirect creates the account and triggers OTP issuance. The captcha
// token travels in the X-Captcha-Token header when present.
func (c *Client) SignupDirect(ctx context.Context, req SignupRequest, captchaToken string) (string, error) {
	var headers map[string]string
	if captchaToken != "" {
		headers = map[string]string{captchaTokenHeader: captchaToken}
	}

	var out envelope
	if err := c.post(ctx, "/signup-direct", req, &out, headers); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RequestOTP asks the backend to issue a login OTP. The response reports
// whether the contact number belongs to an existing account.
func (c *Client) RequestOTP(ctx context.Context, contact string) (userExists bool, err error) {
	body := struct {
		ContactNumber string `json:"contactNumber"`
	}{ContactNumber: contact}

	var out envelope
	if err := c.post(ctx, "/request-otp", body, &out, nil); err != nil {
		return false, err
	}
	return out.UserExists == "true", nil
}

// VerifyOTP submits the 4-digit code for login or signup challenges.
func (c *Client) VerifyOTP(ctx context.Context, contact, otp string, isSignup bool) (string, error) {
	body := struct {
		ContactNumber string `json:"contactNumber"`
		OTP           string `json:"otp"`
		IsSignup      bool   `json:"isSignup"`
	}{ContactNumber: contact, OTP: otp, IsSignup: isSignup}

	var out envelope
	if err := c.post(ctx, "/verify-otp", body, &out, nil); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ForgotInit starts the forgot-password triple.
func (c *Client) ForgotInit(ctx context.Context, contact string, captchaToken string) error {
	body := struct {
		ContactNumber string `json:"contactNumber"`
	}{ContactNumber: contact}

	var headers map[string]string
	if captchaToken != "" {
		headers = map[string]string{captchaTokenHeader: captchaToken}
	}

	return c.post(ctx, "/forgot-init", body, nil, headers)
}

// ForgotVerify checks the reset OTP without consuming it; the code is replayed
// on ForgotComplete.
func (c *Client) ForgotVerify(ctx context.Context, contact, otp string) error {
	body := struct {
		ContactNumber string `json:"contactNumber"`
		OTP           string `json:"otp"`
	}{ContactNumber: contact, OTP: otp}

	return c.post(ctx, "/forgot-verify", body, nil, nil)
}

// ForgotComplete sets the new password, closing the reset challenge.
func (c *Client) ForgotComplete(ctx context.Context, contact, otp, newPassword string) error {
	body := struct {
		ContactNumber string `json:"contactNumber"`
		OTP           string `json:"otp"`
		NewPassword   string `json:"newPassword"`
	}{ContactNumber: contact, OTP: otp, NewPassword: newPassword}

	return c.post(ctx, "/forgot-complete", body, nil, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any, headers map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Op: "marshal request", Err: err}
	}

	url := c.baseURL + authPrefix + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "post " + path, Err: err}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	c.log.Debug().
		Str("path", authPrefix+path).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("auth backend call")

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
	if err != nil {
		return &TransportError{Op: "read response", Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil || env.Message == "" {
			// Non-JSON error bodies fall back to raw text so nothing useful
			// is silently dropped.
			text := strings.TrimSpace(string(raw))
			if text == "" {
				text = http.StatusText(res.StatusCode)
			}
			if jsonErr != nil {
				return &TransportError{Op: "post " + path, Err: fmt.Errorf("unexpected response (%d): %s", res.StatusCode, text)}
			}
			return &APIError{StatusCode: res.StatusCode, Message: text}
		}
		return &APIError{StatusCode: res.StatusCode, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &TransportError{Op: "decode response", Err: err}
		}
	}

	return nil
}
