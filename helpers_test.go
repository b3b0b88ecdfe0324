package authflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vahanlink/authflow/store"
)

const (
	testContact  = "9876543210"
	testPassword = "hunter22"
	testOTP      = "4321"
)

// fakeBackend is a scriptable stand-in for the marketplace auth API. Behavior
// is controlled per test through its fields; calls are counted per path.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	// registered maps contact numbers to their passwords.
	registered map[string]string
	// otp is the code every verify endpoint accepts.
	otp string
	// rejectCaptcha makes /auth/login answer with the captcha failure message.
	rejectCaptcha bool
	// requireCaptchaHeader makes signup-direct and forgot-init reject requests
	// without an X-Captcha-Token header.
	requireCaptchaHeader bool
	// failResetComplete makes /auth/forgot-complete answer 500.
	failResetComplete bool
	// gate, when set, blocks every handler until the channel is closed.
	gate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:      make(map[string]int),
		registered: map[string]string{testContact: testPassword},
		otp:        testOTP,
	}
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	gate := b.gate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}

	var body struct {
		ContactNumber string `json:"contactNumber"`
		Password      string `json:"password"`
		OTP           string `json:"otp"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	switch r.URL.Path {
	case "/auth/login":
		b.handleLogin(w, body.ContactNumber, body.Password)
	case "/auth/request-otp":
		b.mu.Lock()
		_, exists := b.registered[body.ContactNumber]
		b.mu.Unlock()
		userExists := "false"
		if exists {
			userExists = "true"
		}
		writeEnvelope(w, http.StatusOK, "OTP sent successfully", userExists)
	case "/auth/signup-direct":
		if b.requireCaptchaHeader && r.Header.Get("X-Captcha-Token") == "" {
			writeEnvelope(w, http.StatusBadRequest, "captcha verification failed", "")
			return
		}
		writeEnvelope(w, http.StatusOK, "OTP sent for verification", "")
	case "/auth/verify-otp", "/auth/forgot-verify":
		if body.OTP != b.otp {
			writeEnvelope(w, http.StatusBadRequest, "Invalid OTP", "")
			return
		}
		writeEnvelope(w, http.StatusOK, "OTP verified successfully", "")
	case "/auth/forgot-init":
		if b.requireCaptchaHeader && r.Header.Get("X-Captcha-Token") == "" {
			writeEnvelope(w, http.StatusBadRequest, "captcha verification failed", "")
			return
		}
		writeEnvelope(w, http.StatusOK, "OTP sent successfully", "")
	case "/auth/forgot-complete":
		if b.failResetComplete {
			writeEnvelope(w, http.StatusInternalServerError, "Could not update password", "")
			return
		}
		if body.OTP != b.otp {
			writeEnvelope(w, http.StatusBadRequest, "Invalid OTP", "")
			return
		}
		writeEnvelope(w, http.StatusOK, "Password reset successful", "")
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, contact, password string) {
	if b.rejectCaptcha {
		writeEnvelope(w, http.StatusBadRequest, "captcha verification failed", "")
		return
	}

	b.mu.Lock()
	stored, exists := b.registered[contact]
	b.mu.Unlock()

	if !exists {
		writeEnvelope(w, http.StatusNotFound, "User not found", "")
		return
	}
	if password != stored {
		writeEnvelope(w, http.StatusUnauthorized, "invalid password", "")
		return
	}
	writeEnvelope(w, http.StatusOK, "Login successful", "")
}

func writeEnvelope(w http.ResponseWriter, status int, message, userExists string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]string{"message": message}
	if userExists != "" {
		payload["userExists"] = userExists
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type redirectCall struct {
	target RedirectTarget
	after  time.Duration
}

// recordingPresenter captures every presenter call for assertions.
type recordingPresenter struct {
	mu         sync.Mutex
	notices    []string
	blocking   []string
	controls   map[Purpose]bool
	focused    int
	cleared    int
	labels     map[Purpose]string
	countdowns []string
	redirects  []redirectCall
	closes     []time.Duration
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{
		controls: make(map[Purpose]bool),
		labels:   make(map[Purpose]string),
	}
}

func (p *recordingPresenter) ShowNotice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, message)
}

func (p *recordingPresenter) ShowBlockingNotice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocking = append(p.blocking, message)
}

func (p *recordingPresenter) SetControlsEnabled(purpose Purpose, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controls[purpose] = enabled
}

func (p *recordingPresenter) FocusOTPInput(Purpose) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused++
}

func (p *recordingPresenter) ClearOTPInput(Purpose) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

func (p *recordingPresenter) SetActionLabel(purpose Purpose, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labels[purpose] = label
}

func (p *recordingPresenter) RenderCountdown(_ Purpose, formatted string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdowns = append(p.countdowns, formatted)
}

func (p *recordingPresenter) Redirect(target RedirectTarget, after time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirects = append(p.redirects, redirectCall{target: target, after: after})
}

func (p *recordingPresenter) CloseResetDialog(after time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes = append(p.closes, after)
}

func (p *recordingPresenter) lastNotice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return ""
	}
	return p.notices[len(p.notices)-1]
}

func (p *recordingPresenter) lastBlocking() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.blocking) == 0 {
		return ""
	}
	return p.blocking[len(p.blocking)-1]
}

func (p *recordingPresenter) blockingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blocking)
}

func (p *recordingPresenter) lastRedirect() (redirectCall, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.redirects) == 0 {
		return redirectCall{}, false
	}
	return p.redirects[len(p.redirects)-1], true
}

func (p *recordingPresenter) labelFor(purpose Purpose) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.labels[purpose]
}

func (p *recordingPresenter) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.closes)
}

// newTestSession wires a Session against the fake backend with a memory store
// and a recording presenter. mutate may adjust the config before Build.
func newTestSession(t *testing.T, backend *fakeBackend, mutate func(*Config)) (*Session, *recordingPresenter, *store.Memory) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := defaultConfig()
	cfg.Gateway.BaseURL = srv.URL
	if mutate != nil {
		mutate(&cfg)
	}

	presenter := newRecordingPresenter()
	mem := store.NewMemory()

	s, err := New().
		WithConfig(cfg).
		WithStore(mem).
		WithPresenter(presenter).
		Build()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}
	t.Cleanup(s.Close)

	return s, presenter, mem
}

// newTestSessionWithSink builds a Session with audit enabled and the given
// sink attached.
func newTestSessionWithSink(t *testing.T, backend *fakeBackend, sink AuditSink) (*Session, *recordingPresenter, *store.Memory) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := defaultConfig()
	cfg.Gateway.BaseURL = srv.URL
	cfg.Audit.Enabled = true

	presenter := newRecordingPresenter()
	mem := store.NewMemory()

	s, err := New().
		WithConfig(cfg).
		WithStore(mem).
		WithPresenter(presenter).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}
	t.Cleanup(s.Close)

	return s, presenter, mem
}
