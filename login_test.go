package authflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPasswordLogin_SuccessPersistsAndRedirects(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, mem := newTestSession(t, backend, nil)

	ctx := context.Background()
	if err := s.StartPasswordLogin(ctx, testContact, testPassword); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}

	rec, err := mem.Load(ctx)
	if err != nil {
		t.Fatalf("load session record: %v", err)
	}
	if !rec.IsLoggedIn || rec.Phone != testContact {
		t.Fatalf("unexpected session record: %+v", rec)
	}

	redirect, ok := presenter.lastRedirect()
	if !ok {
		t.Fatal("expected a scheduled redirect")
	}
	if redirect.target != TargetIndex {
		t.Fatalf("expected index redirect, got %v", redirect.target)
	}
	if redirect.after != 800*time.Millisecond {
		t.Fatalf("expected 800ms redirect delay, got %v", redirect.after)
	}
}

func TestPasswordLogin_RedirectParamResolution(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, func(cfg *Config) {
		cfg.Redirect.Param = "driver-dashboard"
	})

	if err := s.StartPasswordLogin(context.Background(), testContact, testPassword); err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}

	redirect, _ := presenter.lastRedirect()
	if redirect.target != TargetDriverDashboard {
		t.Fatalf("expected driver-dashboard redirect, got %v", redirect.target)
	}
}

func TestPasswordLogin_InvalidContactSkipsNetwork(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, nil)

	err := s.StartPasswordLogin(context.Background(), "1234567890", testPassword)
	if !errors.Is(err, ErrContactInvalid) {
		t.Fatalf("expected ErrContactInvalid, got %v", err)
	}
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind, got %v", KindOf(err))
	}
	if backend.totalCalls() != 0 {
		t.Fatalf("validation failure must not reach the network, saw %d calls", backend.totalCalls())
	}
	if presenter.lastNotice() != noticeContactInvalid {
		t.Fatalf("unexpected notice %q", presenter.lastNotice())
	}
}

func TestPasswordLogin_EmptyPassword(t *testing.T) {
	backend := newFakeBackend()
	s, _, _ := newTestSession(t, backend, nil)

	err := s.StartPasswordLogin(context.Background(), testContact, "")
	if !errors.Is(err, ErrPasswordEmpty) {
		t.Fatalf("expected ErrPasswordEmpty, got %v", err)
	}
	if backend.totalCalls() != 0 {
		t.Fatalf("empty password must not reach the network, saw %d calls", backend.totalCalls())
	}
}

func TestPasswordLogin_WrongPasswordBelowThreshold(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := s.StartPasswordLogin(ctx, testContact, "wrong-password")
		if KindOf(err) != KindAPI {
			t.Fatalf("attempt %d: expected API kind, got %v (%v)", i+1, KindOf(err), err)
		}
	}

	// Two failures leave the flow usable; the third correct attempt works.
	if err := s.StartPasswordLogin(ctx, testContact, testPassword); err != nil {
		t.Fatalf("expected login to succeed after two failures, got %v", err)
	}
	if presenter.lastBlocking() != "" {
		t.Fatalf("no blocking notice expected below threshold, got %q", presenter.lastBlocking())
	}
}

func TestPasswordLogin_ThirdWrongPasswordLocksOut(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, nil)

	ctx := context.Background()
	var err error
	for i := 0; i < 3; i++ {
		err = s.StartPasswordLogin(ctx, testContact, "wrong-password")
	}
	if !errors.Is(err, ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut on third failure, got %v", err)
	}
	if KindOf(err) != KindLockout {
		t.Fatalf("expected lockout kind, got %v", KindOf(err))
	}
	if presenter.lastBlocking() != noticeLockedOut {
		t.Fatalf("expected blocking lockout notice, got %q", presenter.lastBlocking())
	}

	redirect, ok := presenter.lastRedirect()
	if !ok || redirect.target != TargetIndex {
		t.Fatalf("lockout must force navigation home, got %+v ok=%v", redirect, ok)
	}
	if s.Status(PurposeLogin) != StatusLocked {
		t.Fatalf("expected Locked status, got %v", s.Status(PurposeLogin))
	}
}

func TestPasswordLogin_LockedFlowRejectsWithoutNetwork(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.StartPasswordLogin(ctx, testContact, "wrong-password")
	}
	if s.Status(PurposeLogin) != StatusLocked {
		t.Fatalf("expected Locked after three failures, got %v", s.Status(PurposeLogin))
	}

	calls := backend.count("/auth/login")
	blocking := presenter.blockingCount()

	err := s.StartPasswordLogin(ctx, testContact, testPassword)
	if !errors.Is(err, ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut from the locked flow, got %v", err)
	}
	if KindOf(err) != KindLockout {
		t.Fatalf("expected lockout kind, got %v", KindOf(err))
	}
	if got := backend.count("/auth/login"); got != calls {
		t.Fatalf("locked flow must not reach the network, calls went %d to %d", calls, got)
	}
	if presenter.blockingCount() != blocking {
		t.Fatalf("lockout notice must fire once, saw %d blocking notices", presenter.blockingCount())
	}
}

func TestPasswordLogin_CaptchaFailureShowsRemediation(t *testing.T) {
	backend := newFakeBackend()
	backend.rejectCaptcha = true
	s, presenter, _ := newTestSession(t, backend, nil)

	err := s.StartPasswordLogin(context.Background(), testContact, testPassword)
	if !errors.Is(err, ErrCaptchaRejected) {
		t.Fatalf("expected ErrCaptchaRejected, got %v", err)
	}
	if presenter.lastNotice() != noticeCaptchaRemediate {
		t.Fatalf("expected remediation notice, got %q", presenter.lastNotice())
	}
}

func TestPasswordLogin_UnknownUserSurfacesBackendMessage(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, nil)

	err := s.StartPasswordLogin(context.Background(), "9123456789", testPassword)
	if KindOf(err) != KindAPI {
		t.Fatalf("expected API kind, got %v (%v)", KindOf(err), err)
	}
	if presenter.lastNotice() != "User not found" {
		t.Fatalf("expected the backend message verbatim, got %q", presenter.lastNotice())
	}
}

func TestPasswordLogin_SecondSubmissionRejectedWhileInFlight(t *testing.T) {
	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	s, _, _ := newTestSession(t, backend, nil)

	ctx := context.Background()
	first := make(chan error, 1)
	go func() {
		first <- s.StartPasswordLogin(ctx, testContact, testPassword)
	}()

	// Wait for the first request to reach the backend.
	deadline := time.After(2 * time.Second)
	for backend.count("/auth/login") == 0 {
		select {
		case <-deadline:
			t.Fatal("first request never reached the backend")
		case <-time.After(time.Millisecond):
		}
	}

	if err := s.StartPasswordLogin(ctx, testContact, testPassword); !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}
	if backend.count("/auth/login") != 1 {
		t.Fatalf("second submission must not issue a call, saw %d", backend.count("/auth/login"))
	}

	close(backend.gate)
	if err := <-first; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
}

func TestPasswordLogin_TransportFailureIsGeneric(t *testing.T) {
	backend := newFakeBackend()
	s, presenter, _ := newTestSession(t, backend, func(cfg *Config) {
		cfg.Gateway.BaseURL = "http://127.0.0.1:1"
	})

	err := s.StartPasswordLogin(context.Background(), testContact, testPassword)
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind, got %v (%v)", KindOf(err), err)
	}
	if presenter.lastNotice() != noticeUnexpected {
		t.Fatalf("expected the generic notice, got %q", presenter.lastNotice())
	}
}

func TestLogout_ClearsStore(t *testing.T) {
	backend := newFakeBackend()
	s, _, mem := newTestSession(t, backend, nil)

	ctx := context.Background()
	if err := s.StartPasswordLogin(ctx, testContact, testPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	rec, err := mem.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.IsLoggedIn || rec.Phone != "" {
		t.Fatalf("expected cleared record, got %+v", rec)
	}
}
