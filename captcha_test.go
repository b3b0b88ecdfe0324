package authflow

import "testing"

func TestIsLocalOrigin(t *testing.T) {
	local := []string{
		"",
		"null",
		"file:///C:/site/index.html",
		"http://localhost:3000",
		"http://dev.localhost",
		"http://127.0.0.1:8080",
		"http://[::1]:3000",
		"http://192.168.1.24",
		"http://10.0.0.5:8000",
		"http://169.254.10.1",
	}
	for _, origin := range local {
		if !isLocalOrigin(origin) {
			t.Errorf("expected %q to be local", origin)
		}
	}

	remote := []string{
		"https://vahanlink.example",
		"https://www.vahanlink.example:443",
		"http://203.0.113.9",
		"https://8.8.8.8",
	}
	for _, origin := range remote {
		if isLocalOrigin(origin) {
			t.Errorf("expected %q to be remote", origin)
		}
	}
}

func TestWidgetCaptcha_RequiredByPurpose(t *testing.T) {
	remote := NewWidgetCaptcha("https://vahanlink.example")

	if remote.Required(PurposeLogin) {
		t.Fatal("plain password login never requires captcha")
	}
	if !remote.Required(PurposeSignup) {
		t.Fatal("signup requires captcha on a remote origin")
	}
	if !remote.Required(PurposePasswordReset) {
		t.Fatal("password reset requires captcha on a remote origin")
	}

	local := NewWidgetCaptcha("http://localhost:3000")
	for p := Purpose(0); p < purposeCount; p++ {
		if local.Required(p) {
			t.Fatalf("local origin must bypass captcha for %v", p)
		}
	}
}

func TestWidgetCaptcha_TokenLifecycle(t *testing.T) {
	w := NewWidgetCaptcha("https://vahanlink.example")

	if got := w.Token("captcha-signup"); got != "" {
		t.Fatalf("expected no token initially, got %q", got)
	}

	w.SetToken("captcha-signup", "tok-1")
	if got := w.Token("captcha-signup"); got != "tok-1" {
		t.Fatalf("expected tok-1, got %q", got)
	}

	// A second callback replaces the unconsumed token.
	w.SetToken("captcha-signup", "tok-2")
	if got := w.Token("captcha-signup"); got != "tok-2" {
		t.Fatalf("expected tok-2, got %q", got)
	}

	// Widgets are independent.
	if got := w.Token("captcha-reset"); got != "" {
		t.Fatalf("expected no token on the other widget, got %q", got)
	}

	w.Reset("captcha-signup")
	if got := w.Token("captcha-signup"); got != "" {
		t.Fatalf("expected token consumed after reset, got %q", got)
	}
}

func TestNoopCaptcha(t *testing.T) {
	var c NoopCaptcha
	for p := Purpose(0); p < purposeCount; p++ {
		if c.Required(p) {
			t.Fatalf("noop provider must never require captcha for %v", p)
		}
	}
	if c.Token("any") != "" {
		t.Fatal("noop provider has no tokens")
	}
	c.Reset("any")
}
