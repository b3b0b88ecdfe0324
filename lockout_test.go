package authflow

import "testing"

func TestLockoutGuard_ThresholdReached(t *testing.T) {
	g := newLockoutGuard(3)

	if g.record(scopePassword) {
		t.Fatal("first failure must not trip")
	}
	if g.record(scopePassword) {
		t.Fatal("second failure must not trip")
	}
	if !g.record(scopePassword) {
		t.Fatal("third failure must trip")
	}
	if g.failures(scopePassword) != 3 {
		t.Fatalf("expected 3 recorded failures, got %d", g.failures(scopePassword))
	}

	// Counting continues past the threshold; every further failure reports
	// tripped.
	if !g.record(scopePassword) {
		t.Fatal("post-threshold failures must keep reporting tripped")
	}
}

func TestLockoutGuard_ScopesAreIndependent(t *testing.T) {
	g := newLockoutGuard(3)

	g.record(scopePassword)
	g.record(scopePassword)
	g.record(scopeOTPLogin)

	if g.failures(scopePassword) != 2 {
		t.Fatalf("expected 2 password failures, got %d", g.failures(scopePassword))
	}
	if g.failures(scopeOTPLogin) != 1 {
		t.Fatalf("expected 1 otp failure, got %d", g.failures(scopeOTPLogin))
	}
	if g.failures(scopeOTPSignup) != 0 || g.failures(scopeOTPReset) != 0 {
		t.Fatal("untouched scopes must stay at zero")
	}
}

func TestOtpScope_MapsPurposes(t *testing.T) {
	cases := []struct {
		purpose Purpose
		want    lockoutScope
	}{
		{PurposeLogin, scopeOTPLogin},
		{PurposeSignup, scopeOTPSignup},
		{PurposePasswordReset, scopeOTPReset},
	}
	for _, tc := range cases {
		if got := otpScope(tc.purpose); got != tc.want {
			t.Errorf("otpScope(%v) = %v, want %v", tc.purpose, got, tc.want)
		}
	}
}
