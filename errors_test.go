package authflow

import (
	"errors"
	"testing"
)

func TestFlowError_UnwrapsSentinel(t *testing.T) {
	err := validationError(noticeContactInvalid, ErrContactInvalid)

	if !errors.Is(err, ErrContactInvalid) {
		t.Fatal("expected the sentinel to be reachable through errors.Is")
	}
	if err.Detail != noticeContactInvalid {
		t.Fatalf("unexpected detail %q", err.Detail)
	}
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind, got %v", KindOf(err))
	}
}

func TestKindOf_NonFlowErrors(t *testing.T) {
	if KindOf(nil) != KindUnknown {
		t.Fatal("nil maps to KindUnknown")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors map to KindUnknown")
	}
}

func TestLockoutError_CarriesSentinel(t *testing.T) {
	err := lockoutError(noticeLockedOut)
	if !errors.Is(err, ErrLockedOut) {
		t.Fatal("lockout errors always wrap ErrLockedOut")
	}
	if KindOf(err) != KindLockout {
		t.Fatalf("expected lockout kind, got %v", KindOf(err))
	}
}

func TestErrorKind_String(t *testing.T) {
	cases := map[ErrorKind]string{
		KindUnknown:    "unknown",
		KindValidation: "validation",
		KindAPI:        "api",
		KindTransport:  "transport",
		KindLockout:    "lockout",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

func TestFlowError_MessageShape(t *testing.T) {
	withCause := apiError("invalid password", ErrInvalidPassword)
	if withCause.Error() == "" {
		t.Fatal("expected a message")
	}
	withoutCause := apiError("invalid password", nil)
	if withoutCause.Error() == "" {
		t.Fatal("expected a message without a cause too")
	}
	if errors.Unwrap(withoutCause) != nil {
		t.Fatal("no cause to unwrap")
	}
}
