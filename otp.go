package authflow

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vahanlink/authflow/internal/gateway"
)

// StartOTPChallenge describes the startotpchallenge operation and its observable behavior.
//
// StartOTPChallenge may return an error when input validation, dependency calls, or security checks fail.
// StartOTPChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) StartOTPChallenge(ctx context.Context, contact string, purpose Purpose, details *SignupDetails) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if purpose >= purposeCount {
		return validationError("unknown flow purpose", ErrChallengeNotActive)
	}

	if !IsValidContact(contact) {
		s.presenter.ShowNotice(noticeContactInvalid)
		return validationError(noticeContactInvalid, ErrContactInvalid)
	}
	if purpose == PurposeSignup {
		if details == nil {
			s.presenter.ShowNotice(noticeSignupDetails)
			return validationError(noticeSignupDetails, nil)
		}
		if err := s.validate.Struct(details); err != nil {
			s.presenter.ShowNotice(noticeSignupDetails)
			return validationError(noticeSignupDetails, err)
		}
	}

	if s.flowLocked(purpose) {
		return lockoutError(noticeLockedOut)
	}

	if err := s.beginSubmission(purpose); err != nil {
		return err
	}
	issued := false
	defer func() {
		if !issued {
			s.endSubmission(purpose, true)
		}
	}()

	// Signup probes existence before anything else: any outcome other than
	// user-not-found means the number is taken and no challenge is issued.
	if purpose == PurposeSignup {
		if err := s.probeSignupContact(ctx, contact); err != nil {
			return err
		}
	}

	widgetID := s.config.captchaWidgetID(purpose)
	captchaToken := ""
	if s.captcha.Required(purpose) {
		captchaToken = s.captcha.Token(widgetID)
		if captchaToken == "" {
			s.metricInc(MetricCaptchaMissing)
			s.presenter.ShowNotice(noticeCaptchaIncomplete)
			s.emitAudit(ctx, auditEventCaptchaMissing, false, contact, purpose, "", ErrCaptchaRequired, nil)
			return validationError(noticeCaptchaIncomplete, ErrCaptchaRequired)
		}
		// Tokens are single use. The widget is reset after the attempt no
		// matter how it ends.
		defer s.captcha.Reset(widgetID)
	}

	userExists, err := s.issueChallenge(ctx, contact, purpose, details, captchaToken)
	if err != nil {
		s.emitAudit(ctx, auditEventChallengeIssued, false, contact, purpose, "", err, nil)
		return s.surfaceFailure(err)
	}

	ch := &Challenge{
		ID:         uuid.NewString(),
		Contact:    contact,
		Purpose:    purpose,
		IssuedAt:   time.Now(),
		TTLSeconds: int(s.config.challengeTTL(purpose).Seconds()),
		Status:     StatusAwaitingOTP,
		UserExists: userExists,
	}

	s.mu.Lock()
	f := s.flows[purpose]
	f.challenge = ch
	f.expiryPending = false
	s.mu.Unlock()

	// Controls stay disabled while awaiting the OTP; only the OTP field is
	// live.
	issued = true
	s.endSubmission(purpose, false)

	s.presenter.FocusOTPInput(purpose)
	s.presenter.SetActionLabel(purpose, labelVerify)
	f.timer.Start(ch.TTLSeconds)

	s.metricInc(MetricOTPSent)
	if purpose == PurposePasswordReset {
		s.metricInc(MetricResetRequested)
	}
	s.log.Debug().
		Str("purpose", purpose.String()).
		Str("challenge_id", ch.ID).
		Msg("otp challenge issued")
	s.emitAudit(ctx, auditEventChallengeIssued, true, contact, purpose, ch.ID, nil, func() map[string]string {
		return map[string]string{"ttl_seconds": strconv.Itoa(ch.TTLSeconds)}
	})

	return nil
}

// probeSignupContact reuses the login endpoint with an empty password to learn
// whether the number is already registered. Only an explicit user-not-found
// rejection means the number is free.
func (s *Session) probeSignupContact(ctx context.Context, contact string) error {
	_, err := s.gateway.Login(ctx, contact, "")

	var tErr *gateway.TransportError
	if errors.As(err, &tErr) {
		s.emitAudit(ctx, auditEventExistenceProbe, false, contact, PurposeSignup, "", err, nil)
		return s.surfaceFailure(err)
	}

	if err == nil || gateway.Classify(err) != gateway.FailureUserNotFound {
		s.metricInc(MetricSignupDuplicate)
		s.presenter.ShowNotice(noticeAlreadyRegistered)
		s.emitAudit(ctx, auditEventExistenceProbe, false, contact, PurposeSignup, "", ErrAlreadyRegistered, nil)
		return apiError(noticeAlreadyRegistered, ErrAlreadyRegistered)
	}

	s.emitAudit(ctx, auditEventExistenceProbe, true, contact, PurposeSignup, "", nil, nil)
	return nil
}

// issueChallenge performs the purpose-specific issuance call and reports the
// backend's existence flag where the endpoint carries one.
func (s *Session) issueChallenge(ctx context.Context, contact string, purpose Purpose, details *SignupDetails, captchaToken string) (userExists bool, err error) {
	switch purpose {
	case PurposeSignup:
		_, err = s.gateway.SignupDirect(ctx, gateway.SignupRequest{
			FullName:      details.FullName,
			ContactNumber: contact,
			Password:      details.Password,
			Email:         details.Email,
		}, captchaToken)
		return false, err

	case PurposePasswordReset:
		return true, s.gateway.ForgotInit(ctx, contact, captchaToken)

	default:
		return s.gateway.RequestOTP(ctx, contact)
	}
}

// VerifyOTP describes the verifyotp operation and its observable behavior.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) VerifyOTP(ctx context.Context, purpose Purpose, code string) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if purpose >= purposeCount {
		return validationError("unknown flow purpose", ErrChallengeNotActive)
	}

	s.mu.Lock()
	f := s.flows[purpose]
	if f.locked {
		s.mu.Unlock()
		return lockoutError(noticeLockedOut)
	}
	ch := f.challenge
	if ch == nil {
		s.mu.Unlock()
		return validationError("no active challenge", ErrChallengeNotActive)
	}
	switch ch.Status {
	case StatusExpired:
		s.mu.Unlock()
		s.presenter.ShowNotice(noticeOTPExpired)
		return validationError(noticeOTPExpired, ErrOTPExpired)
	case StatusAwaitingOTP:
	default:
		status := ch.Status
		s.mu.Unlock()
		if status.terminal() {
			return validationError("challenge already settled", ErrChallengeTerminal)
		}
		return validationError("no active challenge", ErrChallengeNotActive)
	}
	contact := ch.Contact
	challengeID := ch.ID
	s.mu.Unlock()

	if !IsValidOTP(code) {
		s.presenter.ShowNotice(noticeOTPFormat)
		return validationError(noticeOTPFormat, ErrOTPFormat)
	}

	if err := s.beginSubmission(purpose); err != nil {
		return err
	}
	defer s.endSubmission(purpose, true)

	s.setChallengeStatus(purpose, StatusVerifying)

	var err error
	var message string
	if purpose == PurposePasswordReset {
		err = s.gateway.ForgotVerify(ctx, contact, code)
		message = noticeResetVerified
	} else {
		message, err = s.gateway.VerifyOTP(ctx, contact, code, purpose == PurposeSignup)
	}

	if err != nil {
		return s.verifyFailure(ctx, purpose, contact, challengeID, err)
	}

	return s.verifySuccess(ctx, purpose, contact, challengeID, code, message)
}

// verifyFailure puts the challenge back to AwaitingOTP for another attempt,
// counting explicit backend rejections toward the per-purpose lockout.
// Transport faults surface without advancing the counter. A countdown that
// ran out while the call was in flight is applied here as the Expired
// transition.
func (s *Session) verifyFailure(ctx context.Context, purpose Purpose, contact, challengeID string, err error) error {
	s.mu.Lock()
	f := s.flows[purpose]
	expired := f.expiryPending
	f.expiryPending = false
	if ch := f.challenge; ch != nil {
		if expired {
			ch.Status = StatusExpired
		} else {
			ch.Status = StatusAwaitingOTP
		}
	}
	s.mu.Unlock()

	s.metricInc(MetricOTPFailure)
	s.emitAudit(ctx, auditEventOTPVerify, false, contact, purpose, challengeID, err, nil)

	var tErr *gateway.TransportError
	if errors.As(err, &tErr) {
		flowErr := s.surfaceFailure(err)
		if expired {
			s.expireEffects(purpose, contact, challengeID)
		}
		return flowErr
	}

	if s.lockout.record(otpScope(purpose)) {
		s.metricInc(MetricOTPLockout)
		return s.lockFlow(ctx, purpose, contact, auditEventOTPLockout)
	}
	flowErr := s.surfaceFailure(err)
	if expired {
		s.expireEffects(purpose, contact, challengeID)
	}
	return flowErr
}

func (s *Session) verifySuccess(ctx context.Context, purpose Purpose, contact, challengeID, code, message string) error {
	s.mu.Lock()
	f := s.flows[purpose]
	f.timer.Cancel()
	f.expiryPending = false
	ch := f.challenge
	userExists := ch.UserExists
	if purpose == PurposePasswordReset {
		ch.Status = StatusSettingNewPassword
		ch.verifiedOTP = code
	} else {
		ch.Status = StatusAuthenticated
	}
	s.mu.Unlock()

	s.metricInc(MetricOTPVerified)
	s.emitAudit(ctx, auditEventOTPVerify, true, contact, purpose, challengeID, nil, nil)

	if purpose == PurposePasswordReset {
		s.presenter.ShowNotice(message)
		return nil
	}

	if err := s.store.Persist(ctx, contact); err != nil {
		s.log.Error().Err(err).Msg("session persist failed after otp verify")
		s.presenter.ShowNotice(noticeUnexpected)
		return transportError(noticeUnexpected, err)
	}
	s.metricInc(MetricSessionPersisted)
	s.emitAudit(ctx, auditEventSessionPersisted, true, contact, purpose, challengeID, nil, nil)

	target := ResolveRedirect(s.config.Redirect.Param)
	if purpose == PurposeSignup && !userExists {
		target = TargetRegister
	}
	s.presenter.ShowNotice(message)
	s.presenter.Redirect(target, s.config.Redirect.VerifyDelay)

	return nil
}

// Resend describes the resend operation and its observable behavior.
//
// Resend may return an error when input validation, dependency calls, or security checks fail.
// Resend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) Resend(ctx context.Context, purpose Purpose) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if purpose >= purposeCount {
		return validationError("unknown flow purpose", ErrChallengeNotActive)
	}

	s.mu.Lock()
	f := s.flows[purpose]
	if f.locked {
		s.mu.Unlock()
		return lockoutError(noticeLockedOut)
	}
	ch := f.challenge
	if ch == nil || (ch.Status != StatusAwaitingOTP && ch.Status != StatusExpired) {
		s.mu.Unlock()
		return validationError("no active challenge", ErrChallengeNotActive)
	}
	contact := ch.Contact
	priorExists := ch.UserExists
	s.mu.Unlock()

	if err := s.beginSubmission(purpose); err != nil {
		return err
	}
	reissued := false
	defer func() {
		if !reissued {
			s.endSubmission(purpose, true)
		}
	}()

	s.presenter.ClearOTPInput(purpose)

	// No client-side captcha gate on resend: the widget may already be
	// consumed. An available token is forwarded and reset afterwards.
	widgetID := s.config.captchaWidgetID(purpose)
	captchaToken := s.captcha.Token(widgetID)
	if captchaToken != "" {
		defer s.captcha.Reset(widgetID)
	}

	var userExists bool
	var err error
	switch purpose {
	case PurposePasswordReset:
		userExists = true
		err = s.gateway.ForgotInit(ctx, contact, captchaToken)
	case PurposeSignup:
		// The account already exists after direct signup, so the issuance
		// flag from a plain re-request would flip the post-verify redirect.
		// The original flag is kept.
		userExists = priorExists
		_, err = s.gateway.RequestOTP(ctx, contact)
	default:
		userExists, err = s.gateway.RequestOTP(ctx, contact)
	}
	if err != nil {
		s.emitAudit(ctx, auditEventChallengeResent, false, contact, purpose, "", err, nil)
		return s.surfaceFailure(err)
	}

	ch = &Challenge{
		ID:         uuid.NewString(),
		Contact:    contact,
		Purpose:    purpose,
		IssuedAt:   time.Now(),
		TTLSeconds: int(s.config.challengeTTL(purpose).Seconds()),
		Status:     StatusAwaitingOTP,
		UserExists: userExists,
	}

	s.mu.Lock()
	f.challenge = ch
	f.expiryPending = false
	s.mu.Unlock()

	reissued = true
	s.endSubmission(purpose, false)

	s.presenter.FocusOTPInput(purpose)
	s.presenter.SetActionLabel(purpose, labelVerify)
	s.presenter.ShowNotice(noticeOTPResent)
	f.timer.Start(ch.TTLSeconds)

	s.metricInc(MetricOTPResent)
	s.emitAudit(ctx, auditEventChallengeResent, true, contact, purpose, ch.ID, nil, nil)

	return nil
}

// flowLocked reports whether the flow's lockout has tripped.
func (s *Session) flowLocked(purpose Purpose) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flows[purpose].locked
}

// setChallengeStatus updates the live challenge's status if one is present.
func (s *Session) setChallengeStatus(purpose Purpose, status ChallengeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch := s.flows[purpose].challenge; ch != nil {
		ch.Status = status
	}
}
