package authflow

import "context"

// CompletePasswordReset describes the completepasswordreset operation and its observable behavior.
//
// CompletePasswordReset may return an error when input validation, dependency calls, or security checks fail.
// CompletePasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) CompletePasswordReset(ctx context.Context, newPassword, confirm string) error {
	if s == nil {
		return ErrSessionNotReady
	}

	s.mu.Lock()
	f := s.flows[PurposePasswordReset]
	if f.locked {
		s.mu.Unlock()
		return lockoutError(noticeLockedOut)
	}
	ch := f.challenge
	if ch == nil || ch.Status != StatusSettingNewPassword {
		s.mu.Unlock()
		return validationError("no verified reset challenge", ErrChallengeNotActive)
	}
	contact := ch.Contact
	challengeID := ch.ID
	otp := ch.verifiedOTP
	s.mu.Unlock()

	if len(newPassword) < 4 {
		s.presenter.ShowNotice(noticePasswordShort)
		return validationError(noticePasswordShort, ErrPasswordTooShort)
	}
	if newPassword != confirm {
		s.presenter.ShowNotice(noticePasswordMismatch)
		return validationError(noticePasswordMismatch, ErrPasswordMismatch)
	}

	if err := s.beginSubmission(PurposePasswordReset); err != nil {
		return err
	}
	defer s.endSubmission(PurposePasswordReset, true)

	// Failures here never count toward the OTP lockout: the code was already
	// accepted, only the new password is in play.
	if err := s.gateway.ForgotComplete(ctx, contact, otp, newPassword); err != nil {
		s.emitAudit(ctx, auditEventResetCompleted, false, contact, PurposePasswordReset, challengeID, err, nil)
		return s.surfaceFailure(err)
	}

	s.setChallengeStatus(PurposePasswordReset, StatusCompleted)

	s.metricInc(MetricResetCompleted)
	s.presenter.ShowNotice(noticeResetCompleted)
	s.presenter.CloseResetDialog(s.config.Redirect.ResetCloseDelay)
	s.emitAudit(ctx, auditEventResetCompleted, true, contact, PurposePasswordReset, challengeID, nil, nil)

	return nil
}
