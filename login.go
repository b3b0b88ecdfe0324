package authflow

import (
	"context"

	"github.com/vahanlink/authflow/internal/gateway"
)

// StartPasswordLogin describes the startpasswordlogin operation and its observable behavior.
//
// StartPasswordLogin may return an error when input validation, dependency calls, or security checks fail.
// StartPasswordLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) StartPasswordLogin(ctx context.Context, contact, password string) error {
	if s == nil {
		return ErrSessionNotReady
	}

	if !IsValidContact(contact) {
		s.presenter.ShowNotice(noticeContactInvalid)
		return validationError(noticeContactInvalid, ErrContactInvalid)
	}
	if password == "" {
		s.presenter.ShowNotice(noticePasswordEmpty)
		return validationError(noticePasswordEmpty, ErrPasswordEmpty)
	}

	// Locked is terminal for the page lifetime; no further calls go out.
	if s.flowLocked(PurposeLogin) {
		return lockoutError(noticeLockedOut)
	}

	if err := s.beginSubmission(PurposeLogin); err != nil {
		return err
	}
	defer s.endSubmission(PurposeLogin, true)

	result, err := s.gateway.Login(ctx, contact, password)
	if err != nil {
		return s.loginFailure(ctx, contact, err)
	}
	if !result.Success {
		// 2xx without the success marker is treated as a plain failure
		// message; the backend does this for soft rejections.
		s.metricInc(MetricLoginFailure)
		s.presenter.ShowNotice(result.Message)
		s.emitAudit(ctx, auditEventPasswordLogin, false, contact, PurposeLogin, "", apiError(result.Message, nil), nil)
		return apiError(result.Message, nil)
	}

	if err := s.store.Persist(ctx, contact); err != nil {
		s.log.Error().Err(err).Msg("session persist failed after login")
		s.presenter.ShowNotice(noticeUnexpected)
		s.emitAudit(ctx, auditEventPasswordLogin, false, contact, PurposeLogin, "", err, nil)
		return transportError(noticeUnexpected, err)
	}

	s.metricInc(MetricLoginSuccess)
	s.metricInc(MetricSessionPersisted)
	s.presenter.ShowNotice(result.Message)
	s.presenter.Redirect(ResolveRedirect(s.config.Redirect.Param), s.config.Redirect.LoginDelay)
	s.emitAudit(ctx, auditEventPasswordLogin, true, contact, PurposeLogin, "", nil, nil)
	s.emitAudit(ctx, auditEventSessionPersisted, true, contact, PurposeLogin, "", nil, nil)

	return nil
}

// loginFailure routes a failed password attempt: wrong passwords count toward
// the lockout threshold, captcha rejections carry the remediation hint, and
// everything else surfaces the backend message verbatim.
func (s *Session) loginFailure(ctx context.Context, contact string, err error) error {
	switch gateway.Classify(err) {
	case gateway.FailureInvalidPassword:
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventPasswordLogin, false, contact, PurposeLogin, "", err, nil)
		if s.lockout.record(scopePassword) {
			s.metricInc(MetricLoginLockout)
			return s.lockFlow(ctx, PurposeLogin, contact, auditEventLoginLockout)
		}
		return s.surfaceFailure(err)

	case gateway.FailureCaptchaRejected:
		s.metricInc(MetricCaptchaRejected)
		s.presenter.ShowNotice(noticeCaptchaRemediate)
		s.emitAudit(ctx, auditEventPasswordLogin, false, contact, PurposeLogin, "", ErrCaptchaRejected, nil)
		return apiError(noticeCaptchaRemediate, ErrCaptchaRejected)

	case gateway.FailureUserNotFound:
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventPasswordLogin, false, contact, PurposeLogin, "", ErrUserNotFound, nil)
		return s.surfaceFailure(err)

	default:
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventPasswordLogin, false, contact, PurposeLogin, "", err, nil)
		return s.surfaceFailure(err)
	}
}
