package goAuthKit

import (
	"context"
	"errors"
	"log"

	"github.com/MrEthical07/goAuthKit/otp"
)

// ChangePassword describes the changepassword operation and its observable behavior.
//
// On success every outstanding token for the user is revoked; the caller
// must log in again with the new password.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}
	if userID == "" || oldPassword == "" || newPassword == "" {
		return ErrInvalidCredentials
	}

	user, err := e.userProvider.GetUserByID(ctx, userID)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}
	if statusErr := e.checkAccountStatus(&user); statusErr != nil {
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", statusErr, nil)
		return statusErr
	}

	oldOK, err := e.passwordHash.Verify(oldPassword, user.PasswordHash)
	if err != nil || !oldOK {
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "invalid_old_password",
			}
		})
		return ErrInvalidCredentials
	}

	samePassword, err := e.passwordHash.Verify(newPassword, user.PasswordHash)
	if err == nil && samePassword {
		e.metricInc(MetricPasswordChangeReuseRejected)
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	if err := e.updatePasswordAndRevoke(ctx, &user, newPassword); err != nil {
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", err, nil)
		return err
	}

	if e.rateLimiter != nil {
		identifier := user.Email
		if identifier == "" {
			identifier = user.Phone
		}
		// Limiter reset is best-effort and must not block successful password change.
		if err := e.rateLimiter.ResetLogin(ctx, identifier, clientIPFromContext(ctx)); err != nil {
			log.Print("goAuthKit: login limiter reset failed after password change")
		}
	}

	oldPassword = ""
	newPassword = ""
	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChange, true, userID, "", nil, nil)

	return nil
}

// ForgotPassword describes the forgotpassword operation and its observable behavior.
//
// The OTP previously delivered to the identifier is the sole proof of
// ownership; on success it is consumed, the password replaced, and every
// outstanding token for the user revoked.
//
// ForgotPassword may return an error when input validation, dependency calls, or security checks fail.
// ForgotPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ForgotPassword(ctx context.Context, identifier, code, newPassword string) error {
	if e == nil || e.passwordHash == nil || e.userProvider == nil || e.otpStore == nil {
		return ErrEngineNotReady
	}
	if newPassword == "" {
		return ErrInvalidCredentials
	}

	if err := e.otpStore.Verify(ctx, identifier, code, true); err != nil {
		if errors.Is(err, otp.ErrInvalid) {
			e.metricInc(MetricOTPInvalid)
			e.emitAudit(ctx, auditEventPasswordReset, false, "", "", ErrInvalidOTP, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return ErrInvalidOTP
		}
		return ErrRevocationUnavailable
	}

	user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, false, "", "", ErrUserNotFound, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
			}
		})
		return ErrUserNotFound
	}

	if err := e.updatePasswordAndRevoke(ctx, &user, newPassword); err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, false, user.UserID, "", err, nil)
		return err
	}

	newPassword = ""
	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordReset, true, user.UserID, "", nil, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})

	return nil
}

// updatePasswordAndRevoke writes the new hash and then kills every
// outstanding token. Revocation failure is surfaced, not swallowed: a
// password change that leaves old sessions alive is incomplete.
func (e *Engine) updatePasswordAndRevoke(ctx context.Context, user *UserRecord, newPassword string) error {
	newHash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.userProvider.UpdatePasswordHash(ctx, user.UserID, newHash); err != nil {
		return err
	}

	if err := e.revocations.BlacklistUser(ctx, user.UserID); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		return ErrRevocationUnavailable
	}
	if err := e.revocations.RevokeUserRefresh(ctx, user.UserID); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		return ErrRevocationUnavailable
	}
	e.metricInc(MetricSessionRevoked)

	return nil
}
