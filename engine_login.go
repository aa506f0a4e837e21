package goAuthKit

import (
	"context"
	"errors"
	"log"

	"github.com/MrEthical07/goAuthKit/otp"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	ip := clientIPFromContext(ctx)
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, ErrLoginRateLimited
		}
	}

	if password == "" {
		return nil, e.failLogin(ctx, identifier, ip, "", "empty_password")
	}

	user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, e.failLogin(ctx, identifier, ip, "", "user_not_found")
	}

	ok, err := e.passwordHash.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, e.failLogin(ctx, identifier, ip, user.UserID, "password_mismatch")
	}

	if statusErr := e.checkAccountStatus(&user); statusErr != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", statusErr, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "account_status",
			}
		})
		return nil, statusErr
	}

	if e.config.Password.UpgradeOnLogin {
		if needsUpgrade, err := e.passwordHash.NeedsUpgrade(user.PasswordHash); err == nil && needsUpgrade {
			if upgradedHash, err := e.passwordHash.Hash(password); err == nil {
				// Rehash update is best-effort and must not block successful login.
				if err := e.userProvider.UpdatePasswordHash(ctx, user.UserID, upgradedHash); err != nil {
					log.Print("goAuthKit: password hash upgrade update failed")
				}
			} else {
				log.Print("goAuthKit: password hash upgrade generation failed")
			}
		}
	}
	password = ""

	result, err := e.establishSession(ctx, &user)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", err, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "session_mint_failed",
			}
		})
		return nil, err
	}

	if e.rateLimiter != nil {
		// Limiter reset is best-effort and must not block successful login.
		if err := e.rateLimiter.ResetLogin(ctx, identifier, ip); err != nil {
			log.Print("goAuthKit: login limiter reset failed")
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, result.SessionID, nil, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})

	return result, nil
}

// LoginWithOTP describes the loginwithotp operation and its observable behavior.
//
// LoginWithOTP may return an error when input validation, dependency calls, or security checks fail.
// LoginWithOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoginWithOTP(ctx context.Context, identifier, code string) (*AuthResult, error) {
	if e == nil || e.otpStore == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.otpStore.Verify(ctx, identifier, code, true); err != nil {
		e.metricInc(MetricOTPLoginFailure)
		if errors.Is(err, otp.ErrInvalid) {
			e.metricInc(MetricOTPInvalid)
			e.emitAudit(ctx, auditEventOTPLoginFailure, false, "", "", ErrInvalidOTP, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, ErrInvalidOTP
		}
		e.emitAudit(ctx, auditEventOTPLoginFailure, false, "", "", ErrRevocationUnavailable, nil)
		return nil, ErrRevocationUnavailable
	}

	user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		e.metricInc(MetricOTPLoginFailure)
		e.emitAudit(ctx, auditEventOTPLoginFailure, false, "", "", ErrUserNotFound, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
			}
		})
		return nil, ErrUserNotFound
	}

	if statusErr := e.checkAccountStatus(&user); statusErr != nil {
		e.metricInc(MetricOTPLoginFailure)
		e.emitAudit(ctx, auditEventOTPLoginFailure, false, user.UserID, "", statusErr, nil)
		return nil, statusErr
	}

	// OTP proved control of the channel; mark it verified if not yet.
	if err := e.markChannelVerified(ctx, &user, identifier); err != nil {
		log.Print("goAuthKit: channel verification update failed")
	}

	result, err := e.establishSession(ctx, &user)
	if err != nil {
		e.metricInc(MetricOTPLoginFailure)
		e.emitAudit(ctx, auditEventOTPLoginFailure, false, user.UserID, "", err, nil)
		return nil, err
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.ResetOTPRequest(ctx, identifier); err != nil {
			log.Print("goAuthKit: otp limiter reset failed")
		}
	}

	e.metricInc(MetricOTPLoginSuccess)
	e.emitAudit(ctx, auditEventOTPLoginSuccess, true, user.UserID, result.SessionID, nil, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})

	return result, nil
}

func (e *Engine) markChannelVerified(ctx context.Context, user *UserRecord, identifier string) error {
	channel := ChannelOf(identifier)
	if channel == ChannelEmail && user.EmailVerified {
		return nil
	}
	if channel == ChannelPhone && user.PhoneVerified {
		return nil
	}

	if err := e.userProvider.MarkChannelVerified(ctx, user.UserID, channel); err != nil {
		return err
	}

	switch channel {
	case ChannelEmail:
		user.EmailVerified = true
	case ChannelPhone:
		user.PhoneVerified = true
	}
	user.IsVerified = true

	e.emitAudit(ctx, auditEventChannelVerified, true, user.UserID, "", nil, func() map[string]string {
		return map[string]string{
			"channel": string(channel),
		}
	})
	return nil
}

func (e *Engine) failLogin(ctx context.Context, identifier, ip, userID, reason string) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.IncrementLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, userID, "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return ErrLoginRateLimited
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
			"reason":     reason,
		}
	})
	return ErrInvalidCredentials
}
