package goAuthKit

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthKit/notify"
	"github.com/MrEthical07/goAuthKit/otp"
)

// RequestOTP describes the requestotp operation and its observable behavior.
//
// RequestOTP may return an error when input validation, dependency calls, or security checks fail.
// RequestOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequestOTP(ctx context.Context, identifier string) error {
	if e == nil || e.otpStore == nil {
		return ErrEngineNotReady
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckOTPRequest(ctx, identifier); err != nil {
			e.metricInc(MetricOTPRateLimited)
			e.emitAudit(ctx, auditEventOTPRateLimited, false, "", "", ErrOTPRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "otp_request", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return ErrOTPRateLimited
		}
	}

	code, err := e.otpStore.Issue(ctx, identifier)
	if err != nil {
		e.emitAudit(ctx, auditEventOTPRequested, false, "", "", ErrRevocationUnavailable, nil)
		return ErrRevocationUnavailable
	}

	if e.notifier != nil {
		channel := notify.ChannelSMS
		if ChannelOf(identifier) == ChannelEmail {
			channel = notify.ChannelEmail
		}
		message := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(e.config.OTP.TTL.Minutes()))
		if err := e.notifier.Send(ctx, channel, identifier, message); err != nil {
			e.emitAudit(ctx, auditEventOTPRequested, false, "", "", ErrNotifierUnavailable, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
					"channel":    string(channel),
				}
			})
			return ErrNotifierUnavailable
		}
	}

	e.metricInc(MetricOTPRequested)
	e.emitAudit(ctx, auditEventOTPRequested, true, "", "", nil, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})

	return nil
}

// VerifyOTP describes the verifyotp operation and its observable behavior.
//
// deleteAfterVerify decides whether a successful check consumes the code.
// Pre-flight validations (checking a signup code before collecting the
// rest of the form) pass false; terminal verifications pass true.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyOTP(ctx context.Context, identifier, code string, deleteAfterVerify bool) error {
	if e == nil || e.otpStore == nil {
		return ErrEngineNotReady
	}

	if err := e.otpStore.Verify(ctx, identifier, code, deleteAfterVerify); err != nil {
		if errors.Is(err, otp.ErrInvalid) {
			e.metricInc(MetricOTPInvalid)
			return ErrInvalidOTP
		}
		return ErrRevocationUnavailable
	}
	return nil
}
