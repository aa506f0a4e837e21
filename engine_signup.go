package goAuthKit

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/MrEthical07/goAuthKit/otp"
)

// Signup describes the signup operation and its observable behavior.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
// Signup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if e == nil || e.otpStore == nil || e.userProvider == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	// Pre-check without consuming: the code must survive until the user
	// row is committed so a failed create can be retried with it.
	if err := e.otpStore.Verify(ctx, req.Identifier, req.Code, false); err != nil {
		e.metricInc(MetricSignupFailure)
		if errors.Is(err, otp.ErrInvalid) {
			e.metricInc(MetricOTPInvalid)
			e.emitAudit(ctx, auditEventSignupFailure, false, "", "", ErrInvalidOTP, func() map[string]string {
				return map[string]string{
					"identifier": req.Identifier,
					"reason":     "invalid_otp",
				}
			})
			return nil, ErrInvalidOTP
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, "", "", ErrRevocationUnavailable, nil)
		return nil, ErrRevocationUnavailable
	}

	if _, err := e.userProvider.GetUserByIdentifier(ctx, req.Identifier); err == nil {
		e.metricInc(MetricSignupDuplicate)
		e.emitAudit(ctx, auditEventSignupDuplicate, false, "", "", ErrAccountExists, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
			}
		})
		return nil, ErrAccountExists
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"reason":     "hash_failed",
			}
		})
		return nil, err
	}

	input := buildCreateUserInput(req, hash)
	user, err := e.userProvider.CreateUser(ctx, input)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"reason":     "create_failed",
			}
		})
		return nil, err
	}

	// Master-OTP signups become super admins; everyone else gets the
	// default group. Assignment failure fails the signup: an account with
	// no groups resolves zero permissions.
	group := e.config.Account.DefaultGroup
	if e.otpStore.IsMaster(req.Code) {
		group = e.config.Account.SuperAdminGroup
	}
	if err := e.resolver.AssignGroups(ctx, user.UserID, []string{group}, "signup"); err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, user.UserID, "", ErrGroupAssignmentFailed, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"group":      group,
			}
		})
		return nil, ErrGroupAssignmentFailed
	}
	groups, err := e.resolver.UserGroups(ctx, user.UserID)
	if err != nil || len(groups) == 0 {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, user.UserID, "", ErrGroupAssignmentFailed, func() map[string]string {
			return map[string]string{
				"identifier": req.Identifier,
				"reason":     "group_readback_empty",
			}
		})
		return nil, ErrGroupAssignmentFailed
	}
	e.emitAudit(ctx, auditEventGroupsAssigned, true, user.UserID, "", nil, func() map[string]string {
		return map[string]string{
			"groups": strings.Join(groups, ","),
		}
	})

	result, err := e.establishSession(ctx, &user)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, user.UserID, "", err, nil)
		return nil, err
	}

	// Consume only now: the account exists and tokens are out.
	if err := e.otpStore.Consume(ctx, req.Identifier); err != nil {
		log.Print("goAuthKit: otp consume failed after signup")
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignupSuccess, true, user.UserID, result.SessionID, nil, func() map[string]string {
		return map[string]string{
			"identifier": req.Identifier,
		}
	})

	return result, nil
}

// IdentifierAvailable describes the identifieravailable operation and its observable behavior.
//
// IdentifierAvailable may return an error when input validation, dependency calls, or security checks fail.
// IdentifierAvailable does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IdentifierAvailable(ctx context.Context, identifier string) (bool, error) {
	if e == nil || e.userProvider == nil {
		return false, ErrEngineNotReady
	}
	if _, err := e.userProvider.GetUserByIdentifier(ctx, identifier); err == nil {
		return false, nil
	}
	return true, nil
}

// buildCreateUserInput derives the channel-specific fields: email signups
// take the address local part as username and are email-verified (the OTP
// already proved control); phone signups use the digits as username.
func buildCreateUserInput(req SignupRequest, hash string) CreateUserInput {
	input := CreateUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	}

	if ChannelOf(req.Identifier) == ChannelEmail {
		input.Email = req.Identifier
		input.Username = req.Identifier[:strings.Index(req.Identifier, "@")]
		input.EmailVerified = true
	} else {
		input.Phone = req.Identifier
		input.Username = req.Identifier
		input.PhoneVerified = true
	}

	return input
}
