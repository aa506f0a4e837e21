package goAuthKit

import (
	"context"
	"errors"

	"github.com/MrEthical07/goAuthKit/jwt"
	"github.com/MrEthical07/goAuthKit/revoke"
)

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		mapped := mapTokenError(err)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", mapped, func() map[string]string {
			return map[string]string{
				"reason": "parse_failed",
			}
		})
		return nil, mapped
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckRefresh(ctx, claims.SessionID); err != nil {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefreshRateLimit, false, claims.Subject, claims.SessionID, ErrRefreshRateLimited, nil)
			e.emitRateLimit(ctx, "refresh", func() map[string]string {
				return map[string]string{
					"session_id": claims.SessionID,
				}
			})
			return nil, ErrRefreshRateLimited
		}
	}

	if revokedErr := e.refreshRevocationCheck(ctx, refreshToken, claims); revokedErr != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.Subject, claims.SessionID, revokedErr, func() map[string]string {
			return map[string]string{
				"reason": "revoked",
			}
		})
		return nil, revokedErr
	}

	user, err := e.userProvider.GetUserByID(ctx, claims.Subject)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.Subject, claims.SessionID, ErrUserNotFound, func() map[string]string {
			return map[string]string{
				"reason": "user_not_found",
			}
		})
		return nil, ErrUserNotFound
	}
	if statusErr := e.checkAccountStatus(&user); statusErr != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UserID, claims.SessionID, statusErr, func() map[string]string {
			return map[string]string{
				"reason": "account_status",
			}
		})
		return nil, statusErr
	}

	// Retire the old credentials BEFORE minting: if either write fails the
	// rotation aborts and the old refresh token stays usable, never both.
	if err := e.revocations.BlacklistToken(ctx, refreshToken, revoke.KindRefresh); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UserID, claims.SessionID, ErrRevocationUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "blacklist_token_failed",
			}
		})
		return nil, ErrRevocationUnavailable
	}
	if err := e.revocations.BlacklistSession(ctx, claims.SessionID); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UserID, claims.SessionID, ErrRevocationUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "blacklist_session_failed",
			}
		})
		return nil, ErrRevocationUnavailable
	}
	e.metricInc(MetricSessionRevoked)

	result, err := e.mintResult(ctx, &user)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UserID, claims.SessionID, err, func() map[string]string {
			return map[string]string{
				"reason": "mint_failed",
			}
		})
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.UserID, result.SessionID, nil, func() map[string]string {
		return map[string]string{
			"rotated_from": claims.SessionID,
		}
	})

	return result, nil
}

func (e *Engine) refreshRevocationCheck(ctx context.Context, refreshToken string, claims *jwt.Claims) error {
	if e.revocations.IsTokenBlacklisted(ctx, refreshToken, revoke.KindRefresh) {
		return ErrTokenRevoked
	}
	if e.revocations.IsSessionBlacklisted(ctx, claims.SessionID) {
		return ErrSessionRevoked
	}
	if e.revocations.IsUserBlacklisted(ctx, claims.Subject) {
		return ErrUserRevoked
	}
	if e.revocations.IsUserRefreshRevoked(ctx, claims.Subject) {
		return ErrUserRevoked
	}
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenTypeMismatch):
		return ErrTokenTypeMismatch
	default:
		return ErrTokenInvalid
	}
}
