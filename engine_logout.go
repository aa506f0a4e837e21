package goAuthKit

import (
	"context"
	"log"

	"github.com/MrEthical07/goAuthKit/jwt"
	"github.com/MrEthical07/goAuthKit/revoke"
)

// Logout describes the logout operation and its observable behavior.
//
// Logout never fails outright: an expired or even unverifiable token is
// still decoded as far as possible so its session and user revocations
// can be recorded. The report says which of the three sub-operations
// (access blacklist, refresh revocation, session revocation) took.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, accessToken string) (LogoutReport, error) {
	var report LogoutReport
	if e == nil || e.jwtManager == nil {
		return report, ErrEngineNotReady
	}

	claims := e.decodeForLogout(accessToken)
	if claims == nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", ErrTokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "undecodable_token",
			}
		})
		return report, ErrTokenInvalid
	}

	report.AccessBlacklisted = true
	if claims.ID != "" {
		if err := e.revocations.BlacklistJTI(ctx, claims.ID); err != nil {
			e.metricInc(MetricRevocationWriteFailure)
			log.Print("goAuthKit: access jti blacklist failed during logout")
			report.AccessBlacklisted = false
		}
	}
	if err := e.revocations.BlacklistToken(ctx, accessToken, revoke.KindAccess); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		log.Print("goAuthKit: access token blacklist failed during logout")
		report.AccessBlacklisted = false
	}

	if claims.Subject != "" {
		if err := e.revocations.RevokeUserRefresh(ctx, claims.Subject); err != nil {
			e.metricInc(MetricRevocationWriteFailure)
			log.Print("goAuthKit: refresh revocation failed during logout")
		} else {
			report.RefreshRevoked = true
		}

		if err := e.revocations.BlacklistUser(ctx, claims.Subject); err != nil {
			e.metricInc(MetricRevocationWriteFailure)
			log.Print("goAuthKit: user blacklist failed during logout")
		} else {
			report.SessionsRevoked = true
		}
	}

	if claims.SessionID != "" {
		if err := e.revocations.BlacklistSession(ctx, claims.SessionID); err != nil {
			e.metricInc(MetricRevocationWriteFailure)
			log.Print("goAuthKit: session blacklist failed during logout")
			report.SessionsRevoked = false
		} else {
			e.metricInc(MetricSessionRevoked)
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, report.Complete(), claims.Subject, claims.SessionID, nil, func() map[string]string {
		return map[string]string{
			"access_blacklisted": boolString(report.AccessBlacklisted),
			"refresh_revoked":    boolString(report.RefreshRevoked),
			"sessions_revoked":   boolString(report.SessionsRevoked),
		}
	})

	return report, nil
}

// decodeForLogout tries progressively weaker decodes. A token too old or
// even too mangled to verify can still name the session to revoke; using
// unverified claims here only ever ADDS revocation entries.
func (e *Engine) decodeForLogout(tokenStr string) *jwt.Claims {
	if claims, err := e.jwtManager.Parse(tokenStr, jwt.TypeAccess); err == nil {
		return claims
	}
	if claims, err := e.jwtManager.ParseIgnoreExpiry(tokenStr); err == nil {
		return claims
	}
	if claims, err := e.jwtManager.ParseUnverified(tokenStr); err == nil {
		return claims
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
