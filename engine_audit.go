package goAuthKit

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventLoginRateLimited  = "login_rate_limited"
	auditEventOTPRequested      = "otp_requested"
	auditEventOTPRateLimited    = "otp_rate_limited"
	auditEventOTPLoginSuccess   = "otp_login_success"
	auditEventOTPLoginFailure   = "otp_login_failure"
	auditEventSignupSuccess     = "signup_success"
	auditEventSignupFailure     = "signup_failure"
	auditEventSignupDuplicate   = "signup_duplicate"
	auditEventRefreshSuccess    = "refresh_success"
	auditEventRefreshInvalid    = "refresh_invalid"
	auditEventRefreshRateLimit  = "refresh_rate_limited"
	auditEventLogout            = "logout"
	auditEventValidateRejected  = "validate_rejected"
	auditEventAuthorizeDenied   = "authorize_denied"
	auditEventPasswordChange    = "password_change"
	auditEventPasswordReset     = "password_reset"
	auditEventGroupsAssigned    = "groups_assigned"
	auditEventRateLimitHit      = "rate_limit_triggered"
	auditEventChannelVerified   = "channel_verified"
	auditEventRevocationFailure = "revocation_write_failure"
)

// AuditErrorCode defines a public type used by goAuthKit APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthenticated      AuditErrorCode = "unauthenticated"
	auditErrInvalidCredentials   AuditErrorCode = "invalid_credentials"
	auditErrRateLimited          AuditErrorCode = "rate_limited"
	auditErrInvalidOTP           AuditErrorCode = "invalid_otp"
	auditErrInvalidToken         AuditErrorCode = "invalid_token"
	auditErrTokenExpired         AuditErrorCode = "token_expired"
	auditErrTokenTypeMismatch    AuditErrorCode = "token_type_mismatch"
	auditErrTokenRevoked         AuditErrorCode = "token_revoked"
	auditErrSessionRevoked       AuditErrorCode = "session_revoked"
	auditErrUserRevoked          AuditErrorCode = "user_revoked"
	auditErrOriginMismatch       AuditErrorCode = "origin_mismatch"
	auditErrUserNotFound         AuditErrorCode = "user_not_found"
	auditErrAccountNotActive     AuditErrorCode = "account_not_active"
	auditErrAccountNotVerified   AuditErrorCode = "account_not_verified"
	auditErrAccountExists        AuditErrorCode = "account_exists"
	auditErrPermissionDenied     AuditErrorCode = "permission_denied"
	auditErrGroupNotFound        AuditErrorCode = "group_not_found"
	auditErrGroupAssignment      AuditErrorCode = "group_assignment_failed"
	auditErrPasswordReuse        AuditErrorCode = "password_reuse"
	auditErrRevocationWriteError AuditErrorCode = "revocation_unavailable"
	auditErrNotifierUnavailable  AuditErrorCode = "notifier_unavailable"
	auditErrInternal             AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Origin:    originFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(ctx context.Context, scope string, metadataBuilder func() map[string]string) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitHit, false, "", "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrRefreshRateLimited),
		errors.Is(err, ErrOTPRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrInvalidOTP):
		return auditErrInvalidOTP
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenTypeMismatch):
		return auditErrTokenTypeMismatch
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrSessionRevoked):
		return auditErrSessionRevoked
	case errors.Is(err, ErrUserRevoked):
		return auditErrUserRevoked
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrOriginMismatch):
		return auditErrOriginMismatch
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrAccountNotActive):
		return auditErrAccountNotActive
	case errors.Is(err, ErrAccountNotVerified):
		return auditErrAccountNotVerified
	case errors.Is(err, ErrAccountExists):
		return auditErrAccountExists
	case errors.Is(err, ErrGroupNotFound):
		return auditErrGroupNotFound
	case errors.Is(err, ErrGroupAssignmentFailed):
		return auditErrGroupAssignment
	case errors.Is(err, ErrPermissionDenied):
		return auditErrPermissionDenied
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrRevocationUnavailable):
		return auditErrRevocationWriteError
	case errors.Is(err, ErrNotifierUnavailable):
		return auditErrNotifierUnavailable
	default:
		return auditErrInternal
	}
}
