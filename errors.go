package goAuthKit

import "errors"

var (
	// ErrUnauthenticated is an exported constant or variable used by the authentication engine.
	ErrUnauthenticated = errors.New("missing or unusable credentials")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNotActive is an exported constant or variable used by the authentication engine.
	ErrAccountNotActive = errors.New("account not active")
	// ErrAccountNotVerified is an exported constant or variable used by the authentication engine.
	ErrAccountNotVerified = errors.New("account not verified")
	// ErrAccountExists is an exported constant or variable used by the authentication engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidOTP is an exported constant or variable used by the authentication engine.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPRateLimited is an exported constant or variable used by the authentication engine.
	ErrOTPRateLimited = errors.New("otp requests rate limited")
	// ErrLoginRateLimited is an exported constant or variable used by the authentication engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the authentication engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenTypeMismatch is an exported constant or variable used by the authentication engine.
	ErrTokenTypeMismatch = errors.New("unexpected token type")
	// ErrTokenRevoked is an exported constant or variable used by the authentication engine.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrSessionRevoked is an exported constant or variable used by the authentication engine.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrUserRevoked is an exported constant or variable used by the authentication engine.
	ErrUserRevoked = errors.New("all user tokens revoked")
	// ErrOriginMismatch is an exported constant or variable used by the authentication engine.
	ErrOriginMismatch = errors.New("token origin mismatch")
	// ErrPermissionDenied is an exported constant or variable used by the authentication engine.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrGroupNotFound is an exported constant or variable used by the authentication engine.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupAssignmentFailed is an exported constant or variable used by the authentication engine.
	ErrGroupAssignmentFailed = errors.New("group assignment failed")
	// ErrPasswordReuse is an exported constant or variable used by the authentication engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrRevocationUnavailable is an exported constant or variable used by the authentication engine.
	ErrRevocationUnavailable = errors.New("revocation backend unavailable")
	// ErrNotifierUnavailable is an exported constant or variable used by the authentication engine.
	ErrNotifierUnavailable = errors.New("notification channel unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ForbiddenError is returned by [Engine.Authorize] when the principal lacks
// the required permissions. It carries the required permission codenames and
// the principal's actual groups for diagnosability.
type ForbiddenError struct {
	Required []string
	Groups   []string
}

func (e *ForbiddenError) Error() string {
	msg := "permission denied"
	for i, p := range e.Required {
		if i == 0 {
			msg += ": requires " + p
			continue
		}
		msg += ", " + p
	}
	return msg
}

// Unwrap makes errors.Is(err, ErrPermissionDenied) hold for ForbiddenError.
func (e *ForbiddenError) Unwrap() error { return ErrPermissionDenied }
