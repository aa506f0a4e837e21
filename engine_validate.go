package goAuthKit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthKit/jwt"
	"github.com/MrEthical07/goAuthKit/permission"
	"github.com/MrEthical07/goAuthKit/revoke"
)

const sessionTokenHeader = "X-Session-Token"

// ExtractToken pulls the bearer credential out of an HTTP request.
// Sources are tried in priority order: the X-Session-Token header, an
// Authorization Bearer scheme, a bare Authorization value, and finally
// the access_token query parameter.
func ExtractToken(r *http.Request) (string, jwt.TokenType, bool) {
	if token := strings.TrimSpace(r.Header.Get(sessionTokenHeader)); token != "" {
		return token, jwt.TypeSession, true
	}

	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			return strings.TrimSpace(auth[7:]), jwt.TypeAccess, true
		}
		return auth, jwt.TypeAccess, true
	}

	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, jwt.TypeAccess, true
	}

	return "", "", false
}

// AuthenticateRequest describes the authenticaterequest operation and its observable behavior.
//
// Either an access or a session token is accepted from any extraction
// source: the source only hints at the likely kind, it never narrows
// what validates. Refresh tokens are rejected here; they belong to
// [Engine.Refresh] only.
//
// AuthenticateRequest may return an error when input validation, dependency calls, or security checks fail.
// AuthenticateRequest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuthenticateRequest(ctx context.Context, r *http.Request) (*Principal, error) {
	token, _, ok := ExtractToken(r)
	if !ok {
		e.metricInc(MetricValidateRejected)
		return nil, ErrUnauthenticated
	}

	if origin := requestOrigin(r); origin != "" {
		ctx = WithOrigin(ctx, origin)
	}

	return e.AuthenticateToken(ctx, token, jwt.TypeAccess, jwt.TypeSession)
}

// AuthenticateToken validates a single token and builds the [Principal].
// The revocation ladder runs cheapest-first: full-token blacklist, then
// jti (access tokens only), then session, then the two user-level
// markers. The first hit rejects.
//
// AuthenticateToken may return an error when input validation, dependency calls, or security checks fail.
// AuthenticateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuthenticateToken(ctx context.Context, tokenStr string, expected ...jwt.TokenType) (*Principal, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}

	claims, err := e.jwtManager.Parse(tokenStr, expected...)
	if err != nil {
		e.metricInc(MetricValidateRejected)
		mapped := mapTokenError(err)
		e.emitAudit(ctx, auditEventValidateRejected, false, "", "", mapped, func() map[string]string {
			return map[string]string{
				"reason": "parse_failed",
			}
		})
		return nil, mapped
	}

	if revokedErr := e.tokenRevocationCheck(ctx, tokenStr, claims); revokedErr != nil {
		e.metricInc(MetricValidateRejected)
		e.emitAudit(ctx, auditEventValidateRejected, false, claims.Subject, claims.SessionID, revokedErr, nil)
		return nil, revokedErr
	}

	if err := e.checkOrigin(ctx, claims); err != nil {
		e.metricInc(MetricValidateRejected)
		e.metricInc(MetricOriginMismatch)
		e.emitAudit(ctx, auditEventValidateRejected, false, claims.Subject, claims.SessionID, err, func() map[string]string {
			return map[string]string{
				"token_origin": claims.Origin,
			}
		})
		return nil, err
	}

	e.metricInc(MetricValidateSuccess)
	return buildPrincipal(claims), nil
}

func (e *Engine) tokenRevocationCheck(ctx context.Context, tokenStr string, claims *jwt.Claims) error {
	kind := revoke.Kind(claims.Type)
	if e.revocations.IsTokenBlacklisted(ctx, tokenStr, kind) {
		return ErrTokenRevoked
	}
	if claims.Type == string(jwt.TypeAccess) && claims.ID != "" {
		if e.revocations.IsJTIBlacklisted(ctx, claims.ID) {
			return ErrTokenRevoked
		}
	}
	if claims.SessionID != "" && e.revocations.IsSessionBlacklisted(ctx, claims.SessionID) {
		return ErrSessionRevoked
	}
	if e.revocations.IsUserBlacklisted(ctx, claims.Subject) {
		return ErrUserRevoked
	}
	// The user-refresh marker rejects every token kind: a "log out
	// everywhere" that only managed the refresh write must still fence
	// the outstanding access and session tokens.
	if e.revocations.IsUserRefreshRevoked(ctx, claims.Subject) {
		return ErrUserRevoked
	}
	return nil
}

// checkOrigin compares the token's minting origin with the request
// origin. Outside production mode, localhost spellings (localhost,
// 127.0.0.1, 0.0.0.0) are interchangeable and ports are ignored, so a
// token minted against localhost:3000 works from 127.0.0.1:5173.
func (e *Engine) checkOrigin(ctx context.Context, claims *jwt.Claims) error {
	if !e.config.Security.EnforceOriginCheck || claims.Origin == "" {
		return nil
	}

	requestOrigin := originFromContext(ctx)
	if requestOrigin == "" {
		return nil
	}

	tokenOrigin := normalizeOrigin(claims.Origin)
	requestOrigin = normalizeOrigin(requestOrigin)
	if tokenOrigin == requestOrigin {
		return nil
	}
	if !e.config.Security.ProductionMode && sameLocalhost(tokenOrigin, requestOrigin) {
		return nil
	}
	return ErrOriginMismatch
}

// normalizeOrigin canonicalizes an origin before comparison: hosts and
// schemes are case-insensitive and a trailing slash carries no meaning.
func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}

func sameLocalhost(a, b string) bool {
	return isLocalhostOrigin(a) && isLocalhostOrigin(b)
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "" {
		// Bare host[:port] without a scheme.
		host = origin
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
	}
	switch host {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return true
	}
	return false
}

func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	if referer := r.Header.Get("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}
	return ""
}

func buildPrincipal(claims *jwt.Claims) *Principal {
	p := &Principal{
		UserID:      claims.Subject,
		TokenType:   claims.Type,
		SessionID:   claims.SessionID,
		JTI:         claims.ID,
		Origin:      claims.Origin,
		Permissions: claims.Permissions,
	}

	if len(claims.UserProfile) > 0 {
		var profile UserProfile
		if err := json.Unmarshal(claims.UserProfile, &profile); err == nil {
			p.Profile = &profile
		}
	}

	return p
}

// Authorize describes the authorize operation and its observable behavior.
//
// The permission snapshot embedded in a session token is tried first and
// can only ALLOW: a snapshot is as stale as the token, so a miss falls
// through to the database rather than denying outright.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authorize(ctx context.Context, principal *Principal, required []string, requireAll bool) error {
	if e == nil || e.resolver == nil {
		return ErrEngineNotReady
	}
	if principal == nil {
		return ErrUnauthenticated
	}
	if len(required) == 0 {
		return nil
	}

	if len(principal.Permissions) > 0 && permission.AuthorizeSnapshot(principal.Permissions, required, requireAll) {
		return nil
	}

	if err := e.resolver.Authorize(ctx, principal.UserID, required, requireAll); err != nil {
		var denied *permission.DeniedError
		if errors.As(err, &denied) {
			e.metricInc(MetricAuthorizeDenied)
			e.emitAudit(ctx, auditEventAuthorizeDenied, false, principal.UserID, principal.SessionID, ErrPermissionDenied, func() map[string]string {
				return map[string]string{
					"required": strings.Join(denied.Required, ","),
				}
			})
			return &ForbiddenError{Required: denied.Required, Groups: denied.Groups}
		}
		return err
	}
	return nil
}

// UserGroups describes the usergroups operation and its observable behavior.
//
// UserGroups may return an error when input validation, dependency calls, or security checks fail.
// UserGroups does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UserGroups(ctx context.Context, userID string) ([]string, error) {
	if e == nil || e.resolver == nil {
		return nil, ErrEngineNotReady
	}
	return e.resolver.UserGroups(ctx, userID)
}

// UserPermissions describes the userpermissions operation and its observable behavior.
//
// UserPermissions may return an error when input validation, dependency calls, or security checks fail.
// UserPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	if e == nil || e.resolver == nil {
		return nil, ErrEngineNotReady
	}
	return e.resolver.UserPermissions(ctx, userID)
}

// AssignGroups describes the assigngroups operation and its observable behavior.
//
// AssignGroups may return an error when input validation, dependency calls, or security checks fail.
// AssignGroups does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AssignGroups(ctx context.Context, userID string, groups []string, assignedBy string) error {
	if e == nil || e.resolver == nil {
		return ErrEngineNotReady
	}
	if err := e.resolver.AssignGroups(ctx, userID, groups, assignedBy); err != nil {
		if errors.Is(err, permission.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return ErrGroupAssignmentFailed
	}
	e.emitAudit(ctx, auditEventGroupsAssigned, true, userID, "", nil, func() map[string]string {
		return map[string]string{
			"groups":      strings.Join(groups, ","),
			"assigned_by": assignedBy,
		}
	})
	return nil
}
