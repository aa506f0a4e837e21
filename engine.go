package goAuthKit

import (
	"context"
	"encoding/json"

	"github.com/MrEthical07/goAuthKit/cache"
	internalaudit "github.com/MrEthical07/goAuthKit/internal/audit"
	"github.com/MrEthical07/goAuthKit/internal/rate"
	"github.com/MrEthical07/goAuthKit/jwt"
	"github.com/MrEthical07/goAuthKit/notify"
	"github.com/MrEthical07/goAuthKit/otp"
	"github.com/MrEthical07/goAuthKit/password"
	"github.com/MrEthical07/goAuthKit/permission"
	"github.com/MrEthical07/goAuthKit/revoke"
)

// Engine defines a public type used by goAuthKit APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	cache        cache.Store
	revocations  *revoke.Store
	otpStore     *otp.Store
	resolver     *permission.Resolver
	rateLimiter  *rate.Limiter
	passwordHash *password.Hasher
	notifier     notify.Sender
	userProvider UserProvider
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// establishSession mints the access/refresh/session triple for an
// already-authenticated user. Any user-level blacklist entries are
// cleared FIRST: a stale "log out everywhere" marker from a previous
// logout must not poison the tokens minted now.
func (e *Engine) establishSession(ctx context.Context, user *UserRecord) (*AuthResult, error) {
	if err := e.revocations.ClearUser(ctx, user.UserID); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		return nil, ErrRevocationUnavailable
	}
	if err := e.revocations.ClearUserRefresh(ctx, user.UserID); err != nil {
		e.metricInc(MetricRevocationWriteFailure)
		return nil, ErrRevocationUnavailable
	}

	return e.mintResult(ctx, user)
}

// mintResult mints a fresh token triple without touching revocation
// state. Refresh rotation uses it directly so user-level markers survive.
func (e *Engine) mintResult(ctx context.Context, user *UserRecord) (*AuthResult, error) {
	profile := profileFromRecord(user)
	profileJSON, err := json.Marshal(&profile)
	if err != nil {
		return nil, err
	}

	perms, err := e.resolver.UserPermissions(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	triple, err := e.jwtManager.MintTriple(user.UserID, profileJSON, perms, originFromContext(ctx))
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSessionMinted)

	return &AuthResult{
		AccessToken:  triple.Access,
		RefreshToken: triple.Refresh,
		SessionToken: triple.Session,
		SessionID:    triple.SessionID,
		Profile:      profile,
	}, nil
}

func profileFromRecord(user *UserRecord) UserProfile {
	return UserProfile{
		UserID:        user.UserID,
		Email:         user.Email,
		Phone:         user.Phone,
		Username:      user.Username,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		IsActive:      user.IsActive,
		IsVerified:    user.IsVerified,
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
	}
}

// checkAccountStatus maps account flags to their login errors. Inactive
// wins over unverified when both apply.
func (e *Engine) checkAccountStatus(user *UserRecord) error {
	if !user.IsActive {
		return ErrAccountNotActive
	}
	if e.config.Account.RequireVerified && !user.IsVerified {
		return ErrAccountNotVerified
	}
	return nil
}
