package goAuthKit

import (
	"errors"

	"github.com/MrEthical07/goAuthKit/cache"
	internalaudit "github.com/MrEthical07/goAuthKit/internal/audit"
	"github.com/MrEthical07/goAuthKit/internal/rate"
	"github.com/MrEthical07/goAuthKit/jwt"
	"github.com/MrEthical07/goAuthKit/notify"
	"github.com/MrEthical07/goAuthKit/otp"
	"github.com/MrEthical07/goAuthKit/password"
	"github.com/MrEthical07/goAuthKit/permission"
	"github.com/MrEthical07/goAuthKit/revoke"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goAuthKit APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userProvider UserProvider
	groupStore   permission.Store
	notifier     notify.Sender
	auditSink    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// WithUserProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithGroupStore describes the withgroupstore operation and its observable behavior.
//
// WithGroupStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithGroupStore(store permission.Store) *Builder {
	b.groupStore = store
	return b
}

// WithNotifier describes the withnotifier operation and its observable behavior.
//
// WithNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNotifier(sender notify.Sender) *Builder {
	b.notifier = sender
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}
	if b.groupStore == nil {
		return nil, errors.New("group store required")
	}

	engine := &Engine{
		config:       cfg,
		userProvider: b.userProvider,
		notifier:     b.notifier,
	}

	// -------- CACHE --------
	var store cache.Store = cache.NewRedis(b.redis)
	if cfg.Cache.MemoryFallback {
		store = cache.NewFallback(store)
	}
	engine.cache = store

	// -------- TOKEN MANAGER --------
	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SessionTTL:    cfg.JWT.SessionTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cloneBytes(cfg.JWT.Secret),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}
	engine.jwtManager = jm

	// -------- REVOCATION --------
	engine.revocations = revoke.NewStore(store, cfg.JWT.AccessTTL, cfg.JWT.SessionTTL, cfg.JWT.RefreshTTL)

	// -------- OTP --------
	engine.otpStore = otp.NewStore(store, cfg.OTP.TTL, cfg.OTP.Digits, cfg.OTP.MasterOTP)

	// -------- PERMISSIONS --------
	engine.resolver = permission.NewResolver(b.groupStore, cfg.Account.SuperAdminGroup)

	// -------- RATE LIMITING --------
	engine.rateLimiter = rate.New(b.redis, rate.Config{
		EnableIPThrottle:        cfg.Security.EnableIPThrottle,
		EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
		EnableOTPThrottle:       cfg.OTP.EnableIdentifierThrottle,
		MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
		LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
		MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
		RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
		MaxOTPRequests:          cfg.OTP.MaxRequests,
		OTPRequestCooldown:      cfg.OTP.RequestCooldown,
	})

	// -------- PASSWORD --------
	ph, err := password.NewHasher(password.Config{
		Cost: cfg.Password.BcryptCost,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	// -------- OBSERVABILITY --------
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
