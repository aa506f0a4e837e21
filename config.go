package goAuthKit

import (
	"errors"
	"time"
)

// Config defines a public type used by goAuthKit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	OTP      OTPConfig
	Password PasswordConfig
	Account  AccountConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Cache    CacheConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goAuthKit APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	SessionTTL    time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte // hs256 signing key
	PrivateKey    []byte // ed25519 only
	PublicKey     []byte // ed25519 only
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by goAuthKit APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	TTL    time.Duration
	Digits int

	// MasterOTP verifies against any identifier without consulting the
	// cache, and grants the super-admin group on signup. Empty disables
	// it; deployments that set it opt into the bypass deliberately.
	MasterOTP string

	EnableIdentifierThrottle bool
	MaxRequests              int
	RequestCooldown          time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goAuthKit APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	BcryptCost     int
	UpgradeOnLogin bool // rehash legacy PBKDF2 hashes after a successful verify
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig defines a public type used by goAuthKit APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	DefaultGroup    string
	SuperAdminGroup string
	RequireVerified bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by goAuthKit APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode bool

	// EnforceOriginCheck compares the origin claim of incoming tokens
	// against the request origin. Outside ProductionMode any localhost
	// origin matches any other localhost origin regardless of port.
	EnforceOriginCheck bool

	EnableIPThrottle        bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

// AuditConfig defines a public type used by goAuthKit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goAuthKit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig defines a public type used by goAuthKit APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	// MemoryFallback degrades blacklist and OTP storage to an in-process
	// map when Redis is unreachable instead of failing every operation.
	MemoryFallback bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the development-grade defaults used by [New].
// Callers override fields and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     60 * time.Minute,
			SessionTTL:    7 * 24 * time.Hour,
			RefreshTTL:    30 * 24 * time.Hour,
			SigningMethod: "hs256",
			Audience:      "authenticated",
		},
		OTP: OTPConfig{
			TTL:                      10 * time.Minute,
			Digits:                   6,
			MasterOTP:                "",
			EnableIdentifierThrottle: true,
			MaxRequests:              5,
			RequestCooldown:          15 * time.Minute,
		},
		Password: PasswordConfig{
			BcryptCost:     10,
			UpgradeOnLogin: true,
		},
		Account: AccountConfig{
			DefaultGroup:    "user",
			SuperAdminGroup: "super_admin",
			RequireVerified: true,
		},
		Security: SecurityConfig{
			ProductionMode:          false,
			EnforceOriginCheck:      true,
			EnableIPThrottle:        false,
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			EnableRefreshThrottle:   true,
			MaxRefreshAttempts:      20,
			RefreshCooldownDuration: 1 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Cache: CacheConfig{
			MemoryFallback: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.SessionTTL <= 0 {
		return errors.New("JWT SessionTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.AccessTTL > c.JWT.SessionTTL {
		return errors.New("JWT AccessTTL must be <= SessionTTL")
	}
	if c.JWT.SessionTTL > c.JWT.RefreshTTL {
		return errors.New("JWT SessionTTL must be <= RefreshTTL")
	}

	if c.JWT.SigningMethod != "hs256" && c.JWT.SigningMethod != "ed25519" {
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.SigningMethod == "hs256" && len(c.JWT.Secret) == 0 {
		return errors.New("hs256 requires Secret")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// OTP
	if c.OTP.TTL <= 0 {
		return errors.New("OTP TTL must be > 0")
	}
	if c.OTP.Digits < 6 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 6 and 10")
	}
	if c.OTP.EnableIdentifierThrottle {
		if c.OTP.MaxRequests <= 0 {
			return errors.New("OTP MaxRequests must be > 0 when identifier throttle is enabled")
		}
		if c.OTP.RequestCooldown <= 0 {
			return errors.New("OTP RequestCooldown must be > 0 when identifier throttle is enabled")
		}
	}

	// Password
	if c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31 {
		return errors.New("Password BcryptCost must be between 4 and 31")
	}

	// Account
	if c.Account.DefaultGroup == "" {
		return errors.New("Account DefaultGroup is required")
	}
	if c.Account.SuperAdminGroup == "" {
		return errors.New("Account SuperAdminGroup is required")
	}

	// Security
	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("MaxLoginAttempts must be > 0")
	}
	if c.Security.LoginCooldownDuration <= 0 {
		return errors.New("LoginCooldownDuration must be > 0")
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 {
			return errors.New("MaxRefreshAttempts must be > 0 when refresh throttle is enabled")
		}
		if c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("RefreshCooldownDuration must be > 0 when refresh throttle is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Security.ProductionMode {
		if c.JWT.SigningMethod == "hs256" && len(c.JWT.Secret) < 32 {
			return errors.New("ProductionMode requires hs256 key length >= 256 bits")
		}
		if c.JWT.AccessTTL > time.Hour {
			return errors.New("ProductionMode requires JWT AccessTTL <= 1h")
		}
		if c.JWT.RefreshTTL > 30*24*time.Hour {
			return errors.New("ProductionMode requires JWT RefreshTTL <= 30d")
		}
		if c.Password.BcryptCost < 10 {
			return errors.New("ProductionMode requires Password BcryptCost >= 10")
		}
		if !c.Security.EnforceOriginCheck {
			return errors.New("ProductionMode requires EnforceOriginCheck")
		}
		if !c.OTP.EnableIdentifierThrottle {
			return errors.New("ProductionMode requires OTP identifier throttle")
		}
	}

	return nil
}
