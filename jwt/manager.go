package jwt

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType discriminates the three token kinds minted together by
// [Manager.MintTriple]. The value is carried in the "type" claim.
type TokenType string

const (
	// TypeAccess is an exported constant or variable used by the authentication engine.
	TypeAccess TokenType = "access"
	// TypeRefresh is an exported constant or variable used by the authentication engine.
	TypeRefresh TokenType = "refresh"
	// TypeSession is an exported constant or variable used by the authentication engine.
	TypeSession TokenType = "session"
)

// SigningMethod defines a public type used by goAuthKit APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 is an exported constant or variable used by the authentication engine.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 is an exported constant or variable used by the authentication engine.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenTypeMismatch is an exported constant or variable used by the authentication engine.
	ErrTokenTypeMismatch = errors.New("unexpected token type")
)

// Config defines a public type used by goAuthKit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessTTL     time.Duration
	SessionTTL    time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	Secret        []byte // hs256
	PrivateKey    []byte // ed25519
	PublicKey     []byte // ed25519
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims is the single claim shape shared by all three token kinds.
// Access and refresh tokens leave UserProfile and Permissions empty;
// session tokens embed both snapshots.
type Claims struct {
	Type        string          `json:"type"`
	SessionID   string          `json:"session_id"`
	Origin      string          `json:"origin,omitempty"`
	UserProfile json.RawMessage `json:"user_profile,omitempty"`
	Permissions []string        `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Triple is one authentication event's worth of tokens. All three share
// SessionID and the subject they were minted for.
type Triple struct {
	Access    string
	Refresh   string
	Session   string
	SessionID string
}

// Manager mints and parses the three token kinds. It is the single source
// of truth for the claim shape.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.SessionTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires secret")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// TTL returns the configured lifetime for a token kind.
func (m *Manager) TTL(typ TokenType) time.Duration {
	switch typ {
	case TypeAccess:
		return m.config.AccessTTL
	case TypeSession:
		return m.config.SessionTTL
	default:
		return m.config.RefreshTTL
	}
}

// MintTriple generates one fresh session ID and three tokens sharing it
// and the given subject. The session token embeds the profile snapshot
// and permission list; the other two carry only the shared claims.
//
// MintTriple may return an error when input validation, dependency calls, or security checks fail.
// MintTriple does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MintTriple(sub string, profile []byte, permissions []string, origin string) (Triple, error) {
	sessionID := uuid.NewString()

	access, err := m.Mint(TypeAccess, sub, sessionID, origin, nil, nil)
	if err != nil {
		return Triple{}, err
	}
	refresh, err := m.Mint(TypeRefresh, sub, sessionID, origin, nil, nil)
	if err != nil {
		return Triple{}, err
	}
	session, err := m.Mint(TypeSession, sub, sessionID, origin, profile, permissions)
	if err != nil {
		return Triple{}, err
	}

	return Triple{
		Access:    access,
		Refresh:   refresh,
		Session:   session,
		SessionID: sessionID,
	}, nil
}

// Mint signs a single token of the given kind. Expirations are UTC with
// minute granularity: exp = iat + the kind's configured TTL.
//
// Mint may return an error when input validation, dependency calls, or security checks fail.
// Mint does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Mint(
	typ TokenType,
	sub string,
	sessionID string,
	origin string,
	profile []byte,
	permissions []string,
) (string, error) {
	now := time.Now().UTC().Truncate(time.Minute)

	claims := Claims{
		Type:      string(typ),
		SessionID: sessionID,
		Origin:    origin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL(typ))),
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}
	if typ == TypeSession {
		claims.UserProfile = profile
		claims.Permissions = permissions
	}

	token := jwt.NewWithClaims(m.getMethod(), claims)

	signKey, err := m.getSignKey()
	if err != nil {
		return "", err
	}

	return token.SignedString(signKey)
}

// Parse verifies signature and temporal claims and restricts the "type"
// claim to the expected kinds. It first verifies with the configured
// audience and falls back to verifying without one for tokens minted
// before the audience claim was introduced.
//
// Parse may return an error when input validation, dependency calls, or security checks fail.
// Parse does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Parse(tokenStr string, expected ...TokenType) (*Claims, error) {
	claims, err := m.parseVerified(tokenStr, true, true)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalidAudience) {
			claims, err = m.parseVerified(tokenStr, false, true)
		}
		if err != nil {
			return nil, classifyParseError(err)
		}
	}

	if len(expected) > 0 && !typeAllowed(claims.Type, expected) {
		return nil, fmt.Errorf("%w: got %q", ErrTokenTypeMismatch, claims.Type)
	}

	return claims, nil
}

// ParseIgnoreExpiry verifies the signature but tolerates an expired exp
// claim. Used during logout so that a near-expired access token can still
// be blacklisted by its jti.
func (m *Manager) ParseIgnoreExpiry(tokenStr string) (*Claims, error) {
	claims, err := m.parseVerified(tokenStr, false, false)
	if err != nil {
		return nil, classifyParseError(err)
	}
	return claims, nil
}

// ParseUnverified decodes the claim set without any signature check.
// Last-resort extraction for logout only; never trust the result for
// authentication.
func (m *Manager) ParseUnverified(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (m *Manager) parseVerified(tokenStr string, withAudience, withExpiry bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.getMethod().Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if withAudience && m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}
	if !withExpiry {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.getVerifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || (withExpiry && !token.Valid) {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

func classifyParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
}

func typeAllowed(got string, expected []TokenType) bool {
	for _, t := range expected {
		if got == string(t) {
			return true
		}
	}
	return false
}

func (m *Manager) getMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (m *Manager) getSignKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(m.config.PrivateKey)
	default:
		return m.config.Secret, nil
	}
}

func (m *Manager) getVerifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(m.config.PublicKey)
	default:
		return m.config.Secret, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
