package revoke

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MrEthical07/goAuthKit/cache"
)

// ErrWriteFailed is an exported constant or variable used by the authentication engine.
var ErrWriteFailed = errors.New("revocation write failed")

// Kind identifies which token kind a blacklist entry targets.
type Kind string

const (
	// KindAccess is an exported constant or variable used by the authentication engine.
	KindAccess Kind = "access"
	// KindRefresh is an exported constant or variable used by the authentication engine.
	KindRefresh Kind = "refresh"
	// KindSession is an exported constant or variable used by the authentication engine.
	KindSession Kind = "session"
)

const blacklistValue = "1"

// Store implements logout and rotation semantics purely via cache entries
// with TTL. There is no session table: revocation markers are the only
// server-side state, and a session is ACTIVE until a marker covering it
// appears (REVOKED is terminal — markers are never removed except by the
// explicit user-level clears below).
//
// Every entry's TTL is at least the remaining natural lifetime of what it
// blocks, so a marker never expires while its target could still be
// replayed.
//
// Reads fail open: a cache error is treated as not-blacklisted so a down
// cache cannot reject every request. Writes fail closed: failing to
// record a revocation is a security defect and propagates as an error.
type Store struct {
	cache      cache.Store
	accessTTL  time.Duration
	sessionTTL time.Duration
	refreshTTL time.Duration
}

// NewStore creates a revocation [Store]. The TTLs must match the token
// lifetimes configured on the token manager.
func NewStore(c cache.Store, accessTTL, sessionTTL, refreshTTL time.Duration) *Store {
	return &Store{
		cache:      c,
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
		refreshTTL: refreshTTL,
	}
}

func tokenKey(kind Kind, token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + string(kind) + ":" + hex.EncodeToString(sum[:])
}

func jtiKey(jti string) string {
	return "blacklist:access:jti:" + jti
}

func sessionKey(sessionID string) string {
	return "blacklist:session:" + sessionID
}

func userKey(userID string) string {
	return "blacklist:user:" + userID
}

func userRefreshKey(userID string) string {
	return "blacklist:refresh:user:" + userID
}

func (s *Store) ttlFor(kind Kind) time.Duration {
	switch kind {
	case KindAccess:
		return s.accessTTL
	case KindSession:
		return s.sessionTTL
	default:
		return s.refreshTTL
	}
}

// BlacklistToken stores a marker keyed by the SHA-256 of the full token,
// never the raw token, with TTL equal to that kind's maximum lifetime.
func (s *Store) BlacklistToken(ctx context.Context, token string, kind Kind) error {
	return s.write(ctx, tokenKey(kind, token), s.ttlFor(kind))
}

// BlacklistJTI blacklists an access token by its jti claim. Cheaper than
// hashing when the raw token is only transiently available.
func (s *Store) BlacklistJTI(ctx context.Context, jti string) error {
	return s.write(ctx, jtiKey(jti), s.accessTTL)
}

// BlacklistSession invalidates every token minted with the given session
// ID. TTL is the refresh lifetime, the longest of the three, so the
// marker outlives every token it covers.
func (s *Store) BlacklistSession(ctx context.Context, sessionID string) error {
	return s.write(ctx, sessionKey(sessionID), s.refreshTTL)
}

// BlacklistUser rejects every outstanding token for a user ("log out
// everywhere"). Cleared by [Store.ClearUser] on the next fresh login.
func (s *Store) BlacklistUser(ctx context.Context, userID string) error {
	return s.write(ctx, userKey(userID), s.refreshTTL)
}

// RevokeUserRefresh invalidates all of a user's refresh tokens.
func (s *Store) RevokeUserRefresh(ctx context.Context, userID string) error {
	return s.write(ctx, userRefreshKey(userID), s.refreshTTL)
}

// ClearUser removes the user-level blacklist entry. Must run before
// minting fresh tokens on login: otherwise a user who logged out and back
// in is immediately rejected by their own stale marker.
func (s *Store) ClearUser(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, userKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// ClearUserRefresh removes the user-level refresh revocation entry.
// Addresses the same key RevokeUserRefresh writes.
func (s *Store) ClearUserRefresh(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, userRefreshKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// IsTokenBlacklisted reports whether the full token was blacklisted.
func (s *Store) IsTokenBlacklisted(ctx context.Context, token string, kind Kind) bool {
	return s.read(ctx, tokenKey(kind, token))
}

// IsJTIBlacklisted reports whether an access token jti was blacklisted.
func (s *Store) IsJTIBlacklisted(ctx context.Context, jti string) bool {
	return s.read(ctx, jtiKey(jti))
}

// IsSessionBlacklisted reports whether the session ID was revoked.
func (s *Store) IsSessionBlacklisted(ctx context.Context, sessionID string) bool {
	return s.read(ctx, sessionKey(sessionID))
}

// IsUserBlacklisted reports whether all of the user's tokens were revoked.
func (s *Store) IsUserBlacklisted(ctx context.Context, userID string) bool {
	return s.read(ctx, userKey(userID))
}

// IsUserRefreshRevoked reports whether the user's refresh tokens were
// revoked.
func (s *Store) IsUserRefreshRevoked(ctx context.Context, userID string) bool {
	return s.read(ctx, userRefreshKey(userID))
}

func (s *Store) write(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: non-positive ttl for %s", ErrWriteFailed, key)
	}
	if err := s.cache.Set(ctx, key, blacklistValue, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) bool {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Print("goAuthKit: blacklist read failed, failing open")
		}
		return false
	}
	return value == blacklistValue
}
