package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthKit/cache"
)

// ErrInvalid is an exported constant or variable used by the authentication engine.
var ErrInvalid = errors.New("invalid or expired otp")

// ErrUnavailable is an exported constant or variable used by the authentication engine.
var ErrUnavailable = errors.New("otp store unavailable")

// Store issues and verifies short-lived numeric one-time passwords keyed
// by identifier. At most one code is live per identifier: issuing a new
// code overwrites the previous one.
//
// Store instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Store struct {
	cache  cache.Store
	ttl    time.Duration
	digits int
	master string
}

// NewStore creates an OTP [Store]. An empty master disables the master
// code entirely; a non-empty master matches any identifier without
// touching the cache.
func NewStore(c cache.Store, ttl time.Duration, digits int, master string) *Store {
	return &Store{
		cache:  c,
		ttl:    ttl,
		digits: digits,
		master: master,
	}
}

func otpKey(identifier string) string {
	return "otp:" + identifier
}

// Generate produces a new random code of the configured length using
// crypto/rand, one uniformly distributed digit at a time.
func (s *Store) Generate() (string, error) {
	var b strings.Builder
	b.Grow(s.digits)

	max := big.NewInt(10)
	for i := 0; i < s.digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// Issue generates a fresh code, stores it under the identifier with the
// configured TTL, and returns it for delivery.
func (s *Store) Issue(ctx context.Context, identifier string) (string, error) {
	code, err := s.Generate()
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, otpKey(identifier), code, s.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return code, nil
}

// Verify checks a submitted code against the stored one. The master code,
// when configured, matches first and never consumes the stored code.
//
// deleteAfterVerify controls whether a successful match consumes the
// code. Pre-checks (for example validating a signup code before writing
// the user row) pass false so the same code can be consumed once the
// operation commits; final verifications pass true.
func (s *Store) Verify(ctx context.Context, identifier, code string, deleteAfterVerify bool) error {
	if s.IsMaster(code) {
		return nil
	}

	stored, err := s.cache.Get(ctx, otpKey(identifier))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrInvalid
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalid
	}

	if deleteAfterVerify {
		return s.Consume(ctx, identifier)
	}
	return nil
}

// Consume removes any stored code for the identifier.
func (s *Store) Consume(ctx context.Context, identifier string) error {
	if err := s.cache.Delete(ctx, otpKey(identifier)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsMaster reports whether the code equals the configured master OTP.
// Always false when no master is configured.
func (s *Store) IsMaster(code string) bool {
	if s.master == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.master), []byte(code)) == 1
}
