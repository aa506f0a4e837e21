package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	minCost = bcrypt.MinCost
	maxCost = bcrypt.MaxCost

	legacyAlgorithmID = "pbkdf2_sha256"
)

// Config defines a public type used by goAuthKit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cost int
}

// Hasher defines a public type used by goAuthKit APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Hasher writes bcrypt hashes and verifies both bcrypt and legacy
// pbkdf2_sha256 hashes, so password rows imported from an older system
// keep working until their owners next log in.
type Hasher struct {
	config Config
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost < minCost || cfg.Cost > maxCost {
		return nil, errors.New("password bcrypt cost out of range")
	}
	return &Hasher{config: cfg}, nil
}

// Hash describes the hash operation and its observable behavior.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Hash(password string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.config.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Verify(password string, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}

	if strings.HasPrefix(encodedHash, legacyAlgorithmID+"$") {
		return verifyLegacy(password, encodedHash)
	}

	return false, errors.New("unsupported password hash format")
}

// NeedsUpgrade describes the needsupgrade operation and its observable behavior.
//
// NeedsUpgrade may return an error when input validation, dependency calls, or security checks fail.
// NeedsUpgrade does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) NeedsUpgrade(encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, legacyAlgorithmID+"$") {
		return true, nil
	}

	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}
	return cost < h.config.Cost, nil
}

// verifyLegacy checks Django-style "pbkdf2_sha256$iterations$salt$digest"
// hashes with a base64 standard-encoded digest.
func verifyLegacy(password string, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 4 || parts[0] != legacyAlgorithmID {
		return false, errors.New("invalid legacy hash format")
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return false, errors.New("invalid legacy iteration count")
	}

	digest, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(digest) == 0 {
		return false, errors.New("invalid legacy digest encoding")
	}

	computed := pbkdf2.Key([]byte(password), []byte(parts[2]), iterations, len(digest), sha256.New)
	return subtle.ConstantTimeCompare(computed, digest) == 1, nil
}
