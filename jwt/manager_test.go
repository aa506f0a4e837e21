package jwt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()
	cfg := Config{
		AccessTTL:     time.Hour,
		SessionTTL:    7 * 24 * time.Hour,
		RefreshTTL:    30 * 24 * time.Hour,
		SigningMethod: MethodHS256,
		Secret:        []byte("test-secret-test-secret-test-secret"),
		Issuer:        "authkit-test",
		Audience:      "authenticated",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestMintTripleSharesSessionIDAndSubject(t *testing.T) {
	m := newTestManager(t, nil)

	profile := json.RawMessage(`{"user_id":"u1","email":"u1@example.com"}`)
	triple, err := m.MintTriple("u1", profile, []string{"view_reports"}, "https://app.example.com")
	if err != nil {
		t.Fatalf("mint triple: %v", err)
	}
	if triple.SessionID == "" {
		t.Fatal("expected non-empty session id")
	}

	access, err := m.Parse(triple.Access, TypeAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	refresh, err := m.Parse(triple.Refresh, TypeRefresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	session, err := m.Parse(triple.Session, TypeSession)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}

	for _, claims := range []*Claims{access, refresh, session} {
		if claims.SessionID != triple.SessionID {
			t.Fatalf("session id mismatch: %q vs %q", claims.SessionID, triple.SessionID)
		}
		if claims.Subject != "u1" {
			t.Fatalf("subject mismatch: %q", claims.Subject)
		}
		if claims.Origin != "https://app.example.com" {
			t.Fatalf("origin mismatch: %q", claims.Origin)
		}
	}

	if len(access.UserProfile) != 0 || len(access.Permissions) != 0 {
		t.Fatal("access token must not carry profile or permissions")
	}
	if len(refresh.UserProfile) != 0 || len(refresh.Permissions) != 0 {
		t.Fatal("refresh token must not carry profile or permissions")
	}
	if string(session.UserProfile) != string(profile) {
		t.Fatalf("session profile mismatch: %s", session.UserProfile)
	}
	if len(session.Permissions) != 1 || session.Permissions[0] != "view_reports" {
		t.Fatalf("session permissions mismatch: %v", session.Permissions)
	}
}

func TestMintExpiryMinuteGranularity(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.Mint(TypeAccess, "u1", "s1", "", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := m.Parse(tok, TypeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	iat := claims.IssuedAt.Time
	exp := claims.ExpiresAt.Time
	if iat.Second() != 0 || iat.Nanosecond() != 0 {
		t.Fatalf("issued-at not truncated to minute: %v", iat)
	}
	if got := exp.Sub(iat); got != time.Hour {
		t.Fatalf("lifetime mismatch: got %v want %v", got, time.Hour)
	}
}

func TestParseRejectsTypeMismatch(t *testing.T) {
	m := newTestManager(t, nil)

	triple, err := m.MintTriple("u1", nil, nil, "")
	if err != nil {
		t.Fatalf("mint triple: %v", err)
	}

	if _, err := m.Parse(triple.Refresh, TypeAccess); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if _, err := m.Parse(triple.Access, TypeRefresh, TypeSession); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if _, err := m.Parse(triple.Access, TypeAccess, TypeSession); err != nil {
		t.Fatalf("expected access in allowed set to pass: %v", err)
	}
	if _, err := m.Parse(triple.Access); err != nil {
		t.Fatalf("expected no expected types to pass: %v", err)
	}
}

func TestParseAcceptsTokenWithoutAudience(t *testing.T) {
	// Tokens minted before the audience claim was introduced must still
	// verify against a manager configured with one.
	legacy := newTestManager(t, func(c *Config) { c.Audience = "" })
	current := newTestManager(t, nil)

	tok, err := legacy.Mint(TypeAccess, "u1", "s1", "", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := current.Parse(tok, TypeAccess); err != nil {
		t.Fatalf("expected audience fallback to accept token: %v", err)
	}
}

func TestParseRejectsWrongAudience(t *testing.T) {
	other := newTestManager(t, func(c *Config) { c.Audience = "service" })
	current := newTestManager(t, nil)

	tok, err := other.Mint(TypeAccess, "u1", "s1", "", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := current.Parse(tok, TypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected wrong audience to be rejected, got %v", err)
	}
}

func TestParseExpiredToken(t *testing.T) {
	m := newTestManager(t, nil)

	claims := Claims{
		Type:      string(TypeAccess),
		SessionID: "s1",
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "authkit-test",
			Audience:  gjwt.ClaimStrings{"authenticated"},
			IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret-test-secret-test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Parse(signed, TypeAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}

	ignored, err := m.ParseIgnoreExpiry(signed)
	if err != nil {
		t.Fatalf("expected ignore-expiry parse to succeed: %v", err)
	}
	if ignored.SessionID != "s1" {
		t.Fatalf("claims lost on ignore-expiry parse: %+v", ignored)
	}
}

func TestParseUnverifiedDecodesWithoutSignatureCheck(t *testing.T) {
	m := newTestManager(t, nil)
	other := newTestManager(t, func(c *Config) { c.Secret = []byte("different-secret-different-secret") })

	tok, err := other.Mint(TypeAccess, "u1", "s1", "", nil, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := m.Parse(tok, TypeAccess); err == nil {
		t.Fatal("expected bad signature to be rejected by Parse")
	}
	claims, err := m.ParseUnverified(tok)
	if err != nil {
		t.Fatalf("expected unverified decode to succeed: %v", err)
	}
	if claims.Subject != "u1" || claims.SessionID != "s1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestMintTripleUniqueJTIPerToken(t *testing.T) {
	m := newTestManager(t, nil)

	triple, err := m.MintTriple("u1", nil, nil, "")
	if err != nil {
		t.Fatalf("mint triple: %v", err)
	}

	seen := map[string]bool{}
	for _, raw := range []string{triple.Access, triple.Refresh, triple.Session} {
		claims, err := m.Parse(raw)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims.ID == "" {
			t.Fatal("expected non-empty jti")
		}
		if seen[claims.ID] {
			t.Fatalf("duplicate jti %q", claims.ID)
		}
		seen[claims.ID] = true
	}
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.RefreshTTL = 0 }},
		{"hs256 without secret", func(c *Config) { c.Secret = nil }},
		{"unknown method", func(c *Config) { c.SigningMethod = "rs256" }},
		{"excessive leeway", func(c *Config) { c.Leeway = 5 * time.Minute }},
		{"ed25519 without keys", func(c *Config) { c.SigningMethod = MethodEd25519 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{
				AccessTTL:     time.Hour,
				SessionTTL:    7 * 24 * time.Hour,
				RefreshTTL:    30 * 24 * time.Hour,
				SigningMethod: MethodHS256,
				Secret:        []byte("test-secret-test-secret-test-secret"),
			}
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config rejection")
			}
		})
	}
}
