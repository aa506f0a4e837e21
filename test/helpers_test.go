//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	goAuthKit "github.com/MrEthical07/goAuthKit"
	"github.com/MrEthical07/goAuthKit/permission"
)

// memUserProvider is a map-backed UserProvider for integration runs. It
// only touches the exported surface so it doubles as a consumer check.
type memUserProvider struct {
	mu     sync.Mutex
	users  map[string]goAuthKit.UserRecord
	nextID int
}

func newMemUserProvider() *memUserProvider {
	return &memUserProvider{users: make(map[string]goAuthKit.UserRecord)}
}

func (p *memUserProvider) add(user goAuthKit.UserRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[user.UserID] = user
}

func (p *memUserProvider) GetUserByID(ctx context.Context, userID string) (goAuthKit.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[userID]
	if !ok {
		return goAuthKit.UserRecord{}, goAuthKit.ErrUserNotFound
	}
	return user, nil
}

func (p *memUserProvider) GetUserByIdentifier(ctx context.Context, identifier string) (goAuthKit.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, user := range p.users {
		if user.Email == identifier || user.Phone == identifier {
			return user, nil
		}
	}
	return goAuthKit.UserRecord{}, goAuthKit.ErrUserNotFound
}

func (p *memUserProvider) CreateUser(ctx context.Context, input goAuthKit.CreateUserInput) (goAuthKit.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	user := goAuthKit.UserRecord{
		UserID:        fmt.Sprintf("it-u%d", p.nextID),
		Email:         input.Email,
		Phone:         input.Phone,
		Username:      input.Username,
		PasswordHash:  input.PasswordHash,
		IsActive:      input.IsActive,
		IsVerified:    input.IsVerified,
		EmailVerified: input.EmailVerified,
		PhoneVerified: input.PhoneVerified,
	}
	p.users[user.UserID] = user
	return user, nil
}

func (p *memUserProvider) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[userID]
	if !ok {
		return goAuthKit.ErrUserNotFound
	}
	user.PasswordHash = newHash
	p.users[userID] = user
	return nil
}

func (p *memUserProvider) MarkChannelVerified(ctx context.Context, userID string, channel goAuthKit.Channel) error {
	return nil
}

// memberGroupStore grants every known user the "user" group with a single
// permission. Enough RBAC for the integration flows to exercise Authorize.
type memberGroupStore struct{}

func (memberGroupStore) UserGroups(ctx context.Context, userID string) ([]string, error) {
	return []string{"user"}, nil
}

func (memberGroupStore) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	return []string{"view_reports"}, nil
}

func (memberGroupStore) UserHasPermission(ctx context.Context, userID, codename string) (bool, error) {
	return codename == "view_reports", nil
}

func (memberGroupStore) GroupByCodename(ctx context.Context, codename string) (*permission.Group, error) {
	if codename != "user" {
		return nil, permission.ErrGroupNotFound
	}
	return &permission.Group{Codename: "user", IsActive: true}, nil
}

func (memberGroupStore) ReplaceUserGroups(ctx context.Context, userID string, codenames []string, assignedBy string) error {
	return nil
}

// newEngineWith builds a full engine on top of the given Redis backend.
func newEngineWith(t *testing.T, rdb redis.UniversalClient) (*goAuthKit.Engine, *memUserProvider) {
	t.Helper()

	cfg := goAuthKit.DefaultConfig()
	cfg.JWT.Secret = []byte("integration-secret-integration-secret")
	cfg.Password.BcryptCost = bcrypt.MinCost

	provider := newMemUserProvider()
	engine, err := goAuthKit.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(provider).
		WithGroupStore(memberGroupStore{}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, provider
}

// newIntegrationEngine is the miniredis-backed convenience constructor.
func newIntegrationEngine(t *testing.T) (*goAuthKit.Engine, *memUserProvider, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine, provider := newEngineWith(t, rdb)

	return engine, provider, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func seedAccount(t *testing.T, provider *memUserProvider, userID, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	provider.add(goAuthKit.UserRecord{
		UserID:        userID,
		Email:         email,
		PasswordHash:  string(hash),
		IsActive:      true,
		IsVerified:    true,
		EmailVerified: true,
	})
}
