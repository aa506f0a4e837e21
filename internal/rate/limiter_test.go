package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*miniredis.Miniredis, *Limiter) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, New(client, cfg)
}

func TestLoginLimitPerIdentifier(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		MaxLoginAttempts:      3,
		LoginCooldownDuration: 15 * time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.CheckLogin(ctx, "alice", ""); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if err := l.IncrementLogin(ctx, "alice", ""); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	if err := l.IncrementLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected fourth attempt limited, got %v", err)
	}
	// A different identifier is unaffected.
	if err := l.CheckLogin(ctx, "bob", ""); err != nil {
		t.Fatalf("expected other identifier clean: %v", err)
	}
}

func TestLoginLimitPerIP(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		EnableIPThrottle:      true,
		MaxLoginAttempts:      2,
		LoginCooldownDuration: 15 * time.Minute,
	})
	ctx := context.Background()

	// Different identifiers, same IP: the IP budget still applies.
	if err := l.IncrementLogin(ctx, "alice", "10.0.0.1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := l.IncrementLogin(ctx, "bob", "10.0.0.1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := l.IncrementLogin(ctx, "carol", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ip limited, got %v", err)
	}
}

func TestResetLoginClearsCounter(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		MaxLoginAttempts:      1,
		LoginCooldownDuration: 15 * time.Minute,
	})
	ctx := context.Background()

	if err := l.IncrementLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := l.IncrementLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected limited, got %v", err)
	}

	if err := l.ResetLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := l.IncrementLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("expected counter cleared: %v", err)
	}
}

func TestLoginWindowExpires(t *testing.T) {
	mr, l := newTestLimiter(t, Config{
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	if err := l.IncrementLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := l.IncrementLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected limited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.IncrementLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("expected fresh window: %v", err)
	}
}

func TestRefreshThrottlePerSession(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		EnableRefreshThrottle:   true,
		MaxRefreshAttempts:      2,
		RefreshCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	if err := l.CheckRefresh(ctx, "sid-1"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := l.CheckRefresh(ctx, "sid-1"); err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := l.CheckRefresh(ctx, "sid-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected third limited, got %v", err)
	}
	if err := l.CheckRefresh(ctx, "sid-2"); err != nil {
		t.Fatalf("other session: %v", err)
	}
}

func TestRefreshThrottleDisabled(t *testing.T) {
	_, l := newTestLimiter(t, Config{EnableRefreshThrottle: false})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := l.CheckRefresh(ctx, "sid-1"); err != nil {
			t.Fatalf("expected unlimited refresh when disabled: %v", err)
		}
	}
}

func TestOTPRequestThrottle(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		EnableOTPThrottle:  true,
		MaxOTPRequests:     2,
		OTPRequestCooldown: 15 * time.Minute,
	})
	ctx := context.Background()

	if err := l.CheckOTPRequest(ctx, "alice@example.com"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := l.CheckOTPRequest(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := l.CheckOTPRequest(ctx, "alice@example.com"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected third limited, got %v", err)
	}

	if err := l.ResetOTPRequest(ctx, "alice@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := l.CheckOTPRequest(ctx, "alice@example.com"); err != nil {
		t.Fatalf("expected counter cleared: %v", err)
	}
}

func TestGetLoginAttempts(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		MaxLoginAttempts:      5,
		LoginCooldownDuration: 15 * time.Minute,
	})
	ctx := context.Background()

	// Unknown identifiers report zero, not an error.
	n, err := l.GetLoginAttempts(ctx, "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}

	_ = l.IncrementLogin(ctx, "alice", "")
	_ = l.IncrementLogin(ctx, "alice", "")
	n, err = l.GetLoginAttempts(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	mr, l := newTestLimiter(t, Config{
		MaxLoginAttempts:      5,
		LoginCooldownDuration: 15 * time.Minute,
	})
	ctx := context.Background()

	mr.Close()
	if err := l.IncrementLogin(ctx, "alice", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected redis unavailable, got %v", err)
	}
	if err := l.CheckLogin(ctx, "alice", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected redis unavailable, got %v", err)
	}
}
