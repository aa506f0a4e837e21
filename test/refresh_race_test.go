//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"

	goAuthKit "github.com/MrEthical07/goAuthKit"
	"github.com/MrEthical07/goAuthKit/jwt"
)

// Rotation is marker-based rather than compare-and-swap, so concurrent
// replays of one refresh token may each mint a session before any marker
// lands. The guarantees under contention are weaker but still firm: at
// least one rotation succeeds, every loser gets a revocation error, and
// the consumed token is dead once the dust settles.
func TestRefreshRaceConsumesToken(t *testing.T) {
	ctx := context.Background()
	engine, provider, cleanup := newIntegrationEngine(t)
	defer cleanup()

	seedAccount(t, provider, "u-race", "race@example.com", "race-password")
	login, err := engine.Login(ctx, "race@example.com", "race-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	type attempt struct {
		result *goAuthKit.AuthResult
		err    error
	}
	results := make(chan attempt, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			result, err := engine.Refresh(ctx, login.RefreshToken)
			results <- attempt{result: result, err: err}
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var winners []*goAuthKit.AuthResult
	for a := range results {
		switch {
		case a.err == nil:
			winners = append(winners, a.result)
		case errors.Is(a.err, goAuthKit.ErrTokenRevoked),
			errors.Is(a.err, goAuthKit.ErrSessionRevoked),
			errors.Is(a.err, goAuthKit.ErrRefreshRateLimited):
		default:
			t.Fatalf("unexpected refresh error: %v", a.err)
		}
	}

	if len(winners) == 0 {
		t.Fatal("expected at least one successful rotation")
	}

	// The consumed token must reject every further replay.
	if _, err := engine.Refresh(ctx, login.RefreshToken); err == nil {
		t.Fatal("consumed refresh token rotated again")
	}

	// Winning sessions stay live; only the replayed token's session died.
	for _, w := range winners {
		if _, err := engine.AuthenticateToken(ctx, w.SessionToken, jwt.TypeSession); err != nil {
			t.Fatalf("winner session rejected: %v", err)
		}
		if w.SessionID == login.SessionID {
			t.Fatal("rotation reused the consumed session ID")
		}
	}
}
