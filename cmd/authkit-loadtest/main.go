// Command authkit-loadtest seeds an in-process engine with a population of
// authenticated sessions and measures token validation and refresh rotation
// throughput. With no -redis-addr it runs fully self-contained on miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goAuthKit "github.com/MrEthical07/goAuthKit"
	"github.com/MrEthical07/goAuthKit/permission"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type sessionState struct {
	refresh string
	session string
	mu      sync.Mutex
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (validate + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := goAuthKit.DefaultConfig()
	cfg.JWT.Secret = []byte("loadtest-secret-loadtest-secret!")
	cfg.Security.EnableRefreshThrottle = false
	cfg.Security.EnforceOriginCheck = false
	// Seed logins go through LoginWithOTP with the master code so the seed
	// path exercises the same code as production logins.
	cfg.OTP.MasterOTP = "424242"
	cfg.OTP.EnableIdentifierThrottle = false

	engine, err := goAuthKit.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(&loadUserProvider{}).
		WithGroupStore(&loadGroupStore{}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]sessionState, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		result, err := engine.LoginWithOTP(ctx, fmt.Sprintf("user-%d@example.com", i), cfg.OTP.MasterOTP)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed login failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = sessionState{refresh: result.RefreshToken, session: result.SessionToken}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runValidatePhase(ctx, engine, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("refresh", refreshStats)
}

func runValidatePhase(ctx context.Context, engine *goAuthKit.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				_, err := engine.AuthenticateToken(ctx, states[idx].session)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *goAuthKit.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				result, err := engine.Refresh(ctx, state.refresh)
				d := time.Since(t0)
				if err == nil {
					state.refresh = result.RefreshToken
					state.session = result.SessionToken
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// loadUserProvider accepts any identifier and returns a synthetic active user.
type loadUserProvider struct{}

func (loadUserProvider) GetUserByID(_ context.Context, userID string) (goAuthKit.UserRecord, error) {
	return syntheticUser(userID, userID+"@example.com"), nil
}

func (loadUserProvider) GetUserByIdentifier(_ context.Context, identifier string) (goAuthKit.UserRecord, error) {
	return syntheticUser(identifier, identifier), nil
}

func (loadUserProvider) CreateUser(_ context.Context, input goAuthKit.CreateUserInput) (goAuthKit.UserRecord, error) {
	return syntheticUser(input.Email, input.Email), nil
}

func (loadUserProvider) UpdatePasswordHash(context.Context, string, string) error { return nil }

func (loadUserProvider) MarkChannelVerified(context.Context, string, goAuthKit.Channel) error {
	return nil
}

func syntheticUser(id, email string) goAuthKit.UserRecord {
	return goAuthKit.UserRecord{
		UserID:        id,
		Email:         email,
		Username:      id,
		IsActive:      true,
		IsVerified:    true,
		EmailVerified: true,
	}
}

// loadGroupStore grants every user one group with one permission.
type loadGroupStore struct{}

func (loadGroupStore) UserGroups(context.Context, string) ([]string, error) {
	return []string{"user"}, nil
}

func (loadGroupStore) UserPermissions(context.Context, string) ([]string, error) {
	return []string{"view_reports"}, nil
}

func (loadGroupStore) UserHasPermission(_ context.Context, _ string, codename string) (bool, error) {
	return codename == "view_reports", nil
}

func (loadGroupStore) GroupByCodename(_ context.Context, codename string) (*permission.Group, error) {
	if codename != "user" {
		return nil, permission.ErrGroupNotFound
	}
	return &permission.Group{Codename: "user", Name: "User", IsActive: true}, nil
}

func (loadGroupStore) ReplaceUserGroups(context.Context, string, []string, string) error {
	return nil
}
