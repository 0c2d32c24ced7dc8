// Command gosession-loadtest drives many Redis-backed session stores concurrently
// against an in-process identity backend and reports per-phase latency.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type client struct {
	mu    sync.Mutex
	store *goSession.Store
	key   string
	token identity.StaticToken
}

func main() {
	var (
		users       = flag.Int("users", 64, "number of accounts and stores")
		concurrency = flag.Int("concurrency", 32, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gs", "snapshot key prefix")
		showMetrics = flag.Bool("metrics", false, "print the Prometheus exposition after the run")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	rdb, cleanup, err := openRedis(*redisAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	backend, clients, err := seed(*users)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	metrics := goSession.NewMetrics(goSession.MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	cfg := goSession.DefaultConfig()
	cfg.Identity.BaseURL = backend.URL

	build := func(c *client) (*goSession.Store, error) {
		return goSession.New().
			WithConfig(cfg).
			WithStorage(storage.NewRedis(rdb, fmt.Sprintf("%s:%s:", *prefix, c.key))).
			WithTokenSource(c.token).
			WithMetrics(metrics).
			Build(ctx)
	}
	for _, c := range clients {
		if c.store, err = build(c); err != nil {
			fmt.Fprintf(os.Stderr, "build store: %v\n", err)
			os.Exit(1)
		}
	}

	fetchStats := runPhase(clients, *ops, *concurrency, 7919, func(_ *rand.Rand, c *client) error {
		if !c.store.FetchUser(ctx).IsLoggedIn {
			return errNotLoggedIn
		}
		return nil
	})
	mutateStats := runPhase(clients, *ops, *concurrency, 6151, func(r *rand.Rand, c *client) error {
		u := c.store.User()
		if u == nil {
			return errNotLoggedIn
		}
		u.Bio = fmt.Sprintf("bio-%d", r.Int())
		c.store.SetUser(ctx, u)
		return nil
	})
	rehydrateStats := runPhase(clients, *ops, *concurrency, 3571, func(_ *rand.Rand, c *client) error {
		want := c.store.State()
		c.store.Close()
		s, err := build(c)
		if err != nil {
			return err
		}
		c.store = s
		if got := s.State(); got.IsLoggedIn != want.IsLoggedIn || (got.User == nil) != (want.User == nil) {
			return errDiverged
		}
		return nil
	})

	for _, c := range clients {
		c.store.Close()
	}

	fmt.Println("---- results ----")
	printStats("fetch", fetchStats)
	printStats("set_user", mutateStats)
	printStats("rehydrate", rehydrateStats)

	if *showMetrics {
		fmt.Print(prometheus.NewPrometheusExporterFromMetrics(metrics).Render())
	}
}

var (
	errNotLoggedIn = fmt.Errorf("store not logged in")
	errDiverged    = fmt.Errorf("rehydrated state differs from memory")
)

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// seed starts the identity backend and logs every account in once.
func seed(users int) (*httptest.Server, []*client, error) {
	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("gosession-loadtest-secret-0123456789"),
	})
	if err != nil {
		return nil, nil, err
	}
	hasher, err := password.NewArgon2(password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		return nil, nil, err
	}

	srv := identity.NewServer(tokens, hasher, nil)
	backend := httptest.NewServer(srv.Handler())
	login, err := identity.NewHTTPClient(identity.HTTPConfig{BaseURL: backend.URL}, nil, backend.Client())
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	fmt.Printf("seeding %d accounts...\n", users)
	start := time.Now()
	clients := make([]*client, users)
	for i := range clients {
		email := fmt.Sprintf("user%d@example.com", i)
		u, err := srv.Register(identity.User{Name: fmt.Sprintf("User %d", i), Email: email}, "loadtest-password")
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		token, err := login.Login(context.Background(), email, "loadtest-password")
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		clients[i] = &client{key: u.ID, token: identity.StaticToken(token)}
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return backend, clients, nil
}

// runPhase spreads ops over the clients; a client is used by one worker at a time.
func runPhase(clients []*client, ops, concurrency int, seed int64, op func(*rand.Rand, *client) error) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				c := clients[r.Intn(len(clients))]

				c.mu.Lock()
				t0 := time.Now()
				err := op(r, c)
				d := time.Since(t0)
				c.mu.Unlock()

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
	return computeStats(time.Since(start), latencies, failures)
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
	switch {
	case len(samples) == 0:
		return 0
	case p <= 0:
		return samples[0]
	case p >= 100:
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
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
