// README: Quote endpoint load generator; reports throughput and latency percentiles.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Timeout     time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("VELO_BENCH_BASE_URL", "http://localhost:8080"), "API base URL")
	flag.IntVar(&cfg.Concurrency, "concurrency", envOrDefaultInt("VELO_BENCH_CONCURRENCY", 20), "Concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", envOrDefaultDuration("VELO_BENCH_DURATION", 10*time.Second), "Load duration")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("VELO_BENCH_TIMEOUT", 5*time.Second), "Per-request timeout")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

type quoteReq struct {
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DropoffLat  float64 `json:"dropoff_lat"`
	DropoffLng  float64 `json:"dropoff_lng"`
	ServiceType string  `json:"service_type"`
}

var serviceTypes = []string{"economy", "comfort", "premium", "xl"}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	client := &http.Client{Timeout: cfg.Timeout}

	var mu sync.Mutex
	var latencies []time.Duration
	var errs int

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				lat, err := fireQuote(ctx, client, cfg.BaseURL, rng)
				mu.Lock()
				if err != nil {
					errs++
				} else {
					latencies = append(latencies, lat)
				}
				mu.Unlock()
			}
		}(int64(i) + time.Now().UnixNano())
	}
	wg.Wait()

	report(latencies, errs, cfg.Duration)
}

// fireQuote posts one quote request with a jittered pickup around the city
// center so surge cache hit rates resemble production traffic.
func fireQuote(ctx context.Context, client *http.Client, baseURL string, rng *rand.Rand) (time.Duration, error) {
	jitter := func() float64 { return (rng.Float64() - 0.5) * 0.05 }
	body, _ := json.Marshal(quoteReq{
		PickupLat:   25.0340 + jitter(),
		PickupLng:   121.5645 + jitter(),
		DropoffLat:  25.0478 + jitter(),
		DropoffLng:  121.5170 + jitter(),
		ServiceType: serviceTypes[rng.Intn(len(serviceTypes))],
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/quotes", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}
	return time.Since(start), nil
}

func report(latencies []time.Duration, errs int, duration time.Duration) {
	fmt.Println("\n== Summary ==")
	if len(latencies) == 0 {
		fmt.Printf("no successful requests, %d errors\n", errs)
		os.Exit(1)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	pct := func(p float64) time.Duration {
		idx := int(float64(len(latencies)-1) * p)
		return latencies[idx]
	}
	fmt.Printf("requests=%d errors=%d rps=%.1f\n", len(latencies), errs, float64(len(latencies))/duration.Seconds())
	fmt.Printf("p50=%s p95=%s p99=%s max=%s\n", pct(0.50), pct(0.95), pct(0.99), latencies[len(latencies)-1])
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
