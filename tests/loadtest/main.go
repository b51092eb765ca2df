//go:build go1.22

package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Read-only load against a running `photoaudit serve`. Classification is
// never posted so the session under test is left untouched.

var (
	baseURL    = flag.String("url", "http://127.0.0.1:8090", "review surface address")
	numWorkers = flag.Int("workers", 20, "concurrent clients")
	duration   = flag.Duration("duration", 10*time.Second, "length of each phase")
)

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type visit struct {
	Photos []string `json:"photos"`
}

func main() {
	flag.Parse()

	fmt.Println("=== photoaudit load test ===")
	fmt.Printf("Target: %s | Workers: %d | Phase: %s\n\n", *baseURL, *numWorkers, *duration)

	fmt.Print("Waiting for server... ")
	var photos []string
	for i := 0; ; i++ {
		v, err := currentVisit()
		if err == nil {
			photos = v.Photos
			break
		}
		if i == 29 {
			fmt.Printf("FAILED: %s\n", err)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Printf("OK (%d photos in current visit)\n", len(photos))

	fmt.Println("\n--- Phase 1: cold and warm previews (GET /photo) ---")
	runPhase(func(rng *rand.Rand) result {
		if len(photos) == 0 {
			return get("/visit", "GET /visit")
		}
		return get(photos[rng.IntN(len(photos))], "GET /photo")
	})

	fmt.Println("\n--- Phase 2: mixed polling (session, visit, health, photo) ---")
	runPhase(func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.25:
			return get("/session", "GET /session")
		case r < 0.50:
			return get("/visit", "GET /visit")
		case r < 0.60:
			return get("/health", "GET /health")
		default:
			if len(photos) == 0 {
				return get("/visit", "GET /visit")
			}
			return get(photos[rng.IntN(len(photos))], "GET /photo")
		}
	})
}

func currentVisit() (*visit, error) {
	resp, err := httpClient.Get(*baseURL + "/visit")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /visit: %s", resp.Status)
	}
	var v visit
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func get(path, endpoint string) result {
	start := time.Now()
	resp, err := httpClient.Get(*baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, lat, resp.StatusCode != http.StatusOK}
}

func runPhase(workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		}(rand.Uint64())
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(*duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(all, totalOps.Load())
}

func printResults(all map[string]*stats, totalOps int64) {
	var totalErrors int64

	endpoints := make([]string, 0, len(all))
	for ep := range all {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-16s %8s %6s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 66))

	for _, ep := range endpoints {
		s := all[ep]
		totalErrors += s.errors
		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
		fmt.Printf("  %-16s %8d %6d %10s %10s %10s\n", ep, s.count, s.errors,
			fmtDur(percentile(s.latencies, 0.50)), fmtDur(percentile(s.latencies, 0.95)), fmtDur(percentile(s.latencies, 0.99)))
	}

	fmt.Println("  " + strings.Repeat("-", 66))
	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := min(int(float64(len(d))*p), len(d)-1)
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
