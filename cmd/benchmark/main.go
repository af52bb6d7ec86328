// Command benchmark is a standalone load generator exercising
// POST /v1/transactions against a running ledger service.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	targetURL   string
	apiKey      string
	concurrency int
	duration    time.Duration
	workload    string
	ledgerID    string
	accountIDs  accountList
)

type accountList []string

func (a *accountList) String() string { return fmt.Sprint([]string(*a)) }
func (a *accountList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

var (
	totalRequests uint64
	success200    uint64 // idempotent replays
	success201    uint64 // freshly created
	failInvariant uint64
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:3000", "API base URL")
	flag.StringVar(&apiKey, "api-key", "", "API key (X-Api-Key header)")
	flag.StringVar(&ledgerID, "ledger-id", "", "ledger id to post against")
	flag.IntVar(&concurrency, "workers", 10, "number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "test duration")
	flag.StringVar(&workload, "workload", "uniform", "workload type: uniform | hotspot")
	flag.Var(&accountIDs, "account", "account id to post against (repeatable, need >= 2)")
}

func main() {
	flag.Parse()
	if apiKey == "" || ledgerID == "" || len(accountIDs) < 2 {
		log.Fatal("-api-key, -ledger-id, and at least two -account flags are required")
	}

	log.Printf("starting benchmark: %s | workers: %d | duration: %s", workload, concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}
	wg.Wait()

	printResults(time.Since(start))
}

type entryPayload struct {
	AccountID   string `json:"account_id"`
	Direction   string `json:"direction"`
	AmountMinor string `json:"amount_minor"`
	Currency    string `json:"currency"`
}

type postPayload struct {
	LedgerID  string         `json:"ledger_id"`
	Reference string         `json:"reference"`
	Currency  string         `json:"currency"`
	Entries   []entryPayload `json:"entries"`
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		from, to := pickAccounts()
		reference := fmt.Sprintf("bench-%s-%s-%d", from, to, time.Now().UnixNano())

		payload := postPayload{
			LedgerID:  ledgerID,
			Reference: reference,
			Currency:  "USD",
			Entries: []entryPayload{
				{AccountID: from, Direction: "DEBIT", AmountMinor: "100", Currency: "USD"},
				{AccountID: to, Direction: "CREDIT", AmountMinor: "100", Currency: "USD"},
			},
		}
		body, _ := json.Marshal(payload)

		req, err := http.NewRequest(http.MethodPost, targetURL+"/v1/transactions", bytes.NewReader(body))
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-Key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case http.StatusCreated:
			atomic.AddUint64(&success201, 1)
		case http.StatusOK:
			atomic.AddUint64(&success200, 1)
		case http.StatusBadRequest:
			atomic.AddUint64(&failInvariant, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func pickAccounts() (string, string) {
	if workload == "hotspot" && len(accountIDs) >= 2 && rand.Float32() < 0.90 {
		if rand.Float32() < 0.5 {
			return accountIDs[0], accountIDs[1]
		}
		return accountIDs[1], accountIDs[0]
	}

	a := rand.Intn(len(accountIDs))
	b := rand.Intn(len(accountIDs))
	for a == b {
		b = rand.Intn(len(accountIDs))
	}
	return accountIDs[a], accountIDs[b]
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	s200 := atomic.LoadUint64(&success200)
	fInv := atomic.LoadUint64(&failInvariant)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":        workload,
		"duration_sec":    d.Seconds(),
		"total_requests":  total,
		"throughput_tps":  tps,
		"success_created": s201,
		"success_replay":  s200,
		"invariant_fails": fInv,
		"errors":          fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, err := os.Create(filename)
	if err != nil {
		return
	}
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
