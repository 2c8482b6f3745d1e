package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 20
	testDuration = 10 * time.Second
	numGames     = 100
	numPlayers   = 4
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
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
	status   int
	latency  time.Duration
	err      bool
}

type gameDoc struct {
	ID         string      `json:"id"`
	LastSaveID int         `json:"lastSaveId"`
	Players    []playerDoc `json:"players"`
	Generation int         `json:"generation"`
}

type playerDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var gameIDs []string

func init() {
	for i := 0; i < numGames; i++ {
		gameIDs = append(gameIDs, fmt.Sprintf("g%012x", i+1))
	}
}

func main() {
	fmt.Println("=== GameStateDaemon Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Games: %d\n\n", numWorkers, testDuration, numGames)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Saving games (POST /game) ---")
	runPhase(testDuration, doSave)

	fmt.Println("\n--- Phase 2: Mixed load (GET /game, /game/version, /participants) ---")
	runPhase(testDuration, doRead)
}

func runPhase(duration time.Duration, op func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	deadline := time.Now().Add(duration)
	done := make(chan struct{})

	for w := 0; w < numWorkers; w++ {
		go func(seed int64) {
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				results <- op(rng)
			}
			done <- struct{}{}
		}(time.Now().UnixNano() + int64(w))
	}

	go func() {
		for i := 0; i < numWorkers; i++ {
			<-done
		}
		close(results)
	}()

	var count, errors int
	var latencies []time.Duration
	for r := range results {
		count++
		if r.err || r.status >= 400 {
			errors++
		}
		latencies = append(latencies, r.latency)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	fmt.Printf("Requests: %d | Errors: %d | RPS: %.0f\n", count, errors, float64(count)/duration.Seconds())
	if len(latencies) > 0 {
		fmt.Printf("p50: %s | p95: %s | p99: %s\n",
			latencies[len(latencies)/2],
			latencies[len(latencies)*95/100],
			latencies[len(latencies)*99/100])
	}
}

func doSave(rng *rand.Rand) result {
	gameID := gameIDs[rng.Intn(len(gameIDs))]
	doc := gameDoc{
		ID:         gameID,
		LastSaveID: rng.Intn(50),
		Generation: rng.Intn(14) + 1,
	}
	for p := 0; p < numPlayers; p++ {
		doc.Players = append(doc.Players, playerDoc{
			ID:   fmt.Sprintf("p%012x", rng.Intn(numGames*numPlayers)+1),
			Name: fmt.Sprintf("player-%d", p),
		})
	}
	body, _ := json.Marshal(doc)

	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/game", "application/json", bytes.NewReader(body))
	if err != nil {
		return result{endpoint: "/game", err: true, latency: time.Since(start)}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint: "/game", status: resp.StatusCode, latency: time.Since(start)}
}

func doRead(rng *rand.Rand) result {
	gameID := gameIDs[rng.Intn(len(gameIDs))]
	var url string
	switch rng.Intn(4) {
	case 0:
		url = baseURL + "/game?id=" + gameID
	case 1:
		url = fmt.Sprintf("%s/game/version?id=%s&save_id=%d", baseURL, gameID, rng.Intn(3))
	case 2:
		url = baseURL + "/game/saves?id=" + gameID
	default:
		url = baseURL + "/participants"
	}

	start := time.Now()
	resp, err := httpClient.Get(url)
	if err != nil {
		return result{endpoint: url, err: true, latency: time.Since(start)}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint: url, status: resp.StatusCode, latency: time.Since(start)}
}
