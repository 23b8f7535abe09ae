// Command test-events posts synthetic chat events at a running instance so
// the scoring pipeline can be exercised without a chat gateway.
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
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default configuration constants.
const (
	defaultNumEvents = 100
	defaultTimeout   = 10 * time.Second
	defaultRunLimit  = 5 * time.Minute
)

var actors = []string{"U1000", "U1001", "U1002", "U1003", "U1004"}

type eventRequest struct {
	EventID string `json:"event_id"`
	Kind    string `json:"kind"`
	Channel string `json:"channel"`
	Actor   string `json:"actor"`
	Text    string `json:"text"`
	TS      string `json:"ts"`
}

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "base URL of the service")
		numEvents = flag.Int("events", defaultNumEvents, "number of events to submit")
		token     = flag.String("token", ":taco:", "reward token to embed in messages")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // synthetic test data
	client := &http.Client{Timeout: *timeout}

	var sent, failed int
	for i := 0; i < *numEvents; i++ {
		ev := randomEvent(rng, *token)
		if err := post(ctx, client, *baseURL+"/events", ev); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "post event %s: %v\n", ev.EventID, err)
			continue
		}
		sent++
	}

	fmt.Printf("submitted %d events (%d failed)\n", sent, failed)
}

// randomEvent builds a plausible scoring message: one or two targets and a
// random number of reward tokens.
func randomEvent(rng *rand.Rand, token string) eventRequest {
	actor := actors[rng.Intn(len(actors))]
	target := actors[rng.Intn(len(actors))]

	var b strings.Builder
	fmt.Fprintf(&b, "nice work <@%s>", target)
	if rng.Intn(4) == 0 {
		fmt.Fprintf(&b, " and <@%s>", actors[rng.Intn(len(actors))])
	}
	for n := rng.Intn(3) + 1; n > 0; n-- {
		b.WriteString(" " + token)
	}

	return eventRequest{
		EventID: uuid.NewString(),
		Kind:    "message",
		Channel: "C-load-test",
		Actor:   actor,
		Text:    b.String(),
		TS:      fmt.Sprintf("%d.%06d", time.Now().Unix(), rng.Intn(1_000_000)),
	}
}

func post(ctx context.Context, client *http.Client, url string, ev eventRequest) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
