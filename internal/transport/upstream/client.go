// Package upstream fetches raw set payloads over HTTP. It implements
// ingest.Source; one call is one attempt, retry policy lives in the caller.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/usecase/ingest"
)

// Client is an HTTP JSON source client.
type Client struct {
	http *http.Client
}

// NewClient creates a source client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// setPayload is the wire format served by set sources.
type setPayload struct {
	Name    string        `json:"name"`
	Version string        `json:"version"`
	Cards   []cardPayload `json:"cards"`
}

type cardPayload struct {
	Name     string   `json:"name"`
	Text     string   `json:"text"`
	Cost     *int     `json:"cost,omitempty"`
	Attack   *int     `json:"attack,omitempty"`
	Health   *int     `json:"health,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Rarity   string   `json:"rarity,omitempty"`
	Portrait string   `json:"portrait,omitempty"`
}

// Fetch retrieves and decodes one set payload. Transport failures,
// non-2xx responses and undecodable payloads all wrap domain.ErrUnreachable:
// in every such case the source is not serving usable data right now and a
// later attempt may succeed.
func (c *Client) Fetch(ctx context.Context, url string) (ingest.RawSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return ingest.RawSet{}, fmt.Errorf("new request for %q: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ingest.RawSet{}, fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ingest.RawSet{}, fmt.Errorf("%w: %s returned %s", domain.ErrUnreachable, url, resp.Status)
	}

	var payload setPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ingest.RawSet{}, fmt.Errorf("%w: decode payload from %s: %v", domain.ErrUnreachable, url, err)
	}

	version := payload.Version
	if version == "" {
		// Sources without an explicit version still get staleness
		// detection through the HTTP validator.
		version = resp.Header.Get("ETag")
	}

	raw := ingest.RawSet{Name: payload.Name, Version: version}
	raw.Records = make([]ingest.RawRecord, len(payload.Cards))
	for i, cp := range payload.Cards {
		raw.Records[i] = ingest.RawRecord{
			Name:   cp.Name,
			Text:   cp.Text,
			Cost:   cp.Cost,
			Attack: cp.Attack,
			Health: cp.Health,
			Tags:   cp.Tags,
			Rarity: cp.Rarity,
			Image:  cp.Portrait,
		}
	}
	return raw, nil
}
