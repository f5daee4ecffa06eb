// Package tavily implements ports.VenueSearcher against the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/pkg/metrics"
)

// Every search uses the same depth and result cap.
const (
	DefaultDepth      = "basic"
	DefaultMaxResults = 6

	maxResponseSize = 4 << 20
	maxErrorBody    = 2048
)

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements ports.VenueSearcher.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New creates a Tavily client.
func New(opts Options) *Client {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type searchRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
	Topic       string `json:"topic"`
}

// CheckCredentials fails when no API key was configured.
func (c *Client) CheckCredentials() error {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return domain.NewError(domain.KindConfiguration, "search API key is not configured", nil)
	}
	return nil
}

// Search runs one keyword search and returns the provider payload untouched.
func (c *Client) Search(ctx context.Context, query string) (result domain.VenueSearchResult, err error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("tavily", start, err) }()

	body, err := json.Marshal(searchRequest{
		Query:       query,
		SearchDepth: DefaultDepth,
		MaxResults:  DefaultMaxResults,
		Topic:       "general",
	})
	if err != nil {
		return nil, unavailable("encode search request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, unavailable("build search request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("search request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, unavailable("read search response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, unavailable(fmt.Sprintf("search API returned %d: %s", resp.StatusCode, truncate(raw)), nil)
	}
	if !json.Valid(raw) {
		return nil, unavailable("search API returned invalid JSON", nil)
	}

	return domain.VenueSearchResult(raw), nil
}

func unavailable(msg string, cause error) error {
	return domain.NewError(domain.KindSearchUnavailable, msg, cause)
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= maxErrorBody {
		return s
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
