// Package osrm implements ports.Router against an OSRM routing server.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/pkg/metrics"
)

// MinDrivingMinutes is the floor applied to live driving durations.
const MinDrivingMinutes = 5

// Client implements ports.Router.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an OSRM client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// DrivingMinutes returns the fastest driving duration, rounded to minutes.
func (c *Client) DrivingMinutes(ctx context.Context, from, to domain.Coordinate) (minutes int, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("osrm", start, err) }()

	seconds, err := c.fastestRouteSeconds(ctx, from, to)
	if err != nil {
		return 0, domain.NewError(domain.KindRoutingUnavailable, "routing unavailable", err)
	}
	return max(MinDrivingMinutes, int(math.Round(seconds/60))), nil
}

func (c *Client) fastestRouteSeconds(ctx context.Context, from, to domain.Coordinate) (float64, error) {
	endpoint := fmt.Sprintf("%s/route/v1/driving/%s;%s?overview=false&alternatives=false",
		c.baseURL, lonLat(from), lonLat(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out routeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode route (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || (out.Code != "" && out.Code != "Ok") {
		return 0, fmt.Errorf("routing returned %d %s %s", resp.StatusCode, out.Code, out.Message)
	}
	if len(out.Routes) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	best := out.Routes[0].Duration
	for _, r := range out.Routes[1:] {
		best = math.Min(best, r.Duration)
	}
	return best, nil
}

// lonLat formats a coordinate in OSRM's lon,lat order.
func lonLat(p domain.Coordinate) string {
	return strconv.FormatFloat(p.Longitude, 'f', 6, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', 6, 64)
}
