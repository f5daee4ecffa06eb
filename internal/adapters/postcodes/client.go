// Package postcodes implements ports.Geocoder against the postcodes.io API.
package postcodes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/pkg/metrics"
)

const maxBodySize = 1 << 20

// Client implements ports.Geocoder.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a postcodes.io client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Status int `json:"status"`
	Result *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"result"`
	Error string `json:"error"`
}

type reverseRecord struct {
	Postcode      string  `json:"postcode"`
	AdminDistrict *string `json:"admin_district"`
	Region        *string `json:"region"`
}

type reverseResponse struct {
	Status int             `json:"status"`
	Result []reverseRecord `json:"result"`
}

// Resolve looks up the coordinate of a postal code.
func (c *Client) Resolve(ctx context.Context, postalCode string) (coord domain.Coordinate, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("postcodes", start, err) }()

	fail := func(cause error) (domain.Coordinate, error) {
		return domain.Coordinate{}, domain.NewError(domain.KindInvalidLocation,
			fmt.Sprintf("could not resolve postal code %q", postalCode), cause)
	}

	var out lookupResponse
	endpoint := c.baseURL + "/postcodes/" + url.PathEscape(postalCode)
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return fail(err)
	}
	if out.Status != http.StatusOK || out.Result == nil {
		return fail(fmt.Errorf("provider status %d %s", out.Status, out.Error))
	}
	if out.Result.Latitude == nil || out.Result.Longitude == nil {
		return fail(fmt.Errorf("postal code has no coordinates"))
	}

	return domain.Coordinate{Latitude: *out.Result.Latitude, Longitude: *out.Result.Longitude}, nil
}

// ReverseResolve finds the nearest postal code area within radiusMeters.
func (c *Client) ReverseResolve(ctx context.Context, at domain.Coordinate, radiusMeters int) (area domain.Area, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("postcodes_reverse", start, err) }()

	fail := func(cause error) (domain.Area, error) {
		return domain.Area{}, domain.NewError(domain.KindReverseLookupFailed,
			fmt.Sprintf("no area found near %.5f,%.5f", at.Latitude, at.Longitude), cause)
	}

	q := url.Values{}
	q.Set("lon", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("lat", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("limit", "1")

	var out reverseResponse
	if err := c.getJSON(ctx, c.baseURL+"/postcodes?"+q.Encode(), &out); err != nil {
		return fail(err)
	}
	if out.Status != http.StatusOK || len(out.Result) == 0 {
		return fail(fmt.Errorf("provider status %d with %d results", out.Status, len(out.Result)))
	}

	return toArea(out.Result[0]), nil
}

// toArea maps a partial provider record onto a fully populated Area.
func toArea(r reverseRecord) domain.Area {
	area := domain.Area{
		PostalCode: r.Postcode,
		District:   domain.UnknownDistrict,
		Region:     domain.UnknownRegion,
	}
	if r.AdminDistrict != nil && strings.TrimSpace(*r.AdminDistrict) != "" {
		area.District = *r.AdminDistrict
	}
	if r.Region != nil && strings.TrimSpace(*r.Region) != "" {
		area.Region = *r.Region
	}
	return area
}

// getJSON decodes the body regardless of status; postcodes.io reports
// failures in the JSON "status" field as well as the HTTP status.
func (c *Client) getJSON(ctx context.Context, endpoint string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(into); err != nil {
		return fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}
