package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/meetpoint/internal/adapters/http"
	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/core/ports"
	"github.com/samirrijal/meetpoint/internal/core/usecases"
)

// ---- Mock providers ----

type mockGeocoder struct {
	resolveFn func(ctx context.Context, postalCode string) (domain.Coordinate, error)
	reverseFn func(ctx context.Context, at domain.Coordinate, radius int) (domain.Area, error)
}

func (m *mockGeocoder) Resolve(ctx context.Context, postalCode string) (domain.Coordinate, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, postalCode)
	}
	if postalCode == "B" {
		return domain.Coordinate{Latitude: 0, Longitude: 2}, nil
	}
	return domain.Coordinate{}, nil
}

func (m *mockGeocoder) ReverseResolve(ctx context.Context, at domain.Coordinate, radius int) (domain.Area, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, at, radius)
	}
	return domain.Area{PostalCode: "E1 6AN", District: "Tower Hamlets", Region: "London"}, nil
}

type mockRouter struct{}

func (mockRouter) DrivingMinutes(context.Context, domain.Coordinate, domain.Coordinate) (int, error) {
	return 25, nil
}

type mockSearcher struct{ credErr error }

func (m mockSearcher) CheckCredentials() error { return m.credErr }

func (mockSearcher) Search(context.Context, string) (domain.VenueSearchResult, error) {
	return domain.VenueSearchResult(`{"results":[]}`), nil
}

type mockFormatter struct{}

func (mockFormatter) CheckCredentials() error { return nil }

func (mockFormatter) Format(_ context.Context, in ports.FormatInput) (domain.Plan, error) {
	rating := 4.5
	opt := domain.PlanOption{Name: "Dishoom", Rating: &rating, Details: "Bombay cafe", Highlights: []string{"Halal", "Busy"}}
	return domain.Plan{
		MidpointAreaLabel: in.Area.Label(),
		FoodOptions:       []domain.PlanOption{opt, opt, opt},
		ActivityOptions:   []domain.PlanOption{opt, opt, opt},
	}, nil
}

// ---- Helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type serviceOpts struct {
	geocoder *mockGeocoder
	searcher mockSearcher
}

func makeDeps(opts ...func(*serviceOpts)) *handler.Dependencies {
	so := &serviceOpts{geocoder: &mockGeocoder{}}
	for _, o := range opts {
		o(so)
	}
	return &handler.Dependencies{
		Meetups:   usecases.NewMeetupService(so.geocoder, mockRouter{}, so.searcher, mockFormatter{}, nil),
		RateLimit: 100,
	}
}

func newPost(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body io.Reader) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(readBody(t, body), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

// ---- Meetup handler tests ----

func TestMeetup_Success(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":" a ","postalCode2":"b","preferences":"vegan"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected Cache-Control no-store, got %q", cc)
	}

	var plan domain.PlanResponse
	if err := json.Unmarshal(readBody(t, resp.Body), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !plan.OK {
		t.Error("expected ok=true")
	}
	if plan.Inputs.PostalCode1 != "A" || plan.Inputs.PostalCode2 != "B" {
		t.Errorf("expected normalized inputs, got %+v", plan.Inputs)
	}
	if plan.Midpoint.Longitude != 1 {
		t.Errorf("expected midpoint longitude 1, got %f", plan.Midpoint.Longitude)
	}
	if plan.Result.MidpointAreaLabel != "Tower Hamlets" {
		t.Errorf("expected Tower Hamlets, got %s", plan.Result.MidpointAreaLabel)
	}
	if len(plan.Result.FoodOptions) != 3 || len(plan.Result.ActivityOptions) != 3 {
		t.Errorf("expected 3+3 options")
	}
	if plan.Travel.RecommendedModePerson1 == nil {
		t.Error("expected a recommended mode")
	}
}

func TestMeetup_ResponseShape(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"A","postalCode2":"B"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(readBody(t, resp.Body), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"ok", "inputs", "midpoint", "area", "distancesKm", "travel", "result"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	var travel map[string]json.RawMessage
	_ = json.Unmarshal(raw["travel"], &travel)
	for _, key := range []string{"fromPerson1", "fromPerson2", "recommendedModePerson1", "recommendedModePerson2"} {
		if _, ok := travel[key]; !ok {
			t.Errorf("missing travel key %q", key)
		}
	}
}

func TestMeetup_MissingPostalCode(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"A"}`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	apiErr := decodeError(t, resp.Body)
	if apiErr.Code != "missing_input" {
		t.Errorf("expected missing_input, got %s", apiErr.Code)
	}
	if apiErr.Error == "" {
		t.Error("expected an error message")
	}
	if apiErr.RequestID == "" {
		t.Error("expected a request id")
	}
}

func TestMeetup_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request, got %s", apiErr.Code)
	}
}

func TestMeetup_ReverseLookupFails(t *testing.T) {
	deps := makeDeps(func(o *serviceOpts) {
		o.geocoder.reverseFn = func(context.Context, domain.Coordinate, int) (domain.Area, error) {
			return domain.Area{}, domain.NewError(domain.KindReverseLookupFailed, "no area found near the midpoint", nil)
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"A","postalCode2":"B"}`), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	body := readBody(t, resp.Body)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["result"]; ok {
		t.Error("failure response must not carry a result")
	}
	var code string
	_ = json.Unmarshal(raw["code"], &code)
	if code != "reverse_lookup_failed" {
		t.Errorf("expected reverse_lookup_failed, got %s", code)
	}
}

func TestMeetup_InvalidLocation(t *testing.T) {
	deps := makeDeps(func(o *serviceOpts) {
		o.geocoder.resolveFn = func(_ context.Context, code string) (domain.Coordinate, error) {
			return domain.Coordinate{}, domain.NewError(domain.KindInvalidLocation, "postal code "+code+" not found", nil)
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"ZZ1","postalCode2":"ZZ2"}`), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "invalid_location" {
		t.Errorf("expected invalid_location, got %s", apiErr.Code)
	}
}

func TestMeetup_MissingCredential(t *testing.T) {
	deps := makeDeps(func(o *serviceOpts) {
		o.searcher.credErr = domain.NewError(domain.KindConfiguration, "search API key is not configured", nil)
	})
	app := setupApp(deps)

	resp, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"A","postalCode2":"B"}`), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "configuration_error" {
		t.Errorf("expected configuration_error, got %s", apiErr.Code)
	}
}

func TestMeetup_RateLimited(t *testing.T) {
	deps := makeDeps()
	deps.RateLimit = 1
	app := setupApp(deps)

	first, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"A","postalCode2":"B"}`), -1)
	if first.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", first.StatusCode)
	}

	second, _ := app.Test(newPost("/v1/meetups", `{"postalCode1":"A","postalCode2":"B"}`), -1)
	if second.StatusCode != 429 {
		t.Fatalf("expected 429, got %d", second.StatusCode)
	}
	if apiErr := decodeError(t, second.Body); apiErr.Code != "rate_limited" {
		t.Errorf("expected rate_limited, got %s", apiErr.Code)
	}
}

// ---- GraphQL tests ----

func TestGraphQL_MeetupPlan(t *testing.T) {
	app := setupApp(makeDeps())

	query := `{"query":"{ meetupPlan(postalCode1: \"A\", postalCode2: \"B\") { ok inputs { postalCode2 } midpoint { longitude } area { district } travel { recommendedModePerson1 fromPerson1 { mode durationMinutes } } result { foodOptions { name rating } } } }"}`
	resp, _ := app.Test(newPost("/graphql", query), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Data struct {
			MeetupPlan struct {
				OK     bool `json:"ok"`
				Inputs struct {
					PostalCode2 string `json:"postalCode2"`
				} `json:"inputs"`
				Midpoint struct {
					Longitude float64 `json:"longitude"`
				} `json:"midpoint"`
				Area struct {
					District string `json:"district"`
				} `json:"area"`
				Travel struct {
					RecommendedModePerson1 string `json:"recommendedModePerson1"`
					FromPerson1            []struct {
						Mode            string `json:"mode"`
						DurationMinutes int    `json:"durationMinutes"`
					} `json:"fromPerson1"`
				} `json:"travel"`
				Result struct {
					FoodOptions []struct {
						Name   string   `json:"name"`
						Rating *float64 `json:"rating"`
					} `json:"foodOptions"`
				} `json:"result"`
			} `json:"meetupPlan"`
		} `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Errors) != 0 {
		t.Fatalf("unexpected errors: %s", out.Errors)
	}

	mp := out.Data.MeetupPlan
	if !mp.OK || mp.Inputs.PostalCode2 != "B" || mp.Midpoint.Longitude != 1 {
		t.Errorf("unexpected plan %+v", mp)
	}
	if mp.Area.District != "Tower Hamlets" {
		t.Errorf("expected Tower Hamlets, got %s", mp.Area.District)
	}
	if len(mp.Travel.FromPerson1) != 3 {
		t.Fatalf("expected 3 travel options, got %d", len(mp.Travel.FromPerson1))
	}
	if mp.Travel.RecommendedModePerson1 != mp.Travel.FromPerson1[0].Mode {
		t.Errorf("recommended %q is not the fastest %q", mp.Travel.RecommendedModePerson1, mp.Travel.FromPerson1[0].Mode)
	}
	if len(mp.Result.FoodOptions) != 3 || mp.Result.FoodOptions[0].Rating == nil {
		t.Errorf("unexpected food options %+v", mp.Result.FoodOptions)
	}
}

func TestGraphQL_ErrorCode(t *testing.T) {
	app := setupApp(makeDeps())

	query := `{"query":"{ meetupPlan(postalCode1: \"A\", postalCode2: \" \") { ok } }"}`
	resp, _ := app.Test(newPost("/graphql", query), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Errors []struct {
			Message    string `json:"message"`
			Extensions struct {
				Code string `json:"code"`
			} `json:"extensions"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(out.Errors))
	}
	if out.Errors[0].Extensions.Code != "missing_input" {
		t.Errorf("expected missing_input, got %q", out.Errors[0].Extensions.Code)
	}
}

// ---- Health & infrastructure tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	_ = json.Unmarshal(readBody(t, resp.Body), &body)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %s", body["status"])
	}
}

func TestReady(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	_ = json.Unmarshal(readBody(t, resp.Body), &body)
	if body.Checks["limiter"] != "memory" || body.Checks["nats"] != "not configured" {
		t.Errorf("unexpected checks %v", body.Checks)
	}
}

func TestReady_NoPlanner(t *testing.T) {
	app := setupApp(&handler.Dependencies{})

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(makeDeps())

	_, _ = app.Test(newPost("/v1/meetups", `{"postalCode1":"A","postalCode2":"B"}`), -1)

	resp, _ := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "meetpoint_plan_requests_total") {
		t.Error("expected meetpoint_plan_requests_total in metrics output")
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestDocs(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = findOpenAPISpec(t)
	t.Cleanup(func() { handler.OpenAPIPath = prev })
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	page := string(readBody(t, resp.Body))
	if !strings.Contains(page, "swagger-ui") {
		t.Error("expected swagger ui page")
	}
	if !strings.Contains(page, "<title>Meetpoint API 1.0.0 - Swagger UI</title>") {
		t.Error("expected the document title and version in the page title")
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "/v1/meetups") {
		t.Error("expected the OpenAPI document")
	}
}

func TestDocs_DocumentUnavailable(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(invalid, []byte("openapi: 3.0.3\ninfo: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for name, path := range map[string]string{
		"missing": filepath.Join(t.TempDir(), "nope.yaml"),
		"invalid": invalid,
	} {
		t.Run(name, func(t *testing.T) {
			prev := handler.OpenAPIPath
			handler.OpenAPIPath = path
			t.Cleanup(func() { handler.OpenAPIPath = prev })
			app := setupApp(makeDeps())

			resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
			if resp.StatusCode != 404 {
				t.Fatalf("expected 404, got %d", resp.StatusCode)
			}
			if got := decodeError(t, resp.Body).Code; got != "docs_unavailable" {
				t.Errorf("code = %q, want docs_unavailable", got)
			}

			resp, _ = app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
			if resp.StatusCode != 200 {
				t.Errorf("swagger page should still be served, got %d", resp.StatusCode)
			}
		})
	}
}
