// Package openai implements ports.PlanFormatter with an OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/core/ports"
	"github.com/samirrijal/meetpoint/internal/pkg/metrics"
	"github.com/samirrijal/meetpoint/internal/pkg/planschema"
)

// Instructions is the fixed system prompt sent with every plan.
const Instructions = `You are a meetup planner. You receive an area and raw web search results for food places and activities in that area, plus optional user preferences.

Return ONLY a JSON object, no prose and no markdown, with exactly this shape:
{
  "midpointAreaLabel": string,
  "foodOptions": [3 items],
  "activityOptions": [3 items]
}
Each item is:
{
  "name": string,
  "rating": number or null,
  "details": string,
  "highlights": [2 to 4 short strings],
  "sourceUrl": string or null
}

Rules:
- Exactly 3 foodOptions and exactly 3 activityOptions.
- Only use places that appear in the provided search results.
- Never invent a rating. Copy a rating only when it appears explicitly in the search results; otherwise use null.
- sourceUrl must be a URL from the search results, or null.
- Use the user preferences to choose and describe options when they are given.`

// Options configures a Formatter.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Policy  planschema.Policy
	Logger  *slog.Logger
}

// Formatter implements ports.PlanFormatter.
type Formatter struct {
	client *goopenai.Client
	opts   Options
	logger *slog.Logger
}

// New creates a Formatter. The client is built even without a key so that
// CheckCredentials can report the problem instead of the constructor.
func New(opts Options) *Formatter {
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	if opts.Policy == "" {
		opts.Policy = planschema.PolicyOff
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Formatter{
		client: goopenai.NewClientWithConfig(cfg),
		opts:   opts,
		logger: logger.With("component", "plan_formatter"),
	}
}

// CheckCredentials fails when no API key was configured.
func (f *Formatter) CheckCredentials() error {
	if strings.TrimSpace(f.opts.APIKey) == "" {
		return domain.NewError(domain.KindConfiguration, "formatter API key is not configured", nil)
	}
	return nil
}

type userPayload struct {
	Area                  domain.Area              `json:"area"`
	Preferences           string                   `json:"preferences"`
	FoodSearchResults     domain.VenueSearchResult `json:"foodSearchResults"`
	ActivitySearchResults domain.VenueSearchResult `json:"activitySearchResults"`
}

// Format asks the model for a plan and parses its JSON reply.
func (f *Formatter) Format(ctx context.Context, in ports.FormatInput) (plan domain.Plan, err error) {
	if err := f.CheckCredentials(); err != nil {
		return domain.Plan{}, err
	}

	payload, err := json.Marshal(userPayload{
		Area:                  in.Area,
		Preferences:           in.Preferences,
		FoodSearchResults:     in.FoodResults,
		ActivitySearchResults: in.ActivityResults,
	})
	if err != nil {
		return domain.Plan{}, failed("encode formatter payload", err)
	}

	start := time.Now()
	resp, err := f.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: f.opts.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: Instructions},
			{Role: goopenai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	metrics.ObserveProvider("openai", start, err)
	if err != nil {
		return domain.Plan{}, failed("formatter request failed", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return domain.Plan{}, failed("formatter returned no content", nil)
	}

	raw := planschema.ExtractObject(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return domain.Plan{}, failed("formatter returned invalid JSON", err)
	}

	if err := f.enforce(&plan); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

// enforce applies the configured schema policy to a parsed plan.
func (f *Formatter) enforce(plan *domain.Plan) error {
	if f.opts.Policy == planschema.PolicyOff {
		return nil
	}
	if f.opts.Policy == planschema.PolicyTruncate {
		planschema.Truncate(plan)
	}

	violations, err := planschema.PlanViolations(*plan)
	if err != nil {
		return failed("plan validation", err)
	}
	if len(violations) == 0 {
		return nil
	}

	metrics.PlanSchemaViolations.Inc()
	if f.opts.Policy == planschema.PolicyWarn {
		f.logger.Warn("plan does not match schema", "violations", violations)
		return nil
	}
	return failed(fmt.Sprintf("plan does not match schema: %s", strings.Join(violations, "; ")), nil)
}

func failed(msg string, cause error) error {
	return domain.NewError(domain.KindFormattingFailed, msg, cause)
}
