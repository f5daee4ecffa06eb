// Package planschema checks formatter output against the plan contract:
// exactly three food and three activity options, each with 2-4 highlights,
// a nullable numeric rating and a nullable source URL.
package planschema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

const (
	OptionsPerCategory = 3
	MinHighlights      = 2
	MaxHighlights      = 4
)

const planSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["midpointAreaLabel", "foodOptions", "activityOptions"],
  "properties": {
    "midpointAreaLabel": {"type": "string"},
    "foodOptions": {"type": "array", "minItems": 3, "maxItems": 3, "items": {"$ref": "#/definitions/option"}},
    "activityOptions": {"type": "array", "minItems": 3, "maxItems": 3, "items": {"$ref": "#/definitions/option"}}
  },
  "definitions": {
    "option": {
      "type": "object",
      "required": ["name", "rating", "details", "highlights", "sourceUrl"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "rating": {"type": ["number", "null"]},
        "details": {"type": "string"},
        "highlights": {"type": "array", "minItems": 2, "maxItems": 4, "items": {"type": "string"}},
        "sourceUrl": {"type": ["string", "null"]}
      }
    }
  }
}`

// Policy decides what happens when formatter output breaks the contract.
type Policy string

const (
	PolicyOff      Policy = "off"
	PolicyWarn     Policy = "warn"
	PolicyReject   Policy = "reject"
	PolicyTruncate Policy = "truncate"
)

// ParsePolicy accepts off, warn, reject or truncate. Empty means off.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PolicyOff, nil
	case PolicyOff, PolicyWarn, PolicyReject, PolicyTruncate:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan validation policy %q", s)
	}
}

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func schema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(planSchema))
	})
	return compiled, compileErr
}

// Violations validates a raw plan document and returns every contract breach.
func Violations(raw []byte) ([]string, error) {
	s, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile plan schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate plan: %w", err)
	}
	out := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, e.String())
	}
	return out, nil
}

// PlanViolations validates an already decoded plan.
func PlanViolations(plan domain.Plan) ([]string, error) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	return Violations(raw)
}

// Truncate trims option lists to three entries and highlights to four.
// It cannot fill in missing entries.
func Truncate(plan *domain.Plan) {
	plan.FoodOptions = truncateOptions(plan.FoodOptions)
	plan.ActivityOptions = truncateOptions(plan.ActivityOptions)
}

func truncateOptions(opts []domain.PlanOption) []domain.PlanOption {
	if len(opts) > OptionsPerCategory {
		opts = opts[:OptionsPerCategory]
	}
	for i := range opts {
		if len(opts[i].Highlights) > MaxHighlights {
			opts[i].Highlights = opts[i].Highlights[:MaxHighlights]
		}
	}
	return opts
}
