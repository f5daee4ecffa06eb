package domain

import "encoding/json"

// TravelMode enumerates the ways a person can reach the midpoint.
type TravelMode string

const (
	ModeCar   TravelMode = "car"
	ModeTrain TravelMode = "train"
	ModeBus   TravelMode = "bus"
)

// TravelOption is one estimated way of getting to the midpoint.
type TravelOption struct {
	Mode            TravelMode `json:"mode"`
	DurationMinutes int        `json:"durationMinutes"`
	Notes           string     `json:"notes"`
}

// VenueSearchResult is the raw payload of a venue search, passed through untouched.
type VenueSearchResult json.RawMessage

// MarshalJSON emits the raw payload, or null when empty.
func (r VenueSearchResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// PlanOption is a single food or activity suggestion.
type PlanOption struct {
	Name       string   `json:"name"`
	Rating     *float64 `json:"rating"`
	Details    string   `json:"details"`
	Highlights []string `json:"highlights"`
	SourceURL  *string  `json:"sourceUrl"`
}

// Plan is the curated set of suggestions for the midpoint area.
type Plan struct {
	MidpointAreaLabel string       `json:"midpointAreaLabel"`
	FoodOptions       []PlanOption `json:"foodOptions"`
	ActivityOptions   []PlanOption `json:"activityOptions"`
}

// PlanRequest is what a caller submits.
type PlanRequest struct {
	PostalCode1 string `json:"postalCode1"`
	PostalCode2 string `json:"postalCode2"`
	Preferences string `json:"preferences,omitempty"`
}

// PlanInputs echoes the normalized postal codes.
type PlanInputs struct {
	PostalCode1 string `json:"postalCode1"`
	PostalCode2 string `json:"postalCode2"`
}

// Distances holds each person's straight-line distance to the midpoint.
type Distances struct {
	Person1 float64 `json:"person1"`
	Person2 float64 `json:"person2"`
}

// TravelSummary holds both people's travel options.
type TravelSummary struct {
	FromPerson1            []TravelOption `json:"fromPerson1"`
	FromPerson2            []TravelOption `json:"fromPerson2"`
	RecommendedModePerson1 *TravelMode    `json:"recommendedModePerson1"`
	RecommendedModePerson2 *TravelMode    `json:"recommendedModePerson2"`
}

// PlanResponse is the full result of a successful planning run.
type PlanResponse struct {
	OK          bool          `json:"ok"`
	ID          string        `json:"id"`
	Inputs      PlanInputs    `json:"inputs"`
	Midpoint    Coordinate    `json:"midpoint"`
	Area        Area          `json:"area"`
	DistancesKm Distances     `json:"distancesKm"`
	Travel      TravelSummary `json:"travel"`
	Result      Plan          `json:"result"`
}

// RecommendedMode returns the first (fastest) mode of a sorted option list.
func RecommendedMode(options []TravelOption) *TravelMode {
	if len(options) == 0 {
		return nil
	}
	m := options[0].Mode
	return &m
}

// PlanComputedEvent announces a completed plan. It carries no plan content.
type PlanComputedEvent struct {
	PlanID      string     `json:"plan_id"`
	PostalCode1 string     `json:"postal_code_1"`
	PostalCode2 string     `json:"postal_code_2"`
	Midpoint    Coordinate `json:"midpoint"`
	District    string     `json:"district"`
	Fallbacks   int        `json:"routing_fallbacks"`
	DurationMs  int64      `json:"duration_ms"`
}
