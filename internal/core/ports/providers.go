package ports

import (
	"context"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// Geocoder resolves postal codes to coordinates and back.
type Geocoder interface {
	Resolve(ctx context.Context, postalCode string) (domain.Coordinate, error)
	ReverseResolve(ctx context.Context, at domain.Coordinate, radiusMeters int) (domain.Area, error)
}

// Router returns live driving durations between two points.
type Router interface {
	DrivingMinutes(ctx context.Context, from, to domain.Coordinate) (int, error)
}

// VenueSearcher runs keyword searches for venues near an area.
type VenueSearcher interface {
	// CheckCredentials reports a configuration error without any network I/O.
	CheckCredentials() error
	Search(ctx context.Context, query string) (domain.VenueSearchResult, error)
}

// PlanFormatter turns raw search results into a structured plan.
type PlanFormatter interface {
	// CheckCredentials reports a configuration error without any network I/O.
	CheckCredentials() error
	Format(ctx context.Context, in FormatInput) (domain.Plan, error)
}

// FormatInput is everything the formatter needs for one plan.
type FormatInput struct {
	Area            domain.Area
	FoodResults     domain.VenueSearchResult
	ActivityResults domain.VenueSearchResult
	Preferences     string
}
