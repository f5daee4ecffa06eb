package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/core/ports"
	"github.com/samirrijal/meetpoint/internal/pkg/geospatial"
	"github.com/samirrijal/meetpoint/internal/pkg/logging"
	"github.com/samirrijal/meetpoint/internal/pkg/metrics"
	"github.com/samirrijal/meetpoint/internal/pkg/telemetry"
)

// DefaultReverseRadiusMeters bounds the midpoint area lookup.
const DefaultReverseRadiusMeters = 2000

// MeetupService plans a meetup between two postal codes.
type MeetupService struct {
	geocoder  ports.Geocoder
	travel    *TravelEstimator
	search    ports.VenueSearcher
	formatter ports.PlanFormatter
	events    ports.EventPublisher

	reverseRadius int
}

// NewMeetupService creates a MeetupService. events may be nil.
func NewMeetupService(
	geocoder ports.Geocoder,
	router ports.Router,
	search ports.VenueSearcher,
	formatter ports.PlanFormatter,
	events ports.EventPublisher,
) *MeetupService {
	return &MeetupService{
		geocoder:      geocoder,
		travel:        NewTravelEstimator(router),
		search:        search,
		formatter:     formatter,
		events:        events,
		reverseRadius: DefaultReverseRadiusMeters,
	}
}

type personTravel struct {
	options  []domain.TravelOption
	fellBack bool
}

// Plan runs the full pipeline. Any returned error is a *domain.Error and no
// partial response is produced.
func (s *MeetupService) Plan(ctx context.Context, req domain.PlanRequest) (resp *domain.PlanResponse, err error) {
	started := time.Now()
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanPlan)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(domain.KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		metrics.PlansTotal.WithLabelValues(outcome).Inc()
		span.End()
	}()

	log := logging.FromContext(ctx)

	// 1. Validate
	pc1 := domain.NormalizePostalCode(req.PostalCode1)
	pc2 := domain.NormalizePostalCode(req.PostalCode2)
	if pc1 == "" || pc2 == "" {
		return nil, domain.NewError(domain.KindMissingInput, "postalCode1 and postalCode2 are required", nil)
	}
	span.SetAttributes(attribute.String("postal_code_1", pc1), attribute.String("postal_code_2", pc2))

	// 2. Credentials, before any network I/O
	if err := s.search.CheckCredentials(); err != nil {
		return nil, err
	}
	if err := s.formatter.CheckCredentials(); err != nil {
		return nil, err
	}

	// 3. Geocode both people
	coords, err := step(ctx, telemetry.SpanGeocode, func(ctx context.Context) (joined[domain.Coordinate], error) {
		return runBranches(ctx, s.resolveBranch(pc1), s.resolveBranch(pc2))
	})
	if err != nil {
		return nil, err
	}
	p1, p2 := coords.Values[0], coords.Values[1]

	// 4. Geometry
	mid := geospatial.Midpoint(p1, p2)
	d1 := geospatial.DistanceKm(p1, mid)
	d2 := geospatial.DistanceKm(p2, mid)

	// 5. Midpoint area
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(mid.Latitude, mid.Longitude, float64(s.reverseRadius))
	area, err := step(ctx, telemetry.SpanReverseLookup, func(ctx context.Context) (domain.Area, error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("window.radius_m", s.reverseRadius),
			attribute.Float64("window.min_lat", minLat),
			attribute.Float64("window.min_lon", minLon),
			attribute.Float64("window.max_lat", maxLat),
			attribute.Float64("window.max_lon", maxLon),
		)
		return s.geocoder.ReverseResolve(ctx, mid, s.reverseRadius)
	})
	if err != nil {
		return nil, err
	}
	log.Info("midpoint resolved",
		slog.String("district", area.District),
		slog.String("region", area.Region),
		slog.Float64("distance_km_1", d1),
		slog.Float64("distance_km_2", d2),
		slog.Group("window",
			slog.Int("radius_m", s.reverseRadius),
			slog.Float64("min_lat", minLat),
			slog.Float64("min_lon", minLon),
			slog.Float64("max_lat", maxLat),
			slog.Float64("max_lon", maxLon),
		),
	)

	// 6. Travel options, never fatal
	travel, err := step(ctx, telemetry.SpanTravel, func(ctx context.Context) (joined[personTravel], error) {
		return runBranches(ctx, s.travelBranch(p1, mid, d1), s.travelBranch(p2, mid, d2))
	})
	if err != nil {
		return nil, err
	}

	// 7. Venue searches
	results, err := step(ctx, telemetry.SpanSearch, func(ctx context.Context) (joined[domain.VenueSearchResult], error) {
		return runBranches(ctx, s.searchBranch(FoodQuery(area)), s.searchBranch(ActivityQuery(area)))
	})
	if err != nil {
		return nil, err
	}

	// 8. Plan
	plan, err := step(ctx, telemetry.SpanFormat, func(ctx context.Context) (domain.Plan, error) {
		return s.formatter.Format(ctx, ports.FormatInput{
			Area:            area,
			FoodResults:     results.Values[0],
			ActivityResults: results.Values[1],
			Preferences:     req.Preferences,
		})
	})
	if err != nil {
		return nil, err
	}

	// 9. Assemble
	t1, t2 := travel.Values[0].options, travel.Values[1].options
	resp = &domain.PlanResponse{
		OK:          true,
		ID:          uuid.NewString(),
		Inputs:      domain.PlanInputs{PostalCode1: pc1, PostalCode2: pc2},
		Midpoint:    mid,
		Area:        area,
		DistancesKm: domain.Distances{Person1: d1, Person2: d2},
		Travel: domain.TravelSummary{
			FromPerson1:            t1,
			FromPerson2:            t2,
			RecommendedModePerson1: domain.RecommendedMode(t1),
			RecommendedModePerson2: domain.RecommendedMode(t2),
		},
		Result: plan,
	}

	s.publish(ctx, resp, travel.Substitutions(), time.Since(started))
	return resp, nil
}

func (s *MeetupService) resolveBranch(code string) branch[domain.Coordinate] {
	return func(ctx context.Context) (domain.Coordinate, bool, error) {
		c, err := s.geocoder.Resolve(ctx, code)
		return c, false, err
	}
}

func (s *MeetupService) travelBranch(from, to domain.Coordinate, distanceKm float64) branch[personTravel] {
	return func(ctx context.Context) (personTravel, bool, error) {
		opts, fellBack := s.travel.Estimate(ctx, from, to, distanceKm)
		return personTravel{options: opts, fellBack: fellBack}, fellBack, nil
	}
}

func (s *MeetupService) searchBranch(query string) branch[domain.VenueSearchResult] {
	return func(ctx context.Context) (domain.VenueSearchResult, bool, error) {
		r, err := s.search.Search(ctx, query)
		return r, false, err
	}
}

// publish announces the plan. Broker failures never affect the response.
func (s *MeetupService) publish(ctx context.Context, resp *domain.PlanResponse, fallbacks int, took time.Duration) {
	if s.events == nil {
		return
	}
	err := s.events.PublishPlanComputed(ctx, &domain.PlanComputedEvent{
		PlanID:      resp.ID,
		PostalCode1: resp.Inputs.PostalCode1,
		PostalCode2: resp.Inputs.PostalCode2,
		Midpoint:    resp.Midpoint,
		District:    resp.Area.District,
		Fallbacks:   fallbacks,
		DurationMs:  took.Milliseconds(),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("publish plan event failed", slog.String("error", err.Error()))
	}
}

// step runs fn inside a child span and classifies stray errors as internal.
func step[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.Tracer().Start(ctx, name)
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		recordFailure(span, err)
		if domain.KindOf(err) == domain.KindInternal {
			var zero T
			return zero, domain.NewError(domain.KindInternal, name+" failed", err)
		}
	}
	return v, err
}

func recordFailure(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(domain.KindOf(err)))
}
