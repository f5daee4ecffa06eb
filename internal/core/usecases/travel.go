package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/core/ports"
	"github.com/samirrijal/meetpoint/internal/pkg/logging"
	"github.com/samirrijal/meetpoint/internal/pkg/metrics"
)

// Average speeds (km/h) and fixed access penalties (minutes) per mode.
const (
	trainSpeedKmh   = 36.0
	trainPenaltyMin = 10
	trainFloorMin   = 14

	busSpeedKmh   = 14.0
	busPenaltyMin = 8
	busFloorMin   = 18

	fallbackDriveSpeedKmh = 22.0
	fallbackDriveFloorMin = 8
)

const (
	noteCarLive      = "Fastest driving route from live routing"
	noteCarHeuristic = "Routing unavailable; estimated from straight-line distance at 22 km/h"
	noteTrain        = "Approximate: 36 km/h average plus 10 min to reach and leave stations"
	noteBus          = "Approximate: 14 km/h average plus 8 min waiting and walking"
)

// EstimateOptions returns car, train and bus options sorted by duration.
// Equal durations keep car, train, bus order.
func EstimateOptions(distanceKm float64, drivingMinutes int) []domain.TravelOption {
	options := []domain.TravelOption{
		{Mode: domain.ModeCar, DurationMinutes: drivingMinutes, Notes: noteCarLive},
		{Mode: domain.ModeTrain, DurationMinutes: TrainMinutes(distanceKm), Notes: noteTrain},
		{Mode: domain.ModeBus, DurationMinutes: BusMinutes(distanceKm), Notes: noteBus},
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].DurationMinutes < options[j].DurationMinutes
	})
	return options
}

// TrainMinutes is max(14, round(d/36*60) + 10).
func TrainMinutes(distanceKm float64) int {
	return max(trainFloorMin, minutesAt(distanceKm, trainSpeedKmh)+trainPenaltyMin)
}

// BusMinutes is max(18, round(d/14*60) + 8).
func BusMinutes(distanceKm float64) int {
	return max(busFloorMin, minutesAt(distanceKm, busSpeedKmh)+busPenaltyMin)
}

// HeuristicDrivingMinutes is max(8, round(d/22*60)), used when routing fails.
func HeuristicDrivingMinutes(distanceKm float64) int {
	return max(fallbackDriveFloorMin, minutesAt(distanceKm, fallbackDriveSpeedKmh))
}

func minutesAt(distanceKm, speedKmh float64) int {
	return int(math.Round(distanceKm / speedKmh * 60))
}

// TravelEstimator builds one person's travel options, falling back to a
// distance heuristic when the router fails.
type TravelEstimator struct {
	router ports.Router
}

// NewTravelEstimator creates a TravelEstimator.
func NewTravelEstimator(router ports.Router) *TravelEstimator {
	return &TravelEstimator{router: router}
}

// Estimate never fails. fellBack reports whether the car time is heuristic.
func (e *TravelEstimator) Estimate(ctx context.Context, from, to domain.Coordinate, distanceKm float64) (options []domain.TravelOption, fellBack bool) {
	driving, err := e.router.DrivingMinutes(ctx, from, to)
	if err == nil {
		return EstimateOptions(distanceKm, driving), false
	}

	metrics.RoutingFallbacks.Inc()
	logging.FromContext(ctx).Warn("routing failed, using distance heuristic",
		slog.String("error", err.Error()),
		slog.String("distance_km", fmt.Sprintf("%.2f", distanceKm)),
	)

	options = EstimateOptions(distanceKm, HeuristicDrivingMinutes(distanceKm))
	for i := range options {
		if options[i].Mode == domain.ModeCar {
			options[i].Notes = noteCarHeuristic
		}
	}
	return options, true
}
