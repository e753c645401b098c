package services

import (
	"context"
	"errors"
	"fmt"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
)

// ErrInvalidRoute signals that a waypoint sequence cannot be segmented.
var ErrInvalidRoute = errors.New("route is invalid")

// RouteSegmenter splits an ordered waypoint sequence into proposed segment
// drafts, one per consecutive waypoint pair, each priced by the estimator.
// Waypoint order is taken as given; the segmenter does not reorder.
type RouteSegmenter struct {
	estimator CostEstimator
}

// NewRouteSegmenter creates a segmenter backed by the given estimator.
func NewRouteSegmenter(estimator CostEstimator) RouteSegmenter {
	return RouteSegmenter{estimator: estimator}
}

// Segment builds one draft per consecutive waypoint pair. A route needs at
// least two waypoints, and consecutive waypoints must not coincide within
// the chain boundary tolerance, since a zero-length segment would be
// unassignable.
func (s RouteSegmenter) Segment(
	ctx context.Context,
	waypoints []kernel.GeoPoint,
	packageInfo delivery.PackageInfo,
) ([]delivery.SegmentDraft, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: at least 2 waypoints are required, got %d",
			ErrInvalidRoute, len(waypoints))
	}

	if err := packageInfo.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoute, err)
	}

	for i, waypoint := range waypoints {
		if err := waypoint.Validate(); err != nil {
			return nil, fmt.Errorf("%w: waypoint %d: %w", ErrInvalidRoute, i, err)
		}
	}

	for i := 0; i < len(waypoints)-1; i++ {
		coincide, err := waypoints[i].Coincides(waypoints[i+1], delivery.BoundaryToleranceMeters)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRoute, err)
		}
		if coincide {
			return nil, fmt.Errorf("%w: waypoints %d and %d coincide", ErrInvalidRoute, i, i+1)
		}
	}

	drafts := make([]delivery.SegmentDraft, 0, len(waypoints)-1)
	for i := 0; i < len(waypoints)-1; i++ {
		estimate, err := s.estimator.Estimate(ctx, waypoints[i], waypoints[i+1], packageInfo)
		if err != nil {
			return nil, err
		}

		drafts = append(drafts, delivery.SegmentDraft{
			Start:               waypoints[i],
			End:                 waypoints[i+1],
			DistanceKm:          estimate.DistanceKm,
			EstimatedDuration:   estimate.Duration,
			DurationApproximate: estimate.DurationApproximate,
			CostCents:           estimate.CostCents,
		})
	}

	return drafts, nil
}
