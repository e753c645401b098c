package services

import (
	"context"
	"math"
	"time"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"
)

// RouteLeg is the distance/ETA provider's answer for one point pair.
type RouteLeg struct {
	DistanceKm  float64
	DurationMin float64
}

// RouteResolver is the external distance/ETA provider boundary. The
// estimator is the only consumer; resolver calls are the one place in the
// engine allowed to block on network I/O.
type RouteResolver interface {
	ResolveRoute(ctx context.Context, from, to kernel.GeoPoint) (RouteLeg, error)
}

// Tariff holds the pricing parameters for segment cost estimation.
// All rate arithmetic uses integer cents and integer percentages so that
// repeated estimates for identical inputs are bit-identical.
type Tariff struct {
	// PerKmCents is the base rate per kilometre.
	PerKmCents int64
	// MinimumFareCents is the floor below which no segment is priced.
	MinimumFareCents int64
	// FallbackSpeedKmh converts distance into duration when the provider
	// is unavailable.
	FallbackSpeedKmh float64
	// SurchargePct maps a package kind to its percentage multiplier
	// (100 = no surcharge).
	SurchargePct map[delivery.PackageKind]int64
}

// DefaultTariff returns the standard tariff: 1.20/km, 3.00 minimum fare,
// 25 km/h fallback speed, fragile +30%, urgent +50%.
func DefaultTariff() Tariff {
	return Tariff{
		PerKmCents:       120,
		MinimumFareCents: 300,
		FallbackSpeedKmh: 25,
		SurchargePct: map[delivery.PackageKind]int64{
			delivery.PackageStandard: 100,
			delivery.PackageFragile:  130,
			delivery.PackageUrgent:   150,
		},
	}
}

// Estimate is the estimator's result for one segment.
type Estimate struct {
	// DistanceKm is the routed or great-circle distance.
	DistanceKm float64
	// Duration is the estimated travel time.
	Duration time.Duration
	// DurationApproximate marks the distance/average-speed fallback used
	// when the provider was unavailable, so callers can show "approximate"
	// instead of "estimated".
	DurationApproximate bool
	// CostCents is the deterministic price in minor currency units.
	CostCents int64
}

// CostEstimator computes the price and duration shown to couriers before
// they accept a segment. The cost function is deterministic and replayable:
// repeated calls with identical inputs return identical results.
type CostEstimator struct {
	resolver RouteResolver
	tariff   Tariff
}

// NewCostEstimator creates an estimator over the given provider and tariff.
func NewCostEstimator(resolver RouteResolver, tariff Tariff) CostEstimator {
	return CostEstimator{
		resolver: resolver,
		tariff:   tariff,
	}
}

// Estimate resolves the leg from start to end and prices it for the given
// package. Provider failure is not an error: the distance falls back to the
// great-circle distance and the duration to distance over the fallback
// speed, with DurationApproximate set.
func (e CostEstimator) Estimate(
	ctx context.Context,
	start, end kernel.GeoPoint,
	packageInfo delivery.PackageInfo,
) (Estimate, error) {
	if err := packageInfo.Validate(); err != nil {
		return Estimate{}, err
	}

	var (
		distanceKm  float64
		duration    time.Duration
		approximate bool
	)

	leg, err := e.resolver.ResolveRoute(ctx, start, end)
	if err == nil {
		distanceKm = leg.DistanceKm
		duration = time.Duration(leg.DurationMin * float64(time.Minute))
	} else {
		distanceKm, err = start.DistanceKm(end)
		if err != nil {
			return Estimate{}, err
		}
		duration = time.Duration(distanceKm / e.tariff.FallbackSpeedKmh * float64(time.Hour))
		approximate = true
	}

	cost, err := e.price(distanceKm, packageInfo.Kind())
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		DistanceKm:          distanceKm,
		Duration:            duration,
		DurationApproximate: approximate,
		CostCents:           cost,
	}, nil
}

// price computes a monotonic cost from distance: per-km rate, package-kind
// surcharge, minimum-fare floor. No randomness, no clocks.
func (e CostEstimator) price(distanceKm float64, kind delivery.PackageKind) (int64, error) {
	surcharge, ok := e.tariff.SurchargePct[kind]
	if !ok {
		return 0, errs.NewValueIsInvalidError("package kind has no tariff surcharge")
	}

	base := int64(math.Round(distanceKm * float64(e.tariff.PerKmCents)))
	cost := base * surcharge / 100
	if cost < e.tariff.MinimumFareCents {
		cost = e.tariff.MinimumFareCents
	}

	return cost, nil
}
