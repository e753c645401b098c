package queries

import (
	"errors"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrGetAvailableSegmentsQueryIsNotConstructed = errors.New(
	"GetAvailableSegmentsQuery must be created via NewGetAvailableSegmentsQuery constructor",
)

// GetAvailableSegmentsQuery retrieves every proposed segment of every active
// chain: the open work couriers can claim right now.
type GetAvailableSegmentsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableSegmentsQuery creates a query for open segments.
// This is a parameterless query.
func NewGetAvailableSegmentsQuery() GetAvailableSegmentsQuery {
	return GetAvailableSegmentsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableSegmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableSegmentsQueryIsNotConstructed)
}

// AvailableSegmentResponse is one claimable segment with the figures a
// courier weighs before accepting.
type AvailableSegmentResponse struct {
	SegmentID           kernel.UUID
	PartialDeliveryID   kernel.UUID
	SequenceIndex       int
	Start               kernel.GeoCoord
	End                 kernel.GeoCoord
	DistanceKm          float64
	EstimatedDuration   time.Duration
	DurationApproximate bool
	CostCents           int64
}
