// Package queries contains read-only operations for the read side of the
// CQRS architecture. Query handlers bypass the aggregates and read
// projection-friendly rows straight from storage.
package queries

import (
	"errors"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrGetPartialDeliveryQueryIsNotConstructed = errors.New(
	"GetPartialDeliveryQuery must be created via NewGetPartialDeliveryQuery constructor",
)

// GetPartialDeliveryQuery retrieves one partial delivery with its full
// segment chain, in route order.
type GetPartialDeliveryQuery struct {
	partialDeliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetPartialDeliveryQuery creates a query for the given chain.
func NewGetPartialDeliveryQuery(partialDeliveryID kernel.UUID) (GetPartialDeliveryQuery, error) {
	if err := partialDeliveryID.Validate(); err != nil {
		return GetPartialDeliveryQuery{}, err
	}

	return GetPartialDeliveryQuery{
		partialDeliveryID: partialDeliveryID,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPartialDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetPartialDeliveryQueryIsNotConstructed)
}

// PartialDeliveryID returns the chain to fetch.
func (q GetPartialDeliveryQuery) PartialDeliveryID() kernel.UUID {
	return q.partialDeliveryID
}

// SegmentResponse is one leg of the chain as seen by clients.
type SegmentResponse struct {
	ID                  kernel.UUID
	SequenceIndex       int
	CourierID           *kernel.UUID
	Start               kernel.GeoCoord
	End                 kernel.GeoCoord
	DistanceKm          float64
	EstimatedDuration   time.Duration
	DurationApproximate bool
	CostCents           int64
	Status              string
	Reproposals         int
}

// GetPartialDeliveryQueryResponse is the chain with its segments in route
// order.
type GetPartialDeliveryQueryResponse struct {
	ID            kernel.UUID
	OriginalJobID kernel.UUID
	Status        string
	CreatedAt     time.Time
	Segments      []SegmentResponse
}
