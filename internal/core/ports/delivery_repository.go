package ports

import (
	"context"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
)

// PartialDeliveryRepository defines the persistence contract for partial
// delivery aggregates and their segment chains.
type PartialDeliveryRepository interface {
	// Add persists a new partial delivery aggregate with all its segments.
	// The aggregate must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *delivery.PartialDelivery) error

	// Update persists changes to an existing partial delivery aggregate,
	// including segment state changes.
	Update(ctx context.Context, aggregate *delivery.PartialDelivery) error

	// Get retrieves a partial delivery aggregate by its unique identifier,
	// segments included, ordered by sequence index.
	Get(ctx context.Context, id kernel.UUID) (*delivery.PartialDelivery, error)

	// GetBySegment retrieves the partial delivery aggregate that owns the
	// given segment.
	GetBySegment(ctx context.Context, segmentID kernel.UUID) (*delivery.PartialDelivery, error)

	// GetAllActive retrieves all partial deliveries in active status.
	// Used by background jobs scanning for stale proposed segments.
	GetAllActive(ctx context.Context) ([]*delivery.PartialDelivery, error)

	// AssignSegment atomically claims a proposed segment for a courier.
	// The storage layer must guarantee that when two couriers race for the
	// same segment exactly one assignment succeeds; the loser gets
	// delivery.ErrSegmentAlreadyAssigned.
	AssignSegment(ctx context.Context, segmentID kernel.UUID, courierID kernel.UUID) error
}
