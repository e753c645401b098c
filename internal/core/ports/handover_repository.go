package ports

import (
	"context"
	"time"

	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"
)

// HandoverRepository defines the persistence contract for handover aggregates.
type HandoverRepository interface {
	// Add persists a new handover aggregate to storage.
	Add(ctx context.Context, aggregate *handover.Handover) error

	// Update persists changes to an existing handover aggregate.
	Update(ctx context.Context, aggregate *handover.Handover) error

	// Get retrieves a handover aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*handover.Handover, error)

	// GetPendingBySegments retrieves the non-terminal handover between the
	// two given segments, or errs.ObjectNotFoundError when none exists.
	GetPendingBySegments(ctx context.Context, fromSegmentID, toSegmentID kernel.UUID) (*handover.Handover, error)

	// GetAwaitingOlderThan retrieves handovers still awaiting confirmation
	// that were created before the cutoff. Used by the timeout job.
	GetAwaitingOlderThan(ctx context.Context, cutoff time.Time) ([]*handover.Handover, error)
}
