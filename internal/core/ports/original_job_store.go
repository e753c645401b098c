package ports

import (
	"context"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
)

// OriginalJob is the upstream delivery job a partial delivery is carved
// from: the customer's pickup, dropoff and package description.
type OriginalJob struct {
	ID          kernel.UUID
	Pickup      kernel.GeoPoint
	Dropoff     kernel.GeoPoint
	PackageInfo delivery.PackageInfo
}

// OriginalJobStore looks up the upstream delivery jobs that partial
// deliveries are created for.
type OriginalJobStore interface {
	// GetOriginalJob retrieves the upstream job by its identifier.
	// Returns errs.ObjectNotFoundError when the job does not exist.
	GetOriginalJob(ctx context.Context, id kernel.UUID) (OriginalJob, error)
}
