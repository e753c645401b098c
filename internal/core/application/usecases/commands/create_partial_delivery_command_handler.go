package commands

import (
	"context"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/domain/services"
	"partialdelivery/internal/core/ports"
)

// CreatePartialDeliveryCommandHandler handles the business logic for
// splitting an upstream job into a segment chain. Looks up the job, routes
// it through the relay points, and persists the resulting chain in pending
// status.
type CreatePartialDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	jobStore   ports.OriginalJobStore
	segmenter  services.RouteSegmenter
}

// NewCreatePartialDeliveryCommandHandler creates a handler for partial
// delivery creation. Requires the upstream job store and the route
// segmenter alongside the transactional factory.
func NewCreatePartialDeliveryCommandHandler(
	uowFactory DeliveryUoWFactory,
	jobStore ports.OriginalJobStore,
	segmenter services.RouteSegmenter,
) CreatePartialDeliveryCommandHandler {
	return CreatePartialDeliveryCommandHandler{
		uowFactory: uowFactory,
		jobStore:   jobStore,
		segmenter:  segmenter,
	}
}

// Handle processes the creation command. The full waypoint sequence is the
// job's pickup, the relay points in order, then the job's dropoff. The
// chain is persisted in pending status; activation is a separate command.
func (h CreatePartialDeliveryCommandHandler) Handle(ctx context.Context, cmd CreatePartialDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	job, err := h.jobStore.GetOriginalJob(ctx, cmd.OriginalJobID())
	if err != nil {
		return err
	}

	waypoints := make([]kernel.GeoPoint, 0, len(cmd.RelayPoints())+2)
	waypoints = append(waypoints, job.Pickup)
	waypoints = append(waypoints, cmd.RelayPoints()...)
	waypoints = append(waypoints, job.Dropoff)

	drafts, err := h.segmenter.Segment(ctx, waypoints, job.PackageInfo)
	if err != nil {
		return err
	}

	aggregate, err := delivery.NewPartialDelivery(cmd.PartialDeliveryID(), cmd.OriginalJobID(), drafts)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.PartialDeliveryRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
