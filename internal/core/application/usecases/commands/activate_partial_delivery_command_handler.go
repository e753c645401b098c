package commands

import (
	"context"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/ports"
)

// ActivatePartialDeliveryCommandHandler handles chain activation. After the
// transaction commits, a segment_available notification is announced for
// every proposed segment so couriers can start accepting.
type ActivatePartialDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	publisher  ports.EventPublisher
}

// NewActivatePartialDeliveryCommandHandler creates a handler for chain
// activation operations.
func NewActivatePartialDeliveryCommandHandler(
	uowFactory DeliveryUoWFactory,
	publisher ports.EventPublisher,
) ActivatePartialDeliveryCommandHandler {
	return ActivatePartialDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the activation command. Notifications go out only after
// a successful commit; a rolled-back activation announces nothing.
func (h ActivatePartialDeliveryCommandHandler) Handle(ctx context.Context, cmd ActivatePartialDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.PartialDeliveryRepository()
	aggregate, err := repo.Get(ctx, cmd.PartialDeliveryID())
	if err != nil {
		return err
	}

	if err = aggregate.Activate(); err != nil {
		return err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, segment := range aggregate.Segments() {
		if segment.Status() != delivery.SegmentProposed {
			continue
		}
		_ = h.publisher.Publish(ctx, events.SegmentAvailable{
			PartialDeliveryID:   aggregate.ID(),
			SegmentID:           segment.ID(),
			SequenceIndex:       segment.SequenceIndex(),
			StartPoint:          segment.StartPoint().Coord(),
			EndPoint:            segment.EndPoint().Coord(),
			DistanceKm:          segment.DistanceKm(),
			EstimatedDuration:   segment.EstimatedDuration(),
			DurationApproximate: segment.DurationApproximate(),
			CostCents:           segment.CostCents(),
		})
	}

	return nil
}
