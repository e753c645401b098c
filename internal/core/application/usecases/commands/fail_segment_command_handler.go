package commands

import (
	"context"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/ports"
)

// FailSegmentCommandHandler handles segment failure. The failed segment
// re-opens for acceptance with its boundaries unchanged, so the chain's
// contiguity survives courier churn. Once a segment has burned through the
// re-proposal budget the whole chain is cancelled instead.
type FailSegmentCommandHandler struct {
	uowFactory  DeliveryUoWFactory
	publisher   ports.EventPublisher
	retryBudget int
}

// NewFailSegmentCommandHandler creates a handler for segment failure.
// retryBudget is the number of times one segment may be re-proposed before
// the chain gives up.
func NewFailSegmentCommandHandler(
	uowFactory DeliveryUoWFactory,
	publisher ports.EventPublisher,
	retryBudget int,
) FailSegmentCommandHandler {
	return FailSegmentCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		retryBudget: retryBudget,
	}
}

// Handle processes the failure. Depending on the outcome the room sees
// either a fresh segment_available proposal or a delivery_cancelled notice.
func (h FailSegmentCommandHandler) Handle(ctx context.Context, cmd FailSegmentCommand) error {
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
	aggregate, err := repo.GetBySegment(ctx, cmd.SegmentID())
	if err != nil {
		return err
	}

	segment, outcome, err := aggregate.FailSegment(cmd.SegmentID(), cmd.CourierID(), h.retryBudget)
	if err != nil {
		return err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	switch outcome {
	case delivery.FailOutcomeReproposed:
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
	case delivery.FailOutcomeChainCancelled:
		_ = h.publisher.Publish(ctx, events.DeliveryCancelled{
			PartialDeliveryID: aggregate.ID(),
			Reason:            "segment re-proposal budget exhausted",
		})
	}

	return nil
}
