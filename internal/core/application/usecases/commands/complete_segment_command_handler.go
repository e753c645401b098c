package commands

import (
	"context"
	"errors"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/ports"
	"partialdelivery/internal/pkg/errs"
)

// CompleteSegmentCommandHandler handles completion reports. Completing the
// final segment is unconditional and may complete the whole chain, since
// the chain's status is derived from its children. Completing a mid-chain
// segment requires the outgoing handover to be confirmed first: the
// package may not be "done" until the next courier has verified receipt.
// When the next segment is already in progress, the handover transitions
// to completed in the same transaction.
type CompleteSegmentCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewCompleteSegmentCommandHandler creates a handler for segment completion.
func NewCompleteSegmentCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
) CompleteSegmentCommandHandler {
	return CompleteSegmentCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the completion report within a single transaction
// spanning the chain and the handover.
func (h CompleteSegmentCommandHandler) Handle(ctx context.Context, cmd CompleteSegmentCommand) error {
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

	deliveryRepo := uow.PartialDeliveryRepository()
	aggregate, err := deliveryRepo.GetBySegment(ctx, cmd.SegmentID())
	if err != nil {
		return err
	}

	segment, err := aggregate.SegmentByID(cmd.SegmentID())
	if err != nil {
		return err
	}

	isLast := segment.SequenceIndex() == len(aggregate.Segments())-1
	if !isLast {
		if err = h.settleOutgoingHandover(ctx, uow, aggregate, segment); err != nil {
			return err
		}
	}

	if _, err = aggregate.CompleteSegment(cmd.SegmentID(), cmd.CourierID()); err != nil {
		return err
	}

	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, events.SegmentStatusChanged{
		PartialDeliveryID: aggregate.ID(),
		SegmentID:         segment.ID(),
		SequenceIndex:     segment.SequenceIndex(),
		Status:            segment.Status().String(),
	})

	if aggregate.Status() == delivery.StatusCompleted {
		_ = h.publisher.Publish(ctx, events.DeliveryStatusChanged{
			PartialDeliveryID: aggregate.ID(),
			Status:            aggregate.Status().String(),
		})
	}

	return nil
}

// settleOutgoingHandover enforces the confirmation gate for mid-chain
// completion and closes the handover once the next courier is underway.
func (h CompleteSegmentCommandHandler) settleOutgoingHandover(
	ctx context.Context,
	uow UoW,
	aggregate *delivery.PartialDelivery,
	segment *delivery.Segment,
) error {
	next := aggregate.Segments()[segment.SequenceIndex()+1]

	handoverRepo := uow.HandoverRepository()
	pending, err := handoverRepo.GetPendingBySegments(ctx, segment.ID(), next.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ErrHandoverNotConfirmed
	}
	if err != nil {
		return err
	}

	if pending.Status() != handover.StatusConfirmed {
		return ErrHandoverNotConfirmed
	}

	if next.Status() != delivery.SegmentInProgress {
		return nil
	}

	if err = pending.Complete(); err != nil {
		return err
	}

	return handoverRepo.Update(ctx, pending)
}
