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

// ErrHandoverNotConfirmed is returned when a courier tries to start a
// mid-chain segment while the incoming handover still awaits its
// verification code.
var ErrHandoverNotConfirmed = errors.New("incoming handover is not confirmed")

// StartSegmentCommandHandler handles pickup reports. Starting the first
// segment is unconditional. Starting any later segment closes the incoming
// handover: if a handover from the previous segment exists, it must already
// be confirmed, and when the previous segment has also completed, the
// handover transitions to completed in the same transaction. A handover is
// never completed by one side alone.
type StartSegmentCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewStartSegmentCommandHandler creates a handler for segment pickup.
func NewStartSegmentCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
) StartSegmentCommandHandler {
	return StartSegmentCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the pickup report within a single transaction spanning
// the chain and the handover.
func (h StartSegmentCommandHandler) Handle(ctx context.Context, cmd StartSegmentCommand) error {
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

	segment, err := aggregate.StartSegment(cmd.SegmentID(), cmd.CourierID())
	if err != nil {
		return err
	}

	if segment.SequenceIndex() > 0 {
		if err = h.settleIncomingHandover(ctx, uow, aggregate, segment); err != nil {
			return err
		}
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

	return nil
}

// settleIncomingHandover enforces the confirmation gate and completes the
// incoming handover once both sides have acted. No pending handover means
// the previous courier has not initiated one yet, which does not block
// pickup.
func (h StartSegmentCommandHandler) settleIncomingHandover(
	ctx context.Context,
	uow UoW,
	aggregate *delivery.PartialDelivery,
	segment *delivery.Segment,
) error {
	previous := aggregate.Segments()[segment.SequenceIndex()-1]

	handoverRepo := uow.HandoverRepository()
	pending, err := handoverRepo.GetPendingBySegments(ctx, previous.ID(), segment.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if pending.Status() != handover.StatusConfirmed {
		return ErrHandoverNotConfirmed
	}

	if previous.Status() != delivery.SegmentCompleted {
		return nil
	}

	if err = pending.Complete(); err != nil {
		return err
	}

	return handoverRepo.Update(ctx, pending)
}
