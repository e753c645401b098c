package commands

import (
	"context"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/ports"
)

// AcceptSegmentCommandHandler handles courier claims on proposed segments.
// The claim itself goes through the repository's atomic assignment so that
// concurrent claims on the same segment serialize in storage: the first
// writer wins, every later claim fails with
// delivery.ErrSegmentAlreadyAssigned regardless of arrival interleaving.
// A repeated claim by the courier who already holds the segment is a no-op
// success.
type AcceptSegmentCommandHandler struct {
	uowFactory DeliveryUoWFactory
	publisher  ports.EventPublisher
}

// NewAcceptSegmentCommandHandler creates a handler for segment acceptance.
func NewAcceptSegmentCommandHandler(
	uowFactory DeliveryUoWFactory,
	publisher ports.EventPublisher,
) AcceptSegmentCommandHandler {
	return AcceptSegmentCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the claim. The aggregate is revalidated inside the
// transaction, then the assignment is committed through the repository's
// compare-and-set. Notifications go out only after a successful commit.
func (h AcceptSegmentCommandHandler) Handle(ctx context.Context, cmd AcceptSegmentCommand) error {
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

	segment, err := aggregate.AcceptSegment(cmd.SegmentID(), cmd.CourierID())
	if err != nil {
		return err
	}

	if err = repo.AssignSegment(ctx, cmd.SegmentID(), cmd.CourierID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, events.SegmentAccepted{
		PartialDeliveryID: aggregate.ID(),
		SegmentID:         segment.ID(),
		SequenceIndex:     segment.SequenceIndex(),
		CourierID:         cmd.CourierID(),
	})
	_ = h.publisher.Publish(ctx, events.SegmentStatusChanged{
		PartialDeliveryID: aggregate.ID(),
		SegmentID:         segment.ID(),
		SequenceIndex:     segment.SequenceIndex(),
		Status:            delivery.SegmentAccepted.String(),
	})

	return nil
}
