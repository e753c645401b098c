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

var (
	// ErrSegmentIsLast is returned when initiating a handover from the final
	// segment, which hands to the recipient rather than another courier.
	ErrSegmentIsLast = errors.New("final segment has no outgoing handover")

	// ErrHandoverAlreadyPending is returned when a handover between the two
	// segments is already underway.
	ErrHandoverAlreadyPending = errors.New("handover is already pending between these segments")
)

// InitiateHandoverCommandHandler handles handover initiation. Only the
// courier carrying the package (owning an in-progress segment) may
// initiate, and only one handover may be pending between a segment pair at
// a time. Initiation generates the verification code that the receiving
// courier will need to confirm receipt.
type InitiateHandoverCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewInitiateHandoverCommandHandler creates a handler for handover initiation.
func NewInitiateHandoverCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
) InitiateHandoverCommandHandler {
	return InitiateHandoverCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the initiation command.
func (h InitiateHandoverCommandHandler) Handle(ctx context.Context, cmd InitiateHandoverCommand) error {
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

	aggregate, err := uow.PartialDeliveryRepository().GetBySegment(ctx, cmd.FromSegmentID())
	if err != nil {
		return err
	}

	fromSegment, err := aggregate.SegmentByID(cmd.FromSegmentID())
	if err != nil {
		return err
	}

	if !fromSegment.IsOwnedBy(cmd.CourierID()) {
		return delivery.ErrNotSegmentOwner
	}

	if fromSegment.Status() != delivery.SegmentInProgress {
		return errs.NewValueIsInvalidErrorWithCause("segment status is invalid",
			errors.New("handover can only be initiated from an in-progress segment"))
	}

	if fromSegment.SequenceIndex() == len(aggregate.Segments())-1 {
		return ErrSegmentIsLast
	}

	toSegment := aggregate.Segments()[fromSegment.SequenceIndex()+1]

	handoverRepo := uow.HandoverRepository()
	_, err = handoverRepo.GetPendingBySegments(ctx, fromSegment.ID(), toSegment.ID())
	if err == nil {
		return ErrHandoverAlreadyPending
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	aggregateHandover, err := handover.NewHandover(
		cmd.HandoverID(),
		aggregate.ID(),
		fromSegment.ID(),
		toSegment.ID(),
		cmd.Location(),
		cmd.EstimatedTime(),
	)
	if err != nil {
		return err
	}

	if err = handoverRepo.Add(ctx, aggregateHandover); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// The verification code is deliberately absent from the room broadcast.
	// The initiating courier reads it back over a direct query.
	_ = h.publisher.Publish(ctx, events.HandoverInitiated{
		PartialDeliveryID: aggregate.ID(),
		HandoverID:        aggregateHandover.ID(),
		FromSegmentID:     fromSegment.ID(),
		ToSegmentID:       toSegment.ID(),
		Location:          cmd.Location().Coord(),
		EstimatedTime:     cmd.EstimatedTime(),
	})

	return nil
}
