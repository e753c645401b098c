package commands

import (
	"context"
	"errors"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/ports"
)

// ConfirmHandoverCommandHandler handles verification code entry by the
// receiving courier. A wrong code consumes an attempt and the attempt
// counter is committed even though the confirmation failed, so retrying
// across requests cannot reset the lockout. Expiry is not checked here:
// a handover only times out while its incoming segment is unclaimed, and
// reaching this handler at all proves the confirming courier owns it. The
// timeout sweep owns abandonment.
type ConfirmHandoverCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	attemptCap int
}

// NewConfirmHandoverCommandHandler creates a handler for handover
// confirmation. attemptCap bounds wrong-code retries.
func NewConfirmHandoverCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	attemptCap int,
) ConfirmHandoverCommandHandler {
	return ConfirmHandoverCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		attemptCap: attemptCap,
	}
}

// Handle processes the confirmation command.
func (h ConfirmHandoverCommandHandler) Handle(ctx context.Context, cmd ConfirmHandoverCommand) error {
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

	handoverRepo := uow.HandoverRepository()
	aggregateHandover, err := handoverRepo.Get(ctx, cmd.HandoverID())
	if err != nil {
		return err
	}

	aggregate, err := uow.PartialDeliveryRepository().GetBySegment(ctx, aggregateHandover.ToSegmentID())
	if err != nil {
		return err
	}

	toSegment, err := aggregate.SegmentByID(aggregateHandover.ToSegmentID())
	if err != nil {
		return err
	}

	if !toSegment.IsOwnedBy(cmd.CourierID()) {
		return delivery.ErrNotSegmentOwner
	}

	confirmErr := aggregateHandover.Confirm(cmd.VerificationCode(), cmd.CourierID(), h.attemptCap)
	if errors.Is(confirmErr, handover.ErrInvalidVerificationCode) ||
		errors.Is(confirmErr, handover.ErrVerificationLocked) {
		// Persist the consumed attempt before surfacing the failure.
		if err = handoverRepo.Update(ctx, aggregateHandover); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}
		return confirmErr
	}
	if confirmErr != nil {
		return confirmErr
	}

	if err = handoverRepo.Update(ctx, aggregateHandover); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, events.HandoverConfirmed{
		PartialDeliveryID: aggregateHandover.PartialDeliveryID(),
		HandoverID:        aggregateHandover.ID(),
		ConfirmedBy:       cmd.CourierID(),
	})

	return nil
}
