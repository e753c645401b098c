package commands

import (
	"context"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/ports"
)

// CancelPartialDeliveryCommandHandler handles chain cancellation. The
// cascade to every non-terminal segment happens inside the aggregate and
// is persisted in one transaction, so no reader observes a cancelled chain
// with segments still open for acceptance.
type CancelPartialDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	publisher  ports.EventPublisher
}

// NewCancelPartialDeliveryCommandHandler creates a handler for chain
// cancellation operations.
func NewCancelPartialDeliveryCommandHandler(
	uowFactory DeliveryUoWFactory,
	publisher ports.EventPublisher,
) CancelPartialDeliveryCommandHandler {
	return CancelPartialDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the cancellation command.
func (h CancelPartialDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelPartialDeliveryCommand) error {
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

	if err = aggregate.Cancel(); err != nil {
		return err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, events.DeliveryCancelled{
		PartialDeliveryID: aggregate.ID(),
		Reason:            cmd.Reason(),
	})

	return nil
}
