package commands

import (
	"context"
	"time"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/ports"
)

// ExpireHandoversCommandHandler abandons handovers whose confirmation
// window has elapsed while the incoming segment is still unclaimed. Runs
// from the timeout job; a single sweep abandons every overdue handover in
// one transaction.
type ExpireHandoversCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	window     time.Duration
}

// NewExpireHandoversCommandHandler creates the sweep handler. The window is
// how long a handover may await confirmation before it expires.
func NewExpireHandoversCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	window time.Duration,
) ExpireHandoversCommandHandler {
	return ExpireHandoversCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		window:     window,
	}
}

// Handle abandons every overdue handover whose incoming segment has no
// assigned courier. A handover with a claimed incoming segment keeps
// waiting: the confirming courier exists and may still show up. Returns the
// number of abandoned handovers.
func (h ExpireHandoversCommandHandler) Handle(ctx context.Context, cmd ExpireHandoversCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	handoverRepo := uow.HandoverRepository()
	deliveryRepo := uow.PartialDeliveryRepository()

	cutoff := time.Now().UTC().Add(-h.window)
	overdue, err := handoverRepo.GetAwaitingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	abandoned := make([]events.HandoverAbandoned, 0, len(overdue))
	for _, pending := range overdue {
		chain, err := deliveryRepo.Get(ctx, pending.PartialDeliveryID())
		if err != nil {
			return 0, err
		}
		incoming, err := chain.SegmentByID(pending.ToSegmentID())
		if err != nil {
			return 0, err
		}
		if incoming.Courier() != nil {
			continue
		}

		if err := pending.Abandon(); err != nil {
			return 0, err
		}
		if err := handoverRepo.Update(ctx, pending); err != nil {
			return 0, err
		}

		abandoned = append(abandoned, events.HandoverAbandoned{
			PartialDeliveryID: pending.PartialDeliveryID(),
			HandoverID:        pending.ID(),
			FromSegmentID:     pending.FromSegmentID(),
		})
	}

	if len(abandoned) == 0 {
		return 0, nil
	}
	if err := uow.Commit(ctx); err != nil {
		return 0, err
	}

	for _, event := range abandoned {
		_ = h.publisher.Publish(ctx, event)
	}
	return len(abandoned), nil
}
