package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrCreatePartialDeliveryCommandIsNotConstructed = errors.New(
	"CreatePartialDeliveryCommand must be created via NewCreatePartialDeliveryCommand constructor",
)

// CreatePartialDeliveryCommand represents a request to split an upstream
// delivery job into a chain of courier segments routed through the given
// relay points.
//
// Example:
//
//	cmd, err := NewCreatePartialDeliveryCommand(kernel.NewUUID(), jobID, relays)
//	if err != nil {
//	    return fmt.Errorf("invalid delivery data: %w", err)
//	}
//
//	handler := NewCreatePartialDeliveryCommandHandler(uowFactory, jobStore, segmenter)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create partial delivery: %w", err)
//	}
type CreatePartialDeliveryCommand struct { //nolint:recvcheck //using for validation
	partialDeliveryID kernel.UUID
	originalJobID     kernel.UUID
	relayPoints       []kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreatePartialDeliveryCommand creates a command to split a delivery job
// into segments. Relay points are the intermediate handover locations, in
// travel order; an empty list produces a single direct segment.
func NewCreatePartialDeliveryCommand(
	partialDeliveryID kernel.UUID,
	originalJobID kernel.UUID,
	relayPoints []kernel.GeoPoint,
) (CreatePartialDeliveryCommand, error) {
	cmd := CreatePartialDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setPartialDeliveryID(partialDeliveryID),
		cmd.setOriginalJobID(originalJobID),
		cmd.setRelayPoints(relayPoints),
	); err != nil {
		return CreatePartialDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreatePartialDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreatePartialDeliveryCommandIsNotConstructed)
}

// PartialDeliveryID returns the identifier for the new partial delivery.
func (c CreatePartialDeliveryCommand) PartialDeliveryID() kernel.UUID {
	return c.partialDeliveryID
}

// OriginalJobID returns the upstream delivery job being split.
func (c CreatePartialDeliveryCommand) OriginalJobID() kernel.UUID {
	return c.originalJobID
}

// RelayPoints returns the intermediate handover locations in travel order.
func (c CreatePartialDeliveryCommand) RelayPoints() []kernel.GeoPoint {
	return c.relayPoints
}

func (c *CreatePartialDeliveryCommand) setPartialDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.partialDeliveryID = id
	return nil
}

func (c *CreatePartialDeliveryCommand) setOriginalJobID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.originalJobID = id
	return nil
}

func (c *CreatePartialDeliveryCommand) setRelayPoints(points []kernel.GeoPoint) error {
	for _, point := range points {
		if err := point.Validate(); err != nil {
			return err
		}
	}

	c.relayPoints = points
	return nil
}
