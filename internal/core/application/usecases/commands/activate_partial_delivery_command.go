package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrActivatePartialDeliveryCommandIsNotConstructed = errors.New(
	"ActivatePartialDeliveryCommand must be created via NewActivatePartialDeliveryCommand constructor",
)

// ActivatePartialDeliveryCommand represents a request to open a pending
// chain's segments for courier acceptance.
type ActivatePartialDeliveryCommand struct { //nolint:recvcheck //using for validation
	partialDeliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewActivatePartialDeliveryCommand creates a command to activate a chain.
func NewActivatePartialDeliveryCommand(partialDeliveryID kernel.UUID) (ActivatePartialDeliveryCommand, error) {
	if err := partialDeliveryID.Validate(); err != nil {
		return ActivatePartialDeliveryCommand{}, err
	}

	return ActivatePartialDeliveryCommand{
		partialDeliveryID: partialDeliveryID,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ActivatePartialDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrActivatePartialDeliveryCommandIsNotConstructed)
}

// PartialDeliveryID returns the chain to activate.
func (c ActivatePartialDeliveryCommand) PartialDeliveryID() kernel.UUID {
	return c.partialDeliveryID
}
