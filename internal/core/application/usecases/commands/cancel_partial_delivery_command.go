package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrCancelPartialDeliveryCommandIsNotConstructed = errors.New(
	"CancelPartialDeliveryCommand must be created via NewCancelPartialDeliveryCommand constructor",
)

// CancelPartialDeliveryCommand represents a request to abort a chain and
// withdraw all of its open segments.
type CancelPartialDeliveryCommand struct { //nolint:recvcheck //using for validation
	partialDeliveryID kernel.UUID
	reason            string

	guard guard.ConstructorGuard
}

// NewCancelPartialDeliveryCommand creates a command to cancel a chain.
// The reason is free text shown to room participants and may be empty.
func NewCancelPartialDeliveryCommand(partialDeliveryID kernel.UUID, reason string) (CancelPartialDeliveryCommand, error) {
	if err := partialDeliveryID.Validate(); err != nil {
		return CancelPartialDeliveryCommand{}, err
	}

	return CancelPartialDeliveryCommand{
		partialDeliveryID: partialDeliveryID,
		reason:            reason,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelPartialDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelPartialDeliveryCommandIsNotConstructed)
}

// PartialDeliveryID returns the chain to cancel.
func (c CancelPartialDeliveryCommand) PartialDeliveryID() kernel.UUID {
	return c.partialDeliveryID
}

// Reason returns the free-text cancellation reason.
func (c CancelPartialDeliveryCommand) Reason() string {
	return c.reason
}
