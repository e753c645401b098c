package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrCompleteSegmentCommandIsNotConstructed = errors.New(
	"CompleteSegmentCommand must be created via NewCompleteSegmentCommand constructor",
)

// CompleteSegmentCommand represents the owning courier reporting that their
// leg is done: the package was handed over or delivered to the recipient.
type CompleteSegmentCommand struct { //nolint:recvcheck //using for validation
	segmentID kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCompleteSegmentCommand creates a command for a courier to complete their segment.
func NewCompleteSegmentCommand(segmentID, courierID kernel.UUID) (CompleteSegmentCommand, error) {
	cmd := CompleteSegmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSegmentID(segmentID),
		cmd.setCourierID(courierID),
	); err != nil {
		return CompleteSegmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteSegmentCommand) Validate() error {
	return c.guard.Validate(ErrCompleteSegmentCommandIsNotConstructed)
}

// SegmentID returns the segment being completed.
func (c CompleteSegmentCommand) SegmentID() kernel.UUID {
	return c.segmentID
}

// CourierID returns the reporting courier.
func (c CompleteSegmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *CompleteSegmentCommand) setSegmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.segmentID = id
	return nil
}

func (c *CompleteSegmentCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}
