package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrStartSegmentCommandIsNotConstructed = errors.New(
	"StartSegmentCommand must be created via NewStartSegmentCommand constructor",
)

// StartSegmentCommand represents the owning courier reporting pickup of the
// package for their segment.
type StartSegmentCommand struct { //nolint:recvcheck //using for validation
	segmentID kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartSegmentCommand creates a command for a courier to start their segment.
func NewStartSegmentCommand(segmentID, courierID kernel.UUID) (StartSegmentCommand, error) {
	cmd := StartSegmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSegmentID(segmentID),
		cmd.setCourierID(courierID),
	); err != nil {
		return StartSegmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c StartSegmentCommand) Validate() error {
	return c.guard.Validate(ErrStartSegmentCommandIsNotConstructed)
}

// SegmentID returns the segment being started.
func (c StartSegmentCommand) SegmentID() kernel.UUID {
	return c.segmentID
}

// CourierID returns the courier reporting pickup.
func (c StartSegmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *StartSegmentCommand) setSegmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.segmentID = id
	return nil
}

func (c *StartSegmentCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}
