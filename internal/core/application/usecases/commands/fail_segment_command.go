package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrFailSegmentCommandIsNotConstructed = errors.New(
	"FailSegmentCommand must be created via NewFailSegmentCommand constructor",
)

// FailSegmentCommand represents the owning courier abandoning their segment,
// or the staleness job failing it on the courier's behalf.
type FailSegmentCommand struct { //nolint:recvcheck //using for validation
	segmentID kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewFailSegmentCommand creates a command to fail an assigned segment.
func NewFailSegmentCommand(segmentID, courierID kernel.UUID) (FailSegmentCommand, error) {
	cmd := FailSegmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSegmentID(segmentID),
		cmd.setCourierID(courierID),
	); err != nil {
		return FailSegmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c FailSegmentCommand) Validate() error {
	return c.guard.Validate(ErrFailSegmentCommandIsNotConstructed)
}

// SegmentID returns the segment being failed.
func (c FailSegmentCommand) SegmentID() kernel.UUID {
	return c.segmentID
}

// CourierID returns the courier abandoning the segment.
func (c FailSegmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *FailSegmentCommand) setSegmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.segmentID = id
	return nil
}

func (c *FailSegmentCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}
