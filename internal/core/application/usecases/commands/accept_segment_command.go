package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrAcceptSegmentCommandIsNotConstructed = errors.New(
	"AcceptSegmentCommand must be created via NewAcceptSegmentCommand constructor",
)

// AcceptSegmentCommand represents a courier's claim on a proposed segment.
// When several couriers race for the same segment, exactly one claim
// succeeds; the rest observe delivery.ErrSegmentAlreadyAssigned.
type AcceptSegmentCommand struct { //nolint:recvcheck //using for validation
	segmentID kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptSegmentCommand creates a command for a courier to claim a segment.
func NewAcceptSegmentCommand(segmentID, courierID kernel.UUID) (AcceptSegmentCommand, error) {
	cmd := AcceptSegmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSegmentID(segmentID),
		cmd.setCourierID(courierID),
	); err != nil {
		return AcceptSegmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptSegmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptSegmentCommandIsNotConstructed)
}

// SegmentID returns the segment being claimed.
func (c AcceptSegmentCommand) SegmentID() kernel.UUID {
	return c.segmentID
}

// CourierID returns the claiming courier.
func (c AcceptSegmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AcceptSegmentCommand) setSegmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.segmentID = id
	return nil
}

func (c *AcceptSegmentCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}
