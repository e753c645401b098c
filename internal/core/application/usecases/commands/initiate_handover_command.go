package commands

import (
	"errors"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrInitiateHandoverCommandIsNotConstructed = errors.New(
	"InitiateHandoverCommand must be created via NewInitiateHandoverCommand constructor",
)

// InitiateHandoverCommand represents the courier of an in-progress segment
// proposing a meeting point and time for handing the package to the next
// segment's courier.
type InitiateHandoverCommand struct { //nolint:recvcheck //using for validation
	handoverID    kernel.UUID
	fromSegmentID kernel.UUID
	courierID     kernel.UUID
	location      kernel.GeoPoint
	estimatedTime time.Time

	guard guard.ConstructorGuard
}

// NewInitiateHandoverCommand creates a command to initiate a handover from
// the given segment at the given meeting point.
func NewInitiateHandoverCommand(
	handoverID, fromSegmentID, courierID kernel.UUID,
	location kernel.GeoPoint,
	estimatedTime time.Time,
) (InitiateHandoverCommand, error) {
	if err := errors.Join(
		handoverID.Validate(),
		fromSegmentID.Validate(),
		courierID.Validate(),
		location.Validate(),
	); err != nil {
		return InitiateHandoverCommand{}, err
	}

	return InitiateHandoverCommand{
		handoverID:    handoverID,
		fromSegmentID: fromSegmentID,
		courierID:     courierID,
		location:      location,
		estimatedTime: estimatedTime,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c InitiateHandoverCommand) Validate() error {
	return c.guard.Validate(ErrInitiateHandoverCommandIsNotConstructed)
}

// HandoverID returns the identifier for the new handover.
func (c InitiateHandoverCommand) HandoverID() kernel.UUID {
	return c.handoverID
}

// FromSegmentID returns the outgoing courier's segment.
func (c InitiateHandoverCommand) FromSegmentID() kernel.UUID {
	return c.fromSegmentID
}

// CourierID returns the initiating courier.
func (c InitiateHandoverCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the proposed meeting point.
func (c InitiateHandoverCommand) Location() kernel.GeoPoint {
	return c.location
}

// EstimatedTime returns the proposed meeting time.
func (c InitiateHandoverCommand) EstimatedTime() time.Time {
	return c.estimatedTime
}
