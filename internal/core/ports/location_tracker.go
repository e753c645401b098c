package ports

import (
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
)

// StaleCourier identifies a courier whose location reports for one segment
// went silent in a room.
type StaleCourier struct {
	PartialDeliveryID kernel.UUID
	CourierID         kernel.UUID
	SegmentID         kernel.UUID
	LastSeen          time.Time
}

// LocationTracker exposes the staleness view of courier location reports.
// Couriers that never reported in a room are not listed; only ones that
// reported and then went silent.
type LocationTracker interface {
	StaleCouriers(olderThan time.Duration) []StaleCourier
}
