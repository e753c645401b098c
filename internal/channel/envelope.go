// Package channel implements the in-process coordination channel. Every
// partial delivery has one room; all participants of that delivery share it.
// Events are fanned out to room subscribers with a per-room sequence number,
// delivery is best effort and at most once.
package channel

import (
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
)

// Envelope is the framed message delivered to room subscribers. Seq is
// assigned per room and increases monotonically, so a subscriber can detect
// a missed message by a gap in the sequence.
type Envelope struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Data any    `json:"data"`
}

// Connection is one subscriber endpoint. A participant with several devices
// holds several connections in the same room.
type Connection interface {
	// Send delivers one envelope. An error marks the connection dead and
	// removes it from the room.
	Send(envelope Envelope) error
}

// CourierLocation is the last reported position of a courier on a segment.
type CourierLocation struct {
	CourierID  kernel.UUID     `json:"courier_id"`
	SegmentID  kernel.UUID     `json:"segment_id"`
	Location   kernel.GeoCoord `json:"location"`
	ReportedAt time.Time       `json:"reported_at"`
	// LastSeen is the server time the report arrived, used for staleness
	// detection independent of the client clock.
	LastSeen time.Time `json:"last_seen"`
}
