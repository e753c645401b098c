// Package events defines the notification payloads published to coordination
// channel rooms. Every event names the partial delivery it belongs to so the
// publisher can route it to the right room.
package events

import (
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
)

// Event is a coordination channel notification. EventType returns the wire
// name used in the message envelope, RoomID the partial delivery whose room
// receives it.
type Event interface {
	EventType() string
	RoomID() kernel.UUID
}

type SegmentAvailable struct {
	PartialDeliveryID   kernel.UUID     `json:"partial_delivery_id"`
	SegmentID           kernel.UUID     `json:"segment_id"`
	SequenceIndex       int             `json:"sequence_index"`
	StartPoint          kernel.GeoCoord `json:"start_point"`
	EndPoint            kernel.GeoCoord `json:"end_point"`
	DistanceKm          float64         `json:"distance_km"`
	EstimatedDuration   time.Duration   `json:"estimated_duration"`
	DurationApproximate bool            `json:"duration_approximate"`
	CostCents           int64           `json:"cost_cents"`
}

func (e SegmentAvailable) EventType() string   { return "segment_available" }
func (e SegmentAvailable) RoomID() kernel.UUID { return e.PartialDeliveryID }

type SegmentAccepted struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	SegmentID         kernel.UUID `json:"segment_id"`
	SequenceIndex     int         `json:"sequence_index"`
	CourierID         kernel.UUID `json:"courier_id"`
}

func (e SegmentAccepted) EventType() string   { return "segment_accepted" }
func (e SegmentAccepted) RoomID() kernel.UUID { return e.PartialDeliveryID }

type SegmentStatusChanged struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	SegmentID         kernel.UUID `json:"segment_id"`
	SequenceIndex     int         `json:"sequence_index"`
	Status            string      `json:"status"`
}

func (e SegmentStatusChanged) EventType() string   { return "segment_status_changed" }
func (e SegmentStatusChanged) RoomID() kernel.UUID { return e.PartialDeliveryID }

type DeliveryStatusChanged struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	Status            string      `json:"status"`
}

func (e DeliveryStatusChanged) EventType() string   { return "delivery_status_changed" }
func (e DeliveryStatusChanged) RoomID() kernel.UUID { return e.PartialDeliveryID }

type DeliveryCancelled struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	Reason            string      `json:"reason"`
}

func (e DeliveryCancelled) EventType() string   { return "delivery_cancelled" }
func (e DeliveryCancelled) RoomID() kernel.UUID { return e.PartialDeliveryID }

type HandoverInitiated struct {
	PartialDeliveryID kernel.UUID     `json:"partial_delivery_id"`
	HandoverID        kernel.UUID     `json:"handover_id"`
	FromSegmentID     kernel.UUID     `json:"from_segment_id"`
	ToSegmentID       kernel.UUID     `json:"to_segment_id"`
	Location          kernel.GeoCoord `json:"location"`
	EstimatedTime     time.Time       `json:"estimated_time"`
}

func (e HandoverInitiated) EventType() string   { return "handover_initiated" }
func (e HandoverInitiated) RoomID() kernel.UUID { return e.PartialDeliveryID }

// HandoverAbandoned tells the room a handover expired unconfirmed. The
// courier of the outgoing segment holds the package until the chain moves
// again.
type HandoverAbandoned struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	HandoverID        kernel.UUID `json:"handover_id"`
	FromSegmentID     kernel.UUID `json:"from_segment_id"`
}

func (e HandoverAbandoned) EventType() string   { return "handover_abandoned" }
func (e HandoverAbandoned) RoomID() kernel.UUID { return e.PartialDeliveryID }

type HandoverConfirmed struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	HandoverID        kernel.UUID `json:"handover_id"`
	ConfirmedBy       kernel.UUID `json:"confirmed_by"`
}

func (e HandoverConfirmed) EventType() string   { return "handover_confirmed" }
func (e HandoverConfirmed) RoomID() kernel.UUID { return e.PartialDeliveryID }

// LocationUpdate is a courier position report tied to the segment the
// courier is working. Staleness tracking keys on the courier and segment
// pair, so one courier riding several segments of a chain is tracked per
// segment.
type LocationUpdate struct {
	PartialDeliveryID kernel.UUID     `json:"partial_delivery_id"`
	CourierID         kernel.UUID     `json:"courier_id"`
	SegmentID         kernel.UUID     `json:"segment_id"`
	Location          kernel.GeoCoord `json:"location"`
	ReportedAt        time.Time       `json:"reported_at"`
}

func (e LocationUpdate) EventType() string   { return "location_update" }
func (e LocationUpdate) RoomID() kernel.UUID { return e.PartialDeliveryID }

type ChatMessage struct {
	PartialDeliveryID kernel.UUID `json:"partial_delivery_id"`
	MessageID         kernel.UUID `json:"message_id"`
	SenderID          kernel.UUID `json:"sender_id"`
	Content           string      `json:"content"`
	Timestamp         time.Time   `json:"timestamp"`
}

func (e ChatMessage) EventType() string   { return "chat_message" }
func (e ChatMessage) RoomID() kernel.UUID { return e.PartialDeliveryID }
