package ws

import (
	"encoding/json"
	"time"
)

// Inbound message types accepted from clients.
const (
	TypeAuth             = "auth"
	TypeSubscribe        = "subscribe"
	TypeAcceptSegment    = "accept_segment"
	TypeStartSegment     = "start_segment"
	TypeCompleteSegment  = "complete_segment"
	TypeFailSegment      = "fail_segment"
	TypeInitiateHandover = "initiate_handover"
	TypeConfirmHandover  = "confirm_handover"
	TypeSendChatMessage  = "send_chat_message"
	TypeUpdateLocation   = "update_location"
)

// Outbound message types sent directly to one client, outside the room
// fan-out.
const (
	TypeAuthOK       = "auth_ok"
	TypeError        = "error"
	TypeHandoverCode = "handover_code"
)

// inboundMessage is the frame every client message arrives in. Data is
// decoded per Type.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type authPayload struct {
	Token string `json:"token"`
}

type subscribePayload struct {
	PartialDeliveryID string `json:"partial_delivery_id"`
}

type segmentPayload struct {
	SegmentID string `json:"segment_id"`
}

type initiateHandoverPayload struct {
	FromSegmentID string    `json:"from_segment_id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Label         string    `json:"label"`
	EstimatedTime time.Time `json:"estimated_time"`
}

type confirmHandoverPayload struct {
	HandoverID       string `json:"handover_id"`
	VerificationCode string `json:"verification_code"`
}

type sendChatMessagePayload struct {
	PartialDeliveryID string `json:"partial_delivery_id"`
	Content           string `json:"content"`
}

type updateLocationPayload struct {
	PartialDeliveryID string  `json:"partial_delivery_id"`
	SegmentID         string  `json:"segment_id"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type authOKPayload struct {
	ParticipantID string `json:"participant_id"`
	Role          string `json:"role"`
}

type handoverCodePayload struct {
	HandoverID       string `json:"handover_id"`
	VerificationCode string `json:"verification_code"`
}
