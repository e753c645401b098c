package http

import (
	"time"

	"partialdelivery/internal/core/application/usecases/queries"
	"partialdelivery/internal/core/domain/model/kernel"
)

// Error is the uniform error body of the REST surface.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type geoPointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

type createPartialDeliveryRequest struct {
	OriginalJobID string            `json:"original_job_id"`
	RelayPoints   []geoPointRequest `json:"relay_points"`
}

type createPartialDeliveryResponse struct {
	PartialDeliveryID string `json:"partial_delivery_id"`
}

type cancelPartialDeliveryRequest struct {
	Reason string `json:"reason"`
}

type initiateHandoverRequest struct {
	FromSegmentID string    `json:"from_segment_id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Label         string    `json:"label"`
	EstimatedTime time.Time `json:"estimated_time"`
}

type initiateHandoverResponse struct {
	HandoverID string `json:"handover_id"`
	// VerificationCode is disclosed only here, to the initiating courier.
	VerificationCode string `json:"verification_code"`
}

type confirmHandoverRequest struct {
	VerificationCode string `json:"verification_code"`
}

type sendChatMessageRequest struct {
	Content string `json:"content"`
}

type sendChatMessageResponse struct {
	MessageID string `json:"message_id"`
}

type geoPointResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

func toGeoPointResponse(coord kernel.GeoCoord) geoPointResponse {
	return geoPointResponse{
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		Label:     coord.Label,
	}
}

type segmentResponse struct {
	ID                  string           `json:"id"`
	SequenceIndex       int              `json:"sequence_index"`
	CourierID           *string          `json:"courier_id,omitempty"`
	Start               geoPointResponse `json:"start"`
	End                 geoPointResponse `json:"end"`
	DistanceKm          float64          `json:"distance_km"`
	EstimatedDurationS  int64            `json:"estimated_duration_seconds"`
	DurationApproximate bool             `json:"duration_approximate"`
	CostCents           int64            `json:"cost_cents"`
	Status              string           `json:"status"`
	Reproposals         int              `json:"reproposals"`
}

func toSegmentResponse(segment queries.SegmentResponse) segmentResponse {
	response := segmentResponse{
		ID:                  segment.ID.String(),
		SequenceIndex:       segment.SequenceIndex,
		Start:               toGeoPointResponse(segment.Start),
		End:                 toGeoPointResponse(segment.End),
		DistanceKm:          segment.DistanceKm,
		EstimatedDurationS:  int64(segment.EstimatedDuration.Seconds()),
		DurationApproximate: segment.DurationApproximate,
		CostCents:           segment.CostCents,
		Status:              segment.Status,
		Reproposals:         segment.Reproposals,
	}
	if segment.CourierID != nil {
		courierID := segment.CourierID.String()
		response.CourierID = &courierID
	}
	return response
}

type partialDeliveryResponse struct {
	ID            string            `json:"id"`
	OriginalJobID string            `json:"original_job_id"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Segments      []segmentResponse `json:"segments"`
}

func toPartialDeliveryResponse(delivery queries.GetPartialDeliveryQueryResponse) partialDeliveryResponse {
	segments := make([]segmentResponse, len(delivery.Segments))
	for i, segment := range delivery.Segments {
		segments[i] = toSegmentResponse(segment)
	}

	return partialDeliveryResponse{
		ID:            delivery.ID.String(),
		OriginalJobID: delivery.OriginalJobID.String(),
		Status:        delivery.Status,
		CreatedAt:     delivery.CreatedAt,
		Segments:      segments,
	}
}

type availableSegmentResponse struct {
	SegmentID           string           `json:"segment_id"`
	PartialDeliveryID   string           `json:"partial_delivery_id"`
	SequenceIndex       int              `json:"sequence_index"`
	Start               geoPointResponse `json:"start"`
	End                 geoPointResponse `json:"end"`
	DistanceKm          float64          `json:"distance_km"`
	EstimatedDurationS  int64            `json:"estimated_duration_seconds"`
	DurationApproximate bool             `json:"duration_approximate"`
	CostCents           int64            `json:"cost_cents"`
}

func toAvailableSegmentResponse(segment queries.AvailableSegmentResponse) availableSegmentResponse {
	return availableSegmentResponse{
		SegmentID:           segment.SegmentID.String(),
		PartialDeliveryID:   segment.PartialDeliveryID.String(),
		SequenceIndex:       segment.SequenceIndex,
		Start:               toGeoPointResponse(segment.Start),
		End:                 toGeoPointResponse(segment.End),
		DistanceKm:          segment.DistanceKm,
		EstimatedDurationS:  int64(segment.EstimatedDuration.Seconds()),
		DurationApproximate: segment.DurationApproximate,
		CostCents:           segment.CostCents,
	}
}

type chatMessageResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func toChatMessageResponse(message queries.ChatMessageResponse) chatMessageResponse {
	return chatMessageResponse{
		ID:        message.ID.String(),
		SenderID:  message.SenderID.String(),
		Content:   message.Content,
		Timestamp: message.Timestamp,
	}
}

type handoverResponse struct {
	ID                string           `json:"id"`
	PartialDeliveryID string           `json:"partial_delivery_id"`
	FromSegmentID     string           `json:"from_segment_id"`
	ToSegmentID       string           `json:"to_segment_id"`
	Location          geoPointResponse `json:"location"`
	EstimatedTime     time.Time        `json:"estimated_time"`
	Status            string           `json:"status"`
	Attempts          int              `json:"attempts"`
	VerificationCode  string           `json:"verification_code,omitempty"`
}

func toHandoverResponse(handover queries.GetHandoverQueryResponse) handoverResponse {
	return handoverResponse{
		ID:                handover.ID.String(),
		PartialDeliveryID: handover.PartialDeliveryID.String(),
		FromSegmentID:     handover.FromSegmentID.String(),
		ToSegmentID:       handover.ToSegmentID.String(),
		Location:          toGeoPointResponse(handover.Location),
		EstimatedTime:     handover.EstimatedTime,
		Status:            handover.Status,
		Attempts:          handover.Attempts,
		VerificationCode:  handover.VerificationCode,
	}
}
