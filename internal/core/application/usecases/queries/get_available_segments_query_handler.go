package queries

import (
	"context"
	"time"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableSegmentsQueryHandler retrieves claimable segments from the
// database. Only proposed segments of active chains count; a proposed
// segment of a pending or cancelled chain is not claimable.
type GetAvailableSegmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableSegmentsQueryHandler creates a handler for open segment
// queries. Requires a GORM database connection for query execution.
func NewGetAvailableSegmentsQueryHandler(db *gorm.DB) GetAvailableSegmentsQueryHandler {
	return GetAvailableSegmentsQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by chain and sequence index
// for consistent output.
func (h GetAvailableSegmentsQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableSegmentsQuery,
) ([]AvailableSegmentResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			s.id,
			s.partial_delivery_id,
			s.sequence_index,
			s.start_latitude,
			s.start_longitude,
			s.start_label,
			s.end_latitude,
			s.end_longitude,
			s.end_label,
			s.distance_km,
			s.estimated_duration,
			s.duration_approximate,
			s.cost_cents
		FROM segments s
		JOIN partial_deliveries d ON d.id = s.partial_delivery_id
		WHERE s.status = ? AND d.status = ?
		ORDER BY s.partial_delivery_id, s.sequence_index
	`, delivery.SegmentProposed.String(), delivery.StatusActive.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := make([]AvailableSegmentResponse, 0)
	for rows.Next() {
		var segment AvailableSegmentResponse
		var id, deliveryID uuid.UUID
		var durationNanos int64

		err = rows.Scan(
			&id,
			&deliveryID,
			&segment.SequenceIndex,
			&segment.Start.Latitude,
			&segment.Start.Longitude,
			&segment.Start.Label,
			&segment.End.Latitude,
			&segment.End.Longitude,
			&segment.End.Label,
			&segment.DistanceKm,
			&durationNanos,
			&segment.DurationApproximate,
			&segment.CostCents,
		)
		if err != nil {
			return nil, err
		}

		segmentID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		chainID, idErr := kernel.UUIDFromBytes(deliveryID[:])
		if idErr != nil {
			return nil, idErr
		}

		segment.SegmentID = segmentID
		segment.PartialDeliveryID = chainID
		segment.EstimatedDuration = time.Duration(durationNanos)
		segments = append(segments, segment)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return segments, nil
}
