package queries

import (
	"context"
	"database/sql"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPartialDeliveryQueryHandler reads one chain and its segments from the
// database.
type GetPartialDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewGetPartialDeliveryQueryHandler creates a handler for chain lookups.
// Requires a GORM database connection for query execution.
func NewGetPartialDeliveryQueryHandler(db *gorm.DB) GetPartialDeliveryQueryHandler {
	return GetPartialDeliveryQueryHandler{db: db}
}

// Handle executes the lookup. Segments come back ordered by sequence index,
// which is the route order.
func (h GetPartialDeliveryQueryHandler) Handle(
	ctx context.Context,
	query GetPartialDeliveryQuery,
) (GetPartialDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPartialDeliveryQueryResponse{}, err
	}

	var response GetPartialDeliveryQueryResponse

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			original_job_id,
			status,
			created_at
		FROM partial_deliveries
		WHERE id = ?
	`, query.PartialDeliveryID().Bytes()).Row()

	var id, jobID uuid.UUID
	var status string
	var createdAt time.Time
	if err := row.Scan(&id, &jobID, &status, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return GetPartialDeliveryQueryResponse{}, errs.NewObjectNotFoundError(
				"partialDeliveryID", query.PartialDeliveryID())
		}
		return GetPartialDeliveryQueryResponse{}, err
	}

	deliveryID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetPartialDeliveryQueryResponse{}, err
	}
	originalJobID, err := kernel.UUIDFromBytes(jobID[:])
	if err != nil {
		return GetPartialDeliveryQueryResponse{}, err
	}

	response.ID = deliveryID
	response.OriginalJobID = originalJobID
	response.Status = status
	response.CreatedAt = createdAt

	segments, err := h.fetchSegments(ctx, query.PartialDeliveryID())
	if err != nil {
		return GetPartialDeliveryQueryResponse{}, err
	}
	response.Segments = segments

	return response, nil
}

func (h GetPartialDeliveryQueryHandler) fetchSegments(
	ctx context.Context,
	partialDeliveryID kernel.UUID,
) ([]SegmentResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			sequence_index,
			courier_id,
			start_latitude,
			start_longitude,
			start_label,
			end_latitude,
			end_longitude,
			end_label,
			distance_km,
			estimated_duration,
			duration_approximate,
			cost_cents,
			status,
			reproposals
		FROM segments
		WHERE partial_delivery_id = ?
		ORDER BY sequence_index
	`, partialDeliveryID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := make([]SegmentResponse, 0)
	for rows.Next() {
		var segment SegmentResponse
		var id uuid.UUID
		var courierID uuid.NullUUID
		var durationNanos int64

		err = rows.Scan(
			&id,
			&segment.SequenceIndex,
			&courierID,
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
			&segment.Status,
			&segment.Reproposals,
		)
		if err != nil {
			return nil, err
		}

		segmentID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		segment.ID = segmentID
		segment.EstimatedDuration = time.Duration(durationNanos)

		if courierID.Valid {
			courier, courierErr := kernel.UUIDFromBytes(courierID.UUID[:])
			if courierErr != nil {
				return nil, courierErr
			}
			segment.CourierID = &courier
		}

		segments = append(segments, segment)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return segments, nil
}
