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

// GetHandoverQueryHandler reads one handover from the database. The
// verification code is redacted unless the requester is the courier who
// initiated the handover (the owner of the outgoing segment).
type GetHandoverQueryHandler struct {
	db *gorm.DB
}

// NewGetHandoverQueryHandler creates a handler for handover lookups.
// Requires a GORM database connection for query execution.
func NewGetHandoverQueryHandler(db *gorm.DB) GetHandoverQueryHandler {
	return GetHandoverQueryHandler{db: db}
}

// Handle executes the lookup.
func (h GetHandoverQueryHandler) Handle(
	ctx context.Context,
	query GetHandoverQuery,
) (GetHandoverQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetHandoverQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			h.id,
			h.partial_delivery_id,
			h.from_segment_id,
			h.to_segment_id,
			h.latitude,
			h.longitude,
			h.label,
			h.estimated_time,
			h.status,
			h.attempts,
			h.verification_code,
			s.courier_id
		FROM handovers h
		JOIN segments s ON s.id = h.from_segment_id
		WHERE h.id = ?
	`, query.HandoverID().Bytes()).Row()

	var id, deliveryID, fromID, toID uuid.UUID
	var fromCourier uuid.NullUUID
	var response GetHandoverQueryResponse
	var estimatedTime time.Time
	var code string

	err := row.Scan(
		&id,
		&deliveryID,
		&fromID,
		&toID,
		&response.Location.Latitude,
		&response.Location.Longitude,
		&response.Location.Label,
		&estimatedTime,
		&response.Status,
		&response.Attempts,
		&code,
		&fromCourier,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return GetHandoverQueryResponse{}, errs.NewObjectNotFoundError("handoverID", query.HandoverID())
		}
		return GetHandoverQueryResponse{}, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetHandoverQueryResponse{}, err
	}
	if response.PartialDeliveryID, err = kernel.UUIDFromBytes(deliveryID[:]); err != nil {
		return GetHandoverQueryResponse{}, err
	}
	if response.FromSegmentID, err = kernel.UUIDFromBytes(fromID[:]); err != nil {
		return GetHandoverQueryResponse{}, err
	}
	if response.ToSegmentID, err = kernel.UUIDFromBytes(toID[:]); err != nil {
		return GetHandoverQueryResponse{}, err
	}
	response.EstimatedTime = estimatedTime

	if fromCourier.Valid {
		owner, ownerErr := kernel.UUIDFromBytes(fromCourier.UUID[:])
		if ownerErr != nil {
			return GetHandoverQueryResponse{}, ownerErr
		}
		if owner.IsEqual(query.RequestedBy()) {
			response.VerificationCode = code
		}
	}

	return response, nil
}
