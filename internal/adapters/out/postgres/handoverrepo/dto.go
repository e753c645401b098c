// Package handoverrepo persists the handover aggregate. One row carries the
// whole protocol state: meeting point, verification code, attempt counter
// and lifecycle status.
package handoverrepo

import (
	"time"

	"github.com/google/uuid"

	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"
)

// HandoverDTO is the handover row.
type HandoverDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartialDeliveryID uuid.UUID `gorm:"type:uuid;index"`
	FromSegmentID     uuid.UUID `gorm:"type:uuid;index"`
	ToSegmentID       uuid.UUID `gorm:"type:uuid;index"`
	Latitude          float64
	Longitude         float64
	Label             string
	EstimatedTime     time.Time
	VerificationCode  string
	Status            string `gorm:"index"`
	Attempts          int
	ConfirmedBy       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time
}

// TableName overrides GORM's default naming.
func (HandoverDTO) TableName() string {
	return "handovers"
}

// fromDomain converts a handover aggregate to row form.
func fromDomain(aggregate *handover.Handover) HandoverDTO {
	var confirmedBy *uuid.UUID
	if id := aggregate.ConfirmedBy(); id != nil {
		raw := id.Bytes()
		confirmedBy = &raw
	}

	return HandoverDTO{
		ID:                aggregate.ID().Bytes(),
		PartialDeliveryID: aggregate.PartialDeliveryID().Bytes(),
		FromSegmentID:     aggregate.FromSegmentID().Bytes(),
		ToSegmentID:       aggregate.ToSegmentID().Bytes(),
		Latitude:          aggregate.Location().Latitude(),
		Longitude:         aggregate.Location().Longitude(),
		Label:             aggregate.Location().Label(),
		EstimatedTime:     aggregate.EstimatedTime(),
		VerificationCode:  aggregate.VerificationCode(),
		Status:            aggregate.Status().String(),
		Attempts:          aggregate.Attempts(),
		ConfirmedBy:       confirmedBy,
		CreatedAt:         aggregate.CreatedAt(),
	}
}

// toDomain rebuilds the aggregate from its row.
func toDomain(dto HandoverDTO) (*handover.Handover, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	partialDeliveryID, err := kernel.UUIDFromBytes(dto.PartialDeliveryID[:])
	if err != nil {
		return nil, err
	}
	fromSegmentID, err := kernel.UUIDFromBytes(dto.FromSegmentID[:])
	if err != nil {
		return nil, err
	}
	toSegmentID, err := kernel.UUIDFromBytes(dto.ToSegmentID[:])
	if err != nil {
		return nil, err
	}

	var confirmedBy *kernel.UUID
	if dto.ConfirmedBy != nil {
		cID, confirmedErr := kernel.UUIDFromBytes((*dto.ConfirmedBy)[:])
		if confirmedErr != nil {
			return nil, confirmedErr
		}
		confirmedBy = &cID
	}

	location, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude, dto.Label)
	if err != nil {
		return nil, err
	}
	status, err := handover.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return handover.RestoreHandover(
		id, partialDeliveryID, fromSegmentID, toSegmentID,
		location,
		dto.EstimatedTime,
		dto.VerificationCode,
		status,
		dto.Attempts,
		confirmedBy,
		dto.CreatedAt,
	)
}
