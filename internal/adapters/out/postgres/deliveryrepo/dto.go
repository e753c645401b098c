// Package deliveryrepo persists the partial delivery aggregate. The chain
// and its segments map to two tables; the segment rows carry the claim state
// the compare-and-set in AssignSegment linearizes on.
package deliveryrepo

import (
	"time"

	"github.com/google/uuid"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
)

// PartialDeliveryDTO is the chain row.
type PartialDeliveryDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OriginalJobID uuid.UUID `gorm:"type:uuid;index"`
	Status        string    `gorm:"index"`
	CreatedAt     time.Time
	Segments      []SegmentDTO `gorm:"foreignKey:PartialDeliveryID"`
}

// TableName overrides GORM's default naming.
func (PartialDeliveryDTO) TableName() string {
	return "partial_deliveries"
}

// SegmentDTO is one segment row. EstimatedDuration is stored as
// nanoseconds.
type SegmentDTO struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey"`
	PartialDeliveryID   uuid.UUID   `gorm:"type:uuid;index"`
	SequenceIndex       int         `gorm:"index"`
	CourierID           *uuid.UUID  `gorm:"type:uuid;index"`
	Start               GeoPointDTO `gorm:"embedded;embeddedPrefix:start_"`
	End                 GeoPointDTO `gorm:"embedded;embeddedPrefix:end_"`
	DistanceKm          float64
	EstimatedDuration   int64
	DurationApproximate bool
	CostCents           int64
	Status              string `gorm:"index"`
	Reproposals         int
}

// TableName overrides GORM's default naming.
func (SegmentDTO) TableName() string {
	return "segments"
}

// GeoPointDTO is an embedded coordinate pair with its display label.
type GeoPointDTO struct {
	Latitude  float64
	Longitude float64
	Label     string
}

func fromGeoPoint(point kernel.GeoPoint) GeoPointDTO {
	return GeoPointDTO{
		Latitude:  point.Latitude(),
		Longitude: point.Longitude(),
		Label:     point.Label(),
	}
}

func (dto GeoPointDTO) toDomain() (kernel.GeoPoint, error) {
	return kernel.NewGeoPoint(dto.Latitude, dto.Longitude, dto.Label)
}

// fromDomain converts a chain aggregate with its segments to row form.
func fromDomain(aggregate *delivery.PartialDelivery) PartialDeliveryDTO {
	segments := make([]SegmentDTO, 0, len(aggregate.Segments()))
	for _, segment := range aggregate.Segments() {
		segments = append(segments, fromSegment(segment))
	}

	return PartialDeliveryDTO{
		ID:            aggregate.ID().Bytes(),
		OriginalJobID: aggregate.OriginalJobID().Bytes(),
		Status:        aggregate.Status().String(),
		CreatedAt:     aggregate.CreatedAt(),
		Segments:      segments,
	}
}

func fromSegment(segment *delivery.Segment) SegmentDTO {
	var courierID *uuid.UUID
	if id := segment.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	return SegmentDTO{
		ID:                  segment.ID().Bytes(),
		PartialDeliveryID:   segment.PartialDeliveryID().Bytes(),
		SequenceIndex:       segment.SequenceIndex(),
		CourierID:           courierID,
		Start:               fromGeoPoint(segment.StartPoint()),
		End:                 fromGeoPoint(segment.EndPoint()),
		DistanceKm:          segment.DistanceKm(),
		EstimatedDuration:   int64(segment.EstimatedDuration()),
		DurationApproximate: segment.DurationApproximate(),
		CostCents:           segment.CostCents(),
		Status:              segment.Status().String(),
		Reproposals:         segment.Reproposals(),
	}
}

// toDomain rebuilds the aggregate from its rows. Segments must arrive in
// sequence order.
func toDomain(dto PartialDeliveryDTO) (*delivery.PartialDelivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	originalJobID, err := kernel.UUIDFromBytes(dto.OriginalJobID[:])
	if err != nil {
		return nil, err
	}
	status, err := delivery.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	segments := make([]*delivery.Segment, 0, len(dto.Segments))
	for _, segmentDTO := range dto.Segments {
		segment, segmentErr := toSegment(segmentDTO)
		if segmentErr != nil {
			return nil, segmentErr
		}
		segments = append(segments, segment)
	}

	return delivery.RestorePartialDelivery(id, originalJobID, status, dto.CreatedAt, segments)
}

func toSegment(dto SegmentDTO) (*delivery.Segment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	partialDeliveryID, err := kernel.UUIDFromBytes(dto.PartialDeliveryID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	start, err := dto.Start.toDomain()
	if err != nil {
		return nil, err
	}
	end, err := dto.End.toDomain()
	if err != nil {
		return nil, err
	}
	status, err := delivery.SegmentStatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreSegment(
		id, partialDeliveryID,
		dto.SequenceIndex,
		courierID,
		start, end,
		dto.DistanceKm,
		time.Duration(dto.EstimatedDuration),
		dto.DurationApproximate,
		dto.CostCents,
		status,
		dto.Reproposals,
	)
}
