package deliveryrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"
)

// GormPartialDeliveryRepository implements PartialDeliveryRepository using GORM.
type GormPartialDeliveryRepository struct {
	db *gorm.DB
}

// NewGormPartialDeliveryRepository creates a new GORM chain repository.
func NewGormPartialDeliveryRepository(db *gorm.DB) *GormPartialDeliveryRepository {
	return &GormPartialDeliveryRepository{db: db}
}

// Add saves a new chain with all its segments.
func (r *GormPartialDeliveryRepository) Add(ctx context.Context, aggregate *delivery.PartialDelivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing chain and its segments. Updates go through
// explicit column lists so cleared fields (a segment losing its courier on
// failure) reach the database.
func (r *GormPartialDeliveryRepository) Update(ctx context.Context, aggregate *delivery.PartialDelivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&PartialDeliveryDTO{}).
		Where("id = ?", dto.ID).
		Update("status", dto.Status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("partial_delivery", aggregate.ID().String())
	}

	for _, segment := range dto.Segments {
		segmentResult := r.db.WithContext(ctx).Model(&SegmentDTO{}).
			Where("id = ?", segment.ID).
			Updates(map[string]any{
				"courier_id":  segment.CourierID,
				"status":      segment.Status,
				"reproposals": segment.Reproposals,
			})
		if segmentResult.Error != nil {
			return segmentResult.Error
		}
		if segmentResult.RowsAffected == 0 {
			return errs.NewObjectNotFoundError("segment", segment.ID.String())
		}
	}
	return nil
}

// Get retrieves a chain by ID with its segments in sequence order.
func (r *GormPartialDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.PartialDelivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.getByChainID(ctx, id.Bytes())
}

// GetBySegment retrieves the chain owning the given segment.
func (r *GormPartialDeliveryRepository) GetBySegment(ctx context.Context, segmentID kernel.UUID) (*delivery.PartialDelivery, error) {
	if err := segmentID.Validate(); err != nil {
		return nil, err
	}

	var segment SegmentDTO
	if err := r.db.WithContext(ctx).First(&segment, "id = ?", segmentID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("segment", segmentID.String())
		}
		return nil, err
	}

	return r.getByChainID(ctx, segment.PartialDeliveryID)
}

// GetAllActive retrieves every chain in Active status.
func (r *GormPartialDeliveryRepository) GetAllActive(ctx context.Context) ([]*delivery.PartialDelivery, error) {
	var dtos []PartialDeliveryDTO
	err := r.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_index")
		}).
		Find(&dtos, "status = ?", delivery.StatusActive.String()).Error
	if err != nil {
		return nil, err
	}

	chains := make([]*delivery.PartialDelivery, 0, len(dtos))
	for _, dto := range dtos {
		chain, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		chains = append(chains, chain)
	}
	return chains, nil
}

// AssignSegment atomically claims a proposed, unassigned segment for the
// courier. The guarded update is the linearization point of the accept
// operation: exactly one of several concurrent claimants flips the row.
// Re-claiming a segment the courier already owns succeeds without a write.
func (r *GormPartialDeliveryRepository) AssignSegment(ctx context.Context, segmentID, courierID kernel.UUID) error {
	if err := errors.Join(segmentID.Validate(), courierID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&SegmentDTO{}).
		Where("id = ? AND courier_id IS NULL AND status = ?",
			segmentID.Bytes(), delivery.SegmentProposed.String()).
		Updates(map[string]any{
			"courier_id": courierID.Bytes(),
			"status":     delivery.SegmentAccepted.String(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var segment SegmentDTO
	if err := r.db.WithContext(ctx).First(&segment, "id = ?", segmentID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("segment", segmentID.String())
		}
		return err
	}

	if segment.CourierID != nil && *segment.CourierID == courierID.Bytes() {
		return nil
	}
	return delivery.ErrSegmentAlreadyAssigned
}

func (r *GormPartialDeliveryRepository) getByChainID(ctx context.Context, id uuid.UUID) (*delivery.PartialDelivery, error) {
	var dto PartialDeliveryDTO
	err := r.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_index")
		}).
		First(&dto, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			chainID, _ := kernel.UUIDFromBytes(id[:])
			return nil, errs.NewObjectNotFoundError("partial_delivery", chainID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
