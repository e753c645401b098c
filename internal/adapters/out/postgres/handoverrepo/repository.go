package handoverrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"partialdelivery/internal/core/domain/model/handover"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"
)

// GormHandoverRepository implements HandoverRepository using GORM.
type GormHandoverRepository struct {
	db *gorm.DB
}

// NewGormHandoverRepository creates a new GORM handover repository.
func NewGormHandoverRepository(db *gorm.DB) *GormHandoverRepository {
	return &GormHandoverRepository{db: db}
}

// Add saves a new handover.
func (r *GormHandoverRepository) Add(ctx context.Context, aggregate *handover.Handover) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves the mutable protocol state of an existing handover. The
// column list is explicit so attempt consumption persists even when the
// confirmation itself fails.
func (r *GormHandoverRepository) Update(ctx context.Context, aggregate *handover.Handover) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&HandoverDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"status":       dto.Status,
			"attempts":     dto.Attempts,
			"confirmed_by": dto.ConfirmedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("handover", aggregate.ID().String())
	}
	return nil
}

// Get retrieves a handover by ID.
func (r *GormHandoverRepository) Get(ctx context.Context, id kernel.UUID) (*handover.Handover, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto HandoverDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("handover", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetPendingBySegments retrieves the non-terminal handover between the two
// segments. At most one can exist at a time; initiation refuses a second
// while one is pending.
func (r *GormHandoverRepository) GetPendingBySegments(ctx context.Context, fromSegmentID, toSegmentID kernel.UUID) (*handover.Handover, error) {
	if err := errors.Join(fromSegmentID.Validate(), toSegmentID.Validate()); err != nil {
		return nil, err
	}

	var dto HandoverDTO
	err := r.db.WithContext(ctx).
		Where("from_segment_id = ? AND to_segment_id = ? AND status NOT IN ?",
			fromSegmentID.Bytes(), toSegmentID.Bytes(),
			[]string{handover.StatusCompleted.String(), handover.StatusCancelled.String()}).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("handover",
				fromSegmentID.String()+"->"+toSegmentID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAwaitingOlderThan retrieves handovers still awaiting confirmation that
// were created before the cutoff.
func (r *GormHandoverRepository) GetAwaitingOlderThan(ctx context.Context, cutoff time.Time) ([]*handover.Handover, error) {
	var dtos []HandoverDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", handover.StatusAwaitingConfirmation.String(), cutoff).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	handovers := make([]*handover.Handover, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		handovers = append(handovers, aggregate)
	}
	return handovers, nil
}
