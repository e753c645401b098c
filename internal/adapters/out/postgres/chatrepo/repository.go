package chatrepo

import (
	"context"

	"gorm.io/gorm"

	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/domain/model/kernel"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Add appends a message. Messages are never updated or deleted.
func (r *GormChatRepository) Add(ctx context.Context, message *chat.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := fromDomain(message)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetByPartialDelivery retrieves the full history of a chain's chat, oldest
// first.
func (r *GormChatRepository) GetByPartialDelivery(ctx context.Context, partialDeliveryID kernel.UUID) ([]*chat.Message, error) {
	if err := partialDeliveryID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ChatMessageDTO
	err := r.db.WithContext(ctx).
		Where("partial_delivery_id = ?", partialDeliveryID.Bytes()).
		Order("sent_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*chat.Message, 0, len(dtos))
	for _, dto := range dtos {
		message, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		messages = append(messages, message)
	}
	return messages, nil
}
