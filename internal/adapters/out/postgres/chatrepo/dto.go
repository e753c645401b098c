// Package chatrepo persists coordination channel chat messages. The table
// is append only; ordering is the server-assigned timestamp with the ID as
// a tiebreaker.
package chatrepo

import (
	"time"

	"github.com/google/uuid"

	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/domain/model/kernel"
)

// ChatMessageDTO is one chat message row.
type ChatMessageDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartialDeliveryID uuid.UUID `gorm:"type:uuid;index"`
	SenderID          uuid.UUID `gorm:"type:uuid"`
	Content           string
	SentAt            time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming.
func (ChatMessageDTO) TableName() string {
	return "chat_messages"
}

func fromDomain(message *chat.Message) ChatMessageDTO {
	return ChatMessageDTO{
		ID:                message.ID().Bytes(),
		PartialDeliveryID: message.PartialDeliveryID().Bytes(),
		SenderID:          message.SenderID().Bytes(),
		Content:           message.Content(),
		SentAt:            message.Timestamp(),
	}
}

func toDomain(dto ChatMessageDTO) (*chat.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	partialDeliveryID, err := kernel.UUIDFromBytes(dto.PartialDeliveryID[:])
	if err != nil {
		return nil, err
	}
	senderID, err := kernel.UUIDFromBytes(dto.SenderID[:])
	if err != nil {
		return nil, err
	}

	return chat.RestoreMessage(id, partialDeliveryID, senderID, dto.Content, dto.SentAt)
}
