package ports

import (
	"context"

	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/domain/model/kernel"
)

// ChatRepository defines the persistence contract for coordination channel
// chat messages.
type ChatRepository interface {
	// Add persists a new chat message.
	Add(ctx context.Context, message *chat.Message) error

	// GetByPartialDelivery retrieves the full chat history for a partial
	// delivery, ordered by timestamp ascending. Used for room replay when
	// a participant joins.
	GetByPartialDelivery(ctx context.Context, partialDeliveryID kernel.UUID) ([]*chat.Message, error)
}
