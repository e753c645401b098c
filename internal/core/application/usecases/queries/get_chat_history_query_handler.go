package queries

import (
	"context"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetChatHistoryQueryHandler retrieves a room's chat messages from the
// database, oldest first.
type GetChatHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetChatHistoryQueryHandler creates a handler for chat history queries.
// Requires a GORM database connection for query execution.
func NewGetChatHistoryQueryHandler(db *gorm.DB) GetChatHistoryQueryHandler {
	return GetChatHistoryQueryHandler{db: db}
}

// Handle executes the query. Messages come back ordered by their
// server-assigned timestamp, which is the room's replay order.
func (h GetChatHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetChatHistoryQuery,
) ([]ChatMessageResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			sender_id,
			content,
			sent_at
		FROM chat_messages
		WHERE partial_delivery_id = ?
		ORDER BY sent_at, id
	`, query.PartialDeliveryID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]ChatMessageResponse, 0)
	for rows.Next() {
		var message ChatMessageResponse
		var id, senderID uuid.UUID
		var sentAt time.Time

		if err = rows.Scan(&id, &senderID, &message.Content, &sentAt); err != nil {
			return nil, err
		}

		messageID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		sender, idErr := kernel.UUIDFromBytes(senderID[:])
		if idErr != nil {
			return nil, idErr
		}

		message.ID = messageID
		message.SenderID = sender
		message.Timestamp = sentAt
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
