package queries

import (
	"errors"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var ErrGetChatHistoryQueryIsNotConstructed = errors.New(
	"GetChatHistoryQuery must be created via NewGetChatHistoryQuery constructor",
)

// GetChatHistoryQuery retrieves the chat history of a coordination room in
// send order. Every reader of the same room sees the same order.
type GetChatHistoryQuery struct {
	partialDeliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetChatHistoryQuery creates a query for the given room's history.
func NewGetChatHistoryQuery(partialDeliveryID kernel.UUID) (GetChatHistoryQuery, error) {
	if err := partialDeliveryID.Validate(); err != nil {
		return GetChatHistoryQuery{}, err
	}

	return GetChatHistoryQuery{
		partialDeliveryID: partialDeliveryID,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetChatHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetChatHistoryQueryIsNotConstructed)
}

// PartialDeliveryID returns the room whose history to fetch.
func (q GetChatHistoryQuery) PartialDeliveryID() kernel.UUID {
	return q.partialDeliveryID
}

// ChatMessageResponse is one chat message as shown to room participants.
type ChatMessageResponse struct {
	ID        kernel.UUID
	SenderID  kernel.UUID
	Content   string
	Timestamp time.Time
}
