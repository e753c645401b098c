package commands

import (
	"errors"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/guard"
)

var (
	ErrSendChatMessageCommandIsNotConstructed = errors.New(
		"SendChatMessageCommand must be created via NewSendChatMessageCommand constructor",
	)
	ErrMessageContentIsRequired = errors.New("message content is required")
)

// SendChatMessageCommand represents a participant posting a message to a
// partial delivery's coordination room.
type SendChatMessageCommand struct { //nolint:recvcheck //using for validation
	messageID         kernel.UUID
	partialDeliveryID kernel.UUID
	senderID          kernel.UUID
	content           string

	guard guard.ConstructorGuard
}

// NewSendChatMessageCommand creates a command to post a chat message.
func NewSendChatMessageCommand(
	messageID, partialDeliveryID, senderID kernel.UUID,
	content string,
) (SendChatMessageCommand, error) {
	if content == "" {
		return SendChatMessageCommand{}, ErrMessageContentIsRequired
	}

	if err := errors.Join(
		messageID.Validate(),
		partialDeliveryID.Validate(),
		senderID.Validate(),
	); err != nil {
		return SendChatMessageCommand{}, err
	}

	return SendChatMessageCommand{
		messageID:         messageID,
		partialDeliveryID: partialDeliveryID,
		senderID:          senderID,
		content:           content,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SendChatMessageCommand) Validate() error {
	return c.guard.Validate(ErrSendChatMessageCommandIsNotConstructed)
}

// MessageID returns the identifier for the new message.
func (c SendChatMessageCommand) MessageID() kernel.UUID {
	return c.messageID
}

// PartialDeliveryID returns the room's partial delivery.
func (c SendChatMessageCommand) PartialDeliveryID() kernel.UUID {
	return c.partialDeliveryID
}

// SenderID returns the posting participant.
func (c SendChatMessageCommand) SenderID() kernel.UUID {
	return c.senderID
}

// Content returns the message text.
func (c SendChatMessageCommand) Content() string {
	return c.content
}
