package commands

import (
	"context"
	"time"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/ports"
)

// SendChatMessageCommandHandler handles chat posts. The message is
// timestamped by the server when it is persisted, so replay order and live
// broadcast order agree regardless of sender clocks. The broadcast goes
// out only after the message is durably stored.
type SendChatMessageCommandHandler struct {
	uowFactory ChatUoWFactory
	publisher  ports.EventPublisher
}

// NewSendChatMessageCommandHandler creates a handler for chat posts.
func NewSendChatMessageCommandHandler(
	uowFactory ChatUoWFactory,
	publisher ports.EventPublisher,
) SendChatMessageCommandHandler {
	return SendChatMessageCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the chat post.
func (h SendChatMessageCommandHandler) Handle(ctx context.Context, cmd SendChatMessageCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	message, err := chat.NewMessage(
		cmd.MessageID(),
		cmd.PartialDeliveryID(),
		cmd.SenderID(),
		cmd.Content(),
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ChatRepository().Add(ctx, message); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, events.ChatMessage{
		PartialDeliveryID: message.PartialDeliveryID(),
		MessageID:         message.ID(),
		SenderID:          message.SenderID(),
		Content:           message.Content(),
		Timestamp:         message.Timestamp(),
	})

	return nil
}
