// Package chat provides the append-only group chat record scoped to one
// partial delivery. Messages are never edited or deleted; ordering is the
// server-assigned monotonic timestamp, not the client clock.
package chat

import (
	"errors"
	"fmt"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/pkg/errs"
	"partialdelivery/internal/pkg/guard"
)

// maxContentLength bounds a single chat message.
const maxContentLength = 2000

// ErrMessageIsNotConstructed is returned when using an improperly
// initialized Message.
var ErrMessageIsNotConstructed = errors.New(
	"Message must be created via NewMessage or RestoreMessage")

// Message is one entry in a partial delivery's group chat.
type Message struct {
	// id uniquely identifies the message
	id kernel.UUID
	// partialDeliveryID scopes the message to its room
	partialDeliveryID kernel.UUID
	// senderID is the participant who sent the message
	senderID kernel.UUID
	// content is the message text
	content string
	// timestamp is server-assigned at insertion and is the ordering key
	timestamp time.Time
	// guard ensures the message was properly constructed
	guard guard.ConstructorGuard
}

// NewMessage creates a message with a server-assigned timestamp.
func NewMessage(id, partialDeliveryID, senderID kernel.UUID, content string, timestamp time.Time) (*Message, error) {
	if err := errors.Join(
		id.Validate(),
		partialDeliveryID.Validate(),
		senderID.Validate(),
	); err != nil {
		return nil, err
	}

	if content == "" {
		return nil, errs.NewValueIsRequiredError("content")
	}
	if len(content) > maxContentLength {
		return nil, errs.NewValueIsInvalidErrorWithCause("content is invalid",
			fmt.Errorf("length %d exceeds %d", len(content), maxContentLength))
	}

	return &Message{
		id:                id,
		partialDeliveryID: partialDeliveryID,
		senderID:          senderID,
		content:           content,
		timestamp:         timestamp,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// RestoreMessage rebuilds a message from persistence.
func RestoreMessage(id, partialDeliveryID, senderID kernel.UUID, content string, timestamp time.Time) (*Message, error) {
	return NewMessage(id, partialDeliveryID, senderID, content, timestamp)
}

// Validate ensures the Message was created via a constructor.
func (m *Message) Validate() error {
	if m == nil {
		return ErrMessageIsNotConstructed
	}
	return m.guard.Validate(ErrMessageIsNotConstructed)
}

// ID returns the message's unique identifier.
func (m *Message) ID() kernel.UUID { return m.id }

// PartialDeliveryID returns the room the message belongs to.
func (m *Message) PartialDeliveryID() kernel.UUID { return m.partialDeliveryID }

// SenderID returns the sending participant.
func (m *Message) SenderID() kernel.UUID { return m.senderID }

// Content returns the message text.
func (m *Message) Content() string { return m.content }

// Timestamp returns the server-assigned ordering key.
func (m *Message) Timestamp() time.Time { return m.timestamp }
