// Package amqp mirrors coordination room events onto a RabbitMQ topic
// exchange. Rooms stay the source of truth for participants; the exchange is
// an audit stream for systems outside the engine (billing, analytics,
// dispatcher dashboards).
package amqp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/ports"
)

// channel is the slice of amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// envelope frames a mirrored event on the wire.
type envelope struct {
	Type   string       `json:"type"`
	RoomID string       `json:"room_id"`
	Data   events.Event `json:"data"`
}

// MirrorPublisher implements ports.EventPublisher by delegating to the room
// publisher and mirroring every event to the exchange. Mirror failures are
// logged and swallowed; the broker being down must not stall deliveries.
type MirrorPublisher struct {
	inner    ports.EventPublisher
	ch       channel
	exchange string
	logger   *slog.Logger
}

// NewMirrorPublisher wraps the room publisher with the exchange mirror.
func NewMirrorPublisher(inner ports.EventPublisher, ch channel, exchange string, logger *slog.Logger) *MirrorPublisher {
	return &MirrorPublisher{
		inner:    inner,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With("component", "amqp_publisher"),
	}
}

// Publish delivers the event to its room, then mirrors it with the event
// type as routing key.
func (p *MirrorPublisher) Publish(ctx context.Context, event events.Event) error {
	if err := p.inner.Publish(ctx, event); err != nil {
		return err
	}

	body, err := json.Marshal(envelope{
		Type:   event.EventType(),
		RoomID: event.RoomID().String(),
		Data:   event,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to encode mirrored event", "type", event.EventType(), "error", err)
		return nil
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, event.EventType(), false, false, amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to mirror event to exchange",
			"type", event.EventType(), "exchange", p.exchange, "error", err)
	}
	return nil
}

// Connect dials the broker and declares the durable topic exchange the
// mirror publishes to. The caller owns both returned handles.
func Connect(url, exchange string) (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}
