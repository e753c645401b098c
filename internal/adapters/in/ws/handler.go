// Package ws is the WebSocket entry point of the coordination channel.
// A client authenticates with its first message, subscribes to the rooms of
// the deliveries it participates in and drives segment and handover
// operations over the same connection.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"partialdelivery/internal/channel"
	"partialdelivery/internal/core/application/usecases/commands"
	"partialdelivery/internal/core/application/usecases/queries"
	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are left to the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Rooms is the hub surface the handler needs.
type Rooms interface {
	Subscribe(ctx context.Context, roomID kernel.UUID, participant ports.Participant, conn channel.Connection) error
	Unsubscribe(roomID kernel.UUID, conn channel.Connection)
	Publish(ctx context.Context, event events.Event) error
}

// Handler upgrades HTTP requests to WebSocket connections and routes client
// messages to the command handlers.
type Handler struct {
	identity ports.IdentityResolver
	rooms    Rooms

	acceptSegmentHandler    commands.AcceptSegmentCommandHandler
	startSegmentHandler     commands.StartSegmentCommandHandler
	completeSegmentHandler  commands.CompleteSegmentCommandHandler
	failSegmentHandler      commands.FailSegmentCommandHandler
	initiateHandoverHandler commands.InitiateHandoverCommandHandler
	confirmHandoverHandler  commands.ConfirmHandoverCommandHandler
	sendChatMessageHandler  commands.SendChatMessageCommandHandler
	getHandoverHandler      queries.GetHandoverQueryHandler

	logger *slog.Logger
}

// NewHandler creates the WebSocket handler.
func NewHandler(
	identity ports.IdentityResolver,
	rooms Rooms,
	acceptSegmentHandler commands.AcceptSegmentCommandHandler,
	startSegmentHandler commands.StartSegmentCommandHandler,
	completeSegmentHandler commands.CompleteSegmentCommandHandler,
	failSegmentHandler commands.FailSegmentCommandHandler,
	initiateHandoverHandler commands.InitiateHandoverCommandHandler,
	confirmHandoverHandler commands.ConfirmHandoverCommandHandler,
	sendChatMessageHandler commands.SendChatMessageCommandHandler,
	getHandoverHandler queries.GetHandoverQueryHandler,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		identity:                identity,
		rooms:                   rooms,
		acceptSegmentHandler:    acceptSegmentHandler,
		startSegmentHandler:     startSegmentHandler,
		completeSegmentHandler:  completeSegmentHandler,
		failSegmentHandler:      failSegmentHandler,
		initiateHandoverHandler: initiateHandoverHandler,
		confirmHandoverHandler:  confirmHandoverHandler,
		sendChatMessageHandler:  sendChatMessageHandler,
		getHandoverHandler:      getHandoverHandler,
		logger:                  logger.With("component", "ws_handler"),
	}
}

// Handle serves GET /ws. The first client message must be an auth frame; the
// connection is closed if it does not arrive in time or the token is
// rejected.
func (h *Handler) Handle(ctx echo.Context) error {
	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	participant, err := h.authenticate(ctx.Request().Context(), conn)
	if err != nil {
		h.logger.Warn("WebSocket authentication failed", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return nil
	}

	c := newClient(conn, participant)
	c.reply(TypeAuthOK, authOKPayload{
		ParticipantID: participant.ID.String(),
		Role:          string(participant.Role),
	})

	h.logger.Info("Participant connected",
		"participant_id", participant.ID.String(), "role", string(participant.Role))

	go c.writePump()
	h.readPump(c)
	return nil
}

// authenticate reads the auth frame and resolves its token.
func (h *Handler) authenticate(ctx context.Context, conn *websocket.Conn) (ports.Participant, error) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(authTimeout)); err != nil {
		return ports.Participant{}, err
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return ports.Participant{}, err
	}

	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ports.Participant{}, err
	}
	if msg.Type != TypeAuth {
		return ports.Participant{}, errors.New("first message must be auth")
	}

	var payload authPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return ports.Participant{}, err
	}

	return h.identity.Resolve(ctx, payload.Token)
}

// readPump reads client messages until the connection dies, then detaches
// the client from its rooms.
func (h *Handler) readPump(c *client) {
	defer func() {
		for _, roomID := range c.joinedRooms() {
			h.rooms.Unsubscribe(roomID, c)
		}
		close(c.send)
		_ = c.conn.Close()
		h.logger.Info("Participant disconnected", "participant_id", c.participant.ID.String())
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read failed", "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(TypeError, errorPayload{Message: "malformed message"})
			continue
		}

		if err := h.dispatch(context.Background(), c, msg); err != nil {
			c.reply(TypeError, errorPayload{Message: err.Error()})
		}
	}
}

// dispatch routes one inbound message. The authenticated participant is the
// acting courier or sender; clients cannot act on behalf of others.
func (h *Handler) dispatch(ctx context.Context, c *client, msg inboundMessage) error {
	switch msg.Type {
	case TypeSubscribe:
		return h.handleSubscribe(ctx, c, msg.Data)
	case TypeAcceptSegment:
		return handleSegment(c, msg.Data, commands.NewAcceptSegmentCommand,
			func(cmd commands.AcceptSegmentCommand) error {
				return h.acceptSegmentHandler.Handle(ctx, cmd)
			})
	case TypeStartSegment:
		return handleSegment(c, msg.Data, commands.NewStartSegmentCommand,
			func(cmd commands.StartSegmentCommand) error {
				return h.startSegmentHandler.Handle(ctx, cmd)
			})
	case TypeCompleteSegment:
		return handleSegment(c, msg.Data, commands.NewCompleteSegmentCommand,
			func(cmd commands.CompleteSegmentCommand) error {
				return h.completeSegmentHandler.Handle(ctx, cmd)
			})
	case TypeFailSegment:
		return handleSegment(c, msg.Data, commands.NewFailSegmentCommand,
			func(cmd commands.FailSegmentCommand) error {
				return h.failSegmentHandler.Handle(ctx, cmd)
			})
	case TypeInitiateHandover:
		return h.handleInitiateHandover(ctx, c, msg.Data)
	case TypeConfirmHandover:
		return h.handleConfirmHandover(ctx, c, msg.Data)
	case TypeSendChatMessage:
		return h.handleSendChatMessage(ctx, c, msg.Data)
	case TypeUpdateLocation:
		return h.handleUpdateLocation(ctx, c, msg.Data)
	default:
		return errors.New("unknown message type: " + msg.Type)
	}
}

func (h *Handler) handleSubscribe(ctx context.Context, c *client, data json.RawMessage) error {
	var payload subscribePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("malformed subscribe payload")
	}

	roomID, err := kernel.UUIDFromString(payload.PartialDeliveryID)
	if err != nil {
		return err
	}

	if err := h.rooms.Subscribe(ctx, roomID, c.participant, c); err != nil {
		return err
	}
	c.trackRoom(roomID)
	return nil
}

// handleSegment covers the four segment transitions, which share the same
// payload and command shape.
func handleSegment[C any](
	c *client,
	data json.RawMessage,
	build func(segmentID, courierID kernel.UUID) (C, error),
	handle func(C) error,
) error {
	if c.participant.Role != ports.RoleCourier {
		return errors.New("only couriers may act on segments")
	}

	var payload segmentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("malformed segment payload")
	}

	segmentID, err := kernel.UUIDFromString(payload.SegmentID)
	if err != nil {
		return err
	}

	cmd, err := build(segmentID, c.participant.ID)
	if err != nil {
		return err
	}
	return handle(cmd)
}

func (h *Handler) handleInitiateHandover(ctx context.Context, c *client, data json.RawMessage) error {
	if c.participant.Role != ports.RoleCourier {
		return errors.New("only couriers may initiate handovers")
	}

	var payload initiateHandoverPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("malformed handover payload")
	}

	fromSegmentID, err := kernel.UUIDFromString(payload.FromSegmentID)
	if err != nil {
		return err
	}
	location, err := kernel.NewGeoPoint(payload.Latitude, payload.Longitude, payload.Label)
	if err != nil {
		return err
	}

	handoverID := kernel.NewUUID()
	cmd, err := commands.NewInitiateHandoverCommand(
		handoverID, fromSegmentID, c.participant.ID, location, payload.EstimatedTime)
	if err != nil {
		return err
	}
	if err := h.initiateHandoverHandler.Handle(ctx, cmd); err != nil {
		return err
	}

	// The verification code never enters the room broadcast; only the
	// initiating courier receives it, on this connection.
	query, err := queries.NewGetHandoverQuery(handoverID, c.participant.ID)
	if err != nil {
		return err
	}
	handover, err := h.getHandoverHandler.Handle(ctx, query)
	if err != nil {
		return err
	}
	c.reply(TypeHandoverCode, handoverCodePayload{
		HandoverID:       handoverID.String(),
		VerificationCode: handover.VerificationCode,
	})
	return nil
}

func (h *Handler) handleConfirmHandover(ctx context.Context, c *client, data json.RawMessage) error {
	if c.participant.Role != ports.RoleCourier {
		return errors.New("only couriers may confirm handovers")
	}

	var payload confirmHandoverPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("malformed handover payload")
	}

	handoverID, err := kernel.UUIDFromString(payload.HandoverID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmHandoverCommand(handoverID, c.participant.ID, payload.VerificationCode)
	if err != nil {
		return err
	}
	return h.confirmHandoverHandler.Handle(ctx, cmd)
}

func (h *Handler) handleSendChatMessage(ctx context.Context, c *client, data json.RawMessage) error {
	var payload sendChatMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("malformed chat payload")
	}

	partialDeliveryID, err := kernel.UUIDFromString(payload.PartialDeliveryID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewSendChatMessageCommand(
		kernel.NewUUID(), partialDeliveryID, c.participant.ID, payload.Content)
	if err != nil {
		return err
	}
	return h.sendChatMessageHandler.Handle(ctx, cmd)
}

func (h *Handler) handleUpdateLocation(ctx context.Context, c *client, data json.RawMessage) error {
	if c.participant.Role != ports.RoleCourier {
		return errors.New("only couriers report locations")
	}

	var payload updateLocationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("malformed location payload")
	}

	partialDeliveryID, err := kernel.UUIDFromString(payload.PartialDeliveryID)
	if err != nil {
		return err
	}
	segmentID, err := kernel.UUIDFromString(payload.SegmentID)
	if err != nil {
		return err
	}
	location, err := kernel.NewGeoPoint(payload.Latitude, payload.Longitude, "")
	if err != nil {
		return err
	}

	return h.rooms.Publish(ctx, events.LocationUpdate{
		PartialDeliveryID: partialDeliveryID,
		CourierID:         c.participant.ID,
		SegmentID:         segmentID,
		Location:          location.Coord(),
		ReportedAt:        time.Now().UTC(),
	})
}
