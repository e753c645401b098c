package channel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
	"partialdelivery/internal/pkg/errs"
)

// locationKey identifies one location entry. A courier riding several
// segments of the same chain reports per segment, so staleness is judged
// per segment as well.
type locationKey struct {
	courierID kernel.UUID
	segmentID kernel.UUID
}

// room holds the per-delivery subscriber set, the publish sequence and the
// last known courier locations. The mutex covers all three so every
// subscriber observes envelopes in sequence order.
type room struct {
	mu          sync.Mutex
	seq         uint64
	subscribers map[Connection]ports.Participant
	locations   map[locationKey]CourierLocation
}

func newRoom() *room {
	return &room{
		subscribers: make(map[Connection]ports.Participant),
		locations:   make(map[locationKey]CourierLocation),
	}
}

// broadcast assigns the next sequence number and sends the envelope to every
// subscriber. Connections whose send fails are pruned on the spot.
// Callers must hold r.mu.
func (r *room) broadcast(eventType string, data any, logger *slog.Logger) {
	r.seq++
	envelope := Envelope{Type: eventType, Seq: r.seq, Data: data}

	for conn := range r.subscribers {
		if err := conn.Send(envelope); err != nil {
			delete(r.subscribers, conn)
			logger.Debug("Dropped dead room connection", "type", eventType, "error", err)
		}
	}
}

// Hub routes coordination events to rooms and implements
// ports.EventPublisher. Rooms are created lazily on first subscribe, first
// publish or first location report, and removed when the delivery reaches a
// terminal status.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[kernel.UUID]*room
	history ports.ChatRepository
	logger  *slog.Logger
}

// NewHub creates a hub. The chat repository supplies the history replayed to
// a participant on join.
func NewHub(history ports.ChatRepository, logger *slog.Logger) (*Hub, error) {
	if history == nil {
		return nil, errs.NewValueIsRequiredError("history")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &Hub{
		rooms:   make(map[kernel.UUID]*room),
		history: history,
		logger:  logger.With("component", "channel_hub"),
	}, nil
}

// roomFor returns the room for the given delivery, creating it when absent.
func (h *Hub) roomFor(roomID kernel.UUID) *room {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom()
		h.rooms[roomID] = r
	}
	return r
}

// lookup returns the room if it exists.
func (h *Hub) lookup(roomID kernel.UUID) (*room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomID]
	return r, ok
}

// Subscribe joins a connection to the delivery's room and replays the full
// chat history to it. Subscribing an already joined connection is a no-op
// apart from the replay, so a flaky client may resubscribe safely. The
// history fetch happens under the room lock so a live message can never
// interleave with the replay.
func (h *Hub) Subscribe(ctx context.Context, roomID kernel.UUID, participant ports.Participant, conn Connection) error {
	if err := roomID.Validate(); err != nil {
		return err
	}
	if conn == nil {
		return errs.NewValueIsRequiredError("conn")
	}

	r := h.roomFor(roomID)

	r.mu.Lock()
	defer r.mu.Unlock()

	messages, err := h.history.GetByPartialDelivery(ctx, roomID)
	if err != nil {
		return err
	}

	r.subscribers[conn] = participant

	for _, message := range messages {
		r.seq++
		envelope := Envelope{
			Type: events.ChatMessage{}.EventType(),
			Seq:  r.seq,
			Data: events.ChatMessage{
				PartialDeliveryID: roomID,
				MessageID:         message.ID(),
				SenderID:          message.SenderID(),
				Content:           message.Content(),
				Timestamp:         message.Timestamp(),
			},
		}
		if err := conn.Send(envelope); err != nil {
			delete(r.subscribers, conn)
			return err
		}
	}

	h.logger.InfoContext(ctx, "Participant joined room",
		"room_id", roomID.String(),
		"participant_id", participant.ID.String(),
		"role", string(participant.Role),
		"replayed", len(messages))
	return nil
}

// Unsubscribe removes a connection from the room. Unknown rooms and
// connections are ignored.
func (h *Hub) Unsubscribe(roomID kernel.UUID, conn Connection) {
	r, ok := h.lookup(roomID)
	if !ok {
		return
	}

	r.mu.Lock()
	delete(r.subscribers, conn)
	r.mu.Unlock()
}

// Publish fans an event out to the subscribers of its room. Publishing to a
// room nobody has joined succeeds and is dropped, except location updates
// which are always recorded for staleness tracking. A terminal delivery
// event removes the room after the broadcast.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	roomID := event.RoomID()
	if err := roomID.Validate(); err != nil {
		return err
	}

	var r *room
	if update, ok := event.(events.LocationUpdate); ok {
		r = h.roomFor(roomID)
		h.recordLocation(r, update)
	} else {
		existing, ok := h.lookup(roomID)
		if !ok {
			return nil
		}
		r = existing
	}

	r.mu.Lock()
	r.broadcast(event.EventType(), event, h.logger)
	r.mu.Unlock()

	if isTerminal(event) {
		h.mu.Lock()
		delete(h.rooms, roomID)
		h.mu.Unlock()
		h.logger.InfoContext(ctx, "Room closed", "room_id", roomID.String(), "cause", event.EventType())
	}
	return nil
}

func (h *Hub) recordLocation(r *room, update events.LocationUpdate) {
	key := locationKey{courierID: update.CourierID, segmentID: update.SegmentID}

	r.mu.Lock()
	r.locations[key] = CourierLocation{
		CourierID:  update.CourierID,
		SegmentID:  update.SegmentID,
		Location:   update.Location,
		ReportedAt: update.ReportedAt,
		LastSeen:   time.Now().UTC(),
	}
	r.mu.Unlock()
}

// isTerminal reports whether the event ends the delivery and therefore the
// room.
func isTerminal(event events.Event) bool {
	switch e := event.(type) {
	case events.DeliveryCancelled:
		return true
	case events.DeliveryStatusChanged:
		return e.Status == delivery.StatusCompleted.String() ||
			e.Status == delivery.StatusCancelled.String()
	default:
		return false
	}
}

// Locations returns the last known location of every courier and segment
// pair reporting in the room.
func (h *Hub) Locations(roomID kernel.UUID) []CourierLocation {
	r, ok := h.lookup(roomID)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]CourierLocation, 0, len(r.locations))
	for _, location := range r.locations {
		result = append(result, location)
	}
	return result
}

// StaleCouriers implements ports.LocationTracker for the staleness sweep.
func (h *Hub) StaleCouriers(olderThan time.Duration) []ports.StaleCourier {
	var stale []ports.StaleCourier
	for roomID, locations := range h.StaleLocations(olderThan) {
		for _, location := range locations {
			stale = append(stale, ports.StaleCourier{
				PartialDeliveryID: roomID,
				CourierID:         location.CourierID,
				SegmentID:         location.SegmentID,
				LastSeen:          location.LastSeen,
			})
		}
	}
	return stale
}

// StaleLocations returns, per room, the location entries whose last report
// is older than the given age. Couriers that never reported are not listed.
func (h *Hub) StaleLocations(olderThan time.Duration) map[kernel.UUID][]CourierLocation {
	cutoff := time.Now().UTC().Add(-olderThan)

	h.mu.RLock()
	rooms := make(map[kernel.UUID]*room, len(h.rooms))
	for id, r := range h.rooms {
		rooms[id] = r
	}
	h.mu.RUnlock()

	stale := make(map[kernel.UUID][]CourierLocation)
	for id, r := range rooms {
		r.mu.Lock()
		for _, location := range r.locations {
			if location.LastSeen.Before(cutoff) {
				stale[id] = append(stale[id], location)
			}
		}
		r.mu.Unlock()
	}
	return stale
}
