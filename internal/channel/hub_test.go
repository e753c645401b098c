package channel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/chat"
	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

// fakeConnection records every envelope it receives.
type fakeConnection struct {
	mu        sync.Mutex
	envelopes []Envelope
	failSend  bool
}

func (c *fakeConnection) Send(envelope Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failSend {
		return errors.New("connection closed")
	}
	c.envelopes = append(c.envelopes, envelope)
	return nil
}

func (c *fakeConnection) received() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]Envelope, len(c.envelopes))
	copy(result, c.envelopes)
	return result
}

// stubChatHistory serves a fixed message list for every delivery.
type stubChatHistory struct {
	messages []*chat.Message
}

func (s *stubChatHistory) Add(_ context.Context, _ *chat.Message) error { return nil }

func (s *stubChatHistory) GetByPartialDelivery(_ context.Context, _ kernel.UUID) ([]*chat.Message, error) {
	return s.messages, nil
}

func newTestHub(t *testing.T, history ports.ChatRepository) *Hub {
	t.Helper()

	if history == nil {
		history = &stubChatHistory{}
	}
	hub, err := NewHub(history, slog.Default())
	require.NoError(t, err)
	return hub
}

func courier(id kernel.UUID) ports.Participant {
	return ports.Participant{ID: id, Role: ports.RoleCourier}
}

func statusEvent(roomID kernel.UUID, index int) events.SegmentStatusChanged {
	return events.SegmentStatusChanged{
		PartialDeliveryID: roomID,
		SegmentID:         kernel.NewUUID(),
		SequenceIndex:     index,
		Status:            delivery.SegmentInProgress.String(),
	}
}

func Test_Hub_Publish_DeliversInSequenceOrder(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	first := &fakeConnection{}
	second := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), first))
	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), second))

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, i)))
	}

	for _, conn := range []*fakeConnection{first, second} {
		envelopes := conn.received()
		require.Len(t, envelopes, 5)
		for i, envelope := range envelopes {
			assert.Equal(t, "segment_status_changed", envelope.Type)
			assert.Equal(t, i, envelope.Data.(events.SegmentStatusChanged).SequenceIndex)
			if i > 0 {
				assert.Equal(t, envelopes[i-1].Seq+1, envelope.Seq)
			}
		}
	}
}

func Test_Hub_Publish_FansOutToAllDevicesOfOneParticipant(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	participant := courier(kernel.NewUUID())
	phone := &fakeConnection{}
	tablet := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, participant, phone))
	require.NoError(t, hub.Subscribe(context.Background(), roomID, participant, tablet))

	require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, 0)))

	assert.Len(t, phone.received(), 1)
	assert.Len(t, tablet.received(), 1)
}

func Test_Hub_Publish_EmptyRoomIsDropped(t *testing.T) {
	hub := newTestHub(t, nil)

	err := hub.Publish(context.Background(), statusEvent(kernel.NewUUID(), 0))

	assert.NoError(t, err)
}

func Test_Hub_Publish_PrunesDeadConnections(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	dead := &fakeConnection{failSend: true}
	alive := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), alive))
	hub.roomFor(roomID).subscribers[dead] = courier(kernel.NewUUID())

	require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, 0)))
	require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, 1)))

	assert.Len(t, alive.received(), 2)
	assert.Empty(t, dead.received())
	assert.NotContains(t, hub.roomFor(roomID).subscribers, Connection(dead))
}

func Test_Hub_Subscribe_ReplaysChatHistoryInStoredOrder(t *testing.T) {
	roomID := kernel.NewUUID()
	history := &stubChatHistory{}
	base := time.Now().UTC().Add(-time.Hour)
	for i, content := range []string{"at the pickup", "running late", "meet at the corner"} {
		message, err := chat.NewMessage(kernel.NewUUID(), roomID, kernel.NewUUID(), content, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		history.messages = append(history.messages, message)
	}
	hub := newTestHub(t, history)

	first := &fakeConnection{}
	second := &fakeConnection{}
	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), first))
	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), second))

	contentsOf := func(envelopes []Envelope) []string {
		var contents []string
		for _, envelope := range envelopes {
			require.Equal(t, "chat_message", envelope.Type)
			contents = append(contents, envelope.Data.(events.ChatMessage).Content)
		}
		return contents
	}

	expected := []string{"at the pickup", "running late", "meet at the corner"}
	assert.Equal(t, expected, contentsOf(first.received()))
	assert.Equal(t, expected, contentsOf(second.received()))
}

func Test_Hub_Subscribe_ResubscribeKeepsSingleMembership(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	participant := courier(kernel.NewUUID())
	conn := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, participant, conn))
	require.NoError(t, hub.Subscribe(context.Background(), roomID, participant, conn))

	require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, 0)))

	assert.Len(t, conn.received(), 1)
}

func Test_Hub_Unsubscribe_StopsDelivery(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	conn := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), conn))
	hub.Unsubscribe(roomID, conn)

	require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, 0)))

	assert.Empty(t, conn.received())
}

func Test_Hub_Publish_RecordsCourierLocations(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	segmentID := kernel.NewUUID()

	update := events.LocationUpdate{
		PartialDeliveryID: roomID,
		CourierID:         courierID,
		SegmentID:         segmentID,
		Location:          kernel.GeoCoord{Latitude: 52.52, Longitude: 13.405},
		ReportedAt:        time.Now().UTC(),
	}
	require.NoError(t, hub.Publish(context.Background(), update))

	locations := hub.Locations(roomID)
	require.Len(t, locations, 1)
	assert.Equal(t, courierID, locations[0].CourierID)
	assert.Equal(t, segmentID, locations[0].SegmentID)
	assert.InDelta(t, 52.52, locations[0].Location.Latitude, 1e-9)
	assert.False(t, locations[0].LastSeen.IsZero())

	assert.Empty(t, hub.StaleLocations(time.Hour))
	stale := hub.StaleLocations(-time.Second)
	require.Contains(t, stale, roomID)
	assert.Len(t, stale[roomID], 1)
}

// One courier riding two segments of the same chain reports per segment,
// and each segment ages independently.
func Test_Hub_Publish_TracksLocationsPerSegment(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	firstSegment := kernel.NewUUID()
	secondSegment := kernel.NewUUID()

	for _, segmentID := range []kernel.UUID{firstSegment, secondSegment} {
		require.NoError(t, hub.Publish(context.Background(), events.LocationUpdate{
			PartialDeliveryID: roomID,
			CourierID:         courierID,
			SegmentID:         segmentID,
			Location:          kernel.GeoCoord{Latitude: 52.52, Longitude: 13.405},
			ReportedAt:        time.Now().UTC(),
		}))
	}

	locations := hub.Locations(roomID)
	require.Len(t, locations, 2)
	seen := make(map[kernel.UUID]bool, 2)
	for _, location := range locations {
		assert.Equal(t, courierID, location.CourierID)
		seen[location.SegmentID] = true
	}
	assert.True(t, seen[firstSegment])
	assert.True(t, seen[secondSegment])

	stale := hub.StaleCouriers(-time.Second)
	require.Len(t, stale, 2)
	for _, entry := range stale {
		assert.Equal(t, roomID, entry.PartialDeliveryID)
		assert.Equal(t, courierID, entry.CourierID)
		assert.NoError(t, entry.SegmentID.Validate())
	}
}

func Test_Hub_Publish_TerminalEventClosesRoom(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	conn := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), conn))
	require.NoError(t, hub.Publish(context.Background(), events.DeliveryCancelled{
		PartialDeliveryID: roomID,
		Reason:            "requester cancelled",
	}))

	envelopes := conn.received()
	require.Len(t, envelopes, 1)
	assert.Equal(t, "delivery_cancelled", envelopes[0].Type)

	require.NoError(t, hub.Publish(context.Background(), statusEvent(roomID, 0)))
	assert.Len(t, conn.received(), 1)
}

func Test_Hub_Publish_ConcurrentPublishersKeepSequenceMonotonic(t *testing.T) {
	hub := newTestHub(t, nil)
	roomID := kernel.NewUUID()
	conn := &fakeConnection{}

	require.NoError(t, hub.Subscribe(context.Background(), roomID, courier(kernel.NewUUID()), conn))

	const publishers = 8
	const perPublisher = 25

	var wg sync.WaitGroup
	wg.Add(publishers)
	for p := 0; p < publishers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				_ = hub.Publish(context.Background(), statusEvent(roomID, i))
			}
		}()
	}
	wg.Wait()

	envelopes := conn.received()
	require.Len(t, envelopes, publishers*perPublisher)
	for i := 1; i < len(envelopes); i++ {
		assert.Equal(t, envelopes[i-1].Seq+1, envelopes[i].Seq)
	}
}
