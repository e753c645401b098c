package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partialdelivery/internal/channel"
	"partialdelivery/internal/core/domain/events"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

// fakeRooms records hub interactions.
type fakeRooms struct {
	subscribed   []kernel.UUID
	unsubscribed []kernel.UUID
	published    []events.Event
	subscribeErr error
}

func (f *fakeRooms) Subscribe(_ context.Context, roomID kernel.UUID, _ ports.Participant, _ channel.Connection) error {
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribed = append(f.subscribed, roomID)
	return nil
}

func (f *fakeRooms) Unsubscribe(roomID kernel.UUID, _ channel.Connection) {
	f.unsubscribed = append(f.unsubscribed, roomID)
}

func (f *fakeRooms) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func newDispatchHandler(rooms Rooms) *Handler {
	h := &Handler{
		rooms:  rooms,
		logger: slog.Default().With("component", "ws_handler"),
	}
	return h
}

func testClient(role ports.Role) *client {
	return newClient(nil, ports.Participant{ID: kernel.NewUUID(), Role: role})
}

func inbound(t *testing.T, messageType string, payload any) inboundMessage {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return inboundMessage{Type: messageType, Data: data}
}

func Test_Handler_Dispatch_Subscribe(t *testing.T) {
	rooms := &fakeRooms{}
	h := newDispatchHandler(rooms)
	c := testClient(ports.RoleCustomer)
	roomID := kernel.NewUUID()

	err := h.dispatch(context.Background(), c,
		inbound(t, TypeSubscribe, subscribePayload{PartialDeliveryID: roomID.String()}))

	require.NoError(t, err)
	require.Len(t, rooms.subscribed, 1)
	assert.Equal(t, roomID, rooms.subscribed[0])
	assert.Contains(t, c.joinedRooms(), roomID)
}

func Test_Handler_Dispatch_SubscribeRejectsBadDeliveryID(t *testing.T) {
	rooms := &fakeRooms{}
	h := newDispatchHandler(rooms)
	c := testClient(ports.RoleCourier)

	err := h.dispatch(context.Background(), c,
		inbound(t, TypeSubscribe, subscribePayload{PartialDeliveryID: "not-a-uuid"}))

	assert.Error(t, err)
	assert.Empty(t, rooms.subscribed)
	assert.Empty(t, c.joinedRooms())
}

func Test_Handler_Dispatch_SegmentActionsRequireCourierRole(t *testing.T) {
	h := newDispatchHandler(&fakeRooms{})
	c := testClient(ports.RoleCustomer)
	payload := segmentPayload{SegmentID: kernel.NewUUID().String()}

	for _, messageType := range []string{
		TypeAcceptSegment, TypeStartSegment, TypeCompleteSegment, TypeFailSegment,
	} {
		t.Run(messageType, func(t *testing.T) {
			err := h.dispatch(context.Background(), c, inbound(t, messageType, payload))
			assert.Error(t, err)
		})
	}
}

func Test_Handler_Dispatch_UpdateLocation(t *testing.T) {
	rooms := &fakeRooms{}
	h := newDispatchHandler(rooms)
	c := testClient(ports.RoleCourier)
	roomID := kernel.NewUUID()
	segmentID := kernel.NewUUID()
	before := time.Now().UTC()

	err := h.dispatch(context.Background(), c, inbound(t, TypeUpdateLocation, updateLocationPayload{
		PartialDeliveryID: roomID.String(),
		SegmentID:         segmentID.String(),
		Latitude:          52.52,
		Longitude:         13.405,
	}))

	require.NoError(t, err)
	require.Len(t, rooms.published, 1)
	update, ok := rooms.published[0].(events.LocationUpdate)
	require.True(t, ok)
	assert.Equal(t, roomID, update.PartialDeliveryID)
	assert.Equal(t, c.participant.ID, update.CourierID)
	assert.Equal(t, segmentID, update.SegmentID)
	assert.InDelta(t, 52.52, update.Location.Latitude, 1e-9)
	assert.False(t, update.ReportedAt.Before(before))
}

func Test_Handler_Dispatch_UpdateLocationRequiresSegment(t *testing.T) {
	rooms := &fakeRooms{}
	h := newDispatchHandler(rooms)
	c := testClient(ports.RoleCourier)

	err := h.dispatch(context.Background(), c, inbound(t, TypeUpdateLocation, updateLocationPayload{
		PartialDeliveryID: kernel.NewUUID().String(),
		Latitude:          52.52,
		Longitude:         13.405,
	}))

	assert.Error(t, err)
	assert.Empty(t, rooms.published)
}

func Test_Handler_Dispatch_UpdateLocationRequiresCourierRole(t *testing.T) {
	rooms := &fakeRooms{}
	h := newDispatchHandler(rooms)
	c := testClient(ports.RoleDispatcher)

	err := h.dispatch(context.Background(), c, inbound(t, TypeUpdateLocation, updateLocationPayload{
		PartialDeliveryID: kernel.NewUUID().String(),
		Latitude:          52.52,
		Longitude:         13.405,
	}))

	assert.Error(t, err)
	assert.Empty(t, rooms.published)
}

func Test_Handler_Dispatch_UnknownTypeFails(t *testing.T) {
	h := newDispatchHandler(&fakeRooms{})
	c := testClient(ports.RoleCourier)

	err := h.dispatch(context.Background(), c, inboundMessage{Type: "teleport"})

	assert.Error(t, err)
}

func Test_Client_Send_DropsWhenBufferFull(t *testing.T) {
	c := testClient(ports.RoleCourier)

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, c.Send(channel.Envelope{Type: "chat_message", Seq: uint64(i)}))
	}

	err := c.Send(channel.Envelope{Type: "chat_message", Seq: sendBufferSize})
	assert.ErrorIs(t, err, ErrSendBufferFull)
}
