package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"partialdelivery/internal/channel"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
)

const (
	// authTimeout bounds the wait for the first (auth) message.
	authTimeout = 5 * time.Second
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second
	// pongWait is how long the peer may stay silent before the read fails.
	pongWait = 60 * time.Second
	// pingInterval must be shorter than pongWait.
	pingInterval = 30 * time.Second
	// maxMessageSize caps an inbound frame.
	maxMessageSize = 8192
	// sendBufferSize is the per-client outbound queue. A client that falls
	// this far behind is dropped from its rooms.
	sendBufferSize = 64
)

// ErrSendBufferFull marks a client too slow to keep up with its rooms.
var ErrSendBufferFull = errors.New("client send buffer is full")

// client is one authenticated WebSocket connection. It implements
// channel.Connection so the hub can push room envelopes to it.
type client struct {
	conn        *websocket.Conn
	send        chan []byte
	participant ports.Participant

	mu    sync.Mutex
	rooms map[kernel.UUID]struct{}
}

func newClient(conn *websocket.Conn, participant ports.Participant) *client {
	return &client{
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		participant: participant,
		rooms:       make(map[kernel.UUID]struct{}),
	}
}

// Send queues a room envelope for the write pump. It never blocks; a full
// buffer returns an error so the hub prunes this connection.
func (c *client) Send(envelope channel.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// reply sends a direct (non-room) message to this client using the same
// queue as room traffic. Failures are ignored; the write pump closing is the
// signal that matters.
func (c *client) reply(messageType string, data any) {
	_ = c.Send(channel.Envelope{Type: messageType, Data: data})
}

// trackRoom remembers a joined room so the connection can be detached from
// it on close.
func (c *client) trackRoom(roomID kernel.UUID) {
	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
}

// joinedRooms returns a snapshot of the rooms this client subscribed to.
func (c *client) joinedRooms() []kernel.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := make([]kernel.UUID, 0, len(c.rooms))
	for id := range c.rooms {
		rooms = append(rooms, id)
	}
	return rooms
}

// writePump drains the send queue to the peer and keeps the connection
// alive with pings. It owns all writes to the socket.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
