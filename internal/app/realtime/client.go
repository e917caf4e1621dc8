/*
Package realtime contains the room membership and event-fanout coordinator for
collaborative boards and mind maps.

This file defines the Client struct wrapping one WebSocket connection: the read
pump that parses inbound envelopes and dispatches them to the coordinator, and
the write pump that drains the buffered send queue with heartbeat pings.
*/
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	// Drawing deltas and node payloads stay well under this.
	maxMessageSize = 65536

	// sendQueueBuffer is the per-connection outbound frame buffer. Frames are
	// dropped rather than blocking the coordinator when a peer cannot keep up.
	sendQueueBuffer = 256
)

// Client represents one active WebSocket connection. It implements Peer so the
// coordinator can queue outbound frames without touching the transport.
type Client struct {
	coord *Coordinator
	conn  *websocket.Conn

	id   string
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	logger    zerolog.Logger
}

// NewClient wraps an upgraded connection and assigns it a connection identifier.
func NewClient(coord *Coordinator, conn *websocket.Conn) *Client {
	id := randx.ConnectionID()

	return &Client{
		coord:  coord,
		conn:   conn,
		id:     id,
		send:   make(chan []byte, sendQueueBuffer),
		done:   make(chan struct{}),
		logger: logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// ID returns the transport-assigned connection identifier.
func (c *Client) ID() string { return c.id }

// Queue implements Peer. It never blocks; a full queue drops the frame.
func (c *Client) Queue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// ReadPump reads and dispatches inbound envelopes until the connection closes,
// then routes the implicit disconnect to the coordinator exactly once.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended unexpectedly")
			}
			break
		}

		c.dispatchInbound(frame)
	}
}

// cleanupOnDisconnect fires the disconnect path once and releases the transport.
func (c *Client) cleanupOnDisconnect() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.coord.Disconnect(c.id)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error")
		}
	})
}

// dispatchInbound parses one envelope and routes it to the coordinator.
// Malformed frames are dropped with a local log; the sender gets no response.
func (c *Client) dispatchInbound(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON frame")
		return
	}

	switch {
	case env.Event == EventJoinRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RoomID == "" || payload.UserID == "" {
			c.logger.Warn().Msg("Dropping joinRoom with missing roomId or userId")
			return
		}
		c.coord.Join(c.id, payload.RoomID, Identity{UserID: payload.UserID, UserName: payload.UserName})

	case env.Event == EventLeaveRoom:
		var payload LeaveRoomPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RoomID == "" {
			c.logger.Warn().Msg("Dropping leaveRoom with missing roomId")
			return
		}
		c.coord.Leave(c.id, payload.RoomID)

	case IsRelayable(env.Event):
		var ref roomRef
		if err := json.Unmarshal(env.Data, &ref); err != nil || ref.RoomID == "" {
			c.logger.Warn().Str("event", env.Event).Msg("Dropping relay event with missing roomId")
			return
		}
		c.coord.Relay(c.id, env.Event, ref.RoomID, env.Data)

	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
	}
}

// WritePump writes queued frames to the connection and keeps the heartbeat
// alive. It exits when the connection is done or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.cleanupOnDisconnect()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
