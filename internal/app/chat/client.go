/*
Package chat contains the real-time core: room membership, presence tracking,
and message fan-out over WebSocket connections.

This file defines the Client struct, one live WebSocket connection and its read
and write loops. A client moves through Connecting -> Joined -> Closed; the
join must arrive within a bounded window or the connection is dropped.
*/
package chat

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"parlor/internal/app/user"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// joinWait bounds how long an upgraded connection may idle before sending
	// its join event. Connections that never join are dropped at this deadline.
	joinWait = 30 * time.Second

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) for message content.
	MaxContentBytes = 5000

	// sendQueueSize bounds the per-connection outbound queue. A member whose
	// queue fills is dropped rather than allowed to stall the broadcaster.
	sendQueueSize = 256
)

// Connection lifecycle states.
const (
	StateConnecting int32 = iota
	StateJoined
	StateClosed
)

// Client represents one live WebSocket connection bound to at most one room.
type Client struct {
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// the identity bound at join time. Written once by the client's own read
	// loop before registration; visible to snapshot readers via the room lock.
	user user.User

	// the room joined, empty until the join event arrives. Only the client's
	// own read loop writes it.
	roomID string

	// bounded queue of outbound frames.
	send chan []byte

	// done is closed exactly once when the connection enters Closed.
	done chan struct{}

	closeOnce sync.Once

	state atomic.Int32

	logger zerolog.Logger
}

// NewClient constructs a Client in the Connecting state.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logx.Logger().With().Str("component", "Client").Logger(),
	}
}

// State reports the connection's lifecycle state.
func (c *Client) State() int32 {
	return c.state.Load()
}

// ReadPump reads frames off the connection until it closes, dispatching each
// decoded event to the hub. It performs disconnect cleanup on exit.
func (c *Client) ReadPump() {
	defer c.hub.OnDisconnect(c)

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(joinWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		// Pongs keep a joined connection alive. Before the join they do not
		// extend the deadline, so a connection that never joins still drops.
		if c.State() == StateJoined {
			return c.conn.SetReadDeadline(time.Now().Add(pongWait))
		}
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			return
		}

		if !c.processInbound(frame) {
			return
		}
	}
}

// processInbound decodes one inbound frame and dispatches it. It returns
// false when the read loop should stop (explicit leave).
func (c *Client) processInbound(frame []byte) bool {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Bytes("frame", frame).Msg("Client sent invalid JSON")
		return true
	}

	switch env.Type {
	case EventJoin:
		c.handleJoin(env.Payload)
		return true

	case EventMessage:
		c.handleMessage(env.Payload)
		return true

	case EventTypingStart, EventTypingStop:
		c.hub.OnTyping(c, env.Type)
		return true

	case EventLeave:
		return false

	default:
		c.logger.Warn().Str("event_type", string(env.Type)).Msg("Client sent unsupported event type")
		return true
	}
}

// handleJoin decodes the join payload and hands it to the hub. On success the
// read deadline switches from the join window to the heartbeat cycle.
func (c *Client) handleJoin(payload json.RawMessage) {
	var join JoinPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JOIN payload")
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if customErr := c.hub.OnJoin(c, join.User, join.RoomID); customErr != nil {
		c.sendError(customErr)
		return
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to extend read deadline after join")
	}
}

// handleMessage decodes a chat message payload and hands it to the hub.
func (c *Client) handleMessage(payload json.RawMessage) {
	var msg MessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid MESSAGE payload")
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if customErr := c.hub.OnMessage(c, msg.ID, msg.Content); customErr != nil {
		c.sendError(customErr)
	}
}

// WritePump drains the send queue onto the connection and keeps the heartbeat
// ticking. It exits when the client closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close in WritePump")
		}
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return

		case frame := <-c.send:
			if !c.writeQueuedFrame(frame) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one queued frame. It returns false when the write
// loop should terminate.
func (c *Client) writeQueuedFrame(frame []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends the periodic heartbeat ping. It returns false when
// the write loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// queue enqueues one outbound frame without blocking. It returns false when
// the client is closed or its queue is full; a full queue is the slow-member
// signal the hub acts on.
func (c *Client) queue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// queueEvent marshals an event and enqueues it.
func (c *Client) queueEvent(ev Event) bool {
	frame, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(ev.Type)).Msg("Error marshaling event for client")
		return false
	}
	return c.queue(frame)
}

// sendError queues an error event describing a rejected inbound event.
func (c *Client) sendError(customErr *errs.CustomError) {
	ok := c.queueEvent(NewEvent(EventError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	}))
	if !ok {
		c.logger.Warn().Int("error_code", customErr.Code).Msg("Failed to queue error event")
	}
}

// markClosed transitions the client to Closed and closes its transport.
// Idempotent and safe to race; only the first caller proceeds.
func (c *Client) markClosed() (first bool) {
	c.closeOnce.Do(func() {
		first = true
		c.state.Store(StateClosed)
		close(c.done)

		if c.conn != nil {
			if err := c.conn.Close(); err != nil {
				c.logger.Debug().Err(err).Msg("Connection close")
			}
		}
	})
	return first
}
