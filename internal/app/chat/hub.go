/*
Package chat contains the real-time core: room membership, presence tracking,
and message fan-out over WebSocket connections.

This file defines the Hub, the coordinator that owns every connection's
lifecycle. It is the only component that writes to client queues: it registers
joins, hydrates newcomers with history, persists messages, and fans events out
to the members of a room.
*/
package chat

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"parlor/internal/app/message"
	"parlor/internal/app/user"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
)

// Hub coordinates connections, rooms, presence, and persistence.
type Hub struct {
	registry *Registry
	presence Presence

	store message.Store

	// historyLimit caps the history pushed to a client on join.
	historyLimit int

	logger zerolog.Logger
}

// NewHub constructs a Hub over the given message store.
func NewHub(store message.Store, historyLimit int) *Hub {
	if historyLimit <= 0 {
		historyLimit = message.DefaultHistoryLimit
	}

	return &Hub{
		registry:     NewRegistry(),
		store:        store,
		historyLimit: historyLimit,
		logger:       logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// MembersOf returns the current member snapshot of a room.
func (h *Hub) MembersOf(roomID string) []user.User {
	return h.registry.MembersOf(roomID)
}

// OnJoin binds the user identity to the connection and registers it in the
// room. The newcomer is hydrated with recent history, then the updated member
// list is broadcast to every member of the room, the joiner included.
//
// A connection already joined elsewhere is moved: it departs its old room
// (with the usual user_left broadcast) before entering the new one.
func (h *Hub) OnJoin(c *Client, u user.User, roomID string) *errs.CustomError {
	if c.State() == StateClosed {
		return nil
	}

	if u.Username == "" {
		return errs.NewError(errs.ErrUsernameRequired)
	}
	if roomID == "" {
		return errs.NewError(errs.ErrRoomIDRequired)
	}

	if u.ID == "" {
		id, err := randx.UserID()
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to generate user id for join.")
			return errs.NewError(errs.ErrUnknown)
		}
		u.ID = id
	}

	if c.roomID != "" && c.roomID != roomID {
		h.leaveCurrentRoom(c)
	}

	members, alreadyMember := h.registry.Join(roomID, c, u)
	c.roomID = roomID
	c.state.CompareAndSwap(StateConnecting, StateJoined)

	// A disconnect that landed while the registration was in flight has a spent
	// closeOnce, so its own leave may have run before the registration stuck.
	// Undo here or the closed connection stays in the member list forever.
	if c.State() == StateClosed {
		h.leaveCurrentRoom(c)
		return nil
	}

	h.logger.Info().
		Str("user_id", u.ID).
		Str("username", u.Username).
		Str("room_id", roomID).
		Int("total_members", len(members)).
		Bool("rejoin", alreadyMember).
		Msg("Client joined room.")

	h.hydrate(c, roomID)

	if alreadyMember {
		h.broadcast(roomID, h.presence.Refreshed(members))
	} else {
		h.broadcast(roomID, h.presence.Joined(u, members))
	}

	return nil
}

// hydrate pushes the room's recent history to a newly joined client. A store
// failure is logged and an empty history sent; a storage blip must not keep a
// live user out of the room.
func (h *Hub) hydrate(c *Client, roomID string) {
	history, err := h.store.RecentHistory(context.Background(), roomID, h.historyLimit)
	if err != nil {
		h.logger.Error().Err(err).Str("room_id", roomID).Msg("History fetch failed; sending empty history.")
		history = []message.Message{}
	}

	if !c.queueEvent(NewEvent(EventHistory, HistoryPayload{Messages: history})) {
		h.logger.Warn().Str("room_id", roomID).Msg("Failed to queue history for joining client.")
	}
}

// OnMessage validates, persists, and broadcasts one chat message from the
// connection's room.
//
// Persistence is fire-and-forget: the append runs on its own goroutine with
// its own timeout, and a failure is logged without aborting the broadcast. A
// client-supplied id is accepted as-is so retried sends stay idempotent from
// the client's point of view; duplicate ids are not deduplicated.
func (h *Hub) OnMessage(c *Client, id, content string) *errs.CustomError {
	if c.State() != StateJoined {
		return errs.NewError(errs.ErrNotInRoom)
	}

	if content == "" {
		return errs.NewError(errs.ErrEmptyMessage)
	}
	if len(content) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong, MaxContentBytes)
	}

	if id == "" {
		id = randx.MessageID()
	}

	msg := message.NewMessage(id, c.roomID, c.user, content)

	go func() {
		if err := h.store.Append(context.Background(), msg); err != nil {
			h.logger.Error().
				Err(err).
				Str("message_id", msg.ID).
				Str("room_id", msg.RoomID).
				Msg("Message append failed; broadcast proceeded without it.")
		}
	}()

	h.broadcast(msg.RoomID, NewEvent(EventMessage, msg))

	return nil
}

// OnTyping relays a typing indicator to the other members of the connection's
// room. The sender is excluded; it already knows it is typing. Indicators from
// a connection that has not joined are dropped silently, they carry no content
// worth an error round-trip.
func (h *Hub) OnTyping(c *Client, eventType EventType) {
	if c.State() != StateJoined {
		return
	}

	h.broadcastExcept(c.roomID, NewEvent(eventType, TypingPayload{Username: c.user.Username}), c)
}

// OnDisconnect tears the connection down. Idempotent and safe to invoke
// concurrently from the transport close path, the explicit leave path, and
// the slow-member drop: only the first caller deregisters and broadcasts.
func (h *Hub) OnDisconnect(c *Client) {
	if !c.markClosed() {
		return
	}

	h.leaveCurrentRoom(c)
}

// leaveCurrentRoom removes the connection from its room, if any, and
// broadcasts the departure to the remaining members.
func (h *Hub) leaveCurrentRoom(c *Client) {
	roomID, members, ok := h.registry.Leave(c)
	if !ok {
		return
	}

	h.logger.Info().
		Str("user_id", c.user.ID).
		Str("username", c.user.Username).
		Str("room_id", roomID).
		Int("total_members", len(members)).
		Msg("Client left room.")

	h.broadcast(roomID, h.presence.Left(c.user, members))
}

// broadcast fans one event out to every member registered in the room at this
// moment. Delivery to each member is a non-blocking enqueue: a member whose
// queue is full misses the event and is scheduled for close, so one slow
// client never stalls the room. No registry lock is held while enqueueing.
func (h *Hub) broadcast(roomID string, ev Event) {
	h.broadcastExcept(roomID, ev, nil)
}

// broadcastExcept is broadcast with one member skipped, used for events the
// originator should not receive back (typing indicators).
func (h *Hub) broadcastExcept(roomID string, ev Event, except *Client) {
	frame, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", string(ev.Type)).Msg("Error marshaling event for broadcast.")
		return
	}

	for _, member := range h.registry.clientsOf(roomID) {
		if member == except {
			continue
		}
		if !member.queue(frame) {
			h.logger.Warn().
				Str("user_id", member.user.ID).
				Str("room_id", roomID).
				Msg("Member send queue full or closed; scheduling disconnect.")

			go h.OnDisconnect(member)
		}
	}
}

// Shutdown closes every live connection.
func (h *Hub) Shutdown() {
	clients := h.registry.allClients()
	for _, c := range clients {
		h.OnDisconnect(c)
	}

	h.logger.Info().Int("closed_connections", len(clients)).Msg("Hub shutdown complete.")
}
