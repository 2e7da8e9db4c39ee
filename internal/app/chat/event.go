/*
Package chat contains the real-time core: room membership, presence tracking,
and message fan-out over WebSocket connections.

This file defines the closed set of event kinds exchanged with clients and the
payload structures they carry. Inbound frames are decoded once at ingress into
this enum; nothing downstream switches on raw strings.
*/
package chat

import (
	"encoding/json"
	"time"

	"parlor/internal/app/message"
	"parlor/internal/app/user"
)

// GlobalRoomID is the well-known room every client may join without creating
// a community first.
const GlobalRoomID = "global"

// EventType enumerates every event kind crossing the transport boundary.
type EventType string

// Inbound event kinds (client to server). The typing pair is also relayed
// outbound verbatim to the other members of the room.
const (
	EventJoin        EventType = "join"
	EventMessage     EventType = "message"
	EventLeave       EventType = "leave"
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"
)

// Outbound event kinds (server to client).
const (
	EventHistory     EventType = "history"
	EventUserJoined  EventType = "user_joined"
	EventUserLeft    EventType = "user_left"
	EventUsersUpdate EventType = "users_update"
	EventError       EventType = "error"
)

// Envelope is the wire frame for inbound events. The payload is decoded in a
// second step once the type is known.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is an outbound event.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewEvent constructs an outbound event stamped with the current time.
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// JoinPayload is the inbound payload naming who joins which room.
type JoinPayload struct {
	User   user.User `json:"user"`
	RoomID string    `json:"roomId"`
}

// MessagePayload is the inbound payload of a chat message. The id is optional;
// a client that retries a send may supply its own id.
type MessagePayload struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

// HistoryPayload hydrates a freshly joined client with recent room history,
// oldest message first.
type HistoryPayload struct {
	Messages []message.Message `json:"messages"`
}

// PresencePayload carries a membership change together with the full current
// member list of the affected room.
type PresencePayload struct {
	Username string      `json:"username,omitempty"`
	Members  []user.User `json:"members"`
}

// TypingPayload names who started or stopped typing. Ephemeral; never
// persisted.
type TypingPayload struct {
	Username string `json:"username"`
}

// ErrorPayload reports a rejected inbound event back to its sender.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
