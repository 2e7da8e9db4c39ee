/*
Package message defines the chat message record and its durable append-only store.
*/
package message

import (
	"context"
	"time"

	"parlor/internal/app/user"
)

// Message is one chat message. Immutable once created; the sender is recorded
// by denormalized username and anonymity flag, not by foreign key.
type Message struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsAnonymous bool      `json:"isAnonymous"`
}

// NewMessage builds a message from a sender identity, stamped with the
// current wall-clock time. The sender is denormalized into username and
// anonymity flag.
func NewMessage(id, roomID string, sender user.User, content string) Message {
	return Message{
		ID:          id,
		RoomID:      roomID,
		Username:    sender.Username,
		Content:     content,
		Timestamp:   time.Now().UTC(),
		IsAnonymous: sender.IsAnonymous,
	}
}

// Store is the durable, time-ordered message log.
type Store interface {
	// Append durably records the message exactly once, atomically per record.
	Append(ctx context.Context, m Message) error

	// RecentHistory returns up to limit most-recent messages for the room in
	// ascending timestamp order. An unknown room yields an empty slice.
	RecentHistory(ctx context.Context, roomID string, limit int) ([]Message, error)
}
