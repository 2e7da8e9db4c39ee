/*
Package user contains user identity data structures and the session resolver.

A session here is deliberately lightweight: identity is re-derived on every
login call, keyed by username, and never destroyed. The resolver only needs a
store it can upsert into.
*/
package user

import (
	"context"
	"time"
)

// User represents the identity of a chat participant.
// Fields use JSON tags for serialization in WebSocket and HTTP payloads.
type User struct {

	// ID is the opaque, stable identifier for the user.
	ID string `json:"id"`

	// Username is the display name. Not guaranteed unique across connections;
	// the database keeps one identity record per username.
	Username string `json:"username"`

	// IsAnonymous marks users whose name was generated rather than chosen.
	IsAnonymous bool `json:"isAnonymous"`
}

// Store is the durable user store consumed by the resolver.
type Store interface {
	// Upsert inserts the user, or, when the username already exists, refreshes
	// that record's last-active timestamp. The returned User carries the
	// authoritative id (the existing one on conflict).
	Upsert(ctx context.Context, u User) (User, error)

	// TouchLastActive refreshes last_active for the given user id. The bool
	// reports whether a record was found.
	TouchLastActive(ctx context.Context, userID string) (bool, error)

	// ActiveSince lists users whose last activity falls after the cutoff,
	// most recently active first.
	ActiveSince(ctx context.Context, cutoff time.Time) ([]User, error)
}
