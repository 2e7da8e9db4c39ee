/*
Package chat contains the real-time core: room membership, presence tracking,
and message fan-out over WebSocket connections.

This file defines the Presence tracker, a stateless translator from registry
transitions to the presence events clients render. Every event carries the full
current member list of the affected room.
*/
package chat

import "parlor/internal/app/user"

// Presence builds presence events from membership changes.
//
// user_joined is emitted only on the transition from "not a member" to
// "member"; a rejoin from a connection already in the room yields users_update
// instead. user_left is emitted once per true departure.
type Presence struct{}

// Joined builds the event announcing a new member.
func (Presence) Joined(u user.User, members []user.User) Event {
	return NewEvent(EventUserJoined, PresencePayload{
		Username: u.Username,
		Members:  members,
	})
}

// Refreshed builds the event re-publishing the member list after an
// idempotent rejoin.
func (Presence) Refreshed(members []user.User) Event {
	return NewEvent(EventUsersUpdate, PresencePayload{
		Members: members,
	})
}

// Left builds the event announcing a departure.
func (Presence) Left(u user.User, members []user.User) Event {
	return NewEvent(EventUserLeft, PresencePayload{
		Username: u.Username,
		Members:  members,
	})
}
