/*
Package chat contains the real-time core: room membership, presence tracking,
and message fan-out over WebSocket connections.

This file defines the Registry, the authoritative in-memory map from room id to
the set of currently connected members. Rooms are created implicitly on first
join and dropped once empty; persisted messages outlive them.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"parlor/internal/app/user"
	"parlor/internal/pkg/logx"
)

// room tracks the live members of a single room behind its own lock, so
// concurrent activity in one room never serializes another.
type room struct {
	id string

	mu      sync.RWMutex
	members map[*Client]struct{}

	// closed is set under mu when the room empties and is removed from the
	// registry map; a Join that raced the removal re-creates the room.
	closed bool
}

// memberSnapshot returns the current member users. Callers must hold r.mu.
func (r *room) memberSnapshot() []user.User {
	users := make([]user.User, 0, len(r.members))
	for c := range r.members {
		users = append(users, c.user)
	}
	return users
}

// Registry maps room ids to their live membership. Membership is keyed by
// connection identity, not username: two connections from the same username
// are tracked separately.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room

	// conns records which room currently holds each connection, so Leave can
	// find it without the caller naming the room.
	conns map[*Client]*room

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		conns:  make(map[*Client]*room),
		logger: logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// Join registers the connection under the room with the given identity,
// creating the room on first use. It returns the membership snapshot after the
// join and whether the connection was already a member (an idempotent rejoin
// keeps the existing entry rather than duplicating it).
//
// The identity is bound under the room lock and only on first registration:
// once a connection is visible in membership snapshots its user never changes,
// so snapshot readers cannot observe a mid-flight rewrite.
//
// The caller is responsible for having left any previous room first; the hub
// enforces the one-room-per-connection invariant since all join/leave events
// for a connection arrive serially from its own read loop.
func (reg *Registry) Join(roomID string, c *Client, u user.User) (members []user.User, alreadyMember bool) {
	for {
		reg.mu.Lock()
		rm, ok := reg.rooms[roomID]
		if !ok {
			rm = &room{id: roomID, members: make(map[*Client]struct{})}
			reg.rooms[roomID] = rm
			reg.logger.Info().Str("room_id", roomID).Msg("Room created.")
		}
		reg.conns[c] = rm
		reg.mu.Unlock()

		rm.mu.Lock()
		if rm.closed {
			// Lost a race with the empty-room sweep; retry against a fresh room.
			rm.mu.Unlock()
			continue
		}

		_, alreadyMember = rm.members[c]
		if !alreadyMember {
			c.user = u
			rm.members[c] = struct{}{}
		}
		members = rm.memberSnapshot()
		rm.mu.Unlock()

		return members, alreadyMember
	}
}

// Leave removes the connection from whichever room holds it. It returns the
// room id and the membership snapshot after the removal; ok is false when the
// connection was not registered anywhere.
func (reg *Registry) Leave(c *Client) (roomID string, members []user.User, ok bool) {
	reg.mu.Lock()
	rm, registered := reg.conns[c]
	if registered {
		delete(reg.conns, c)
	}
	reg.mu.Unlock()

	if !registered {
		return "", nil, false
	}

	rm.mu.Lock()
	if _, isMember := rm.members[c]; !isMember {
		rm.mu.Unlock()
		return "", nil, false
	}

	delete(rm.members, c)
	members = rm.memberSnapshot()

	empty := len(rm.members) == 0
	if empty {
		rm.closed = true
	}
	rm.mu.Unlock()

	if empty {
		reg.mu.Lock()
		if current, found := reg.rooms[rm.id]; found && current == rm {
			delete(reg.rooms, rm.id)
			reg.logger.Info().Str("room_id", rm.id).Msg("Empty room removed.")
		}
		reg.mu.Unlock()
	}

	return rm.id, members, true
}

// MembersOf returns a read-only snapshot of the room's current member users.
// An unknown room yields an empty slice.
func (reg *Registry) MembersOf(roomID string) []user.User {
	reg.mu.RLock()
	rm, ok := reg.rooms[roomID]
	reg.mu.RUnlock()

	if !ok {
		return []user.User{}
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.memberSnapshot()
}

// clientsOf returns the live connections registered in the room at this
// moment. The fan-out path uses it so broadcast never holds a room lock while
// writing to any client.
func (reg *Registry) clientsOf(roomID string) []*Client {
	reg.mu.RLock()
	rm, ok := reg.rooms[roomID]
	reg.mu.RUnlock()

	if !ok {
		return nil
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()

	clients := make([]*Client, 0, len(rm.members))
	for c := range rm.members {
		clients = append(clients, c)
	}
	return clients
}

// allClients returns every registered connection, used for shutdown.
func (reg *Registry) allClients() []*Client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	clients := make([]*Client, 0, len(reg.conns))
	for c := range reg.conns {
		clients = append(clients, c)
	}
	return clients
}
