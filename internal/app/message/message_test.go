package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parlor/internal/app/user"
)

func TestNewMessageDenormalizesSender(t *testing.T) {
	sender := user.User{ID: "u1", Username: "anon_a1B2c3D4", IsAnonymous: true}

	before := time.Now().UTC()
	m := NewMessage("m1", "global", sender, "hello")
	after := time.Now().UTC()

	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "global", m.RoomID)
	assert.Equal(t, "anon_a1B2c3D4", m.Username)
	assert.Equal(t, "hello", m.Content)
	assert.True(t, m.IsAnonymous)

	assert.False(t, m.Timestamp.Before(before))
	assert.False(t, m.Timestamp.After(after))
}

func TestNewMessageKeepsNoUserReference(t *testing.T) {
	sender := user.User{ID: "u1", Username: "alice"}
	m := NewMessage("m1", "global", sender, "hi")

	// Renaming the sender later must not affect a recorded message.
	sender.Username = "renamed"
	assert.Equal(t, "alice", m.Username)
}
