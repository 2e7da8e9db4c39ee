package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDShape(t *testing.T) {
	id, err := UserID()
	require.NoError(t, err)

	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "user", parts[0])
	assert.Len(t, parts[2], UserIDSuffixLength)

	for _, r := range parts[2] {
		assert.Contains(t, Base62Chars, string(r))
	}
}

func TestUserIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := UserID()
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestAnonUsernameShape(t *testing.T) {
	name, err := AnonUsername()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(name, AnonUsernamePrefix))
	assert.Len(t, name, len(AnonUsernamePrefix)+AnonUsernameSuffixLength)
}

func TestMessageIDIsUUID(t *testing.T) {
	id := MessageID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
