package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlor/internal/app/chat"
	"parlor/internal/app/message"
	"parlor/internal/app/user"
	"parlor/internal/pkg/errs"
)

// wireEvent mirrors the outbound event frame for decoding in tests.
type wireEvent struct {
	Type      chat.EventType  `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, eventType chat.EventType, payload any) {
	t.Helper()

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}

	frame, err := json.Marshal(chat.Envelope{Type: eventType, Payload: raw})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev wireEvent
	require.NoError(t, json.Unmarshal(frame, &ev))
	return ev
}

// readEventOfType reads frames until one of the wanted type arrives, skipping
// a bounded number of other frames.
func readEventOfType(t *testing.T, conn *websocket.Conn, want chat.EventType) wireEvent {
	t.Helper()

	for i := 0; i < 5; i++ {
		ev := readEvent(t, conn)
		if ev.Type == want {
			return ev
		}
	}
	t.Fatalf("no %s event within 5 frames", want)
	return wireEvent{}
}

func joinRoom(t *testing.T, conn *websocket.Conn, u user.User, roomID string) {
	t.Helper()
	sendEnvelope(t, conn, chat.EventJoin, chat.JoinPayload{User: u, RoomID: roomID})
}

// TestWebSocketEndToEnd drives two real connections through the full flow:
// join, hydration, presence announcements, message fan-out, and leave.
func TestWebSocketEndToEnd(t *testing.T) {
	deps, msgStore, _ := newTestDeps()
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	alice := user.User{ID: "u1", Username: "alice"}
	bob := user.User{ID: "u2", Username: "bob"}

	// Alice joins an empty global room.
	aliceConn := dialWS(t, server)
	joinRoom(t, aliceConn, alice, chat.GlobalRoomID)

	ev := readEvent(t, aliceConn)
	require.Equal(t, chat.EventHistory, ev.Type)
	var history chat.HistoryPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &history))
	assert.Empty(t, history.Messages)

	ev = readEvent(t, aliceConn)
	require.Equal(t, chat.EventUserJoined, ev.Type)
	var presence chat.PresencePayload
	require.NoError(t, json.Unmarshal(ev.Payload, &presence))
	assert.Equal(t, "alice", presence.Username)
	require.Len(t, presence.Members, 1)

	// Alice speaks and receives her own message back.
	sendEnvelope(t, aliceConn, chat.EventMessage, chat.MessagePayload{Content: "hi"})

	ev = readEvent(t, aliceConn)
	require.Equal(t, chat.EventMessage, ev.Type)
	var msg message.Message
	require.NoError(t, json.Unmarshal(ev.Payload, &msg))
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "alice", msg.Username)
	assert.NotEmpty(t, msg.ID)

	// Persistence is asynchronous; wait for the append before Bob hydrates.
	require.Eventually(t, func() bool {
		return msgStore.count(chat.GlobalRoomID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Bob joins and his history contains exactly Alice's message.
	bobConn := dialWS(t, server)
	joinRoom(t, bobConn, bob, chat.GlobalRoomID)

	ev = readEvent(t, bobConn)
	require.Equal(t, chat.EventHistory, ev.Type)
	require.NoError(t, json.Unmarshal(ev.Payload, &history))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hi", history.Messages[0].Content)

	ev = readEvent(t, bobConn)
	require.Equal(t, chat.EventUserJoined, ev.Type)
	require.NoError(t, json.Unmarshal(ev.Payload, &presence))
	assert.Equal(t, "bob", presence.Username)
	assert.Len(t, presence.Members, 2)

	// Alice sees Bob arrive.
	ev = readEvent(t, aliceConn)
	require.Equal(t, chat.EventUserJoined, ev.Type)
	require.NoError(t, json.Unmarshal(ev.Payload, &presence))
	assert.Equal(t, "bob", presence.Username)

	// Bob speaks; both connections receive it.
	sendEnvelope(t, bobConn, chat.EventMessage, chat.MessagePayload{Content: "hello back"})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		ev = readEvent(t, conn)
		require.Equal(t, chat.EventMessage, ev.Type)
		require.NoError(t, json.Unmarshal(ev.Payload, &msg))
		assert.Equal(t, "hello back", msg.Content)
		assert.Equal(t, "bob", msg.Username)
	}

	// Bob leaves; Alice is told and the member list shrinks.
	sendEnvelope(t, bobConn, chat.EventLeave, nil)

	ev = readEvent(t, aliceConn)
	require.Equal(t, chat.EventUserLeft, ev.Type)
	require.NoError(t, json.Unmarshal(ev.Payload, &presence))
	assert.Equal(t, "bob", presence.Username)
	assert.Len(t, presence.Members, 1)
}

func TestWebSocketMessageBeforeJoinIsRejected(t *testing.T) {
	deps, _, _ := newTestDeps()
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	conn := dialWS(t, server)
	sendEnvelope(t, conn, chat.EventMessage, chat.MessagePayload{Content: "hi"})

	ev := readEvent(t, conn)
	require.Equal(t, chat.EventError, ev.Type)

	var errPayload chat.ErrorPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &errPayload))
	assert.Equal(t, errs.ErrNotInRoom, errPayload.Code)
}

func TestWebSocketTypingIndicators(t *testing.T) {
	deps, _, _ := newTestDeps()
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	aliceConn := dialWS(t, server)
	joinRoom(t, aliceConn, user.User{ID: "u1", Username: "alice"}, chat.GlobalRoomID)
	readEvent(t, aliceConn) // history
	readEvent(t, aliceConn) // user_joined

	bobConn := dialWS(t, server)
	joinRoom(t, bobConn, user.User{ID: "u2", Username: "bob"}, chat.GlobalRoomID)
	readEvent(t, bobConn)   // history
	readEvent(t, bobConn)   // user_joined
	readEvent(t, aliceConn) // bob's user_joined

	sendEnvelope(t, aliceConn, chat.EventTypingStart, nil)

	ev := readEvent(t, bobConn)
	require.Equal(t, chat.EventTypingStart, ev.Type)

	var typing chat.TypingPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &typing))
	assert.Equal(t, "alice", typing.Username)

	sendEnvelope(t, aliceConn, chat.EventTypingStop, nil)
	ev = readEvent(t, bobConn)
	assert.Equal(t, chat.EventTypingStop, ev.Type)

	// The typist's own connection stays quiet.
	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, frame, err := aliceConn.ReadMessage()
	require.Error(t, err, "unexpected frame for the typist: %s", frame)
}

func TestWebSocketJoinRequiresUsername(t *testing.T) {
	deps, _, _ := newTestDeps()
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	conn := dialWS(t, server)
	joinRoom(t, conn, user.User{ID: "u1"}, chat.GlobalRoomID)

	ev := readEvent(t, conn)
	require.Equal(t, chat.EventError, ev.Type)

	var errPayload chat.ErrorPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &errPayload))
	assert.Equal(t, errs.ErrUsernameRequired, errPayload.Code)
}

func TestWebSocketReconnectReplaysHistory(t *testing.T) {
	deps, msgStore, _ := newTestDeps()
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	alice := user.User{ID: "u1", Username: "alice"}

	conn := dialWS(t, server)
	joinRoom(t, conn, alice, chat.GlobalRoomID)
	readEvent(t, conn) // history
	readEvent(t, conn) // user_joined

	sendEnvelope(t, conn, chat.EventMessage, chat.MessagePayload{Content: "before the drop"})
	readEvent(t, conn) // echo

	require.Eventually(t, func() bool {
		return msgStore.count(chat.GlobalRoomID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Simulate an abrupt disconnect, then reconnect as the same user.
	conn.Close()

	reconn := dialWS(t, server)
	joinRoom(t, reconn, alice, chat.GlobalRoomID)

	// The old connection's departure may be announced while the new one is
	// hydrating, so skip presence frames until the history arrives.
	ev := readEventOfType(t, reconn, chat.EventHistory)

	var history chat.HistoryPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &history))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "before the drop", history.Messages[0].Content)
}
