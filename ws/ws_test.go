package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"barterly/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActions struct {
	allowed map[string]bool
}

func (f fakeActions) CanJoinBarter(_ context.Context, _ string, barterID string) error {
	if !f.allowed[barterID] {
		return errors.New("not a participant")
	}
	return nil
}

func (f fakeActions) SendText(_ context.Context, userID, barterID, content string) (any, error) {
	return map[string]string{"sender_id": userID, "barter_id": barterID, "content": content}, nil
}

func newTestServer(t *testing.T, manager *WebSocketManager) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewWebSocketHandler(manager, fakeActions{allowed: map[string]bool{"b1": true}}, nil)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set(contextkeys.UserIDKey, c.Query("uid"))
		c.Next()
	}, h.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", eventType)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		if frame["type"] == eventType {
			return frame
		}
	}
}

func startManager(t *testing.T, relay Relay) *WebSocketManager {
	t.Helper()
	manager := NewWebSocketManager(NewPresenceTracker(time.Minute), relay)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Run(ctx)
	return manager
}

func TestPresenceTrackerExpiry(t *testing.T) {
	p := NewPresenceTracker(30 * time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	assert.True(t, p.Touch("a"))
	assert.False(t, p.Touch("a"))
	now = now.Add(20 * time.Second)
	assert.True(t, p.Touch("b"))

	now = now.Add(15 * time.Second)
	assert.Equal(t, []string{"a"}, p.Expire())
	assert.Equal(t, []string{"b"}, p.Online())
	assert.False(t, p.IsOnline("a"))
	assert.True(t, p.IsOnline("b"))
	assert.True(t, p.Remove("b"))
	assert.False(t, p.Remove("b"))
}

func TestSeenSetEvictsOldest(t *testing.T) {
	s := newSeenSet(2)
	assert.True(t, s.add("m1"))
	assert.False(t, s.add("m1"))
	assert.True(t, s.add("m2"))
	assert.True(t, s.add("m3"))
	assert.True(t, s.add("m1"), "m1 was evicted")
}

func TestConnectJoinAndDedupe(t *testing.T) {
	manager := startManager(t, nil)
	srv := newTestServer(t, manager)

	alice := dial(t, srv, "alice")
	snapshot := readUntil(t, alice, EventPresenceSync)
	assert.Contains(t, snapshot["data"].(map[string]any)["online"], "alice")

	require.NoError(t, alice.WriteJSON(IncomingWSMessage{Action: ActionJoinBarter, Data: json.RawMessage(`{"barter_id":"b1"}`)}))
	readUntil(t, alice, EventAck)
	assert.Equal(t, 1, manager.RoomSize("b1"))
	assert.Equal(t, 1, manager.GetClientCount())

	manager.PublishToBarter("b1", "msg-1", NewEvent(EventMessageCreated, map[string]string{"id": "msg-1"}))
	manager.PublishToBarter("b1", "msg-1", NewEvent(EventMessageCreated, map[string]string{"id": "msg-1"}))
	manager.PublishToBarter("b1", "msg-2", NewEvent(EventMessageCreated, map[string]string{"id": "msg-2"}))

	first := readUntil(t, alice, EventMessageCreated)
	second := readUntil(t, alice, EventMessageCreated)
	assert.Equal(t, "msg-1", first["data"].(map[string]any)["id"])
	assert.Equal(t, "msg-2", second["data"].(map[string]any)["id"])
}

func TestJoinRejectedForNonParticipant(t *testing.T) {
	manager := startManager(t, nil)
	srv := newTestServer(t, manager)

	bob := dial(t, srv, "bob")
	require.NoError(t, bob.WriteJSON(IncomingWSMessage{Action: ActionJoinBarter, Data: json.RawMessage(`{"barter_id":"other"}`)}))
	frame := readUntil(t, bob, EventError)
	assert.Equal(t, "not a participant", frame["data"].(map[string]any)["error"])
	assert.Equal(t, 0, manager.RoomSize("other"))
}

func TestPresenceJoinAndLeaveBroadcast(t *testing.T) {
	manager := startManager(t, nil)
	srv := newTestServer(t, manager)

	alice := dial(t, srv, "alice")
	readUntil(t, alice, EventPresenceSync)
	self := readUntil(t, alice, EventPresenceJoin)
	assert.Equal(t, "alice", self["data"].(map[string]any)["user_id"])

	bob := dial(t, srv, "bob")
	joined := readUntil(t, alice, EventPresenceJoin)
	assert.Equal(t, "bob", joined["data"].(map[string]any)["user_id"])

	require.NoError(t, bob.Close())
	left := readUntil(t, alice, EventPresenceLeave)
	assert.Equal(t, "bob", left["data"].(map[string]any)["user_id"])
	assert.Eventually(t, func() bool { return !manager.IsClientConnected("bob") }, time.Second, 10*time.Millisecond)
}

func TestSendMessageAction(t *testing.T) {
	manager := startManager(t, nil)
	srv := newTestServer(t, manager)

	alice := dial(t, srv, "alice")
	require.NoError(t, alice.WriteJSON(IncomingWSMessage{Action: ActionSendMessage, Data: json.RawMessage(`{"barter_id":"b1","content":"hi"}`)}))
	ack := readUntil(t, alice, EventAck)
	msg := ack["data"].(map[string]any)["message"].(map[string]any)
	assert.Equal(t, "hi", msg["content"])
	assert.Equal(t, "alice", msg["sender_id"])
}

type failingRelay struct {
	mu        sync.Mutex
	published int
}

func (r *failingRelay) Publish(context.Context, Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published++
	return ErrPayloadTooLarge
}

func (r *failingRelay) Listen(ctx context.Context, _ func(Envelope)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (r *failingRelay) Close() error { return nil }

func TestRelayFailureFallsBackToLocalDelivery(t *testing.T) {
	relay := &failingRelay{}
	manager := startManager(t, relay)
	srv := newTestServer(t, manager)

	alice := dial(t, srv, "alice")
	readUntil(t, alice, EventPresenceSync)

	manager.PublishToUser("alice", NewEvent(EventNotificationCount, map[string]int{"count": 3}))
	frame := readUntil(t, alice, EventNotificationCount)
	assert.EqualValues(t, 3, frame["data"].(map[string]any)["count"])

	relay.mu.Lock()
	defer relay.mu.Unlock()
	assert.Positive(t, relay.published)
}

func TestRoomPublishWithoutMembersKeepsNoState(t *testing.T) {
	manager := NewWebSocketManager(NewPresenceTracker(time.Minute), nil)

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("barter-%d", i)
		manager.PublishToBarter(id, "msg-"+id, NewEvent(EventMessageCreated, map[string]string{"id": id}))
	}

	manager.mu.RLock()
	defer manager.mu.RUnlock()
	assert.Empty(t, manager.rooms)
	assert.Empty(t, manager.seen)
}

func TestClosedClientCannotJoinRoom(t *testing.T) {
	manager := NewWebSocketManager(NewPresenceTracker(time.Minute), nil)
	client := NewClient(context.Background(), "alice", nil, manager, nil)

	assert.True(t, manager.JoinRoom(client, "b1"))
	manager.LeaveRoom(client, "b1")

	client.close()
	assert.False(t, manager.JoinRoom(client, "b1"))
	assert.Equal(t, 0, manager.RoomSize("b1"))
	assert.Empty(t, client.rooms)
}

