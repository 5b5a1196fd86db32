package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"barterly/internal/logger"
)

const (
	seenPerRoom    = 256
	publishTimeout = 5 * time.Second
)

// Relay fans envelopes out across server instances. Envelopes published to
// the relay come back through Listen, including this instance's own.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	Listen(ctx context.Context, deliver func(Envelope)) error
	Close() error
}

// WebSocketManager tracks connected clients by user and by barter room.
// A user may hold several connections at once.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	seen       map[string]*seenSet
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	presence *PresenceTracker
	relay    Relay
}

func NewWebSocketManager(presence *PresenceTracker, relay Relay) *WebSocketManager {
	if presence == nil {
		presence = NewPresenceTracker(time.Minute)
	}
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		seen:       make(map[string]*seenSet),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   presence,
		relay:      relay,
	}
}

// Run processes registrations until ctx is done. With a relay configured it
// also consumes relayed envelopes.
func (manager *WebSocketManager) Run(ctx context.Context) {
	if manager.relay != nil {
		go func() {
			if err := manager.relay.Listen(ctx, manager.deliver); err != nil && ctx.Err() == nil {
				logger.Error("Realtime relay stopped", "error", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return
		case client := <-manager.register:
			manager.addClient(client)
		case client := <-manager.unregister:
			manager.removeClient(client)
		}
	}
}

func (manager *WebSocketManager) Register(client *Client) {
	manager.register <- client
}

func (manager *WebSocketManager) Unregister(client *Client) {
	manager.unregister <- client
}

func (manager *WebSocketManager) addClient(client *Client) {
	manager.mu.Lock()
	conns, ok := manager.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		manager.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	total := manager.countLocked()
	manager.mu.Unlock()

	logger.Debug("Client registered", "user_id", client.UserID, "total", total)

	joined := manager.presence.Touch(client.UserID)
	client.trySend(mustEvent(NewEvent(EventPresenceSync, map[string]any{"online": manager.presence.Online()})))
	if joined {
		manager.PublishAll(NewEvent(EventPresenceJoin, map[string]string{"user_id": client.UserID}))
	}
}

func (manager *WebSocketManager) removeClient(client *Client) {
	manager.mu.Lock()
	conns, ok := manager.clients[client.UserID]
	if !ok {
		manager.mu.Unlock()
		return
	}
	if _, ok := conns[client]; !ok {
		manager.mu.Unlock()
		return
	}
	delete(conns, client)
	lastConn := len(conns) == 0
	if lastConn {
		delete(manager.clients, client.UserID)
	}
	for barterID := range client.rooms {
		manager.leaveLocked(client, barterID)
	}
	client.close()
	total := manager.countLocked()
	manager.mu.Unlock()

	logger.Debug("Client unregistered", "user_id", client.UserID, "total", total)

	if lastConn && manager.presence.Remove(client.UserID) {
		manager.PublishAll(NewEvent(EventPresenceLeave, map[string]string{"user_id": client.UserID}))
	}
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	for userID, conns := range manager.clients {
		for client := range conns {
			client.close()
		}
		delete(manager.clients, userID)
	}
	manager.rooms = make(map[string]map[*Client]struct{})
}

func (manager *WebSocketManager) countLocked() int {
	total := 0
	for _, conns := range manager.clients {
		total += len(conns)
	}
	return total
}

// Heartbeat refreshes the user's presence entry.
func (manager *WebSocketManager) Heartbeat(userID string) {
	if manager.presence.Touch(userID) {
		manager.PublishAll(NewEvent(EventPresenceJoin, map[string]string{"user_id": userID}))
	}
}

// SweepPresence expires silent users and announces their departure.
func (manager *WebSocketManager) SweepPresence() []string {
	expired := manager.presence.Expire()
	for _, userID := range expired {
		manager.PublishAll(NewEvent(EventPresenceLeave, map[string]string{"user_id": userID}))
	}
	return expired
}

func (manager *WebSocketManager) OnlineUsers() []string {
	return manager.presence.Online()
}

// JoinRoom adds the client to a barter room. A client that has already
// been closed is not added and false is returned.
func (manager *WebSocketManager) JoinRoom(client *Client, barterID string) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if client.isClosed() {
		return false
	}
	members, ok := manager.rooms[barterID]
	if !ok {
		members = make(map[*Client]struct{})
		manager.rooms[barterID] = members
	}
	members[client] = struct{}{}
	client.rooms[barterID] = struct{}{}
	return true
}

func (manager *WebSocketManager) LeaveRoom(client *Client, barterID string) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.leaveLocked(client, barterID)
}

func (manager *WebSocketManager) leaveLocked(client *Client, barterID string) {
	delete(client.rooms, barterID)
	members, ok := manager.rooms[barterID]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(manager.rooms, barterID)
		delete(manager.seen, barterID)
	}
}

// PublishToUser delivers to every connection of one user.
func (manager *WebSocketManager) PublishToUser(userID string, event Event) {
	manager.publish(TargetUser, userID, "", event)
}

// PublishToBarter delivers to clients in the barter room. A non-empty
// dedupeID is delivered at most once per room.
func (manager *WebSocketManager) PublishToBarter(barterID, dedupeID string, event Event) {
	manager.publish(TargetRoom, barterID, dedupeID, event)
}

func (manager *WebSocketManager) PublishAll(event Event) {
	manager.publish(TargetAll, "", "", event)
}

func (manager *WebSocketManager) publish(target, key, dedupeID string, event Event) {
	env, err := newEnvelope(target, key, dedupeID, event)
	if err != nil {
		logger.Error("Failed to encode realtime event", "type", event.Type, "error", err)
		return
	}

	if manager.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := manager.relay.Publish(ctx, env)
		cancel()
		if err == nil {
			return
		}
		logger.Warn("Relay publish failed, delivering locally", "type", event.Type, "error", err)
	}
	manager.deliver(env)
}

func (manager *WebSocketManager) deliver(env Envelope) {
	var targets []*Client

	manager.mu.Lock()
	switch env.Target {
	case TargetUser:
		for client := range manager.clients[env.Key] {
			targets = append(targets, client)
		}
	case TargetRoom:
		// Nobody to deliver to; dedupe state lives only as long as the room.
		if len(manager.rooms[env.Key]) == 0 {
			manager.mu.Unlock()
			return
		}
		if env.DedupeID != "" {
			seen, ok := manager.seen[env.Key]
			if !ok {
				seen = newSeenSet(seenPerRoom)
				manager.seen[env.Key] = seen
			}
			if !seen.add(env.DedupeID) {
				manager.mu.Unlock()
				return
			}
		}
		for client := range manager.rooms[env.Key] {
			targets = append(targets, client)
		}
	case TargetAll:
		for _, conns := range manager.clients {
			for client := range conns {
				targets = append(targets, client)
			}
		}
	}
	manager.mu.Unlock()

	for _, client := range targets {
		if !client.trySend(env.Event) {
			go func(c *Client) { manager.unregister <- c }(client)
		}
	}
}

func (manager *WebSocketManager) IsClientConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}

func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.countLocked()
}

func (manager *WebSocketManager) RoomSize(barterID string) int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.rooms[barterID])
}

func mustEvent(event Event) json.RawMessage {
	raw, err := json.Marshal(event)
	if err != nil {
		return json.RawMessage(`{"type":"error"}`)
	}
	return raw
}

// seenSet remembers the last n ids.
type seenSet struct {
	ids   map[string]struct{}
	order []string
	limit int
}

func newSeenSet(limit int) *seenSet {
	return &seenSet{ids: make(map[string]struct{}), limit: limit}
}

// add reports false when id was already present.
func (s *seenSet) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	return true
}
