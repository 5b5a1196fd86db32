package ws

import (
	"encoding/json"
	"time"
)

// Server event types.
const (
	EventPresenceSync      = "presence.sync"
	EventPresenceJoin      = "presence.join"
	EventPresenceLeave     = "presence.leave"
	EventNotificationCount = "notification_count"
	EventMessageCreated    = "message.created"
	EventBarterCreated     = "barter_request.created"
	EventBarterUpdated     = "barter_request.updated"
	EventBarterDeleted     = "barter_request.deleted"
	EventError             = "error"
	EventAck               = "ack"
)

// Client actions.
const (
	ActionHeartbeat   = "heartbeat"
	ActionJoinBarter  = "join_barter"
	ActionLeaveBarter = "leave_barter"
	ActionSendMessage = "send_message"
)

// Event is what clients receive.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

func NewEvent(eventType string, data any) Event {
	return Event{Type: eventType, Data: data, At: time.Now().UTC()}
}

// IncomingWSMessage is what clients send.
type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Target kinds of an Envelope.
const (
	TargetUser = "user"
	TargetRoom = "room"
	TargetAll  = "all"
)

// Envelope addresses an event. DedupeID, when set on a room envelope, is
// delivered at most once per room.
type Envelope struct {
	Target   string          `json:"target"`
	Key      string          `json:"key,omitempty"`
	DedupeID string          `json:"dedupe_id,omitempty"`
	Event    json.RawMessage `json:"event"`
}

func newEnvelope(target, key, dedupeID string, event Event) (Envelope, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Target: target, Key: key, DedupeID: dedupeID, Event: raw}, nil
}
