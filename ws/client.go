package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"barterly/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// Actions executes client requests that need the database.
type Actions interface {
	// CanJoinBarter returns an error unless userID participates in the barter.
	CanJoinBarter(ctx context.Context, userID, barterID string) error
	// SendText stores a text message and returns the created row.
	SendText(ctx context.Context, userID, barterID, content string) (any, error)
}

type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan json.RawMessage
	Ctx     context.Context
	Manager *WebSocketManager
	Actions Actions

	rooms  map[string]struct{}
	mu     sync.Mutex
	closed bool
}

func NewClient(ctx context.Context, userID string, conn *websocket.Conn, manager *WebSocketManager, actions Actions) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan json.RawMessage, sendBuffer),
		Ctx:     ctx,
		Manager: manager,
		Actions: actions,
		rooms:   make(map[string]struct{}),
	}
}

// trySend queues a frame and reports false when the client is closed or
// its buffer is full.
func (c *Client) trySend(frame json.RawMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) reply(eventType string, data any) {
	c.trySend(mustEvent(NewEvent(eventType, data)))
}

func (c *Client) replyError(action string, err error) {
	c.reply(EventError, map[string]string{"action": action, "error": err.Error()})
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", "user_id", c.UserID, "error", err)
			}
			break
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.replyError("", errors.New("malformed message"))
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("WebSocket write error", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type barterPayload struct {
	BarterID string `json:"barter_id"`
	Content  string `json:"content"`
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {
	case ActionHeartbeat:
		c.Manager.Heartbeat(c.UserID)

	case ActionJoinBarter:
		payload, ok := c.decodeBarter(msg)
		if !ok {
			return
		}
		if c.Actions != nil {
			if err := c.Actions.CanJoinBarter(c.Ctx, c.UserID, payload.BarterID); err != nil {
				c.replyError(msg.Action, err)
				return
			}
		}
		if !c.Manager.JoinRoom(c, payload.BarterID) {
			return
		}
		c.reply(EventAck, map[string]string{"action": msg.Action, "barter_id": payload.BarterID})

	case ActionLeaveBarter:
		payload, ok := c.decodeBarter(msg)
		if !ok {
			return
		}
		c.Manager.LeaveRoom(c, payload.BarterID)
		c.reply(EventAck, map[string]string{"action": msg.Action, "barter_id": payload.BarterID})

	case ActionSendMessage:
		payload, ok := c.decodeBarter(msg)
		if !ok {
			return
		}
		if c.Actions == nil {
			c.replyError(msg.Action, errors.New("messaging unavailable"))
			return
		}
		created, err := c.Actions.SendText(c.Ctx, c.UserID, payload.BarterID, payload.Content)
		if err != nil {
			c.replyError(msg.Action, err)
			return
		}
		c.reply(EventAck, map[string]any{"action": msg.Action, "message": created})

	default:
		c.replyError(msg.Action, errors.New("unknown action"))
	}
}

func (c *Client) decodeBarter(msg IncomingWSMessage) (barterPayload, bool) {
	var payload barterPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.BarterID == "" {
		c.replyError(msg.Action, errors.New("barter_id is required"))
		return payload, false
	}
	return payload, true
}
