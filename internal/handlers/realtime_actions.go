package handlers

import (
	"context"

	"barterly/internal/services"

	"gorm.io/gorm"
)

// RealtimeActions lets WebSocket clients join barter rooms and send text
// messages through the same rules as the HTTP API.
type RealtimeActions struct {
	db   *gorm.DB
	chat services.ChatService
}

func NewRealtimeActions(db *gorm.DB, chat services.ChatService) *RealtimeActions {
	return &RealtimeActions{db: db, chat: chat}
}

func (a *RealtimeActions) CanJoinBarter(ctx context.Context, userID, barterID string) error {
	return a.chat.CanJoinBarter(a.db.WithContext(ctx), userID, barterID)
}

func (a *RealtimeActions) SendText(ctx context.Context, userID, barterID, content string) (any, error) {
	msg, err := a.chat.SendText(a.db.WithContext(ctx), userID, barterID, content)
	if err != nil {
		return nil, err
	}
	return msg, nil
}
