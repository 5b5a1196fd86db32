package dto

import "time"

// SendNotificationRequest mirrors the outbound email function payload.
type SendNotificationRequest struct {
	Type            string         `json:"type" validate:"required,is-notification-type"`
	RecipientUserID string         `json:"recipientUserId" validate:"required"`
	SenderName      string         `json:"senderName" validate:"omitempty,max=120"`
	AdditionalData  map[string]any `json:"additionalData"`
}

type SendNotificationResponse struct {
	Success bool   `json:"success,omitempty"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type NotificationCountResponse struct {
	Count          int64 `json:"count"`
	PendingBarters int64 `json:"pending_barters"`
	RecentMessages int64 `json:"recent_messages"`
}

type NotificationResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ReferenceID string    `json:"reference_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
}

type PushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}
