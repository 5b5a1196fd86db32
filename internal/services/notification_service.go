package services

import (
	"context"
	"errors"
	"time"

	"barterly/internal/email"
	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/internal/push"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"gorm.io/gorm"
)

const (
	recentMessageWindow  = 24 * time.Hour
	defaultFeedLimit     = 50
	maxFeedLimit         = 200
	notificationDeadline = 30 * time.Second
)

// NotificationEvent is raised by the barter lifecycle and chat.
type NotificationEvent struct {
	Type        models.NotificationType
	RecipientID string
	SenderName  string
	ReferenceID string
}

type NotificationService interface {
	// GetCount is the badge: pending requests addressed to the user plus
	// messages from others in accepted barters over the last 24h.
	GetCount(db *gorm.DB, userID string) (*dto.NotificationCountResponse, error)
	// PushCount recounts and pushes notification_count to each user.
	PushCount(db *gorm.DB, userIDs ...string)

	GetNotifications(db *gorm.DB, userID string, unreadOnly bool, limit int) (*dto.NotificationListResponse, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	CleanupRead(db *gorm.DB, olderThan time.Duration) (int64, error)

	// Send is the outbound email dispatcher.
	Send(ctx context.Context, db *gorm.DB, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error)
	// Notify stores a feed row and dispatches email and push in the background.
	Notify(db *gorm.DB, event NotificationEvent)

	VAPIDPublicKey() string
	Subscribe(db *gorm.DB, userID string, req *dto.PushSubscriptionRequest) error
	Unsubscribe(db *gorm.DB, userID, endpoint string) error
}

type NotificationConfig struct {
	AppURL    string
	FromEmail string
	FromName  string
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	pushRepo         repositories.PushSubscriptionRepository
	profileRepo      repositories.ProfileRepository
	userRepo         repositories.UserRepository
	barterRepo       repositories.BarterRepository
	messageRepo      repositories.MessageRepository

	mailer    email.Provider
	templates email.TemplateRenderer
	pusher    *push.Sender
	realtime  RealtimePublisher
	cfg       NotificationConfig

	now      func() time.Time
	dispatch func(func())
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	pushRepo repositories.PushSubscriptionRepository,
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	barterRepo repositories.BarterRepository,
	messageRepo repositories.MessageRepository,
	mailer email.Provider,
	templates email.TemplateRenderer,
	pusher *push.Sender,
	realtime RealtimePublisher,
	cfg NotificationConfig,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		pushRepo:         pushRepo,
		profileRepo:      profileRepo,
		userRepo:         userRepo,
		barterRepo:       barterRepo,
		messageRepo:      messageRepo,
		mailer:           mailer,
		templates:        templates,
		pusher:           pusher,
		realtime:         publisherOrNoop(realtime),
		cfg:              cfg,
		now:              time.Now,
		dispatch:         func(f func()) { go f() },
	}
}

// ---------------- Counter ----------------

func (s *notificationService) GetCount(db *gorm.DB, userID string) (*dto.NotificationCountResponse, error) {
	pending, err := s.barterRepo.CountPendingForRecipient(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	recent, err := s.messageRepo.CountRecentIncoming(db, userID, s.now().Add(-recentMessageWindow))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.NotificationCountResponse{
		Count:          pending + recent,
		PendingBarters: pending,
		RecentMessages: recent,
	}, nil
}

func (s *notificationService) PushCount(db *gorm.DB, userIDs ...string) {
	for _, userID := range userIDs {
		count, err := s.GetCount(db, userID)
		if err != nil {
			logger.Warn("Failed to recount notifications", "user_id", userID, "error", err)
			continue
		}
		s.realtime.PublishToUser(userID, ws.NewEvent(ws.EventNotificationCount, count))
	}
}

// ---------------- Feed ----------------

func (s *notificationService) GetNotifications(db *gorm.DB, userID string, unreadOnly bool, limit int) (*dto.NotificationListResponse, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	rows, err := s.notificationRepo.FindUserNotifications(db, userID, unreadOnly, limit)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	unread, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.NotificationResponse, 0, len(rows))
	for _, n := range rows {
		out = append(out, &dto.NotificationResponse{
			ID:          n.ID,
			Type:        string(n.Type),
			ReferenceID: n.ReferenceID,
			Title:       n.Title,
			Message:     n.Message,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt,
		})
	}
	return &dto.NotificationListResponse{Notifications: out, UnreadCount: unread}, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(db, userID, notificationID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.NewNotFoundError("notification", "Notification not found")
		}
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	n, err := s.notificationRepo.MarkAllAsRead(db, userID)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return n, nil
}

func (s *notificationService) CleanupRead(db *gorm.DB, olderThan time.Duration) (int64, error) {
	return s.notificationRepo.DeleteReadOlderThan(db, s.now().Add(-olderThan))
}

// ---------------- Dispatcher ----------------

func (s *notificationService) Send(ctx context.Context, db *gorm.DB, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error) {
	kind := models.NotificationType(req.Type)
	if !kind.IsEmailKind() {
		return nil, apperrors.ValidationError(map[string]string{"type": "unsupported notification type"})
	}

	profile, err := s.profileRepo.FindByUserID(db, req.RecipientUserID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	s.sendPush(ctx, db, req.RecipientUserID, kind, req.SenderName)

	if !profile.EmailNotifications {
		return &dto.SendNotificationResponse{Message: "User has disabled email notifications"}, nil
	}

	user, err := s.userRepo.FindByID(db, req.RecipientUserID)
	if err != nil {
		return nil, handleProfileError(err)
	}

	msg, err := email.BuildNotification(s.templates, kind, user.Email, senderOrSomeone(req.SenderName), s.cfg.AppURL)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	msg.From = s.fromAddress()

	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "email")
	}

	logger.CtxInfo(ctx, "Notification email sent", "type", kind, "recipient", req.RecipientUserID, "id", id)
	return &dto.SendNotificationResponse{Success: true, ID: id}, nil
}

func (s *notificationService) Notify(db *gorm.DB, event NotificationEvent) {
	if event.RecipientID == "" {
		return
	}

	row := &models.Notification{
		UserID:      event.RecipientID,
		Type:        event.Type,
		ReferenceID: event.ReferenceID,
		Title:       notificationTitle(event.Type, senderOrSomeone(event.SenderName)),
	}
	if err := s.notificationRepo.Create(db, row); err != nil {
		logger.Warn("Failed to store notification", "type", event.Type, "user_id", event.RecipientID, "error", err)
	}

	if !event.Type.IsEmailKind() {
		return
	}

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationDeadline)
		defer cancel()

		// The caller's request context may already be done.
		_, err := s.Send(ctx, db.WithContext(ctx), &dto.SendNotificationRequest{
			Type:            string(event.Type),
			RecipientUserID: event.RecipientID,
			SenderName:      event.SenderName,
		})
		if err != nil {
			logger.Warn("Notification dispatch failed", "type", event.Type, "user_id", event.RecipientID, "error", err)
		}
	})
}

func (s *notificationService) sendPush(ctx context.Context, db *gorm.DB, userID string, kind models.NotificationType, senderName string) {
	if !s.pusher.Enabled() {
		return
	}
	subs, err := s.pushRepo.FindByUser(db, userID)
	if err != nil {
		logger.Warn("Failed to load push subscriptions", "user_id", userID, "error", err)
		return
	}

	payload := push.Payload{
		Title: notificationTitle(kind, senderOrSomeone(senderName)),
		Body:  "Open Barterly to see what's new.",
		Data:  map[string]any{"type": string(kind), "url": s.cfg.AppURL},
	}
	for _, sub := range subs {
		err := s.pusher.Send(ctx, push.Subscription{Endpoint: sub.Endpoint, P256dh: sub.P256dh, Auth: sub.Auth}, payload)
		switch {
		case errors.Is(err, push.ErrSubscriptionGone):
			if err := s.pushRepo.DeleteEndpoint(db, sub.Endpoint); err != nil {
				logger.Warn("Failed to prune push subscription", "error", err)
			}
		case err != nil:
			logger.Warn("Web push failed", "user_id", userID, "error", err)
		}
	}
}

func (s *notificationService) fromAddress() string {
	if s.cfg.FromEmail == "" {
		return ""
	}
	if s.cfg.FromName == "" {
		return s.cfg.FromEmail
	}
	return s.cfg.FromName + " <" + s.cfg.FromEmail + ">"
}

// ---------------- Web push ----------------

func (s *notificationService) VAPIDPublicKey() string {
	return s.pusher.PublicKey()
}

func (s *notificationService) Subscribe(db *gorm.DB, userID string, req *dto.PushSubscriptionRequest) error {
	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.pushRepo.Upsert(db, sub); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *notificationService) Unsubscribe(db *gorm.DB, userID, endpoint string) error {
	if err := s.pushRepo.DeleteByEndpoint(db, userID, endpoint); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

func notificationTitle(kind models.NotificationType, sender string) string {
	if subject, err := email.Subject(kind, sender); err == nil {
		return subject
	}
	if kind == models.NotificationBarterCompleted {
		return "Barter completed with " + sender
	}
	return string(kind)
}

func senderOrSomeone(name string) string {
	if name == "" {
		return "Someone"
	}
	return name
}
