package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"mime/multipart"
	"strings"
	"time"

	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"gorm.io/gorm"
)

const (
	meetingLinkBase   = "https://meet.google.com/new?meetingId="
	meetingIDLength   = 10
	meetingDateLayout = "2006-01-02 15:04"
)

type ChatService interface {
	GetMessages(db *gorm.DB, userID, barterID string) ([]*dto.MessageResponse, error)
	SendText(db *gorm.DB, userID, barterID, content string) (*dto.MessageResponse, error)
	SendMedia(ctx context.Context, db *gorm.DB, userID, barterID, caption string, file *multipart.FileHeader) (*dto.MessageResponse, error)
	ScheduleMeeting(db *gorm.DB, userID, barterID string, req *dto.ScheduleMeetingRequest) (*dto.MessageResponse, error)
	// CanJoinBarter guards realtime room subscriptions.
	CanJoinBarter(db *gorm.DB, userID, barterID string) error
}

type chatService struct {
	barterRepo    repositories.BarterRepository
	messageRepo   repositories.MessageRepository
	profileRepo   repositories.ProfileRepository
	uploads       UploadService
	notifications NotificationService
	realtime      RealtimePublisher
	now           func() time.Time
}

func NewChatService(
	barterRepo repositories.BarterRepository,
	messageRepo repositories.MessageRepository,
	profileRepo repositories.ProfileRepository,
	uploads UploadService,
	notifications NotificationService,
	realtime RealtimePublisher,
) ChatService {
	return &chatService{
		barterRepo:    barterRepo,
		messageRepo:   messageRepo,
		profileRepo:   profileRepo,
		uploads:       uploads,
		notifications: notifications,
		realtime:      publisherOrNoop(realtime),
		now:           time.Now,
	}
}

func (s *chatService) participantBarter(db *gorm.DB, userID, barterID string) (*models.BarterRequest, error) {
	barter, err := s.barterRepo.FindByID(db, barterID)
	if err != nil {
		return nil, handleBarterError(err)
	}
	if !barter.Involves(userID) {
		return nil, apperrors.ErrNotBarterParticipant
	}
	return barter, nil
}

// conversation returns the barter only when messaging is open on it.
func (s *chatService) conversation(db *gorm.DB, userID, barterID string) (*models.BarterRequest, error) {
	barter, err := s.participantBarter(db, userID, barterID)
	if err != nil {
		return nil, err
	}
	if !barter.Status.AllowsMessaging() {
		return nil, apperrors.ErrMessagingNotAllowed
	}
	return barter, nil
}

func (s *chatService) CanJoinBarter(db *gorm.DB, userID, barterID string) error {
	_, err := s.participantBarter(db, userID, barterID)
	return err
}

func (s *chatService) GetMessages(db *gorm.DB, userID, barterID string) ([]*dto.MessageResponse, error) {
	if _, err := s.participantBarter(db, userID, barterID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindByBarter(db, barterID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	out := make([]*dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	return out, nil
}

func (s *chatService) SendText(db *gorm.DB, userID, barterID, content string) (*dto.MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	barter, err := s.conversation(db, userID, barterID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		BarterID:    barterID,
		SenderID:    userID,
		Content:     content,
		MessageType: models.MessageTypeText,
	}
	return s.insert(db, barter, msg)
}

// SendMedia uploads first and inserts second; a failed insert removes the
// uploaded object again.
func (s *chatService) SendMedia(ctx context.Context, db *gorm.DB, userID, barterID, caption string, file *multipart.FileHeader) (*dto.MessageResponse, error) {
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}
	if limit := s.uploads.Limits().MaxMediaSize; limit > 0 && file.Size > limit {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"size": file.Size, "max_size": limit})
	}
	barter, err := s.conversation(db, userID, barterID)
	if err != nil {
		return nil, err
	}

	obj, err := s.uploads.StoreAttachment(ctx, userID, barterID, file)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		BarterID:    barterID,
		SenderID:    userID,
		Content:     strings.TrimSpace(caption),
		MessageType: models.MessageTypeMedia,
	}
	msg.SetMedia(&models.MediaPayload{URL: obj.URL, Type: string(obj.Kind), Name: obj.Name})

	resp, err := s.insert(db, barter, msg)
	if err != nil {
		s.uploads.RemoveObject(ctx, obj.Key)
		return nil, err
	}
	return resp, nil
}

// ScheduleMeeting posts a meeting message. Date and time are read as UTC
// and must lie strictly in the future.
func (s *chatService) ScheduleMeeting(db *gorm.DB, userID, barterID string, req *dto.ScheduleMeetingRequest) (*dto.MessageResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Date == "" || req.Time == "" {
		return nil, apperrors.ErrInvalidMeeting
	}
	at, err := time.ParseInLocation(meetingDateLayout, req.Date+" "+req.Time, time.UTC)
	if err != nil {
		return nil, apperrors.ErrInvalidMeeting.WithError(err)
	}
	if !at.After(s.now()) {
		return nil, apperrors.ErrMeetingInPast
	}

	barter, err := s.conversation(db, userID, barterID)
	if err != nil {
		return nil, err
	}

	link, err := meetingLink()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	msg := &models.Message{
		BarterID:    barterID,
		SenderID:    userID,
		Content:     "Meeting scheduled: " + title,
		MessageType: models.MessageTypeMeeting,
	}
	msg.SetMeeting(&models.MeetingPayload{Title: title, Date: req.Date, Time: req.Time, Link: link})
	return s.insert(db, barter, msg)
}

func (s *chatService) insert(db *gorm.DB, barter *models.BarterRequest, msg *models.Message) (*dto.MessageResponse, error) {
	if !msg.HasBody() {
		return nil, apperrors.ErrEmptyMessage
	}
	if err := s.messageRepo.Create(db, msg); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	resp := toMessageResponse(msg)

	s.realtime.PublishToBarter(barter.ID, msg.ID, ws.NewEvent(ws.EventMessageCreated, resp))

	partnerID := barter.PartnerOf(msg.SenderID)
	s.notifications.PushCount(db, partnerID)

	senderName := anonymousName
	if sender, err := s.profileRepo.FindByUserID(db, msg.SenderID); err == nil {
		senderName = displayName(sender)
	} else {
		logger.Debug("Sender profile lookup failed", "user_id", msg.SenderID, "error", err)
	}
	s.notifications.Notify(db, NotificationEvent{
		Type:        models.NotificationNewMessage,
		RecipientID: partnerID,
		SenderName:  senderName,
		ReferenceID: barter.ID,
	})
	return resp, nil
}

// meetingLink builds a join link with a random base-36 meeting id.
func meetingLink() (string, error) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	base := big.NewInt(int64(len(alphabet)))
	id := make([]byte, meetingIDLength)
	for i := range id {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		id[i] = alphabet[n.Int64()]
	}
	return meetingLinkBase + string(id), nil
}
