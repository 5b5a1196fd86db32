package services

import (
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

type BarterService interface {
	CreateBarter(db *gorm.DB, userID string, req *dto.CreateBarterRequest) (*dto.BarterResponse, error)
	GetBarters(db *gorm.DB, userID string, query *dto.BarterListQuery) ([]*dto.BarterResponse, error)
	GetBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error)

	// Lifecycle
	AcceptBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error)
	DeclineBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error)
	CompleteBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error)
	CancelBarter(db *gorm.DB, userID, barterID string) error
}

type barterService struct {
	barterRepo    repositories.BarterRepository
	profileRepo   repositories.ProfileRepository
	skillRepo     repositories.SkillRepository
	notifications NotificationService
	realtime      RealtimePublisher
}

func NewBarterService(
	barterRepo repositories.BarterRepository,
	profileRepo repositories.ProfileRepository,
	skillRepo repositories.SkillRepository,
	notifications NotificationService,
	realtime RealtimePublisher,
) BarterService {
	return &barterService{
		barterRepo:    barterRepo,
		profileRepo:   profileRepo,
		skillRepo:     skillRepo,
		notifications: notifications,
		realtime:      publisherOrNoop(realtime),
	}
}

func (s *barterService) CreateBarter(db *gorm.DB, userID string, req *dto.CreateBarterRequest) (*dto.BarterResponse, error) {
	if req.RecipientID == userID {
		return nil, apperrors.ErrSelfBarter
	}

	recipient, err := s.profileRepo.FindByUserID(db, req.RecipientID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if recipient.IsBanned {
		return nil, apperrors.ErrProfileNotFound
	}

	if err := s.checkSkillOwner(db, req.SkillOfferedID, userID, "skill_offered_id"); err != nil {
		return nil, err
	}
	if err := s.checkSkillOwner(db, req.SkillWantedID, req.RecipientID, "skill_wanted_id"); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = defaultBarterGreeting
	}

	barter := &models.BarterRequest{
		RequesterID:    userID,
		RecipientID:    req.RecipientID,
		SkillOfferedID: req.SkillOfferedID,
		SkillWantedID:  req.SkillWantedID,
		Message:        message,
		Status:         models.BarterStatusPending,
	}
	if err := s.barterRepo.Create(db, barter); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	full, err := s.barterRepo.FindByIDWithProfiles(db, barter.ID)
	if err != nil {
		return nil, handleBarterError(err)
	}
	resp := toBarterResponse(full)

	logger.Info("Barter requested", "barter_id", barter.ID, "requester_id", userID, "recipient_id", req.RecipientID)

	s.broadcast(ws.EventBarterCreated, full, resp)
	s.notifications.PushCount(db, full.RecipientID)
	s.notifications.Notify(db, NotificationEvent{
		Type:        models.NotificationBarterRequest,
		RecipientID: full.RecipientID,
		SenderName:  displayName(full.Requester),
		ReferenceID: full.ID,
	})
	return resp, nil
}

func (s *barterService) checkSkillOwner(db *gorm.DB, skillID *string, ownerID, field string) error {
	if skillID == nil || *skillID == "" {
		return nil
	}
	skill, err := s.skillRepo.FindByID(db, *skillID)
	if err != nil {
		return apperrors.ValidationError(map[string]string{field: "skill not found"})
	}
	if skill.UserID != ownerID {
		return apperrors.ValidationError(map[string]string{field: "skill belongs to another member"})
	}
	return nil
}

func (s *barterService) GetBarters(db *gorm.DB, userID string, query *dto.BarterListQuery) ([]*dto.BarterResponse, error) {
	filter := repositories.BarterFilter{}
	if query != nil {
		filter.Role = query.Role
		filter.Status = models.BarterStatus(query.Status)
	}
	barters, err := s.barterRepo.FindForUser(db, userID, filter)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	out := make([]*dto.BarterResponse, 0, len(barters))
	for i := range barters {
		out = append(out, toBarterResponse(&barters[i]))
	}
	return out, nil
}

func (s *barterService) GetBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error) {
	barter, err := s.barterRepo.FindByIDWithProfiles(db, barterID)
	if err != nil {
		return nil, handleBarterError(err)
	}
	if !barter.Involves(userID) {
		return nil, apperrors.ErrNotBarterParticipant
	}
	return toBarterResponse(barter), nil
}

func (s *barterService) AcceptBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error) {
	return s.transition(db, userID, barterID, models.BarterStatusAccepted)
}

func (s *barterService) DeclineBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error) {
	return s.transition(db, userID, barterID, models.BarterStatusDeclined)
}

func (s *barterService) CompleteBarter(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error) {
	return s.transition(db, userID, barterID, models.BarterStatusCompleted)
}

// transition applies one lifecycle step. Re-applying the current status
// succeeds without side effects.
func (s *barterService) transition(db *gorm.DB, userID, barterID string, to models.BarterStatus) (*dto.BarterResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	barter, err := s.barterRepo.FindByID(tx, barterID)
	if err != nil {
		return nil, handleBarterError(err)
	}
	if !barter.Involves(userID) {
		return nil, apperrors.ErrNotBarterParticipant
	}
	if (to == models.BarterStatusAccepted || to == models.BarterStatusDeclined) && userID != barter.RecipientID {
		return nil, apperrors.ErrOnlyRecipient
	}

	from := barter.Status
	if from == to {
		tx.Rollback()
		return s.GetBarter(db, userID, barterID)
	}
	if !from.CanTransitionTo(to) {
		return nil, apperrors.ErrInvalidBarterTransition.WithDetails(map[string]string{
			"from": string(from),
			"to":   string(to),
		})
	}

	var completedAt *time.Time
	if to == models.BarterStatusCompleted {
		now := time.Now()
		completedAt = &now
	}
	updated, err := s.barterRepo.UpdateStatus(tx, barterID, from, to, completedAt)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !updated {
		// Someone else moved it first.
		return nil, apperrors.ErrInvalidBarterTransition
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	full, err := s.barterRepo.FindByIDWithProfiles(db, barterID)
	if err != nil {
		return nil, handleBarterError(err)
	}
	resp := toBarterResponse(full)

	logger.Info("Barter status changed", "barter_id", barterID, "from", from, "to", to, "by", userID)

	s.broadcast(ws.EventBarterUpdated, full, resp)
	s.notifications.PushCount(db, full.RequesterID, full.RecipientID)

	actor := full.Requester
	if userID == full.RecipientID {
		actor = full.Recipient
	}
	event := NotificationEvent{
		RecipientID: full.PartnerOf(userID),
		SenderName:  displayName(actor),
		ReferenceID: full.ID,
	}
	switch to {
	case models.BarterStatusAccepted:
		event.Type = models.NotificationBarterAccepted
	case models.BarterStatusDeclined:
		event.Type = models.NotificationBarterDeclined
	case models.BarterStatusCompleted:
		event.Type = models.NotificationBarterCompleted
	}
	s.notifications.Notify(db, event)

	return resp, nil
}

// CancelBarter withdraws a pending request by deleting it.
func (s *barterService) CancelBarter(db *gorm.DB, userID, barterID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	barter, err := s.barterRepo.FindByID(tx, barterID)
	if err != nil {
		return handleBarterError(err)
	}
	if !barter.Involves(userID) {
		return apperrors.ErrNotBarterParticipant
	}
	if barter.RequesterID != userID {
		return apperrors.ErrOnlyRequester
	}
	if barter.Status != models.BarterStatusPending {
		return apperrors.ErrInvalidBarterTransition
	}

	if err := s.barterRepo.Delete(tx, barterID); err != nil {
		return handleBarterError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}

	logger.Info("Barter cancelled", "barter_id", barterID, "requester_id", userID)

	payload := map[string]string{"id": barter.ID}
	s.realtime.PublishToUser(barter.RequesterID, ws.NewEvent(ws.EventBarterDeleted, payload))
	s.realtime.PublishToUser(barter.RecipientID, ws.NewEvent(ws.EventBarterDeleted, payload))
	s.notifications.PushCount(db, barter.RecipientID)
	return nil
}

func (s *barterService) broadcast(eventType string, barter *models.BarterRequest, resp *dto.BarterResponse) {
	event := ws.NewEvent(eventType, resp)
	s.realtime.PublishToUser(barter.RequesterID, event)
	s.realtime.PublishToUser(barter.RecipientID, event)
}
