package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"barterly/internal/auth"
	"barterly/internal/email"
	"barterly/internal/imageprocessor"
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/internal/storage"
	"barterly/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ---------------- Fakes ----------------

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saves   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.saves++
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) GetURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) count() (objects, saves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects), s.saves
}

type published struct {
	Target   string
	Key      string
	DedupeID string
	Event    ws.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) PublishToUser(userID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Target: ws.TargetUser, Key: userID, Event: event})
}

func (p *fakePublisher) PublishToBarter(barterID, dedupeID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Target: ws.TargetRoom, Key: barterID, DedupeID: dedupeID, Event: event})
}

func (p *fakePublisher) ofType(eventType string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

// ---------------- Environment ----------------

type testEnv struct {
	db       *gorm.DB
	store    *fakeStorage
	realtime *fakePublisher
	mailer   *email.LogProvider
	svc      *ServiceContainer

	users    repositories.UserRepository
	profiles repositories.ProfileRepository
	skills   repositories.SkillRepository
	ratings  repositories.RatingRepository
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:       openTestDB(t),
		store:    newFakeStorage(),
		realtime: &fakePublisher{},
		mailer:   email.NewLogProvider(),
		users:    repositories.NewUserRepository(),
		profiles: repositories.NewProfileRepository(),
		skills:   repositories.NewSkillRepository(),
		ratings:  repositories.NewRatingRepository(),
	}

	templates, err := email.NewTemplateManager()
	require.NoError(t, err)

	barterRepo := repositories.NewBarterRepository()
	messageRepo := repositories.NewMessageRepository()
	categoryRepo := repositories.NewCategoryRepository()
	reportRepo := repositories.NewReportRepository()

	notifications := NewNotificationService(
		repositories.NewNotificationRepository(),
		repositories.NewPushSubscriptionRepository(),
		env.profiles, env.users, barterRepo, messageRepo,
		env.mailer, templates, nil, env.realtime,
		NotificationConfig{AppURL: "https://barterly.test", FromEmail: "hello@barterly.test", FromName: "Barterly"},
	).(*notificationService)
	// Deliver inline so tests observe emails deterministically.
	notifications.dispatch = func(f func()) { f() }

	uploads := NewUploadService(env.store, imageprocessor.NewProcessor(85), env.profiles,
		repositories.NewProofRepository(), env.ratings, DefaultUploadLimits())
	catalog := NewCatalogService(env.profiles, env.skills, categoryRepo, env.ratings)
	barters := NewBarterService(barterRepo, env.profiles, env.skills, notifications, env.realtime)

	env.svc = &ServiceContainer{
		AuthService:         NewAuthService(env.users, env.profiles, auth.NewTokenManager("test-secret", time.Hour)),
		ProfileService:      NewProfileService(env.profiles, env.skills, categoryRepo, env.ratings),
		SkillService:        NewSkillService(env.skills, categoryRepo),
		CatalogService:      catalog,
		FavoriteService:     NewFavoriteService(repositories.NewFavoriteRepository(), env.profiles, catalog),
		BarterService:       barters,
		ChatService:         NewChatService(barterRepo, messageRepo, env.profiles, uploads, notifications, env.realtime),
		RatingService:       NewRatingService(env.ratings, barterRepo, env.profiles),
		ReportService:       NewReportService(reportRepo, env.profiles),
		PortfolioService:    NewPortfolioService(barterRepo, env.ratings),
		MatchingService:     NewMatchingService(env.profiles, env.ratings, barters),
		InsightsService:     NewInsightsService(env.profiles, env.skills, barterRepo, env.ratings),
		NotificationService: notifications,
		UploadService:       uploads,
		AdminService:        NewAdminService(env.users, env.profiles, barterRepo, reportRepo),
	}
	return env
}

type member struct {
	Name     string
	Offered  string
	Wanted   string
	Location string
}

// seedMember creates an account and its profile directly through the
// repositories and returns the user id.
func (env *testEnv) seedMember(t *testing.T, m member) string {
	t.Helper()
	user := &models.User{
		Email:        strings.ToLower(strings.ReplaceAll(m.Name, " ", ".")) + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         models.UserRoleUser,
	}
	require.NoError(t, env.users.Create(env.db, user))

	profile := &models.Profile{
		UserID:       user.ID,
		FullName:     m.Name,
		SkillOffered: m.Offered,
		SkillWanted:  m.Wanted,
		Location:     m.Location,
	}
	require.NoError(t, env.profiles.Create(env.db, profile))
	return user.ID
}

func (env *testEnv) seedSkill(t *testing.T, userID, title, category string, kind models.SkillType) *models.Skill {
	t.Helper()
	skill := &models.Skill{UserID: userID, Title: title, Category: category, SkillType: kind}
	skill.SetTags(nil)
	require.NoError(t, env.skills.Create(env.db, skill))
	return skill
}

func (env *testEnv) ban(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, env.profiles.SetBanned(env.db, userID, true))
}

// acceptedBarter walks a fresh request from requester to recipient into
// the accepted state.
func (env *testEnv) acceptedBarter(t *testing.T, requesterID, recipientID string) string {
	t.Helper()
	created, err := env.svc.BarterService.CreateBarter(env.db, requesterID, &dto.CreateBarterRequest{RecipientID: recipientID})
	require.NoError(t, err)
	_, err = env.svc.BarterService.AcceptBarter(env.db, recipientID, created.ID)
	require.NoError(t, err)
	return created.ID
}

func (env *testEnv) completedBarter(t *testing.T, requesterID, recipientID string) string {
	t.Helper()
	id := env.acceptedBarter(t, requesterID, recipientID)
	_, err := env.svc.BarterService.CompleteBarter(env.db, requesterID, id)
	require.NoError(t, err)
	return id
}

// rate completes a fresh barter between the pair and records a rating.
func (env *testEnv) rate(t *testing.T, raterID, ratedID string, score int) *dto.RatingResponse {
	t.Helper()
	barterID := env.completedBarter(t, raterID, ratedID)
	resp, err := env.svc.RatingService.CreateRating(env.db, raterID, &dto.CreateRatingRequest{
		BarterID: barterID,
		RatedID:  ratedID,
		Rating:   score,
	})
	require.NoError(t, err)
	return resp
}
