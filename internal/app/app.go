package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"barterly/internal/auth"
	"barterly/internal/config"
	"barterly/internal/email"
	"barterly/internal/handlers"
	"barterly/internal/imageprocessor"
	"barterly/internal/logger"
	"barterly/internal/middleware"
	"barterly/internal/models"
	"barterly/internal/push"
	"barterly/internal/repositories"
	"barterly/internal/routes"
	"barterly/internal/services"
	"barterly/internal/storage"
	"barterly/internal/validator"
	"barterly/internal/workers"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	docsSpecPath    = "docs/openapi.yaml"
	shutdownTimeout = 15 * time.Second
)

// Application is the assembled server: database, services, realtime hub
// and router.
type Application struct {
	Config   *config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	Services *services.ServiceContainer
	Realtime *ws.WebSocketManager

	limiter *middleware.IPRateLimiter
	relay   *ws.PGRelay
}

// Run loads the configuration from path and serves until SIGINT/SIGTERM.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}

	application, err := New(cfg, db)
	if err != nil {
		return err
	}
	if err := application.Seed(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Serve(ctx)
}

// OpenDatabase connects with the configured driver and checks the
// connection.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	gormCfg := &gorm.Config{}
	if !cfg.IsDevelopment() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	logger.Info("Database connected")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Info("Database migrated")
	return nil
}

// New wires repositories, services, handlers and the router. Background
// loops start with Start.
func New(cfg *config.Config, db *gorm.DB) (*Application, error) {
	store, err := storage.NewStorage(storage.Config{
		Type:          cfg.Storage.Type,
		BasePath:      cfg.Storage.BasePath,
		BaseURL:       cfg.Storage.BaseURL,
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Endpoint:      cfg.Storage.Endpoint,
		CloudinaryURL: cfg.Storage.CloudinaryURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	application := &Application{Config: cfg, DB: db}

	var relay ws.Relay
	if cfg.Realtime.Driver == "postgres" {
		dsn := cfg.Realtime.DSN
		if dsn == "" {
			dsn = cfg.Database.DSN
		}
		pgRelay, err := ws.NewPGRelay(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize realtime relay: %w", err)
		}
		application.relay = pgRelay
		relay = pgRelay
	}
	application.Realtime = ws.NewWebSocketManager(ws.NewPresenceTracker(cfg.PresenceTTL()), relay)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWTTTL())

	serviceContainer, err := initializeServices(cfg, tokens, store, application.Realtime)
	if err != nil {
		return nil, err
	}
	application.Services = serviceContainer

	if cfg.Server.RateLimit > 0 {
		application.limiter = middleware.NewIPRateLimiter(cfg.Server.RateLimit, time.Minute)
	}

	appHandlers := initializeHandlers(serviceContainer, store, cfg.Storage.Type)
	wsHandler := ws.NewWebSocketHandler(
		application.Realtime,
		handlers.NewRealtimeActions(db, serviceContainer.ChatService),
		cfg.Server.CORSOrigins,
	)

	application.Router = initializeGinRouter(cfg, db, application.limiter)

	docs := routes.Docs{}
	if cfg.Server.EnableDocs {
		docs.SpecPath = docsSpecPath
	}
	routes.RegisterRoutes(application.Router, appHandlers, wsHandler, routes.Guards{
		Tokens: tokens,
		Bans:   repositories.NewProfileRepository(),
	}, docs)

	return application, nil
}

func initializeServices(cfg *config.Config, tokens *auth.TokenManager, store storage.Storage, realtime services.RealtimePublisher) (*services.ServiceContainer, error) {
	var mailer email.Provider
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured; emails are logged instead of sent")
		mailer = email.NewLogProvider()
	} else {
		smtpCfg := email.DefaultConfig()
		smtpCfg.Host = cfg.Email.SMTPHost
		if cfg.Email.SMTPPort != 0 {
			smtpCfg.Port = cfg.Email.SMTPPort
		}
		smtpCfg.Username = cfg.Email.SMTPUsername
		smtpCfg.Password = cfg.Email.SMTPPassword
		if cfg.Email.FromEmail != "" {
			smtpCfg.FromEmail = cfg.Email.FromEmail
		}
		if cfg.Email.FromName != "" {
			smtpCfg.FromName = cfg.Email.FromName
		}
		mailer = email.NewSMTPProvider(smtpCfg)
	}

	templates, err := email.NewTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	if cfg.Email.TemplatesDir != "" {
		if err := templates.LoadTemplates(cfg.Email.TemplatesDir); err != nil {
			return nil, fmt.Errorf("failed to load email templates from %s: %w", cfg.Email.TemplatesDir, err)
		}
	}

	pusher := push.NewSender(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
	if !pusher.Enabled() {
		logger.Warn("VAPID keys are not configured; web push is disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	skillRepo := repositories.NewSkillRepository()
	categoryRepo := repositories.NewCategoryRepository()
	barterRepo := repositories.NewBarterRepository()
	messageRepo := repositories.NewMessageRepository()
	ratingRepo := repositories.NewRatingRepository()
	favoriteRepo := repositories.NewFavoriteRepository()
	reportRepo := repositories.NewReportRepository()
	proofRepo := repositories.NewProofRepository()
	notificationRepo := repositories.NewNotificationRepository()
	pushRepo := repositories.NewPushSubscriptionRepository()

	// --- Services ---
	notificationService := services.NewNotificationService(
		notificationRepo, pushRepo, profileRepo, userRepo, barterRepo, messageRepo,
		mailer, templates, pusher, realtime,
		services.NotificationConfig{
			AppURL:    cfg.Email.AppURL,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		},
	)
	uploadService := services.NewUploadService(
		store, imageprocessor.NewProcessor(cfg.Upload.ImageQuality), profileRepo, proofRepo, ratingRepo,
		services.UploadLimits{
			MaxMediaSize:  cfg.Upload.MaxMediaSize,
			MaxAvatarSize: cfg.Upload.MaxAvatarSize,
			MaxProofSize:  cfg.Upload.MaxProofSize,
			AvatarPixels:  cfg.Upload.AvatarPixels,
		},
	)
	catalogService := services.NewCatalogService(profileRepo, skillRepo, categoryRepo, ratingRepo)
	barterService := services.NewBarterService(barterRepo, profileRepo, skillRepo, notificationService, realtime)

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, profileRepo, tokens),
		ProfileService:      services.NewProfileService(profileRepo, skillRepo, categoryRepo, ratingRepo),
		SkillService:        services.NewSkillService(skillRepo, categoryRepo),
		CatalogService:      catalogService,
		FavoriteService:     services.NewFavoriteService(favoriteRepo, profileRepo, catalogService),
		BarterService:       barterService,
		ChatService:         services.NewChatService(barterRepo, messageRepo, profileRepo, uploadService, notificationService, realtime),
		RatingService:       services.NewRatingService(ratingRepo, barterRepo, profileRepo),
		ReportService:       services.NewReportService(reportRepo, profileRepo),
		PortfolioService:    services.NewPortfolioService(barterRepo, ratingRepo),
		MatchingService:     services.NewMatchingService(profileRepo, ratingRepo, barterService),
		InsightsService:     services.NewInsightsService(profileRepo, skillRepo, barterRepo, ratingRepo),
		NotificationService: notificationService,
		UploadService:       uploadService,
		AdminService:        services.NewAdminService(userRepo, profileRepo, barterRepo, reportRepo),
	}, nil
}

func initializeHandlers(svc *services.ServiceContainer, store storage.Storage, storageType string) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	appHandlers := &handlers.AppHandlers{
		AuthHandler: handlers.NewAuthHandler(baseHandler, svc.AuthService),
		ProfileHandler: handlers.NewProfileHandler(baseHandler,
			svc.ProfileService, svc.SkillService, svc.UploadService, svc.RatingService, svc.PortfolioService),
		CatalogHandler: handlers.NewCatalogHandler(baseHandler,
			svc.CatalogService, svc.FavoriteService, svc.MatchingService, svc.InsightsService),
		BarterHandler:       handlers.NewBarterHandler(baseHandler, svc.BarterService, svc.ChatService, svc.RatingService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, svc.NotificationService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, svc.ReportService, svc.AdminService),
	}
	// Cloud backends serve their own public URLs.
	if storageType == "" || storageType == "local" {
		appHandlers.FileHandler = handlers.NewFileHandler(baseHandler, store)
	}
	return appHandlers
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB, limiter *middleware.IPRateLimiter) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	if limiter != nil {
		router.Use(middleware.RateLimitMiddleware(limiter))
	}
	router.Use(middleware.DBMiddleware(db))
	return router
}

// Seed inserts the default categories and the configured first admin.
func (a *Application) Seed() error {
	added, err := repositories.NewCategoryRepository().EnsureDefaults(a.DB)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if added > 0 {
		logger.Info("Seeded default categories", "count", added)
	}

	if a.Config.FirstAdminEmail == "" || a.Config.FirstAdminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}
	created, err := a.Services.AuthService.EnsureAdmin(a.DB, a.Config.FirstAdminEmail, a.Config.FirstAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed first admin user: %w", err)
	}
	if created {
		logger.Info("Created first admin user", "email", a.Config.FirstAdminEmail)
	}
	return nil
}

// Start launches the realtime hub and the background workers. They stop
// when ctx is done.
func (a *Application) Start(ctx context.Context) {
	go a.Realtime.Run(ctx)

	workers.NewPresenceWorker(a.Realtime, a.Config.PresenceSweepInterval()).Start(ctx)

	var limiter workers.LimiterCleaner
	if a.limiter != nil {
		limiter = a.limiter
	}
	workers.NewMaintenanceWorker(a.DB, a.Services.NotificationService, limiter, workers.DefaultMaintenanceSchedule()).Start(ctx)
}

// Serve starts the background loops and the HTTP server, then shuts down
// gracefully when ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.Start(runCtx)

	address := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server startup error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", "error", err)
	}
	cancel()
	return a.Close()
}

// Close releases the relay and the database pool.
func (a *Application) Close() error {
	if a.relay != nil {
		if err := a.relay.Close(); err != nil {
			logger.Warn("Failed to close realtime relay", "error", err)
		}
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
