package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService         AuthService
	ProfileService      ProfileService
	SkillService        SkillService
	CatalogService      CatalogService
	FavoriteService     FavoriteService
	BarterService       BarterService
	ChatService         ChatService
	RatingService       RatingService
	ReportService       ReportService
	PortfolioService    PortfolioService
	MatchingService     MatchingService
	InsightsService     InsightsService
	NotificationService NotificationService
	UploadService       UploadService
	AdminService        AdminService
}
