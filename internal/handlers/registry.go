package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	CatalogHandler      *CatalogHandler
	BarterHandler       *BarterHandler
	NotificationHandler *NotificationHandler
	AdminHandler        *AdminHandler
	FileHandler         *FileHandler
}

// RegisterRoutes mounts each handler's routes on the shared groups.
func (h *AppHandlers) RegisterRoutes(g Groups) {
	h.AuthHandler.RegisterRoutes(g)
	h.ProfileHandler.RegisterRoutes(g)
	h.CatalogHandler.RegisterRoutes(g)
	h.BarterHandler.RegisterRoutes(g)
	h.NotificationHandler.RegisterRoutes(g)
	h.AdminHandler.RegisterRoutes(g)
	if h.FileHandler != nil {
		h.FileHandler.RegisterRoutes(g)
	}
}
