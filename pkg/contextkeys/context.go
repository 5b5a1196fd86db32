package contextkeys

type contextKey string

// DBContextKey stores the request's *gorm.DB in the gin context.
const DBContextKey = contextKey("db")

// UserIDKey and RoleKey are set by the auth middleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)
