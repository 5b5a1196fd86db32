package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler renders errors as {"error": ...}. With Debug off the
// message of non-AppErrors is masked.
type GinErrorHandler struct {
	Debug bool
}

var defaultHandler = &GinErrorHandler{Debug: true}

// SetDebug is called once at startup from the server environment.
func SetDebug(debug bool) {
	defaultHandler.Debug = debug
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode >= 500 {
		slog.ErrorContext(c.Request.Context(), "server error", "error", err)
		if !h.Debug {
			masked := *appErr
			masked.Message = "Internal server error"
			masked.Details = nil
			appErr = &masked
		}
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
