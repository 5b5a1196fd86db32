package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"barterly/internal/storage"
	"barterly/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler streams stored objects. Only the local backend needs it;
// cloud backends hand out their own public URLs.
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(g Groups) {
	g.Public.GET("/files/*path", h.ServeFile)
	g.Public.HEAD("/files/*path", h.CheckFileExists)
}

func (h *FileHandler) ServeFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("path"), "/")

	reader, err := h.storage.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			apperrors.HandleError(c, apperrors.NewNotFoundError("storage", "File not found"))
			return
		}
		h.HandleServiceError(c, apperrors.StorageError(err))
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000")
	c.Header("X-Content-Type-Options", "nosniff")
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	} else {
		c.Header("Content-Disposition", "inline")
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already sent.
		_ = c.Error(err)
	}
}

func (h *FileHandler) CheckFileExists(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("path"), "/")

	exists, err := h.storage.Exists(c.Request.Context(), key)
	if err != nil || !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}
