package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"barterly/internal/validator"
	"barterly/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(validator.New())
	r := gin.New()
	r.POST("/upload", func(c *gin.Context) {
		file, ok := h.OptionalFormFile(c, "file")
		if !ok {
			return
		}
		if file == nil {
			apperrors.HandleError(c, apperrors.ErrFileRequired)
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": file.Filename})
	})
	return r
}

func postUpload(r *gin.Engine, contentType string, body []byte) (*httptest.ResponseRecorder, apperrors.ErrorResponse) {
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apperrors.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestOptionalFormFile(t *testing.T) {
	r := uploadRouter()

	t.Run("file present", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		w, _ := postUpload(r, mw.FormDataContentType(), body.Bytes())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "avatar.png")
	})

	t.Run("well-formed form without the field", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("caption", "hello"))
		require.NoError(t, mw.Close())

		w, resp := postUpload(r, mw.FormDataContentType(), body.Bytes())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, apperrors.ErrFileRequired.Message, resp.Error.Message)
	})

	t.Run("truncated body", func(t *testing.T) {
		body := "--xyz\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.png\"\r\n\r\npartial"
		w, resp := postUpload(r, "multipart/form-data; boundary=xyz", []byte(body))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "request", resp.Error.Domain)
		assert.True(t, strings.HasPrefix(resp.Error.Message, "Invalid multipart body: "), resp.Error.Message)
	})

	t.Run("not multipart", func(t *testing.T) {
		w, resp := postUpload(r, "application/json", []byte(`{"file":"x"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.NotEqual(t, apperrors.ErrFileRequired.Message, resp.Error.Message)
		assert.Contains(t, resp.Error.Message, "Invalid multipart body")
	})
}
