package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"barterly/internal/app"
	"barterly/internal/config"
	"barterly/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestServer runs the full router against a private in-memory database.
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	App    *app.Application
}

// NewTestServer builds an isolated server; it is closed by t.Cleanup.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Server.RateLimit = 0
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.JWT.Secret = "barterly-test-secret"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Email.AppURL = "https://barterly.test"
	require.NoError(t, cfg.Validate())

	logger.Init(cfg.Server.Env)

	db, err := app.OpenDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Migrate(db))

	application, err := app.New(cfg, db)
	require.NoError(t, err)
	require.NoError(t, application.Seed())

	ctx, cancel := context.WithCancel(context.Background())
	application.Start(ctx)

	ts := &TestServer{
		Server: httptest.NewServer(application.Router),
		DB:     db,
		App:    application,
	}
	t.Cleanup(func() {
		ts.Server.Close()
		cancel()
		_ = application.Close()
	})
	return ts
}

// SendRequest sends a JSON request and returns the response with its body.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req, token)
}

// SendMultipart uploads one file under "file" together with form fields.
func (ts *TestServer) SendMultipart(t *testing.T, path, token, filename string, content []byte, fields map[string]string) (*http.Response, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return ts.do(t, req, token)
}

func (ts *TestServer) do(t *testing.T, req *http.Request, token string) (*http.Response, string) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// DecodeJSON unmarshals a response body into out.
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), body)
}
