package integration_test

import (
	"net/http"
	"testing"

	"barterly/internal/services/dto"
	"barterly/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := helpers.NewTestServer(t)

	alice := helpers.SignUp(t, ts, "Alice Smith")
	assert.NotEmpty(t, alice.Token)

	t.Run("duplicate email", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
			"email":    alice.Email,
			"password": helpers.TestPassword,
		})
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.Contains(t, body, "ALREADY_EXISTS")
	})

	t.Run("short password", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
			"email":    "short@example.com",
			"password": "123",
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, body, "VALIDATION_FAILED")
	})

	t.Run("wrong password", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
			"email":    alice.Email,
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Contains(t, body, "INVALID_CREDENTIALS")
	})

	t.Run("me", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", alice.Token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var me dto.UserResponse
		helpers.DecodeJSON(t, body, &me)
		assert.Equal(t, alice.UserID, me.ID)
		assert.Equal(t, "user", me.Role)
		require.NotNil(t, me.Profile)
		assert.Equal(t, "Alice Smith", me.Profile.FullName)
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/profiles/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Contains(t, body, "UNAUTHORIZED")

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/profiles/me", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("logout", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", alice.Token, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}

func TestUnknownRouteIsJSON(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "application/json")
	assert.Contains(t, body, "NOT_FOUND")
}
