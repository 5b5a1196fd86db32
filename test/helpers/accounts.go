package helpers

import (
	"net/http"
	"strings"
	"testing"

	"barterly/internal/services/dto"

	"github.com/stretchr/testify/require"
)

const TestPassword = "super_password123"

// Account is a signed-in member.
type Account struct {
	UserID string
	Email  string
	Token  string
}

// SignUp registers a member through the API and returns its session.
func SignUp(t *testing.T, ts *TestServer, fullName string) Account {
	t.Helper()

	email := strings.ToLower(strings.ReplaceAll(fullName, " ", ".")) + "@example.com"
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email":     email,
		"password":  TestPassword,
		"full_name": fullName,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var auth dto.AuthResponse
	DecodeJSON(t, body, &auth)
	return Account{UserID: auth.User.ID, Email: email, Token: auth.AccessToken}
}

// SignUpAdmin creates an admin account directly and signs it in.
func SignUpAdmin(t *testing.T, ts *TestServer, email string) Account {
	t.Helper()

	_, err := ts.App.Services.AuthService.EnsureAdmin(ts.DB, email, TestPassword)
	require.NoError(t, err)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": TestPassword,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var auth dto.AuthResponse
	DecodeJSON(t, body, &auth)
	return Account{UserID: auth.User.ID, Email: email, Token: auth.AccessToken}
}

// SetSkills fills the free-text offered and wanted skills of a profile.
func SetSkills(t *testing.T, ts *TestServer, acc Account, offered, wanted string) {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPut, "/api/v1/profiles/me", acc.Token, map[string]interface{}{
		"skill_offered": offered,
		"skill_wanted":  wanted,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
}
