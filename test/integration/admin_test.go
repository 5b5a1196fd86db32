package integration_test

import (
	"net/http"
	"testing"

	"barterly/internal/services/dto"
	"barterly/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminConsole(t *testing.T) {
	ts := helpers.NewTestServer(t)
	admin := helpers.SignUpAdmin(t, ts, "root@barterly.test")
	alice := helpers.SignUp(t, ts, "Alice")
	bob := helpers.SignUp(t, ts, "Bob")

	t.Run("members are not admins", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/stats", alice.Token, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Contains(t, body, "FORBIDDEN")
	})

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/reports", alice.Token, map[string]interface{}{
		"reported_user_id": bob.UserID,
		"reason":           "spam",
		"description":      "Keeps sending links",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/reports", alice.Token, map[string]interface{}{
		"reported_user_id": bob.UserID,
		"reason":           "not-a-reason",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/stats", admin.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var stats dto.AdminStats
	helpers.DecodeJSON(t, body, &stats)
	assert.Equal(t, int64(1), stats.PendingReports)
	assert.Equal(t, int64(0), stats.BannedUsers)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/reports?status=pending", admin.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var reports []dto.AdminReportResponse
	helpers.DecodeJSON(t, body, &reports)
	require.Len(t, reports, 1)
	assert.Equal(t, bob.UserID, reports[0].ReportedUserID)
	assert.Equal(t, "Bob", reports[0].ReportedUserName)

	res, body = ts.SendRequest(t, http.MethodPatch, "/api/v1/admin/reports/"+reports[0].ID, admin.Token, map[string]interface{}{
		"status": "resolved",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var updated dto.AdminReportResponse
	helpers.DecodeJSON(t, body, &updated)
	assert.Equal(t, "resolved", updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, admin.UserID, *updated.ReviewedBy)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/users/"+bob.UserID+"/ban", admin.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var ban dto.BanResponse
	helpers.DecodeJSON(t, body, &ban)
	assert.True(t, ban.IsBanned)

	t.Run("banned member is locked out", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/profiles/me", bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Contains(t, body, "ACCOUNT_BANNED")
	})

	t.Run("banned member cannot be asked for a barter", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/barters", alice.Token, map[string]interface{}{
			"recipient_id": bob.UserID,
		})
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/users/"+bob.UserID+"/ban", admin.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	helpers.DecodeJSON(t, body, &ban)
	assert.False(t, ban.IsBanned)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/profiles/me", bob.Token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var users []dto.AdminUserResponse
	helpers.DecodeJSON(t, body, &users)
	assert.Len(t, users, 3)
}
