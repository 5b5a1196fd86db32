package services

import (
	"context"
	"testing"

	"barterly/internal/models"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReport(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	reports := env.svc.ReportService

	err := reports.CreateReport(env.db, alice, &dto.CreateReportRequest{ReportedUserID: alice, Reason: "spam"})
	assert.ErrorIs(t, err, apperrors.ErrSelfReport)

	err = reports.CreateReport(env.db, alice, &dto.CreateReportRequest{ReportedUserID: bob, Reason: "rude"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	err = reports.CreateReport(env.db, alice, &dto.CreateReportRequest{ReportedUserID: "missing", Reason: "spam"})
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	require.NoError(t, reports.CreateReport(env.db, alice, &dto.CreateReportRequest{
		ReportedUserID: bob, Reason: "scam", Description: "Asked for money",
	}))

	listed, err := env.svc.AdminService.GetReports(env.db, "pending")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Alice", listed[0].ReporterName)
	assert.Equal(t, "Bob", listed[0].ReportedUserName)
	assert.Equal(t, "scam", listed[0].Reason)
}

func TestReportReviewTransitions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedMember(t, member{Name: "Admin"})
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	require.NoError(t, env.svc.ReportService.CreateReport(env.db, alice, &dto.CreateReportRequest{ReportedUserID: bob, Reason: "harassment"}))

	pending, err := env.svc.AdminService.GetReports(env.db, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	reportID := pending[0].ID
	admins := env.svc.AdminService

	reviewed, err := admins.UpdateReportStatus(env.db, admin, reportID, &dto.UpdateReportRequest{Status: "reviewed"})
	require.NoError(t, err)
	assert.Equal(t, string(models.ReportStatusReviewed), reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	resolved, err := admins.UpdateReportStatus(env.db, admin, reportID, &dto.UpdateReportRequest{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, string(models.ReportStatusResolved), resolved.Status)

	// Re-applying the same status is accepted and changes nothing.
	again, err := admins.UpdateReportStatus(env.db, admin, reportID, &dto.UpdateReportRequest{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, string(models.ReportStatusResolved), again.Status)

	_, err = admins.UpdateReportStatus(env.db, admin, reportID, &dto.UpdateReportRequest{Status: "pending"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidReportTransition)

	_, err = admins.UpdateReportStatus(env.db, admin, "missing", &dto.UpdateReportRequest{Status: "reviewed"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	stillPending, err := admins.GetReports(env.db, "pending")
	require.NoError(t, err)
	assert.Empty(t, stillPending)
}

func TestToggleBanAndStats(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedMember(t, member{Name: "Admin"})
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	admins := env.svc.AdminService

	_, err := admins.ToggleBan(env.db, admin, admin)
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	_, err = admins.ToggleBan(env.db, admin, "missing")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	on, err := admins.ToggleBan(env.db, admin, bob)
	require.NoError(t, err)
	assert.True(t, on.IsBanned)

	banned, err := env.profiles.IsBanned(context.Background(), env.db, bob)
	require.NoError(t, err)
	assert.True(t, banned)

	env.completedBarter(t, alice, admin)
	env.acceptedBarter(t, admin, alice)
	require.NoError(t, env.svc.ReportService.CreateReport(env.db, alice, &dto.CreateReportRequest{ReportedUserID: bob, Reason: "spam"}))

	stats, err := admins.GetStats(env.db)
	require.NoError(t, err)
	assert.Equal(t, dto.AdminStats{
		TotalUsers:       3,
		TotalBarters:     2,
		CompletedBarters: 1,
		PendingReports:   1,
		BannedUsers:      1,
	}, *stats)

	users, err := admins.GetUsers(env.db)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for _, u := range users {
		assert.Equal(t, u.UserID == bob, u.IsBanned, u.FullName)
	}

	off, err := admins.ToggleBan(env.db, admin, bob)
	require.NoError(t, err)
	assert.False(t, off.IsBanned)
}
