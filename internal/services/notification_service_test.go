package services

import (
	"context"
	"testing"
	"time"

	"barterly/internal/models"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCountCombinesPendingAndRecentMessages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	carol := env.seedMember(t, member{Name: "Carol"})
	dave := env.seedMember(t, member{Name: "Dave"})

	// Two pending requests addressed to Bob.
	for _, from := range []string{carol, dave} {
		_, err := env.svc.BarterService.CreateBarter(env.db, from, &dto.CreateBarterRequest{RecipientID: bob})
		require.NoError(t, err)
	}

	// Three messages to Bob in an accepted barter; his own do not count.
	barterID := env.acceptedBarter(t, alice, bob)
	for _, text := range []string{"hi", "when?", "tomorrow works"} {
		_, err := env.svc.ChatService.SendText(env.db, alice, barterID, text)
		require.NoError(t, err)
	}
	_, err := env.svc.ChatService.SendText(env.db, bob, barterID, "great")
	require.NoError(t, err)

	count, err := env.svc.NotificationService.GetCount(env.db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.PendingBarters)
	assert.Equal(t, int64(3), count.RecentMessages)
	assert.Equal(t, int64(5), count.Count)

	var last *dto.NotificationCountResponse
	for _, e := range env.realtime.ofType(ws.EventNotificationCount) {
		if e.Key == bob {
			last = e.Event.Data.(*dto.NotificationCountResponse)
		}
	}
	require.NotNil(t, last)
	assert.Equal(t, int64(5), last.Count)
}

func TestSendNotification(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	notifications := env.svc.NotificationService
	ctx := context.Background()

	_, err := notifications.Send(ctx, env.db, &dto.SendNotificationRequest{Type: "barter_completed", RecipientUserID: bob})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	_, err = notifications.Send(ctx, env.db, &dto.SendNotificationRequest{Type: "new_message", RecipientUserID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	sent, err := notifications.Send(ctx, env.db, &dto.SendNotificationRequest{Type: "barter_declined", RecipientUserID: bob, SenderName: "Alice"})
	require.NoError(t, err)
	assert.True(t, sent.Success)
	assert.NotEmpty(t, sent.ID)
	last := env.mailer.Sent()[len(env.mailer.Sent())-1]
	assert.Equal(t, []string{"bob@example.com"}, last.To)
	assert.Equal(t, "Barter request update", last.Subject)
	assert.Contains(t, last.HTMLBody, "https://barterly.test")

	_, err = env.svc.ProfileService.UpdateProfile(env.db, alice, &dto.UpdateProfileRequest{EmailNotifications: ptr(false)})
	require.NoError(t, err)
	before := len(env.mailer.Sent())

	optedOut, err := notifications.Send(ctx, env.db, &dto.SendNotificationRequest{Type: "new_message", RecipientUserID: alice, SenderName: "Bob"})
	require.NoError(t, err)
	assert.False(t, optedOut.Success)
	assert.Equal(t, "User has disabled email notifications", optedOut.Message)
	assert.Len(t, env.mailer.Sent(), before)
}

func TestNotificationFeed(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	notifications := env.svc.NotificationService

	env.acceptedBarter(t, alice, bob)

	bobFeed, err := notifications.GetNotifications(env.db, bob, false, 0)
	require.NoError(t, err)
	require.Len(t, bobFeed.Notifications, 1)
	assert.Equal(t, string(models.NotificationBarterRequest), bobFeed.Notifications[0].Type)
	assert.Equal(t, "New Barter Request from Alice", bobFeed.Notifications[0].Title)
	assert.Equal(t, int64(1), bobFeed.UnreadCount)

	aliceFeed, err := notifications.GetNotifications(env.db, alice, true, 0)
	require.NoError(t, err)
	require.Len(t, aliceFeed.Notifications, 1)
	assert.Equal(t, string(models.NotificationBarterAccepted), aliceFeed.Notifications[0].Type)

	err = notifications.MarkAsRead(env.db, bob, aliceFeed.Notifications[0].ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	require.NoError(t, notifications.MarkAsRead(env.db, alice, aliceFeed.Notifications[0].ID))
	unread, err := notifications.GetNotifications(env.db, alice, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread.Notifications)
	assert.Zero(t, unread.UnreadCount)

	marked, err := notifications.MarkAllAsRead(env.db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	// Nothing read is older than an hour yet.
	removed, err := notifications.CleanupRead(env.db, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = notifications.CleanupRead(env.db, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestNotificationCountSkipsStaleAndClosedBarterMessages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice"})
	bob := env.seedMember(t, member{Name: "Bob"})
	carol := env.seedMember(t, member{Name: "Carol"})

	live := env.acceptedBarter(t, alice, bob)
	_, err := env.svc.ChatService.SendText(env.db, alice, live, "still on for Friday?")
	require.NoError(t, err)
	stale, err := env.svc.ChatService.SendText(env.db, alice, live, "from last week")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Message{}).
		Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-25*time.Hour)).Error)

	done := env.acceptedBarter(t, carol, bob)
	_, err = env.svc.ChatService.SendText(env.db, carol, done, "thanks for the lesson")
	require.NoError(t, err)

	count, err := env.svc.NotificationService.GetCount(env.db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.RecentMessages)

	_, err = env.svc.BarterService.CompleteBarter(env.db, bob, done)
	require.NoError(t, err)

	count, err = env.svc.NotificationService.GetCount(env.db, bob)
	require.NoError(t, err)
	assert.Zero(t, count.PendingBarters)
	assert.Equal(t, int64(1), count.RecentMessages)
	assert.Equal(t, int64(1), count.Count)
}
