package services

import (
	"testing"

	"barterly/internal/models"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarterLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice", Offered: "Guitar", Wanted: "Spanish"})
	bob := env.seedMember(t, member{Name: "Bob", Offered: "Spanish", Wanted: "Guitar"})
	barters := env.svc.BarterService

	created, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: bob})
	require.NoError(t, err)
	assert.Equal(t, string(models.BarterStatusPending), created.Status)
	assert.Equal(t, defaultBarterGreeting, created.Message)
	require.NotNil(t, created.Requester)
	assert.Equal(t, "Alice", created.Requester.FullName)

	createdEvents := env.realtime.ofType(ws.EventBarterCreated)
	require.Len(t, createdEvents, 2)
	assert.ElementsMatch(t, []string{alice, bob}, []string{createdEvents[0].Key, createdEvents[1].Key})

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, sent[0].To)
	assert.Equal(t, "New Barter Request from Alice", sent[0].Subject)

	t.Run("only the recipient responds", func(t *testing.T) {
		_, err := barters.AcceptBarter(env.db, alice, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrOnlyRecipient)
	})

	accepted, err := barters.AcceptBarter(env.db, bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BarterStatusAccepted), accepted.Status)
	assert.Equal(t, "Bob accepted your barter request!", env.mailer.Sent()[1].Subject)

	t.Run("accept again is a no-op", func(t *testing.T) {
		before := len(env.realtime.ofType(ws.EventBarterUpdated))
		again, err := barters.AcceptBarter(env.db, bob, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.BarterStatusAccepted), again.Status)
		assert.Len(t, env.realtime.ofType(ws.EventBarterUpdated), before)
	})

	t.Run("accepted cannot be declined", func(t *testing.T) {
		_, err := barters.DeclineBarter(env.db, bob, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidBarterTransition)
	})

	t.Run("accepted cannot be cancelled", func(t *testing.T) {
		err := barters.CancelBarter(env.db, alice, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidBarterTransition)
	})

	completed, err := barters.CompleteBarter(env.db, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BarterStatusCompleted), completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = barters.AcceptBarter(env.db, bob, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidBarterTransition)

	list, err := barters.GetBarters(env.db, bob, &dto.BarterListQuery{Role: "incoming", Status: "completed"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	outgoing, err := barters.GetBarters(env.db, bob, &dto.BarterListQuery{Role: "outgoing"})
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestBarterGuards(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice", Offered: "Guitar"})
	bob := env.seedMember(t, member{Name: "Bob", Offered: "Spanish"})
	carol := env.seedMember(t, member{Name: "Carol", Offered: "Yoga"})
	barters := env.svc.BarterService

	t.Run("self barter", func(t *testing.T) {
		_, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: alice})
		assert.ErrorIs(t, err, apperrors.ErrSelfBarter)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: "missing"})
		assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	})

	t.Run("offered skill must be the requester's", func(t *testing.T) {
		skill := env.seedSkill(t, bob, "Spanish", "Languages", models.SkillTypeOffered)
		_, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: bob, SkillOfferedID: &skill.ID})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	})

	created, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: bob, Message: "  Teach me?  "})
	require.NoError(t, err)
	assert.Equal(t, "Teach me?", created.Message)

	t.Run("outsiders cannot read", func(t *testing.T) {
		_, err := barters.GetBarter(env.db, carol, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotBarterParticipant)
	})

	t.Run("recipient cannot cancel", func(t *testing.T) {
		err := barters.CancelBarter(env.db, bob, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrOnlyRequester)
	})

	t.Run("requester cancels pending", func(t *testing.T) {
		env.realtime.reset()
		require.NoError(t, barters.CancelBarter(env.db, alice, created.ID))
		assert.Len(t, env.realtime.ofType(ws.EventBarterDeleted), 2)

		_, err := barters.GetBarter(env.db, alice, created.ID)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})

	t.Run("banned recipient is hidden", func(t *testing.T) {
		env.ban(t, carol)
		_, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: carol})
		assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	})

	t.Run("declined is final", func(t *testing.T) {
		again, err := barters.CreateBarter(env.db, alice, &dto.CreateBarterRequest{RecipientID: bob})
		require.NoError(t, err)
		declined, err := barters.DeclineBarter(env.db, bob, again.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.BarterStatusDeclined), declined.Status)

		_, err = barters.CompleteBarter(env.db, alice, again.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidBarterTransition)
	})
}
