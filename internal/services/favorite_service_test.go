package services

import (
	"testing"

	"barterly/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavorite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice", Offered: "Guitar"})
	bob := env.seedMember(t, member{Name: "Bob", Offered: "Spanish"})
	carol := env.seedMember(t, member{Name: "Carol"})
	favorites := env.svc.FavoriteService

	_, err := favorites.ToggleFavorite(env.db, alice, alice)
	assert.ErrorIs(t, err, apperrors.ErrSelfFavorite)

	_, err = favorites.ToggleFavorite(env.db, alice, "missing")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	on, err := favorites.ToggleFavorite(env.db, alice, bob)
	require.NoError(t, err)
	assert.True(t, on)

	// Carol has nothing on offer, so she never shows as a listing.
	_, err = favorites.ToggleFavorite(env.db, alice, carol)
	require.NoError(t, err)

	ids, err := favorites.GetFavoriteIDs(env.db, alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob, carol}, ids)

	rows, err := favorites.GetFavorites(env.db, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{bob}, listingIDs(rows))

	off, err := favorites.ToggleFavorite(env.db, alice, bob)
	require.NoError(t, err)
	assert.False(t, off)

	ids, err = favorites.GetFavoriteIDs(env.db, bob)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
