package services

import (
	"testing"

	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingIDs(rows []dto.ListingResponse) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	return ids
}

func TestFilterListings(t *testing.T) {
	rows := []dto.ListingResponse{
		{UserID: "a", FullName: "Ana", SkillOffered: "Guitar", Location: "Lisbon", Languages: []string{"Portuguese", "English"}, Category: "Music", AverageRating: 4.8},
		{UserID: "b", FullName: "Ben", SkillOffered: "Piano", Location: "Berlin", Languages: []string{"German"}, Category: "Music", AverageRating: 4.0},
		{UserID: "c", FullName: "Cho", SkillOffered: "Korean", SkillWanted: "Guitar lessons", Location: "Seoul", Languages: []string{"Korean"}, Category: "Languages", AverageRating: 5},
	}

	tests := []struct {
		name  string
		query dto.ListingQuery
		want  []string
	}{
		{name: "no filters", query: dto.ListingQuery{}, want: []string{"a", "b", "c"}},
		{name: "text matches offered or wanted", query: dto.ListingQuery{Q: "guitar"}, want: []string{"a", "c"}},
		{name: "text matches location", query: dto.ListingQuery{Q: "BERL"}, want: []string{"b"}},
		{name: "category and rating combine", query: dto.ListingQuery{Category: "Music", MinRating: 4.5}, want: []string{"a"}},
		{name: "all categories", query: dto.ListingQuery{Category: "All"}, want: []string{"a", "b", "c"}},
		{name: "location is exact", query: dto.ListingQuery{Location: "Lisbo"}, want: []string{}},
		{name: "language ignores case", query: dto.ListingQuery{Language: "english"}, want: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listingIDs(FilterListings(rows, tt.query)))
		})
	}
}

func TestGetListings(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedMember(t, member{Name: "Alice", Offered: "Guitar", Wanted: "Spanish", Location: "Lisbon"})
	bob := env.seedMember(t, member{Name: "Bob", Offered: "Spanish", Wanted: "Guitar"})
	carol := env.seedMember(t, member{Name: "Carol", Offered: "Piano"})
	dave := env.seedMember(t, member{Name: "Dave", Offered: "Drums"})
	env.seedMember(t, member{Name: "Eve", Wanted: "Anything"})

	env.seedSkill(t, alice, "Guitar", "Music", models.SkillTypeOffered)
	env.seedSkill(t, alice, "Spanish", "Languages", models.SkillTypeWanted)
	env.seedSkill(t, carol, "Piano", "Music", models.SkillTypeOffered)

	env.rate(t, bob, alice, 5)
	env.rate(t, bob, carol, 4)
	env.ban(t, dave)

	rows, err := env.svc.CatalogService.GetListings(env.db, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice, bob, carol}, listingIDs(rows))

	byID := make(map[string]dto.ListingResponse)
	for _, r := range rows {
		byID[r.UserID] = r
	}
	assert.Equal(t, "Music", byID[alice].Category)
	assert.Equal(t, defaultCategory, byID[bob].Category)
	assert.InDelta(t, 5.0, byID[alice].AverageRating, 0.001)
	assert.Equal(t, int64(1), byID[alice].RatingCount)

	filtered, err := env.svc.CatalogService.GetListings(env.db, &dto.ListingQuery{Category: "Music", MinRating: 4.5})
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, listingIDs(filtered))
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	_, err := repositories.NewCategoryRepository().EnsureDefaults(env.db)
	require.NoError(t, err)

	alice := env.seedMember(t, member{Name: "Alice", Offered: "Guitar"})
	carol := env.seedMember(t, member{Name: "Carol", Offered: "Piano"})
	env.seedSkill(t, alice, "Guitar", "Music", models.SkillTypeOffered)
	env.seedSkill(t, carol, "Piano", "Music", models.SkillTypeOffered)
	env.seedSkill(t, carol, "Violin", "Music", models.SkillTypeWanted)

	categories, err := env.svc.CatalogService.GetCategories(env.db)
	require.NoError(t, err)
	require.Len(t, categories, len(models.DefaultCategories))
	for _, c := range categories {
		if c.Name == "Music" {
			assert.Equal(t, int64(2), c.ListingCount)
		}
	}

	env.ban(t, carol)
	detail, err := env.svc.CatalogService.GetCategory(env.db, "Music")
	require.NoError(t, err)
	assert.Equal(t, "Music", detail.Category.Name)
	require.Len(t, detail.Skills, 1)
	assert.Equal(t, "Guitar", detail.Skills[0].Title)
	assert.Equal(t, "Alice", detail.Skills[0].Owner.FullName)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, alice, detail.Members[0].UserID)

	_, err = env.svc.CatalogService.GetCategory(env.db, "Underwater Basket Weaving")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
