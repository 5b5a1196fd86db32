package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMatchScore(t *testing.T) {
	me := SkillPair{Offered: "Guitar", Wanted: "Spanish"}

	tests := []struct {
		name  string
		them  SkillPair
		score int
	}{
		{"both directions", SkillPair{Offered: "spanish", Wanted: "guitar"}, 100},
		{"only they want mine", SkillPair{Offered: "Cooking", Wanted: "Guitar lessons"}, 50},
		{"only they offer mine", SkillPair{Offered: "Conversational Spanish", Wanted: "Yoga"}, 50},
		{"reverse containment", SkillPair{Offered: "Span", Wanted: "tar"}, 100},
		{"no overlap", SkillPair{Offered: "Cooking", Wanted: "Yoga"}, 0},
		{"empty strings never match", SkillPair{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := CalculateMatchScore(me, tt.them)
			assert.Equal(t, tt.score, score)
		})
	}
}

func TestCalculateMatchScoreEmptyCaller(t *testing.T) {
	score, reasons := CalculateMatchScore(SkillPair{}, SkillPair{Offered: "Guitar", Wanted: "Piano"})
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestRankMatchesOrdersAndExcludes(t *testing.T) {
	me := SkillPair{Offered: "guitar", Wanted: "spanish"}
	candidates := []Candidate[string]{
		{Key: "half-1", Skills: SkillPair{Offered: "french", Wanted: "guitar"}},
		{Key: "none", Skills: SkillPair{Offered: "yoga", Wanted: "knitting"}},
		{Key: "full", Skills: SkillPair{Offered: "Spanish", Wanted: "Guitar"}},
		{Key: "half-2", Skills: SkillPair{Offered: "spanish", Wanted: "drums"}},
	}

	got := RankMatches(me, candidates)

	keys := make([]string, len(got))
	for i, m := range got {
		keys[i] = m.Key
	}
	assert.Equal(t, []string{"full", "half-1", "half-2"}, keys)
	assert.Equal(t, 100, got[0].Score)
	assert.Len(t, got[0].Reasons, 2)
}

func TestSkillPairComplete(t *testing.T) {
	assert.True(t, SkillPair{Offered: "a", Wanted: "b"}.Complete())
	assert.False(t, SkillPair{Offered: "a", Wanted: "  "}.Complete())
}
