package algorithms

import (
	"sort"
	"strings"
)

const (
	ScoreFullMatch    = 100
	ScorePartialMatch = 50
)

// SkillPair is one member's free-text offered and wanted skills.
type SkillPair struct {
	Offered string
	Wanted  string
}

// Complete reports whether both sides are filled in.
func (p SkillPair) Complete() bool {
	return strings.TrimSpace(p.Offered) != "" && strings.TrimSpace(p.Wanted) != ""
}

// Candidate is an item to rank. Key identifies it to the caller.
type Candidate[K any] struct {
	Key    K
	Skills SkillPair
}

// Match is a ranked candidate.
type Match[K any] struct {
	Key     K
	Score   int
	Reasons []string
}

// CalculateMatchScore compares two skill pairs by case-insensitive
// substring containment in either direction. Empty strings never match.
func CalculateMatchScore(me, them SkillPair) (int, []string) {
	myOffered := strings.ToLower(me.Offered)
	myWanted := strings.ToLower(me.Wanted)
	theirOffered := strings.ToLower(them.Offered)
	theirWanted := strings.ToLower(them.Wanted)

	reasons := []string{}

	theyWantWhatYouOffer := containsEither(theirWanted, myOffered)
	if theyWantWhatYouOffer {
		reasons = append(reasons, "They want what you offer")
	}
	theyOfferWhatYouWant := containsEither(theirOffered, myWanted)
	if theyOfferWhatYouWant {
		reasons = append(reasons, "They offer what you want")
	}

	switch {
	case theyWantWhatYouOffer && theyOfferWhatYouWant:
		return ScoreFullMatch, reasons
	case theyWantWhatYouOffer || theyOfferWhatYouWant:
		return ScorePartialMatch, reasons
	default:
		return 0, reasons
	}
}

// RankMatches scores every candidate against me, drops the zero scores and
// sorts descending by score. Ties keep input order.
func RankMatches[K any](me SkillPair, candidates []Candidate[K]) []Match[K] {
	matches := make([]Match[K], 0, len(candidates))
	for _, c := range candidates {
		score, reasons := CalculateMatchScore(me, c.Skills)
		if score == 0 {
			continue
		}
		matches = append(matches, Match[K]{Key: c.Key, Score: score, Reasons: reasons})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
