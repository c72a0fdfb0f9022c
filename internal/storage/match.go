package storage

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/stayx/backend/internal/models"
)

const (
	// maxInterestScore is the ceiling of the deterministic interest-overlap
	// term of a match score.
	maxInterestScore = 70
	// maxExploreScore bounds the random exploration term added on top of the
	// interest term so rankings are not purely interest-deterministic.
	maxExploreScore = 30
)

// baseMatchScore computes the deterministic term of a match score: the
// overlap of the two interest sets, |shared| / max(|A|, |B|), scaled to
// maxInterestScore. Either set being empty contributes 0. Interests are
// compared case-insensitively as distinct sets.
func baseMatchScore(a, b []string) int {
	setA := interestSet(a)
	setB := interestSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for interest := range setA {
		if _, ok := setB[interest]; ok {
			shared++
		}
	}

	denom := len(setA)
	if len(setB) > denom {
		denom = len(setB)
	}
	return int(math.Round(maxInterestScore * float64(shared) / float64(denom)))
}

func interestSet(interests []string) map[string]struct{} {
	set := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		key := strings.ToLower(strings.TrimSpace(interest))
		if key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// matchScore combines the interest term with a random exploration term in
// [0, maxExploreScore) and clamps the result to [0, 100]. The exact random
// distribution is not a contract, only the bounds are.
func matchScore(a, b *models.User, rng *rand.Rand) int {
	score := baseMatchScore(a.Interests, b.Interests) + rng.Intn(maxExploreScore)
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// rankRecommendations sorts candidates by score descending; ties break by
// ascending user id so the ordering is reproducible.
func rankRecommendations(recs []Recommendation, limit int) []Recommendation {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].User.ID < recs[j].User.ID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
