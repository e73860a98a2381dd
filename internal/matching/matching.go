package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is one registry row offered to the matcher. The engine is
// pure: callers load a snapshot of the tenant's registry and pass it
// in, so a run is deterministic for a given snapshot.
type Candidate struct {
	ID         uuid.UUID
	Code       string
	Name       string
	LastUsedAt *time.Time
}

// Match is a resolved candidate with the confidence of the resolution.
// Exact code or name hits score 1.0; fuzzy hits carry their similarity
// ratio plus a containment bonus, capped at 1.0.
type Match struct {
	ID         uuid.UUID
	Code       string
	Name       string
	Confidence float64
}

const containmentBonus = 0.2

// Resolve matches a free-text input against a registry snapshot.
//
// Passes, in order: exact code match, exact name match (both on the
// normalized form), then fuzzy ranking by similarity ratio with a
// containment bonus when one normalized string contains the other.
// Candidates below minSimilarity (pre-bonus) are discarded. Ties are
// broken by most recent LastUsedAt, then by code for stability.
func Resolve(input string, snapshot []Candidate, minSimilarity float64) (Match, bool) {
	norm := Normalize(input)
	if norm == "" || len(snapshot) == 0 {
		return Match{}, false
	}

	for _, c := range snapshot {
		if Normalize(c.Code) == norm {
			return Match{ID: c.ID, Code: c.Code, Name: c.Name, Confidence: 1.0}, true
		}
	}
	for _, c := range snapshot {
		if Normalize(c.Name) == norm {
			return Match{ID: c.ID, Code: c.Code, Name: c.Name, Confidence: 1.0}, true
		}
	}

	type scored struct {
		cand  Candidate
		score float64
	}
	var ranked []scored
	for _, c := range snapshot {
		cn := Normalize(c.Name)
		if cn == "" {
			continue
		}
		score := Ratio(norm, cn)
		if score < minSimilarity {
			continue
		}
		if strings.Contains(norm, cn) || strings.Contains(cn, norm) {
			score += containmentBonus
			if score > 1.0 {
				score = 1.0
			}
		}
		ranked = append(ranked, scored{cand: c, score: score})
	}
	if len(ranked) == 0 {
		return Match{}, false
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		li, lj := ranked[i].cand.LastUsedAt, ranked[j].cand.LastUsedAt
		switch {
		case li != nil && lj != nil && !li.Equal(*lj):
			return li.After(*lj)
		case li != nil && lj == nil:
			return true
		case li == nil && lj != nil:
			return false
		}
		return ranked[i].cand.Code < ranked[j].cand.Code
	})

	best := ranked[0]
	return Match{
		ID:         best.cand.ID,
		Code:       best.cand.Code,
		Name:       best.cand.Name,
		Confidence: best.score,
	}, true
}
