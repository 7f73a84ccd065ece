// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relatedness

import (
	"sort"

	"github.com/pdiddy/content-hub/pkg/types"
)

// DefaultLimit is the number of related or popular articles shown when the
// caller does not choose one.
const DefaultLimit = 6

// Skipped records a candidate that was left out of a ranking because it could
// not be scored.
type Skipped struct {
	Slug string `json:"slug" yaml:"slug"`
	ID   string `json:"id" yaml:"id"`
	Err  error  `json:"-" yaml:"-"`
}

// Ranking is the result of RankRelated.
type Ranking struct {
	// Scores holds the top candidates, highest score first. Never nil.
	Scores []Score

	// Skipped lists malformed candidates that were not scored.
	Skipped []Skipped
}

// RankRelated scores every candidate against target and returns the top
// limit, highest first. Candidates sharing the target's slug or ID are
// excluded. Equal scores keep their input order, which callers rely on since
// candidates arrive newest first.
//
// A malformed target fails the whole call. A malformed candidate is skipped
// and reported in Ranking.Skipped. A limit of zero or less yields an empty
// ranking.
func RankRelated(target types.ContentItem, candidates []types.ContentItem, limit int) (Ranking, error) {
	ranking := Ranking{Scores: []Score{}}
	if limit <= 0 {
		return ranking, nil
	}
	if err := checkItem("target", target); err != nil {
		return Ranking{}, err
	}

	scores := make([]Score, 0, len(candidates))
	for _, c := range candidates {
		if c.Slug == target.Slug || (c.ID != "" && c.ID == target.ID) {
			continue
		}
		if err := checkItem("candidate", c); err != nil {
			ranking.Skipped = append(ranking.Skipped, Skipped{Slug: c.Slug, ID: c.ID, Err: err})
			continue
		}
		scores = append(scores, scoreValid(target, c))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})

	if len(scores) > limit {
		scores = scores[:limit]
	}
	ranking.Scores = scores
	return ranking, nil
}

// RankPopular orders candidates by publication date, newest first, and
// returns the first limit. There is no engagement signal available, so
// recency stands in for popularity. Items with equal timestamps keep their
// input order. The input slice is not modified.
func RankPopular(candidates []types.ContentItem, limit int) []types.ContentItem {
	if limit <= 0 || len(candidates) == 0 {
		return []types.ContentItem{}
	}

	sorted := make([]types.ContentItem, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
