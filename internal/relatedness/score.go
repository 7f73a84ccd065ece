// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relatedness scores how closely articles relate to one another and
// ranks candidates for the "related articles" and "popular articles" blocks.
// Implements: relatedness engine (scoring, ranking, popularity fallback,
// classification); docs/ARCHITECTURE § Relatedness.
//
// Scores combine five additive components with a maximum total of 100:
// category match (30), tag overlap (40), publication date proximity (15),
// difficulty match (8) and audience match (7).
package relatedness

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/content-hub/pkg/types"
)

// Component weights. They sum to MaxScore.
const (
	WeightCategory   = 30.0
	WeightTags       = 40.0
	WeightDate       = 15.0
	WeightDifficulty = 8.0
	WeightAudience   = 7.0

	MaxScore = WeightCategory + WeightTags + WeightDate + WeightDifficulty + WeightAudience
)

// ErrMalformedItem marks a target or candidate that cannot be scored.
var ErrMalformedItem = errors.New("malformed content item")

// Breakdown holds the individual component scores of a Score.
type Breakdown struct {
	Category      float64 `json:"category_match" yaml:"category_match"`
	TagOverlap    float64 `json:"tag_overlap" yaml:"tag_overlap"`
	DateProximity float64 `json:"date_proximity" yaml:"date_proximity"`
	Difficulty    float64 `json:"difficulty_match" yaml:"difficulty_match"`
	Audience      float64 `json:"audience_match" yaml:"audience_match"`
}

// Score pairs a candidate with its relatedness to a target.
type Score struct {
	Item      types.ContentItem `json:"article" yaml:"article"`
	Total     float64           `json:"score" yaml:"score"`
	Breakdown Breakdown         `json:"breakdown" yaml:"breakdown"`
}

// ScorePair computes the relatedness of candidate to target. Both items must
// pass validation; a malformed item returns an error wrapping
// ErrMalformedItem rather than a default score.
func ScorePair(target, candidate types.ContentItem) (Score, error) {
	if err := checkItem("target", target); err != nil {
		return Score{}, err
	}
	if err := checkItem("candidate", candidate); err != nil {
		return Score{}, err
	}
	return scoreValid(target, candidate), nil
}

// scoreValid scores two items that are already known to be well-formed.
func scoreValid(target, candidate types.ContentItem) Score {
	var category, difficulty, audience float64
	if target.CategoryID != "" && target.CategoryID == candidate.CategoryID {
		category = WeightCategory
	}
	if target.DifficultyLevel == candidate.DifficultyLevel {
		difficulty = WeightDifficulty
	}
	if target.TargetAudience == candidate.TargetAudience {
		audience = WeightAudience
	}

	tags := jaccard(target.Tags, candidate.Tags) * WeightTags
	date := dateProximity(target.PublishedAt, candidate.PublishedAt) * WeightDate

	return Score{
		Item:  candidate,
		Total: round2(category + tags + date + difficulty + audience),
		Breakdown: Breakdown{
			Category:      category,
			TagOverlap:    round2(tags),
			DateProximity: round2(date),
			Difficulty:    difficulty,
			Audience:      audience,
		},
	}
}

func checkItem(role string, item types.ContentItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedItem, role, err)
	}
	return nil
}

// jaccard returns |a ∩ b| / |a ∪ b| over normalized tag sets, or 0 when
// either set is empty.
func jaccard(a, b types.Tags) float64 {
	setA, setB := a.Set(), b.Set()
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	union := len(setA)
	shared := 0
	for tag := range setB {
		if _, ok := setA[tag]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

// dateProximity maps the absolute distance between two instants to [0, 1].
// The curve is piecewise linear with breakpoints at 30, 90 and 180 days:
// 1.0 → 0.5 over the first month, 0.5 → 0.2 by three months, 0.2 → 0 by six.
func dateProximity(a, b time.Time) float64 {
	days := math.Abs(a.Sub(b).Hours()) / 24
	switch {
	case days <= 30:
		return 1 - (days/30)*0.5
	case days <= 90:
		return 0.5 - ((days-30)/60)*0.3
	case days <= 180:
		return 0.2 - ((days-90)/90)*0.2
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
