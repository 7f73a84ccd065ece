// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relatedness

// Level is a coarse relatedness band used for display.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Band thresholds on the 0-100 total score.
const (
	HighThreshold   = 70.0
	MediumThreshold = 40.0
)

// Classification is the display band for a score.
type Classification struct {
	Level Level  `json:"level" yaml:"level"`
	Label string `json:"label" yaml:"label"`
}

var labels = map[Level]string{
	LevelHigh:   "Highly related",
	LevelMedium: "Related",
	LevelLow:    "Loosely related",
}

// Classify maps a total score to its band: 70 and above is high, 40 up to 70
// is medium, anything lower is low. Out-of-range input falls into the nearest
// band; NaN is low.
func Classify(total float64) Classification {
	level := LevelLow
	switch {
	case total >= HighThreshold:
		level = LevelHigh
	case total >= MediumThreshold:
		level = LevelMedium
	}
	return Classification{Level: level, Label: labels[level]}
}
