package score

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks a scoring request rejected before any check ran.
var ErrInvalidInput = errors.New("invalid input")

// Breakdown holds the four sub-scores, one per signal source.
type Breakdown struct {
	LLMRecall          int `json:"llm_recall"`
	WikipediaPresence  int `json:"wikipedia_presence"`
	PlatformVisibility int `json:"platform_visibility"`
	WebPresence        int `json:"web_presence"`
}

// Result is one finished scan: the composite score, its breakdown, a unique
// scan id, a UTC timestamp and free-form metadata. Immutable once built.
type Result struct {
	Score     int            `json:"score"`
	Breakdown Breakdown      `json:"score_breakdown"`
	ScanID    string         `json:"scan_id"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// Weights is the contribution of each source to the composite score.
// The four values must sum to 1.0.
type Weights struct {
	Wikipedia float64 `json:"wikipedia" yaml:"wikipedia"`
	LLM       float64 `json:"llm" yaml:"llm"`
	LinkedIn  float64 `json:"linkedin" yaml:"linkedin"`
	Web       float64 `json:"web" yaml:"web"`
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{Wikipedia: 0.30, LLM: 0.30, LinkedIn: 0.20, Web: 0.20}
}

// Validate checks that all weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"wikipedia": w.Wikipedia,
		"llm":       w.LLM,
		"linkedin":  w.LinkedIn,
		"web":       w.Web,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %v", name, v)
		}
	}

	sum := w.Wikipedia + w.LLM + w.LinkedIn + w.Web
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// combine computes the weighted composite, rounded and clamped to [0,100].
func (w Weights) combine(b Breakdown) int {
	sum := w.Wikipedia*float64(b.WikipediaPresence) +
		w.LLM*float64(b.LLMRecall) +
		w.LinkedIn*float64(b.PlatformVisibility) +
		w.Web*float64(b.WebPresence)

	score := int(math.Round(sum))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
