package check

import (
	"context"
)

// Kind identifies which signal source a result came from.
type Kind string

const (
	KindWikipedia Kind = "wikipedia"
	KindLLM       Kind = "llm"
	KindLinkedIn  Kind = "linkedin"
	KindWebSearch Kind = "web"
)

// Entity is the subject of one scoring run.
type Entity struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// Result is the standardized outcome of a single source check.
// Score is always within [0,100]; Details is free-form diagnostic data.
type Result struct {
	Score   int            `json:"score"`
	Details map[string]any `json:"details"`
}

// Checker is the interface every source check must implement.
// Check never returns an error: any internal failure is converted to a
// zero-score Result whose Details carry an "error" entry.
type Checker interface {
	Kind() Kind
	Check(ctx context.Context, entity Entity) Result
}

// AllKinds returns all known check kinds.
func AllKinds() []Kind {
	return []Kind{KindWikipedia, KindLLM, KindLinkedIn, KindWebSearch}
}

// degraded builds the standard zero-score result for a failed check.
func degraded(method string, err error) Result {
	return Result{
		Score: 0,
		Details: map[string]any{
			"error":      err.Error(),
			"confidence": "low",
			"method":     method,
		},
	}
}

// clampScore bounds a score to [0,100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
