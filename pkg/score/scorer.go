package score

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"brandradar/pkg/check"
)

// ResultStore is the persistence the Scorer hands finished results to.
type ResultStore interface {
	SaveResult(ctx context.Context, result *Result) error
}

// Scorer fans a scoring request out to all configured checkers and combines
// their sub-scores into one weighted composite.
type Scorer struct {
	checkers []check.Checker
	weights  Weights
	store    ResultStore // optional, nil = no persistence
}

// NewScorer creates a Scorer. Zero-valued weights fall back to the default
// set; any other weight set must sum to 1.0.
func NewScorer(checkers []check.Checker, weights Weights, store ResultStore) (*Scorer, error) {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scorer weights: %w", err)
	}
	return &Scorer{
		checkers: checkers,
		weights:  weights,
		store:    store,
	}, nil
}

// CalculateScore runs all checks for the brand concurrently, combines the
// sub-scores, persists the record best-effort and returns it. A complete
// Result comes back for any valid input; individual check failures only
// zero their own breakdown field.
func (s *Scorer) CalculateScore(ctx context.Context, brandName, rawURL string) (*Result, error) {
	entity, err := buildEntity(brandName, rawURL)
	if err != nil {
		return nil, err
	}

	checks := s.runChecks(ctx, entity)

	breakdown := Breakdown{
		LLMRecall:          checks[check.KindLLM].Score,
		WikipediaPresence:  checks[check.KindWikipedia].Score,
		PlatformVisibility: checks[check.KindLinkedIn].Score,
		WebPresence:        checks[check.KindWebSearch].Score,
	}

	details := make(map[string]any, len(checks))
	for kind, result := range checks {
		details[string(kind)] = result.Details
	}

	result := &Result{
		Score:     s.weights.combine(breakdown),
		Breakdown: breakdown,
		ScanID:    uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata: map[string]any{
			"checks":  details,
			"entity":  entity,
			"weights": s.weights,
		},
	}

	if s.store != nil {
		// Persistence is best-effort: the caller still gets the score.
		if err := s.store.SaveResult(ctx, result); err != nil {
			fmt.Fprintf(os.Stderr, "store result %s: %v\n", result.ScanID, err)
		}
	}

	return result, nil
}

// runChecks launches every checker on its own goroutine and waits for all
// of them. Results are keyed by kind; a checker that was never configured
// contributes a zero Result.
func (s *Scorer) runChecks(ctx context.Context, entity check.Entity) map[check.Kind]check.Result {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[check.Kind]check.Result, len(s.checkers))
	)

	for _, c := range s.checkers {
		wg.Add(1)
		go func(c check.Checker) {
			defer wg.Done()
			result := c.Check(ctx, entity)
			mu.Lock()
			results[c.Kind()] = result
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	for _, kind := range check.AllKinds() {
		if _, ok := results[kind]; !ok {
			results[kind] = check.Result{
				Score: 0,
				Details: map[string]any{
					"error":      "check not configured",
					"confidence": "low",
					"method":     string(kind),
				},
			}
		}
	}

	return results
}

// buildEntity validates the request and derives the entity descriptor.
func buildEntity(brandName, rawURL string) (check.Entity, error) {
	name := strings.TrimSpace(brandName)
	if name == "" {
		return check.Entity{}, fmt.Errorf("%w: brand_name must not be empty", ErrInvalidInput)
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return check.Entity{}, fmt.Errorf("%w: url must be a valid http(s) URL", ErrInvalidInput)
	}

	host := u.Hostname()
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		domain = host
	}

	return check.Entity{Name: name, URL: rawURL, Domain: domain}, nil
}
