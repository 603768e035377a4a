package check

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WebSearch estimates how much of the web mentions the brand. The primary
// path asks the Google Custom Search API for a total-results count; without
// credentials (or on API failure) it falls back to a coarse results-page
// scrape.
type WebSearch struct {
	client          *http.Client
	apiKey          string
	engineID        string
	apiBaseURL      string
	fallbackBaseURL string
	userAgent       string
}

// NewWebSearch creates a web-presence checker. Empty credentials are
// allowed; the checker then uses only the fallback path.
func NewWebSearch(apiKey, engineID string) *WebSearch {
	return &WebSearch{
		client:          &http.Client{Timeout: 15 * time.Second},
		apiKey:          apiKey,
		engineID:        engineID,
		apiBaseURL:      "https://www.googleapis.com",
		fallbackBaseURL: "https://www.google.com",
		userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

func (w *WebSearch) Kind() Kind { return KindWebSearch }

func (w *WebSearch) Check(ctx context.Context, entity Entity) Result {
	if w.apiKey == "" || w.engineID == "" {
		return w.fallbackCheck(ctx, entity.Name)
	}

	result, err := w.apiCheck(ctx, entity.Name)
	if err != nil {
		return w.fallbackCheck(ctx, entity.Name)
	}
	return result
}

func (w *WebSearch) apiCheck(ctx context.Context, name string) (Result, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("key", w.apiKey)
	params.Set("cx", w.engineID)
	params.Set("num", "1")

	reqURL := w.apiBaseURL + "/customsearch/v1?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create cse request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch cse results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("cse API status %d", resp.StatusCode)
	}

	// The API reports totalResults as a decimal string.
	var result struct {
		SearchInformation struct {
			TotalResults string `json:"totalResults"`
		} `json:"searchInformation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode cse response: %w", err)
	}

	totalResults, err := strconv.ParseInt(result.SearchInformation.TotalResults, 10, 64)
	if err != nil {
		totalResults = 0
	}

	return Result{
		Score: scoreResultCount(totalResults),
		Details: map[string]any{
			"method":        "google_cse_api",
			"results_count": totalResults,
			"search_term":   name,
			"confidence":    "high",
		},
	}, nil
}

// scoreResultCount maps a total-results count to a score band.
func scoreResultCount(total int64) int {
	switch {
	case total > 1_000_000:
		return 90
	case total > 100_000:
		return 70
	case total > 10_000:
		return 50
	case total > 1_000:
		return 30
	default:
		return 10
	}
}

// fallbackCheck scrapes a results page and yields coarse confidence bands:
// 50 when a result-count marker is present, 20 when the page is ambiguous,
// 0 on total failure.
func (w *WebSearch) fallbackCheck(ctx context.Context, name string) Result {
	searchURL := fmt.Sprintf("%s/search?q=%s", w.fallbackBaseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return fallbackFailed(name)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fallbackFailed(name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallbackFailed(name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fallbackFailed(name)
	}

	content := strings.ToLower(string(body))
	if strings.Contains(content, "about") && strings.Contains(content, "results") {
		return Result{
			Score: 50,
			Details: map[string]any{
				"method":      "fallback_search",
				"message":     "Used fallback search method",
				"search_term": name,
				"confidence":  "medium",
			},
		}
	}

	return Result{
		Score: 20,
		Details: map[string]any{
			"method":      "fallback_search",
			"message":     "No clear result count found",
			"search_term": name,
			"confidence":  "low",
		},
	}
}

func fallbackFailed(name string) Result {
	return Result{
		Score: 0,
		Details: map[string]any{
			"method":      "fallback_search",
			"message":     "Error in fallback search",
			"search_term": name,
			"confidence":  "low",
		},
	}
}
