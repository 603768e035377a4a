package check

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// wikiSectionKeywords are section names that indicate a substantial page.
// Each keyword counts at most once, however many section titles match it.
var wikiSectionKeywords = []string{"history", "geography", "location", "description"}

// Wikipedia checks whether an entity has a Wikipedia page and scores the
// page's content quality.
type Wikipedia struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewWikipedia creates a Wikipedia checker for the given language edition.
func NewWikipedia(language string) *Wikipedia {
	if language == "" {
		language = "en"
	}
	return &Wikipedia{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   fmt.Sprintf("https://%s.wikipedia.org", language),
		userAgent: "brandradar/1.0",
	}
}

func (w *Wikipedia) Kind() Kind { return KindWikipedia }

func (w *Wikipedia) Check(ctx context.Context, entity Entity) Result {
	page, err := w.fetchPage(ctx, entity.Name)
	if err != nil {
		return degraded("wikipedia_api", err)
	}

	if !page.exists {
		return Result{
			Score: 0,
			Details: map[string]any{
				"exists":     false,
				"confidence": "high",
				"message":    "No Wikipedia page found",
				"method":     "wikipedia_api",
			},
		}
	}

	sections, err := w.fetchSections(ctx, page.title)
	if err != nil {
		return degraded("wikipedia_api", err)
	}

	return Result{
		Score: scoreWikiPage(page.extract, sections),
		Details: map[string]any{
			"exists":         true,
			"title":          page.title,
			"url":            page.fullURL,
			"summary_length": len(page.extract),
			"sections":       len(sections),
			"confidence":     "high",
			"method":         "wikipedia_api",
		},
	}
}

// scoreWikiPage builds the content-quality score additively: 50 for bare
// existence, up to 35 for the summary, up to 35 for sections, capped at 100.
func scoreWikiPage(summary string, sections []string) int {
	score := 50

	if summary != "" {
		score += 20
		if len(summary) > 500 {
			score += 15
		} else if len(summary) > 200 {
			score += 10
		}
	}

	if len(sections) > 0 {
		score += 15
		for _, keyword := range wikiSectionKeywords {
			for _, title := range sections {
				if strings.Contains(strings.ToLower(title), keyword) {
					score += 5
					break
				}
			}
		}
	}

	return clampScore(score)
}

type wikiPage struct {
	exists  bool
	title   string
	fullURL string
	extract string
}

func (w *Wikipedia) fetchPage(ctx context.Context, name string) (*wikiPage, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|info")
	params.Set("inprop", "url")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("titles", name)

	var result struct {
		Query struct {
			Pages []struct {
				Title   string `json:"title"`
				Missing bool   `json:"missing"`
				Extract string `json:"extract"`
				FullURL string `json:"fullurl"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := w.getJSON(ctx, params, &result); err != nil {
		return nil, err
	}

	if len(result.Query.Pages) == 0 {
		return &wikiPage{exists: false}, nil
	}
	page := result.Query.Pages[0]
	if page.Missing {
		return &wikiPage{exists: false}, nil
	}

	return &wikiPage{
		exists:  true,
		title:   page.Title,
		fullURL: page.FullURL,
		extract: page.Extract,
	}, nil
}

// fetchSections returns the top-level section titles of a page.
func (w *Wikipedia) fetchSections(ctx context.Context, title string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "sections")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var result struct {
		Parse struct {
			Sections []struct {
				Line     string `json:"line"`
				TocLevel int    `json:"toclevel"`
			} `json:"sections"`
		} `json:"parse"`
	}
	if err := w.getJSON(ctx, params, &result); err != nil {
		return nil, err
	}

	var titles []string
	for _, s := range result.Parse.Sections {
		if s.TocLevel <= 1 {
			titles = append(titles, s.Line)
		}
	}
	return titles, nil
}

func (w *Wikipedia) getJSON(ctx context.Context, params url.Values, out any) error {
	reqURL := w.baseURL + "/w/api.php?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create wikipedia request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia API status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	return nil
}
