package check

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const linkedinCompanyPath = "linkedin.com/company/"

// LinkedIn checks whether a company page can be discovered through search
// engines. The outcome is binary: a located page scores 100, nothing else
// scores anything.
type LinkedIn struct {
	client        *http.Client
	googleBaseURL string
	bingBaseURL   string
	userAgent     string
}

// NewLinkedIn creates a LinkedIn presence checker.
func NewLinkedIn() *LinkedIn {
	return &LinkedIn{
		client:        &http.Client{Timeout: 15 * time.Second},
		googleBaseURL: "https://www.google.com",
		bingBaseURL:   "https://www.bing.com",
		userAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

func (l *LinkedIn) Kind() Kind { return KindLinkedIn }

func (l *LinkedIn) Check(ctx context.Context, entity Entity) Result {
	if result, err := l.searchGoogle(ctx, entity.Name); err == nil && result != nil {
		return *result
	}

	if result, err := l.searchBing(ctx, entity.Name); err == nil && result != nil {
		return *result
	}

	return Result{
		Score: 0,
		Details: map[string]any{
			"method":     "search",
			"message":    "No LinkedIn company page found",
			"confidence": "medium",
		},
	}
}

// searchGoogle looks for company-page links in Google results. Returns
// nil, nil when the search succeeded but found nothing.
func (l *LinkedIn) searchGoogle(ctx context.Context, name string) (*Result, error) {
	query := fmt.Sprintf("%s site:linkedin.com/company", name)
	searchURL := fmt.Sprintf("%s/search?q=%s&hl=en", l.googleBaseURL, url.QueryEscape(query))

	doc, err := l.fetchDoc(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, linkedinCompanyPath) || strings.Contains(href, "google.com") {
			return
		}
		// Google wraps result links as /url?q=<target>&...
		if idx := strings.Index(href, "url?q="); idx >= 0 {
			href = href[idx+len("url?q="):]
		}
		if amp := strings.Index(href, "&"); amp >= 0 {
			href = href[:amp]
		}
		if href != "" && !seen[href] {
			seen[href] = true
			links = append(links, href)
		}
	})

	if len(links) == 0 {
		return nil, nil
	}
	return foundCompanyPage("google_search", links), nil
}

// searchBing is the fallback when Google yields nothing.
func (l *LinkedIn) searchBing(ctx context.Context, name string) (*Result, error) {
	query := fmt.Sprintf("site:linkedin.com/company %q", name)
	searchURL := fmt.Sprintf("%s/search?q=%s", l.bingBaseURL, url.QueryEscape(query))

	doc, err := l.fetchDoc(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("li.b_algo h2 a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(strings.ToLower(href), linkedinCompanyPath) {
			return
		}
		if q := strings.Index(href, "?"); q >= 0 {
			href = href[:q]
		}
		if href != "" && !seen[href] {
			seen[href] = true
			links = append(links, href)
		}
	})

	if len(links) == 0 {
		return nil, nil
	}
	return foundCompanyPage("bing_search", links), nil
}

func foundCompanyPage(method string, links []string) *Result {
	return &Result{
		Score: 100,
		Details: map[string]any{
			"method":        method,
			"url":           links[0],
			"matches_found": len(links),
			"confidence":    "high",
		},
	}
}

func (l *LinkedIn) fetchDoc(ctx context.Context, searchURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	return doc, nil
}
