package check

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const googleResultsHTML = `<html><body>
<a href="/url?q=https://www.linkedin.com/company/acme&amp;sa=U">Acme | LinkedIn</a>
<a href="/url?q=https://www.linkedin.com/company/acme-corp&amp;sa=U">Acme Corp | LinkedIn</a>
<a href="https://www.google.com/linkedin.com/company/ignore">nav</a>
<a href="/url?q=https://example.com/about">unrelated</a>
</body></html>`

const bingResultsHTML = `<html><body><ol>
<li class="b_algo"><h2><a href="https://www.linkedin.com/company/acme?trk=serp">Acme</a></h2></li>
<li class="b_algo"><h2><a href="https://example.com/acme">Acme homepage</a></h2></li>
</ol></body></html>`

func TestLinkedInCheck(t *testing.T) {
	t.Run("google discovery scores 100", func(t *testing.T) {
		google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, googleResultsHTML)
		}))
		defer google.Close()

		l := NewLinkedIn()
		l.googleBaseURL = google.URL
		l.bingBaseURL = "http://127.0.0.1:0" // must not be reached

		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 100, result.Score)
		require.Equal(t, "google_search", result.Details["method"])
		require.Equal(t, "https://www.linkedin.com/company/acme", result.Details["url"])
		require.Equal(t, 2, result.Details["matches_found"])
		require.Equal(t, "high", result.Details["confidence"])
	})

	t.Run("falls back to bing when google fails", func(t *testing.T) {
		google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer google.Close()
		bing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, bingResultsHTML)
		}))
		defer bing.Close()

		l := NewLinkedIn()
		l.googleBaseURL = google.URL
		l.bingBaseURL = bing.URL

		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 100, result.Score)
		require.Equal(t, "bing_search", result.Details["method"])
		// Tracking query params are stripped.
		require.Equal(t, "https://www.linkedin.com/company/acme", result.Details["url"])
	})

	t.Run("falls back to bing when google finds nothing", func(t *testing.T) {
		var bingCalls atomic.Int32
		google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>no results</body></html>")
		}))
		defer google.Close()
		bing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bingCalls.Add(1)
			fmt.Fprint(w, bingResultsHTML)
		}))
		defer bing.Close()

		l := NewLinkedIn()
		l.googleBaseURL = google.URL
		l.bingBaseURL = bing.URL

		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 100, result.Score)
		require.Equal(t, int32(1), bingCalls.Load())
	})

	t.Run("no discovery scores exactly zero", func(t *testing.T) {
		empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>nothing here</body></html>")
		}))
		defer empty.Close()

		l := NewLinkedIn()
		l.googleBaseURL = empty.URL
		l.bingBaseURL = empty.URL

		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 0, result.Score)
		require.Equal(t, "No LinkedIn company page found", result.Details["message"])
		require.Equal(t, "medium", result.Details["confidence"])
	})

	t.Run("outcome is binary", func(t *testing.T) {
		// Whatever the upstreams do, the only possible scores are 0 and 100.
		for _, handler := range []http.HandlerFunc{
			func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, googleResultsHTML) },
			func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html></html>") },
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
		} {
			srv := httptest.NewServer(handler)
			l := NewLinkedIn()
			l.googleBaseURL = srv.URL
			l.bingBaseURL = srv.URL

			result := l.Check(context.Background(), Entity{Name: "Acme"})
			require.Contains(t, []int{0, 100}, result.Score)
			srv.Close()
		}
	})
}
