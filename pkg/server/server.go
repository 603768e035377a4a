package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"brandradar/internal/store"
	"brandradar/pkg/check"
	"brandradar/pkg/score"
)

// BrandScorer is the scoring engine the server exposes.
type BrandScorer interface {
	CalculateScore(ctx context.Context, brandName, url string) (*score.Result, error)
}

// Server provides the HTTP API.
type Server struct {
	scorer  BrandScorer
	store   store.Store
	port    int
	origins []string
}

// New creates a new HTTP server.
func New(scorer BrandScorer, st store.Store, port int, corsOrigins []string) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		scorer:  scorer,
		store:   st,
		port:    port,
		origins: corsOrigins,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /check-score", s.handleCheckScore)
	mux.HandleFunc("GET /results/{scan_id}", s.handleGetResult)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /suggestions/{scan_id}", s.handleSuggestions)
	return s.cors(mux)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("brandradar server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type scoreRequest struct {
	BrandName string `json:"brand_name"`
	URL       string `json:"url"`
}

func (s *Server) handleCheckScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid request body"})
		return
	}
	if req.BrandName == "" || req.URL == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "brand_name and url are required"})
		return
	}

	result, err := s.scorer.CalculateScore(r.Context(), req.BrandName, req.URL)
	if errors.Is(err, score.ErrInvalidInput) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"detail": fmt.Sprintf("An error occurred while processing your request: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	scanID := r.PathValue("scan_id")

	result, err := s.store.GetResult(r.Context(), scanID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"detail": fmt.Sprintf("No result found with ID: %s", scanID),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "limit must be an integer"})
			return
		}
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	summaries, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  summaries,
		"count": len(summaries),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	scanID := r.PathValue("scan_id")

	result, err := s.store.GetResult(r.Context(), scanID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"detail": fmt.Sprintf("No result found with ID: %s", scanID),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scan_id":     result.ScanID,
		"brand_name":  brandNameFromMetadata(result.Metadata),
		"score":       result.Score,
		"suggestions": Suggestions(result.Breakdown),
	})
}

// Suggestions derives improvement tips from breakdown fields below 50.
func Suggestions(b score.Breakdown) []string {
	suggestions := []string{}
	if b.WikipediaPresence < 50 {
		suggestions = append(suggestions, "Create or expand the brand's Wikipedia page with a detailed summary and sections such as history and description.")
	}
	if b.LLMRecall < 50 {
		suggestions = append(suggestions, "Publish authoritative, widely referenced content about the brand so AI assistants learn to recognize it.")
	}
	if b.PlatformVisibility < 50 {
		suggestions = append(suggestions, "Create a LinkedIn company page and keep it active so it appears in search results.")
	}
	if b.WebPresence < 50 {
		suggestions = append(suggestions, "Grow web coverage through press releases, directories and content marketing to increase search result volume.")
	}
	return suggestions
}

func brandNameFromMetadata(metadata map[string]any) string {
	switch entity := metadata["entity"].(type) {
	case map[string]any:
		name, _ := entity["name"].(string)
		return name
	case check.Entity:
		return entity.Name
	}
	return ""
}

// cors adds CORS headers for configured origins and answers preflights.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.allowOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) bool {
	if len(s.origins) == 0 {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
