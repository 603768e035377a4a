package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"brandradar/pkg/score"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Summary is the listing view of one stored scan.
type Summary struct {
	ScanID    string          `json:"scan_id"`
	Score     int             `json:"score"`
	Breakdown score.Breakdown `json:"score_breakdown"`
	Timestamp string          `json:"timestamp"`
}

// Store is the persistence interface for scan results.
type Store interface {
	// SaveResult persists a result, overwriting any record with the same
	// scan id.
	SaveResult(ctx context.Context, result *score.Result) error
	// GetResult returns the stored result, or nil (with a nil error) when
	// the scan id is unknown.
	GetResult(ctx context.Context, scanID string) (*score.Result, error)
	// ListRecent returns up to limit summaries, most recent first.
	ListRecent(ctx context.Context, limit int) ([]Summary, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanRow struct {
	ScanID             string `db:"scan_id"`
	Score              int    `db:"score"`
	LLMRecall          int    `db:"llm_recall"`
	WikipediaPresence  int    `db:"wikipedia_presence"`
	PlatformVisibility int    `db:"platform_visibility"`
	WebPresence        int    `db:"web_presence"`
	CreatedAt          string `db:"created_at"`
	Metadata           string `db:"metadata"`
}

func (r scanRow) breakdown() score.Breakdown {
	return score.Breakdown{
		LLMRecall:          r.LLMRecall,
		WikipediaPresence:  r.WikipediaPresence,
		PlatformVisibility: r.PlatformVisibility,
		WebPresence:        r.WebPresence,
	}
}

func (s *SQLiteStore) SaveResult(ctx context.Context, result *score.Result) error {
	metadataJSON, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata %s: %w", result.ScanID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scans (scan_id, score, llm_recall, wikipedia_presence, platform_visibility, web_presence, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scan_id) DO UPDATE SET
			score = excluded.score,
			llm_recall = excluded.llm_recall,
			wikipedia_presence = excluded.wikipedia_presence,
			platform_visibility = excluded.platform_visibility,
			web_presence = excluded.web_presence,
			created_at = excluded.created_at,
			metadata = excluded.metadata
	`, result.ScanID, result.Score,
		result.Breakdown.LLMRecall, result.Breakdown.WikipediaPresence,
		result.Breakdown.PlatformVisibility, result.Breakdown.WebPresence,
		result.Timestamp, string(metadataJSON))
	if err != nil {
		return fmt.Errorf("upsert scan %s: %w", result.ScanID, err)
	}
	return nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, scanID string) (*score.Result, error) {
	var row scanRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM scans WHERE scan_id = ?", scanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scan %s: %w", scanID, err)
	}

	result := &score.Result{
		Score:     row.Score,
		Breakdown: row.breakdown(),
		ScanID:    row.ScanID,
		Timestamp: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.Metadata), &result.Metadata); err != nil {
		result.Metadata = map[string]any{}
	}
	return result, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var rows []scanRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM scans ORDER BY created_at DESC, scan_id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}

	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, Summary{
			ScanID:    row.ScanID,
			Score:     row.Score,
			Breakdown: row.breakdown(),
			Timestamp: row.CreatedAt,
		})
	}
	return summaries, nil
}
