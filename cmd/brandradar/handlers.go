package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"brandradar/internal/config"
	"brandradar/internal/store"
	"brandradar/pkg/check"
	"brandradar/pkg/score"
	"brandradar/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildCheckers(cfg *config.Config) []check.Checker {
	return []check.Checker{
		check.NewWikipedia(cfg.Checks.Wikipedia.Language),
		check.NewLLM(
			cfg.Checks.LLM.Provider,
			cfg.Checks.LLM.Model,
			cfg.Checks.LLM.APIKey,
			cfg.Checks.LLM.BaseURL,
		),
		check.NewLinkedIn(),
		check.NewWebSearch(cfg.Checks.WebSearch.APIKey, cfg.Checks.WebSearch.EngineID),
	}
}

func buildScorer(cfg *config.Config, st store.Store) (*score.Scorer, error) {
	return score.NewScorer(buildCheckers(cfg), cfg.Weights, st)
}

func runScore(brandName, brandURL string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	scorer, err := buildScorer(cfg, db)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "scoring %q...\n", brandName)
	result, err := scorer.CalculateScore(context.Background(), brandName, brandURL)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\t%d\n", result.Score)
	fmt.Fprintf(w, "  wikipedia presence\t%d\n", result.Breakdown.WikipediaPresence)
	fmt.Fprintf(w, "  llm recall\t%d\n", result.Breakdown.LLMRecall)
	fmt.Fprintf(w, "  platform visibility\t%d\n", result.Breakdown.PlatformVisibility)
	fmt.Fprintf(w, "  web presence\t%d\n", result.Breakdown.WebPresence)
	fmt.Fprintf(w, "SCAN ID\t%s\n", result.ScanID)
	fmt.Fprintf(w, "TIME\t%s\n", result.Timestamp)
	return w.Flush()
}

func runHistory(limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	summaries, err := db.ListRecent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list scans: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("no scans found (run one first: brandradar score <brand> --url <url>)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tWIKI\tLLM\tLINKEDIN\tWEB\tSCAN ID\tTIME")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			s.Score,
			s.Breakdown.WikipediaPresence, s.Breakdown.LLMRecall,
			s.Breakdown.PlatformVisibility, s.Breakdown.WebPresence,
			s.ScanID, s.Timestamp)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	scorer, err := buildScorer(cfg, db)
	if err != nil {
		return err
	}

	srv := server.New(scorer, db, port, cfg.Server.CORSOrigins)
	return srv.ListenAndServe()
}
