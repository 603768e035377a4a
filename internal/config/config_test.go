package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"brandradar/pkg/score"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BRANDRADAR_DB_PATH", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"GOOGLE_API_KEY", "GOOGLE_CSE_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "./brandradar.db", cfg.Database.Path)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "en", cfg.Checks.Wikipedia.Language)
	require.Equal(t, "openai", cfg.Checks.LLM.Provider)
	require.Equal(t, score.DefaultWeights(), cfg.Weights)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
database:
  path: /tmp/radar.db
server:
  port: 9090
  cors_origins:
    - https://app.example.com
checks:
  wikipedia:
    language: de
  llm:
    provider: anthropic
weights:
  wikipedia: 0.4
  llm: 0.4
  linkedin: 0.1
  web: 0.1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/tmp/radar.db", cfg.Database.Path)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	require.Equal(t, "de", cfg.Checks.Wikipedia.Language)
	require.Equal(t, "anthropic", cfg.Checks.LLM.Provider)
	require.Equal(t, 0.4, cfg.Weights.Wikipedia)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: 3000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, "./brandradar.db", cfg.Database.Path)
	require.Equal(t, score.DefaultWeights(), cfg.Weights)
}

func TestLoadRejectsBadWeights(t *testing.T) {
	path := writeConfig(t, `
weights:
  wikipedia: 0.9
  llm: 0.9
  linkedin: 0.1
  web: 0.1
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sum to 1.0")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("database path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BRANDRADAR_DB_PATH", "/data/scans.db")
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, "/data/scans.db", cfg.Database.Path)
	})

	t.Run("openai key selects openai", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, "openai", cfg.Checks.LLM.Provider)
		require.Equal(t, "sk-test", cfg.Checks.LLM.APIKey)
	})

	t.Run("anthropic key selects anthropic", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "ak-test")
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, "anthropic", cfg.Checks.LLM.Provider)
		require.Equal(t, "ak-test", cfg.Checks.LLM.APIKey)
	})

	t.Run("search credentials", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "gk-test")
		t.Setenv("GOOGLE_CSE_ID", "cse-test")
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, "gk-test", cfg.Checks.WebSearch.APIKey)
		require.Equal(t, "cse-test", cfg.Checks.WebSearch.EngineID)
	})
}
