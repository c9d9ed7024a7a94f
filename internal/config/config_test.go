package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "marquee")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.CachePath != filepath.Join(wantData, "intensity_cache.json") {
		t.Fatalf("unexpected cache path: %q", cfg.Paths.CachePath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8765" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if len(cfg.Dataset.Sources) != 3 {
		t.Fatalf("expected three default sources, got %d", len(cfg.Dataset.Sources))
	}
	if cfg.Dataset.Sources[0].Path != filepath.Join(wantData, "TMDB_movie_dataset_v11.csv") {
		t.Fatalf("expected source resolved against data dir, got %q", cfg.Dataset.Sources[0].Path)
	}
	if cfg.Dataset.MinVoteAverage != 6.0 || cfg.Dataset.MinVoteCount != 2000 || cfg.Dataset.MinYear != 1970 {
		t.Fatalf("unexpected dataset filters: %+v", cfg.Dataset)
	}
	if cfg.Analysis.TimeoutSeconds != 90 {
		t.Fatalf("unexpected analysis timeout: %d", cfg.Analysis.TimeoutSeconds)
	}
	if cfg.LLMEnabled() {
		t.Fatal("expected LLM disabled without api key")
	}
	if cfg.TMDBEnabled() {
		t.Fatal("expected TMDB enrichment disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.ChartsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "marquee.toml")

	type source struct {
		Path   string `toml:"path"`
		Format string `toml:"format"`
	}
	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Dataset struct {
			Sources      []source `toml:"sources"`
			MinVoteCount int      `toml:"min_vote_count"`
			Languages    []string `toml:"languages"`
		} `toml:"dataset"`
		LLM struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"llm"`
		Reviews struct {
			Mode string `toml:"mode"`
		} `toml:"reviews"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Dataset.Sources = []source{{Path: "movies.csv", Format: "TMDB"}}
	custom.Dataset.MinVoteCount = 10
	custom.Dataset.Languages = []string{" EN ", "en", "fr"}
	custom.LLM.APIKey = "file-key"
	custom.LLM.Model = "test/model"
	custom.Reviews.Mode = "Browser"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if len(cfg.Dataset.Sources) != 1 {
		t.Fatalf("expected custom sources to replace defaults, got %+v", cfg.Dataset.Sources)
	}
	if got := cfg.Dataset.Sources[0]; got.Path != filepath.Join(tempDir, "data", "movies.csv") || got.Format != "tmdb" {
		t.Fatalf("unexpected source: %+v", got)
	}
	if cfg.Dataset.MinVoteCount != 10 {
		t.Fatalf("expected min vote count 10, got %d", cfg.Dataset.MinVoteCount)
	}
	if strings.Join(cfg.Dataset.Languages, ",") != "en,fr" {
		t.Fatalf("expected deduplicated languages, got %v", cfg.Dataset.Languages)
	}
	if cfg.LLM.APIKey != "file-key" || cfg.LLM.Model != "test/model" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Reviews.Mode != "browser" {
		t.Fatalf("expected browser review mode, got %q", cfg.Reviews.Mode)
	}
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("expected default llm base url, got %q", cfg.LLM.BaseURL)
	}
}

func TestEnvFallbacksFillMissingKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("TMDB_API_KEY", "env-tmdb")
	t.Setenv("MARQUEE_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-gemini" {
		t.Errorf("expected LLM key from GEMINI_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if cfg.TMDB.APIKey != "env-tmdb" {
		t.Errorf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Errorf("expected API token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestConfigFileKeyWinsOverEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "marquee.toml")
	if err := os.WriteFile(configPath, []byte("[llm]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("expected file key to win, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "OPENROUTER_API_KEY") {
		t.Fatalf("sample config missing api key hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Dataset.Sources) != 3 {
		t.Fatalf("expected three sample sources, got %d", len(cfg.Dataset.Sources))
	}
	if !strings.Contains(cfg.Paths.DataDir, "marquee") {
		t.Fatalf("expected data dir to contain marquee, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"no sources", func(c *config.Config) { c.Dataset.Sources = nil }},
		{"unknown format", func(c *config.Config) { c.Dataset.Sources[0].Format = "parquet" }},
		{"vote average range", func(c *config.Config) { c.Dataset.MinVoteAverage = 11 }},
		{"bad schedule", func(c *config.Config) { c.Dataset.RefreshSchedule = "every tuesday" }},
		{"bad llm url", func(c *config.Config) { c.LLM.APIKey = "k"; c.LLM.BaseURL = "openrouter.ai" }},
		{"bad review mode", func(c *config.Config) { c.Reviews.Mode = "carrier-pigeon" }},
		{"min above max", func(c *config.Config) { c.Reviews.MinReviews = 50; c.Reviews.MaxReviews = 10 }},
		{"bad bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
