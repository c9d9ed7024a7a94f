package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations and bind address configuration.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	CachePath    string `toml:"cache_path"`
	ChartsDir    string `toml:"charts_dir"`
	DatabasePath string `toml:"database_path"`
	LogDir       string `toml:"log_dir"`
	APIBind      string `toml:"api_bind"`
	APIToken     string `toml:"api_token"`
}

// Source describes one catalog CSV file.
type Source struct {
	Path   string `toml:"path"`   // Relative paths resolve against paths.data_dir
	Format string `toml:"format"` // tmdb, indian, imdb_top1000
}

// Dataset contains catalog loading and filtering settings.
type Dataset struct {
	Sources          []Source `toml:"sources"`
	MinVoteAverage   float64  `toml:"min_vote_average"`
	MinVoteCount     int      `toml:"min_vote_count"`
	MinYear          int      `toml:"min_year"`
	Languages        []string `toml:"languages"`
	SnapshotTTLHours int      `toml:"snapshot_ttl_hours"` // 0 disables the SQLite snapshot
	RefreshSchedule  string   `toml:"refresh_schedule"`   // Cron expression; empty disables scheduled refresh
}

// LLM contains the chat completion endpoint used for intensity and sentiment analysis.
type LLM struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	Model            string `toml:"model"`
	Referer          string `toml:"referer"`
	Title            string `toml:"title"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	FailureThreshold int    `toml:"failure_threshold"` // Consecutive failures before the breaker opens
	OpenSeconds      int    `toml:"open_seconds"`      // How long the breaker stays open
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
	Enrich   bool   `toml:"enrich"`
}

// Reviews contains user review fetching settings.
type Reviews struct {
	Enabled           bool    `toml:"enabled"`
	Mode              string  `toml:"mode"` // http or browser
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	MinReviews        int     `toml:"min_reviews"`
	MaxReviews        int     `toml:"max_reviews"`
	MinLength         int     `toml:"min_length"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	CacheTTLHours     int     `toml:"cache_ttl_hours"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Analysis contains orchestration limits.
type Analysis struct {
	TimeoutSeconds int  `toml:"timeout_seconds"`
	PromptReviews  int  `toml:"prompt_reviews"`
	ReviewChars    int  `toml:"review_chars"`
	Charts         bool `toml:"charts"`
}

// Server contains HTTP API settings.
type Server struct {
	CORSOrigins            []string `toml:"cors_origins"`
	RateLimitRequests      int      `toml:"rate_limit_requests"`
	RateLimitWindowSeconds int      `toml:"rate_limit_window_seconds"`
}

// Logging contains logging configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Marquee.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Dataset  Dataset  `toml:"dataset"`
	LLM      LLM      `toml:"llm"`
	TMDB     TMDB     `toml:"tmdb"`
	Reviews  Reviews  `toml:"reviews"`
	Analysis Analysis `toml:"analysis"`
	Server   Server   `toml:"server"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the server and CLI write into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.LogDir,
		c.Paths.ChartsDir,
		filepath.Dir(c.Paths.CachePath),
		filepath.Dir(c.Paths.DatabasePath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the path of the single-instance server lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "marquee.lock")
}

// LogFilePath returns the primary log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "marquee.log")
}

// LLMEnabled reports whether an API key is available for chat completions.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// TMDBEnabled reports whether TMDB enrichment should run.
func (c *Config) TMDBEnabled() bool {
	return c.TMDB.Enrich && strings.TrimSpace(c.TMDB.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
