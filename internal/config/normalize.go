package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeTMDB()
	c.normalizeReviews()
	c.normalizeAnalysis()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CachePath) == "" {
		c.Paths.CachePath = defaultCachePath
	}
	if c.Paths.CachePath, err = expandPath(c.Paths.CachePath); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.ChartsDir) == "" {
		c.Paths.ChartsDir = defaultChartsDir
	}
	if c.Paths.ChartsDir, err = expandPath(c.Paths.ChartsDir); err != nil {
		return fmt.Errorf("paths.charts_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("MARQUEE_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeDataset() error {
	if len(c.Dataset.Sources) == 0 {
		c.Dataset.Sources = defaultSources()
	}
	sources := make([]Source, 0, len(c.Dataset.Sources))
	for i, src := range c.Dataset.Sources {
		path := strings.TrimSpace(src.Path)
		if path == "" {
			continue
		}
		if !strings.HasPrefix(path, "~") && !filepath.IsAbs(path) {
			path = filepath.Join(c.Paths.DataDir, path)
		}
		expanded, err := expandPath(path)
		if err != nil {
			return fmt.Errorf("dataset.sources[%d].path: %w", i, err)
		}
		sources = append(sources, Source{
			Path:   expanded,
			Format: strings.ToLower(strings.TrimSpace(src.Format)),
		})
	}
	c.Dataset.Sources = sources

	if len(c.Dataset.Languages) == 0 {
		c.Dataset.Languages = []string{"en", "hi"}
	} else {
		langs := make([]string, 0, len(c.Dataset.Languages))
		seen := make(map[string]struct{}, len(c.Dataset.Languages))
		for _, lang := range c.Dataset.Languages {
			normalized := strings.ToLower(strings.TrimSpace(lang))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			langs = append(langs, normalized)
		}
		if len(langs) == 0 {
			langs = []string{"en", "hi"}
		}
		c.Dataset.Languages = langs
	}
	if c.Dataset.SnapshotTTLHours < 0 {
		c.Dataset.SnapshotTTLHours = 0
	}
	c.Dataset.RefreshSchedule = strings.TrimSpace(c.Dataset.RefreshSchedule)
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"OPENROUTER_API_KEY", "GEMINI_API_KEY", "LLM_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.FailureThreshold <= 0 {
		c.LLM.FailureThreshold = defaultLLMFailureThreshold
	}
	if c.LLM.OpenSeconds <= 0 {
		c.LLM.OpenSeconds = defaultLLMOpenSeconds
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeReviews() {
	c.Reviews.Mode = strings.ToLower(strings.TrimSpace(c.Reviews.Mode))
	if c.Reviews.Mode == "" {
		c.Reviews.Mode = defaultReviewsMode
	}
	c.Reviews.BaseURL = strings.TrimRight(strings.TrimSpace(c.Reviews.BaseURL), "/")
	if c.Reviews.BaseURL == "" {
		c.Reviews.BaseURL = defaultReviewsBaseURL
	}
	c.Reviews.UserAgent = strings.TrimSpace(c.Reviews.UserAgent)
	if c.Reviews.UserAgent == "" {
		c.Reviews.UserAgent = defaultReviewsUserAgent
	}
	if c.Reviews.MinReviews < 0 {
		c.Reviews.MinReviews = 0
	}
	if c.Reviews.MaxReviews <= 0 {
		c.Reviews.MaxReviews = defaultReviewsMax
	}
	if c.Reviews.MinLength < 0 {
		c.Reviews.MinLength = 0
	}
	if c.Reviews.RequestsPerSecond <= 0 {
		c.Reviews.RequestsPerSecond = defaultReviewsRPS
	}
	if c.Reviews.CacheTTLHours < 0 {
		c.Reviews.CacheTTLHours = 0
	}
	if c.Reviews.TimeoutSeconds <= 0 {
		c.Reviews.TimeoutSeconds = defaultReviewsTimeoutSeconds
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.TimeoutSeconds <= 0 {
		c.Analysis.TimeoutSeconds = defaultAnalysisTimeoutSeconds
	}
	if c.Analysis.PromptReviews < 0 {
		c.Analysis.PromptReviews = 0
	}
	if c.Analysis.ReviewChars <= 0 {
		c.Analysis.ReviewChars = defaultAnalysisReviewChars
	}
}

func (c *Config) normalizeServer() {
	origins := make([]string, 0, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.CORSOrigins = origins
	if c.Server.RateLimitRequests < 0 {
		c.Server.RateLimitRequests = 0
	}
	if c.Server.RateLimitWindowSeconds <= 0 {
		c.Server.RateLimitWindowSeconds = defaultRateLimitWindowSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
