package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateReviews(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	if len(c.Dataset.Sources) == 0 {
		return errors.New("dataset.sources must list at least one CSV file")
	}
	for i, src := range c.Dataset.Sources {
		switch src.Format {
		case "tmdb", "indian", "imdb_top1000":
		default:
			return fmt.Errorf("dataset.sources[%d].format must be one of tmdb, indian, imdb_top1000 (got %q)", i, src.Format)
		}
	}
	if c.Dataset.MinVoteAverage < 0 || c.Dataset.MinVoteAverage > 10 {
		return errors.New("dataset.min_vote_average must be between 0 and 10")
	}
	if c.Dataset.MinVoteCount < 0 {
		return errors.New("dataset.min_vote_count must be non-negative")
	}
	if c.Dataset.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Dataset.RefreshSchedule); err != nil {
			return fmt.Errorf("dataset.refresh_schedule: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		return nil
	}
	if !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		return fmt.Errorf("llm.base_url must be an http(s) URL (got %q)", c.LLM.BaseURL)
	}
	return nil
}

func (c *Config) validateReviews() error {
	switch c.Reviews.Mode {
	case "http", "browser":
	default:
		return fmt.Errorf("reviews.mode must be http or browser (got %q)", c.Reviews.Mode)
	}
	if c.Reviews.MinReviews > c.Reviews.MaxReviews {
		return fmt.Errorf("reviews.min_reviews (%d) must not exceed reviews.max_reviews (%d)", c.Reviews.MinReviews, c.Reviews.MaxReviews)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.PromptReviews > 50 {
		return errors.New("analysis.prompt_reviews must be 50 or fewer")
	}
	return nil
}

func (c *Config) validateServer() error {
	if !strings.Contains(c.Paths.APIBind, ":") {
		return fmt.Errorf("paths.api_bind must be host:port (got %q)", c.Paths.APIBind)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}
