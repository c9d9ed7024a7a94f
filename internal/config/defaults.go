package config

const (
	defaultDataDir                = "~/.local/share/marquee"
	defaultCachePath              = "~/.local/share/marquee/intensity_cache.json"
	defaultChartsDir              = "~/.local/share/marquee/charts"
	defaultDatabasePath           = "~/.local/share/marquee/marquee.db"
	defaultLogDir                 = "~/.local/share/marquee/logs"
	defaultAPIBind                = "127.0.0.1:8765"
	defaultMinVoteAverage         = 6.0
	defaultMinVoteCount           = 2000
	defaultMinYear                = 1970
	defaultSnapshotTTLHours       = 24
	defaultRefreshSchedule        = "@daily"
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "google/gemini-2.5-flash"
	defaultLLMReferer             = "https://github.com/marquee-movies/marquee"
	defaultLLMTitle               = "Marquee"
	defaultLLMTimeoutSeconds      = 60
	defaultLLMFailureThreshold    = 5
	defaultLLMOpenSeconds         = 30
	defaultTMDBLanguage           = "en-US"
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultReviewsMode            = "http"
	defaultReviewsBaseURL         = "https://www.imdb.com"
	defaultReviewsUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultReviewsMin             = 15
	defaultReviewsMax             = 35
	defaultReviewsMinLength       = 50
	defaultReviewsRPS             = 1.0
	defaultReviewsCacheTTLHours   = 168
	defaultReviewsTimeoutSeconds  = 45
	defaultAnalysisTimeoutSeconds = 90
	defaultAnalysisPromptReviews  = 10
	defaultAnalysisReviewChars    = 500
	defaultRateLimitRequests      = 60
	defaultRateLimitWindowSeconds = 60
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

func defaultSources() []Source {
	return []Source{
		{Path: "TMDB_movie_dataset_v11.csv", Format: "tmdb"},
		{Path: "indian movies.csv", Format: "indian"},
		{Path: "imdb_top_1000.csv", Format: "imdb_top1000"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			CachePath:    defaultCachePath,
			ChartsDir:    defaultChartsDir,
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Dataset: Dataset{
			Sources:          defaultSources(),
			MinVoteAverage:   defaultMinVoteAverage,
			MinVoteCount:     defaultMinVoteCount,
			MinYear:          defaultMinYear,
			Languages:        []string{"en", "hi"},
			SnapshotTTLHours: defaultSnapshotTTLHours,
			RefreshSchedule:  defaultRefreshSchedule,
		},
		LLM: LLM{
			BaseURL:          defaultLLMBaseURL,
			Model:            defaultLLMModel,
			Referer:          defaultLLMReferer,
			Title:            defaultLLMTitle,
			TimeoutSeconds:   defaultLLMTimeoutSeconds,
			FailureThreshold: defaultLLMFailureThreshold,
			OpenSeconds:      defaultLLMOpenSeconds,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Reviews: Reviews{
			Enabled:           true,
			Mode:              defaultReviewsMode,
			BaseURL:           defaultReviewsBaseURL,
			UserAgent:         defaultReviewsUserAgent,
			MinReviews:        defaultReviewsMin,
			MaxReviews:        defaultReviewsMax,
			MinLength:         defaultReviewsMinLength,
			RequestsPerSecond: defaultReviewsRPS,
			CacheTTLHours:     defaultReviewsCacheTTLHours,
			TimeoutSeconds:    defaultReviewsTimeoutSeconds,
		},
		Analysis: Analysis{
			TimeoutSeconds: defaultAnalysisTimeoutSeconds,
			PromptReviews:  defaultAnalysisPromptReviews,
			ReviewChars:    defaultAnalysisReviewChars,
			Charts:         true,
		},
		Server: Server{
			RateLimitRequests:      defaultRateLimitRequests,
			RateLimitWindowSeconds: defaultRateLimitWindowSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
