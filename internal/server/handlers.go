package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"marquee/internal/dataset"
	"marquee/internal/recommend"
	"marquee/internal/services"
)

type analyzeRequest struct {
	Title string `json:"title"`
}

type sentimentRequest struct {
	Title      string `json:"title"`
	ExternalID string `json:"external_id"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Movies       int    `json:"movies"`
	CacheEntries int    `json:"cache_entries"`
	Error        string `json:"error,omitempty"`
}

type candidatesResponse struct {
	Success bool                `json:"success"`
	Results []dataset.Candidate `json:"results"`
	Total   int                 `json:"total"`
}

type genresResponse struct {
	Success bool     `json:"success"`
	Genres  []string `json:"genres"`
}

type languagesResponse struct {
	Success   bool               `json:"success"`
	Languages []dataset.Language `json:"languages"`
}

type cacheEntry struct {
	Key         string `json:"key"`
	Title       string `json:"movie_title"`
	MovieID     *int64 `json:"movie_id"`
	ReleaseDate string `json:"release_date,omitempty"`
	Success     bool   `json:"success"`
	ChartPath   string `json:"plot_path,omitempty"`
	AnalyzedAt  string `json:"analyzed_at,omitempty"`
}

type cacheResponse struct {
	Success bool         `json:"success"`
	Entries []cacheEntry `json:"entries"`
	Count   int          `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if catalog, err := s.opts.Catalogs.Catalog(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
	} else {
		resp.Movies = catalog.Len()
	}
	if s.opts.Cache != nil {
		resp.CacheEntries = s.opts.Cache.Count()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	result, err := s.opts.Analyzer.ResolveAndAnalyze(r.Context(), req.Title)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.recommend(w, r, req)
}

func (s *Server) handleRecommendQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := recommend.Request{
		Genre:    query.Get("genre"),
		Language: query.Get("language"),
	}
	if value := strings.TrimSpace(query.Get("limit")); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil {
			s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "recommend", "limit must be an integer", nil))
			return
		}
		req.Limit = limit
	}
	for _, raw := range query["exclude"] {
		ids, err := parseIDList(raw)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		req.ExcludedIDs = append(req.ExcludedIDs, ids...)
	}
	s.recommend(w, r, req)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, req recommend.Request) {
	result, err := s.opts.Recommender.Recommend(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSentimentSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := query.Get("q")
	if q == "" {
		q = query.Get("query")
	}
	limit := 0
	if value := strings.TrimSpace(query.Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "sentiment search", "limit must be an integer", nil))
			return
		}
		limit = parsed
	}
	results, err := s.opts.Analyzer.SearchSentimentCandidates(r.Context(), q, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, candidatesResponse{Success: true, Results: results, Total: len(results)})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	var req sentimentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	result, err := s.opts.Analyzer.AnalyzeSentiment(r.Context(), req.Title, req.ExternalID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.opts.Catalogs.Catalog(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, genresResponse{Success: true, Genres: catalog.Genres()})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, languagesResponse{Success: true, Languages: dataset.LanguageOptions(s.opts.Languages)})
}

func (s *Server) handleCache(w http.ResponseWriter, _ *http.Request) {
	resp := cacheResponse{Success: true, Entries: []cacheEntry{}}
	if s.opts.Cache != nil {
		for _, entry := range s.opts.Cache.List() {
			item := cacheEntry{
				Key:         entry.Key,
				Title:       entry.Analysis.MovieTitle,
				MovieID:     entry.Analysis.MovieID,
				ReleaseDate: entry.Analysis.ReleaseDate,
				Success:     entry.Analysis.Success,
				ChartPath:   entry.Analysis.ChartPath,
			}
			if !entry.Analysis.AnalyzedAt.IsZero() {
				item.AnalyzedAt = entry.Analysis.AnalyzedAt.Format(time.RFC3339)
			}
			resp.Entries = append(resp.Entries, item)
		}
	}
	resp.Count = len(resp.Entries)
	s.writeJSON(w, http.StatusOK, resp)
}

// parseIDList parses "1,2, 3" into ids.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "api", "parse ids", "invalid movie id "+strconv.Quote(part), nil)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
