package reviews

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"marquee/internal/services"
)

const maxPageBytes = 8 << 20

type httpSource struct {
	client    *http.Client
	userAgent string
}

// Page fetches the server-rendered page. Only the first batch of reviews is
// present without a browser, so want is ignored.
func (s *httpSource) Page(ctx context.Context, pageURL string, _ int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request reviews page: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", services.Wrap(services.ErrNotFound, "reviews", "fetch", "reviews page not found", nil)
	case resp.StatusCode != http.StatusOK:
		return "", services.Wrap(services.ErrUpstreamUnavailable, "reviews", "fetch", "reviews page returned "+resp.Status, nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read reviews page: %w", err)
	}
	return string(body), nil
}
