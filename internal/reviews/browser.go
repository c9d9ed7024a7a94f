package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"marquee/internal/logging"
)

const maxLoadMoreClicks = 8

type browserSource struct {
	userAgent string
	logger    *slog.Logger
}

func allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	return opts
}

// Page renders the reviews page in headless Chrome, clicking "load more"
// until want reviews are present, the button disappears, or the click budget
// runs out.
func (s *browserSource) Page(ctx context.Context, pageURL string, want int) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(s.userAgent)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(anyContainerSelector, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("load reviews page: %w", err)
	}

	countJS := fmt.Sprintf(`document.querySelectorAll(%q).length`, anyContainerSelector)
	moreJS := fmt.Sprintf(`(function() {
		const btn = document.querySelector(%q);
		if (!btn) return false;
		btn.scrollIntoView({block: 'center'});
		btn.click();
		return true;
	})()`, loadMoreSelector)

	for clicks := 0; clicks < maxLoadMoreClicks; clicks++ {
		var count int
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(countJS, &count)); err != nil {
			return "", fmt.Errorf("count reviews: %w", err)
		}
		if count >= want {
			break
		}
		var clicked bool
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(moreJS, &clicked)); err != nil {
			return "", fmt.Errorf("load more reviews: %w", err)
		}
		if !clicked {
			break
		}
		s.logger.Debug("clicked load more", logging.Int("visible", count), logging.Int("click", clicks+1))
		if err := chromedp.Run(browserCtx, chromedp.Sleep(2*time.Second)); err != nil {
			return "", err
		}
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read rendered page: %w", err)
	}
	return html, nil
}
