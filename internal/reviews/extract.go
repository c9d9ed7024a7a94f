package reviews

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	containerSelector       = "article[class*='user-review-item']"
	legacyContainerSelector = "div.review-container"
	spoilerSelector         = `div[data-testid="review-spoiler-content"]`
	loadMoreSelector        = "button.ipc-see-more__button:not([aria-disabled='true'])"
	anyContainerSelector    = containerSelector + ", " + legacyContainerSelector
)

var textSelectors = []string{
	"div.ipc-html-content-inner-div",
	"div.text.show-more__control",
	"div.content",
}

// ExtractOptions bounds what Extract keeps.
type ExtractOptions struct {
	MinLength  int
	MaxReviews int
}

// ExtractHTML parses a reviews page and returns the review texts.
func ExtractHTML(r io.Reader, opts ExtractOptions) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return Extract(doc, opts), nil
}

// Extract collects review texts in page order. Spoiler-marked reviews,
// duplicates, and texts of MinLength characters or fewer are skipped.
func Extract(doc *goquery.Document, opts ExtractOptions) []string {
	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		containers = doc.Find(legacyContainerSelector)
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, containers.Length())
	containers.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if opts.MaxReviews > 0 && len(out) >= opts.MaxReviews {
			return false
		}
		if sel.Find(spoilerSelector).Length() > 0 {
			return true
		}
		text := reviewText(sel)
		if text == "" || len([]rune(text)) <= opts.MinLength {
			return true
		}
		if _, dup := seen[text]; dup {
			return true
		}
		seen[text] = struct{}{}
		out = append(out, text)
		return true
	})
	return out
}

func reviewText(sel *goquery.Selection) string {
	for _, selector := range textSelectors {
		node := sel.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		if text := normalizeText(node.Text()); text != "" {
			return text
		}
	}
	return ""
}

// normalizeText collapses runs of spaces within lines and drops blank lines.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
