package intensity

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"marquee/internal/dataset"
)

const systemPrompt = `You are a film analyst. You rate how intense a movie feels across its runtime using the plot and audience reviews you are given. Answer in plain text using exactly the requested format.`

const responseFormat = `
Rate intensity (0-10) for each segment based on actual plot events and user reviews. Use this format:

Beginning: X/10
Description: What happens in the opening

First Half: X/10
Description: How the story develops

Interval: X/10
Description: Midpoint events

Second Half: X/10
Description: Rising action

Climax: X/10
Description: Final confrontation

Overall Intensity Arc: Summary

Peak Moments: Most intense scenes

Pacing Assessment: Overall pacing
`

// BuildPrompt renders the user prompt for one movie. At most maxReviews
// reviews are included, each cut to reviewChars runes.
func BuildPrompt(movie dataset.Movie, reviews []string, maxReviews, reviewChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze intensity for: %q (%s, %s, Rating: %s/10)\n\n",
		movie.Title,
		orDefault(movie.ReleaseDate, "Unknown"),
		orDefault(movie.Genres, "Unknown"),
		strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64),
	)
	fmt.Fprintf(&b, "Plot: %s\n", orDefault(movie.Overview, "No overview available"))

	if len(reviews) > 0 && maxReviews > 0 {
		fmt.Fprintf(&b, "\nUser Reviews (%d reviews from IMDb):\n---\n", len(reviews))
		for i, review := range reviews {
			if i >= maxReviews {
				break
			}
			fmt.Fprintf(&b, "Review %d: %s\n\n", i+1, truncate(review, reviewChars))
		}
		if extra := len(reviews) - maxReviews; extra > 0 {
			fmt.Fprintf(&b, "(and %d more reviews...)\n", extra)
		}
		b.WriteString("---\n")
	}

	b.WriteString(responseFormat)
	fmt.Fprintf(&b, "\nIMPORTANT: Rate based on %s's actual story and audience reactions in reviews. Different genres have different intensity patterns, so use the full 0-10 scale honestly.", movie.Title)
	return b.String()
}

func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
