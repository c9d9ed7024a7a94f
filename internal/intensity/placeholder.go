package intensity

import (
	"fmt"
	"strings"

	"marquee/internal/dataset"
)

// placeholderScores picks plausible scores from the genre string when no
// model is configured.
func placeholderScores(genres string) [5]int {
	g := strings.ToLower(genres)
	switch {
	case strings.Contains(g, "action"), strings.Contains(g, "thriller"):
		return [5]int{6, 7, 8, 9, 10}
	case strings.Contains(g, "drama"):
		return [5]int{5, 6, 7, 8, 7}
	case strings.Contains(g, "comedy"):
		return [5]int{6, 6, 5, 7, 8}
	case strings.Contains(g, "horror"):
		return [5]int{7, 6, 5, 8, 9}
	default:
		return [5]int{6, 7, 7, 8, 9}
	}
}

// PlaceholderText renders a deterministic response in the model's format.
func PlaceholderText(movie dataset.Movie) string {
	s := placeholderScores(movie.Genres)
	title := orDefault(movie.Title, "Unknown")
	return fmt.Sprintf(`Beginning: %d/10
Description: The opening establishes the setting and introduces key characters

First Half: %d/10
Description: Story develops with rising tension and character development

Interval: %d/10
Description: Midpoint brings new revelations and plot twists

Second Half: %d/10
Description: Escalating conflicts lead toward the climax

Climax: %d/10
Description: Final confrontation delivers maximum intensity

Overall Intensity Arc: %s builds tension progressively across its runtime

Peak Moments: Key action sequences and dramatic reveals

Pacing Assessment: Well-balanced progression with effective buildup`, s[0], s[1], s[2], s[3], s[4], title)
}
