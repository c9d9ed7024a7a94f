package sentiment

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

var positiveWords = wordSet(
	"amazing", "awesome", "beautiful", "best", "brilliant", "captivating", "classic",
	"compelling", "enjoy", "enjoyable", "enjoyed", "excellent", "fantastic", "favorite",
	"fun", "gem", "good", "great", "gripping", "incredible", "love", "loved", "masterpiece",
	"memorable", "moving", "must", "outstanding", "perfect", "powerful", "recommend",
	"riveting", "stunning", "superb", "thrilling", "touching", "wonderful",
)

var negativeWords = wordSet(
	"awful", "bad", "boring", "confusing", "disappointed", "disappointing", "dull",
	"forgettable", "hate", "hated", "horrible", "lame", "mediocre", "mess", "overrated",
	"pointless", "poor", "predictable", "slow", "stupid", "terrible", "tedious", "waste",
	"weak", "worst",
)

var negators = wordSet("not", "no", "never", "isn't", "wasn't", "don't", "didn't", "hardly")

// themeKeywords maps a theme to words that signal it.
var themeKeywords = map[string][]string{
	"acting":     {"acting", "actor", "actors", "actress", "performance", "performances", "cast"},
	"story":      {"story", "plot", "storyline", "narrative", "script", "writing"},
	"visuals":    {"visual", "visuals", "cinematography", "effects", "cgi", "shot", "shots"},
	"music":      {"music", "score", "soundtrack", "songs", "song"},
	"pacing":     {"pacing", "pace", "slow", "long", "runtime", "length"},
	"direction":  {"director", "direction", "directed"},
	"ending":     {"ending", "climax", "finale"},
	"characters": {"character", "characters", "villain", "hero", "protagonist"},
	"emotion":    {"emotional", "emotion", "tears", "cry", "heart"},
	"action":     {"action", "fight", "fights", "chase", "stunts"},
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// scoreReview returns the net lexicon polarity of one review.
func scoreReview(text string) int {
	tokens := tokenize(text)
	score := 0
	for i, tok := range tokens {
		polarity := 0
		if _, ok := positiveWords[tok]; ok {
			polarity = 1
		} else if _, ok := negativeWords[tok]; ok {
			polarity = -1
		}
		if polarity == 0 {
			continue
		}
		if i > 0 {
			if _, ok := negators[tokens[i-1]]; ok {
				polarity = -polarity
			}
		}
		score += polarity
	}
	return score
}

// LexiconSummary classifies reviews with a fixed word list. It is used when
// no language model is configured.
func LexiconSummary(title string, reviews []string) Analysis {
	out := Analysis{Title: title, ReviewCount: len(reviews), Success: true, Placeholder: true}
	mentions := make(map[string]int)
	for _, review := range reviews {
		switch score := scoreReview(review); {
		case score > 0:
			out.Positive++
		case score < 0:
			out.Negative++
		default:
			out.Neutral++
		}
		seen := make(map[string]bool)
		for _, tok := range tokenize(review) {
			for theme, words := range themeKeywords {
				if seen[theme] {
					continue
				}
				for _, w := range words {
					if tok == w {
						seen[theme] = true
						mentions[theme]++
						break
					}
				}
			}
		}
	}
	out.Overall = labelFromCounts(out.Positive, out.Negative, out.Neutral)
	out.Themes = topThemes(mentions, 3)
	out.Summary = lexiconSummaryText(out)
	return out
}

func topThemes(mentions map[string]int, limit int) []string {
	themes := make([]string, 0, len(mentions))
	for theme := range mentions {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool {
		if mentions[themes[i]] != mentions[themes[j]] {
			return mentions[themes[i]] > mentions[themes[j]]
		}
		return themes[i] < themes[j]
	})
	if len(themes) > limit {
		themes = themes[:limit]
	}
	return themes
}

func lexiconSummaryText(a Analysis) string {
	if a.ReviewCount == 0 {
		return "No reviews were available to summarize."
	}
	text := fmt.Sprintf("Of %d reviews, %d read as positive, %d as negative and %d as neutral; overall sentiment is %s.",
		a.ReviewCount, a.Positive, a.Negative, a.Neutral, a.Overall)
	if len(a.Themes) > 0 {
		text += " Reviewers mostly discuss " + strings.Join(a.Themes, ", ") + "."
	}
	return text
}
