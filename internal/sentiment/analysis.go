package sentiment

import "strings"

// Overall sentiment labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelMixed    = "mixed"
)

// Analysis summarizes the sentiment of a set of reviews.
type Analysis struct {
	Title       string   `json:"title"`
	ExternalID  string   `json:"external_id,omitempty"`
	Overall     string   `json:"overall_sentiment"`
	Positive    int      `json:"positive_count"`
	Negative    int      `json:"negative_count"`
	Neutral     int      `json:"neutral_count"`
	Themes      []string `json:"themes"`
	Summary     string   `json:"summary"`
	ReviewCount int      `json:"review_count"`

	Success     bool   `json:"success"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
}

// Failed builds a success:false result.
func Failed(title, externalID, message, kind string) Analysis {
	return Analysis{
		Title:      title,
		ExternalID: externalID,
		Overall:    LabelNeutral,
		Themes:     []string{},
		Error:      message,
		ErrorKind:  kind,
	}
}

// labelFromCounts derives the overall label from per-review counts.
func labelFromCounts(positive, negative, neutral int) string {
	total := positive + negative + neutral
	switch {
	case total == 0:
		return LabelNeutral
	case positive > negative && positive*2 >= total:
		return LabelPositive
	case negative > positive && negative*2 >= total:
		return LabelNegative
	case positive > 0 && negative > 0:
		return LabelMixed
	default:
		return LabelNeutral
	}
}

func normalizeLabel(label string, positive, negative, neutral int) string {
	switch l := strings.ToLower(strings.TrimSpace(label)); l {
	case LabelPositive, LabelNegative, LabelNeutral, LabelMixed:
		return l
	default:
		return labelFromCounts(positive, negative, neutral)
	}
}
