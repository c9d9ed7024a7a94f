package intensity

import (
	"regexp"
	"strconv"
	"strings"

	"marquee/internal/services"
)

var scorePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{SegmentBeginning, regexp.MustCompile(`(?i)beginning[:\-\s*]+(\d+)\s*/\s*10`)},
	{SegmentFirstHalf, regexp.MustCompile(`(?i)first\s+half[:\-\s*]+(\d+)\s*/\s*10`)},
	{SegmentInterval, regexp.MustCompile(`(?i)interval[:\-\s*]+(\d+)\s*/\s*10`)},
	{SegmentSecondHalf, regexp.MustCompile(`(?i)second\s+half[:\-\s*]+(\d+)\s*/\s*10`)},
	{SegmentClimax, regexp.MustCompile(`(?i)climax[:\-\s*]+(\d+)\s*/\s*10`)},
}

// headerLabels maps the lower-case segment label used in responses to the
// segment name, in the order they are checked.
var headerLabels = []struct {
	label string
	name  string
}{
	{"beginning", SegmentBeginning},
	{"first half", SegmentFirstHalf},
	{"interval", SegmentInterval},
	{"second half", SegmentSecondHalf},
	{"climax", SegmentClimax},
}

// Parse extracts segment scores, descriptions, and the summary fields from a
// free-text response. Scores are clamped to 0-10. A response without any
// recognizable score is a services.ErrParseFailure.
func Parse(text string) (Analysis, error) {
	var out Analysis
	out.FullAnalysis = strings.TrimSpace(text)
	if out.FullAnalysis == "" {
		return out, services.Wrap(services.ErrParseFailure, "intensity", "parse", "empty response", nil)
	}

	segments := make(map[string]*Segment, 5)
	for _, named := range out.Ratings.Segments() {
		segments[named.Name] = named.Segment
	}

	found := 0
	for _, pattern := range scorePatterns {
		match := pattern.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		score, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		segments[pattern.name].Score = clampScore(score)
		found++
	}
	if found == 0 {
		return out, services.Wrap(services.ErrParseFailure, "intensity", "parse", "no segment scores in response", nil)
	}

	current := ""
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}
		label, value := splitLabel(clean)
		lowerLine := strings.ToLower(clean)

		if label == "description" {
			if current != "" {
				segments[current].Description = value
				current = ""
			}
			continue
		}
		if name := segmentHeader(lowerLine); name != "" {
			current = name
			continue
		}
		switch {
		case strings.Contains(label, "overall") && strings.Contains(label, "arc"):
			out.OverallArc = value
		case strings.Contains(label, "peak moment"):
			out.PeakMoments = value
		case strings.Contains(label, "pacing"):
			out.PacingAssessment = value
		}
	}
	return out, nil
}

func segmentHeader(lowerLine string) string {
	if !strings.Contains(lowerLine, "/10") {
		return ""
	}
	for _, header := range headerLabels {
		if strings.Contains(lowerLine, header.label) {
			return header.name
		}
	}
	return ""
}

// splitLabel splits "**Label:** value" into a lower-case label and value.
func splitLabel(line string) (string, string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", ""
	}
	label := strings.ToLower(strings.Trim(line[:idx], " *#-_"))
	value := strings.TrimSpace(strings.Trim(strings.TrimSpace(line[idx+1:]), "*"))
	return label, strings.TrimSpace(value)
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 10:
		return 10
	default:
		return score
	}
}
