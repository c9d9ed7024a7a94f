package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Missing or malformed cells become zero values instead of errors.

func cleanCell(value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "nan", "null", "none", "-", "n/a":
		return ""
	}
	return value
}

func parseFloat(value string) float64 {
	value = strings.ReplaceAll(cleanCell(value), ",", "")
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseInt accepts "1,234", "1234.0", and blank cells.
func parseInt(value string) int64 {
	value = strings.ReplaceAll(cleanCell(value), ",", "")
	if value == "" {
		return 0
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return int64(parseFloat(value))
}

// mapLanguage maps free-text language labels to ISO 639-1 codes.
func mapLanguage(value string) string {
	s := strings.ToLower(cleanCell(value))
	switch {
	case s == "":
		return "unknown"
	case strings.Contains(s, "hindi"), strings.Contains(s, "bollywood"):
		return "hi"
	case strings.Contains(s, "english"):
		return "en"
	default:
		return "unknown"
	}
}
