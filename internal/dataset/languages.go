package dataset

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a selectable original-language option.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LanguageOptions returns display names for the configured language codes,
// in the order given.
func LanguageOptions(codes []string) []Language {
	out := make([]Language, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		out = append(out, Language{Code: code, Name: languageName(code)})
	}
	return out
}

// LanguageCode maps a code ("hi") or English name ("Hindi") onto one of the
// configured codes.
func LanguageCode(input string, codes []string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, opt := range LanguageOptions(codes) {
		if strings.EqualFold(opt.Code, input) || strings.EqualFold(opt.Name, input) {
			return opt.Code, true
		}
	}
	return "", false
}

func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
