package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// CleanText trims text scraped out of html and collapses the whitespace
// inside of it to single spaces.
func CleanText(text string) string {
	text = removeNonPrintable(text)
	text = strings.TrimSpace(text)
	return whitespaceRegex.ReplaceAllString(text, " ")
}

// NormalizeColumn turns a table header into a column key,
// "Bike  Model " -> "bike_model".
func NormalizeColumn(name string) string {
	name = strings.ToLower(CleanText(name))
	return strings.ReplaceAll(name, " ", "_")
}

// Unique returns the non-empty values of `values` with duplicates removed,
// keeping the order in which they were first seen.
func Unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
