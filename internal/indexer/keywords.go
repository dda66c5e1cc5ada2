package indexer

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "was": true,
	"were": true, "is": true, "are": true, "this": true, "that": true,
	"from": true, "have": true, "has": true,
}

// ExtractKeywords derives a bounded keyword set from text: lowercase word
// tokens, stop-words and tokens shorter than 4 characters dropped, first
// occurrence order preserved.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = 50
	}

	seen := make(map[string]bool)
	var keywords []string

	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 3 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) >= max {
			break
		}
	}

	return keywords
}
