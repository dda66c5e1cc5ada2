// Package fuzzy provides the string-similarity capability used by the
// ranking engine. Two variants exist behind one interface: token-set
// similarity (preferred, robust to word reordering and partial overlaps)
// and a plain substring heuristic with lower guaranteed quality. The
// variant is chosen at construction time, not at use sites.
package fuzzy

import (
	"strings"

	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Matcher scores how well a candidate string matches a query, normalized
// to [0, 100].
type Matcher interface {
	Score(query, candidate string) int
	Name() string
}

// TokenSetMatcher scores with token-set ratio.
type TokenSetMatcher struct{}

func (TokenSetMatcher) Score(query, candidate string) int {
	if query == "" || candidate == "" {
		return 0
	}
	return fuzzywuzzy.TokenSetRatio(query, candidate)
}

func (TokenSetMatcher) Name() string { return "token_set" }

// SubstringMatcher is the degraded fallback: exact equality 100, query
// contained in candidate 85, candidate contained in query 80, else 0.
type SubstringMatcher struct{}

func (SubstringMatcher) Score(query, candidate string) int {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	switch {
	case q == "" || c == "":
		return 0
	case q == c:
		return 100
	case strings.Contains(c, q):
		return 85
	case strings.Contains(q, c):
		return 80
	default:
		return 0
	}
}

func (SubstringMatcher) Name() string { return "substring" }

// Default returns the preferred matcher.
func Default() Matcher {
	return TokenSetMatcher{}
}
