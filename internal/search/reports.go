package search

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Report entry points: human-readable answers to "find my lost file",
// "what did I work on <date>" and "which file contains <text>". These
// layer the same store signals as Search but score additively per layer,
// since each layer is an independent piece of evidence.

const (
	lostFileFilenameScore = 10
	lostFileContentScore  = 8
	lostFileTemporalScore = 7
	lostFileContextScore  = 6

	lostFileMaxResults = 15
	byDateMaxResults   = 20
	contentMaxResults  = 10
)

var reportStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "was": true,
	"were": true, "is": true, "are": true, "where": true, "that": true,
	"file": true, "document": true,
}

var fileTypeWords = []string{
	"excel", "word", "pdf", "powerpoint", "image", "photo", "video", "audio",
}

type lostFileCandidate struct {
	score      int
	matchTypes []string
	snippet    string
}

// FindLostFile searches every signal layer for files matching a free-form
// description and formats a ranked report.
func (e *Engine) FindLostFile(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return "No files found matching your description. Try different keywords."
	}

	terms := extractSearchTerms(description)
	candidates := make(map[string]*lostFileCandidate)

	add := func(path, matchType string, score int, snippet string) {
		if !pathExists(path) {
			return
		}
		c, ok := candidates[path]
		if !ok {
			c = &lostFileCandidate{}
			candidates[path] = c
		}
		c.score += score
		c.matchTypes = append(c.matchTypes, matchType)
		if c.snippet == "" {
			c.snippet = snippet
		}
	}

	if e.store != nil {
		for _, term := range terms {
			if hits, err := e.store.QueryByFilenameSubstring(term, candidateLimit); err == nil {
				for _, hit := range hits {
					add(hit.Path, "filename", lostFileFilenameScore, "")
				}
			}
			if hits, err := e.store.QueryByContentSubstring(term, candidateLimit); err == nil {
				for _, hit := range hits {
					add(hit.Path, "content", lostFileContentScore, extractSnippet(hit.Content, []string{term}))
				}
			}
		}

		for _, hit := range e.temporalMatches(description) {
			add(hit, "temporal", lostFileTemporalScore, "")
		}

		for _, hit := range e.contextMatches(terms) {
			add(hit, "recent activity", lostFileContextScore, "")
		}
	} else {
		// Store unavailable: the live scan is the only signal left.
		for _, res := range e.SmartSearch(description, lostFileMaxResults, false, nil) {
			add(res.Path, "name scan", res.Score, "")
		}
	}

	if len(candidates) == 0 {
		return "No files found matching your description. Try different keywords or check if the file exists."
	}

	return formatLostFileReport(description, candidates)
}

// temporalMatches maps time phrases in the description to paths accessed in
// the implied window.
func (e *Engine) temporalMatches(description string) []string {
	desc := strings.ToLower(description)
	now := e.now()

	windows := []struct {
		phrase  string
		daysAgo float64
	}{
		{"this morning", 0.5},
		{"yesterday", 1},
		{"last week", 7},
		{"last month", 30},
	}

	var paths []string
	for _, w := range windows {
		if !strings.Contains(desc, w.phrase) {
			continue
		}
		start := now.Add(-time.Duration(w.daysAgo * 24 * float64(time.Hour)))
		hits, err := e.store.QueryAccessEventsInRange(start, start.Add(24*time.Hour))
		if err != nil {
			continue
		}
		for _, hit := range hits {
			paths = append(paths, hit.Path)
		}
	}
	return paths
}

// contextMatches checks the last week of access history for paths whose
// name or location mentions a search term.
func (e *Engine) contextMatches(terms []string) []string {
	now := e.now()
	hits, err := e.store.QueryAccessEventsInRange(now.AddDate(0, 0, -7), now)
	if err != nil {
		return nil
	}

	var paths []string
	for _, hit := range hits {
		lower := strings.ToLower(hit.Path)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				paths = append(paths, hit.Path)
				break
			}
		}
	}
	return paths
}

func formatLostFileReport(query string, candidates map[string]*lostFileCandidate) string {
	type entry struct {
		path string
		c    *lostFileCandidate
	}
	entries := make([]entry, 0, len(candidates))
	for path, c := range candidates {
		entries = append(entries, entry{path, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].c.score != entries[j].c.score {
			return entries[i].c.score > entries[j].c.score
		}
		return entries[i].path < entries[j].path
	})
	if len(entries) > lostFileMaxResults {
		entries = entries[:lostFileMaxResults]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d files matching %q:\n\n", len(entries), query)

	for i, ent := range entries {
		fmt.Fprintf(&sb, "%d. %s (score: %d)\n", i+1, filepath.Base(ent.path), ent.c.score)
		fmt.Fprintf(&sb, "   in %s\n", filepath.Dir(ent.path))

		if info, err := os.Stat(ent.path); err == nil {
			fmt.Fprintf(&sb, "   %.1f MB, modified %s\n",
				float64(info.Size())/(1024*1024), info.ModTime().Format("2006-01-02 15:04"))
		}

		fmt.Fprintf(&sb, "   matched: %s\n", strings.Join(dedupeStrings(ent.c.matchTypes), ", "))
		if ent.c.snippet != "" {
			fmt.Fprintf(&sb, "   %q\n", ent.c.snippet)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Tip: use more specific keywords for better results")
	return sb.String()
}

// FindFilesByDate reports distinct files with access activity on the day a
// natural-language date description names.
func (e *Engine) FindFilesByDate(dateDescription string) string {
	target, ok := parseDateDescription(dateDescription, e.now())
	if !ok {
		return "Could not understand the date. Try: 'last tuesday', 'yesterday', '2023-12-15'"
	}

	if e.store == nil {
		return "No access history available: index store is unreachable"
	}

	dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	hits, err := e.store.QueryAccessEventsInRange(dayStart, dayEnd)
	if err != nil {
		return "No access history available: " + err.Error()
	}
	if len(hits) == 0 {
		return "No files found for " + dayStart.Format("Monday, January 2, 2006")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Files you worked on %s:\n\n", dayStart.Format("Monday, January 2, 2006"))

	shown := 0
	for _, hit := range hits {
		if shown >= byDateMaxResults {
			break
		}
		if !pathExists(hit.Path) {
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", filepath.Base(hit.Path))
		fmt.Fprintf(&sb, "  in %s\n", filepath.Dir(hit.Path))
		fmt.Fprintf(&sb, "  %s at %s\n\n", hit.Kind, hit.Timestamp.Format("15:04"))
		shown++
	}

	if shown == 0 {
		return "Files found in history but none still exist on disk"
	}
	return sb.String()
}

// FindFileWithContent reports files whose cached content mentions the given
// terms, with a snippet around the first hit.
func (e *Engine) FindFileWithContent(contentDescription string) string {
	terms := strings.Fields(strings.ToLower(strings.TrimSpace(contentDescription)))
	if len(terms) == 0 {
		return fmt.Sprintf("No files found containing %q", contentDescription)
	}

	if e.store == nil {
		return "Content search unavailable: index store is unreachable"
	}

	content := make(map[string]string)
	var order []string
	for _, term := range terms {
		hits, err := e.store.QueryByContentSubstring(term, candidateLimit)
		if err != nil {
			continue
		}
		for _, hit := range hits {
			if _, seen := content[hit.Path]; seen || !pathExists(hit.Path) {
				continue
			}
			content[hit.Path] = hit.Content
			order = append(order, hit.Path)
		}
	}

	if len(order) == 0 {
		return fmt.Sprintf("No files found containing %q", contentDescription)
	}

	if len(order) > contentMaxResults {
		order = order[:contentMaxResults]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Files containing %q:\n\n", contentDescription)
	for _, path := range order {
		fmt.Fprintf(&sb, "- %s\n", filepath.Base(path))
		fmt.Fprintf(&sb, "  in %s\n", filepath.Dir(path))
		fmt.Fprintf(&sb, "  ...%s...\n\n", extractSnippet(content[path], terms))
	}
	return sb.String()
}

// extractSearchTerms pulls meaningful words out of a free-form description:
// stop-words and very short words dropped, known file-type words kept.
func extractSearchTerms(description string) []string {
	lower := strings.ToLower(description)

	var terms []string
	seen := make(map[string]bool)
	for _, word := range wordPattern.FindAllString(lower, -1) {
		if len(word) <= 2 || reportStopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
	}

	for _, ft := range fileTypeWords {
		if strings.Contains(lower, ft) && !seen[ft] {
			seen[ft] = true
			terms = append(terms, ft)
		}
	}

	return terms
}

var wordPattern = regexp.MustCompile(`\w+`)

var (
	isoDatePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDatePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	dashDatePattern  = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
)

// parseDateDescription turns a natural-language date phrase into a day.
func parseDateDescription(description string, now time.Time) (time.Time, bool) {
	desc := strings.ToLower(description)

	switch {
	case strings.Contains(desc, "today"):
		return now, true
	case strings.Contains(desc, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(desc, "last tuesday"):
		daysBack := (int(now.Weekday()) - int(time.Tuesday) + 7) % 7
		if daysBack == 0 {
			daysBack = 7
		}
		return now.AddDate(0, 0, -daysBack), true
	case strings.Contains(desc, "last week"):
		return now.AddDate(0, 0, -7), true
	case strings.Contains(desc, "last month"):
		return now.AddDate(0, 0, -30), true
	}

	if m := isoDatePattern.FindString(desc); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t, true
		}
	}
	if m := slashDatePattern.FindString(desc); m != "" {
		if t, err := time.Parse("01/02/2006", m); err == nil {
			return t, true
		}
	}
	if m := dashDatePattern.FindString(desc); m != "" {
		if t, err := time.Parse("01-02-2006", m); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// extractSnippet returns a window of content around the earliest occurrence
// of any term, capped at 100 characters.
func extractSnippet(content string, terms []string) string {
	if content == "" || len(terms) == 0 {
		return "no preview available"
	}

	lower := strings.ToLower(content)
	bestPos := -1
	for _, term := range terms {
		pos := strings.Index(lower, strings.ToLower(term))
		if pos >= 0 && (bestPos < 0 || pos < bestPos) {
			bestPos = pos
		}
	}

	if bestPos < 0 {
		return truncateSnippet(content, 100)
	}

	start := bestPos - 50
	if start < 0 {
		start = 0
	}
	end := bestPos + 100
	if end > len(content) {
		end = len(content)
	}

	return truncateSnippet(strings.TrimSpace(content[start:end]), 100)
}

func truncateSnippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			unique = append(unique, item)
		}
	}
	return unique
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
