// Package search ties the index store, fuzzy matching and the live scan
// fallback into one ranked-results pipeline. Every failure mode degrades
// the result set instead of surfacing an error to the caller.
package search

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MuthoniGathiithi/filehound/internal/config"
	"github.com/MuthoniGathiithi/filehound/internal/fuzzy"
	"github.com/MuthoniGathiithi/filehound/internal/log"
	"github.com/MuthoniGathiithi/filehound/internal/scan"
	"github.com/MuthoniGathiithi/filehound/internal/store"
)

const (
	// candidateLimit bounds how many rows each index query may contribute.
	candidateLimit = 500

	// contentBaseline is the floor score for a content-cache match.
	contentBaseline = 60

	// minCandidates and minConfidence drive escalation to the live scan.
	minCandidates = 10
	minConfidence = 60

	// scanLimit bounds the fallback walk.
	scanLimit = 1000

	defaultMaxResults = 200
)

// Result is one ranked match.
type Result struct {
	Path  string
	Score int
}

// Outcome is a search response with its degradation state: callers and
// tests can tell "nothing matched" apart from "the store was unreachable".
type Outcome struct {
	Results        []Result
	FallbackUsed   bool
	StoreDegraded  bool
	SkippedEntries int
}

type Options struct {
	MaxResults    int
	UseIndex      bool
	Roots         []string
	CaseSensitive bool
}

// Engine is the query orchestrator. Construct with New (or Open) and Close
// when done; instances are independent, there is no shared global state.
type Engine struct {
	store   *store.Store
	matcher fuzzy.Matcher
	scanner scan.Scanner
	now     func() time.Time
}

// New builds an Engine from explicit collaborators. st may be nil, in which
// case every search degrades to the live scan path.
func New(st *store.Store, matcher fuzzy.Matcher, scanner scan.Scanner) *Engine {
	if matcher == nil {
		matcher = fuzzy.Default()
	}
	if scanner == nil {
		scanner = scan.Walker{}
	}
	return &Engine{
		store:   st,
		matcher: matcher,
		scanner: scanner,
		now:     time.Now,
	}
}

// Open constructs an Engine against the configured store location. A store
// that cannot be opened is logged and left nil; search still works in
// scan-only mode.
func Open(cfg *config.Config) *Engine {
	st, err := store.Open(cfg.IndexDBPath(), cfg.ContentIndexPath())
	if err != nil {
		log.Warnf("index store unavailable, falling back to live scan only: %v", err)
		st = nil
	}
	return New(st, fuzzy.Default(), scan.Walker{})
}

// Store exposes the underlying store for collaborators (indexer, watcher).
// Nil when the store could not be opened.
func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// SmartSearch is the plain entry point: ranked (path, score) pairs,
// highest first.
func (e *Engine) SmartSearch(query string, maxResults int, useIndex bool, roots []string) []Result {
	return e.Search(query, Options{
		MaxResults: maxResults,
		UseIndex:   useIndex,
		Roots:      roots,
	}).Results
}

// Search runs the full pipeline: index candidates, fuzzy scoring, recency
// and presence boosts, escalation to a live scan when candidates are sparse
// or weak, final rank and truncation.
func (e *Engine) Search(query string, opts Options) *Outcome {
	out := &Outcome{}

	query = strings.TrimSpace(query)
	if query == "" {
		return out
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	// Max base score per path across match origins.
	base := make(map[string]int)

	if opts.UseIndex {
		if e.store == nil {
			out.StoreDegraded = true
		} else {
			e.gatherIndexCandidates(query, base, out)
		}
	}

	totals := e.applyBoosts(base)

	if shouldEscalate(totals) {
		out.FallbackUsed = true
		scanned := e.scanner.Scan(query, scan.Options{
			Roots:         opts.Roots,
			MaxResults:    scanLimit,
			CaseSensitive: opts.CaseSensitive,
		})
		out.SkippedEntries += scanned.Skipped

		for _, path := range scanned.Paths {
			score := e.matcher.Score(query, filepath.Base(path))
			if cur, ok := base[path]; !ok || score > cur {
				base[path] = score
			}
		}
		totals = e.applyBoosts(base)
	}

	out.Results = rankCandidates(totals, maxResults)
	return out
}

func (e *Engine) gatherIndexCandidates(query string, base map[string]int, out *Outcome) {
	nameHits, err := e.store.QueryByFilenameSubstring(query, candidateLimit)
	if err != nil {
		log.Debugf("filename query degraded: %v", err)
		out.StoreDegraded = true
	} else {
		for _, hit := range nameHits {
			score := e.matcher.Score(query, hit.Filename)
			if score > base[hit.Path] {
				base[hit.Path] = score
			}
		}
	}

	contentHits, err := e.store.QueryByContentSubstring(query, candidateLimit)
	if err != nil {
		log.Debugf("content query degraded: %v", err)
		out.StoreDegraded = true
	} else {
		for _, hit := range contentHits {
			score := e.matcher.Score(query, filepath.Base(hit.Path))
			if score < contentBaseline {
				score = contentBaseline
			}
			if score > base[hit.Path] {
				base[hit.Path] = score
			}
		}
	}
}

// applyBoosts folds the recency and index-presence boosts onto each base
// score. Boosts apply once per path regardless of how many origins matched.
func (e *Engine) applyBoosts(base map[string]int) map[string]int {
	totals := make(map[string]int, len(base))
	for path, score := range base {
		totals[path] = score + e.recencyBoost(path) + e.presenceBoost(path)
	}
	return totals
}

func (e *Engine) recencyBoost(path string) int {
	if e.store == nil {
		return 0
	}
	ts, found, err := e.store.MostRecentAccess(path)
	if err != nil || !found {
		return 0
	}

	age := e.now().Sub(ts)
	switch {
	case age < time.Hour:
		return 15
	case age < 24*time.Hour:
		return 10
	case age < 7*24*time.Hour:
		return 5
	default:
		return 0
	}
}

func (e *Engine) presenceBoost(path string) int {
	if e.store == nil {
		return 0
	}
	found, err := e.store.HasContent(path)
	if err != nil || !found {
		return 0
	}
	return 5
}

// shouldEscalate triggers the live scan when candidates are sparse or
// uniformly low-confidence. An empty candidate set always escalates.
func shouldEscalate(totals map[string]int) bool {
	if len(totals) < minCandidates {
		return true
	}
	for _, score := range totals {
		if score >= minConfidence {
			return false
		}
	}
	return true
}

// rankCandidates sorts by score descending; ties break by path ascending so
// equal-score orderings are deterministic.
func rankCandidates(totals map[string]int, maxResults int) []Result {
	results := make([]Result, 0, len(totals))
	for path, score := range totals {
		results = append(results, Result{Path: path, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// RecordFileAccess appends an access event for temporal ranking. kind
// defaults to "opened".
func (e *Engine) RecordFileAccess(path, kind string) error {
	if e.store == nil {
		return nil
	}
	if kind == "" {
		kind = "opened"
	}
	return e.store.AppendAccessEvent(path, kind, e.now(), "user_interaction")
}

// RootIndexer is the slice of the indexer the engine needs for the
// index-and-report entry point.
type RootIndexer interface {
	IndexRoots(roots []string, limit int) (int, error)
}

// IndexFilesForSearch runs a full index pass and reports the outcome as a
// status string.
func (e *Engine) IndexFilesForSearch(ix RootIndexer) string {
	count, err := ix.IndexRoots(nil, 0)
	if err != nil {
		return fmt.Sprintf("indexed %d files before an error: %v", count, err)
	}
	return fmt.Sprintf("indexed %d files for search", count)
}
