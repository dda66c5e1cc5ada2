// Package scan is the live filesystem fallback: a recursive walk collecting
// filename substring matches when the index has too few candidates. Results
// reflect walk order only; ranking is the caller's job.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/MuthoniGathiithi/filehound/internal/log"
)

type Options struct {
	Roots         []string
	MaxResults    int
	CaseSensitive bool
}

// Result carries the collected paths plus a count of entries that were
// skipped due to errors, so degraded walks are observable.
type Result struct {
	Paths   []string
	Skipped int
}

// Scanner is the live-scan capability consumed by the search engine.
type Scanner interface {
	Scan(query string, opts Options) Result
}

// Walker is the real filesystem Scanner.
type Walker struct{}

// Scan walks each root and collects file and directory basenames containing
// query. Hidden directories and volume-shadow style "$" directories are
// skipped, symlinks are not followed, and traversal stops as soon as
// MaxResults matches are collected.
func (Walker) Scan(query string, opts Options) Result {
	var res Result

	if query == "" {
		return res
	}

	roots := opts.Roots
	if len(roots) == 0 {
		roots = DefaultRoots()
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 500
	}

	needle := query
	if !opts.CaseSensitive {
		needle = strings.ToLower(query)
	}

	for _, root := range roots {
		if len(res.Paths) >= maxResults {
			break
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				res.Skipped++
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			name := d.Name()

			if d.IsDir() && path != root {
				if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "$") {
					return filepath.SkipDir
				}
			}

			compare := name
			if !opts.CaseSensitive {
				compare = strings.ToLower(name)
			}

			if path != root && strings.Contains(compare, needle) {
				res.Paths = append(res.Paths, path)
				if len(res.Paths) >= maxResults {
					return filepath.SkipAll
				}
			}

			return nil
		})
		if err != nil {
			log.Debugf("scan of %s ended early: %v", root, err)
		}
	}

	return res
}

// DefaultRoots returns a platform-appropriate set of scan roots: each
// present drive on Windows, the home directory plus / elsewhere.
func DefaultRoots() []string {
	if runtime.GOOS == "windows" {
		var drives []string
		for letter := 'A'; letter <= 'Z'; letter++ {
			drive := string(letter) + `:\`
			if _, err := os.Stat(drive); err == nil {
				drives = append(drives, drive)
			}
		}
		if len(drives) == 0 {
			return []string{`C:\`}
		}
		return drives
	}

	roots := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, home)
	}
	roots = append(roots, "/")
	return roots
}
