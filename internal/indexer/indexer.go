package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MuthoniGathiithi/filehound/internal/config"
	"github.com/MuthoniGathiithi/filehound/internal/errdefs"
	"github.com/MuthoniGathiithi/filehound/internal/log"
	"github.com/MuthoniGathiithi/filehound/internal/store"
	"github.com/pkg/xattr"
)

const tagsAttr = "user.xdg.tags"

// Indexer populates the store from the live filesystem.
type Indexer struct {
	store  *store.Store
	config *config.Config
}

func New(st *store.Store, cfg *config.Config) *Indexer {
	return &Indexer{store: st, config: cfg}
}

// IndexRoots walks each root and indexes eligible regular files, stopping
// after limit files. Per-file errors are skipped; the walk continues.
// Returns the number of files indexed.
func (ix *Indexer) IndexRoots(roots []string, limit int) (int, error) {
	start := time.Now()

	if len(roots) == 0 {
		roots = ix.config.Roots
	}
	if limit <= 0 {
		limit = ix.config.FileCountLimit
	}

	var indexed, skipped, dispatched int64
	semaphore := make(chan struct{}, ix.config.WorkerCount)
	var wg sync.WaitGroup

	for _, root := range roots {
		log.Infof("indexing %s", root)

		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				atomic.AddInt64(&skipped, 1)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && !ix.config.ShouldIndexDir(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !ix.config.ShouldIndexFile(path) {
				return nil
			}

			if atomic.AddInt64(&dispatched, 1) > int64(limit) {
				return filepath.SkipAll
			}

			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				if err := ix.IndexFile(p); err != nil {
					log.Debugf("failed to index %s: %v", p, err)
					atomic.AddInt64(&skipped, 1)
					return
				}
				atomic.AddInt64(&indexed, 1)
			}(path)

			return nil
		})

		if err != nil {
			wg.Wait()
			return int(atomic.LoadInt64(&indexed)), errdefs.NewCustomError(errdefs.ErrTypeIndexingFailed, "walk failed", err)
		}
	}

	wg.Wait()

	log.Infof("index run complete: %d files indexed, %d skipped, took %s",
		indexed, skipped, time.Since(start))

	return int(indexed), nil
}

// IndexFile indexes one file: metadata, streamed hash, content preview and
// keywords for allow-listed text files, xattr tags when present. Files over
// the size ceiling are ignored.
func (ix *Indexer) IndexFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsPermission(err) {
			return errdefs.NewCustomError(errdefs.ErrTypeFileAccessDenied, path, err)
		}
		return err
	}

	if info.IsDir() {
		return nil
	}

	if info.Size() > ix.config.MaxFileBytes {
		return nil
	}

	now := time.Now()

	// Unchanged file: refresh the index timestamp and keep the stored
	// hash and preview rather than re-reading content.
	if prev, found, err := ix.store.GetFileRecord(path); err == nil && found &&
		prev.LastModified.Equal(info.ModTime()) && prev.Size == info.Size() {
		prev.IndexedAt = now
		return ix.store.UpsertFileRecord(prev)
	}

	hash, err := hashFile(path)
	if err != nil {
		hash = "unknown"
	}

	rec := &store.FileRecord{
		Path:         path,
		Filename:     filepath.Base(path),
		Size:         info.Size(),
		Type:         contentType(path),
		LastModified: info.ModTime(),
		FolderPath:   filepath.Dir(path),
		Hash:         hash,
		IndexedAt:    now,
	}

	var content string
	if ix.config.IsTextFile(path) {
		content = ix.readPreview(path)
	}

	if content != "" {
		rec.ContentPreview = truncate(content, ix.config.StoredPreview)
	} else {
		// Non-text files stay searchable by name and location only.
		rec.ContentPreview = truncate(rec.Filename+" "+path, ix.config.StoredPreview)
	}

	if err := ix.store.UpsertFileRecord(rec); err != nil {
		return err
	}

	if content != "" {
		keywords := ExtractKeywords(content, ix.config.MaxKeywords)
		tags := readTags(path)
		if err := ix.store.UpsertContentCache(path, content, keywords, tags); err != nil {
			return err
		}
	}

	log.Debugf("indexed %s", path)
	return nil
}

func (ix *Indexer) readPreview(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	limited := io.LimitReader(f, int64(ix.config.PreviewChars))
	data, err := io.ReadAll(limited)
	if err != nil {
		return ""
	}
	return string(data)
}

// hashFile digests the file in fixed-size chunks so large files never load
// fully into memory.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func contentType(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

// readTags picks up user-applied xattr tags; missing attribute or an
// unsupported filesystem just means no tags.
func readTags(path string) []string {
	data, err := xattr.Get(path, tagsAttr)
	if err != nil || len(data) == 0 {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(string(data), ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
