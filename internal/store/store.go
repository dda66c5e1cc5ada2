package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/MuthoniGathiithi/filehound/internal/errdefs"
	"github.com/MuthoniGathiithi/filehound/internal/log"
	bolt "go.etcd.io/bbolt"
)

var (
	filesBucket   = []byte("files")
	accessBucket  = []byte("access")
	contentBucket = []byte("content")
)

// Store is the durable index store: a bbolt database for file records,
// the append-only access log and the content cache, plus a bleve index
// as the searchable projection of filenames, content and keywords.
//
// bbolt serializes writes and supports concurrent readers, so a periodic
// indexer and in-flight queries need no extra coordination here.
type Store struct {
	db  *bolt.DB
	idx *contentIndex
	mu  sync.RWMutex
}

// Open opens or creates the store files under the given paths. The caller
// owns the returned Store and must Close it.
func Open(dbPath, indexPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreUnavailable, "failed to create data dir", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreUnavailable, "failed to open meta db", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{filesBucket, accessBucket, contentBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreCorrupted, "failed to create buckets", err)
	}

	idx, err := openContentIndex(indexPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, idx: idx}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idxErr := s.idx.Close()
	dbErr := s.db.Close()
	if dbErr != nil {
		return dbErr
	}
	return idxErr
}

// UpsertFileRecord inserts or replaces the record for rec.Path and refreshes
// the searchable projection. Idempotent.
func (s *Store) UpsertFileRecord(rec *FileRecord) error {
	if rec.Filename == "" {
		rec.Filename = filepath.Base(rec.Path)
	}
	if rec.FolderPath == "" {
		rec.FolderPath = filepath.Dir(rec.Path)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(filesBucket).Put([]byte(rec.Path), data)
	})
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeStoreUnavailable, rec.Path, err)
	}

	return s.reindexDoc(rec.Path)
}

func (s *Store) GetFileRecord(path string) (*FileRecord, bool, error) {
	var rec *FileRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(filesBucket).Get([]byte(path))
		if v == nil {
			return nil
		}
		rec = &FileRecord{}
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, false, err
	}
	return rec, rec != nil, nil
}

// Delete removes the file record, content cache entry and search document
// for a path. Access events are append-only and stay.
func (s *Store) Delete(path string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(filesBucket).Delete([]byte(path)); err != nil {
			return err
		}
		return tx.Bucket(contentBucket).Delete([]byte(path))
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Delete(path)
}

func (s *Store) FileCount() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(filesBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// UpsertContentCache replaces the cached text, keywords and tags for a path
// and refreshes the searchable projection.
func (s *Store) UpsertContentCache(path, text string, keywords, tags []string) error {
	entry := ContentCacheEntry{
		Path:      path,
		Content:   text,
		Keywords:  keywords,
		Tags:      tags,
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(contentBucket).Put([]byte(path), data)
	})
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeStoreUnavailable, path, err)
	}

	return s.reindexDoc(path)
}

func (s *Store) getContentEntry(path string) (*ContentCacheEntry, bool, error) {
	var entry *ContentCacheEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(contentBucket).Get([]byte(path))
		if v == nil {
			return nil
		}
		entry = &ContentCacheEntry{}
		return json.Unmarshal(v, entry)
	})
	if err != nil {
		return nil, false, err
	}
	return entry, entry != nil, nil
}

// HasContent reports whether a content cache entry exists for the path.
func (s *Store) HasContent(path string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(contentBucket).Get([]byte(path)) != nil
		return nil
	})
	return found, err
}

// reindexDoc rebuilds the bleve document for a path from whatever the meta
// buckets currently hold.
func (s *Store) reindexDoc(path string) error {
	rec, haveRec, err := s.GetFileRecord(path)
	if err != nil {
		return err
	}

	doc := &searchDoc{}
	if haveRec {
		doc.Filename = rec.Filename
	} else {
		doc.Filename = filepath.Base(path)
	}

	entry, haveContent, err := s.getContentEntry(path)
	if err != nil {
		return err
	}
	if haveContent {
		doc.Content = entry.Content
		doc.Keywords = joinLower(entry.Keywords)
		doc.Tags = joinLower(entry.Tags)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idx.Index(path, doc); err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeIndexingFailed, path, err)
	}
	return nil
}

// QueryByFilenameSubstring returns up to limit files whose basename contains
// pattern, case-insensitively.
func (s *Store) QueryByFilenameSubstring(pattern string, limit int) ([]NameHit, error) {
	s.mu.RLock()
	paths, err := s.idx.searchFilename(pattern, limit)
	s.mu.RUnlock()
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeSearchFailed, pattern, err)
	}

	hits := make([]NameHit, 0, len(paths))
	for _, p := range paths {
		hits = append(hits, NameHit{Path: p, Filename: filepath.Base(p)})
	}
	return hits, nil
}

// QueryByContentSubstring returns up to limit files whose cached content,
// keywords or tags match pattern, with the cached text for snippets.
func (s *Store) QueryByContentSubstring(pattern string, limit int) ([]ContentHit, error) {
	s.mu.RLock()
	paths, err := s.idx.searchContent(pattern, limit)
	s.mu.RUnlock()
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeSearchFailed, pattern, err)
	}

	hits := make([]ContentHit, 0, len(paths))
	for _, p := range paths {
		entry, found, err := s.getContentEntry(p)
		if err != nil {
			return nil, err
		}
		hit := ContentHit{Path: p}
		if found {
			hit.Content = entry.Content
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// AppendAccessEvent appends one event to the access log. Pure insert;
// repeated events for the same path are distinct rows.
func (s *Store) AppendAccessEvent(path, kind string, ts time.Time, context string) error {
	event := AccessEvent{Kind: kind, Timestamp: ts, Context: context}
	data, err := json.Marshal(&event)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(accessBucket).Put(accessKey(path, ts), data)
	})
}

// MostRecentAccess returns the latest access timestamp recorded for a path.
func (s *Store) MostRecentAccess(path string) (time.Time, bool, error) {
	var latest time.Time
	var found bool

	prefix := append([]byte(path), 0x00)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(accessBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var event AccessEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			// Keys sort by timestamp within a path, so the last one wins.
			latest = event.Timestamp
			found = true
		}
		return nil
	})
	return latest, found, err
}

// QueryAccessEventsInRange returns distinct paths with an access event in
// [start, end], most recently accessed first.
func (s *Store) QueryAccessEventsInRange(start, end time.Time) ([]AccessHit, error) {
	byPath := make(map[string]AccessHit)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(accessBucket).ForEach(func(k, v []byte) error {
			sep := bytes.IndexByte(k, 0x00)
			if sep < 0 {
				return nil
			}
			path := string(k[:sep])

			var event AccessEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return nil
			}
			if event.Timestamp.Before(start) || event.Timestamp.After(end) {
				return nil
			}
			if prev, ok := byPath[path]; !ok || event.Timestamp.After(prev.Timestamp) {
				byPath[path] = AccessHit{Path: path, Kind: event.Kind, Timestamp: event.Timestamp}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	hits := make([]AccessHit, 0, len(byPath))
	for _, h := range byPath {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].Timestamp.Equal(hits[j].Timestamp) {
			return hits[i].Timestamp.After(hits[j].Timestamp)
		}
		return hits[i].Path < hits[j].Path
	})
	return hits, nil
}

// PruneAccessEvents deletes events older than the cutoff and returns how
// many were removed. No retention window is applied automatically; this
// exists for operators who want to bound log growth.
func (s *Store) PruneAccessEvents(before time.Time) (int, error) {
	pruned := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(accessBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var event AccessEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			if event.Timestamp.Before(before) {
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	if err != nil {
		log.Warnf("access log prune failed: %v", err)
		return pruned, err
	}
	return pruned, nil
}

// accessKey orders events by path then timestamp so prefix scans walk one
// path's history in time order.
func accessKey(path string, ts time.Time) []byte {
	key := make([]byte, 0, len(path)+9)
	key = append(key, []byte(path)...)
	key = append(key, 0x00)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ts.UnixNano()))
	return append(key, buf[:]...)
}
