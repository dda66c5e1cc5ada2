package store

import "time"

// FileRecord is the indexed metadata for one filesystem path. At most one
// record exists per path; upserts replace the prior record.
type FileRecord struct {
	Path           string    `json:"path"`
	Filename       string    `json:"filename"`
	Size           int64     `json:"size"`
	Type           string    `json:"type"`
	ContentPreview string    `json:"content_preview"`
	LastModified   time.Time `json:"last_modified"`
	FolderPath     string    `json:"folder_path"`
	Hash           string    `json:"hash"`
	IndexedAt      time.Time `json:"indexed_at"`
}

// AccessEvent records that a path was touched. The log is append-only;
// duplicates are expected and meaningful.
type AccessEvent struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Context   string    `json:"context"`
}

// ContentCacheEntry holds extracted text and derived keywords for one file.
// It exists only for files whose content was successfully extracted.
type ContentCacheEntry struct {
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Keywords  []string  `json:"keywords"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NameHit is a filename-substring query result.
type NameHit struct {
	Path     string
	Filename string
}

// ContentHit is a content-substring query result.
type ContentHit struct {
	Path    string
	Content string
}

// AccessHit is one distinct path from an access-range query, carrying its
// most recent event inside the queried window.
type AccessHit struct {
	Path      string
	Kind      string
	Timestamp time.Time
}
