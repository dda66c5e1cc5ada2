package store

import (
	"strings"

	"github.com/MuthoniGathiithi/filehound/internal/log"
	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
)

// lowerKeyword analyzes a field as one lowercased token, so wildcard
// queries of the form *term* behave as case-insensitive substring match.
const lowerKeyword = "lower_keyword"

type searchDoc struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Keywords string `json:"keywords"`
	Tags     string `json:"tags"`
}

type contentIndex struct {
	index bleve.Index
}

func openContentIndex(path string) (*contentIndex, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		m, mErr := buildIndexMapping()
		if mErr != nil {
			return nil, mErr
		}
		idx, err = bleve.NewUsing(path, m, "scorch", "scorch", nil)
		if err != nil {
			return nil, err
		}
		log.Infof("created new search index at %s", path)
		return &contentIndex{index: idx}, nil
	}
	if err != nil {
		return nil, err
	}
	log.Debugf("opened existing search index at %s", path)
	return &contentIndex{index: idx}, nil
}

func buildIndexMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	err := m.AddCustomAnalyzer(lowerKeyword, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()

	filenameField := bleve.NewTextFieldMapping()
	filenameField.Analyzer = lowerKeyword
	filenameField.Store = false
	docMapping.AddFieldMappingsAt("filename", filenameField)

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.IncludeTermVectors = false
	docMapping.AddFieldMappingsAt("content", contentField)

	keywordsField := bleve.NewTextFieldMapping()
	keywordsField.Analyzer = lowerKeyword
	keywordsField.Store = false
	docMapping.AddFieldMappingsAt("keywords", keywordsField)

	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = lowerKeyword
	tagsField.Store = false
	docMapping.AddFieldMappingsAt("tags", tagsField)

	m.DefaultMapping = docMapping
	return m, nil
}

func (ci *contentIndex) Index(path string, doc *searchDoc) error {
	return ci.index.Index(path, doc)
}

func (ci *contentIndex) Delete(path string) error {
	return ci.index.Delete(path)
}

func (ci *contentIndex) Close() error {
	return ci.index.Close()
}

func (ci *contentIndex) searchFilename(pattern string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}

	// Wildcard patterns are not analyzed, so lowercase here to line up
	// with the lower_keyword indexed terms.
	q := bleve.NewWildcardQuery("*" + strings.ToLower(pattern) + "*")
	q.SetField("filename")

	req := bleve.NewSearchRequest(q)
	req.Size = limit

	result, err := ci.index.Search(req)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		paths = append(paths, hit.ID)
	}
	return paths, nil
}

func (ci *contentIndex) searchContent(pattern string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}

	contentQuery := bleve.NewMatchQuery(pattern)
	contentQuery.SetField("content")

	wildcard := "*" + strings.ToLower(pattern) + "*"

	keywordQuery := bleve.NewWildcardQuery(wildcard)
	keywordQuery.SetField("keywords")

	tagQuery := bleve.NewWildcardQuery(wildcard)
	tagQuery.SetField("tags")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(contentQuery, keywordQuery, tagQuery))
	req.Size = limit

	result, err := ci.index.Search(req)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		paths = append(paths, hit.ID)
	}
	return paths, nil
}

func joinLower(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(items, " "))
}
