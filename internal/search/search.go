// Package search maintains an in-memory full-text index over extracted
// declarations. Queries use bleve query-string syntax with optional kind,
// language, and path filters.
package search

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/declscan/declscan/internal/extract"
	"github.com/declscan/declscan/internal/model"
)

// Options narrow a search. The zero value means no filtering and the
// default limit.
type Options struct {
	// Kind restricts hits to one declaration kind (exact match).
	Kind string
	// Language restricts hits to one language tag (exact match).
	Language string
	// Path restricts hits to paths matching a wildcard pattern.
	Path string
	// Limit caps the number of hits; zero or out of range means 15.
	Limit int
}

// Hit is one matching declaration.
type Hit struct {
	Path      string  `json:"path"`
	Language  string  `json:"language"`
	Kind      string  `json:"kind"`
	Name      string  `json:"name"`
	Signature string  `json:"signature,omitempty"`
	Line      int     `json:"line"`
	Score     float64 `json:"score"`
}

// Index is an in-memory declaration index, safe for concurrent use.
// Searches take a read lock; updates take the write lock.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex

	// docs tracks document ids per file so a re-index of one file can
	// delete its stale entries first.
	docs map[string][]string
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{index: idx, docs: make(map[string][]string)}, nil
}

// buildMapping configures per-field analyzers: identifiers and signatures
// get the standard analyzer for partial matching, kind, language, and
// path get the keyword analyzer for exact filtering.
func buildMapping() *mapping.IndexMappingImpl {
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true
	nameMapping.Index = true

	signatureMapping := bleve.NewTextFieldMapping()
	signatureMapping.Analyzer = "standard"
	signatureMapping.Store = true
	signatureMapping.Index = true

	kindMapping := bleve.NewTextFieldMapping()
	kindMapping.Analyzer = "keyword"
	kindMapping.Store = true
	kindMapping.Index = true

	languageMapping := bleve.NewTextFieldMapping()
	languageMapping.Analyzer = "keyword"
	languageMapping.Store = true
	languageMapping.Index = true

	// Paths are filtered with wildcard patterns over the whole path, so
	// they must stay a single term.
	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "keyword"
	pathMapping.Store = true
	pathMapping.Index = true

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("signature", signatureMapping)
	docMapping.AddFieldMappingsAt("kind", kindMapping)
	docMapping.AddFieldMappingsAt("language", languageMapping)
	docMapping.AddFieldMappingsAt("path", pathMapping)
	docMapping.AddFieldMappingsAt("line", lineMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexResults indexes every successful result in one batch. Failed files
// are skipped.
func (x *Index) IndexResults(ctx context.Context, results []extract.Result) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for i, res := range results {
		if i%100 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if res.Model == nil {
			continue
		}
		if err := x.addFileToBatch(batch, res.Path, res.Model); err != nil {
			return err
		}
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute index batch: %w", err)
	}
	return nil
}

// UpdateFile replaces the index entries for one file with the given
// model. A nil model just removes the file.
func (x *Index) UpdateFile(path string, m *model.Model) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for _, id := range x.docs[path] {
		batch.Delete(id)
	}
	delete(x.docs, path)

	if m != nil {
		if err := x.addFileToBatch(batch, path, m); err != nil {
			return err
		}
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to update index for %s: %w", path, err)
	}
	return nil
}

// RemoveFile drops a file's declarations from the index.
func (x *Index) RemoveFile(path string) error {
	return x.UpdateFile(path, nil)
}

func (x *Index) addFileToBatch(batch *bleve.Batch, path string, m *model.Model) error {
	var addErr error
	m.Walk(func(d *model.Declaration, depth int) bool {
		if addErr != nil {
			return false
		}
		docID := path + "#" + strconv.Itoa(int(d.ID))
		doc := map[string]interface{}{
			"name":      d.Name,
			"signature": d.Signature,
			"kind":      string(d.Kind),
			"language":  m.Language,
			"path":      path,
			"line":      d.Line,
		}
		if err := batch.Index(docID, doc); err != nil {
			addErr = fmt.Errorf("failed to index %s: %w", docID, err)
			return false
		}
		x.docs[path] = append(x.docs[path], docID)
		return true
	})
	return addErr
}

// Search runs a query-string search with the given filters.
func (x *Index) Search(ctx context.Context, queryStr string, opts Options) ([]Hit, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var queries []query.Query
	queries = append(queries, bleve.NewQueryStringQuery(queryStr))

	if opts.Kind != "" {
		q := bleve.NewTermQuery(opts.Kind)
		q.SetField("kind")
		queries = append(queries, q)
	}
	if opts.Language != "" {
		q := bleve.NewTermQuery(opts.Language)
		q.SetField("language")
		queries = append(queries, q)
	}
	if opts.Path != "" {
		q := bleve.NewWildcardQuery(opts.Path)
		q.SetField("path")
		queries = append(queries, q)
	}

	var finalQuery query.Query
	if len(queries) == 1 {
		finalQuery = queries[0]
	} else {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Fields = []string{"name", "signature", "kind", "language", "path", "line"}

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		hit.Name, _ = h.Fields["name"].(string)
		hit.Signature, _ = h.Fields["signature"].(string)
		hit.Kind, _ = h.Fields["kind"].(string)
		hit.Language, _ = h.Fields["language"].(string)
		hit.Path, _ = h.Fields["path"].(string)
		if line, ok := h.Fields["line"].(float64); ok {
			hit.Line = int(line)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the underlying index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.index != nil {
		return x.index.Close()
	}
	return nil
}
