/*
Package index implements the full-text index collaborator on Bleve.

The index is best-effort from the engine's point of view: a search error
or an empty result set triggers the engine's keyword-scan fallback, never
a query failure.
*/
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/khanglvm/capsearch/internal/registry"
)

// Searcher is the read surface the engine consumes. Results are
// capability names in descending relevance order.
type Searcher interface {
	Search(queryText, category string, limit int) ([]string, error)
}

// BleveIndex indexes capability records for candidate retrieval.
type BleveIndex struct {
	idx  bleve.Index
	mu   sync.RWMutex
	path string
}

// NewMemOnly creates an in-memory index (fast startup, rebuilt per run).
func NewMemOnly() (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &BleveIndex{idx: idx}, nil
}

// NewWithPath opens or creates a persistent index at indexPath using the
// scorch backend.
func NewWithPath(indexPath string) (*BleveIndex, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	idx, err := bleve.NewUsing(indexPath, buildIndexMapping(), scorch.Name, scorch.Name, nil)
	if err != nil {
		idx, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open/create index: %w", err)
		}
	}
	return &BleveIndex{idx: idx, path: indexPath}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("name", textField)
	docMapping.AddFieldMappingsAt("description", textField)
	docMapping.AddFieldMappingsAt("tags", textField)

	categoryField := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("category", categoryField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// IndexCapabilities (re)indexes the given records in one batch. Callers
// pass active records only; deactivated ones are removed separately.
func (b *BleveIndex) IndexCapabilities(caps []registry.Capability) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.idx.NewBatch()
	for _, cap := range caps {
		doc := map[string]any{
			"name":        strings.ReplaceAll(cap.Name, "_", " "),
			"description": cap.Description,
			"tags":        strings.Join(cap.Tags, " "),
			"category":    cap.Category,
		}
		if err := batch.Index(cap.Name, doc); err != nil {
			return fmt.Errorf("failed to index %q: %w", cap.Name, err)
		}
	}

	if err := b.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index capabilities: %w", err)
	}
	return nil
}

// Remove deletes one capability from the index.
func (b *BleveIndex) Remove(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.idx.Delete(name)
}

// Search runs a fuzzy match query over name, description and tags,
// optionally restricted to one category, and returns capability names in
// relevance order.
func (b *BleveIndex) Search(queryText, category string, limit int) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	match := bleve.NewMatchQuery(queryText)
	match.SetFuzziness(1)

	var q query.Query = match
	if category != "" {
		categoryQuery := bleve.NewTermQuery(category)
		categoryQuery.SetField("category")
		q = bleve.NewConjunctionQuery(match, categoryQuery)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	names := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		names = append(names, hit.ID)
	}
	return names, nil
}

// Count returns the number of indexed capabilities.
func (b *BleveIndex) Count() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.idx.DocCount()
}

// Close releases the index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.idx != nil {
		return b.idx.Close()
	}
	return nil
}
