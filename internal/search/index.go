// Package search keeps an in-memory bleve full-text index of pins.
//
// The index is derived data: it is rebuilt from the database on startup and
// kept current by the pin service on create and delete. Nothing is written
// to disk.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/sakif/pinboard/internal/model"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	batchSize    = 500
)

// PinIndex wraps a memory-only bleve index.
//
// Thread safety: all methods are safe for concurrent use. Rebuild swaps the
// underlying index under the write lock.
type PinIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

func NewPinIndex(logger *slog.Logger) (*PinIndex, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("search: creating index: %w", err)
	}
	return &PinIndex{index: index, logger: logger}, nil
}

// buildMapping indexes title and description with English stemming and
// tags as exact keywords.
func buildMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	doc.AddFieldMappingsAt("title", title)

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = en.AnalyzerName
	doc.AddFieldMappingsAt("description", desc)

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("tags", tags)

	board := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt("board_id", board)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

// toDocument converts a pin to the map shape bleve indexes, so field names
// match the mapping exactly.
func toDocument(p model.Pin) map[string]any {
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = strings.ToLower(t)
	}
	return map[string]any{
		"title":       p.Title,
		"description": p.Description,
		"tags":        tags,
		"board_id":    p.BoardID,
	}
}

// Index adds or replaces one pin.
func (x *PinIndex) Index(p model.Pin) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := x.index.Index(p.ID, toDocument(p)); err != nil {
		return fmt.Errorf("search: indexing pin %s: %w", p.ID, err)
	}
	return nil
}

func (x *PinIndex) Delete(pinID string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := x.index.Delete(pinID); err != nil {
		return fmt.Errorf("search: deleting pin %s: %w", pinID, err)
	}
	return nil
}

// Rebuild replaces the index contents with pins, in batches.
func (x *PinIndex) Rebuild(pins []model.Pin) error {
	fresh, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return fmt.Errorf("search: creating index: %w", err)
	}

	for i := 0; i < len(pins); i += batchSize {
		end := min(i+batchSize, len(pins))
		batch := fresh.NewBatch()
		for _, p := range pins[i:end] {
			if err := batch.Index(p.ID, toDocument(p)); err != nil {
				return fmt.Errorf("search: batch index %s: %w", p.ID, err)
			}
		}
		if err := fresh.Batch(batch); err != nil {
			return fmt.Errorf("search: commit batch %d-%d: %w", i, end, err)
		}
	}

	x.mu.Lock()
	old := x.index
	x.index = fresh
	x.mu.Unlock()

	if err := old.Close(); err != nil {
		x.logger.Warn("closing replaced search index", slog.String("error", err.Error()))
	}
	x.logger.Info("search index rebuilt", slog.Int("pins", len(pins)))
	return nil
}

// Search returns IDs of pins matching text, best match first.
func (x *PinIndex) Search(ctx context.Context, text string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(text), limit, 0, false)

	x.mu.RLock()
	res, err := x.index.SearchInContext(ctx, req)
	x.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: querying %q: %w", text, err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// buildQuery ORs a boosted title match, a description match and an exact
// tag match, plus a prefix match on titles for partial words.
func buildQuery(text string) query.Query {
	titleMatch := bleve.NewMatchQuery(text)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	descMatch := bleve.NewMatchQuery(text)
	descMatch.SetField("description")

	tagMatch := bleve.NewTermQuery(strings.ToLower(text))
	tagMatch.SetField("tags")
	tagMatch.SetBoost(2.0)

	queries := []query.Query{titleMatch, descMatch, tagMatch}

	if len(text) >= 2 && !strings.ContainsAny(text, " \t") {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}

func (x *PinIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}
