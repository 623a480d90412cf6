// Package search maintains a bleve free-text index over the searchable
// fields of every entity type. Lookups with a free-text query are resolved
// to entity ids here before the document store is queried.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/schema"
)

// mappingVersion is bumped whenever buildIndexMapping changes. A mismatch
// on startup drops and recreates the index.
const mappingVersion = "2"

// Options configures the search index.
type Options struct {
	DataPath string // directory for index storage, ignored when InMemory
	InMemory bool
	Logger   *slog.Logger
}

// Index wraps a bleve index. All methods are safe for concurrent use.
type Index struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex

	// text lists the searchable fields per collection.
	text map[string][]string
}

// NewIndex opens the index at opts.DataPath, creating or rebuilding it as
// needed.
func NewIndex(registry *schema.Registry, opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	text := make(map[string][]string)
	var searchable []string
	for _, et := range domain.EntityTypes() {
		e, err := registry.Entity(et)
		if err != nil {
			return nil, err
		}
		if len(e.Text) > 0 {
			text[et.Collection()] = e.Text
			searchable = append(searchable, e.Text...)
		}
	}
	slices.Sort(searchable)

	idx, err := open(opts, buildIndexMapping(slices.Compact(searchable)), logger)
	if err != nil {
		return nil, err
	}
	return &Index{index: idx, logger: logger, text: text}, nil
}

func open(opts Options, m mapping.IndexMapping, logger *slog.Logger) (bleve.Index, error) {
	if opts.InMemory {
		idx, err := bleve.NewMemOnly(m)
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return idx, nil
	}

	if err := os.MkdirAll(opts.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create search dir: %w", err)
	}
	indexPath := filepath.Join(opts.DataPath, "entities.bleve")
	versionPath := filepath.Join(opts.DataPath, "entities.version")

	if _, statErr := os.Stat(indexPath); statErr == nil {
		version, readErr := os.ReadFile(versionPath) //#nosec G304 -- path derived from configured data dir
		if readErr == nil && string(version) == mappingVersion {
			idx, err := bleve.Open(indexPath)
			if err == nil {
				logger.Info("opened existing search index", "path", indexPath)
				return idx, nil
			}
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
		} else {
			logger.Info("search index mapping changed, will rebuild", "new_version", mappingVersion)
		}
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	idx, err := bleve.New(indexPath, m)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o600); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	return idx, nil
}

func docID(collection, id string) string {
	return collection + "/" + id
}

// IndexDocument implements store.SearchIndexer. Collections without
// searchable fields are skipped.
func (s *Index) IndexDocument(_ context.Context, collection, id string, doc map[string]any) error {
	fields, ok := s.text[collection]
	if !ok {
		return nil
	}

	values := make(map[string]any, len(fields))
	for _, f := range fields {
		var parts []string
		switch v := doc[f].(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case []any:
			for _, el := range v {
				if str, ok := el.(string); ok && str != "" {
					parts = append(parts, str)
				}
			}
		}
		if len(parts) > 0 {
			values[f] = strings.Join(parts, "\n")
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(docID(collection, id), map[string]any{
		fieldCollection: collection,
		fieldEntityID:   id,
		fieldText:       values,
		fieldExact:      values,
	})
}

// DeleteDocument implements store.SearchIndexer.
func (s *Index) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(docID(collection, id))
}

// DocCount returns the number of indexed documents.
func (s *Index) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close closes the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}
