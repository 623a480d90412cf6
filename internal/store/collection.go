package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrNotFound is returned by Get when no document has the id.
var ErrNotFound = errors.New("document not found")

// SortKey orders Find results by a document field.
type SortKey struct {
	Field      string
	Descending bool
	// When, if set, limits the key to documents it matches. Elsewhere the
	// field sorts as missing.
	When       Filter
}

// FindOptions controls projection and paging for Find.
type FindOptions struct {
	// Projection lists the document fields to decode. Empty decodes the whole
	// document. The id field is always kept.
	Projection []string
	Sort       []SortKey
	// Rank lists ids in preferred order. It breaks ties left by Sort;
	// unranked documents follow ranked ones.
	Rank       []string
	Skip       int
	Limit      int // zero means no limit
}

// Collection provides filtered reads over one collection of T documents.
type Collection[T any] struct {
	store *Store
	name  string
}

// NewCollection creates a collection of T documents stored under name.
func NewCollection[T any](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

type document struct {
	fields map[string]any
}

func (c *Collection[T]) match(ctx context.Context, f Filter) ([]document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Op == OpNone {
		return nil, nil
	}

	var docs []document
	visit := func(raw []byte) error {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("failed to decode %s document: %w", c.name, err)
		}
		if f.Match(fields) {
			docs = append(docs, document{fields: fields})
		}
		return nil
	}

	var err error
	if ids, ok := f.IDs(); ok {
		slices.Sort(ids)
		err = c.store.backend.Get(ctx, c.name, slices.Compact(ids), visit)
	} else {
		err = c.store.backend.Scan(ctx, c.name, visit)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, err)
	}
	return docs, nil
}

// Count returns the number of documents matching f.
func (c *Collection[T]) Count(ctx context.Context, f Filter) (int64, error) {
	start := time.Now()
	docs, err := c.match(ctx, f)
	c.store.observer.ObserveQuery(c.name, "count", time.Since(start))
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Find returns the documents matching f, sorted, paged and projected.
// Results without explicit sort keys are ordered by id.
func (c *Collection[T]) Find(ctx context.Context, f Filter, opts FindOptions) ([]*T, error) {
	start := time.Now()
	docs, err := c.match(ctx, f)
	c.store.observer.ObserveQuery(c.name, "find", time.Since(start))
	if err != nil {
		return nil, err
	}

	sortDocuments(docs, opts.Sort, opts.Rank)

	if opts.Skip > 0 {
		docs = docs[min(opts.Skip, len(docs)):]
	}
	if opts.Limit > 0 && len(docs) > opts.Limit {
		docs = docs[:opts.Limit]
	}

	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		entity, err := decode[T](d.fields, opts.Projection)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

// Get returns the document with id, or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	found, err := c.Find(ctx, Eq("id", id), FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found[0], nil
}

// Put writes entity under id and refreshes the search index.
func (c *Collection[T]) Put(ctx context.Context, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := c.store.backend.Put(ctx, c.name, id, data); err != nil {
		return fmt.Errorf("put %s/%s: %w", c.name, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode entity: %w", err)
	}
	if err := c.store.indexer.IndexDocument(ctx, c.name, id, fields); err != nil && c.store.logger != nil {
		c.store.logger.Warn("search index update failed", "collection", c.name, "id", id, "error", err)
	}
	return nil
}

// Delete removes the document with id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.store.backend.Delete(ctx, c.name, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	if err := c.store.indexer.DeleteDocument(ctx, c.name, id); err != nil && c.store.logger != nil {
		c.store.logger.Warn("search index delete failed", "collection", c.name, "id", id, "error", err)
	}
	return nil
}

func sortDocuments(docs []document, keys []SortKey, rank []string) {
	pos := make(map[string]int, len(rank))
	for i, id := range rank {
		if _, dup := pos[id]; !dup {
			pos[id] = i
		}
	}
	position := func(id string) int {
		if p, ok := pos[id]; ok {
			return p
		}
		return len(rank)
	}

	slices.SortStableFunc(docs, func(a, b document) int {
		for _, k := range keys {
			c := compareField(sortValue(a, k), sortValue(b, k))
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		ai, _ := a.fields["id"].(string)
		bi, _ := b.fields["id"].(string)
		if c := cmp.Compare(position(ai), position(bi)); c != 0 {
			return c
		}
		return cmp.Compare(ai, bi)
	})
}

func sortValue(d document, k SortKey) any {
	if !k.When.Match(d.fields) {
		return nil
	}
	return d.fields[k.Field]
}

// compareField orders missing values first and falls back to type order
// for values that cannot be compared directly.
func compareField(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		}
		return 1
	}
	if c, ok := compare(a, b); ok {
		return c
	}
	return cmp.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func decode[T any](fields map[string]any, projection []string) (*T, error) {
	if len(projection) > 0 {
		kept := make(map[string]any, len(projection)+1)
		kept["id"] = fields["id"]
		for _, name := range projection {
			if v, ok := fields[name]; ok {
				kept[name] = v
			}
		}
		fields = kept
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}
