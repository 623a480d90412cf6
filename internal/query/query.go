package query

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// Searcher resolves a free-text query over the named fields to entity ids,
// best match first.
type Searcher interface {
	Search(ctx context.Context, t domain.EntityType, text string, fields []string, limit int) ([]string, error)
}

// Options bounds page sizes.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	// BatchLimit caps related-entity batches, which are not paged by the
	// client.
	BatchLimit int
}

// DefaultOptions returns the bounds used when none are configured.
func DefaultOptions() Options {
	return Options{DefaultPageSize: 20, MaxPageSize: 1000, BatchLimit: 10000}
}

// Query runs lookups against one collection.
type Query[T any] struct {
	entity   *schema.Entity
	coll     *store.Collection[T]
	searcher Searcher
	opts     Options
}

// New creates a query for entity over coll. searcher may be nil, in which
// case free-text queries scan the entity's text fields.
func New[T any](entity *schema.Entity, coll *store.Collection[T], searcher Searcher, opts Options) *Query[T] {
	def := DefaultOptions()
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = def.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = def.MaxPageSize
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = def.BatchLimit
	}
	return &Query[T]{entity: entity, coll: coll, searcher: searcher, opts: opts}
}

// Type returns the queried entity type.
func (q *Query[T]) Type() domain.EntityType {
	return q.entity.Type
}

// Entity returns the schema of the queried type.
func (q *Query[T]) Entity() *schema.Entity {
	return q.entity
}

// Plan is a lookup translated for the store.
type Plan struct {
	Filter store.Filter
	// Rank lists search hits best first. Results follow it unless the
	// lookup sorts them.
	Rank []string
	// Conditions maps a field readable only on some rows to the rows it is
	// readable on. Sorting by such a field treats it as missing elsewhere.
	Conditions map[string]store.Filter
}

// Build translates l into a conjunctive store filter, searching every text
// field of the entity.
func (q *Query[T]) Build(ctx context.Context, l Lookup) (store.Filter, error) {
	p, err := q.Plan(ctx, l, q.entity.Text)
	return p.Filter, err
}

// Plan translates l, matching its free-text query against text only. A
// query with no text field to search matches nothing.
func (q *Query[T]) Plan(ctx context.Context, l Lookup, text []string) (Plan, error) {
	base, err := q.Structural(l)
	if err != nil {
		return Plan{Filter: store.None()}, err
	}
	p := Plan{Filter: base}

	if terms := strings.TrimSpace(l.Query); terms != "" {
		f, rank, err := q.text(ctx, terms, text)
		if err != nil {
			return Plan{Filter: store.None()}, err
		}
		p.Filter = store.And(base, f)
		p.Rank = rank
	}
	return p, nil
}

// Structural translates the ids and criteria of l, ignoring its free-text
// query. Criteria that name a field the entity does not have fail with a
// configuration error.
func (q *Query[T]) Structural(l Lookup) (store.Filter, error) {
	var parts []store.Filter

	if len(l.IDs) > 0 {
		parts = append(parts, store.In("id", l.IDs...))
	}

	if l.Criteria != nil {
		for _, f := range l.Criteria.Filters() {
			for _, name := range f.FieldNames() {
				if !q.entity.HasNative(name) {
					return store.None(), domainerrors.Configurationf("%s has no field %q to filter on", q.entity.Type, name)
				}
			}
			parts = append(parts, f)
		}
	}

	return store.And(parts...), nil
}

func (q *Query[T]) text(ctx context.Context, text string, fields []string) (store.Filter, []string, error) {
	fields = slices.DeleteFunc(slices.Clone(fields), func(f string) bool { return !slices.Contains(q.entity.Text, f) })
	if len(fields) == 0 {
		return store.None(), nil, nil
	}
	if q.searcher == nil {
		return store.Text(text, fields...), nil, nil
	}
	ids, err := q.searcher.Search(ctx, q.entity.Type, text, fields, q.opts.BatchLimit)
	if err != nil {
		return store.None(), nil, fmt.Errorf("search %s: %w", q.entity.Type, err)
	}
	if len(ids) == 0 {
		return store.None(), nil, nil
	}
	return store.In("id", ids...), ids, nil
}

// Sort returns the store sort keys for l. Every key shares the lookup's
// direction flag, and a key with a row condition sorts only the rows it
// holds on.
func (q *Query[T]) Sort(l Lookup, conditions map[string]store.Filter) ([]store.SortKey, error) {
	keys := make([]store.SortKey, 0, len(l.SortBy))
	for _, field := range l.SortBy {
		if !q.entity.HasNative(field) {
			return nil, domainerrors.Validationf("cannot sort %s by %q", q.entity.Type, field)
		}
		keys = append(keys, store.SortKey{Field: field, Descending: l.SortDescending, When: conditions[field]})
	}
	return keys, nil
}

// Page returns the skip and limit for l, with the page size clamped to
// [1, MaxPageSize] and the default applied when unset.
func (q *Query[T]) Page(l Lookup) (skip, limit int) {
	limit = l.PageSize
	if limit <= 0 {
		limit = q.opts.DefaultPageSize
	}
	return max(l.Offset, 0), min(limit, q.opts.MaxPageSize)
}

// Count returns the number of entities matching f.
func (q *Query[T]) Count(ctx context.Context, f store.Filter) (int64, error) {
	return q.coll.Count(ctx, f)
}

// Find returns one page of entities matching p, decoding only projection.
func (q *Query[T]) Find(ctx context.Context, p Plan, l Lookup, projection []string) ([]*T, error) {
	sort, err := q.Sort(l, p.Conditions)
	if err != nil {
		return nil, err
	}
	skip, limit := q.Page(l)
	return q.coll.Find(ctx, p.Filter, store.FindOptions{
		Projection: projection,
		Sort:       sort,
		Rank:       p.Rank,
		Skip:       skip,
		Limit:      limit,
	})
}

// FindBatch returns every entity matching f up to BatchLimit. Related
// entity batches use it.
func (q *Query[T]) FindBatch(ctx context.Context, f store.Filter, projection []string) ([]*T, error) {
	return q.coll.Find(ctx, f, store.FindOptions{Projection: projection, Limit: q.opts.BatchLimit})
}

// Collect plans l and returns one page of whole entities.
func (q *Query[T]) Collect(ctx context.Context, l Lookup) ([]*T, error) {
	p, err := q.Plan(ctx, l, q.entity.Text)
	if err != nil {
		return nil, err
	}
	return q.Find(ctx, p, l, nil)
}

// BatchLimit returns the related-batch cap.
func (q *Query[T]) BatchLimit() int {
	return q.opts.BatchLimit
}

// Distinct returns the distinct non-empty values in ids, sorted.
func Distinct(ids []string) []string {
	out := slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == "" })
	slices.Sort(out)
	return slices.Compact(out)
}
