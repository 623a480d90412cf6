package builder

import (
	"context"
	"reflect"
	"slices"

	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/dto"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

type child[T, D any] interface {
	Scoped
	Builder[T, D]
}

// prepared is a censored, filtered lookup that has not hit the store yet.
type prepared struct {
	decision   censor.Decision
	filter     store.Filter
	projection []string
}

// prepare normalizes and censors l for q's entity type. It returns nil when
// nothing survives the censor, which leaves the relation absent.
func prepare[T any](ctx context.Context, b *base, q *query.Query[T], l query.Lookup) (*prepared, error) {
	t := q.Type()
	fields := b.deps.Schemas.Normalize(t, l.Fields)
	if len(fields) == 0 {
		return nil, nil
	}

	filter, err := q.Build(ctx, l)
	if err != nil {
		return nil, err
	}
	ac, err := b.deps.Resolver.Context(ctx, b.scope.Principal, t, filter, b.scope.Flags)
	if err != nil {
		return nil, err
	}
	d, err := b.deps.Censor.Decide(ctx, fields, ac)
	if err != nil {
		return nil, err
	}
	if d.Empty() {
		b.deps.Logger.Debug("relation censored", "entity", t, "fields", len(fields))
		return nil, nil
	}

	projection := b.deps.Schemas.Projection(t, b.deps.Schemas.Split(t, d.Fields))
	return &prepared{
		decision:   d,
		filter:     filter,
		projection: append(projection, d.ConditionFields()...),
	}, nil
}

// conceal leaves out, row by row, the fields whose row condition the
// entity does not meet.
func conceal[T, D any](d censor.Decision, entities []*T, dtos []*D) error {
	if len(d.Conditions) == 0 {
		return nil
	}
	for i, e := range entities {
		row, err := store.Document(e)
		if err != nil {
			return err
		}
		dto.Omit(dtos[i], d.Hidden(row)...)
	}
	return nil
}

// assemble builds entities with the decision's fields and conceals per row.
func assemble[T, D any, B child[T, D]](ctx context.Context, b *base, entities []*T, d censor.Decision) ([]*D, error) {
	dtos, err := buildChild[T, D, B](ctx, b, entities, d.Fields)
	if err != nil {
		return nil, err
	}
	if err := conceal(d, entities, dtos); err != nil {
		return nil, err
	}
	return dtos, nil
}

func buildChild[T, D any, B child[T, D]](ctx context.Context, b *base, entities []*T, fields []string) ([]*D, error) {
	if len(entities) == 0 {
		return nil, nil
	}
	cb, err := Resolve[B](b.factory, b.scope)
	if err != nil {
		return nil, err
	}
	return cb.Build(ctx, entities, fields)
}

func index[T, D any](entities []*T, dtos []*D) map[string]*D {
	m := make(map[string]*D, len(dtos))
	for i, e := range entities {
		m[entityID(e)] = dtos[i]
	}
	return m
}

// related resolves a forward relation for a whole batch: one query for the
// distinct ids, one child build, and the results keyed by related id.
func related[T, D any, B child[T, D]](ctx context.Context, b *base, q *query.Query[T], ids, fields []string) (map[string]*D, error) {
	ids = query.Distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	p, err := prepare(ctx, b, q, query.ByIDs(ids, fields))
	if err != nil || p == nil {
		return nil, err
	}
	entities, err := q.FindBatch(ctx, p.filter, p.projection)
	if err != nil {
		return nil, err
	}
	dtos, err := assemble[T, D, B](ctx, b, entities, p.decision)
	if err != nil {
		return nil, err
	}
	return index(entities, dtos), nil
}

// reverse resolves a relation stored on the related side, such as a
// shelter's animals, grouped by the parent id held in field.
func reverse[T, D any, B child[T, D]](ctx context.Context, b *base, q *query.Query[T], field string, parentIDs, fields []string, parent func(*T) string) (map[string][]*D, error) {
	parentIDs = query.Distinct(parentIDs)
	if len(parentIDs) == 0 {
		return nil, nil
	}
	p, err := prepare(ctx, b, q, query.Lookup{
		Fields:   fields,
		Criteria: query.ForeignKey{Field: field, IDs: parentIDs},
	})
	if err != nil || p == nil {
		return nil, err
	}
	entities, err := q.FindBatch(ctx, p.filter, append(p.projection, field))
	if err != nil {
		return nil, err
	}
	dtos, err := assemble[T, D, B](ctx, b, entities, p.decision)
	if err != nil {
		return nil, err
	}
	m := make(map[string][]*D)
	for i, e := range entities {
		m[parent(e)] = append(m[parent(e)], dtos[i])
	}
	return m, nil
}

// pair describes one of two relations to the same entity type.
type pair struct {
	ids       []string
	fields    []string
	requested bool
}

// dual resolves two relations to the same entity type, such as a message's
// sender and recipient, with a single query over the union of both id sets.
// Each relation gets its own map so attaching never depends on result
// order. Both sides are built once when they request the same fields.
func dual[T, D any, B child[T, D]](ctx context.Context, b *base, q *query.Query[T], left, right pair) (map[string]*D, map[string]*D, error) {
	sides := [2]pair{left, right}
	var preps [2]*prepared
	for i, s := range sides {
		sides[i].ids = query.Distinct(s.ids)
		if !s.requested || len(sides[i].ids) == 0 {
			continue
		}
		p, err := prepare(ctx, b, q, query.ByIDs(sides[i].ids, s.fields))
		if err != nil {
			return nil, nil, err
		}
		preps[i] = p
	}

	var ids, projection []string
	for i, p := range preps {
		if p == nil {
			continue
		}
		ids = append(ids, sides[i].ids...)
		projection = append(projection, p.projection...)
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}
	slices.Sort(projection)

	entities, err := q.FindBatch(ctx, store.In("id", query.Distinct(ids)...), slices.Compact(projection))
	if err != nil {
		return nil, nil, err
	}

	if preps[0] != nil && preps[1] != nil &&
		slices.Equal(preps[0].decision.Fields, preps[1].decision.Fields) &&
		reflect.DeepEqual(preps[0].decision.Conditions, preps[1].decision.Conditions) {
		dtos, err := assemble[T, D, B](ctx, b, entities, preps[0].decision)
		if err != nil {
			return nil, nil, err
		}
		m := index(entities, dtos)
		return m, m, nil
	}

	var maps [2]map[string]*D
	for i, p := range preps {
		if p == nil {
			continue
		}
		subset := within(entities, sides[i].ids)
		dtos, err := assemble[T, D, B](ctx, b, subset, p.decision)
		if err != nil {
			return nil, nil, err
		}
		maps[i] = index(subset, dtos)
	}
	return maps[0], maps[1], nil
}

// within returns the entities whose id is in ids, which must be sorted.
func within[T any](entities []*T, ids []string) []*T {
	var out []*T
	for _, e := range entities {
		if _, found := slices.BinarySearch(ids, entityID(e)); found {
			out = append(out, e)
		}
	}
	return out
}
