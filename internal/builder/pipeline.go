package builder

import (
	"context"
	"strings"
	"time"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/query"
)

// Run answers a root lookup: it builds the filter, separates "nothing
// matched" from "nothing visible", censors the requested fields, fetches one
// page and builds the DTO graph.
//
// Outcomes: the DTOs (possibly none when listing without ids), NotFound when
// ids were given and none matched, Forbidden when the caller may see none of
// the requested fields, or Unauthenticated when that caller is anonymous.
// Fields readable only through ownership or affiliation are left out of the
// rows they do not hold on; no row is dropped for it.
func Run[T, D any, B child[T, D]](ctx context.Context, f *Factory, q *query.Query[T], p authz.Principal, l query.Lookup) ([]*D, error) {
	deps, err := f.Deps()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := run[T, D, B](ctx, f, deps, q, p, l)
	deps.Metrics.ObservePipeline(string(q.Type()), outcome(err), time.Since(start))
	return out, err
}

func run[T, D any, B child[T, D]](ctx context.Context, f *Factory, deps *Deps, q *query.Query[T], p authz.Principal, l query.Lookup) ([]*D, error) {
	t := q.Type()

	fields := deps.Schemas.Normalize(t, l.Fields)
	if len(fields) == 0 {
		return nil, domainerrors.Validationf("none of the requested fields exist on %s", t)
	}

	base, err := q.Structural(l)
	if err != nil {
		return nil, err
	}
	ac, err := deps.Resolver.Context(ctx, p, t, base, authz.FlagAll)
	if err != nil {
		return nil, err
	}

	text, err := searchable(ctx, deps, q, l, ac)
	if err != nil {
		return nil, err
	}
	plan, err := q.Plan(ctx, l, text)
	if err != nil {
		return nil, err
	}

	if len(l.IDs) > 0 {
		n, err := q.Count(ctx, plan.Filter)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domainerrors.NotFoundf("no %s matches the lookup", t)
		}
	}

	d, err := deps.Censor.Decide(ctx, fields, ac)
	if err != nil {
		return nil, err
	}
	if d.Empty() {
		if !p.Authenticated() {
			return nil, domainerrors.Unauthenticated("sign in to read " + string(t))
		}
		return nil, domainerrors.Forbiddenf("no readable fields on %s", t)
	}
	if dropped := len(fields) - len(d.Fields); dropped > 0 {
		deps.Logger.Debug("fields censored", "entity", t, "requested", len(fields), "dropped", dropped)
	}

	sortable, err := deps.Censor.Readable(ctx, l.SortBy, ac)
	if err != nil {
		return nil, err
	}
	for _, field := range l.SortBy {
		if _, ok := sortable.Grants[field]; !ok {
			return nil, domainerrors.Validationf("cannot sort %s by %q", t, field)
		}
	}
	plan.Conditions = sortable.Conditions

	projection := deps.Schemas.Projection(t, deps.Schemas.Split(t, d.Fields))
	entities, err := q.Find(ctx, plan, l, append(projection, d.ConditionFields()...))
	if err != nil {
		return nil, err
	}

	b, err := Resolve[B](f, Scope{Principal: p, Flags: authz.FlagAll})
	if err != nil {
		return nil, err
	}
	out, err := b.Build(ctx, entities, d.Fields)
	if err != nil {
		return nil, err
	}
	if err := conceal(d, entities, out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*D{}
	}
	return out, nil
}

// searchable returns the text fields a free-text query may match: those
// the caller can read on every row.
func searchable[T any](ctx context.Context, deps *Deps, q *query.Query[T], l query.Lookup, ac *authz.Context) ([]string, error) {
	if strings.TrimSpace(l.Query) == "" {
		return nil, nil
	}
	d, err := deps.Censor.Readable(ctx, q.Entity().Text, ac)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, field := range d.Fields {
		if _, conditional := d.Conditions[field]; !conditional {
			out = append(out, field)
		}
	}
	return out, nil
}

func outcome(err error) string {
	var de *domainerrors.Error
	switch {
	case err == nil:
		return "ok"
	case domainerrors.As(err, &de):
		return string(de.Code)
	default:
		return "error"
	}
}
