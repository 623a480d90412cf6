// Package builder assembles DTO graphs from stored entities. Each entity
// type has a builder that copies the requested native fields and resolves
// requested relations with one batched query per related type, recursing
// into the related type's builder.
package builder

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/censor"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/schema"
)

// Builder turns entities of type T into DTOs of type D. The result is
// aligned with entities by index.
type Builder[T, D any] interface {
	Build(ctx context.Context, entities []*T, fields []string) ([]*D, error)
}

// Scope is the per-request state a builder carries.
type Scope struct {
	Principal authz.Principal
	Flags     authz.Flags
}

// Scoped is implemented by every builder.
type Scoped interface {
	Scope(s Scope)
}

// Deps are the process-wide collaborators shared by all builders.
type Deps struct {
	Schemas  *schema.Registry
	Queries  *query.Registry
	Resolver *authz.Resolver
	Censor   *censor.Censor
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

type base struct {
	deps    *Deps
	factory *Factory
	scope   Scope
}

func newBase(i do.Injector) (base, error) {
	deps, err := do.Invoke[*Deps](i)
	if err != nil {
		return base{}, err
	}
	factory, err := do.Invoke[*Factory](i)
	if err != nil {
		return base{}, err
	}
	return base{deps: deps, factory: factory, scope: Scope{Flags: authz.FlagAll}}, nil
}

// Scope implements Scoped.
func (b *base) Scope(s Scope) {
	b.scope = s
}

func (b *base) split(t domain.EntityType, fields []string) (schema.Split, map[string]bool) {
	s := b.deps.Schemas.Split(t, fields)
	native := make(map[string]bool, len(s.Native))
	for _, f := range s.Native {
		native[f] = true
	}
	return s, native
}

func ptr[T any](v T) *T {
	return &v
}

// list copies ids so a requested empty list still serializes as [].
func list(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// keys collects foreign-key values across a batch.
func keys[T any](items []*T, fk func(*T) []string) []string {
	var out []string
	for _, it := range items {
		out = append(out, fk(it)...)
	}
	return query.Distinct(out)
}

func one(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

// pick returns the DTOs for ids in id order, skipping ids without one. It
// returns nil when none match so the relation stays absent.
func pick[D any](m map[string]*D, ids []string) []*D {
	var out []*D
	for _, id := range ids {
		if d, ok := m[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func entityID[T any](e *T) string {
	if ident, ok := any(e).(domain.Identifiable); ok {
		return ident.EntityID()
	}
	return ""
}
