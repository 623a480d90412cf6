// Package query turns per-entity lookups into store filters and runs them.
package query

import (
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// Lookup is one request for entities of a single type. It is built per
// request and never stored.
type Lookup struct {
	IDs            []string `json:"ids,omitempty" validate:"omitempty,max=10000,dive,required"`
	Query          string   `json:"query,omitempty" validate:"max=200"`
	Fields         []string `json:"fields,omitempty" validate:"omitempty,max=200,dive,required,max=256"`
	Offset         int      `json:"offset,omitempty" validate:"gte=0"`
	PageSize       int      `json:"pageSize,omitempty" validate:"gte=0"`
	SortBy         []string `json:"sortBy,omitempty" validate:"omitempty,max=8,dive,required"`
	SortDescending bool     `json:"sortDescending,omitempty"`

	// Criteria holds the entity-specific structural filters. Nil means none.
	Criteria Criteria `json:"-"`
}

// Criteria produces the structural filter terms of a lookup. Every field a
// term references must be a native field of the queried entity.
type Criteria interface {
	Filters() []store.Filter
}

// ByIDs is the lookup used for related-entity batches.
func ByIDs(ids []string, fields []string) Lookup {
	return Lookup{IDs: ids, Fields: fields}
}

// ForeignKey restricts a lookup to entities whose field holds one of ids.
// Reverse relations such as a shelter's animals use it.
type ForeignKey struct {
	Field string
	IDs   []string
}

func (c ForeignKey) Filters() []store.Filter {
	return []store.Filter{store.In(c.Field, c.IDs...)}
}

// Filters joins several criteria.
type Filters []Criteria

func (fs Filters) Filters() []store.Filter {
	var out []store.Filter
	for _, c := range fs {
		if c != nil {
			out = append(out, c.Filters()...)
		}
	}
	return out
}
