// Package schema describes, per entity type, which field names are stored
// on the entity itself and which name relations to other entities. The
// field path parser, projections and filter validation all read it.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pawhaven/pawhaven-server/internal/domain"
)

// Wildcard requests every native field at its level.
const Wildcard = "*"

// Relation links an entity to another entity type.
type Relation struct {
	Name   string
	Target domain.EntityType
	// ForeignKey is the native field holding the related id(s). For a
	// reverse relation it is the field on Target that holds this entity's id.
	ForeignKey string
	Many       bool
	Reverse    bool
}

// Entity is the field table of one entity type.
type Entity struct {
	Type      domain.EntityType
	Native    []string
	Relations map[string]Relation
	// Defaults is used when a lookup names no fields, and when a relation is
	// requested by bare name.
	Defaults []string
	// Text lists the fields searched by a free-text query.
	Text []string
}

// HasNative reports whether name is a native field.
func (e *Entity) HasNative(name string) bool {
	return slices.Contains(e.Native, name)
}

// Relation returns the relation with the given name.
func (e *Entity) Relation(name string) (Relation, bool) {
	r, ok := e.Relations[name]
	return r, ok
}

// RelationNames returns relation names in sorted order.
func (e *Entity) RelationNames() []string {
	names := make([]string, 0, len(e.Relations))
	for n := range e.Relations {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is a native field or relation.
func (e *Entity) Has(name string) bool {
	_, rel := e.Relations[name]
	return rel || e.HasNative(name)
}

// Registry holds the schema of every entity type. It is built once at
// startup and read concurrently afterwards.
type Registry struct {
	entities map[domain.EntityType]*Entity
}

// NewRegistry builds a registry from entity tables and checks that every
// relation targets a registered type.
func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{entities: make(map[domain.EntityType]*Entity, len(entities))}
	for _, e := range entities {
		if _, dup := r.entities[e.Type]; dup {
			return nil, fmt.Errorf("entity type %q registered twice", e.Type)
		}
		r.entities[e.Type] = e
	}
	for _, e := range entities {
		for _, rel := range e.Relations {
			target, ok := r.entities[rel.Target]
			if !ok {
				return nil, fmt.Errorf("%s.%s targets unregistered type %q", e.Type, rel.Name, rel.Target)
			}
			owner := e
			if rel.Reverse {
				owner = target
			}
			if !owner.HasNative(rel.ForeignKey) {
				return nil, fmt.Errorf("%s.%s foreign key %q is not a native field of %s", e.Type, rel.Name, rel.ForeignKey, owner.Type)
			}
		}
		for _, f := range append(slices.Clone(e.Defaults), e.Text...) {
			if !e.Has(f) {
				return nil, fmt.Errorf("%s lists unknown field %q", e.Type, f)
			}
		}
	}
	return r, nil
}

// Entity returns the table for t.
func (r *Registry) Entity(t domain.EntityType) (*Entity, error) {
	e, ok := r.entities[t]
	if !ok {
		return nil, fmt.Errorf("no schema for entity type %q", t)
	}
	return e, nil
}

// MustEntity is like Entity but panics for unregistered types.
func (r *Registry) MustEntity(t domain.EntityType) *Entity {
	e, err := r.Entity(t)
	if err != nil {
		panic(err)
	}
	return e
}

// Normalize prepares a requested field list for the censor: a top-level
// wildcard expands to the native fields, paths whose first segment is
// unknown or that descend into a native field are dropped, duplicates are
// removed, and an empty request becomes the entity defaults. Order of first
// appearance is kept.
func (r *Registry) Normalize(t domain.EntityType, fields []string) []string {
	e, err := r.Entity(t)
	if err != nil {
		return nil
	}
	if len(fields) == 0 {
		fields = e.Defaults
	}

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == Wildcard {
			for _, n := range e.Native {
				add(n)
			}
			continue
		}
		head, _, dotted := strings.Cut(f, ".")
		if head == "" || !e.Has(head) || (dotted && e.HasNative(head)) {
			continue
		}
		add(f)
	}
	return out
}

// Split is a parsed field list.
type Split struct {
	Native  []string
	Foreign map[string][]string
}

// Split partitions dot-path fields into native fields and per-relation
// sub-field lists. "shelter.user.name" contributes "user.name" to the
// shelter relation. A relation named without a dot requests the target's
// default fields. Unknown segments are ignored and "*" expands to the
// native fields only. The result is deterministic and independent of
// store state.
func (r *Registry) Split(t domain.EntityType, fields []string) Split {
	s := Split{Foreign: map[string][]string{}}
	e, err := r.Entity(t)
	if err != nil {
		return s
	}

	nativeSeen := map[string]bool{}
	subSeen := map[string]map[string]bool{}
	addSub := func(rel, sub string) {
		if subSeen[rel] == nil {
			subSeen[rel] = map[string]bool{}
		}
		if !subSeen[rel][sub] {
			subSeen[rel][sub] = true
			s.Foreign[rel] = append(s.Foreign[rel], sub)
		}
	}

	for _, f := range fields {
		head, rest, dotted := strings.Cut(strings.TrimSpace(f), ".")
		switch {
		case head == Wildcard && !dotted:
			for _, n := range e.Native {
				if !nativeSeen[n] {
					nativeSeen[n] = true
					s.Native = append(s.Native, n)
				}
			}
		case e.HasNative(head):
			if !dotted && !nativeSeen[head] {
				nativeSeen[head] = true
				s.Native = append(s.Native, head)
			}
		default:
			rel, ok := e.Relations[head]
			if !ok {
				continue
			}
			if dotted && rest != "" {
				addSub(head, rest)
				continue
			}
			target, err := r.Entity(rel.Target)
			if err != nil {
				continue
			}
			for _, d := range target.Defaults {
				addSub(head, d)
			}
		}
	}
	return s
}

// Projection returns the native fields the store must decode to serve
// split: the requested natives, the id, and the foreign keys of requested
// forward relations.
func (r *Registry) Projection(t domain.EntityType, split Split) []string {
	e, err := r.Entity(t)
	if err != nil {
		return nil
	}
	out := []string{"id"}
	out = append(out, split.Native...)
	for name := range split.Foreign {
		if rel, ok := e.Relations[name]; ok && !rel.Reverse {
			out = append(out, rel.ForeignKey)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
