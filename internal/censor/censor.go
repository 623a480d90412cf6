// Package censor narrows requested field lists to what the caller may see.
// Each entity type has a tiered field policy; a field passes when any tier
// that lists it is open to the caller.
package censor

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/metrics"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// FieldPolicy lists, per access tier, the fields it opens. Fields are
// matched by their first path segment, so listing a relation opens every
// path through it. schema.Wildcard opens all fields.
type FieldPolicy struct {
	Public     []string
	Permitted  map[authz.Permission][]string
	Affiliated []string
	Owned      []string
}

// Decision is the outcome of censoring one field list.
type Decision struct {
	Fields []string
	Grants map[string]authz.Grant
	// Conditions maps the first path segment of a field opened only by
	// ownership or affiliation to the rows it may be shown on. Other rows
	// must leave it out.
	Conditions map[string]store.Filter
}

// Empty reports whether no field survived.
func (d Decision) Empty() bool {
	return len(d.Fields) == 0
}

// Condition returns the row condition of field, or match-all when the field
// is readable on every row.
func (d Decision) Condition(field string) store.Filter {
	head, _, _ := strings.Cut(field, ".")
	if c, ok := d.Conditions[head]; ok {
		return c
	}
	return store.All()
}

// Hidden returns, for a row, the field heads whose condition it fails.
func (d Decision) Hidden(row map[string]any) []string {
	var out []string
	for head, c := range d.Conditions {
		if !c.Match(row) {
			out = append(out, head)
		}
	}
	slices.Sort(out)
	return out
}

// ConditionFields lists the document fields the row conditions read.
func (d Decision) ConditionFields() []string {
	var out []string
	for _, c := range d.Conditions {
		out = append(out, c.FieldNames()...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Censor applies field policies.
type Censor struct {
	policies map[domain.EntityType]FieldPolicy
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a censor over policies. Entity types without a policy expose
// nothing.
func New(policies map[domain.EntityType]FieldPolicy, m *metrics.Metrics, logger *slog.Logger) *Censor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Censor{policies: policies, metrics: m, logger: logger}
}

// Censor returns the subset of fields the caller may see, in input order.
func (c *Censor) Censor(ctx context.Context, fields []string, ac *authz.Context) ([]string, error) {
	d, err := c.Decide(ctx, fields, ac)
	return d.Fields, err
}

// Decide censors fields and reports the row conditions the kept fields
// depend on. Store queries happen only for fields no cheaper tier opens.
func (c *Censor) Decide(ctx context.Context, fields []string, ac *authz.Context) (Decision, error) {
	d, err := c.Readable(ctx, fields, ac)
	if err != nil {
		return Decision{}, err
	}
	for _, f := range fields {
		if _, kept := d.Grants[f]; !kept {
			c.logger.Debug("field censored", "entity", ac.Type, "field", f)
		}
	}
	c.metrics.AddCensored(string(ac.Type), len(fields)-len(d.Fields))
	return d, nil
}

// Readable is Decide without recording censored fields. It vets the fields
// a lookup searches and sorts by.
func (c *Censor) Readable(ctx context.Context, fields []string, ac *authz.Context) (Decision, error) {
	policy := c.policies[ac.Type]
	d := Decision{Grants: make(map[string]authz.Grant, len(fields))}

	for _, f := range fields {
		head, _, _ := strings.Cut(f, ".")

		if opens(policy.Public, head) {
			d.keep(f, authz.GrantPublic)
			continue
		}
		if c.permitted(policy, head, ac) {
			d.keep(f, authz.GrantPermission)
			continue
		}

		affiliated := false
		if opens(policy.Affiliated, head) {
			ok, err := ac.IsAffiliated(ctx)
			if err != nil {
				return Decision{}, err
			}
			affiliated = ok
		}
		owned := false
		if opens(policy.Owned, head) {
			ok, err := ac.IsOwner(ctx)
			if err != nil {
				return Decision{}, err
			}
			owned = ok
		}

		switch {
		case affiliated && owned:
			d.keep(f, authz.GrantAffiliation)
			d.condition(head, store.Or(ac.Affiliated.Fragment, ac.Owned.Fragment))
		case affiliated:
			d.keep(f, authz.GrantAffiliation)
			d.condition(head, ac.Affiliated.Fragment)
		case owned:
			d.keep(f, authz.GrantOwnership)
			d.condition(head, ac.Owned.Fragment)
		}
	}
	return d, nil
}

func (d *Decision) keep(field string, g authz.Grant) {
	d.Fields = append(d.Fields, field)
	d.Grants[field] = g
}

func (d *Decision) condition(head string, f store.Filter) {
	if d.Conditions == nil {
		d.Conditions = make(map[string]store.Filter)
	}
	d.Conditions[head] = f
}

func (c *Censor) permitted(policy FieldPolicy, head string, ac *authz.Context) bool {
	perms := make([]authz.Permission, 0, len(policy.Permitted))
	for perm, fields := range policy.Permitted {
		if opens(fields, head) {
			perms = append(perms, perm)
		}
	}
	return len(perms) > 0 && ac.Permitted(perms...)
}

func opens(tier []string, head string) bool {
	return slices.Contains(tier, schema.Wildcard) || slices.Contains(tier, head)
}
