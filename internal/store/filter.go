package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Op is a filter node operator.
type Op string

const (
	OpAll   Op = "all"
	OpAnd   Op = "and"
	OpOr    Op = "or"
	OpIn    Op = "in"
	OpRange Op = "range"
	OpText  Op = "text"
	OpNone  Op = "none"
)

// Filter is a predicate tree over stored documents. It is plain data so that
// authorization fragments can be cached out of process as JSON.
//
// In matches when the document field equals any value. When the field holds
// a list, In matches when any element equals any value, which is how
// "participant list contains caller" is expressed.
type Filter struct {
	Op       Op       `json:"op"`
	Field    string   `json:"field,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	Values   []any    `json:"values,omitempty"`
	Min      any      `json:"min,omitempty"`
	Max      any      `json:"max,omitempty"`
	Text     string   `json:"text,omitempty"`
	Children []Filter `json:"children,omitempty"`
}

// All matches every document.
func All() Filter { return Filter{Op: OpAll} }

// None matches no document.
func None() Filter { return Filter{Op: OpNone} }

// Eq matches documents whose field equals (or, for lists, contains) v.
func Eq(field string, v any) Filter {
	return Filter{Op: OpIn, Field: field, Values: []any{normalize(v)}}
}

// In matches documents whose field equals (or contains) any of values.
func In[V any](field string, values ...V) Filter {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	return Filter{Op: OpIn, Field: field, Values: out}
}

// Range matches documents whose field lies in [min, max]. A nil bound is open.
func Range(field string, minV, maxV any) Filter {
	return Filter{Op: OpRange, Field: field, Min: normalize(minV), Max: normalize(maxV)}
}

// Text matches documents where any of fields contains text, ignoring case
// and Unicode normalization differences.
func Text(text string, fields ...string) Filter {
	return Filter{Op: OpText, Fields: fields, Text: text}
}

// And combines filters conjunctively, dropping match-all children.
func And(filters ...Filter) Filter {
	children := make([]Filter, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case OpAll, "":
			continue
		case OpNone:
			return None()
		case OpAnd:
			children = append(children, f.Children...)
		default:
			children = append(children, f)
		}
	}
	switch len(children) {
	case 0:
		return All()
	case 1:
		return children[0]
	}
	return Filter{Op: OpAnd, Children: children}
}

// Or combines filters disjunctively.
func Or(filters ...Filter) Filter {
	children := make([]Filter, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case OpAll, "":
			return All()
		case OpNone:
			continue
		default:
			children = append(children, f)
		}
	}
	switch len(children) {
	case 0:
		return None()
	case 1:
		return children[0]
	}
	return Filter{Op: OpOr, Children: children}
}

// FieldNames returns every document field the filter references.
func (f Filter) FieldNames() []string {
	var names []string
	var walk func(Filter)
	walk = func(n Filter) {
		if n.Field != "" {
			names = append(names, n.Field)
		}
		names = append(names, n.Fields...)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(f)
	slices.Sort(names)
	return slices.Compact(names)
}

// IDs reports the identifier set the filter is restricted to, if the filter
// is an id In node or a conjunction containing one. Backends use it for
// point reads instead of a scan.
func (f Filter) IDs() ([]string, bool) {
	switch f.Op {
	case OpIn:
		if f.Field != "id" {
			return nil, false
		}
		ids := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
		return ids, true
	case OpAnd:
		for _, c := range f.Children {
			if ids, ok := c.IDs(); ok {
				return ids, true
			}
		}
	}
	return nil, false
}

// Match evaluates the filter against a decoded JSON document.
func (f Filter) Match(doc map[string]any) bool {
	switch f.Op {
	case OpAll, "":
		return true
	case OpNone:
		return false
	case OpAnd:
		for _, c := range f.Children {
			if !c.Match(doc) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range f.Children {
			if c.Match(doc) {
				return true
			}
		}
		return false
	case OpIn:
		return matchIn(doc[f.Field], f.Values)
	case OpRange:
		return matchRange(doc[f.Field], f.Min, f.Max)
	case OpText:
		needle := fold(f.Text)
		for _, field := range f.Fields {
			if containsText(doc[field], needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Contains matches documents whose list field holds v.
func Contains(field string, v any) Filter {
	return Eq(field, v)
}

// Matches evaluates the filter against an entity by way of its JSON form.
func (f Filter) Matches(entity any) (bool, error) {
	doc, err := Document(entity)
	if err != nil {
		return false, err
	}
	return f.Match(doc), nil
}

// Document returns the stored form of entity, as Match sees it.
func Document(entity any) (map[string]any, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	return doc, nil
}

func matchIn(v any, values []any) bool {
	if list, ok := v.([]any); ok {
		for _, el := range list {
			if matchIn(el, values) {
				return true
			}
		}
		return false
	}
	for _, want := range values {
		if equal(v, normalize(want)) {
			return true
		}
	}
	return false
}

func matchRange(v, minV, maxV any) bool {
	if v == nil {
		return false
	}
	if minV != nil {
		c, ok := compare(v, normalize(minV))
		if !ok || c < 0 {
			return false
		}
	}
	if maxV != nil {
		c, ok := compare(v, normalize(maxV))
		if !ok || c > 0 {
			return false
		}
	}
	return true
}

func containsText(v any, needle string) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(fold(t), needle)
	case []any:
		for _, el := range t {
			if containsText(el, needle) {
				return true
			}
		}
	}
	return false
}

// fold normalizes s for case-insensitive matching. A Caser carries state,
// so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, ok := compare(a, b)
	return ok && c == 0
}

// compare orders two normalized values. Strings that both parse as RFC 3339
// timestamps compare chronologically.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		if x == y {
			return 0, true
		}
		if tx, err := time.Parse(time.RFC3339Nano, x); err == nil {
			if ty, err := time.Parse(time.RFC3339Nano, y); err == nil {
				return tx.Compare(ty), true
			}
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// normalize maps Go values onto the types encoding/json produces when
// decoding into any, so filter values compare against stored documents.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, float64, bool:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return nil
		}
		return f
	}
	return v
}
