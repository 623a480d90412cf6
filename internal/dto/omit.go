package dto

import (
	"reflect"
	"strings"
	"sync"
)

var jsonFields sync.Map // reflect.Type -> map[string]int

// Omit clears the fields of the DTO v points to whose JSON names are in
// names, so they are left out of the response. Unknown names are ignored.
func Omit(v any, names ...string) {
	if len(names) == 0 {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}
	elem := rv.Elem()
	index := fieldIndex(elem.Type())
	for _, name := range names {
		if i, ok := index[name]; ok {
			f := elem.Field(i)
			f.Set(reflect.Zero(f.Type()))
		}
	}
}

func fieldIndex(t reflect.Type) map[string]int {
	if cached, ok := jsonFields.Load(t); ok {
		return cached.(map[string]int)
	}
	index := make(map[string]int, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			index[name] = i
		}
	}
	jsonFields.Store(t, index)
	return index
}
