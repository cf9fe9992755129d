package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names of T's "db" tags, walking
// embedded structs (entity.BaseEntity) first-to-last.
//
//	columns := ExtractDBColumns[product.Product]()
//	// ["id", "version", "created_at", "updated_at", "code", "name", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))
	cols := make([]string, 0, len(meta))
	for _, f := range meta {
		cols = append(cols, f.column)
	}
	return cols
}

// column is a db-tagged field reached through a (possibly embedded) index path.
type column struct {
	column string
	index  []int
}

var typeCache sync.Map // map[reflect.Type][]column

func metadataFor(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.([]column)
	}
	cols := collectColumns(t, nil)
	typeCache.Store(t, cols)
	return cols
}

func collectColumns(t reflect.Type, prefix []int) []column {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous {
			cols = append(cols, collectColumns(field.Type, path)...)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{column: tag, index: path})
	}
	return cols
}

// StructToMap converts a struct to a column/value map using "db" tags.
// Type metadata is cached, so repeated calls for the same type skip reflection
// over the struct definition.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta))
	for _, f := range meta {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}
