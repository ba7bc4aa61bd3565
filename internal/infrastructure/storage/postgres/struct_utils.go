package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists the column names of T from its "db" tags.
// Embedded structs (entity.VersionedEntity, entity.Audit) are flattened and
// fields tagged "-" are skipped. Repositories call it once at construction.
//
//	cols := ExtractDBColumns[organization.Organization]()
//	// ["id", "unific_root_id", "publishing_status_id", ..., "parent_id", "business_code", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	meta := metadataOf(t)
	cols := make([]string, 0, len(meta.fields))
	for _, f := range meta.fields {
		if f.embedded != nil {
			cols = append(cols, columnsOf(f.embedded)...)
			continue
		}
		cols = append(cols, f.column)
	}
	return cols
}

// fieldInfo is either a mapped column or an embedded struct to descend into.
type fieldInfo struct {
	index    int
	column   string
	embedded reflect.Type
}

type typeMetadata struct {
	fields []fieldInfo
}

// metadata per struct type, computed on first use
var typeCache sync.Map // map[reflect.Type]*typeMetadata

func metadataOf(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				ft := field.Type
				if ft.Kind() == reflect.Ptr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					meta.fields = append(meta.fields, fieldInfo{index: i, embedded: ft})
				}
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, column: tag})
		}
	}

	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

// StructToMap converts a struct to a column map using "db" tags, in the
// same flattening as ExtractDBColumns. A nil embedded pointer contributes nothing.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	fillMap(rv, res)
	return res
}

func fillMap(rv reflect.Value, res map[string]any) {
	for _, f := range metadataOf(rv.Type()).fields {
		fv := rv.Field(f.index)
		if f.embedded == nil {
			res[f.column] = fv.Interface()
			continue
		}
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		fillMap(fv, res)
	}
}
