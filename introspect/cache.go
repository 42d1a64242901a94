package introspect

import (
	"reflect"
	"sync"
)

// fieldCache caches injectable-field metadata to avoid repeated type analysis.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]Field
}

func newFieldCache() *fieldCache {
	return &fieldCache{
		fields: make(map[reflect.Type][]Field),
	}
}

// get retrieves or computes the injectable fields of a struct type.
func (fc *fieldCache) get(typ reflect.Type) []Field {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	// Fast path: check cache with read lock
	fc.mu.RLock()
	fields, exists := fc.fields[typ]
	fc.mu.RUnlock()

	if exists {
		return fields
	}

	// Slow path: compute and cache with write lock
	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Double-check after acquiring write lock
	if fields, exists = fc.fields[typ]; exists {
		return fields
	}

	fields = scanFields(typ)
	fc.fields[typ] = fields
	return fields
}

func (fc *fieldCache) len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.fields)
}

// scanFields walks a struct type and keeps exported fields with an inject tag.
func scanFields(typ reflect.Type) []Field {
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var fields []Field
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)

		tag, hasTag := sf.Tag.Lookup(TagName)
		if !hasTag || sf.PkgPath != "" {
			continue
		}

		opts := parseInjectTag(tag)
		if opts.skip {
			continue
		}

		fields = append(fields, Field{
			Index:     i,
			Name:      sf.Name,
			Type:      sf.Type,
			Qualifier: opts.qualifier(sf.Name),
			Lazy:      opts.lazy,
			Optional:  opts.optional,
		})
	}

	return fields
}
