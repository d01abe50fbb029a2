package core

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultSchemaKey is used when a request does not name a schema.
var DefaultSchemaKey = "beneficiary"

var (
	registry   = make(map[string]Schema)
	registryMu sync.RWMutex
)

// Register adds a schema to the registry.
// Panics if the key or key column is empty, if a schema with the same key
// is already registered, or if a column is declared more than once.
func Register(s Schema) {
	if s.Key == "" || s.KeyColumn == "" {
		panic("schema key and key column are required")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Key]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Key))
	}

	seen := make(map[string]FieldType, len(s.Fields))
	for _, f := range s.Fields {
		if prev, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: column %q declared as both %s and %s", s.Key, f.Name, prev, f.Type))
		}
		if f.Type != FieldText && f.Type != FieldNumeric && f.Type != FieldDate {
			panic(fmt.Sprintf("schema %s: column %q has unknown type %d", s.Key, f.Name, f.Type))
		}
		seen[f.Name] = f.Type
	}

	label := s.Label
	s = NewSchema(s.Key, s.KeyColumn, s.Fields...)
	s.Label = label

	registry[s.Key] = s
}

// Get returns a schema by key.
// An empty key resolves to DefaultSchemaKey.
func Get(key string) (Schema, bool) {
	if key == "" {
		key = DefaultSchemaKey
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[key]
	return s, ok
}

// Default returns the built-in schema used when a request names none.
func Default() (Schema, bool) {
	return Get(DefaultSchemaKey)
}

// All returns all registered schemas sorted by key.
func All() []Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Schema)
}

// NewSchema builds a standalone schema with its lookup sets populated,
// without registering it.
func NewSchema(key, keyColumn string, fields ...FieldSpec) Schema {
	s := Schema{
		Key:       key,
		KeyColumn: keyColumn,
		Fields:    append([]FieldSpec(nil), fields...),
		text:      make(map[string]struct{}),
		numeric:   make(map[string]struct{}),
		date:      make(map[string]struct{}),
	}
	for _, f := range fields {
		switch f.Type {
		case FieldText:
			s.text[f.Name] = struct{}{}
		case FieldNumeric:
			s.numeric[f.Name] = struct{}{}
		case FieldDate:
			s.date[f.Name] = struct{}{}
		}
	}
	return s
}
