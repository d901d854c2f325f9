// Package configs defines the typed configuration objects that serialize into
// the key/value mapping consumed by dbt's profiles.yml, and the flattening
// algorithm that produces it.
//
// A configuration object is a Node: an ordered list of declared fields, zero
// or more nested sub-objects (credentials, extras), and per-variant field
// metadata (include/exclude/nested lists) supplied as data. Flatten merges
// the whole tree into one flat mapping, rejecting duplicate keys and
// unwrapping secret values only at the point of emission.
package configs

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/robfreedy/dbtprofiles/pkg/secret"
)

// Field is a single named configuration value. Descriptor lists keep
// declaration order so duplicate-key errors are deterministic.
type Field struct {
	Name  string
	Value interface{}
}

// FieldSchema is the per-variant field metadata driving Flatten.
//
// When Include is non-empty, only the listed fields (plus Nested) participate
// in flattening; otherwise every field the node carries does. Exclude always
// wins, at every nesting level, which is how internal markers carried by
// nested objects (the credentials `adapter` discriminator) are suppressed.
type FieldSchema struct {
	Include []string
	Exclude []string
	Nested  []string
}

// Node is a typed configuration object that can be flattened.
type Node interface {
	FieldSchema() FieldSchema
	ConfigFields() []Field
}

// DuplicateKeyError reports a key emitted twice during one flatten,
// regardless of which nesting level produced either occurrence.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("the keyword %q has already been provided in the target configs; remove duplicated keywords to continue", e.Key)
}

// Flatten produces the flat key/value mapping for node.
//
// Keys with a leading underscore or listed in Exclude are skipped, trailing
// underscores are stripped from every emitted key, nil values are never
// emitted, nested fields are merged recursively, and secrets are unwrapped to
// their plaintext form. A duplicate emitted key aborts the whole flatten with
// a DuplicateKeyError and no partial result. The input tree is never mutated.
func Flatten(node Node) (map[string]interface{}, error) {
	schema := node.FieldSchema()
	fields := node.ConfigFields()

	if len(schema.Include) > 0 {
		working := make(map[string]struct{}, len(schema.Include)+len(schema.Nested))
		for _, name := range schema.Include {
			working[name] = struct{}{}
		}
		for _, name := range schema.Nested {
			working[name] = struct{}{}
		}

		subset := make([]Field, 0, len(fields))
		for _, f := range fields {
			if _, ok := working[f.Name]; ok {
				subset = append(subset, f)
			}
		}
		fields = subset
	}

	acc := make(map[string]interface{})
	if err := populate(acc, fields, schema); err != nil {
		return nil, err
	}
	return acc, nil
}

// populate recursively merges fields into acc under the rules of schema.
// The outer node's schema governs the entire recursion: a nested object's
// fields are filtered against the same exclude and nested lists.
func populate(acc map[string]interface{}, fields []Field, schema FieldSchema) error {
	for _, f := range fields {
		if strings.HasPrefix(f.Name, "_") || contains(schema.Exclude, f.Name) {
			continue
		}

		key := strings.TrimRight(f.Name, "_")
		if isNil(f.Value) {
			continue
		}

		if contains(schema.Nested, key) {
			nested, err := nestedFields(key, f.Value)
			if err != nil {
				return err
			}
			if err := populate(acc, nested, schema); err != nil {
				return err
			}
			continue
		}

		if _, exists := acc[key]; exists {
			return &DuplicateKeyError{Key: key}
		}

		value, _ := secret.Reveal(f.Value)
		acc[key] = deref(value)
	}
	return nil
}

// nestedFields turns a nested value into a descriptor list: a sub-Node
// contributes its own runtime fields, a plain mapping (the open extras map)
// is used as-is, in sorted key order.
func nestedFields(key string, value interface{}) ([]Field, error) {
	switch v := value.(type) {
	case Node:
		return v.ConfigFields(), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := make([]Field, 0, len(v))
		for _, k := range keys {
			fields = append(fields, Field{Name: k, Value: v[k]})
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("nested field %q must be a config object or a string-keyed mapping, got %T", key, value)
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// isNil reports whether v is absent: an untyped nil or a typed nil pointer,
// map, slice, or interface arriving through an interface value.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// deref unwraps a non-nil pointer so optional scalar fields emit their value,
// not a pointer to it.
func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}
