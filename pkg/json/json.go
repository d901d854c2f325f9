// Package json wraps goccy/go-json behind the small surface the rest of the
// codebase needs, so the JSON implementation stays swappable in one place.
package json

import (
	gojson "github.com/goccy/go-json"
)

// Marshal serializes v to JSON.
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// MarshalIndent serializes v to indented JSON.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// Unmarshal deserializes JSON data into v.
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// Valid reports whether data is syntactically valid JSON.
func Valid(data []byte) bool {
	return gojson.Valid(data)
}
