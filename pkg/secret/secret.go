// Package secret provides a wrapper type for sensitive configuration values.
//
// A Secret renders as a redaction everywhere a value could leak (fmt verbs,
// JSON and YAML marshalling, zap's Stringer handling); the wrapped value is
// only reachable through Reveal, which callers invoke at the point of
// emission.
package secret

import (
	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Redacted is the placeholder emitted wherever a secret would otherwise leak.
const Redacted = "**********"

// Secret wraps a sensitive value of type T.
// The zero value reveals the zero value of T.
type Secret[T any] struct {
	value T
}

// String is a Secret wrapping a string.
type String = Secret[string]

// Bytes is a Secret wrapping a byte slice.
type Bytes = Secret[[]byte]

// New wraps a value.
func New[T any](value T) Secret[T] {
	return Secret[T]{value: value}
}

// Reveal returns the wrapped value.
func (s Secret[T]) Reveal() T {
	return s.value
}

// String implements fmt.Stringer, returning the redaction.
func (s Secret[T]) String() string {
	return Redacted
}

// GoString keeps %#v from leaking the wrapped value.
func (s Secret[T]) GoString() string {
	return Redacted
}

// MarshalJSON emits the redaction, never the wrapped value.
func (s Secret[T]) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(Redacted)
}

// UnmarshalJSON decodes a raw scalar into the secret.
func (s *Secret[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := gojson.Unmarshal(data, &v); err != nil {
		return err
	}
	s.value = v
	return nil
}

// MarshalYAML emits the redaction, never the wrapped value.
func (s Secret[T]) MarshalYAML() (interface{}, error) {
	return Redacted, nil
}

// UnmarshalYAML decodes a raw scalar into the secret, so credentials files
// can declare secret fields as plain values.
func (s *Secret[T]) UnmarshalYAML(node *yaml.Node) error {
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	s.value = v
	return nil
}

// revealer lets callers unwrap a secret without knowing its type parameter.
type revealer interface {
	revealAny() interface{}
}

func (s Secret[T]) revealAny() interface{} {
	return s.value
}

// Reveal unwraps v if it is a Secret of any type, reporting whether it was
// one. Non-secret values are returned unchanged.
func Reveal(v interface{}) (interface{}, bool) {
	if r, ok := v.(revealer); ok {
		return r.revealAny(), true
	}
	return v, false
}
