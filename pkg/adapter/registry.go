// Package adapter manages warehouse adapter registration and credentials
// construction. Adapter packages register themselves from init(), so a
// binary opts into an adapter with a blank import:
//
//	import _ "github.com/robfreedy/dbtprofiles/pkg/adapter/postgres"
//
// Constructing configs for an adapter that was never imported fails
// immediately with a MissingCapabilityError naming the import to add.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
	"github.com/robfreedy/dbtprofiles/pkg/logger"
)

// Credentials is a warehouse-specific nested config object. Beyond
// flattening into the target's mapping, credentials know how to reach their
// warehouse for connection debugging.
type Credentials interface {
	configs.Node
	Ping(ctx context.Context) error
}

// Factory builds adapter credentials from the raw mapping of a credentials
// block, applying defaults and validating at construction time.
type Factory func(raw map[string]interface{}) (Credentials, error)

// MissingCapabilityError reports a request for an adapter whose package was
// never linked into the binary.
type MissingCapabilityError struct {
	Adapter string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf(
		"%s adapter is not registered; add `import _ %q` to your main package to enable it",
		e.Adapter, "github.com/robfreedy/dbtprofiles/pkg/adapter/"+e.Adapter,
	)
}

// Registry manages adapter factory registration and lookup.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers an adapter credentials factory.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return dbterrors.Newf(dbterrors.ErrorTypeConfig, "adapter %s already registered", name)
	}

	r.factories[name] = factory
	// Fetched per call: registration runs from adapter package init, before
	// the binary has had a chance to configure the logger.
	logger.Get().Debug("adapter registered",
		zap.String("component", "adapter_registry"),
		zap.String("name", name))
	return nil
}

// Credentials builds credentials for the named adapter from a raw mapping.
func (r *Registry) Credentials(name string, raw map[string]interface{}) (Credentials, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, &MissingCapabilityError{Adapter: name}
	}

	creds, err := factory(raw)
	if err != nil {
		return nil, dbterrors.Wrap(err, dbterrors.ErrorTypeConfig, fmt.Sprintf("failed to build %s credentials", name))
	}

	return creds, nil
}

// NewTargetConfigs constructs a credentials-backed TargetConfigs for the
// named adapter. Unknown adapters fail here, at construction, never later in
// the flattening path.
func (r *Registry) NewTargetConfigs(name, schema string, raw map[string]interface{}) (*configs.TargetConfigs, error) {
	creds, err := r.Credentials(name, raw)
	if err != nil {
		return nil, err
	}

	t := configs.NewTargetConfigs(name, schema)
	t.Credentials = creds
	return t, nil
}

// List returns the registered adapter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register registers an adapter factory in the global registry.
func Register(name string, factory Factory) error {
	return globalRegistry.Register(name, factory)
}

// MustRegister registers an adapter factory and panics on failure; for use
// from adapter package init functions.
func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// NewCredentials builds credentials for the named adapter from the global
// registry.
func NewCredentials(name string, raw map[string]interface{}) (Credentials, error) {
	return globalRegistry.Credentials(name, raw)
}

// NewTargetConfigs constructs a credentials-backed TargetConfigs using the
// global registry.
func NewTargetConfigs(name, schema string, raw map[string]interface{}) (*configs.TargetConfigs, error) {
	return globalRegistry.NewTargetConfigs(name, schema, raw)
}

// List returns the adapters registered in the global registry, sorted.
func List() []string {
	return globalRegistry.List()
}

// Ping opens a connection to the target's warehouse through its credentials.
func Ping(ctx context.Context, t *configs.TargetConfigs) error {
	if t.Credentials == nil {
		return dbterrors.Newf(dbterrors.ErrorTypeConfig, "target configs for %s carry no credentials to connect with", t.Type)
	}
	creds, ok := t.Credentials.(Credentials)
	if !ok {
		return dbterrors.Newf(dbterrors.ErrorTypeCapability, "%s credentials do not support connection checks", t.Type)
	}
	return creds.Ping(ctx)
}
