// Package registry keeps the schemas of an application's collections by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/definition"
)

var (
	// ErrCollectionExists is returned when a name is registered twice.
	ErrCollectionExists = errors.New("registry: collection already registered")
	// ErrCollectionNotFound is returned for unknown names.
	ErrCollectionNotFound = errors.New("registry: collection not found")
)

// Registry is safe for concurrent use. Registered results are shared, not
// copied; callers must treat them as read-only.
type Registry struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	schemas map[string]*docskema.Result
}

// New returns an empty registry. A nil logger disables logging.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger, schemas: make(map[string]*docskema.Result)}
}

// Register adds the schema of collection name.
func (r *Registry) Register(name string, res *docskema.Result) error {
	if name == "" {
		return fmt.Errorf("registry: empty collection name")
	}
	if res == nil {
		return fmt.Errorf("registry: nil schema for collection %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[name]; exists {
		return fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	r.schemas[name] = res
	r.logger.Debug("registered collection schema",
		zap.String("collection", name),
		zap.Strings("fields", res.Descriptor.PropertyNames()),
		zap.String("validationAction", res.ValidationAction.String()),
		zap.String("validationLevel", res.ValidationLevel.String()),
	)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, res *docskema.Result) {
	if err := r.Register(name, res); err != nil {
		panic(err)
	}
}

// Get returns the schema of collection name.
func (r *Registry) Get(name string) (*docskema.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return res, nil
}

// List returns the registered collection names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered collections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// LoadDefinitions builds and registers every collection. It stops at the
// first failure; collections registered before it stay registered.
func (r *Registry) LoadDefinitions(cs []definition.Collection) error {
	for _, c := range cs {
		res, err := c.Build()
		if err != nil {
			r.logger.Error("failed to build collection schema", zap.String("collection", c.Name), zap.Error(err))
			return fmt.Errorf("registry: build %s: %w", c.Name, err)
		}
		if err := r.Register(c.Name, res); err != nil {
			return err
		}
	}
	r.logger.Info("loaded collection definitions", zap.Int("count", len(cs)))
	return nil
}

// Replace builds every collection and, only when all of them succeed, swaps
// them in for the current contents. On error the registry is unchanged.
func (r *Registry) Replace(cs []definition.Collection) error {
	next := make(map[string]*docskema.Result, len(cs))
	for _, c := range cs {
		res, err := c.Build()
		if err != nil {
			r.logger.Error("failed to build collection schema", zap.String("collection", c.Name), zap.Error(err))
			return fmt.Errorf("registry: build %s: %w", c.Name, err)
		}
		if _, dup := next[c.Name]; dup {
			return fmt.Errorf("%w: %s", ErrCollectionExists, c.Name)
		}
		next[c.Name] = res
	}
	r.mu.Lock()
	r.schemas = next
	r.mu.Unlock()
	r.logger.Info("replaced collection definitions", zap.Int("count", len(next)))
	return nil
}
