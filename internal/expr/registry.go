package expr

import (
	"fmt"
	"sort"

	"github.com/roach88/tactica/internal/pred"
)

// LeafFactory builds a leaf predicate from the node's args.
// args is nil when the node has none.
type LeafFactory[T, C any] func(args map[string]any) (pred.Pred[T, C], error)

// Static returns a factory for a leaf that takes no args.
func Static[T, C any](p pred.Pred[T, C]) LeafFactory[T, C] {
	return func(args map[string]any) (pred.Pred[T, C], error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("takes no args, got %d", len(args))
		}
		return p, nil
	}
}

// Registry maps leaf names to factories.
//
// A registry is populated once at startup and read afterwards; it is not
// safe for concurrent Register calls.
type Registry[T, C any] struct {
	leaves map[string]LeafFactory[T, C]
}

// NewRegistry creates an empty registry.
func NewRegistry[T, C any]() *Registry[T, C] {
	return &Registry[T, C]{leaves: make(map[string]LeafFactory[T, C])}
}

// Register adds a factory. Registering a name twice replaces the factory.
func (r *Registry[T, C]) Register(name string, f LeafFactory[T, C]) *Registry[T, C] {
	r.leaves[name] = f
	return r
}

// Lookup returns the factory for name.
func (r *Registry[T, C]) Lookup(name string) (LeafFactory[T, C], bool) {
	f, ok := r.leaves[name]
	return f, ok
}

// Names returns the registered leaf names, sorted.
func (r *Registry[T, C]) Names() []string {
	names := make([]string, 0, len(r.leaves))
	for name := range r.leaves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IntArg reads an integer argument. YAML decodes integers as int and CUE as
// int64 or float64, so all three are accepted.
func IntArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("arg %q must be an integer, got %v", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("arg %q must be an integer, got %T", key, v)
	}
}

// StringArg reads a string argument.
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q must be a string, got %T", key, v)
	}
	return s, nil
}
