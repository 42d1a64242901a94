// Package registry provides thread-safe storage for explicit bindings:
// values registered under a string key and interface-to-implementation
// mappings. Every key and every interface may be bound at most once.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Binding kinds reported by DuplicateBindingError.
const (
	KindKey            = "key"
	KindInstance       = "instance"
	KindImplementation = "implementation"
)

// DuplicateBindingError is returned when a key, a concrete type or an
// interface is registered a second time. Registrations are never overwritten.
type DuplicateBindingError struct {
	Kind string
	Key  string
	Type reflect.Type
}

func (e *DuplicateBindingError) Error() string {
	if e.Kind == KindKey {
		return fmt.Sprintf("binding already exists for key %q", e.Key)
	}
	return fmt.Sprintf("%s binding already exists for type %v", e.Kind, e.Type)
}

// Registry holds keyed values and interface bindings.
// It uses maps keyed by string and reflect.Type for O(1) lookups.
type Registry struct {
	mu         sync.RWMutex
	keyed      map[string]any
	interfaces map[reflect.Type]reflect.Type
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		keyed:      make(map[string]any),
		interfaces: make(map[reflect.Type]reflect.Type),
	}
}

// RegisterKeyed stores value under key.
// The value is not checked against any consumer; a mismatch surfaces when a
// field or parameter qualified with key is assigned.
//
// This method is goroutine-safe.
func (r *Registry) RegisterKeyed(key string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keyed[key]; exists {
		return &DuplicateBindingError{Kind: KindKey, Key: key}
	}

	r.keyed[key] = value
	return nil
}

// RegisterInterface maps an interface type to the concrete type that should
// be built for it. Whether impl actually satisfies iface is not checked here.
//
// This method is goroutine-safe.
func (r *Registry) RegisterInterface(iface, impl reflect.Type) error {
	if iface == nil || impl == nil {
		return fmt.Errorf("interface binding requires both types, got %v -> %v", iface, impl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.interfaces[iface]; exists {
		return &DuplicateBindingError{Kind: KindImplementation, Type: iface}
	}

	r.interfaces[iface] = impl
	return nil
}

// Keyed returns the value registered under key.
//
// This method is goroutine-safe.
func (r *Registry) Keyed(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.keyed[key]
	return value, exists
}

// Implementation returns the concrete type explicitly bound to iface.
//
// This method is goroutine-safe.
func (r *Registry) Implementation(iface reflect.Type) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	impl, exists := r.interfaces[iface]
	return impl, exists
}

// Keys returns all bound keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.keyed))
	for k := range r.keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interfaces returns all interfaces with an explicit binding, sorted by name.
func (r *Registry) Interfaces() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]reflect.Type, 0, len(r.interfaces))
	for t := range r.interfaces {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}
