package nasc

import (
	"reflect"
	"sync"

	"github.com/toutaio/toutago-nasc-assembler/registry"
)

// singletonCache maps a concrete type to its one canonical instance.
// Explicit registrations and engine insertions share the map.
type singletonCache struct {
	instances map[reflect.Type]any
	mu        sync.RWMutex
}

// newSingletonCache creates a new singleton cache.
func newSingletonCache() *singletonCache {
	return &singletonCache{
		instances: make(map[reflect.Type]any),
	}
}

// register stores an explicitly registered instance. A type already present,
// whether registered or built, is a duplicate.
//
// This method is goroutine-safe.
func (sc *singletonCache) register(t reflect.Type, instance any) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, exists := sc.instances[t]; exists {
		return &registry.DuplicateBindingError{Kind: registry.KindInstance, Type: t}
	}
	sc.instances[t] = instance
	return nil
}

// get returns the canonical instance for t.
func (sc *singletonCache) get(t reflect.Type) (any, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	instance, exists := sc.instances[t]
	return instance, exists
}

// put inserts a freshly constructed instance. It reports false, leaving the
// cache unchanged, if t already has an instance.
func (sc *singletonCache) put(t reflect.Type, instance any) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, exists := sc.instances[t]; exists {
		return false
	}
	sc.instances[t] = instance
	return true
}

// evict removes t, used to roll back a failed resolution.
func (sc *singletonCache) evict(t reflect.Type) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	delete(sc.instances, t)
}

func (sc *singletonCache) len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.instances)
}
