package introspect

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// Tags is the built-in Introspector. Fields are discovered from `inject`
// struct tags; constructors and default implementations are declared
// explicitly because Go types carry no annotations.
type Tags struct {
	mu           sync.RWMutex
	constructors map[reflect.Type]*Constructor
	defaults     map[reflect.Type]reflect.Type
	fields       *fieldCache
}

var _ Introspector = (*Tags)(nil)

// New creates an empty Tags introspector.
func New() *Tags {
	return &Tags{
		constructors: make(map[reflect.Type]*Constructor),
		defaults:     make(map[reflect.Type]reflect.Type),
		fields:       newFieldCache(),
	}
}

// DeclareConstructor marks fn as the injectable constructor of the type it
// returns. See ParseConstructor for accepted signatures and names.
func (t *Tags) DeclareConstructor(fn any, names ...string) error {
	ctor, err := ParseConstructor(fn, names...)
	if err != nil {
		return errors.Wrap(err, "invalid constructor")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.constructors[ctor.Out]; exists {
		return errors.Errorf("constructor already declared for %v", ctor.Out)
	}
	t.constructors[ctor.Out] = ctor
	return nil
}

// DeclareDefault records impl as the implementation used for iface when no
// explicit binding exists.
func (t *Tags) DeclareDefault(iface, impl reflect.Type) error {
	if iface == nil || impl == nil {
		return errors.New("default implementation requires both types")
	}
	if iface.Kind() != reflect.Interface {
		return errors.Errorf("default implementations can only be declared for interfaces, got %v", iface)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.defaults[iface]; exists {
		return errors.Errorf("default implementation already declared for %v", iface)
	}
	t.defaults[iface] = impl
	return nil
}

// InjectableConstructor implements Introspector.
func (t *Tags) InjectableConstructor(typ reflect.Type) (*Constructor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ctor, ok := t.constructors[typ]
	return ctor, ok
}

// InjectableFields implements Introspector.
func (t *Tags) InjectableFields(typ reflect.Type) []Field {
	return t.fields.get(typ)
}

// DefaultImplementation implements Introspector.
func (t *Tags) DefaultImplementation(iface reflect.Type) (reflect.Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	impl, ok := t.defaults[iface]
	return impl, ok
}

// IsInitializer implements Introspector.
func (t *Tags) IsInitializer(typ reflect.Type) bool {
	return typ.Implements(initializableType)
}
