// Package nasc assembles object graphs in-process.
//
// Nasc (Old Irish: "Link" or "Bond") builds a fully wired instance of a type
// by resolving its constructor parameters and tagged fields transitively.
// Keyed values, interface bindings and lazy edges override the default
// resolution, and circular ownership is reported before it can recurse.
//
// Basic usage:
//
//	container := nasc.New(nasc.WithDefault((*Transport)(nil), (*SMTP)(nil)))
//	_ = container.RegisterKeyed("email", "ops@example.com")
//
//	mailer, err := nasc.Resolve[*Mailer](container)
package nasc

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/toutaio/toutago-nasc-assembler/introspect"
	"github.com/toutaio/toutago-nasc-assembler/registry"
)

// Initializable is implemented by types that need a post-construction hook.
// Initialize runs exactly once, after every field has been injected and the
// property post-processor has run.
type Initializable = introspect.Initializable

// PostProcessor receives every constructed or decorated instance after field
// injection, typically to copy values from an external configuration source.
type PostProcessor interface {
	Apply(instance any) error
}

// Nasc is the object-graph container.
// Registrations and lookups are goroutine-safe; construction is serialized so
// that each concrete type gets exactly one canonical instance.
type Nasc struct {
	id            string
	registry      *registry.Registry
	singletons    *singletonCache
	introspector  introspect.Introspector
	postProcessor PostProcessor
	lenientCycles bool

	logger  logrus.FieldLogger
	metrics metrics.Registry
	stats   *instruments

	// mu serializes construction across top-level calls. owner is the id
	// of the goroutine holding it and current the session it runs; a call
	// made by that goroutine while it holds mu (from a hook or a lazy
	// handle) joins current instead of locking again.
	mu      sync.Mutex
	owner   atomic.Int64
	current *session
}

// New creates a new Nasc container instance.
// Options can be provided to configure the container behavior.
//
// Example:
//
//	container := nasc.New()
//	// or with options:
//	container := nasc.New(nasc.WithDebug(), nasc.WithPropertiesFile("app.env"))
//
// New panics if an option fails, as a misconfigured container is a
// programming error.
func New(options ...Option) *Nasc {
	n := &Nasc{
		id:           uuid.NewString(),
		registry:     registry.New(),
		singletons:   newSingletonCache(),
		introspector: introspect.New(),
		logger:       logrus.New(),
		metrics:      metrics.NewRegistry(),
	}

	for _, opt := range options {
		if err := opt(n); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	n.stats = newInstruments(n.metrics)
	return n
}

// ID returns the container's unique identifier, used in log fields.
func (n *Nasc) ID() string {
	return n.id
}

// Metrics returns the registry holding the container's instruments.
func (n *Nasc) Metrics() metrics.Registry {
	return n.metrics
}

// Introspector returns the introspector the container consults.
func (n *Nasc) Introspector() introspect.Introspector {
	return n.introspector
}

// RegisterKeyed binds value under key for qualified fields and parameters.
// Registering the same key twice fails with *DuplicateBindingError, even
// with an identical value.
//
// Example:
//
//	container.RegisterKeyed("email", "ops@example.com")
func (n *Nasc) RegisterKeyed(key string, value any) error {
	if key == "" {
		return &InvalidBindingError{Reason: "key cannot be empty"}
	}
	return n.registry.RegisterKeyed(key, value)
}

// RegisterInstance registers instance as the canonical instance of its own
// dynamic type.
//
// Example:
//
//	container.RegisterInstance(&SMTPTransport{Host: "localhost"})
func (n *Nasc) RegisterInstance(instance any) error {
	if instance == nil {
		return &InvalidBindingError{Reason: "instance cannot be nil"}
	}
	return n.singletons.register(reflect.TypeOf(instance), instance)
}

// RegisterTyped registers instance as the canonical instance of the concrete
// type named by token.
//
// Example:
//
//	container.RegisterTyped((*Clock)(nil), &fakeClock{})
func (n *Nasc) RegisterTyped(token, instance any) error {
	t, err := typeOf(token)
	if err != nil {
		return err
	}
	if t.Kind() == reflect.Interface {
		return &InvalidBindingError{
			Reason: fmt.Sprintf("%v is an interface; register an implementation or an instance of the concrete type", t),
		}
	}
	if instance == nil {
		return &InvalidBindingError{Reason: "instance cannot be nil"}
	}
	if it := reflect.TypeOf(instance); !it.AssignableTo(t) {
		return &InvalidBindingError{Reason: fmt.Sprintf("instance of type %v is not assignable to %v", it, t)}
	}
	return n.singletons.register(t, instance)
}

// RegisterImplementation binds an interface to the concrete type built
// whenever the interface is requested. Both arguments are type tokens.
// Whether the implementation satisfies the interface is not checked here.
//
// Example:
//
//	container.RegisterImplementation((*Transport)(nil), (*SMTPTransport)(nil))
func (n *Nasc) RegisterImplementation(ifaceToken, implToken any) error {
	iface, err := typeOf(ifaceToken)
	if err != nil {
		return err
	}
	if iface.Kind() != reflect.Interface {
		return &InvalidBindingError{Reason: fmt.Sprintf("%v is not an interface", iface)}
	}
	impl, err := typeOf(implToken)
	if err != nil {
		return err
	}
	if impl.Kind() == reflect.Interface {
		return &InvalidBindingError{Reason: fmt.Sprintf("implementation %v must be a concrete type", impl)}
	}
	return n.registry.RegisterInterface(iface, impl)
}

// GetInstance resolves the type named by token, building and caching it and
// its dependencies on first use. Later calls return the same instance.
//
// Example:
//
//	instance, err := container.GetInstance((*Mailer)(nil))
//	mailer := instance.(*Mailer)
func (n *Nasc) GetInstance(token any) (any, error) {
	t, err := typeOf(token)
	if err != nil {
		return nil, err
	}
	return n.getInstance(t)
}

// GetKeyed returns the value registered under key. It never constructs.
func (n *Nasc) GetKeyed(key string) (any, bool) {
	return n.registry.Keyed(key)
}

// Keys returns the registered keys in sorted order.
func (n *Nasc) Keys() []string {
	return n.registry.Keys()
}

// Interfaces returns the interfaces with an explicit implementation binding,
// sorted by name.
func (n *Nasc) Interfaces() []reflect.Type {
	return n.registry.Interfaces()
}

// DecorateInstance injects the tagged fields of an existing *T and runs its
// hooks. The constructor is not called and obj is not cached.
//
// Example:
//
//	handler := &Handler{}
//	if err := container.DecorateInstance(handler); err != nil {
//	    return err
//	}
func (n *Nasc) DecorateInstance(obj any) error {
	if obj == nil {
		return &InvalidBindingError{Reason: "cannot decorate nil"}
	}
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Ptr || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return &InvalidBindingError{Reason: fmt.Sprintf("DecorateInstance requires a non-nil pointer to struct, got %T", obj)}
	}
	return n.decorate(value)
}

// typeOf turns a type token into the type it names: (*I)(nil) for an
// interface I names I, anything else names its own dynamic type.
func typeOf(token any) (reflect.Type, error) {
	if token == nil {
		return nil, &InvalidBindingError{Reason: "type token cannot be nil"}
	}
	t := reflect.TypeOf(token)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		return t.Elem(), nil
	}
	return t, nil
}

func (n *Nasc) tagIntrospector() (*introspect.Tags, error) {
	tags, ok := n.introspector.(*introspect.Tags)
	if !ok {
		return nil, &InvalidBindingError{
			Reason: fmt.Sprintf("declarations need the built-in introspector, container uses %T", n.introspector),
		}
	}
	return tags, nil
}

// trace logs a resolution step at debug level.
func (n *Nasc) trace(s *session, t reflect.Type, msg string, fields logrus.Fields) {
	if l, ok := n.logger.(*logrus.Logger); ok && !l.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	entry := n.logger.WithFields(logrus.Fields{
		"container": n.id,
		"type":      t.String(),
		"depth":     s.depth(),
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Debug(msg)
}
