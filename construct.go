package nasc

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/toutaio/toutago-nasc-assembler/introspect"
)

var errNilInstance = errors.New("constructor returned nil")

// build constructs concrete, caches it when cache is set, then populates
// its fields and runs its hooks. concrete stays on the path until build
// returns.
func (n *Nasc) build(s *session, concrete reflect.Type, cache bool) (reflect.Value, error) {
	s.push(concrete)
	defer s.pop()

	n.trace(s, concrete, "constructing", logrus.Fields{"cached": cache})

	v, err := n.construct(s, concrete)
	if err != nil {
		return reflect.Value{}, err
	}
	n.stats.constructed.Inc(1)

	if cache && n.singletons.put(concrete, v.Interface()) {
		s.inserted = append(s.inserted, concrete)
	}

	if err := n.populate(s, v); err != nil {
		return reflect.Value{}, err
	}
	if err := n.runHooks(concrete, v); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// construct instantiates concrete with its declared constructor, or as a
// zero struct when it has none.
func (n *Nasc) construct(s *session, concrete reflect.Type) (reflect.Value, error) {
	if ctor, ok := n.introspector.InjectableConstructor(concrete); ok {
		return n.invoke(s, concrete, ctor)
	}

	if concrete.Kind() != reflect.Ptr || concrete.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, &ResolutionError{
			Type:    concrete,
			Context: "type is not a pointer to struct and has no declared constructor",
		}
	}
	return reflect.New(concrete.Elem()), nil
}

// invoke resolves the constructor's parameters in order and calls it.
func (n *Nasc) invoke(s *session, concrete reflect.Type, ctor *introspect.Constructor) (out reflect.Value, err error) {
	args := make([]reflect.Value, len(ctor.Params))
	for i, p := range ctor.Params {
		member := fmt.Sprintf("arg%d", i)
		site := siteName(concrete, member)

		if p.Name != "" {
			if value, ok := n.registry.Keyed(p.Name); ok {
				arg, ok := valueOf(value, p.Type)
				if !ok {
					return reflect.Value{}, &AssignmentError{Owner: concrete, Field: member, Want: p.Type, Got: reflect.TypeOf(value)}
				}
				args[i] = arg
				continue
			}
		}

		value, err := n.resolve(s, p.Type, site)
		if err != nil {
			return reflect.Value{}, err
		}
		arg, ok := valueOf(value, p.Type)
		if !ok {
			return reflect.Value{}, &AssignmentError{Owner: concrete, Field: member, Want: p.Type, Got: reflect.TypeOf(value)}
		}
		args[i] = arg
	}

	defer func() {
		if r := recover(); r != nil {
			out = reflect.Value{}
			err = &ConstructionError{Type: concrete, Op: "construct", Cause: errors.Errorf("panic: %v", r)}
		}
	}()

	results := ctor.Fn.Call(args)
	if ctor.ReturnsError && !results[1].IsNil() {
		return reflect.Value{}, &ConstructionError{Type: concrete, Op: "construct", Cause: results[1].Interface().(error)}
	}
	if results[0].IsNil() {
		return reflect.Value{}, &ConstructionError{Type: concrete, Op: "construct", Cause: errNilInstance}
	}
	return results[0], nil
}

// runHooks runs the post-processor and then Initialize.
func (n *Nasc) runHooks(t reflect.Type, v reflect.Value) error {
	instance := v.Interface()

	if n.postProcessor != nil {
		if err := n.postProcessor.Apply(instance); err != nil {
			return &ConstructionError{Type: t, Op: "post-process", Cause: err}
		}
	}

	if !n.introspector.IsInitializer(t) {
		return nil
	}
	initializer, ok := instance.(Initializable)
	if !ok {
		return nil
	}
	if err := initializer.Initialize(); err != nil {
		return &ConstructionError{Type: t, Op: "initialize", Cause: err}
	}
	return nil
}

// valueOf converts a resolved or keyed value to an argument of type want.
func valueOf(value any, want reflect.Type) (reflect.Value, bool) {
	if value == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, false
	}
	return v, true
}
