package nasc

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/toutaio/toutago-nasc-assembler/introspect"
)

// populate injects every field the introspector reports for v's type, in
// declaration order. v is a pointer to struct.
func (n *Nasc) populate(s *session, v reflect.Value) error {
	owner := v.Type()
	elem := v.Elem()

	for _, f := range n.introspector.InjectableFields(owner) {
		site := siteName(owner, f.Name)
		mark := len(s.inserted)

		err := n.injectField(s, owner, elem.Field(f.Index), f, site)
		if err == nil {
			continue
		}
		if f.Optional && unsatisfiable(err) {
			n.rollback(s, mark)
			n.trace(s, f.Type, "optional dependency left unset", logrus.Fields{"site": site, "reason": err.Error()})
			continue
		}
		return err
	}
	return nil
}

// injectField resolves and assigns a single field.
func (n *Nasc) injectField(s *session, owner reflect.Type, fv reflect.Value, f introspect.Field, site string) error {
	if f.Lazy {
		return n.injectLazy(s, owner, fv, f, site)
	}

	if f.Qualifier != "" {
		if value, ok := n.registry.Keyed(f.Qualifier); ok {
			return assign(owner, fv, f, value)
		}
	}

	target, err := n.concreteType(f.Type)
	if err != nil {
		return err
	}
	cached, isCached := n.singletons.get(target)

	if s.onPath(target) {
		if isCached && n.lenientCycles {
			n.trace(s, target, "back edge to cached ancestor", logrus.Fields{"site": site})
			return assign(owner, fv, f, cached)
		}
		return s.cycle(target, site)
	}

	// Interface fields get their own implementation instance, never the
	// canonical one.
	if f.Type.Kind() == reflect.Interface {
		built, err := n.build(s, target, false)
		if err != nil {
			return err
		}
		return assign(owner, fv, f, built.Interface())
	}

	if isCached {
		n.stats.cacheHits.Inc(1)
		return assign(owner, fv, f, cached)
	}

	value, err := n.resolve(s, target, site)
	if err != nil {
		return err
	}
	return assign(owner, fv, f, value)
}

var errMalformedLazy = errors.New("lazy fields must be of type *nasc.Lazy[T]")

// injectLazy installs a fresh *Lazy[T] handle in fv. A keyed binding for the
// field's qualifier resolves the handle immediately; otherwise the handle
// resolves T through the container on first Get.
func (n *Nasc) injectLazy(s *session, owner reflect.Type, fv reflect.Value, f introspect.Field, site string) error {
	if f.Type.Kind() != reflect.Ptr || !f.Type.Implements(deferredType) {
		return &ResolutionError{
			Type:  owner,
			Name:  f.Name,
			Cause: errors.Wrapf(errMalformedLazy, "got %v", f.Type),
		}
	}

	handle := reflect.New(f.Type.Elem())
	d := handle.Interface().(deferred)

	if f.Qualifier != "" {
		if value, ok := n.registry.Keyed(f.Qualifier); ok {
			if err := d.set(value); err != nil {
				return &AssignmentError{Owner: owner, Field: f.Name, Want: d.target(), Got: reflect.TypeOf(value)}
			}
			fv.Set(handle)
			return nil
		}
	}

	target := d.target()
	d.bind(func() (any, error) {
		return n.resolveDeferred(target, site)
	})
	fv.Set(handle)

	n.trace(s, target, "deferred", logrus.Fields{"site": site})
	return nil
}

func assign(owner reflect.Type, fv reflect.Value, f introspect.Field, value any) error {
	v, ok := valueOf(value, f.Type)
	if !ok {
		return &AssignmentError{Owner: owner, Field: f.Name, Want: f.Type, Got: reflect.TypeOf(value)}
	}
	fv.Set(v)
	return nil
}

// unsatisfiable reports whether err means the dependency cannot be built at
// all, as opposed to a failure while building it. A malformed lazy field is
// a declaration error and never unsatisfiable.
func unsatisfiable(err error) bool {
	if errors.Is(err, errMalformedLazy) {
		return false
	}
	var unbound *UnboundInterfaceError
	if errors.As(err, &unbound) {
		return true
	}
	var resolution *ResolutionError
	return errors.As(err, &resolution)
}
