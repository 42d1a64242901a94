package nasc

import (
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
)

// getInstance runs a caching top-level resolution of t.
func (n *Nasc) getInstance(t reflect.Type) (any, error) {
	var instance any
	err := n.run(newSession(true), func(s *session) error {
		v, err := n.resolve(s, t, "")
		instance = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// decorate populates the fields of an existing *T and runs its hooks.
// Neither v nor the instances built for its fields are cached.
func (n *Nasc) decorate(v reflect.Value) error {
	return n.run(newSession(false), func(s *session) error {
		t := v.Type()
		s.push(t)
		defer s.pop()

		n.trace(s, t, "decorating instance", nil)
		if err := n.populate(s, v); err != nil {
			return err
		}
		return n.runHooks(t, v)
	})
}

// run executes fn as one top-level call: it holds the construction lock
// and rolls back the cache if fn fails. Called again by the goroutine that
// holds the lock, it joins the running call instead.
func (n *Nasc) run(s *session, fn func(*session) error) (err error) {
	gid := goroutineID()
	if gid != 0 && n.owner.Load() == gid {
		return n.join(s, fn)
	}

	start := time.Now()
	n.mu.Lock()
	n.owner.Store(gid)
	n.current = s
	defer func() {
		if err != nil {
			n.rollback(s, 0)
		}
		n.current = nil
		n.owner.Store(0)
		n.mu.Unlock()
		n.stats.observe(start, err)
	}()

	return fn(s)
}

// join runs fn on a fresh path inside the call that holds the lock. On
// success the instances s cached are handed to that call, so a later failure
// there evicts them too.
func (n *Nasc) join(s *session, fn func(*session) error) error {
	outer := n.current
	n.current = s
	defer func() { n.current = outer }()

	if err := fn(s); err != nil {
		n.rollback(s, 0)
		return err
	}
	outer.inserted = append(outer.inserted, s.inserted...)
	return nil
}

// rollback evicts the instances s inserted after the first mark entries.
func (n *Nasc) rollback(s *session, mark int) {
	if mark >= len(s.inserted) {
		return
	}
	for _, t := range s.inserted[mark:] {
		n.singletons.evict(t)
		n.trace(s, t, "evicted partially wired instance", nil)
	}
	s.inserted = s.inserted[:mark]
}

// resolve returns the canonical instance of t, building it when the cache
// has none. site names the parameter or field that asked for t.
func (n *Nasc) resolve(s *session, t reflect.Type, site string) (any, error) {
	concrete, err := n.concreteType(t)
	if err != nil {
		return nil, err
	}

	if instance, ok := n.singletons.get(concrete); ok {
		n.stats.cacheHits.Inc(1)
		n.trace(s, concrete, "singleton hit", logrus.Fields{"site": site})
		return instance, nil
	}

	if s.onPath(concrete) {
		return nil, s.cycle(concrete, site)
	}

	v, err := n.build(s, concrete, s.caching)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// concreteType maps an interface to its implementation: the explicit
// binding first, then the declared default. Other types map to themselves.
func (n *Nasc) concreteType(t reflect.Type) (reflect.Type, error) {
	if t.Kind() != reflect.Interface {
		return t, nil
	}
	if impl, ok := n.registry.Implementation(t); ok {
		return impl, nil
	}
	if impl, ok := n.introspector.DefaultImplementation(t); ok {
		return impl, nil
	}
	return nil, &UnboundInterfaceError{Type: t}
}

// resolveDeferred is the thunk behind a lazy handle. Called from a hook of
// a running resolution it joins that resolution; otherwise it runs as its
// own top-level call.
func (n *Nasc) resolveDeferred(target reflect.Type, site string) (any, error) {
	var instance any
	err := n.run(newSession(true), func(s *session) error {
		v, err := n.resolve(s, target, site)
		instance = v
		return err
	})
	if err != nil {
		return nil, err
	}

	n.stats.lazy.Inc(1)
	return instance, nil
}
