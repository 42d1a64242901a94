package nasc

import (
	"fmt"
	"reflect"
	"sync"
)

// deferred is implemented by *Lazy[T]; the container uses it to wire handles
// whose T it only knows through reflection.
type deferred interface {
	target() reflect.Type
	bind(resolve func() (any, error))
	set(v any) error
}

var deferredType = reflect.TypeOf((*deferred)(nil)).Elem()

// Lazy is a deferred handle to a T. It holds either a resolved value or a
// thunk that resolves one on first use. Mark a field of type *Lazy[T] with
// `inject:"lazy"` to break a construction cycle:
//
//	type B struct {
//	    A *nasc.Lazy[*A] `inject:"lazy"`
//	}
//
//	a, err := b.A.Get()
//
// The first Get resolves T through the container that built the owner,
// reusing its canonical instance when one exists, and keeps the result. All
// later calls return the same instance. The handle belongs to its owner; two
// owners hold two handles.
//
// A Get made while the same handle is still resolving on the same goroutine,
// for example from an Initialize hook of T itself, fails with
// *CircularDependencyError. Concurrent Gets from other goroutines resolve
// through the container too and receive the same canonical instance.
type Lazy[T any] struct {
	mu      sync.Mutex
	value   T
	done    bool
	resolve func() (any, error)

	// resolvers are the goroutines currently running resolve.
	resolvers []int64
}

// Of returns a handle that is already resolved to v.
func Of[T any](v T) *Lazy[T] {
	return &Lazy[T]{value: v, done: true}
}

// Get returns the underlying instance, resolving it on the first call.
// A failed resolution is not remembered; the next Get tries again.
func (l *Lazy[T]) Get() (T, error) {
	var zero T
	gid := goroutineID()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.value, nil
	}
	if l.resolve == nil {
		return zero, ErrUnboundLazy
	}
	if l.resolving(gid) {
		target := l.target().String()
		return zero, &CircularDependencyError{Path: []string{target, target}, Site: "lazy " + target}
	}

	v, err := l.call(l.resolve, gid)
	if err != nil {
		return zero, err
	}
	if l.done {
		return l.value, nil
	}
	if err := l.store(v); err != nil {
		return zero, err
	}
	return l.value, nil
}

// MustGet is like Get but panics if resolution fails.
func (l *Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy %v: %v", l.target(), err))
	}
	return v
}

// Resolved reports whether the handle already holds its instance.
func (l *Lazy[T]) Resolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

func (l *Lazy[T]) target() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (l *Lazy[T]) bind(resolve func() (any, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolve = resolve
}

func (l *Lazy[T]) set(v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store(v)
}

// call runs resolve on behalf of goroutine gid with mu released. mu is held
// again when call returns, even if resolve panics.
func (l *Lazy[T]) call(resolve func() (any, error), gid int64) (any, error) {
	l.resolvers = append(l.resolvers, gid)
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		for i, id := range l.resolvers {
			if id == gid {
				l.resolvers = append(l.resolvers[:i], l.resolvers[i+1:]...)
				break
			}
		}
	}()
	return resolve()
}

// resolving must be called with mu held.
func (l *Lazy[T]) resolving(gid int64) bool {
	for _, id := range l.resolvers {
		if gid != 0 && id == gid {
			return true
		}
	}
	return false
}

// store must be called with mu held.
func (l *Lazy[T]) store(v any) error {
	if v == nil {
		var zero T
		l.value, l.done, l.resolve = zero, true, nil
		return nil
	}
	typed, ok := v.(T)
	if !ok {
		return &AssignmentError{
			Owner: reflect.TypeOf(l),
			Field: "value",
			Want:  l.target(),
			Got:   reflect.TypeOf(v),
		}
	}
	l.value, l.done, l.resolve = typed, true, nil
	return nil
}
