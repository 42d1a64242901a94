package nasc

import (
	"fmt"
	"reflect"
)

// Resolve resolves T from the container with compile-time type safety.
// T is either a concrete pointer type or an interface.
//
// Example:
//
//	mailer, err := nasc.Resolve[*Mailer](container)
//	transport, err := nasc.Resolve[Transport](container)
func Resolve[T any](n *Nasc) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	instance, err := n.getInstance(t)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, &AssignmentError{
			Owner: reflect.TypeOf(n),
			Field: "Resolve",
			Want:  t,
			Got:   reflect.TypeOf(instance),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics if resolution fails.
// Use this only when you're certain the graph is wired correctly.
//
// Example:
//
//	mailer := nasc.MustResolve[*Mailer](container)
func MustResolve[T any](n *Nasc) T {
	v, err := Resolve[T](n)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %v: %v", reflect.TypeOf((*T)(nil)).Elem(), err))
	}
	return v
}

// Keyed returns the value registered under key if it is a T.
//
// Example:
//
//	email, ok := nasc.Keyed[string](container, "email")
func Keyed[T any](n *Nasc, key string) (T, bool) {
	var zero T
	value, ok := n.GetKeyed(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
