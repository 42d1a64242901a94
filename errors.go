package nasc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/toutaio/toutago-nasc-assembler/registry"
)

// DuplicateBindingError is returned when a key, a concrete type or an
// interface is registered twice. The first registration is kept.
type DuplicateBindingError = registry.DuplicateBindingError

// ErrUnboundLazy is returned by Lazy.Get on a handle that was never wired by
// a container.
var ErrUnboundLazy = errors.New("lazy reference is not bound to a container")

// InvalidBindingError is returned when a registration has invalid parameters.
type InvalidBindingError struct {
	Reason string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding: %s", e.Reason)
}

// UnboundInterfaceError is returned when an interface has neither an explicit
// implementation binding nor a declared default implementation.
type UnboundInterfaceError struct {
	Type reflect.Type
}

func (e *UnboundInterfaceError) Error() string {
	return fmt.Sprintf("no implementation bound for interface %v. Register one with RegisterImplementation() or declare a default", e.Type)
}

// CircularDependencyError indicates that resolving a type requires an
// instance of a type that is still under construction on the same path.
type CircularDependencyError struct {
	// Path lists the types under construction followed by the type that closed the cycle.
	Path []string
	// Site names the parameter or field that closed the cycle, e.g. "*app.B.A".
	Site string
}

func (e *CircularDependencyError) Error() string {
	msg := "circular dependency detected"
	if len(e.Path) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Path, " -> "))
	}
	if e.Site != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Site)
	}
	return msg
}

// ConstructionError wraps a failure of the instantiation mechanism itself:
// a constructor that returned an error, returned nil or panicked, a failing
// property post-processor or a failing Initialize hook.
type ConstructionError struct {
	Type  reflect.Type
	Op    string
	Cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to %s %v: %v", e.Op, e.Type, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// AssignmentError is returned when a resolved value cannot be assigned to
// the field or parameter that asked for it, typically a keyed binding of the
// wrong type.
type AssignmentError struct {
	Owner reflect.Type
	Field string
	Want  reflect.Type
	Got   reflect.Type
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("cannot assign %v to %v.%s of type %v", e.Got, e.Owner, e.Field, e.Want)
}

// ResolutionError is returned when a type cannot be resolved for reasons
// other than the errors above, such as a non-constructible type.
type ResolutionError struct {
	Type    reflect.Type
	Name    string
	Cause   error
	Context string
}

func (e *ResolutionError) Error() string {
	typeStr := "unknown"
	if e.Type != nil {
		typeStr = e.Type.String()
	}

	nameStr := ""
	if e.Name != "" {
		nameStr = fmt.Sprintf(" (at %s)", e.Name)
	}

	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to resolve %s%s%s%s", typeStr, nameStr, contextStr, causeStr)
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}
