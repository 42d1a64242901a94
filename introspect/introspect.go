// Package introspect reports which constructors and fields of a type want
// injection. The container only consumes these facts; how they are
// discovered is up to the Introspector implementation.
//
// The built-in implementation, Tags, reads `inject` struct tags and keeps
// tables of declared constructors and default interface implementations:
//
//	type Mailer struct {
//	    From      string            `inject:"named"`
//	    Transport Transport         `inject:""`
//	    Audit     *nasc.Lazy[*Log]  `inject:"lazy"`
//	}
//
//	tags := introspect.New()
//	_ = tags.DeclareConstructor(NewSMTP, "", "smtp.host")
//	_ = tags.DeclareDefault(transportType, smtpType)
package introspect

import "reflect"

// Param is one constructor parameter.
type Param struct {
	Type reflect.Type
	// Name qualifies the parameter with a keyed binding. Empty when unqualified.
	Name string
}

// Constructor describes an injectable constructor function.
type Constructor struct {
	Fn           reflect.Value
	Params       []Param
	Out          reflect.Type
	ReturnsError bool
}

// Field is an injectable struct field.
type Field struct {
	Index     int
	Name      string
	Type      reflect.Type
	Qualifier string
	Lazy      bool
	Optional  bool
}

// Initializable is implemented by types that need a post-construction hook.
// Initialize runs once, after every field has been injected.
type Initializable interface {
	Initialize() error
}

var initializableType = reflect.TypeOf((*Initializable)(nil)).Elem()

// Introspector answers the capability queries the resolution engine needs.
type Introspector interface {
	// InjectableConstructor returns the declared constructor for the concrete
	// type t, if any.
	InjectableConstructor(t reflect.Type) (*Constructor, bool)

	// InjectableFields lists the fields of t marked for injection, in
	// declaration order. t may be a struct or a pointer to struct.
	InjectableFields(t reflect.Type) []Field

	// DefaultImplementation returns the concrete type an interface declares
	// as its fallback implementation.
	DefaultImplementation(iface reflect.Type) (reflect.Type, bool)

	// IsInitializer reports whether t implements Initializable.
	IsInitializer(t reflect.Type) bool
}
