// Package nasc assembles fully wired object graphs in-process.
//
// Nasc (Old Irish: "Link" or "Bond") builds an instance of a requested type
// by resolving its declared constructor parameters and its tagged fields
// transitively. Every concrete type gets one canonical instance per
// container.
//
// # Features
//
//   - Constructor injection from declared constructors
//   - Field injection driven by `inject` struct tags
//   - Keyed (named) values that override type-based resolution
//   - Interface bindings with declared default implementations
//   - Lazy edges through nasc.Lazy[T] to break construction cycles
//   - Eager circular dependency detection
//   - Initialize hooks and property post-processing
//   - Rollback of partially wired instances when a resolution fails
//
// # Quick Start
//
//	type Mailer struct {
//	    From      string    `inject:"named"`
//	    Transport Transport `inject:""`
//	}
//
//	container := nasc.New(nasc.WithDefault((*Transport)(nil), (*SMTPTransport)(nil)))
//	_ = container.RegisterKeyed("from", "ops@example.com")
//
//	mailer, err := nasc.Resolve[*Mailer](container)
//
// # Field Tags
//
// Only exported fields with an `inject` tag are populated. Options combine
// with commas:
//
//	inject:""              resolve the field's type
//	inject:"named"         use the keyed value named after the field ("From" -> "from")
//	inject:"name=smtp.host" use the keyed value "smtp.host"
//	inject:"lazy"          install a *nasc.Lazy[T] handle resolved on first Get
//	inject:"optional"      leave the field zero when the dependency is unbound
//	inject:"-"             skip
//
// A keyed value always wins over type-based resolution when one is
// registered under the field's qualifier.
//
// # Constructors
//
// Go types carry no annotations, so injectable constructors are declared:
//
//	container := nasc.New(nasc.WithConstructor(NewSMTPTransport, "smtp.host", "smtp.port"))
//
// A constructor returns *T or (*T, error). Parameter names qualify the
// parameters by position; an empty name resolves the parameter by type.
//
// # Interfaces
//
// An interface resolves to its explicit binding, then to its declared
// default, and otherwise fails with *UnboundInterfaceError:
//
//	container.RegisterImplementation((*Transport)(nil), (*SMTPTransport)(nil))
//
// Resolving the interface itself returns the canonical implementation
// instance. A field of interface type receives its own implementation
// instance instead.
//
// # Cycles
//
// A type that needs itself, directly or through other types, fails with
// *CircularDependencyError naming the edge that closed the cycle. Mark one
// edge lazy to break it:
//
//	type B struct {
//	    A *nasc.Lazy[*A] `inject:"lazy"`
//	}
//
// WithLenientCycles accepts a non-lazy back edge to an ancestor that is
// already cached, which makes success depend on the order the graph is
// entered in.
//
// # Decoration
//
// DecorateInstance fills the tagged fields of an object built elsewhere and
// runs its hooks, without calling a constructor or caching the object.
//
// # Error Handling
//
// Errors are typed and work with errors.As:
//
//	_, err := container.GetInstance((*Mailer)(nil))
//	var cycle *nasc.CircularDependencyError
//	if errors.As(err, &cycle) {
//	    log.Fatal(cycle.Path)
//	}
//
// # Thread Safety
//
// Registrations and lookups can be used concurrently. Construction is
// serialized per container, so a singleton is never built twice. Hooks may
// resolve from the container, directly or through lazy handles; such calls
// join the resolution that runs the hook.
package nasc
