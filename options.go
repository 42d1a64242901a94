package nasc

import (
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/toutaio/toutago-nasc-assembler/introspect"
	"github.com/toutaio/toutago-nasc-assembler/properties"
)

// Option is a function that configures a Nasc container.
type Option func(*Nasc) error

// WithDebug traces every resolution step at debug level.
// With a custom logger installed, its *logrus.Logger level is raised.
func WithDebug() Option {
	return func(n *Nasc) error {
		switch l := n.logger.(type) {
		case *logrus.Logger:
			l.SetLevel(logrus.DebugLevel)
		case *logrus.Entry:
			l.Logger.SetLevel(logrus.DebugLevel)
		}
		return nil
	}
}

// WithLogger replaces the container's logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(n *Nasc) error {
		if logger == nil {
			return &InvalidBindingError{Reason: "logger cannot be nil"}
		}
		n.logger = logger
		return nil
	}
}

// WithMetrics records the container's instruments in r instead of a private
// registry.
func WithMetrics(r metrics.Registry) Option {
	return func(n *Nasc) error {
		if r == nil {
			return &InvalidBindingError{Reason: "metrics registry cannot be nil"}
		}
		n.metrics = r
		return nil
	}
}

// WithIntrospector replaces the built-in tag introspector.
// WithConstructor and WithDefault require the built-in one.
func WithIntrospector(i introspect.Introspector) Option {
	return func(n *Nasc) error {
		if i == nil {
			return &InvalidBindingError{Reason: "introspector cannot be nil"}
		}
		n.introspector = i
		return nil
	}
}

// WithConstructor declares fn as the injectable constructor of the type it
// returns. names qualify parameters by position with keyed bindings.
//
// Example:
//
//	nasc.New(nasc.WithConstructor(NewMailer, "", "smtp.host"))
func WithConstructor(fn any, names ...string) Option {
	return func(n *Nasc) error {
		tags, err := n.tagIntrospector()
		if err != nil {
			return err
		}
		return tags.DeclareConstructor(fn, names...)
	}
}

// WithDefault declares impl as the default implementation of an interface.
// Both arguments are type tokens.
//
// Example:
//
//	nasc.New(nasc.WithDefault((*Transport)(nil), (*SMTPTransport)(nil)))
func WithDefault(ifaceToken, implToken any) Option {
	return func(n *Nasc) error {
		tags, err := n.tagIntrospector()
		if err != nil {
			return err
		}
		iface, err := typeOf(ifaceToken)
		if err != nil {
			return err
		}
		impl, err := typeOf(implToken)
		if err != nil {
			return err
		}
		return tags.DeclareDefault(iface, impl)
	}
}

// WithPostProcessor installs a property post-processor, run on every
// constructed or decorated instance before its Initialize hook.
func WithPostProcessor(p PostProcessor) Option {
	return func(n *Nasc) error {
		if p == nil {
			return &InvalidBindingError{Reason: "post-processor cannot be nil"}
		}
		n.postProcessor = p
		return nil
	}
}

// WithProperties installs a properties.PostProcessor over src.
func WithProperties(src properties.Source) Option {
	return WithPostProcessor(properties.NewPostProcessor(src))
}

// WithPropertiesFile loads a .env or YAML file and installs it as the
// property post-processor.
func WithPropertiesFile(path string) Option {
	return func(n *Nasc) error {
		src, err := properties.Load(path)
		if err != nil {
			return err
		}
		n.postProcessor = properties.NewPostProcessor(src)
		return nil
	}
}

// WithLenientCycles accepts a non-lazy field back edge when the ancestor it
// points to is already in the singleton cache. Whether such a graph resolves
// then depends on the order it is entered in; by default every unmarked
// cycle fails.
func WithLenientCycles() Option {
	return func(n *Nasc) error {
		n.lenientCycles = true
		return nil
	}
}
