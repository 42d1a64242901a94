package nasc

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperties_Container(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated resolution returns one instance", prop.ForAll(
		func(calls int) bool {
			container := New(WithDefault((*Transport)(nil), (*SMTPTransport)(nil)))
			_ = container.RegisterKeyed("from", "ops@example.com")

			first, err := container.GetInstance((*Mailer)(nil))
			if err != nil {
				return false
			}
			for i := 0; i < calls; i++ {
				next, err := container.GetInstance((*Mailer)(nil))
				if err != nil || next != first {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
	))

	properties.Property("explicit binding beats the default in any registration order", prop.ForAll(
		func(bindFirst bool) bool {
			container := New()
			bind := func() bool {
				return container.RegisterImplementation((*Transport)(nil), (*QueueTransport)(nil)) == nil
			}
			declare := func() bool {
				return WithDefault((*Transport)(nil), (*SMTPTransport)(nil))(container) == nil
			}
			if bindFirst {
				if !bind() || !declare() {
					return false
				}
			} else if !declare() || !bind() {
				return false
			}
			transport, err := Resolve[Transport](container)
			if err != nil {
				return false
			}
			_, ok := transport.(*QueueTransport)
			return ok
		},
		gen.Bool(),
	))

	properties.Property("keyed values win over type resolution", prop.ForAll(
		func(host string) bool {
			container := New()
			_ = container.RegisterInstance(&SMTPTransport{Host: "plain"})
			_ = container.RegisterKeyed("primary", &SMTPTransport{Host: host})

			got, err := Resolve[*KeyedOverride](container)
			if err != nil {
				return false
			}
			return got.Primary.Host == host && got.Plain.Host == "plain"
		},
		gen.AlphaString(),
	))

	properties.Property("failed resolutions leave the cache empty", prop.ForAll(
		func(attempts int) bool {
			container := New()
			for i := 0; i < attempts; i++ {
				if _, err := container.GetInstance((*CycleA)(nil)); err == nil {
					return false
				}
			}
			return container.singletons.len() == 0
		},
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
