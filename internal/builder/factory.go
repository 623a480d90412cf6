package builder

import (
	"fmt"

	"github.com/samber/do/v2"
)

// Factory resolves builders from the injector. Builder providers are
// registered as transient: provider lookup is cached by the injector, but
// every Resolve constructs a fresh builder so per-request scope never leaks
// between callers. Builders that reference each other resolve their
// counterparts through the factory at build time, which breaks the
// construction cycle.
type Factory struct {
	injector do.Injector
}

// NewFactory is the factory's provider. The injector handed to a provider
// records the invocation chain that led to it, so the factory keeps the
// root scope instead; otherwise every builder resolved later would appear
// to depend on the factory that is resolving it.
func NewFactory(i do.Injector) (*Factory, error) {
	return &Factory{injector: i.RootScope()}, nil
}

// Deps returns the shared builder collaborators.
func (f *Factory) Deps() (*Deps, error) {
	return do.Invoke[*Deps](f.injector)
}

// Resolve returns a new builder of type B bound to s.
func Resolve[B Scoped](f *Factory, s Scope) (B, error) {
	b, err := do.Invoke[B](f.injector)
	if err != nil {
		var zero B
		return zero, fmt.Errorf("resolve builder: %w", err)
	}
	b.Scope(s)
	return b, nil
}

// Register installs the factory and every builder into i. *Deps must be
// provided separately.
func Register(i do.Injector) {
	do.Provide(i, NewFactory)

	do.ProvideTransient(i, NewAnimalBuilder)
	do.ProvideTransient(i, NewShelterBuilder)
	do.ProvideTransient(i, NewUserBuilder)
	do.ProvideTransient(i, NewBreedBuilder)
	do.ProvideTransient(i, NewAnimalTypeBuilder)
	do.ProvideTransient(i, NewFileBuilder)
	do.ProvideTransient(i, NewNotificationBuilder)
	do.ProvideTransient(i, NewApplicationBuilder)
	do.ProvideTransient(i, NewConversationBuilder)
	do.ProvideTransient(i, NewMessageBuilder)
	do.ProvideTransient(i, NewReportBuilder)
}
