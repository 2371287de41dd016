package gateway

import (
	"fmt"
	"sync"
)

// Factory builds a PaymentGateway from merchant configuration.
type Factory func(config map[string]string) (PaymentGateway, error)

// Registry manages the available gateway implementations by name.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty gateway registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a gateway factory to the registry.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a gateway factory by name.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("payment gateway '%s' is not registered", name)
	}

	return factory, nil
}

// Create builds a configured gateway instance by name.
func (r *Registry) Create(name string, config map[string]string) (PaymentGateway, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(config)
}

// Names returns all registered gateway names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	return names
}

// DefaultRegistry is the global gateway registry implementations register
// into from their init functions.
var DefaultRegistry = NewRegistry()

// Register registers a gateway with the default registry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// Create builds a gateway instance from the default registry.
func Create(name string, config map[string]string) (PaymentGateway, error) {
	return DefaultRegistry.Create(name, config)
}
