package handlers

import (
	"errors"
	"fmt"
	"sort"

	"simulateur-hq/relay/pkg/providers"
)

// Kind tells how a registered service answers.
type Kind int

const (
	// KindStream relays the provider as SSE.
	KindStream Kind = iota

	// KindBuffered returns the complete provider payload.
	KindBuffered
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindBuffered:
		return "buffered"
	default:
		return "unknown"
	}
}

// Service is one entry of the registry. Exactly one of Stream and Buffered is set.
type Service struct {
	Name     string
	Kind     Kind
	Stream   providers.StreamingProvider
	Buffered providers.BufferedProvider
}

// provider returns the shared Provider view of the service.
func (s Service) provider() providers.Provider {
	if s.Kind == KindStream {
		return s.Stream
	}
	return s.Buffered
}

// Registry maps service identifiers to provider adapters. It is filled at
// startup and only read afterwards.
type Registry struct {
	services map[string]Service
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// RegisterStream adds a streaming service.
func (r *Registry) RegisterStream(name string, p providers.StreamingProvider) error {
	return r.add(Service{Name: name, Kind: KindStream, Stream: p})
}

// RegisterBuffered adds a buffered service.
func (r *Registry) RegisterBuffered(name string, p providers.BufferedProvider) error {
	return r.add(Service{Name: name, Kind: KindBuffered, Buffered: p})
}

func (r *Registry) add(s Service) error {
	if s.Name == "" {
		return errors.New("service name is required")
	}
	if s.provider() == nil {
		return fmt.Errorf("service %q: provider is nil", s.Name)
	}
	if _, exists := r.services[s.Name]; exists {
		return fmt.Errorf("service %q already registered", s.Name)
	}
	r.services[s.Name] = s
	return nil
}

// Lookup returns the service registered under name.
func (r *Registry) Lookup(name string) (Service, bool) {
	s, ok := r.services[name]
	return s, ok
}

// Names returns the registered service names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health returns the request counters of every registered provider.
func (r *Registry) Health() map[string]providers.ProviderHealth {
	health := make(map[string]providers.ProviderHealth, len(r.services))
	for name, s := range r.services {
		health[name] = s.provider().GetHealth()
	}
	return health
}

// Close closes every registered provider.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.Names() {
		if err := r.services[name].provider().Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
