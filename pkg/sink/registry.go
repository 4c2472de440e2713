package sink

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sinkform/pkg/i18n"
)

// ErrUnknownSink is returned when no descriptor is registered for a type.
var ErrUnknownSink = errors.New("sink: unknown sink type")

// Factory builds a descriptor bound to a translation function.
type Factory func(translate i18n.Func) Descriptor

// Registry stores descriptor factories by sink type and caches one built
// descriptor per type and locale, so summary columns are computed once per
// process and locale.
type Registry struct {
	mu         sync.RWMutex
	translator i18n.Translator
	factories  map[string]Factory
	built      map[string]Descriptor
}

// NewRegistry creates an empty registry resolving labels through translator.
func NewRegistry(translator i18n.Translator) *Registry {
	return &Registry{
		translator: translator,
		factories:  make(map[string]Factory),
		built:      make(map[string]Descriptor),
	}
}

// Register adds a factory under kind. Duplicate kinds return an error.
func (r *Registry) Register(kind string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("sink: factory is required")
	}
	key := normalizeKind(kind)
	if key == "" {
		return fmt.Errorf("sink: sink type is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("sink: sink type %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(kind string, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Descriptor returns the descriptor for kind bound to locale, building it on
// first use.
func (r *Registry) Descriptor(kind, locale string) (Descriptor, error) {
	key := normalizeKind(kind)
	cacheKey := key + "|" + strings.ToLower(strings.TrimSpace(locale))

	r.mu.RLock()
	desc, ok := r.built[cacheKey]
	factory, known := r.factories[key]
	r.mu.RUnlock()
	if ok {
		return desc, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if desc, ok := r.built[cacheKey]; ok {
		return desc, nil
	}
	desc = factory(i18n.Bind(r.translator, locale))
	r.built[cacheKey] = desc
	return desc, nil
}

// List returns the registered sink types in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeKind(kind string) string {
	return strings.ToUpper(strings.TrimSpace(kind))
}
