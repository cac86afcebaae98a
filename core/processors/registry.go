package processors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/model"
)

// Dependencies are handed to processor factories
type Dependencies struct {
	Integrations *model.Integrations
	Recognizer   RecognizeFunc // Optional - the default NER model is loaded when nil
}

// Factory creates a configured processor
type Factory func(deps Dependencies) (pipeline.Processor, error)

// Registry maps processor names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry returns a registry holding the built-in processors
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.factories["builtin-kinds"] = func(deps Dependencies) (pipeline.Processor, error) {
		return NewBuiltinKinds(), nil
	}
	registry.factories["annotate-location"] = func(deps Dependencies) (pipeline.Processor, error) {
		return NewAnnotateLocation(deps.Integrations), nil
	}
	registry.factories["entity-recognition"] = func(deps Dependencies) (pipeline.Processor, error) {
		recognize := deps.Recognizer
		if recognize == nil {
			var err error
			recognize, err = DefaultRecognizer()
			if err != nil {
				return nil, err
			}
		}
		return NewEntityRecognition(recognize, 0.5), nil
	}
	return registry
}

// Register adds a factory, names must be unique
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("processor name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("processor %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Names returns the registered names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the named processors in order
func (r *Registry) Build(names []string, deps Dependencies) ([]pipeline.Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	processors := make([]pipeline.Processor, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("processor %q is configured twice", name)
		}
		seen[name] = true

		factory, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown processor %q", name)
		}
		processor, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create processor %q: %w", name, err)
		}
		if processor.Name() != name {
			return nil, fmt.Errorf("processor registered as %q is named %q", name, processor.Name())
		}
		processors = append(processors, processor)
	}
	return processors, nil
}
