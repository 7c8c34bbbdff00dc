package topics

import (
	"fmt"
	"sort"
	"sync"
)

// Topic is a named pub/sub channel definition. Components publish and
// subscribe using Topic values rather than bare strings so that every
// topic in the process is declared, documented, and registered in one place.
type Topic struct {
	name        string
	description string
	example     string
}

// Name returns the unique string identifier for this topic.
func (t Topic) Name() string { return t.name }

// Description returns human-readable documentation.
func (t Topic) Description() string { return t.description }

// Example returns a sample payload for the topic.
func (t Topic) Example() string { return t.example }

func (t Topic) String() string { return t.name }

// Registry tracks every topic declared by the process. Registration is
// duplicate-checked so two components cannot silently claim the same name.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]Topic
}

// NewRegistry creates an empty topic registry.
func NewRegistry() *Registry {
	return &Registry{topics: make(map[string]Topic)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide topic registry.
func Default() *Registry { return defaultRegistry }

// Register adds a topic to the registry. Registering the same name twice
// returns an error unless the definition is identical, in which case the
// call is an idempotent no-op.
func (r *Registry) Register(t Topic) error {
	if t.name == "" {
		return fmt.Errorf("topic name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.topics[t.name]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("topic %q already registered with a different definition", t.name)
	}
	r.topics[t.name] = t
	return nil
}

// Lookup returns the topic registered under name.
func (r *Registry) Lookup(name string) (Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[name]
	return t, ok
}

// List returns all registered topics sorted by name.
func (r *Registry) List() []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Topic, 0, len(r.topics))
	for _, t := range r.topics {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}

// Define builds a Topic value. It does not register it; callers pass the
// result to a Registry (usually via a package-level Register helper).
func Define(name, description, example string) Topic {
	return Topic{name: name, description: description, example: example}
}
