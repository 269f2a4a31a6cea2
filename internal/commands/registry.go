package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves command names and aliases to their implementations.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds a command under its primary name and every alias. A
// collision is a programming error; init-time registration panics on it.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, name := range names {
		if prev, taken := r.byName[name]; taken {
			return fmt.Errorf("%q already names command %q", name, prev.Name())
		}
	}
	for _, name := range names {
		r.byName[name] = c
	}
	return nil
}

// Find resolves a primary name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// All returns the registered commands, one per command, sorted by primary
// name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unique := make(map[string]Command, len(r.byName))
	for _, c := range r.byName {
		unique[c.Name()] = c
	}
	out := make([]Command, 0, len(unique))
	for _, c := range unique {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// DefaultRegistry holds the commands registered at init time.
var DefaultRegistry = NewRegistry()

// Register adds a command to DefaultRegistry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
