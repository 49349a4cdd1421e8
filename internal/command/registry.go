package command

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCommand is returned when resolving a name nobody registered.
var ErrUnknownCommand = errors.New("command: unknown command")

// Factory builds a fresh command instance.
type Factory func() Command

// Entry describes one registered command.
type Entry struct {
	Name        string
	Description string
	factory     Factory
}

// Registry maintains named command factories so operators can launch
// routines by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Register installs a factory. Returns an error if the name already exists.
func (r *Registry) Register(name, description string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("command: name is required")
	}
	if factory == nil {
		return fmt.Errorf("command: factory is required for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("command: %s already registered", name)
	}
	r.entries[name] = Entry{Name: name, Description: description, factory: factory}
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name, description string, factory Factory) {
	if err := r.Register(name, description, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs a new command by name.
func (r *Registry) Resolve(name string) (Command, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	cmd := entry.factory()
	if cmd == nil {
		return nil, fmt.Errorf("command: factory for %s returned nil", name)
	}
	return cmd, nil
}

// Entries returns every registration sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
