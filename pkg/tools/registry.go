package tools

import (
	"sync"

	"github.com/pkg/errors"
)

// Registry manages the tools addressable by a session. Registrations
// happen at session construction; lookups may happen concurrently
// during tool batches.
type Registry interface {
	Register(tool *Tool) error
	Get(name string) (*Tool, error)
	List() []*Tool
	Has(name string) bool
	Count() int
	Clone() Registry
}

// InMemoryRegistry is a thread-safe in-memory Registry.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool under its name. Registering the same name twice
// is an error; bindings are immutable for the session's lifetime.
func (r *InMemoryRegistry) Register(tool *Tool) error {
	if tool == nil || tool.Name == "" {
		return errors.New("tool and tool name are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return errors.Errorf("tool already registered: %s", tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Get retrieves a tool by name.
func (r *InMemoryRegistry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	if !exists {
		return nil, &NotFoundError{Name: name}
	}
	return tool, nil
}

// List returns the registered tools in registration order.
func (r *InMemoryRegistry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Has reports whether a tool is registered.
func (r *InMemoryRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tools[name]
	return exists
}

// Count returns the number of registered tools.
func (r *InMemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Clone returns a copy of the registry sharing the tool bindings.
func (r *InMemoryRegistry) Clone() Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cloned := NewInMemoryRegistry()
	for _, name := range r.order {
		cloned.tools[name] = r.tools[name]
		cloned.order = append(cloned.order, name)
	}
	return cloned
}

var _ Registry = &InMemoryRegistry{}
