package payments

import (
	"fmt"
	"strings"
	"sync"
)

// Registry resolves provider names to adapters. Population happens once at
// startup; resolution afterwards is read-mostly and safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its lowercased name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.Name())] = p
}

// Resolve looks up a provider case-insensitively. Unknown names fail closed
// with ErrUnsupportedProvider.
func (r *Registry) Resolve(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
	return p, nil
}

// DefaultRegistry is the process-wide registry populated in main.
var DefaultRegistry = NewRegistry()

func Register(p Provider) { DefaultRegistry.Register(p) }

func Resolve(name string) (Provider, error) { return DefaultRegistry.Resolve(name) }
