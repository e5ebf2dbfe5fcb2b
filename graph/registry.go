package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrGraphNotFound    = errors.New("authentication graph not found")
	ErrProviderNotFound = errors.New("cross-platform provider not found")
	ErrDuplicateName    = errors.New("name already registered")
	ErrResolverCycle    = errors.New("graph resolver chain too deep")
)

const maxResolveDepth = 8

// Resolver picks a concrete graph name for st at execution time.
type Resolver func(reg *Registry, st *State) string

// GraphInfo describes a registered graph.
type GraphInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Dynamic     bool   `json:"dynamic" yaml:"dynamic"`
}

type graphEntry struct {
	description string
	graph       Graph
}

type resolverEntry struct {
	description string
	resolve     Resolver
}

// Registry holds named graphs, resolvers and cross-platform providers. It is
// safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	graphs    map[string]graphEntry
	resolvers map[string]resolverEntry
	providers map[string]CrossPlatformProvider
}

func NewRegistry() *Registry {
	return &Registry{
		graphs:    make(map[string]graphEntry),
		resolvers: make(map[string]resolverEntry),
		providers: make(map[string]CrossPlatformProvider),
	}
}

// Register adds g under name. Re-registering a graph replaces it; colliding
// with a resolver is an error.
func (r *Registry) Register(name, description string, g Graph) error {
	if name == "" || g == nil {
		return fmt.Errorf("register graph %q: name and graph are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resolvers[name]; ok {
		return fmt.Errorf("register graph %q: %w", name, ErrDuplicateName)
	}
	r.graphs[name] = graphEntry{description: description, graph: g}
	return nil
}

// RegisterResolver adds a dynamic name that resolves to another name at
// execution time.
func (r *Registry) RegisterResolver(name, description string, resolve Resolver) error {
	if name == "" || resolve == nil {
		return fmt.Errorf("register resolver %q: name and resolver are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.graphs[name]; ok {
		return fmt.Errorf("register resolver %q: %w", name, ErrDuplicateName)
	}
	r.resolvers[name] = resolverEntry{description: description, resolve: resolve}
	return nil
}

// RegisterPlaceholder registers name as a graph that always fails with a
// diagnostic explaining it is unavailable on this build.
func (r *Registry) RegisterPlaceholder(name, description string) error {
	msg := fmt.Sprintf("The authentication graph '%s' is not available in this build.", name)
	return r.Register(name, description, GraphFunc(func(*State) Node {
		return Named("Placeholder", func(_ context.Context, st *State, done Done) {
			st.AddDiagnostic(msg)
			done(Error)
		})
	}))
}

// RegisterProvider adds p under p.Name().
func (r *Registry) RegisterProvider(p CrossPlatformProvider) error {
	if p == nil {
		return errors.New("register provider: nil provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[p.Name()]; ok {
		return fmt.Errorf("register provider %q: %w", p.Name(), ErrDuplicateName)
	}
	r.providers[p.Name()] = p
	return nil
}

// Has reports whether name is a registered graph or resolver.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.graphs[name]; ok {
		return true
	}
	_, ok := r.resolvers[name]
	return ok
}

// Get returns the graph for name, following resolvers against st.
func (r *Registry) Get(name string, st *State) (Graph, string, error) {
	current := name
	for depth := 0; depth < maxResolveDepth; depth++ {
		r.mu.RLock()
		g, isGraph := r.graphs[current]
		res, isResolver := r.resolvers[current]
		r.mu.RUnlock()

		switch {
		case isGraph:
			return g.graph, current, nil
		case isResolver:
			next := res.resolve(r, st)
			st.Log().Debug("graph resolved", "from", current, "to", next)
			current = next
		default:
			return nil, "", fmt.Errorf("%w: %s", ErrGraphNotFound, current)
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrResolverCycle, name)
}

// Names lists every graph and resolver, sorted by name.
func (r *Registry) Names() []GraphInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]GraphInfo, 0, len(r.graphs)+len(r.resolvers))
	for name, e := range r.graphs {
		infos = append(infos, GraphInfo{Name: name, Description: e.description})
	}
	for name, e := range r.resolvers {
		infos = append(infos, GraphInfo{Name: name, Description: e.description, Dynamic: true})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Provider returns the provider registered under name.
func (r *Registry) Provider(name string) (CrossPlatformProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

func (r *Registry) ProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
