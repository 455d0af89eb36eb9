// Package catalog holds every node a project declares — models, sources,
// seeds, snapshots and tests — and resolves names between them. The engine
// registers nodes while loading a project and reads immutable snapshots
// back out when compiling and running.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Registry is the project-wide node store. All methods are safe for
// concurrent use.
type Registry struct {
	mu sync.RWMutex

	// models keyed by unqualified model name: "stg_customers" → *Model.
	// Last registered wins on name collision.
	models map[string]*core.Model

	// sources keyed by source group name: "raw" → *Source
	sources map[string]*core.Source

	seeds     map[string]*core.Seed
	snapshots map[string]*core.Snapshot
	tests     map[string]*core.Test
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		models:    make(map[string]*core.Model),
		sources:   make(map[string]*core.Source),
		seeds:     make(map[string]*core.Seed),
		snapshots: make(map[string]*core.Snapshot),
		tests:     make(map[string]*core.Test),
	}
}

// RegisterModel adds a model under its name.
func (r *Registry) RegisterModel(m *core.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.Name] = m
}

// RegisterSource adds a source group under its name.
func (r *Registry) RegisterSource(s *core.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name] = s
}

// RegisterSeed adds a seed under its name.
func (r *Registry) RegisterSeed(s *core.Seed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds[s.Name] = s
}

// RegisterSnapshot adds a snapshot under its name.
func (r *Registry) RegisterSnapshot(s *core.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[s.Name] = s
}

// RegisterTest adds a test under its name.
func (r *Registry) RegisterTest(t *core.Test) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[t.Name] = t
}

// Model resolves a model by name. Lookup is exact first, then
// case-insensitive.
func (r *Registry) Model(name string) (*core.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[name]; ok {
		return m, true
	}
	for k, m := range r.models {
		if strings.EqualFold(k, name) {
			return m, true
		}
	}
	return nil, false
}

// Source resolves a source group by name, case-insensitively.
func (r *Registry) Source(name string) (*core.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sources[name]; ok {
		return s, true
	}
	for k, s := range r.sources {
		if strings.EqualFold(k, name) {
			return s, true
		}
	}
	return nil, false
}

// Seed resolves a seed by name.
func (r *Registry) Seed(name string) (*core.Seed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.seeds[name]
	return s, ok
}

// Snapshot resolves a snapshot by name.
func (r *Registry) Snapshot(name string) (*core.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snapshots[name]
	return s, ok
}

// Models returns all models sorted by name.
func (r *Registry) Models() []*core.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Sources returns all source groups sorted by name.
func (r *Registry) Sources() []*core.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Seeds returns all seeds sorted by name.
func (r *Registry) Seeds() []*core.Seed {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Seed, 0, len(r.seeds))
	for _, s := range r.seeds {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Snapshots returns all snapshots sorted by name.
func (r *Registry) Snapshots() []*core.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Snapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tests returns all tests sorted by name.
func (r *Registry) Tests() []*core.Test {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Test, 0, len(r.tests))
	for _, t := range r.tests {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ModelCount returns the number of registered models.
func (r *Registry) ModelCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// View is a point-in-time copy of the registry's lookup maps, handed to
// the compiler so compilation never races with registration. The node
// pointers are shared; only the maps are copied.
type View struct {
	Models  map[string]*core.Model
	Sources map[string]*core.Source
}

// View captures the current model and source maps.
func (r *Registry) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := View{
		Models:  make(map[string]*core.Model, len(r.models)),
		Sources: make(map[string]*core.Source, len(r.sources)),
	}
	for k, m := range r.models {
		v.Models[k] = m
	}
	for k, s := range r.sources {
		v.Sources[k] = s
	}
	return v
}
