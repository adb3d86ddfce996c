// Package registry provides a global registry of population topologies.
// The experiment driver and CLI select a topology by its selector string
// ("WM", "2D", "3D") without hardcoding container types.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sydleither/spatial-egt/internal/sim"
)

// ErrUnknownTopology is returned by Create for unregistered selectors.
var ErrUnknownTopology = errors.New("registry: unknown topology")

// Dims are the spatial parameters a factory builds a container from.
type Dims struct {
	X, Y   int // Configured lattice width and height
	Radius int // Interaction neighbourhood radius
}

// TopologyInfo contains metadata about a registered topology.
type TopologyInfo struct {
	ID    string
	Title string
}

// Factory creates an empty population container.
type Factory func(d Dims) sim.Space

type entry struct {
	title   string
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a topology factory to the registry.
// Panics if a topology with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: topology %q already registered", id))
	}
	entries[id] = entry{title: title, factory: f}
}

// List returns information about all registered topologies, sorted by ID.
func List() []TopologyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]TopologyInfo, 0, len(entries))
	for id, e := range entries {
		result = append(result, TopologyInfo{ID: id, Title: e.title})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds an empty container for the topology id.
func Create(id string, d Dims) (sim.Space, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTopology, id)
	}
	if id != string(sim.TopologyWellMixed) && (d.X <= 0 || d.Y <= 0) {
		return nil, fmt.Errorf("registry: %s needs positive dimensions, got %dx%d", id, d.X, d.Y)
	}

	return e.factory(d), nil
}

// Exists checks if a topology with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
