// Package sim implements the spatial evolutionary game engine: population
// containers for the well-mixed, 2D and 3D topologies, the public-goods
// payoff, treatment policies, and the asynchronous stochastic step.
//
// The package is single-threaded and does no I/O. Each Model owns its
// container and random source, so separate models may be stepped from
// separate goroutines.
package sim

import "github.com/sydleither/spatial-egt/internal/core"

// NoSite is the site of a cell that lives in a container without positions.
const NoSite = -1

// Topology identifies the spatial structure of a population.
type Topology string

const (
	TopologyWellMixed Topology = "WM"
	Topology2D        Topology = "2D"
	Topology3D        Topology = "3D"
)

// Cell is a single agent. Its identity is its container slot; the
// phenotype never changes after creation.
type Cell struct {
	Phenotype core.Phenotype
	Site      int // Lattice index, or NoSite in a well-mixed pool

	slot  int // Index in the owning container's live list
	alive bool
}

// Alive reports whether the cell is still in its container.
func (c *Cell) Alive() bool {
	return c.alive
}

// Space is a population container. Every live cell belongs to exactly
// one Space. Lattice variants are unstackable: Insert on an occupied
// site is a caller bug and panics.
type Space interface {
	// Topology returns the selector of this container.
	Topology() Topology

	// Len returns the number of live cells.
	Len() int

	// Counts returns live cells per phenotype.
	Counts() core.Counts

	// Snapshot appends every live cell to dst and returns it.
	// Callers may mutate the container while ranging over the result.
	Snapshot(dst []*Cell) []*Cell

	// Insert creates a cell of phenotype p at site.
	Insert(site int, p core.Phenotype) *Cell

	// Remove takes c out of the container.
	Remove(c *Cell)

	// At returns the cell at site, or nil if the site is empty
	// or the container has no positions.
	At(site int) *Cell

	// InteractionCounts returns the number of occupied sites in the
	// interaction neighbourhood of c, excluding c, and how many of
	// them hold Sensitive cells.
	InteractionCounts(c *Cell) (neighbors, sensitive int)

	// EmptyDivisionSites appends the empty sites c may divide into.
	EmptyDivisionSites(c *Cell, dst []int) []int

	// EmptySites appends every empty site. An unbounded container
	// reports the single site NoSite.
	EmptySites(dst []int) []int
}

// Plane is a 2D phenotype view of a spatial container, used for rendering.
type Plane interface {
	Dims() (w, h int)
	PhenotypeAt(x, y int) (core.Phenotype, bool)
}

// PlaneOf returns a renderable plane for s: the lattice itself in 2D,
// the central z-slice in 3D. Well-mixed pools have no plane.
func PlaneOf(s Space) (Plane, bool) {
	switch v := s.(type) {
	case *Lattice2D:
		return v, true
	case *Lattice3D:
		return v.Slice(v.d / 2), true
	default:
		return nil, false
	}
}

// population is the live list shared by every container. Removal is
// swap-with-last so it stays O(1).
type population struct {
	cells  []*Cell
	counts core.Counts
}

func (p *population) add(c *Cell) {
	c.slot = len(p.cells)
	c.alive = true
	p.cells = append(p.cells, c)
	p.counts.Add(c.Phenotype, 1)
}

func (p *population) remove(c *Cell) {
	last := len(p.cells) - 1
	moved := p.cells[last]
	p.cells[c.slot] = moved
	moved.slot = c.slot
	p.cells[last] = nil
	p.cells = p.cells[:last]
	c.alive = false
	c.slot = -1
	p.counts.Add(c.Phenotype, -1)
}

// Len returns the number of live cells.
func (p *population) Len() int {
	return len(p.cells)
}

// Counts returns live cells per phenotype.
func (p *population) Counts() core.Counts {
	return p.counts
}

// Snapshot appends every live cell to dst.
func (p *population) Snapshot(dst []*Cell) []*Cell {
	return append(dst, p.cells...)
}
