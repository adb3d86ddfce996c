package sim

import (
	"fmt"

	"github.com/sydleither/spatial-egt/internal/core"
)

// Lattice2D is a bounded W×H grid holding at most one cell per site.
// Sites are stored in row-major order: index = y*W + x.
// Neighbourhoods do not wrap around the edges.
type Lattice2D struct {
	population
	w, h        int
	grid        []*Cell
	interaction []core.Offset2
	division    []core.Offset2
}

// NewLattice2D creates an empty lattice. The interaction neighbourhood
// is the disk of interactionRadius around a cell; division uses the
// von Neumann neighbourhood.
func NewLattice2D(w, h, interactionRadius int) *Lattice2D {
	return &Lattice2D{
		w:           w,
		h:           h,
		grid:        make([]*Cell, w*h),
		interaction: core.Disk(interactionRadius, false),
		division:    core.VonNeumann2D(),
	}
}

// Topology returns Topology2D.
func (l *Lattice2D) Topology() Topology {
	return Topology2D
}

// Dims returns the lattice width and height.
func (l *Lattice2D) Dims() (w, h int) {
	return l.w, l.h
}

// Index converts a coordinate to a site index.
func (l *Lattice2D) Index(x, y int) int {
	return y*l.w + x
}

// Coords converts a site index back to a coordinate.
func (l *Lattice2D) Coords(site int) (x, y int) {
	return site % l.w, site / l.w
}

// InBounds reports whether (x, y) lies on the lattice.
func (l *Lattice2D) InBounds(x, y int) bool {
	return x >= 0 && x < l.w && y >= 0 && y < l.h
}

// Center returns the site at the middle of the lattice.
func (l *Lattice2D) Center() int {
	return l.Index(l.w/2, l.h/2)
}

// Insert places a new cell at site. Panics if the site is occupied.
func (l *Lattice2D) Insert(site int, p core.Phenotype) *Cell {
	if l.grid[site] != nil {
		panic(fmt.Sprintf("sim: site %d already occupied", site))
	}
	c := &Cell{Phenotype: p, Site: site}
	l.grid[site] = c
	l.add(c)
	return c
}

// Remove empties the site held by c.
func (l *Lattice2D) Remove(c *Cell) {
	if !c.alive {
		return
	}
	l.grid[c.Site] = nil
	l.remove(c)
}

// At returns the cell at site, or nil.
func (l *Lattice2D) At(site int) *Cell {
	if site < 0 || site >= len(l.grid) {
		return nil
	}
	return l.grid[site]
}

// PhenotypeAt returns the phenotype at (x, y) and whether the site is occupied.
func (l *Lattice2D) PhenotypeAt(x, y int) (core.Phenotype, bool) {
	if !l.InBounds(x, y) {
		return 0, false
	}
	c := l.grid[l.Index(x, y)]
	if c == nil {
		return 0, false
	}
	return c.Phenotype, true
}

// InteractionCounts scans the interaction disk around c.
func (l *Lattice2D) InteractionCounts(c *Cell) (neighbors, sensitive int) {
	x, y := l.Coords(c.Site)
	for _, o := range l.interaction {
		nx, ny := x+o.DX, y+o.DY
		if !l.InBounds(nx, ny) {
			continue
		}
		n := l.grid[l.Index(nx, ny)]
		if n == nil {
			continue
		}
		neighbors++
		if n.Phenotype == core.Sensitive {
			sensitive++
		}
	}
	return neighbors, sensitive
}

// EmptyDivisionSites appends the empty von Neumann neighbours of c.
func (l *Lattice2D) EmptyDivisionSites(c *Cell, dst []int) []int {
	x, y := l.Coords(c.Site)
	for _, o := range l.division {
		nx, ny := x+o.DX, y+o.DY
		if !l.InBounds(nx, ny) {
			continue
		}
		site := l.Index(nx, ny)
		if l.grid[site] == nil {
			dst = append(dst, site)
		}
	}
	return dst
}

// EmptySites appends every empty site in index order.
func (l *Lattice2D) EmptySites(dst []int) []int {
	for site, c := range l.grid {
		if c == nil {
			dst = append(dst, site)
		}
	}
	return dst
}

// DiskSites returns the in-bounds sites within radius of the centre,
// including the centre itself.
func (l *Lattice2D) DiskSites(radius int) []int {
	cx, cy := l.w/2, l.h/2
	var sites []int
	for _, o := range core.Disk(radius, true) {
		x, y := cx+o.DX, cy+o.DY
		if l.InBounds(x, y) {
			sites = append(sites, l.Index(x, y))
		}
	}
	return sites
}
