package sim

import (
	"fmt"

	"github.com/sydleither/spatial-egt/internal/core"
)

// Lattice3D is a bounded W×H×D grid holding at most one cell per site.
// index = (z*H + y)*W + x. Neighbourhoods do not wrap around the edges.
type Lattice3D struct {
	population
	w, h, d     int
	grid        []*Cell
	interaction []core.Offset3
	division    []core.Offset3
}

// NewLattice3D creates an empty lattice with a ball-shaped interaction
// neighbourhood and a six-site von Neumann division neighbourhood.
func NewLattice3D(w, h, d, interactionRadius int) *Lattice3D {
	return &Lattice3D{
		w:           w,
		h:           h,
		d:           d,
		grid:        make([]*Cell, w*h*d),
		interaction: core.Ball(interactionRadius, false),
		division:    core.VonNeumann3D(),
	}
}

// Topology returns Topology3D.
func (l *Lattice3D) Topology() Topology {
	return Topology3D
}

// Dims returns the lattice extent along each axis.
func (l *Lattice3D) Dims() (w, h, d int) {
	return l.w, l.h, l.d
}

// Index converts a coordinate to a site index.
func (l *Lattice3D) Index(x, y, z int) int {
	return (z*l.h+y)*l.w + x
}

// Coords converts a site index back to a coordinate.
func (l *Lattice3D) Coords(site int) (x, y, z int) {
	x = site % l.w
	y = (site / l.w) % l.h
	z = site / (l.w * l.h)
	return x, y, z
}

// InBounds reports whether (x, y, z) lies on the lattice.
func (l *Lattice3D) InBounds(x, y, z int) bool {
	return x >= 0 && x < l.w && y >= 0 && y < l.h && z >= 0 && z < l.d
}

// Insert places a new cell at site. Panics if the site is occupied.
func (l *Lattice3D) Insert(site int, p core.Phenotype) *Cell {
	if l.grid[site] != nil {
		panic(fmt.Sprintf("sim: site %d already occupied", site))
	}
	c := &Cell{Phenotype: p, Site: site}
	l.grid[site] = c
	l.add(c)
	return c
}

// Remove empties the site held by c.
func (l *Lattice3D) Remove(c *Cell) {
	if !c.alive {
		return
	}
	l.grid[c.Site] = nil
	l.remove(c)
}

// At returns the cell at site, or nil.
func (l *Lattice3D) At(site int) *Cell {
	if site < 0 || site >= len(l.grid) {
		return nil
	}
	return l.grid[site]
}

// PhenotypeAt returns the phenotype at (x, y, z) and whether the site is occupied.
func (l *Lattice3D) PhenotypeAt(x, y, z int) (core.Phenotype, bool) {
	if !l.InBounds(x, y, z) {
		return 0, false
	}
	c := l.grid[l.Index(x, y, z)]
	if c == nil {
		return 0, false
	}
	return c.Phenotype, true
}

// InteractionCounts scans the interaction ball around c.
func (l *Lattice3D) InteractionCounts(c *Cell) (neighbors, sensitive int) {
	x, y, z := l.Coords(c.Site)
	for _, o := range l.interaction {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if !l.InBounds(nx, ny, nz) {
			continue
		}
		n := l.grid[l.Index(nx, ny, nz)]
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

// EmptyDivisionSites appends the empty face neighbours of c.
func (l *Lattice3D) EmptyDivisionSites(c *Cell, dst []int) []int {
	x, y, z := l.Coords(c.Site)
	for _, o := range l.division {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if !l.InBounds(nx, ny, nz) {
			continue
		}
		site := l.Index(nx, ny, nz)
		if l.grid[site] == nil {
			dst = append(dst, site)
		}
	}
	return dst
}

// EmptySites appends every empty site in index order.
func (l *Lattice3D) EmptySites(dst []int) []int {
	for site, c := range l.grid {
		if c == nil {
			dst = append(dst, site)
		}
	}
	return dst
}

// Slice returns the z-plane at depth z as a Plane.
func (l *Lattice3D) Slice(z int) Plane {
	return slice3D{l: l, z: z}
}

type slice3D struct {
	l *Lattice3D
	z int
}

func (s slice3D) Dims() (w, h int) {
	return s.l.w, s.l.h
}

func (s slice3D) PhenotypeAt(x, y int) (core.Phenotype, bool) {
	return s.l.PhenotypeAt(x, y, s.z)
}
