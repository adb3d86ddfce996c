package sim

import "github.com/sydleither/spatial-egt/internal/core"

// WellMixed is a population without spatial structure. Every cell
// interacts with every other cell and division always succeeds.
type WellMixed struct {
	population
}

// NewWellMixed creates an empty well-mixed pool.
func NewWellMixed() *WellMixed {
	return &WellMixed{}
}

// Topology returns TopologyWellMixed.
func (w *WellMixed) Topology() Topology {
	return TopologyWellMixed
}

// Insert adds a cell of phenotype p. The site is ignored.
func (w *WellMixed) Insert(_ int, p core.Phenotype) *Cell {
	c := &Cell{Phenotype: p, Site: NoSite}
	w.add(c)
	return c
}

// Remove takes c out of the pool.
func (w *WellMixed) Remove(c *Cell) {
	if !c.alive {
		return
	}
	w.remove(c)
}

// At always returns nil: a pool has no positions.
func (w *WellMixed) At(int) *Cell {
	return nil
}

// InteractionCounts treats the whole pool, minus c, as the neighbourhood.
func (w *WellMixed) InteractionCounts(c *Cell) (neighbors, sensitive int) {
	neighbors = w.Len()
	sensitive = w.counts.Sensitive
	if c.alive {
		neighbors--
		if c.Phenotype == core.Sensitive {
			sensitive--
		}
	}
	return neighbors, sensitive
}

// EmptyDivisionSites always reports one available slot.
func (w *WellMixed) EmptyDivisionSites(_ *Cell, dst []int) []int {
	return append(dst, NoSite)
}

// EmptySites reports the single unbounded slot.
func (w *WellMixed) EmptySites(dst []int) []int {
	return append(dst, NoSite)
}
