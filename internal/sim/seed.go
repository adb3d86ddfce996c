package sim

import (
	"errors"
	"fmt"

	"github.com/sydleither/spatial-egt/internal/core"
)

var (
	// ErrUnsupportedSeeding is returned when a seeding mode does not
	// apply to the model's topology.
	ErrUnsupportedSeeding = errors.New("sim: seeding mode not supported by topology")

	// ErrLatticeFull is returned when more cells are requested than
	// there are empty sites.
	ErrLatticeFull = errors.New("sim: not enough empty sites")
)

// InitTumorRandom places count cells at distinct random empty sites
// (or simply creates them in a well-mixed pool). Each cell is Resistant
// with probability resistantFraction, else Sensitive. The resulting
// population becomes the adaptive treatment baseline.
func (m *Model) InitTumorRandom(count int, resistantFraction float64) error {
	sites := m.space.EmptySites(nil)
	unbounded := len(sites) == 1 && sites[0] == NoSite
	if !unbounded && count > len(sites) {
		return fmt.Errorf("%w: want %d, have %d", ErrLatticeFull, count, len(sites))
	}

	for i := 0; i < count; i++ {
		site := NoSite
		if !unbounded {
			k := m.rng.Int(len(sites))
			site = sites[k]
			sites[k] = sites[len(sites)-1]
			sites = sites[:len(sites)-1]
		}
		m.space.Insert(site, m.drawPhenotype(resistantFraction))
	}

	m.treatment.SetBaseline(m.space.Len())
	return nil
}

// InitTumor fills every site of the disk of the given radius around the
// lattice centre. Only 2D lattices support it.
func (m *Model) InitTumor(radius int, resistantFraction float64) error {
	lattice, ok := m.space.(*Lattice2D)
	if !ok {
		return fmt.Errorf("%w: disk seeding on %s", ErrUnsupportedSeeding, m.space.Topology())
	}
	for _, site := range lattice.DiskSites(radius) {
		if lattice.At(site) != nil {
			continue
		}
		lattice.Insert(site, m.drawPhenotype(resistantFraction))
	}
	m.treatment.SetBaseline(m.space.Len())
	return nil
}

func (m *Model) drawPhenotype(resistantFraction float64) core.Phenotype {
	if m.rng.Double() < resistantFraction {
		return core.Resistant
	}
	return core.Sensitive
}
