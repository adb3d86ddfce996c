// Package experiment runs the null, adaptive and continuous models of one
// experiment side by side and feeds their observable state to recorders.
package experiment

import (
	"fmt"

	"github.com/sydleither/spatial-egt/internal/config"
	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/registry"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Models holds one model per treatment policy, indexed by sim.Policy.
type Models [3]*sim.Model

// Null returns the untreated model.
func (ms Models) Null() *sim.Model { return ms[sim.PolicyNull] }

// Adaptive returns the adaptively treated model.
func (ms Models) Adaptive() *sim.Model { return ms[sim.PolicyAdaptive] }

// Continuous returns the continuously treated model.
func (ms Models) Continuous() *sim.Model { return ms[sim.PolicyContinuous] }

// Sample returns the current counts of every model.
func (ms Models) Sample(tick int) Sample {
	s := Sample{Tick: tick}
	for i, m := range ms {
		s.Counts[i] = m.Counts()
	}
	return s
}

// Build constructs and seeds the three policy models of an experiment on
// the given topology. Each model draws from its own random stream derived
// from seed, so the three runs are independent but reproducible.
func Build(cfg *config.Experiment, topology string, seed int64) (Models, error) {
	var ms Models
	seeds := core.SplitSeeds(seed, len(sim.Policies))
	dims := registry.Dims{X: cfg.X, Y: cfg.Y, Radius: cfg.NeighborhoodRadius}

	for i, policy := range sim.Policies {
		space, err := registry.Create(topology, dims)
		if err != nil {
			return ms, err
		}

		m, err := sim.NewModel(space, cfg.Params(policy), core.NewRand(seeds[i]))
		if err != nil {
			return ms, fmt.Errorf("experiment: %s model: %w", policy, err)
		}

		switch cfg.Seeding {
		case config.SeedingDisk:
			err = m.InitTumor(cfg.InitialRadius, cfg.ProportionResistant)
		default:
			err = m.InitTumorRandom(cfg.NumCells, cfg.ProportionResistant)
		}
		if err != nil {
			return ms, fmt.Errorf("experiment: seeding %s model: %w", policy, err)
		}

		ms[policy] = m
	}
	return ms, nil
}
