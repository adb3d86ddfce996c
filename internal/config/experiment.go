// Package config loads and validates experiment parameters.
//
// Experiment files use the key names of the original JSON configs, so both
// those files and hand-written YAML are accepted by the same loader.
package config

import (
	"errors"
	"fmt"

	"github.com/sydleither/spatial-egt/internal/sim"
)

var (
	// ErrMissingParam is returned when a required key is absent.
	ErrMissingParam = errors.New("config: missing parameter")

	// ErrInvalidParam is returned when a value is out of range.
	ErrInvalidParam = errors.New("config: invalid parameter")
)

// Seeding modes.
const (
	SeedingRandom = "random"
	SeedingDisk   = "disk"
)

// Defaults applied to optional keys.
const (
	DefaultDivisionRate       = 0.5
	DefaultNeighborhoodRadius = 2
	DefaultAdaptiveThreshold  = 0.5
)

// requiredKeys must be present in every experiment file.
var requiredKeys = []string{
	"numDays", "x", "y",
	"deathRate", "drugGrowthReduction",
	"numCells", "proportionResistant",
	"A", "B", "C", "D",
}

// Experiment holds the parameters of one experiment: three models run side
// by side under the null, adaptive and continuous policies.
type Experiment struct {
	NumDays                    int     `yaml:"numDays"`
	X                          int     `yaml:"x"`
	Y                          int     `yaml:"y"`
	NeighborhoodRadius         int     `yaml:"neighborhoodRadius"`
	DeathRate                  float64 `yaml:"deathRate"`
	DivisionRate               float64 `yaml:"divisionRate"`
	DrugGrowthReduction        float64 `yaml:"drugGrowthReduction"`
	NumCells                   int     `yaml:"numCells"`
	ProportionResistant        float64 `yaml:"proportionResistant"`
	AdaptiveTreatmentThreshold float64 `yaml:"adaptiveTreatmentThreshold"`

	// Payoff matrix entries, row = focal phenotype (sensitive, resistant).
	A float64 `yaml:"A"`
	B float64 `yaml:"B"`
	C float64 `yaml:"C"`
	D float64 `yaml:"D"`

	Seeding       string `yaml:"seeding"`       // "random" or "disk"
	InitialRadius int    `yaml:"initialRadius"` // Disk radius for "disk" seeding
	Seed          int64  `yaml:"seed"`          // 0 lets the caller pick one

	// Source is the file (or "embedded") the experiment was read from.
	Source string `yaml:"-"`

	// Defaulted lists optional keys that were absent and filled in.
	Defaulted []string `yaml:"-"`
}

// Validate checks every value range. It does not check presence; that is
// done by the loader on the raw document.
func (e *Experiment) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"numDays", e.NumDays},
		{"x", e.X},
		{"y", e.Y},
		{"neighborhoodRadius", e.NeighborhoodRadius},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParam, p.name, p.value)
		}
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"deathRate", e.DeathRate},
		{"divisionRate", e.DivisionRate},
		{"drugGrowthReduction", e.DrugGrowthReduction},
		{"proportionResistant", e.ProportionResistant},
		{"adaptiveTreatmentThreshold", e.AdaptiveTreatmentThreshold},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrInvalidParam, p.name, p.value)
		}
	}

	if e.NumCells < 0 {
		return fmt.Errorf("%w: numCells must not be negative, got %d", ErrInvalidParam, e.NumCells)
	}

	switch e.Seeding {
	case "", SeedingRandom:
	case SeedingDisk:
		if e.InitialRadius < 0 {
			return fmt.Errorf("%w: initialRadius must not be negative, got %d", ErrInvalidParam, e.InitialRadius)
		}
	default:
		return fmt.Errorf("%w: unknown seeding %q", ErrInvalidParam, e.Seeding)
	}
	return nil
}

// Payoff returns the experiment's payoff matrix.
func (e *Experiment) Payoff() sim.PayoffMatrix {
	return sim.NewPayoffMatrix(e.A, e.B, e.C, e.D)
}

// Params returns the model parameters for one treatment policy. The null
// model never applies the drug, so its growth reduction is zeroed.
func (e *Experiment) Params(policy sim.Policy) sim.Params {
	p := sim.Params{
		DeathRate:           e.DeathRate,
		DivisionRate:        e.DivisionRate,
		DrugGrowthReduction: e.DrugGrowthReduction,
		Policy:              policy,
		Payoff:              e.Payoff(),
	}
	switch policy {
	case sim.PolicyNull:
		p.DrugGrowthReduction = 0
	case sim.PolicyAdaptive:
		p.AdaptiveThreshold = e.AdaptiveTreatmentThreshold
	}
	return p
}

// FrameInterval returns the frame interval in days for the requested number
// of frames. It is never less than one.
func (e *Experiment) FrameInterval(frames int) int {
	if frames <= 0 {
		return e.NumDays + 1
	}
	if interval := e.NumDays / frames; interval > 0 {
		return interval
	}
	return 1
}
