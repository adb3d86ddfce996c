package sim

import (
	"errors"
	"fmt"
)

// Params are the immutable per-model parameters.
type Params struct {
	DeathRate           float64 // Base per-day death probability
	DivisionRate        float64 // Per-day division probability
	DrugGrowthReduction float64 // Fraction of Sensitive benefit removed while the drug is on
	Policy              Policy
	AdaptiveThreshold   float64 // Fraction of the baseline population bounding the adaptive toggle
	Payoff              PayoffMatrix
}

// ErrInvalidParams is wrapped by every Params validation failure.
var ErrInvalidParams = errors.New("sim: invalid parameters")

// Validate checks that probabilities and fractions are in range.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"death rate", p.DeathRate},
		{"division rate", p.DivisionRate},
		{"drug growth reduction", p.DrugGrowthReduction},
		{"adaptive threshold", p.AdaptiveThreshold},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 1 {
			return fmt.Errorf("%w: %s %v outside [0, 1]", ErrInvalidParams, c.name, c.value)
		}
	}
	if p.Policy > PolicyContinuous {
		return fmt.Errorf("%w: policy %d", ErrInvalidParams, p.Policy)
	}
	return nil
}
