package sim

import (
	"fmt"
	"math"
)

// Policy is a treatment schedule.
type Policy uint8

const (
	PolicyNull       Policy = iota // drug never applied
	PolicyAdaptive                 // drug toggled by tumour burden
	PolicyContinuous               // drug always applied
)

// Policies lists every policy in the order models are reported.
var Policies = []Policy{PolicyNull, PolicyAdaptive, PolicyContinuous}

// String returns the policy name used in CSV headers and storage.
func (p Policy) String() string {
	switch p {
	case PolicyNull:
		return "null"
	case PolicyAdaptive:
		return "adaptive"
	case PolicyContinuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a policy name back to a Policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("sim: unknown policy %q", s)
}

// Treatment tracks whether the drug is currently applied.
//
// For PolicyAdaptive the drug turns on once the population reaches
// (1+threshold)·baseline and stays on until it falls to
// (1-threshold)·baseline. It starts off.
type Treatment struct {
	policy    Policy
	threshold float64
	baseline  int
	upper     int // Smallest population that turns the drug on
	lower     int // Largest population that turns the drug off
	on        bool
}

// boundEpsilon absorbs rounding in (1±threshold)·baseline so that an exact
// product such as 1.1·100 is not pushed past its integer value.
const boundEpsilon = 1e-9

// NewTreatment creates the treatment state for policy.
func NewTreatment(policy Policy, threshold float64) Treatment {
	return Treatment{
		policy:    policy,
		threshold: threshold,
		on:        policy == PolicyContinuous,
	}
}

// SetBaseline records the initial population the adaptive bounds refer to.
func (t *Treatment) SetBaseline(population int) {
	base := float64(population)
	t.baseline = population
	t.upper = int(math.Ceil((1+t.threshold)*base - boundEpsilon))
	t.lower = int(math.Floor((1-t.threshold)*base + boundEpsilon))
}

// Baseline returns the recorded initial population.
func (t *Treatment) Baseline() int {
	return t.baseline
}

// Update re-evaluates the drug state against the current population
// and returns it. Only the adaptive policy ever changes state.
func (t *Treatment) Update(population int) bool {
	if t.policy != PolicyAdaptive {
		return t.on
	}
	switch {
	case population >= t.upper:
		t.on = true
	case population <= t.lower:
		t.on = false
	}
	return t.on
}

// On reports whether the drug is currently applied.
func (t *Treatment) On() bool {
	return t.on
}

// Policy returns the treatment policy.
func (t *Treatment) Policy() Policy {
	return t.policy
}
