package sim

import (
	"github.com/sydleither/spatial-egt/internal/core"
)

// payoffScale divides the payoff before it is subtracted from the death rate.
const payoffScale = 10

// EventKind distinguishes observer events.
type EventKind uint8

const (
	EventBirth EventKind = iota
	EventDeath
)

// Event describes one birth or death during a step.
type Event struct {
	Kind   EventKind
	Tick   int
	Cell   *Cell // The newborn, or the cell that died
	Parent *Cell // Set for births only
}

// StepResult summarises one call to Model.Step.
type StepResult struct {
	Tick   int // Tick that was simulated
	Births int
	Deaths int
	DrugOn bool
	Counts core.Counts // Live cells after the step
}

// Model binds one population container, one random stream, and one
// treatment policy into a runnable unit. A Model is not safe for
// concurrent use, but distinct Models share nothing.
type Model struct {
	params    Params
	space     Space
	rng       *core.Rand
	treatment Treatment
	tick      int
	observer  func(Event)

	// Reused per-step buffers
	order []*Cell
	sites []int
}

// NewModel creates a model over an empty space.
func NewModel(space Space, params Params, rng *core.Rand) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		params:    params,
		space:     space,
		rng:       rng,
		treatment: NewTreatment(params.Policy, params.AdaptiveThreshold),
	}, nil
}

// SetObserver installs fn to receive every birth and death. Pass nil to remove.
func (m *Model) SetObserver(fn func(Event)) {
	m.observer = fn
}

// Space returns the model's population container.
func (m *Model) Space() Space {
	return m.space
}

// Params returns the model parameters.
func (m *Model) Params() Params {
	return m.params
}

// Policy returns the treatment policy.
func (m *Model) Policy() Policy {
	return m.params.Policy
}

// Tick returns the number of completed steps.
func (m *Model) Tick() int {
	return m.tick
}

// Counts returns the live cells per phenotype.
func (m *Model) Counts() core.Counts {
	return m.space.Counts()
}

// DrugOn reports the treatment state observed by the most recent step.
func (m *Model) DrugOn() bool {
	return m.treatment.On()
}

// Baseline returns the population recorded at seeding.
func (m *Model) Baseline() int {
	return m.treatment.Baseline()
}

// Payoff computes the payoff of c under the current treatment state.
func (m *Model) Payoff(c *Cell) float64 {
	return m.payoff(c, m.treatment.On())
}

func (m *Model) payoff(c *Cell, drugOn bool) float64 {
	neighbors, sensitive := m.space.InteractionCounts(c)
	benefit := m.params.Payoff.Benefit(c.Phenotype)
	if drugOn && c.Phenotype == core.Sensitive {
		benefit *= 1 - m.params.DrugGrowthReduction
	}
	return Payoff(c.Phenotype, neighbors, sensitive, benefit, m.params.Payoff.Cost())
}

// Step simulates one day.
//
// The treatment state is evaluated once, then every cell alive at the
// start of the step is updated in a fresh random order. Updates apply
// immediately, so later cells see earlier births and deaths. Per cell
// the random stream is consumed as: death draw, then (if it survived)
// division draw, then (if dividing into a free site) the site draw.
func (m *Model) Step() StepResult {
	drugOn := m.treatment.Update(m.space.Len())
	res := StepResult{Tick: m.tick, DrugOn: drugOn}

	m.order = m.space.Snapshot(m.order[:0])
	order := m.order
	m.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for _, c := range order {
		if !c.alive {
			continue
		}
		payoff := m.payoff(c, drugOn)

		if m.rng.Double() < m.params.DeathRate-payoff/payoffScale {
			m.space.Remove(c)
			res.Deaths++
			m.emit(Event{Kind: EventDeath, Tick: m.tick, Cell: c})
			continue
		}

		if m.rng.Double() < m.params.DivisionRate {
			m.sites = m.space.EmptyDivisionSites(c, m.sites[:0])
			if len(m.sites) == 0 {
				continue
			}
			child := m.space.Insert(m.sites[m.rng.Int(len(m.sites))], c.Phenotype)
			res.Births++
			m.emit(Event{Kind: EventBirth, Tick: m.tick, Cell: child, Parent: c})
		}
	}

	// Drop references so dead cells can be collected.
	clear(m.order)

	m.tick++
	res.Counts = m.space.Counts()
	return res
}

func (m *Model) emit(ev Event) {
	if m.observer != nil {
		m.observer(ev)
	}
}
