package sim

import (
	"math"
	"testing"

	"github.com/sydleither/spatial-egt/internal/core"
)

func TestPayoffNoNeighbors(t *testing.T) {
	matrices := []PayoffMatrix{
		NewPayoffMatrix(0, 0, 0, 0),
		NewPayoffMatrix(2, 1, 3, 4),
		NewPayoffMatrix(-5, 7, 0.03, 0.024),
	}
	for _, m := range matrices {
		for _, p := range []core.Phenotype{core.Sensitive, core.Resistant} {
			if got := Payoff(p, 0, 0, m.Benefit(p), m.Cost()); got != 0 {
				t.Errorf("Payoff(%v, n=0) with %v = %f, expected 0", p, m, got)
			}
		}
	}
}

func TestPayoffFormula(t *testing.T) {
	tests := []struct {
		name      string
		focal     core.Phenotype
		neighbors int
		sensitive int
		benefit   float64
		cost      float64
		expected  float64
	}{
		{"sensitive all cooperators", core.Sensitive, 4, 4, 2, 1, 2*5.0/4 - 1},
		{"sensitive among defectors", core.Sensitive, 4, 0, 2, 1, 2*1.0/4 - 1},
		{"resistant all cooperators", core.Resistant, 4, 4, 2, 1, 2},
		{"resistant among defectors", core.Resistant, 4, 0, 2, 1, 0},
		{"resistant mixed", core.Resistant, 12, 3, 0.03, 0.03, 0.03 * 3 / 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Payoff(tc.focal, tc.neighbors, tc.sensitive, tc.benefit, tc.cost)
			if math.Abs(got-tc.expected) > 1e-12 {
				t.Errorf("Payoff() = %f, expected %f", got, tc.expected)
			}
		})
	}
}

func TestPayoffMatrixEntries(t *testing.T) {
	m := NewPayoffMatrix(1, 2, 3, 4)
	if m.Benefit(core.Sensitive) != 1 {
		t.Errorf("Benefit(Sensitive) = %f, expected 1", m.Benefit(core.Sensitive))
	}
	if m.Benefit(core.Resistant) != 3 {
		t.Errorf("Benefit(Resistant) = %f, expected 3", m.Benefit(core.Resistant))
	}
	if m.Cost() != 2 {
		t.Errorf("Cost() = %f, expected 2", m.Cost())
	}
}

func TestWellMixedPayoffScenario(t *testing.T) {
	params := Params{Payoff: NewPayoffMatrix(2, 1, 0, 0)}
	m, err := NewModel(NewWellMixed(), params, core.NewRand(1))
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if err := m.InitTumorRandom(100, 0); err != nil {
		t.Fatalf("InitTumorRandom() failed: %v", err)
	}

	expected := 2.0*100/99 - 1
	for _, c := range m.Space().Snapshot(nil) {
		if got := m.Payoff(c); math.Abs(got-expected) > 1e-12 {
			t.Fatalf("Payoff() = %f, expected %f", got, expected)
		}
	}
}

func TestDrugReducesSensitiveBenefit(t *testing.T) {
	params := Params{
		DrugGrowthReduction: 0.5,
		Policy:              PolicyContinuous,
		Payoff:              NewPayoffMatrix(2, 1, 2, 0),
	}
	m, err := NewModel(NewWellMixed(), params, core.NewRand(1))
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	s := m.Space().Insert(NoSite, core.Sensitive)
	r := m.Space().Insert(NoSite, core.Resistant)

	// Sensitive focal: one Resistant neighbour, benefit halved to 1.
	if got, want := m.Payoff(s), 1.0*1/1-1; got != want {
		t.Errorf("Sensitive payoff under drug = %f, expected %f", got, want)
	}
	// Resistant focal is unaffected by the drug.
	if got, want := m.Payoff(r), 2.0; got != want {
		t.Errorf("Resistant payoff under drug = %f, expected %f", got, want)
	}
}
