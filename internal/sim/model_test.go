package sim

import (
	"errors"
	"testing"

	"github.com/sydleither/spatial-egt/internal/core"
)

func newTestModel(t *testing.T, space Space, params Params, seed int64) *Model {
	t.Helper()
	m, err := NewModel(space, params, core.NewRand(seed))
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	return m
}

func defaultTestParams(policy Policy) Params {
	return Params{
		DeathRate:           0.009,
		DivisionRate:        0.5,
		DrugGrowthReduction: 0.5,
		Policy:              policy,
		AdaptiveThreshold:   0.5,
		Payoff:              NewPayoffMatrix(0.03, 0.01, 0.02, 0.015),
	}
}

func TestNewModelRejectsInvalidParams(t *testing.T) {
	params := defaultTestParams(PolicyNull)
	params.DeathRate = 1.5
	if _, err := NewModel(NewWellMixed(), params, core.NewRand(1)); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("NewModel() error = %v, expected ErrInvalidParams", err)
	}
}

func TestSingleCellNoDivisionNoDeath(t *testing.T) {
	l := NewLattice2D(10, 10, 2)
	m := newTestModel(t, l, Params{Payoff: NewPayoffMatrix(1, 1, 1, 1)}, 42)
	if err := m.InitTumor(0, 1); err != nil {
		t.Fatalf("InitTumor() failed: %v", err)
	}
	if c := l.At(l.Center()); c == nil || c.Phenotype != core.Resistant {
		t.Fatal("expected one resistant cell at the centre")
	}

	for i := 0; i < 50; i++ {
		res := m.Step()
		if res.Counts.Total() != 1 || res.Counts.Resistant != 1 {
			t.Fatalf("step %d: counts = %+v, expected a single resistant cell", i, res.Counts)
		}
	}
	if m.Tick() != 50 {
		t.Errorf("Tick() = %d, expected 50", m.Tick())
	}
}

func TestStepDeterministic(t *testing.T) {
	run := func() []core.Counts {
		l := NewLattice2D(20, 20, 2)
		m := newTestModel(t, l, defaultTestParams(PolicyAdaptive), 99)
		if err := m.InitTumorRandom(40, 0.3); err != nil {
			t.Fatalf("InitTumorRandom() failed: %v", err)
		}
		var series []core.Counts
		for i := 0; i < 100; i++ {
			series = append(series, m.Step().Counts)
		}
		return series
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("step %d: %+v != %+v with identical seeds", i, a[i], b[i])
		}
	}
}

func TestStepEventInvariants(t *testing.T) {
	for _, space := range []func() Space{
		func() Space { return NewWellMixed() },
		func() Space { return NewLattice2D(15, 15, 2) },
		func() Space { return NewLattice3D(6, 6, 6, 1) },
	} {
		s := space()
		t.Run(string(s.Topology()), func(t *testing.T) {
			params := defaultTestParams(PolicyAdaptive)
			params.DeathRate = 0.2
			m := newTestModel(t, s, params, 7)
			if err := m.InitTumorRandom(30, 0.5); err != nil {
				t.Fatalf("InitTumorRandom() failed: %v", err)
			}

			var died, divided map[*Cell]bool
			m.SetObserver(func(ev Event) {
				switch ev.Kind {
				case EventDeath:
					died[ev.Cell] = true
				case EventBirth:
					divided[ev.Parent] = true
					if ev.Cell.Phenotype != ev.Parent.Phenotype {
						t.Fatalf("child phenotype %v differs from parent %v", ev.Cell.Phenotype, ev.Parent.Phenotype)
					}
				}
			})

			for i := 0; i < 200 && s.Len() > 0 && s.Len() < 2000; i++ {
				died = make(map[*Cell]bool)
				divided = make(map[*Cell]bool)
				before := s.Len()

				res := m.Step()

				if res.Births > before {
					t.Fatalf("step %d: %d births from %d cells", i, res.Births, before)
				}
				for c := range died {
					if divided[c] {
						t.Fatalf("step %d: a cell both died and divided", i)
					}
				}
				if got := before + res.Births - res.Deaths; got != s.Len() {
					t.Fatalf("step %d: %d + %d - %d != %d", i, before, res.Births, res.Deaths, s.Len())
				}
				if res.Counts != s.Counts() {
					t.Fatalf("step %d: reported counts %+v, container has %+v", i, res.Counts, s.Counts())
				}
			}
		})
	}
}

func TestNewbornsDoNotActInBirthStep(t *testing.T) {
	params := Params{DivisionRate: 1, Payoff: NewPayoffMatrix(0, 0, 0, 0)}
	m := newTestModel(t, NewWellMixed(), params, 1)
	if err := m.InitTumorRandom(1, 0); err != nil {
		t.Fatalf("InitTumorRandom() failed: %v", err)
	}

	// Every cell divides each step, so the population doubles exactly.
	for i, expected := range []int{2, 4, 8, 16} {
		if got := m.Step().Counts.Total(); got != expected {
			t.Fatalf("step %d: total = %d, expected %d", i, got, expected)
		}
	}
}

func TestPhenotypeInheritedOverLongRun(t *testing.T) {
	l := NewLattice2D(25, 25, 2)
	params := defaultTestParams(PolicyContinuous)
	params.DeathRate = 0.1
	m := newTestModel(t, l, params, 2024)
	if err := m.InitTumorRandom(50, 0.5); err != nil {
		t.Fatalf("InitTumorRandom() failed: %v", err)
	}

	births := 0
	m.SetObserver(func(ev Event) {
		if ev.Kind != EventBirth {
			return
		}
		births++
		if ev.Cell.Phenotype != ev.Parent.Phenotype {
			t.Fatalf("tick %d: child %v from parent %v", ev.Tick, ev.Cell.Phenotype, ev.Parent.Phenotype)
		}
	})

	for i := 0; i < 1000; i++ {
		m.Step()
	}
	if births == 0 {
		t.Error("expected at least one division in 1000 steps")
	}
	if l.Len() > 25*25 {
		t.Errorf("Len() = %d exceeds lattice capacity", l.Len())
	}
}

func TestContinuousDrugAlwaysOn(t *testing.T) {
	m := newTestModel(t, NewWellMixed(), defaultTestParams(PolicyContinuous), 1)
	if err := m.InitTumorRandom(10, 0.5); err != nil {
		t.Fatalf("InitTumorRandom() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if !m.Step().DrugOn {
			t.Fatalf("step %d: continuous drug reported off", i)
		}
	}
}

// TestAdaptiveStepFollowsHysteresis drives a well-mixed adaptive model
// whose sensitive cells die with certainty while the drug is on and never
// otherwise, so each step's deaths show the drug state its payoffs used.
func TestAdaptiveStepFollowsHysteresis(t *testing.T) {
	params := Params{
		DrugGrowthReduction: 1,
		Policy:              PolicyAdaptive,
		AdaptiveThreshold:   0.5,
		Payoff:              NewPayoffMatrix(100, 10, 0, 0),
	}
	w := NewWellMixed()
	m := newTestModel(t, w, params, 3)
	if err := m.InitTumorRandom(10, 0); err != nil {
		t.Fatalf("InitTumorRandom() failed: %v", err)
	}

	// Bounds for P0=10, t=0.5: on at >= 15, off at <= 5. A lone cell has
	// no interaction partners and a zero payoff, so one always survives.
	script := []struct {
		add    int // Sensitive cells added before the step
		drugOn bool
		deaths int
	}{
		{0, false, 0},  // 10
		{6, true, 15},  // 16 reaches the upper bound
		{7, true, 7},   // 8 is between the bounds, drug stays on
		{2, false, 0},  // 3 is below the lower bound
		{11, false, 0}, // 14 is between the bounds, drug stays off
		{1, true, 14},  // 15 reaches the upper bound again
	}

	for i, step := range script {
		for range step.add {
			w.Insert(NoSite, core.Sensitive)
		}
		res := m.Step()
		if res.DrugOn != step.drugOn {
			t.Errorf("step %d: DrugOn = %v, expected %v", i, res.DrugOn, step.drugOn)
		}
		if res.Deaths != step.deaths {
			t.Errorf("step %d: Deaths = %d, expected %d", i, res.Deaths, step.deaths)
		}
		if m.DrugOn() != step.drugOn {
			t.Errorf("step %d: Model.DrugOn() = %v after step", i, m.DrugOn())
		}
	}
}
