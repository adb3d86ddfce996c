package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sydleither/spatial-egt/internal/sim"
)

// generatedJSON mirrors a file written by generate_configs.py.
const generatedJSON = `{
    "x": 125,
    "y": 125,
    "deathRate": 0.0081,
    "drugGrowthReduction": 0.5,
    "numCells": 4375,
    "proportionResistant": 0.01,
    "numDays": 50000,
    "egt": true,
    "A": 0.03,
    "B": 0.03,
    "C": 0.017,
    "D": 0.024
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

func TestLoadGeneratedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "competition.json")
	writeFile(t, path, generatedJSON)

	exp, err := Load(path, "", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if exp.X != 125 || exp.Y != 125 || exp.NumDays != 50000 || exp.NumCells != 4375 {
		t.Errorf("unexpected dimensions: %+v", exp)
	}
	if exp.C != 0.017 {
		t.Errorf("C = %v, expected 0.017", exp.C)
	}
	if exp.DivisionRate != DefaultDivisionRate {
		t.Errorf("DivisionRate = %v, expected default %v", exp.DivisionRate, DefaultDivisionRate)
	}
	for _, key := range []string{"divisionRate", "neighborhoodRadius", "adaptiveTreatmentThreshold"} {
		if !slices.Contains(exp.Defaulted, key) {
			t.Errorf("Defaulted = %v, expected it to contain %q", exp.Defaulted, key)
		}
	}
	if exp.Seeding != SeedingRandom {
		t.Errorf("Seeding = %q, expected %q", exp.Seeding, SeedingRandom)
	}
	if exp.Source != path {
		t.Errorf("Source = %q, expected %q", exp.Source, path)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	writeFile(t, path, `
numDays: 100
x: 50
y: 40
neighborhoodRadius: 3
deathRate: 0.01
divisionRate: 0.3
drugGrowthReduction: 0.75
numCells: 200
proportionResistant: 0.1
adaptiveTreatmentThreshold: 0.2
A: 0.1
B: 0.2
C: 0.3
D: 0.4
seeding: disk
initialRadius: 5
seed: 77
`)

	exp, err := Load(path, "", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(exp.Defaulted) != 0 {
		t.Errorf("Defaulted = %v, expected none", exp.Defaulted)
	}
	if exp.DivisionRate != 0.3 || exp.NeighborhoodRadius != 3 || exp.Seed != 77 {
		t.Errorf("unexpected values: %+v", exp)
	}
	if exp.Seeding != SeedingDisk || exp.InitialRadius != 5 {
		t.Errorf("Seeding = %q radius %d, expected disk radius 5", exp.Seeding, exp.InitialRadius)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{"missing key", `{"x": 10, "y": 10}`, ErrMissingParam},
		{"negative death rate", strings.Replace(generatedJSON, `"deathRate": 0.0081`, `"deathRate": -0.1`, 1), ErrInvalidParam},
		{"zero width", strings.Replace(generatedJSON, `"x": 125`, `"x": 0`, 1), ErrInvalidParam},
		{"malformed value", strings.Replace(generatedJSON, `"numCells": 4375`, `"numCells": "many"`, 1), ErrInvalidParam},
		{"unknown seeding", strings.Replace(generatedJSON, `"egt": true`, `"seeding": "ring"`, 1), ErrInvalidParam},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			writeFile(t, path, tc.content)

			_, err := Load(path, "", "")
			if !errors.Is(err, tc.expected) {
				t.Errorf("Load() error = %v, expected %v", err, tc.expected)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), "", ""); err == nil {
		t.Error("Load() should fail for a missing explicit path")
	}
}

func TestLoadExperimentDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, filepath.Join(dir, ExperimentPath("games", "competition")), generatedJSON)

	exp, err := Load("", "games", "competition")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if exp.NumCells != 4375 {
		t.Errorf("NumCells = %d, expected 4375", exp.NumCells)
	}

	if _, err := Load("", "games", "missing"); err == nil {
		t.Error("Load() should fail for a missing experiment")
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	exp, err := Load("", "", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if exp.Source != "embedded" {
		t.Errorf("Source = %q, expected embedded", exp.Source)
	}
}

func TestDefaultIsValid(t *testing.T) {
	exp := Default()
	if err := exp.Validate(); err != nil {
		t.Fatalf("Default().Validate() failed: %v", err)
	}
	if len(exp.Defaulted) != 0 {
		t.Errorf("embedded default should set every key, defaulted %v", exp.Defaulted)
	}
}

func TestParamsPerPolicy(t *testing.T) {
	exp := Default()

	null := exp.Params(sim.PolicyNull)
	if null.DrugGrowthReduction != 0 {
		t.Errorf("null DrugGrowthReduction = %v, expected 0", null.DrugGrowthReduction)
	}

	adaptive := exp.Params(sim.PolicyAdaptive)
	if adaptive.AdaptiveThreshold != exp.AdaptiveTreatmentThreshold {
		t.Errorf("adaptive threshold = %v, expected %v", adaptive.AdaptiveThreshold, exp.AdaptiveTreatmentThreshold)
	}
	if adaptive.DrugGrowthReduction != exp.DrugGrowthReduction {
		t.Errorf("adaptive DrugGrowthReduction = %v, expected %v", adaptive.DrugGrowthReduction, exp.DrugGrowthReduction)
	}

	continuous := exp.Params(sim.PolicyContinuous)
	if continuous.Policy != sim.PolicyContinuous || continuous.AdaptiveThreshold != 0 {
		t.Errorf("unexpected continuous params: %+v", continuous)
	}

	for _, p := range []sim.Params{null, adaptive, continuous} {
		if err := p.Validate(); err != nil {
			t.Errorf("Params(%v).Validate() failed: %v", p.Policy, err)
		}
	}
}

func TestFrameInterval(t *testing.T) {
	exp := &Experiment{NumDays: 100}

	tests := []struct {
		frames   int
		expected int
	}{
		{10, 10},
		{3, 33},
		{1000, 1},
		{0, 101},
	}
	for _, tc := range tests {
		if got := exp.FrameInterval(tc.frames); got != tc.expected {
			t.Errorf("FrameInterval(%d) = %d, expected %d", tc.frames, got, tc.expected)
		}
	}
}
