package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OutputRoot is the directory experiment files and results live under.
const OutputRoot = "output"

// Load reads an experiment.
// Search order: customPath -> output/<expDir>/<expName>/<expName>.json ->
// ~/.spatialegt/configs/default.yaml -> ./configs/default.yaml -> embedded default.
//
// A custom path or experiment name that was asked for must exist and parse;
// only the user and local defaults fall through silently.
func Load(customPath, expDir, expName string) (*Experiment, error) {
	if customPath != "" {
		return loadFile(customPath)
	}

	if expDir != "" && expName != "" {
		return loadFile(ExperimentPath(expDir, expName))
	}

	if userCfgPath := userConfigPath("default.yaml"); userCfgPath != "" {
		if exp, err := loadFile(userCfgPath); err == nil {
			return exp, nil
		}
	}

	if exp, err := loadFile(filepath.Join("configs", "default.yaml")); err == nil {
		return exp, nil
	}

	return parse(defaultExperimentYAML, "embedded")
}

// ExperimentPath returns the location of an experiment's parameter file.
func ExperimentPath(expDir, expName string) string {
	return filepath.Join(OutputRoot, expDir, expName, expName+".json")
}

// RunDir returns the directory one replicate writes its outputs to.
func RunDir(expDir, expName, rep string) string {
	return filepath.Join(OutputRoot, expDir, expName, rep)
}

func loadFile(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	exp, err := parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return exp, nil
}

// parse decodes, applies optional defaults and validates one document.
func parse(data []byte, source string) (*Experiment, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("empty document")
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingParam, missing)
	}

	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	exp.Source = source

	if _, ok := raw["divisionRate"]; !ok {
		exp.DivisionRate = DefaultDivisionRate
		exp.Defaulted = append(exp.Defaulted, "divisionRate")
	}
	if _, ok := raw["neighborhoodRadius"]; !ok {
		exp.NeighborhoodRadius = DefaultNeighborhoodRadius
		exp.Defaulted = append(exp.Defaulted, "neighborhoodRadius")
	}
	if _, ok := raw["adaptiveTreatmentThreshold"]; !ok {
		exp.AdaptiveTreatmentThreshold = DefaultAdaptiveThreshold
		exp.Defaulted = append(exp.Defaulted, "adaptiveTreatmentThreshold")
	}
	if exp.Seeding == "" {
		exp.Seeding = SeedingRandom
	}

	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".spatialegt", "configs", filename)
}
