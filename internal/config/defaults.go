package config

import (
	_ "embed"
	"fmt"
)

//go:embed defaults/experiment.yaml
var defaultExperimentYAML []byte

// Default returns the embedded default experiment.
func Default() *Experiment {
	exp, err := parse(defaultExperimentYAML, "embedded")
	if err != nil {
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}
	return exp
}
