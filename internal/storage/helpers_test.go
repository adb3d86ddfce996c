package storage

import "github.com/sydleither/spatial-egt/internal/config"

func testExperiment() *config.Experiment {
	exp := config.Default()
	exp.NumCells = 50
	return exp
}
