package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sydleither/spatial-egt/internal/config"
	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/registry"
	"github.com/sydleither/spatial-egt/internal/report"
	"github.com/sydleither/spatial-egt/internal/sim"
	"github.com/sydleither/spatial-egt/internal/storage"
)

var (
	flagConfig      string
	flagVisualize   bool
	flagGranularity int
	flagScale       int
	flagMovie       bool
	flagMovieFPS    int
	flagChart       bool
	flagParallel    bool
	flagOut         string
)

var runCmd = &cobra.Command{
	Use:   "run <expDir> <expName> <dimension> <rep>",
	Short: "Run one replicate of an experiment",
	Long: `Run the null, adaptive and continuous models of an experiment and write
their populations every other day to

  output/<expDir>/<expName>/<rep>/<dimension>populations.csv

Parameters are read from output/<expDir>/<expName>/<expName>.json unless
--config is given. Dimension is WM, 2D or 3D.

With --visualize, frames of the three lattices are written as
<dimension>model_tick<tick>.png, --granularity times over the run.

Examples:
  spatialegt run exp1 coexist 2D 0
  spatialegt run exp1 coexist WM 3 --chart
  spatialegt run exp1 coexist 2D 0 --visualize --granularity 50 --movie
  spatialegt run exp1 coexist 3D 1 --config ./coexist.yaml --seed 42`,
	Args: cobra.ExactArgs(4),
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagConfig, "config", "", "Path to experiment parameters (JSON or YAML)")
	runCmd.Flags().BoolVar(&flagVisualize, "visualize", false, "Write lattice frames as PNG")
	runCmd.Flags().IntVar(&flagGranularity, "granularity", 10, "Number of frames over the run")
	runCmd.Flags().IntVar(&flagScale, "scale", 4, "Frame pixels per lattice site")
	runCmd.Flags().BoolVar(&flagMovie, "movie", false, "Also write frames to an MJPEG movie")
	runCmd.Flags().IntVar(&flagMovieFPS, "fps", 5, "Movie frames per second")
	runCmd.Flags().BoolVar(&flagChart, "chart", false, "Plot populations over time as PNG")
	runCmd.Flags().BoolVar(&flagParallel, "parallel", false, "Step the three models concurrently")
	runCmd.Flags().StringVar(&flagOut, "out", config.OutputRoot, "Output root directory")
}

// runRequest identifies one replicate and how to record it.
type runRequest struct {
	ExpDir    string
	ExpName   string
	Dimension string
	Rep       string
	Config    string
	OutRoot   string
	DBPath    string
	Seed      int64

	Visualize   bool
	Granularity int
	Scale       int
	Movie       bool
	MovieFPS    int
	Chart       bool
	Parallel    bool
}

// Dir returns the replicate's output directory.
func (r runRequest) Dir() string {
	return filepath.Join(r.OutRoot, r.ExpDir, r.ExpName, r.Rep)
}

func runRun(_ *cobra.Command, args []string) {
	req := runRequest{
		ExpDir:      args[0],
		ExpName:     args[1],
		Dimension:   args[2],
		Rep:         args[3],
		Config:      flagConfig,
		OutRoot:     flagOut,
		DBPath:      flagDBPath,
		Seed:        flagSeed,
		Visualize:   flagVisualize,
		Granularity: flagGranularity,
		Scale:       flagScale,
		Movie:       flagMovie,
		MovieFPS:    flagMovieFPS,
		Chart:       flagChart,
		Parallel:    flagParallel,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger("spatialegt")
	if _, err := runExperiment(ctx, req, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runExperiment runs one replicate and writes its outputs.
func runExperiment(ctx context.Context, req runRequest, logger *log.Logger) (experiment.Summary, error) {
	if !registry.Exists(req.Dimension) {
		return experiment.Summary{}, fmt.Errorf("unknown dimension %q (run 'spatialegt topologies')", req.Dimension)
	}

	exp, err := config.Load(req.Config, req.ExpDir, req.ExpName)
	if err != nil {
		return experiment.Summary{}, err
	}
	if len(exp.Defaulted) > 0 {
		logger.Warn("parameters missing from experiment, using defaults",
			"source", exp.Source, "keys", strings.Join(exp.Defaulted, ","))
	}

	seed := resolveSeed(req.Seed, exp.Seed)

	models, err := experiment.Build(exp, req.Dimension, seed)
	if err != nil {
		return experiment.Summary{}, err
	}

	game := report.ClassifyGame(exp.A, exp.B, exp.C, exp.D)
	logger.Info("experiment loaded",
		"source", exp.Source,
		"dimension", req.Dimension,
		"rep", req.Rep,
		"seed", seed,
		"game", game,
	)

	opts := experiment.Options{Parallel: req.Parallel, Logger: logger}
	if req.Visualize || req.Movie {
		opts.FrameInterval = exp.FrameInterval(req.Granularity)
	}
	runner := experiment.NewRunner(models, exp.NumDays, opts)

	dir := req.Dir()
	csvRec, err := report.CreateCSV(filepath.Join(dir, report.PopulationsFile(req.Dimension)))
	if err != nil {
		return experiment.Summary{}, err
	}
	runner.AddRecorder(csvRec)

	var memory experiment.MemoryRecorder
	if req.Chart {
		runner.AddRecorder(&memory)
	}

	var stored *experiment.BestEffortRecorder
	store, runID := openRunStore(req, exp, seed, game, logger)
	if store != nil {
		defer store.Close()
		rec, recErr := store.Recorder(runID)
		if recErr != nil {
			logger.Warn("cannot record populations to database", "error", recErr)
		} else {
			stored = experiment.NewBestEffortRecorder("database", rec, logger)
			runner.AddRecorder(stored)
		}
	}

	renderer := report.NewFrameRenderer(req.Scale)
	if req.Visualize {
		runner.AddFrameRecorder(&report.PNGRecorder{Dir: dir, Renderer: renderer})
	}
	if req.Movie {
		moviePath := filepath.Join(dir, req.Dimension+"model.avi")
		runner.AddFrameRecorder(report.NewMovieRecorder(moviePath, req.MovieFPS, renderer))
	}

	sum, err := runner.Run(ctx)
	if err != nil {
		return sum, fmt.Errorf("run %s/%s/%s: %w", req.ExpDir, req.ExpName, req.Rep, err)
	}

	switch {
	case stored != nil && stored.Failed():
		logger.Warn("run left incomplete in database", "run", runID)
	case stored != nil:
		if err := store.CompleteRun(runID, sum.Duration); err != nil {
			logger.Warn("cannot mark run complete", "run", runID, "error", err)
		}
	}

	if req.Chart {
		writeChart(req, game, memory.Samples, logger)
	}

	logger.Info("outputs written", "dir", dir, "frames", sum.Frames, "duration", sum.Duration)
	return sum, nil
}

// openRunStore registers the run in the database. Storage problems are
// logged and the run continues without it.
func openRunStore(req runRequest, exp *config.Experiment, seed int64, game report.Game, logger *log.Logger) (*storage.Store, int64) {
	if req.DBPath == "" {
		return nil, 0
	}

	store, err := storage.Open(req.DBPath)
	if err != nil {
		logger.Warn("could not open run database", "path", req.DBPath, "error", err)
		return nil, 0
	}

	id, err := store.CreateRun(storage.Run{
		ExpDir:    req.ExpDir,
		ExpName:   req.ExpName,
		Dimension: req.Dimension,
		Rep:       req.Rep,
		Seed:      seed,
		NumDays:   exp.NumDays,
		Game:      string(game),
	})
	if err != nil {
		logger.Warn("could not register run", "error", err)
		store.Close()
		return nil, 0
	}

	logger.Debug("run registered", "id", id, "db", req.DBPath)
	return store, id
}

// writeChart plots the run's samples. A chart that cannot be drawn is a
// warning; the run's other outputs are already written.
func writeChart(req runRequest, game report.Game, samples []experiment.Sample, logger *log.Logger) {
	if len(samples) < report.MinChartSamples {
		logger.Warn("too few samples for a chart, skipping it",
			"samples", len(samples), "need", report.MinChartSamples)
		return
	}

	chart := report.PopulationChart{Title: fmt.Sprintf("%s %s (%s)", req.ExpName, req.Dimension, game)}
	path := filepath.Join(req.Dir(), report.ChartFile(req.Dimension))
	if err := chart.WriteFile(path, samples); err != nil {
		logger.Warn("cannot write chart", "path", path, "error", err)
		return
	}
	logProgression(logger, samples)
}

func logProgression(logger *log.Logger, samples []experiment.Sample) {
	for _, p := range sim.Policies {
		if tick, ok := experiment.ProgressionTime(samples, p, experiment.ProgressionFactor); ok {
			logger.Info("progression", "policy", p, "day", tick)
		} else {
			logger.Info("progression", "policy", p, "day", "never")
		}
	}
}
