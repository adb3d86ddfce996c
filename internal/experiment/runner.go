package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sydleither/spatial-egt/internal/sim"
)

// sampleEvery is the tick interval between population samples.
const sampleEvery = 2

// Options control a run.
type Options struct {
	// FrameInterval emits a frame whenever tick % FrameInterval == 0.
	// Zero disables frames.
	FrameInterval int

	// Parallel steps the three models concurrently. Results are identical
	// to sequential stepping because the models share no state.
	Parallel bool

	Logger *log.Logger
}

// Summary describes a completed run.
type Summary struct {
	Days     int
	Final    Sample
	Toggles  int // Adaptive drug state changes
	Frames   int
	Duration time.Duration
}

// Runner drives the models of one experiment day by day.
type Runner struct {
	models    Models
	days      int
	opts      Options
	recorders []Recorder
	frames    []FrameRecorder
	logger    *log.Logger
}

// NewRunner creates a runner for days days (ticks 0 through days inclusive).
func NewRunner(models Models, days int, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		models: models,
		days:   days,
		opts:   opts,
		logger: logger,
	}
}

// AddRecorder registers a sample recorder.
func (r *Runner) AddRecorder(rec Recorder) {
	r.recorders = append(r.recorders, rec)
}

// AddFrameRecorder registers a frame recorder. Frames are only produced
// for spatial topologies.
func (r *Runner) AddFrameRecorder(rec FrameRecorder) {
	r.frames = append(r.frames, rec)
}

// Run simulates every day, recording samples on even ticks and frames at
// the configured interval, then closes all recorders. If the run fails or
// is cancelled, recorders implementing Aborter are aborted instead. The
// context is checked between days.
func (r *Runner) Run(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	defer func() {
		if cerr := r.close(err != nil); err == nil {
			err = cerr
		}
		sum.Duration = time.Since(start)
	}()

	topology := r.models.Null().Space().Topology()
	framing := r.opts.FrameInterval > 0 && len(r.frames) > 0
	if framing {
		if _, ok := sim.PlaneOf(r.models.Null().Space()); !ok {
			r.logger.Warn("topology has no lattice, frames disabled", "topology", topology)
			framing = false
		}
	}

	r.logger.Info("run started",
		"topology", topology,
		"days", r.days,
		"cells", r.models.Null().Counts().Total(),
	)

	results := make([]sim.StepResult, len(r.models))
	adaptiveOn := r.models.Adaptive().DrugOn()

	for tick := 0; tick <= r.days; tick++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		sample := r.models.Sample(tick)
		sum.Final = sample
		if tick%sampleEvery == 0 {
			if err := r.record(sample); err != nil {
				return sum, err
			}
			r.logger.Debug("sample",
				"tick", tick,
				"null", sample.Of(sim.PolicyNull).Total(),
				"adaptive", sample.Of(sim.PolicyAdaptive).Total(),
				"continuous", sample.Of(sim.PolicyContinuous).Total(),
			)
		}

		if framing && tick%r.opts.FrameInterval == 0 {
			if err := r.recordFrame(tick, topology, sample); err != nil {
				return sum, err
			}
			sum.Frames++
		}

		r.step(results)

		if on := results[sim.PolicyAdaptive].DrugOn; on != adaptiveOn {
			adaptiveOn = on
			sum.Toggles++
			r.logger.Debug("adaptive drug toggled", "tick", tick, "on", on,
				"population", sample.Of(sim.PolicyAdaptive).Total())
		}
	}

	sum.Days = r.days
	r.logger.Info("run finished",
		"topology", topology,
		"null", sum.Final.Of(sim.PolicyNull).Total(),
		"adaptive", sum.Final.Of(sim.PolicyAdaptive).Total(),
		"continuous", sum.Final.Of(sim.PolicyContinuous).Total(),
		"toggles", sum.Toggles,
	)
	return sum, nil
}

func (r *Runner) step(results []sim.StepResult) {
	if !r.opts.Parallel {
		for i, m := range r.models {
			results[i] = m.Step()
		}
		return
	}

	var wg sync.WaitGroup
	for i, m := range r.models {
		wg.Go(func() {
			results[i] = m.Step()
		})
	}
	wg.Wait()
}

func (r *Runner) record(s Sample) error {
	for _, rec := range r.recorders {
		if err := rec.Record(s); err != nil {
			return fmt.Errorf("experiment: record tick %d: %w", s.Tick, err)
		}
	}
	return nil
}

func (r *Runner) recordFrame(tick int, topology sim.Topology, s Sample) error {
	f := Frame{Tick: tick, Topology: topology, Sample: s}
	for i, m := range r.models {
		f.Planes[i], _ = sim.PlaneOf(m.Space())
	}
	for _, rec := range r.frames {
		if err := rec.RecordFrame(f); err != nil {
			return fmt.Errorf("experiment: frame tick %d: %w", tick, err)
		}
	}
	return nil
}

// close finishes every recorder. After a failed run, recorders that can
// discard their output are aborted.
func (r *Runner) close(failed bool) error {
	var errs []error
	for _, rec := range r.recorders {
		errs = append(errs, finish(rec, failed))
	}
	for _, rec := range r.frames {
		errs = append(errs, rec.Close())
	}
	return errors.Join(errs...)
}
