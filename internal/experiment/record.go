package experiment

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Sample is the population of every model at one logged tick.
type Sample struct {
	Tick   int
	Counts [3]core.Counts // Indexed by sim.Policy
}

// Of returns the counts of the model running policy p.
func (s Sample) Of(p sim.Policy) core.Counts {
	return s.Counts[p]
}

// Frame is the renderable state of every model at one tick.
type Frame struct {
	Tick     int
	Topology sim.Topology
	Planes   [3]sim.Plane // Indexed by sim.Policy
	Sample   Sample
}

// Recorder receives population samples on every even tick.
type Recorder interface {
	Record(s Sample) error
	Close() error
}

// Aborter is implemented by recorders that can discard what they have
// recorded. When a run fails the runner aborts them instead of closing.
type Aborter interface {
	Abort() error
}

// finish closes rec, or aborts it when failed and rec supports it.
func finish(rec Recorder, failed bool) error {
	if a, ok := rec.(Aborter); ok && failed {
		return a.Abort()
	}
	return rec.Close()
}

// BestEffortRecorder wraps a Recorder whose failures must not end the run.
// The first error is logged, the wrapped recorder is aborted, and later
// samples are dropped.
type BestEffortRecorder struct {
	name   string
	rec    Recorder
	logger *log.Logger
	failed bool
}

// NewBestEffortRecorder wraps rec. name identifies it in log lines.
func NewBestEffortRecorder(name string, rec Recorder, logger *log.Logger) *BestEffortRecorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BestEffortRecorder{name: name, rec: rec, logger: logger}
}

// Record forwards s until the wrapped recorder first fails. It never
// returns an error.
func (b *BestEffortRecorder) Record(s Sample) error {
	if b.failed {
		return nil
	}
	if err := b.rec.Record(s); err != nil {
		b.logger.Warn("recorder failed, dropping it", "recorder", b.name, "tick", s.Tick, "error", err)
		b.drop(true)
	}
	return nil
}

// Close closes the wrapped recorder unless it already failed.
func (b *BestEffortRecorder) Close() error {
	if !b.failed {
		b.drop(false)
	}
	return nil
}

// Abort aborts the wrapped recorder unless it already failed.
func (b *BestEffortRecorder) Abort() error {
	if !b.failed {
		b.drop(true)
	}
	return nil
}

// Failed reports whether the wrapped recorder failed and lost samples.
func (b *BestEffortRecorder) Failed() bool {
	return b.failed
}

func (b *BestEffortRecorder) drop(failed bool) {
	if failed {
		b.failed = true
	}
	if err := finish(b.rec, failed); err != nil {
		b.failed = true
		b.logger.Warn("cannot finish recorder", "recorder", b.name, "error", err)
	}
}

// FrameRecorder receives lattice frames at the configured granularity.
type FrameRecorder interface {
	RecordFrame(f Frame) error
	Close() error
}

// MemoryRecorder keeps every sample in memory.
type MemoryRecorder struct {
	Samples []Sample
}

// Record appends s.
func (r *MemoryRecorder) Record(s Sample) error {
	r.Samples = append(r.Samples, s)
	return nil
}

// Close is a no-op.
func (r *MemoryRecorder) Close() error {
	return nil
}

// ProgressionFactor is the growth over the initial total that counts as
// tumour progression.
const ProgressionFactor = 1.2

// ProgressionTime returns the first sampled tick at which the total
// population of policy p reached factor times its value in the first
// sample. ok is false if it never did.
func ProgressionTime(samples []Sample, p sim.Policy, factor float64) (tick int, ok bool) {
	if len(samples) == 0 {
		return 0, false
	}
	limit := factor * float64(samples[0].Of(p).Total())
	for _, s := range samples {
		if float64(s.Of(p).Total()) >= limit {
			return s.Tick, true
		}
	}
	return 0, false
}
