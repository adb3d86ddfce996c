// Package report writes experiment outputs: the population CSV, lattice
// frames as PNG images or an MJPEG movie, and the population chart.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// CSVHeader is the first row of every populations file.
var CSVHeader = []string{
	"time",
	"null_sensitive", "null_resistant",
	"adaptive_sensitive", "adaptive_resistant",
	"continuous_sensitive", "continuous_resistant",
}

// PopulationsFile returns the CSV file name for a topology, e.g. "2Dpopulations.csv".
func PopulationsFile(topology string) string {
	return topology + "populations.csv"
}

// CSVRecorder writes one row per sample. It implements experiment.Recorder.
type CSVRecorder struct {
	w      *csv.Writer
	closer io.Closer
	row    []string
}

// NewCSVRecorder writes the header to w and returns a recorder over it.
// Close closes w if it is an io.Closer.
func NewCSVRecorder(w io.Writer) (*CSVRecorder, error) {
	r := &CSVRecorder{
		w:   csv.NewWriter(w),
		row: make([]string, len(CSVHeader)),
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	if err := r.w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("report: write csv header: %w", err)
	}
	return r, nil
}

// CreateCSV creates path (and its directory) and returns a recorder writing to it.
func CreateCSV(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("report: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: create csv: %w", err)
	}
	r, err := NewCSVRecorder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Record writes s as one row.
func (r *CSVRecorder) Record(s experiment.Sample) error {
	r.row[0] = strconv.Itoa(s.Tick)
	for _, p := range sim.Policies {
		c := s.Of(p)
		r.row[1+2*int(p)] = strconv.Itoa(c.Sensitive)
		r.row[2+2*int(p)] = strconv.Itoa(c.Resistant)
	}
	return r.w.Write(r.row)
}

// Close flushes buffered rows and closes the underlying writer.
func (r *CSVRecorder) Close() error {
	r.w.Flush()
	err := r.w.Error()
	if r.closer != nil {
		err = errors.Join(err, r.closer.Close())
	}
	return err
}

// ReadCSV parses a populations file back into samples.
func ReadCSV(rd io.Reader) ([]experiment.Sample, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("report: read csv header: %w", err)
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("report: unexpected csv column %q, want %q", header[i], name)
		}
	}

	var samples []experiment.Sample
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("report: read csv: %w", err)
		}

		var vals [7]int
		for i, field := range rec {
			if vals[i], err = strconv.Atoi(field); err != nil {
				return nil, fmt.Errorf("report: line %d column %s: %w", len(samples)+2, CSVHeader[i], err)
			}
		}
		s := experiment.Sample{Tick: vals[0]}
		for _, p := range sim.Policies {
			s.Counts[p].Sensitive = vals[1+2*int(p)]
			s.Counts[p].Resistant = vals[2+2*int(p)]
		}
		samples = append(samples, s)
	}
}

// ReadCSVFile parses the populations file at path.
func ReadCSVFile(path string) ([]experiment.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report: open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
