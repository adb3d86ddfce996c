package storage

import (
	"database/sql"
	"fmt"

	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Recorder writes the samples of one run inside a single transaction,
// committed on Close and rolled back on Abort. It implements
// experiment.Recorder and experiment.Aborter.
type Recorder struct {
	tx    *sql.Tx
	stmt  *sql.Stmt
	runID int64
}

var (
	_ experiment.Recorder = (*Recorder)(nil)
	_ experiment.Aborter  = (*Recorder)(nil)
)

// Recorder starts recording samples for runID.
func (s *Store) Recorder(runID int64) (*Recorder, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO populations (run_id, tick, model, sensitive, resistant)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("storage: cannot prepare insert: %w", err)
	}
	return &Recorder{tx: tx, stmt: stmt, runID: runID}, nil
}

// Record stores one row per policy model.
func (r *Recorder) Record(s experiment.Sample) error {
	for _, p := range sim.Policies {
		c := s.Of(p)
		if _, err := r.stmt.Exec(r.runID, s.Tick, p.String(), c.Sensitive, c.Resistant); err != nil {
			return fmt.Errorf("storage: cannot save population: %w", err)
		}
	}
	return nil
}

// Close commits every recorded sample.
func (r *Recorder) Close() error {
	if r.tx == nil {
		return nil
	}
	r.stmt.Close()
	err := r.tx.Commit()
	r.tx = nil
	if err != nil {
		return fmt.Errorf("storage: cannot commit populations: %w", err)
	}
	return nil
}

// Abort discards every recorded sample.
func (r *Recorder) Abort() error {
	if r.tx == nil {
		return nil
	}
	r.stmt.Close()
	err := r.tx.Rollback()
	r.tx = nil
	if err != nil {
		return fmt.Errorf("storage: cannot roll back populations: %w", err)
	}
	return nil
}
