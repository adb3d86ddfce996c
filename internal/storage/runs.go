package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Run is one replicate of an experiment on one topology.
type Run struct {
	ID        int64
	ExpDir    string
	ExpName   string
	Dimension string
	Rep       string
	Seed      int64
	NumDays   int
	Game      string
	Completed bool
	Duration  time.Duration
	CreatedAt time.Time
}

const runColumns = `id, exp_dir, exp_name, dimension, rep, seed, num_days, game, completed, duration_ms, created_at`

// CreateRun records a new run and returns its ID.
func (s *Store) CreateRun(r Run) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (exp_dir, exp_name, dimension, rep, seed, num_days, game)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ExpDir, r.ExpName, r.Dimension, r.Rep, r.Seed, r.NumDays, r.Game,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// CompleteRun marks a run as finished.
func (s *Store) CompleteRun(id int64, d time.Duration) error {
	_, err := s.db.Exec(
		"UPDATE runs SET completed = 1, duration_ms = ? WHERE id = ?",
		d.Milliseconds(), id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot complete run %d: %w", id, err)
	}
	return nil
}

// RunByID retrieves a run. Returns nil if it does not exist.
func (s *Store) RunByID(id int64) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return r, nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its series.
func (s *Store) DeleteRun(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM populations WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete populations: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var completed int
	var durationMS int64
	var createdAt any
	if err := sc.Scan(
		&r.ID,
		&r.ExpDir,
		&r.ExpName,
		&r.Dimension,
		&r.Rep,
		&r.Seed,
		&r.NumDays,
		&r.Game,
		&completed,
		&durationMS,
		&createdAt,
	); err != nil {
		return nil, err
	}
	r.Completed = completed != 0
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// Series returns the recorded samples of a run, ordered by tick.
func (s *Store) Series(runID int64) ([]experiment.Sample, error) {
	rows, err := s.db.Query(
		`SELECT tick, model, sensitive, resistant
		 FROM populations
		 WHERE run_id = ?
		 ORDER BY tick`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query populations: %w", err)
	}
	defer rows.Close()

	var samples []experiment.Sample
	for rows.Next() {
		var tick, sensitive, resistant int
		var model string
		if err := rows.Scan(&tick, &model, &sensitive, &resistant); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		policy, err := sim.ParsePolicy(model)
		if err != nil {
			return nil, fmt.Errorf("storage: run %d: %w", runID, err)
		}

		if n := len(samples); n == 0 || samples[n-1].Tick != tick {
			samples = append(samples, experiment.Sample{Tick: tick})
		}
		c := &samples[len(samples)-1].Counts[policy]
		c.Sensitive = sensitive
		c.Resistant = resistant
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return samples, nil
}

// ProgressionTime returns the first tick at which the total population of
// a run's policy model reached factor times its initial value.
func (s *Store) ProgressionTime(runID int64, p sim.Policy, factor float64) (int, bool, error) {
	samples, err := s.Series(runID)
	if err != nil {
		return 0, false, err
	}
	tick, ok := experiment.ProgressionTime(samples, p, factor)
	return tick, ok, nil
}
