package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunSummary is one row of run history.
type RunSummary struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Scenario   string `json:"scenario"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	// Pass is nil for runs that never finished.
	Pass *bool `json:"pass,omitempty"`
}

// TrialRecord is one persisted trial measurement.
type TrialRecord struct {
	Repetition int           `json:"repetition"`
	Port       int           `json:"port"`
	StartOrder string        `json:"start_order"`
	Duration   time.Duration `json:"duration_ns"`
	Bytes      int64         `json:"bytes"`
}

// SampleRecord is one persisted fairness judgement.
type SampleRecord struct {
	Repetition int     `json:"repetition"`
	Ratio      float64 `json:"ratio"`
	Pass       bool    `json:"pass"`
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, scenario, started_at, finished_at, pass
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var finished sql.NullString
		var pass sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Kind, &r.Scenario, &r.StartedAt, &finished, &pass); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = finished.String
		}
		if pass.Valid {
			v := pass.Int64 != 0
			r.Pass = &v
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Trials returns a run's trial measurements in insertion order.
func (s *Store) Trials(ctx context.Context, runID string) ([]TrialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT repetition, port, start_order, duration_ns, bytes
		 FROM trials WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials: %w", err)
	}
	defer rows.Close()

	var trials []TrialRecord
	for rows.Next() {
		var t TrialRecord
		var durationNS int64
		if err := rows.Scan(&t.Repetition, &t.Port, &t.StartOrder, &durationNS, &t.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan trial: %w", err)
		}
		t.Duration = time.Duration(durationNS)
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

// Samples returns a run's fairness judgements in repetition order.
func (s *Store) Samples(ctx context.Context, runID string) ([]SampleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT repetition, ratio, pass
		 FROM fairness_samples WHERE run_id = ? ORDER BY repetition ASC, id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []SampleRecord
	for rows.Next() {
		var rec SampleRecord
		var pass int
		if err := rows.Scan(&rec.Repetition, &rec.Ratio, &pass); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		rec.Pass = pass != 0
		samples = append(samples, rec)
	}
	return samples, rows.Err()
}
