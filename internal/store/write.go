package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xferbench/xferbench/internal/harness"
)

// BeginRun records the start of a check run and returns its id.
func (s *Store) BeginRun(ctx context.Context, kind, scenario string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, scenario, started_at) VALUES (?, ?, ?, ?)`,
		id, kind, scenario, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps a run's end time and verdict.
func (s *Store) FinishRun(ctx context.Context, runID string, pass bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, pass = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), boolInt(pass), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// RecordTrial persists one trial's measurement.
func (s *Store) RecordTrial(ctx context.Context, runID string, repetition, port int, order harness.StartOrder, result harness.FlowResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials (run_id, repetition, port, start_order, duration_ns, bytes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, repetition, port, order.String(), result.Duration.Nanoseconds(), result.Bytes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trial: %w", err)
	}
	return nil
}

// RecordSample persists one fairness repetition: both trials plus the ratio
// row that judges them.
func (s *Store) RecordSample(ctx context.Context, runID string, ports [2]int, sample harness.FairnessSample, pass bool) error {
	if err := s.RecordTrial(ctx, runID, sample.Repetition, ports[0], harness.OrderSimultaneous, sample.A); err != nil {
		return err
	}
	if err := s.RecordTrial(ctx, runID, sample.Repetition, ports[1], harness.OrderSimultaneous, sample.B); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fairness_samples (run_id, repetition, ratio, pass) VALUES (?, ?, ?, ?)`,
		runID, sample.Repetition, sample.Ratio(), boolInt(pass),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fairness sample: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
