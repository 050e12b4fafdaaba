package store

import (
	"context"
	"fmt"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
)

// WriteMachine stores a machine definition keyed by its content hash.
// Uses ON CONFLICT(hash) DO NOTHING, so writing the same machine twice is a no-op.
func (s *Store) WriteMachine(ctx context.Context, d ir.Description) (string, error) {
	data, err := ir.MarshalDescription(d)
	if err != nil {
		return "", fmt.Errorf("write machine: %w", err)
	}
	hash, err := ir.DescriptionHash(d)
	if err != nil {
		return "", fmt.Errorf("write machine: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO machines (hash, description, ir_version, engine_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, string(data), ir.IRVersion, ir.EngineVersion)
	if err != nil {
		return "", fmt.Errorf("write machine: %w", err)
	}
	return hash, nil
}

// WriteRun inserts a run and its recorded steps in one transaction.
// Duplicate run IDs are silently ignored for idempotency.
//
// The machine referenced by run.MachineHash must exist (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run Run, steps []engine.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, machine_hash, seq, line, input, output, final_state, accepted, steps,
		 max_steps, max_tape, error_code, error_message, outcome_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.MachineHash,
		run.Seq,
		run.Line,
		run.Input,
		run.Output,
		int64(run.FinalState),
		boolToInt(run.Accepted),
		int64(run.Steps),
		int64(run.MaxSteps),
		run.MaxTape,
		run.ErrorCode,
		run.ErrorMessage,
		run.OutcomeHash,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	// Skip steps when the run already existed.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	if len(steps) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO steps (run_id, step, state, head, tape)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("write steps: prepare: %w", err)
		}
		defer stmt.Close()

		for _, snap := range steps {
			if _, err := stmt.ExecContext(ctx, run.ID, int64(snap.Step), int64(snap.State), snap.Head, snap.Tape); err != nil {
				return fmt.Errorf("write step %d: %w", snap.Step, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
