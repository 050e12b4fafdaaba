package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
)

// ErrNotFound is returned when a machine or run does not exist.
var ErrNotFound = errors.New("not found")

// ReadMachine returns the machine stored under hash.
func (s *Store) ReadMachine(ctx context.Context, hash string) (Machine, error) {
	var (
		m    Machine
		data string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, description, ir_version, engine_version
		FROM machines
		WHERE hash = ?
	`, hash).Scan(&m.Hash, &data, &m.IRVersion, &m.EngineVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Machine{}, fmt.Errorf("machine %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return Machine{}, fmt.Errorf("read machine: %w", err)
	}

	m.Description, err = ir.UnmarshalDescription([]byte(data))
	if err != nil {
		return Machine{}, fmt.Errorf("read machine %s: %w", hash, err)
	}
	return m, nil
}

const runColumns = `id, machine_hash, seq, line, input, output, final_state, accepted, steps,
	max_steps, max_tape, error_code, error_message, outcome_hash`

// ReadRun returns a single run by ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns runs ordered by seq ASC, id ASC COLLATE BINARY.
// An empty machineHash lists runs of every machine.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, machineHash string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if machineHash != "" {
		query += ` WHERE machine_hash = ?`
		args = append(args, machineHash)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the recorded configurations of a run in step order.
// Returns an empty slice for runs recorded without tracing.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]engine.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, state, head, tape
		FROM steps
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	snaps := []engine.Snapshot{}
	for rows.Next() {
		var (
			step, state int64
			snap        engine.Snapshot
		)
		if err := rows.Scan(&step, &state, &snap.Head, &snap.Tape); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		snap.Step = uint64(step)
		snap.State = ir.State(uint64(state))
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return snaps, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                    Run
		state, steps, maxSteps int64
		accepted               int
	)
	err := row.Scan(
		&run.ID,
		&run.MachineHash,
		&run.Seq,
		&run.Line,
		&run.Input,
		&run.Output,
		&state,
		&accepted,
		&steps,
		&maxSteps,
		&run.MaxTape,
		&run.ErrorCode,
		&run.ErrorMessage,
		&run.OutcomeHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.FinalState = ir.State(uint64(state))
	run.Accepted = accepted != 0
	run.Steps = uint64(steps)
	run.MaxSteps = uint64(maxSteps)
	return run, nil
}
