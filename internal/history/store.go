package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by Get for an unknown operation id.
var ErrNotFound = errors.New("operation not found")

// ErrAlreadyExists is returned when an operation id is recorded twice.
var ErrAlreadyExists = errors.New("operation already recorded")

// Outcomes of a recorded operation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one finished lifecycle operation.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Deployment  string    `json:"deployment" yaml:"deployment"`
	Environment string    `json:"environment" yaml:"environment"`
	Action      string    `json:"action" yaml:"action"`
	Command     string    `json:"command,omitempty" yaml:"command,omitempty"`
	Force       bool      `json:"force,omitempty" yaml:"force,omitempty"`
	Outcome     string    `json:"outcome" yaml:"outcome"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt" yaml:"finishedAt"`
}

// Duration is how long the operation ran.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Deployment string
	Limit      int
}

// Store records operations backed by SQLite.
type Store struct {
	DB *sql.DB
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("operation id cannot be empty")
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO operations (id, deployment, environment, action, command, force, outcome, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Deployment, e.Environment, e.Action, e.Command, e.Force, e.Outcome, e.Error,
		formatTime(e.StartedAt), formatTime(e.FinishedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("operation %q: %w", e.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, deployment, environment, action, command, force, outcome, error, started_at, finished_at
		 FROM operations WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("operation %q: %w", id, ErrNotFound)
	}
	return e, err
}

// List returns operations newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT id, deployment, environment, action, command, force, outcome, error, started_at, finished_at FROM operations`
	var args []any
	if f.Deployment != "" {
		query += ` WHERE deployment = ?`
		args = append(args, f.Deployment)
	}
	query += ` ORDER BY started_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes the operations of a deployment, returning how many were
// removed.
func (s *Store) Prune(ctx context.Context, deployment string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM operations WHERE deployment = ?`, deployment)
	if err != nil {
		return 0, fmt.Errorf("prune operations: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e                 Entry
		started, finished string
	)
	if err := s.Scan(&e.ID, &e.Deployment, &e.Environment, &e.Action, &e.Command, &e.Force,
		&e.Outcome, &e.Error, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan operation: %w", err)
	}

	var err error
	if e.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Entry{}, fmt.Errorf("parse started_at: %w", err)
	}
	if e.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Entry{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return e, nil
}

// Timestamps are stored as fixed-width UTC text so lexical order is time
// order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
