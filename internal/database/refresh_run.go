package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"flight_gantt/internal/models"
)

// runTimeLayout is fixed width so stored instants sort as text
const runTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// RunRepository is the refresh run log
type RunRepository interface {
	InsertRun(ctx context.Context, run *models.RefreshRun) error
	RecentRuns(ctx context.Context, limit int) ([]models.RefreshRun, error)
}

type runRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) RunRepository {
	return &runRepository{db: db}
}

// InsertRun stores a finished run and sets its ID
func (r *runRepository) InsertRun(ctx context.Context, run *models.RefreshRun) error {
	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(runTimeLayout)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO refresh_runs (
		kind, flight_date, started_at, finished_at, ok, resolved, dropped, published, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.Kind), run.FlightDate, run.StartedAt.UTC().Format(runTimeLayout), finished,
		run.OK, run.Resolved, run.Dropped, run.Published, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh run: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	return nil
}

// RecentRuns returns the latest runs, newest first
func (r *runRepository) RecentRuns(ctx context.Context, limit int) ([]models.RefreshRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `SELECT
		id, kind, flight_date, started_at, finished_at, ok, resolved, dropped, published, error
		FROM refresh_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RefreshRun
	for rows.Next() {
		var (
			run      models.RefreshRun
			kind     string
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &kind, &run.FlightDate, &started, &finished,
			&run.OK, &run.Resolved, &run.Dropped, &run.Published, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan refresh run: %w", err)
		}
		run.Kind = models.RefreshKind(kind)
		run.StartedAt, _ = time.Parse(runTimeLayout, started)
		if finished.Valid {
			run.FinishedAt, _ = time.Parse(runTimeLayout, finished.String)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read refresh runs: %w", err)
	}
	return runs, nil
}
