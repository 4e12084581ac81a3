package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"flight_gantt/internal/models"
)

// AircraftRepository is the fleet registry
type AircraftRepository interface {
	InsertBatch(ctx context.Context, aircraft []*models.Aircraft) error
	IsTablePopulated(ctx context.Context) (bool, error)
	LoadFromMultipleCSV(ctx context.Context, csvPaths []string, batchSize int) (int, error)
	Get(ctx context.Context, registration string) (*models.Aircraft, error)
	Lookup(registration string) (models.Aircraft, bool)
}

type aircraftRepository struct {
	db *sql.DB
}

func NewAircraftRepository(db *sql.DB) AircraftRepository {
	return &aircraftRepository{db: db}
}

// normalizeRegistration uppercases and drops spaces
func normalizeRegistration(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}

// InsertBatch inserts or replaces aircraft records in a single transaction
func (r *aircraftRepository) InsertBatch(ctx context.Context, aircraft []*models.Aircraft) error {
	if len(aircraft) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `REPLACE INTO aircraft (
		registration, typecode, model, operator, seat_config
	) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ac := range aircraft {
		if _, err := stmt.ExecContext(ctx,
			normalizeRegistration(ac.Registration),
			strings.ToUpper(strings.TrimSpace(ac.TypeCode)),
			ac.Model, ac.Operator,
			strings.ToUpper(strings.TrimSpace(ac.SeatConfig)),
		); err != nil {
			return fmt.Errorf("failed to insert aircraft: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *aircraftRepository) IsTablePopulated(ctx context.Context) (bool, error) {
	var ignored int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM aircraft LIMIT 1").Scan(&ignored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check aircraft table: %w", err)
	}
	return true, nil
}

// LoadFromMultipleCSV loads fleet CSV files into the registry and returns the
// number of rows stored. Rows without a registration are skipped.
func (r *aircraftRepository) LoadFromMultipleCSV(ctx context.Context, csvPaths []string, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	batch := make([]*models.Aircraft, 0, batchSize)
	loaded := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.InsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}
		loaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, csvPath := range csvPaths {
		err := readFleetCSV(csvPath, func(ac *models.Aircraft) error {
			batch = append(batch, ac)
			if len(batch) >= batchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return loaded, err
		}
	}

	if err := flush(); err != nil {
		return loaded, err
	}
	return loaded, nil
}

func readFleetCSV(csvPath string, emit func(*models.Aircraft) error) error {
	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file %s: %w", csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return fmt.Errorf("failed to read CSV header from %s: %w", csvPath, err)
	}

	for {
		ac := &models.Aircraft{}
		if err := dec.Decode(ac); err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read CSV record from %s: %w", csvPath, err)
		}

		if normalizeRegistration(ac.Registration) == "" {
			continue
		}
		if err := emit(ac); err != nil {
			return err
		}
	}
}

// Get returns one airframe, nil when not registered
func (r *aircraftRepository) Get(ctx context.Context, registration string) (*models.Aircraft, error) {
	ac := &models.Aircraft{}
	err := r.db.QueryRowContext(ctx,
		`SELECT registration, typecode, model, operator, seat_config FROM aircraft WHERE registration = ?`,
		normalizeRegistration(registration),
	).Scan(&ac.Registration, &ac.TypeCode, &ac.Model, &ac.Operator, &ac.SeatConfig)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aircraft %s: %w", registration, err)
	}
	return ac, nil
}

// Lookup adapts Get for seat map selection; lookup failures count as unregistered
func (r *aircraftRepository) Lookup(registration string) (models.Aircraft, bool) {
	ac, err := r.Get(context.Background(), registration)
	if err != nil {
		slog.Warn("Fleet lookup failed", "registration", registration, "error", err)
		return models.Aircraft{}, false
	}
	if ac == nil {
		return models.Aircraft{}, false
	}
	return *ac, true
}
