package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"flight_gantt/internal/models"
)

// FlightRepository is the per-day flight data source
type FlightRepository interface {
	FlightsForDate(ctx context.Context, date string) ([]models.FlightRecord, error)
	InsertBatch(ctx context.Context, recs []*models.FlightRecord) error
}

type flightRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewFlightRepository(db *sql.DB, loc *time.Location) FlightRepository {
	if loc == nil {
		loc = time.Local
	}
	return &flightRepository{db: db, loc: loc}
}

const flightColumns = `id, flight_date, registration, dep, arr,
	std, sta, etd, eta, atd, ata,
	designator, flight_number, block_minutes, status,
	pax_adults, pax_children, pax_infants, bag_weight,
	passengers, delays, roster_id, plan_id, aircraft_type`

// FlightsForDate returns the rows of one operating day ordered by registration
// then scheduled departure. Unparseable timestamps and payloads come back empty.
func (r *flightRepository) FlightsForDate(ctx context.Context, date string) ([]models.FlightRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+flightColumns+` FROM flights WHERE flight_date = ? ORDER BY registration, std, id`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var out []models.FlightRecord
	for rows.Next() {
		var (
			id                             int64
			rec                            models.FlightRecord
			std, sta, etd, eta, atd, ata   sql.NullString
			block, status                  sql.NullString
			adults, children, infants, bag sql.NullString
			passengers, delays             sql.NullString
			rosterID, planID, aircraftType sql.NullString
		)
		if err := rows.Scan(
			&id, &rec.FlightDate, &rec.Registration, &rec.DepartureStation, &rec.ArrivalStation,
			&std, &sta, &etd, &eta, &atd, &ata,
			&rec.Designator, &rec.FlightNumber, &block, &status,
			&adults, &children, &infants, &bag,
			&passengers, &delays, &rosterID, &planID, &aircraftType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}

		rec.ID = strconv.FormatInt(id, 10)
		rec.ScheduledDeparture = r.parseTime(std)
		rec.ScheduledArrival = r.parseTime(sta)
		rec.EstimatedDeparture = r.parseTime(etd)
		rec.EstimatedArrival = r.parseTime(eta)
		rec.ActualDeparture = r.parseTime(atd)
		rec.ActualArrival = r.parseTime(ata)
		rec.BlockMinutes = block.String
		rec.Status = status.String
		rec.PaxAdults = adults.String
		rec.PaxChildren = children.String
		rec.PaxInfants = infants.String
		rec.BagWeight = bag.String
		rec.RosterID = rosterID.String
		rec.PlanID = planID.String
		rec.AircraftType = aircraftType.String

		if passengers.Valid && passengers.String != "" {
			if err := json.Unmarshal([]byte(passengers.String), &rec.Passengers); err != nil {
				slog.Debug("Ignoring malformed passenger list", "flight_id", rec.ID, "error", err)
				rec.Passengers = nil
			}
		}
		if delays.Valid && delays.String != "" {
			if err := json.Unmarshal([]byte(delays.String), &rec.Delays); err != nil {
				slog.Debug("Ignoring malformed delay list", "flight_id", rec.ID, "error", err)
				rec.Delays = nil
			}
		}

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}
	return out, nil
}

// InsertBatch inserts flight rows in a single transaction
func (r *flightRepository) InsertBatch(ctx context.Context, recs []*models.FlightRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO flights (
		flight_date, registration, dep, arr,
		std, sta, etd, eta, atd, ata,
		designator, flight_number, block_minutes, status,
		pax_adults, pax_children, pax_infants, bag_weight,
		passengers, delays, roster_id, plan_id, aircraft_type
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		passengers, err := jsonColumn(rec.Passengers)
		if err != nil {
			return fmt.Errorf("failed to encode passengers: %w", err)
		}
		delays, err := jsonColumn(rec.Delays)
		if err != nil {
			return fmt.Errorf("failed to encode delays: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			rec.FlightDate, strings.ToUpper(rec.Registration), rec.DepartureStation, rec.ArrivalStation,
			r.formatTime(rec.ScheduledDeparture), r.formatTime(rec.ScheduledArrival),
			r.formatTime(rec.EstimatedDeparture), r.formatTime(rec.EstimatedArrival),
			r.formatTime(rec.ActualDeparture), r.formatTime(rec.ActualArrival),
			rec.Designator, rec.FlightNumber, rec.BlockMinutes, rec.Status,
			rec.PaxAdults, rec.PaxChildren, rec.PaxInfants, rec.BagWeight,
			passengers, delays, rec.RosterID, rec.PlanID, rec.AircraftType,
		); err != nil {
			return fmt.Errorf("failed to insert flight: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTime reads a stored timestamp. Zone-less values are local to r.loc.
func (r *flightRepository) parseTime(s sql.NullString) *time.Time {
	raw := strings.TrimSpace(s.String)
	if !s.Valid || raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, r.loc); err == nil {
			return &t
		}
	}
	return nil
}

func (r *flightRepository) formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.In(r.loc).Format("2006-01-02T15:04:05")
}

func jsonColumn(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}
