package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"flight_gantt/internal/board"
	"flight_gantt/internal/manifest"
	"flight_gantt/internal/models"
	"flight_gantt/internal/plan"
	"flight_gantt/internal/roster"
	"flight_gantt/internal/seatmap"
	"flight_gantt/internal/timeedit"
)

var (
	ErrNoFlights         = errors.New("no flights loaded")
	ErrFlightNotFound    = errors.New("flight not found")
	ErrPlanNotConfigured = errors.New("plan system is not configured")
	ErrSaveNotConfigured = errors.New("time edit save endpoint is not configured")
	ErrNoSeatMap         = errors.New("no seat map for this aircraft")
)

// Refresh reloads the operating day on operator request
func (d *Daemon) Refresh(ctx context.Context) (*board.Snapshot, error) {
	return d.board.RefreshForOperator(ctx, d.Date())
}

// snapshot returns the published board, loading it first when nothing is published yet
func (d *Daemon) snapshot(ctx context.Context) (*board.Snapshot, error) {
	if snap := d.board.Current(); snap != nil {
		return snap, nil
	}
	snap, err := d.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoFlights
	}
	return snap, nil
}

func normalizeCallsign(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// FindFlight returns the first leg of the day flown under a callsign such as "3C701" or "3C 701"
func (d *Daemon) FindFlight(ctx context.Context, callsign string) (*models.ResolvedFlight, *board.Snapshot, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	want := normalizeCallsign(callsign)
	for _, f := range snap.Flights {
		if normalizeCallsign(f.Callsign()) == want {
			return f, snap, nil
		}
	}
	return nil, snap, fmt.Errorf("%w: %s on %s", ErrFlightNotFound, callsign, snap.Date)
}

// refDate is the day ages are computed at
func (d *Daemon) refDate(f *models.ResolvedFlight) time.Time {
	if t, err := time.ParseInLocation("2006-01-02", f.FlightDate, d.loc); err == nil {
		return t
	}
	return f.DisplayStart.In(d.loc)
}

// Manifest builds the passenger manifest of a flight
func (d *Daemon) Manifest(ctx context.Context, callsign string) (*manifest.Manifest, error) {
	f, _, err := d.FindFlight(ctx, callsign)
	if err != nil {
		return nil, err
	}
	return manifest.Build(f, d.refDate(f)), nil
}

// WriteManifest renders the manifest of a flight as PDF
func (d *Daemon) WriteManifest(ctx context.Context, callsign string, w io.Writer) error {
	m, err := d.Manifest(ctx, callsign)
	if err != nil {
		return err
	}
	if err := m.WritePDF(w); err != nil {
		return fmt.Errorf("failed to write manifest for %s: %w", callsign, err)
	}
	slog.Info("Wrote manifest", "flight", m.Flight, "date", m.Date, "passengers", len(m.Rows))
	return nil
}

// SeatMap derives the seat map of a flight
func (d *Daemon) SeatMap(ctx context.Context, callsign string) (*seatmap.SeatMap, error) {
	f, _, err := d.FindFlight(ctx, callsign)
	if err != nil {
		return nil, err
	}
	sm, ok := d.seats.Derive(f, d.refDate(f))
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNoSeatMap, f.Registration, f.AircraftType)
	}
	return sm, nil
}

// Crew returns the crew of a flight. The second result is false when no roster
// flight is linked or no roster system is configured.
func (d *Daemon) Crew(ctx context.Context, callsign string) ([]roster.CrewMember, bool, error) {
	f, snap, err := d.FindFlight(ctx, callsign)
	if err != nil {
		return nil, false, err
	}
	if snap.Roster == nil {
		return nil, false, nil
	}
	crew, ok, err := snap.Roster.Crew(ctx, f)
	if err != nil {
		slog.Warn("Failed to fetch crew", "flight", f.Callsign(), "roster_id", f.RosterID, "error", err)
		return nil, false, err
	}
	return crew, ok, nil
}

func (d *Daemon) planRequest(ctx context.Context, callsign string, preview bool) (plan.Request, error) {
	if d.plan == nil {
		return plan.Request{}, ErrPlanNotConfigured
	}
	f, _, err := d.FindFlight(ctx, callsign)
	if err != nil {
		return plan.Request{}, err
	}
	return plan.RequestFor(f, d.stations, preview, d.refDate(f)), nil
}

// PushManifest sends a flight's passengers to the plan system
func (d *Daemon) PushManifest(ctx context.Context, callsign string, preview bool) error {
	req, err := d.planRequest(ctx, callsign, preview)
	if err != nil {
		return err
	}
	return d.plan.PushManifest(ctx, req)
}

// ResetManifest clears a flight's manifest in the plan system
func (d *Daemon) ResetManifest(ctx context.Context, callsign string) error {
	req, err := d.planRequest(ctx, callsign, false)
	if err != nil {
		return err
	}
	return d.plan.Reset(ctx, req)
}

// OpenTimeEdit starts a time edit for a flight, prefilled with the roster
// system's actual times when they can be fetched.
func (d *Daemon) OpenTimeEdit(ctx context.Context, callsign string, mode timeedit.Mode) (*timeedit.Session, error) {
	f, snap, err := d.FindFlight(ctx, callsign)
	if err != nil {
		return nil, err
	}
	s, err := d.edits.Open(f, mode)
	if err != nil {
		return nil, err
	}
	if snap.Roster == nil {
		return s, nil
	}

	times, ok, err := snap.Roster.ActualTimes(ctx, f)
	switch {
	case err != nil:
		slog.Warn("Failed to fetch actual times", "flight", f.Callsign(), "roster_id", f.RosterID, "error", err)
	case ok:
		s.Prefill(times)
	}
	return s, nil
}

// TimeEdit returns an open time edit session
func (d *Daemon) TimeEdit(id string) (*timeedit.Session, error) {
	return d.edits.Get(id)
}

// SaveTimeEdit posts a session. The session is closed only when the save succeeds.
func (d *Daemon) SaveTimeEdit(ctx context.Context, id string) error {
	if d.saver == nil {
		return ErrSaveNotConfigured
	}
	s, err := d.edits.Get(id)
	if err != nil {
		return err
	}
	if err := d.saver.Save(ctx, s); err != nil {
		return err
	}
	d.edits.Close(id)
	return nil
}
