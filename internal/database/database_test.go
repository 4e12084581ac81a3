package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flight_gantt/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nzst = time.FixedZone("NZST", 12*3600)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "flights.db"), nzst)
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func at(hour, min int) *time.Time {
	t := time.Date(2026, 10, 14, hour, min, 0, 0, nzst)
	return &t
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	assert.NotNil(t, db)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New("postgres", "ignored", nil)
	assert.Error(t, err)
}

func TestFlightRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t).Flights()

	recs := []*models.FlightRecord{
		{
			FlightDate: "2026-10-14", Registration: "zk-mca", DepartureStation: "AKL", ArrivalStation: "NPE",
			ScheduledDeparture: at(11, 0), ScheduledArrival: at(12, 5),
			Designator: "3C", FlightNumber: "402", BlockMinutes: "65", Status: "Planning",
		},
		{
			FlightDate: "2026-10-14", Registration: "ZK-CIB", DepartureStation: "WLG", ArrivalStation: "CHT",
			ScheduledDeparture: at(9, 0), ScheduledArrival: at(11, 0), ActualDeparture: at(9, 12),
			Designator: "3C", FlightNumber: "701", PaxAdults: "30", PaxChildren: "x",
			Passengers: []models.PassengerRecord{{"Seat": "1A", "Flown": true, "BaggageWeight": 12.5}},
			Delays:     []models.DelayEntry{{Code: "93", ExternalID: "5093", Minutes: 12, Leg: models.LegDeparture}},
			RosterID:   "8812", PlanID: "pl-1", AircraftType: "CV580",
		},
		{
			FlightDate: "2026-10-14", Registration: "ZK-CIB", DepartureStation: "CHT", ArrivalStation: "WLG",
			ScheduledDeparture: at(7, 0), ScheduledArrival: at(8, 30),
		},
		{
			FlightDate: "2026-10-15", Registration: "ZK-CIB", DepartureStation: "WLG", ArrivalStation: "CHT",
			ScheduledDeparture: at(9, 0),
		},
	}
	require.NoError(t, repo.InsertBatch(ctx, recs))

	got, err := repo.FlightsForDate(ctx, "2026-10-14")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "ZK-CIB", got[0].Registration)
	assert.True(t, got[0].ScheduledDeparture.Equal(*at(7, 0)))
	assert.Equal(t, "ZK-CIB", got[1].Registration)
	assert.Equal(t, "ZK-MCA", got[2].Registration)

	f := got[1]
	assert.NotEmpty(t, f.ID)
	assert.True(t, f.ActualDeparture.Equal(*at(9, 12)))
	assert.Nil(t, f.EstimatedDeparture)
	assert.Equal(t, "x", f.PaxChildren)
	assert.Equal(t, []models.PassengerRecord{{"Seat": "1A", "Flown": true, "BaggageWeight": 12.5}}, f.Passengers)
	assert.Equal(t, recs[1].Delays, f.Delays)
	assert.Equal(t, "CV580", f.AircraftType)
	assert.Nil(t, got[2].Passengers)

	none, err := repo.FlightsForDate(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFlightRepository_MalformedColumns(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.db.Exec(`INSERT INTO flights (flight_date, registration, std, sta, etd, passengers, delays)
		VALUES ('2026-10-14', 'ZK-MCF', '2026-10-14 08:00:00', 'soon', '2026-10-14T07:50:00+13:00', '{not json', '[{"code":"93","minutes":5}]')`)
	require.NoError(t, err)

	got, err := db.Flights().FlightsForDate(ctx, "2026-10-14")
	require.NoError(t, err)
	require.Len(t, got, 1)

	f := got[0]
	require.NotNil(t, f.ScheduledDeparture)
	assert.True(t, f.ScheduledDeparture.Equal(*at(8, 0)))
	assert.Nil(t, f.ScheduledArrival)
	require.NotNil(t, f.EstimatedDeparture)
	assert.True(t, f.EstimatedDeparture.Equal(time.Date(2026, 10, 13, 18, 50, 0, 0, time.UTC)))
	assert.Nil(t, f.Passengers)
	require.Len(t, f.Delays, 1)
	assert.Equal(t, 5, f.Delays[0].Minutes)
}

func TestFlightRepository_InsertBatch_Empty(t *testing.T) {
	repo := setupTestDB(t).Flights()
	assert.NoError(t, repo.InsertBatch(context.Background(), nil))
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAircraftRepository_LoadFromMultipleCSV(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t).Fleet()

	populated, err := repo.IsTablePopulated(ctx)
	require.NoError(t, err)
	assert.False(t, populated)

	first := writeCSV(t, "fleet_1.csv", "registration,typecode,model,operator,seat_config\n"+
		"ZK-MCF,AT76,ATR 72-600,Air Chathams,at72-66\n"+
		",AT76,missing registration,,\n"+
		"zk-cib,CVLP,Convair 580,Air Chathams,\n")
	second := writeCSV(t, "fleet_2.csv", "registration,typecode,model,operator\n"+
		"ZK-CIY,SF34,Saab 340,Air Chathams\n")

	n, err := repo.LoadFromMultipleCSV(ctx, []string{first, second}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	populated, err = repo.IsTablePopulated(ctx)
	require.NoError(t, err)
	assert.True(t, populated)

	ac, ok := repo.Lookup("ZK-MCF")
	require.True(t, ok)
	assert.Equal(t, "AT76", ac.TypeCode)
	assert.Equal(t, "AT72-66", ac.SeatConfig)

	ac, ok = repo.Lookup("zk-cib")
	require.True(t, ok)
	assert.Equal(t, "Convair 580", ac.Model)

	missing, err := repo.Get(ctx, "ZK-XXX")
	require.NoError(t, err)
	assert.Nil(t, missing)
	_, ok = repo.Lookup("ZK-XXX")
	assert.False(t, ok)
}

func TestAircraftRepository_MissingFile(t *testing.T) {
	repo := setupTestDB(t).Fleet()
	_, err := repo.LoadFromMultipleCSV(context.Background(), []string{filepath.Join(t.TempDir(), "nope.csv")}, 10)
	assert.Error(t, err)
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t).Runs()

	base := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	older := &models.RefreshRun{Kind: models.RefreshSilent, FlightDate: "2026-10-14", StartedAt: base,
		FinishedAt: base.Add(time.Second), OK: true, Resolved: 12, Dropped: 1, Published: true}
	newer := &models.RefreshRun{Kind: models.RefreshManual, FlightDate: "2026-10-14", StartedAt: base.Add(5 * time.Minute),
		Error: "failed to load flights"}

	require.NoError(t, repo.InsertRun(ctx, older))
	require.NoError(t, repo.InsertRun(ctx, newer))
	assert.NotZero(t, older.ID)
	assert.NotEqual(t, older.ID, newer.ID)

	runs, err := repo.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, models.RefreshManual, runs[0].Kind)
	assert.False(t, runs[0].OK)
	assert.True(t, runs[0].FinishedAt.IsZero())
	assert.Equal(t, "failed to load flights", runs[0].Error)

	assert.Equal(t, models.RefreshSilent, runs[1].Kind)
	assert.True(t, runs[1].OK)
	assert.True(t, runs[1].Published)
	assert.Equal(t, 12, runs[1].Resolved)
	assert.True(t, runs[1].StartedAt.Equal(base))
	assert.True(t, runs[1].FinishedAt.Equal(base.Add(time.Second)))
}
