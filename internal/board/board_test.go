package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flight_gantt/internal/models"
	"flight_gantt/internal/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(hour, min int) *time.Time {
	t := time.Date(2026, 10, 14, hour, min, 0, 0, time.UTC)
	return &t
}

func record(reg, dep, arr string, std, sta *time.Time) models.FlightRecord {
	return models.FlightRecord{
		FlightDate:         "2026-10-14",
		Registration:       reg,
		DepartureStation:   dep,
		ArrivalStation:     arr,
		ScheduledDeparture: std,
		ScheduledArrival:   sta,
		Designator:         "3C",
		FlightNumber:       "701",
	}
}

// mockSource serves canned rows; a call blocks when a gate is registered for its number
type mockSource struct {
	mu      sync.Mutex
	calls   int
	rows    [][]models.FlightRecord
	gates   map[int]chan struct{}
	started chan int
	err     error
}

func (m *mockSource) FlightsForDate(ctx context.Context, date string) ([]models.FlightRecord, error) {
	m.mu.Lock()
	n := m.calls
	m.calls++
	gate := m.gates[n]
	m.mu.Unlock()

	if m.started != nil {
		m.started <- n
	}
	if gate != nil {
		<-gate
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.rows[n%len(m.rows)], nil
}

type mockRecorder struct {
	mu   sync.Mutex
	runs []models.RefreshRun
}

func (m *mockRecorder) InsertRun(ctx context.Context, run *models.RefreshRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func TestBoard_RefreshForOperator(t *testing.T) {
	src := &mockSource{rows: [][]models.FlightRecord{{
		record("ZK-MCA", "AKL", "NPE", ts(8, 0), ts(9, 30)),
		record("ZK-CIB", "WLG", "CHT", ts(9, 0), ts(11, 0)),
		record("ZK-CIX", "WLG", "NSN", nil, nil),
	}}}
	rec := &mockRecorder{}
	b := New(src, Options{Recorder: rec})

	assert.Nil(t, b.Current())

	snap, err := b.RefreshForOperator(context.Background(), "2026-10-14")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Same(t, snap, b.Current())
	assert.Len(t, snap.Flights, 2)
	assert.Equal(t, 1, snap.Dropped)
	assert.Len(t, snap.Timeline.Lanes, 2)
	assert.Equal(t, *ts(7, 0), snap.Timeline.Window.Start)
	assert.Equal(t, *ts(12, 0), snap.Timeline.Window.End)

	f, ok := snap.Flight(1)
	require.True(t, ok)
	assert.Equal(t, "ZK-CIB", f.Registration)
	_, ok = snap.Flight(2)
	assert.False(t, ok)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, models.RefreshManual, run.Kind)
	assert.True(t, run.OK)
	assert.True(t, run.Published)
	assert.Equal(t, 2, run.Resolved)
	assert.Equal(t, 1, run.Dropped)
}

func TestBoard_View(t *testing.T) {
	src := &mockSource{rows: [][]models.FlightRecord{{
		record("ZK-MCA", "AKL", "NPE", ts(8, 0), ts(9, 30)),
		record("ZK-CIB", "WLG", "CHT", ts(9, 0), ts(11, 0)),
	}}}
	b := New(src, Options{})

	snap, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.NoError(t, err)

	view := snap.View("NZCI")
	require.Len(t, view.Lanes, 1)
	assert.Equal(t, "ZK-CIB", view.Lanes[0].Registration)
	assert.Equal(t, snap.Timeline.Window, view.Window)
	assert.Same(t, snap.Timeline, snap.View(""))
}

func TestBoard_ViewWithConfiguredFilter(t *testing.T) {
	src := &mockSource{rows: [][]models.FlightRecord{{
		record("ZK-MCA", "AKL", "NPE", ts(8, 0), ts(9, 30)),
		record("ZK-CIB", "WLG", "CHT", ts(9, 0), ts(11, 0)),
	}}}
	b := New(src, Options{StationFilter: "AKL"})

	snap, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.NoError(t, err)
	require.Len(t, snap.Timeline.Lanes, 1)
	assert.Equal(t, "ZK-MCA", snap.Timeline.Lanes[0].Registration)
	assert.Same(t, snap.Timeline, snap.View("AKL"))

	all := snap.View("")
	assert.Len(t, all.Lanes, 2)
	assert.Equal(t, snap.Timeline.Window, all.Window)

	other := snap.View("CHT")
	require.Len(t, other.Lanes, 1)
	assert.Equal(t, "ZK-CIB", other.Lanes[0].Registration)
}

func TestBoard_FailureKeepsSnapshot(t *testing.T) {
	src := &mockSource{rows: [][]models.FlightRecord{{record("ZK-MCA", "AKL", "NPE", ts(8, 0), ts(9, 30))}}}
	rec := &mockRecorder{}
	b := New(src, Options{Recorder: rec})

	first, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.NoError(t, err)

	src.err = errors.New("database is locked")
	got, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.Error(t, err)
	assert.Same(t, first, got)
	assert.Same(t, first, b.Current())

	require.Len(t, rec.runs, 2)
	assert.False(t, rec.runs[1].OK)
	assert.Equal(t, models.RefreshSilent, rec.runs[1].Kind)
	assert.Contains(t, rec.runs[1].Error, "database is locked")
}

func TestBoard_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &mockSource{
		rows: [][]models.FlightRecord{
			{record("ZK-OLD", "AKL", "NPE", ts(8, 0), ts(9, 0))},
			{record("ZK-NEW", "AKL", "NPE", ts(8, 0), ts(9, 0))},
		},
		gates:   map[int]chan struct{}{0: gate},
		started: make(chan int, 2),
	}
	rec := &mockRecorder{}
	b := New(src, Options{Recorder: rec})

	done := make(chan *models.ResolvedFlight)
	go func() {
		snap, err := b.RefreshSilently(context.Background(), "2026-10-14")
		assert.NoError(t, err)
		done <- snap.Flights[0]
	}()
	require.Equal(t, 0, <-src.started)

	snap, err := b.RefreshForOperator(context.Background(), "2026-10-14")
	require.NoError(t, err)
	<-src.started
	assert.Equal(t, "ZK-NEW", snap.Flights[0].Registration)

	close(gate)
	// the slow refresh returns what is published, not its own stale build
	assert.Equal(t, "ZK-NEW", (<-done).Registration)
	assert.Equal(t, "ZK-NEW", b.Current().Flights[0].Registration)
	assert.Equal(t, uint64(2), b.Current().Seq)

	require.Len(t, rec.runs, 2)
	assert.True(t, rec.runs[0].Published)
	assert.False(t, rec.runs[1].Published)
}

func TestBoard_InOrderCompletionPublishesEach(t *testing.T) {
	src := &mockSource{rows: [][]models.FlightRecord{
		{record("ZK-ONE", "AKL", "NPE", ts(8, 0), ts(9, 0))},
		{record("ZK-TWO", "AKL", "NPE", ts(8, 0), ts(9, 0))},
	}}
	b := New(src, Options{})

	first, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Seq)

	second, err := b.RefreshForOperator(context.Background(), "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, "ZK-TWO", b.Current().Flights[0].Registration)
}

type nopFetcher struct{}

func (nopFetcher) ActualTimes(ctx context.Context, id string) (*roster.ActualTimes, bool, error) {
	return nil, false, nil
}

func (nopFetcher) Crew(ctx context.Context, id string) ([]roster.CrewMember, bool, error) {
	return nil, false, nil
}

func TestBoard_RosterCachePerSnapshot(t *testing.T) {
	src := &mockSource{rows: [][]models.FlightRecord{{record("ZK-MCA", "AKL", "NPE", ts(8, 0), ts(9, 30))}}}
	b := New(src, Options{Roster: nopFetcher{}})

	a, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.NoError(t, err)
	c, err := b.RefreshSilently(context.Background(), "2026-10-14")
	require.NoError(t, err)

	require.NotNil(t, a.Roster)
	require.NotNil(t, c.Roster)
	assert.NotSame(t, a.Roster, c.Roster)
}
