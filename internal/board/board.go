package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"flight_gantt/internal/flight"
	"flight_gantt/internal/models"
	"flight_gantt/internal/roster"
	"flight_gantt/internal/stations"
	"flight_gantt/internal/timeline"
)

// Source returns the raw flight rows of one operating day
type Source interface {
	FlightsForDate(ctx context.Context, date string) ([]models.FlightRecord, error)
}

// RunRecorder stores the outcome of each refresh
type RunRecorder interface {
	InsertRun(ctx context.Context, run *models.RefreshRun) error
}

// Snapshot is one fully built board. It is never modified after publication
// apart from the crew and times its roster cache fetches on demand.
type Snapshot struct {
	Seq      uint64
	Date     string
	BuiltAt  time.Time
	Flights  []*models.ResolvedFlight
	Dropped  int
	Timeline *timeline.Timeline
	Roster   *roster.Cache

	stations *stations.Table
	filter   string // station filter Timeline was built with
}

// Flight returns a flight by display index
func (s *Snapshot) Flight(index int) (*models.ResolvedFlight, bool) {
	if s == nil || index < 0 || index >= len(s.Flights) {
		return nil, false
	}
	return s.Flights[index], true
}

// View returns the timeline restricted to lanes touching a station; an
// empty filter returns every lane even when a default filter is configured.
// The window stays the one of the whole day.
func (s *Snapshot) View(stationFilter string) *timeline.Timeline {
	if stationFilter == s.filter {
		return s.Timeline
	}
	return timeline.Build(s.Flights, timeline.Options{StationFilter: stationFilter, Stations: s.stations})
}

// Options configures a Board
type Options struct {
	Stations      *stations.Table
	StationFilter string
	Roster        roster.Fetcher   // may be nil
	Recorder      RunRecorder      // may be nil
	Now           func() time.Time // defaults to time.Now
}

// Board owns the published snapshot and the refresh paths that replace it
type Board struct {
	source Source
	opts   Options

	current    atomic.Pointer[Snapshot]
	dispatched atomic.Uint64
	publishMu  sync.Mutex
}

func New(source Source, opts Options) *Board {
	if opts.Stations == nil {
		opts.Stations = stations.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{source: source, opts: opts}
}

// Current returns the latest published snapshot, nil before the first refresh
func (b *Board) Current() *Snapshot {
	return b.current.Load()
}

// RefreshSilently is the background poll. Failures are logged and the
// previous snapshot stays published.
func (b *Board) RefreshSilently(ctx context.Context, date string) (*Snapshot, error) {
	snap, published, err := b.reconcile(ctx, date, models.RefreshSilent)
	if err != nil {
		slog.Warn("Background refresh failed", "date", date, "error", err)
		return b.Current(), err
	}
	slog.Debug("Background refresh complete", "date", date, "seq", snap.Seq, "flights", len(snap.Flights), "dropped", snap.Dropped, "published", published)
	return b.Current(), nil
}

// RefreshForOperator is an operator-requested reload. It returns the
// snapshot now published, which is newer than the one built here when a
// later refresh finished first.
func (b *Board) RefreshForOperator(ctx context.Context, date string) (*Snapshot, error) {
	snap, published, err := b.reconcile(ctx, date, models.RefreshManual)
	if err != nil {
		slog.Error("Refresh failed", "date", date, "error", err)
		return b.Current(), err
	}
	if !published {
		slog.Info("Discarded stale refresh", "date", date, "seq", snap.Seq)
	} else {
		slog.Info("Loaded flights", "date", date, "flights", len(snap.Flights), "lanes", len(snap.Timeline.Lanes), "dropped", snap.Dropped)
	}
	return b.Current(), nil
}

// reconcile rebuilds the board for a date. The sequence number is taken at
// dispatch; a result is published only if no later dispatched refresh has
// been published already.
func (b *Board) reconcile(ctx context.Context, date string, kind models.RefreshKind) (*Snapshot, bool, error) {
	seq := b.dispatched.Add(1)
	run := &models.RefreshRun{Kind: kind, FlightDate: date, StartedAt: b.opts.Now()}
	defer b.record(ctx, run)

	records, err := b.source.FlightsForDate(ctx, date)
	if err != nil {
		run.FinishedAt = b.opts.Now()
		run.Error = err.Error()
		return nil, false, fmt.Errorf("failed to load flights for %s: %w", date, err)
	}

	flights, dropped := flight.ResolveAll(records)
	snap := &Snapshot{
		Seq:      seq,
		Date:     date,
		Flights:  flights,
		Dropped:  dropped,
		Timeline: timeline.Build(flights, timeline.Options{StationFilter: b.opts.StationFilter, Stations: b.opts.Stations}),
		stations: b.opts.Stations,
		filter:   b.opts.StationFilter,
	}
	if b.opts.Roster != nil {
		snap.Roster = roster.NewCache(b.opts.Roster)
	}
	snap.BuiltAt = b.opts.Now()

	published := b.publish(snap)

	run.FinishedAt = snap.BuiltAt
	run.OK = true
	run.Resolved = len(flights)
	run.Dropped = dropped
	run.Published = published
	return snap, published, nil
}

func (b *Board) publish(snap *Snapshot) bool {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	if cur := b.current.Load(); cur != nil && cur.Seq > snap.Seq {
		return false
	}
	b.current.Store(snap)
	return true
}

func (b *Board) record(ctx context.Context, run *models.RefreshRun) {
	if b.opts.Recorder == nil {
		return
	}
	if err := b.opts.Recorder.InsertRun(context.WithoutCancel(ctx), run); err != nil {
		slog.Warn("Failed to record refresh run", "kind", run.Kind, "error", err)
	}
}
