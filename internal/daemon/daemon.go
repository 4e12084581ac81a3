package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"flight_gantt/internal/board"
	"flight_gantt/internal/database"
	"flight_gantt/internal/delay"
	"flight_gantt/internal/plan"
	"flight_gantt/internal/roster"
	"flight_gantt/internal/scheduler"
	"flight_gantt/internal/seatmap"
	"flight_gantt/internal/stations"
	"flight_gantt/internal/tasks"
	"flight_gantt/internal/timeedit"
)

// fleetBatchSize is the number of aircraft rows written per transaction on first load
const fleetBatchSize = 5000

// Daemon represents the main daemon structure
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Scheduler
	database  *database.DB
	loc       *time.Location

	board    *board.Board
	poller   *tasks.RefreshPoller
	stations *stations.Table
	seats    *seatmap.Deriver
	edits    *timeedit.Registry
	plan     *plan.Client         // nil when no plan system is configured
	saver    *timeedit.SaveClient // nil when no save endpoint is configured

	done chan struct{}
}

// Config holds daemon configuration
type Config struct {
	DBDriver string
	DBDSN    string
	Location *time.Location

	RefreshInterval time.Duration
	StationFilter   string
	Date            string // fixed operating day; empty follows the clock

	RosterBaseURL string
	RosterToken   string
	RosterTimeout time.Duration

	PlanBaseURL string
	PlanToken   string
	PlanTimeout time.Duration

	SaveURL     string
	SaveTimeout time.Duration

	DelayCodesCSV string // empty uses the built-in table
	StationsCSV   string // merged over the built-in table
	FleetCSVPaths []string
}

// New creates a new daemon instance
func New(cfg Config) (*Daemon, error) {
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("RefreshInterval must be greater than 0")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	codes, err := loadCodeTable(cfg.DelayCodesCSV)
	if err != nil {
		return nil, err
	}
	table, err := loadStations(cfg.StationsCSV)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.New(cfg.DBDriver, cfg.DBDSN, loc)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := ensureFleet(ctx, db.Fleet(), cfg.FleetCSVPaths); err != nil {
		cancel()
		db.Close()
		return nil, err
	}

	opts := board.Options{
		Stations:      table,
		StationFilter: cfg.StationFilter,
		Recorder:      db.Runs(),
	}
	if cfg.RosterBaseURL != "" {
		opts.Roster = roster.NewClient(cfg.RosterBaseURL, cfg.RosterToken, cfg.RosterTimeout)
	} else {
		slog.Warn("No roster system configured, crew and actual times are unavailable")
	}
	b := board.New(db.Flights(), opts)

	var poller *tasks.RefreshPoller
	if cfg.Date != "" {
		poller = tasks.NewRefreshPollerForDate(b, cfg.RefreshInterval, cfg.Date)
	} else {
		poller = tasks.NewRefreshPoller(b, cfg.RefreshInterval, loc)
	}

	sched := scheduler.New(ctx)
	sched.AddTask(poller)

	d := &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: sched,
		database:  db,
		loc:       loc,
		board:     b,
		poller:    poller,
		stations:  table,
		seats:     seatmap.NewDeriver(db.Fleet()),
		edits:     timeedit.NewRegistry(codes, loc),
		done:      make(chan struct{}),
	}
	if cfg.PlanBaseURL != "" {
		d.plan = plan.NewClient(cfg.PlanBaseURL, cfg.PlanToken, cfg.PlanTimeout)
	}
	if cfg.SaveURL != "" {
		d.saver = timeedit.NewSaveClient(cfg.SaveURL, cfg.SaveTimeout)
	}
	return d, nil
}

func loadCodeTable(path string) (*delay.CodeTable, error) {
	if path == "" {
		return delay.DefaultCodeTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open delay code table: %w", err)
	}
	defer f.Close()
	codes, err := delay.LoadCodeTable(f)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded delay code table", "path", path)
	return codes, nil
}

func loadStations(path string) (*stations.Table, error) {
	if path == "" {
		return stations.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open station table: %w", err)
	}
	defer f.Close()
	table, err := stations.Load(f)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded station table", "path", path, "stations", table.Len())
	return table, nil
}

// ensureFleet loads the fleet registry from CSV when the table is empty
func ensureFleet(ctx context.Context, fleet database.AircraftRepository, paths []string) error {
	populated, err := fleet.IsTablePopulated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check aircraft table: %w", err)
	}
	if populated {
		slog.Info("Aircraft table is already populated")
		return nil
	}
	if len(paths) == 0 {
		slog.Info("Aircraft table is empty and no fleet CSV is configured")
		return nil
	}

	slog.Info("Aircraft table is empty, loading from CSV files", "csv_paths", paths)
	n, err := fleet.LoadFromMultipleCSV(ctx, paths, fleetBatchSize)
	if err != nil {
		return fmt.Errorf("failed to load aircraft from CSV: %w", err)
	}
	slog.Info("Loaded fleet registry", "aircraft", n)
	return nil
}

func (d *Daemon) Start() error {
	slog.Info("Starting daemon", "date", d.poller.Date(), "interval", d.poller.Interval())

	d.scheduler.Start()

	// Wait for context cancellation
	go func() {
		<-d.ctx.Done()
		close(d.done)
	}()

	slog.Info("Daemon started successfully")
	return nil
}

// Stop gracefully stops the daemon
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()
	<-d.done

	d.scheduler.Stop()

	for _, st := range d.scheduler.Statuses() {
		slog.Info("Task summary", "task", st.Name, "runs", st.Runs, "failures", st.Failures)
	}

	if err := d.database.Close(); err != nil {
		slog.Error("Error closing database", "error", err)
	}

	slog.Info("Daemon stopped")
	return nil
}

// Close releases resources of a daemon that was never started
func (d *Daemon) Close() error {
	d.cancel()
	return d.database.Close()
}

// Board returns the refresh orchestrator
func (d *Daemon) Board() *board.Board {
	return d.board
}

// Date returns the operating day the daemon shows
func (d *Daemon) Date() string {
	return d.poller.Date()
}
