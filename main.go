package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flight_gantt/internal/config"
	"flight_gantt/internal/daemon"
)

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func daemonConfig(cfg *config.Config, date string) (daemon.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return daemon.Config{}, err
	}
	return daemon.Config{
		DBDriver:        cfg.DB.Driver,
		DBDSN:           cfg.DB.DSN,
		Location:        loc,
		RefreshInterval: cfg.Interval(),
		StationFilter:   cfg.StationFilter,
		Date:            date,
		RosterBaseURL:   cfg.Roster.BaseURL,
		RosterToken:     cfg.Roster.Token,
		RosterTimeout:   time.Duration(cfg.Roster.TimeoutSec) * time.Second,
		PlanBaseURL:     cfg.Plan.BaseURL,
		PlanToken:       cfg.Plan.Token,
		PlanTimeout:     time.Duration(cfg.Plan.TimeoutSec) * time.Second,
		SaveURL:         cfg.TimeEdit.SaveURL,
		SaveTimeout:     time.Duration(cfg.TimeEdit.TimeoutSec) * time.Second,
		DelayCodesCSV:   cfg.Reference.DelayCodesCSV,
		StationsCSV:     cfg.Reference.StationsCSV,
		FleetCSVPaths:   cfg.FleetCSVPaths,
	}, nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	date := flag.String("date", "", "Operating day YYYY-MM-DD (default today in the configured timezone)")
	once := flag.Bool("once", false, "Refresh once, log the lane summary and exit")
	manifestFlight := flag.String("manifest", "", "Write the passenger manifest PDF of this flight (e.g. 3C701) and exit")
	out := flag.String("out", "", "Manifest output path (default <flight>-<date>.pdf)")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("FLIGHT_GANTT_CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		// Logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	if *date != "" {
		if _, err := time.Parse("2006-01-02", *date); err != nil {
			slog.Error("Invalid date", "date", *date, "error", err)
			os.Exit(1)
		}
	}

	dcfg, err := daemonConfig(cfg, *date)
	if err != nil {
		slog.Error("Failed to build daemon configuration", "error", err)
		os.Exit(1)
	}

	d, err := daemon.New(dcfg)
	if err != nil {
		slog.Error("Failed to initialize daemon", "error", err)
		os.Exit(1)
	}

	switch {
	case *manifestFlight != "":
		err = writeManifest(d, *manifestFlight, *out)
		d.Close()
	case *once:
		err = refreshOnce(d)
		d.Close()
	default:
		err = run(d)
	}
	if err != nil {
		slog.Error("Exiting with error", "error", err)
		os.Exit(1)
	}
}

func writeManifest(d *daemon.Daemon, flight, path string) error {
	if path == "" {
		path = fmt.Sprintf("%s-%s.pdf", strings.ToUpper(strings.ReplaceAll(flight, " ", "")), d.Date())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := d.WriteManifest(ctx, flight, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	slog.Info("Manifest written", "path", path)
	return nil
}

func refreshOnce(d *daemon.Daemon) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snap, err := d.Refresh(ctx)
	if err != nil {
		return err
	}
	w := snap.Timeline.Window
	slog.Info("Timeline window", "date", snap.Date, "start", w.Start.Format(time.RFC3339), "end", w.End.Format(time.RFC3339), "ticks", len(snap.Timeline.Ticks))
	for _, lane := range snap.Timeline.Lanes {
		legs := make([]string, 0, len(lane.Spans))
		for _, s := range lane.Spans {
			f := s.Flight
			legs = append(legs, fmt.Sprintf("%s %s-%s %s-%s %s", f.Callsign(), f.DepartureStation, f.ArrivalStation,
				f.DisplayStart.Format("15:04"), f.DisplayEnd.Format("15:04"), f.Status))
		}
		slog.Info("Lane", "registration", lane.Registration, "flights", strings.Join(legs, "; "))
	}
	return nil
}

func run(d *daemon.Daemon) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	<-sigChan
	slog.Info("Received interrupt signal, shutting down...")

	return d.Stop()
}
