package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinRefreshInterval is the shortest accepted background refresh period
const MinRefreshInterval = 60

// Config holds all configuration for the daemon
type Config struct {
	DB              DBConfig
	Timezone        string
	RefreshInterval int // seconds
	StationFilter   string
	Roster          RemoteConfig
	Plan            RemoteConfig
	TimeEdit        TimeEditConfig
	Reference       ReferenceConfig
	FleetCSVPaths   []string
	Log             LogConfig
}

// DBConfig selects the flight data source
type DBConfig struct {
	Driver string // sqlite3 or mysql
	DSN    string
}

// RemoteConfig holds the address and credentials of a partner system
type RemoteConfig struct {
	BaseURL    string
	Token      string
	TimeoutSec int
}

// TimeEditConfig holds the time-edit save endpoint
type TimeEditConfig struct {
	SaveURL    string
	TimeoutSec int
}

// ReferenceConfig points at optional overrides of the built-in reference tables
type ReferenceConfig struct {
	DelayCodesCSV string
	StationsCSV   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Location returns the operating time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Interval returns the background refresh period
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// Load loads configuration from a .env file, the config file and environment variables
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "flight_gantt.db")
	v.SetDefault("timezone", "Pacific/Auckland")
	v.SetDefault("refresh.interval_sec", 300)
	v.SetDefault("station_filter", "")
	v.SetDefault("roster.base_url", "")
	v.SetDefault("roster.token", "")
	v.SetDefault("roster.timeout_sec", 30)
	v.SetDefault("plan.base_url", "")
	v.SetDefault("plan.token", "")
	v.SetDefault("plan.timeout_sec", 30)
	v.SetDefault("timeedit.save_url", "")
	v.SetDefault("timeedit.timeout_sec", 30)
	v.SetDefault("reference.delay_codes_csv", "")
	v.SetDefault("reference.stations_csv", "")
	v.SetDefault("fleet.csv_paths", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/flight_gantt")
	v.AddConfigPath(".")

	if configPath := os.Getenv("FLIGHT_GANTT_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// A missing config file is fine; defaults and env vars still apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FLIGHT_GANTT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Timezone:        v.GetString("timezone"),
		RefreshInterval: v.GetInt("refresh.interval_sec"),
		StationFilter:   strings.ToUpper(strings.TrimSpace(v.GetString("station_filter"))),
		Roster: RemoteConfig{
			BaseURL:    v.GetString("roster.base_url"),
			Token:      v.GetString("roster.token"),
			TimeoutSec: v.GetInt("roster.timeout_sec"),
		},
		Plan: RemoteConfig{
			BaseURL:    v.GetString("plan.base_url"),
			Token:      v.GetString("plan.token"),
			TimeoutSec: v.GetInt("plan.timeout_sec"),
		},
		TimeEdit: TimeEditConfig{
			SaveURL:    v.GetString("timeedit.save_url"),
			TimeoutSec: v.GetInt("timeedit.timeout_sec"),
		},
		Reference: ReferenceConfig{
			DelayCodesCSV: v.GetString("reference.delay_codes_csv"),
			StationsCSV:   v.GetString("reference.stations_csv"),
		},
		FleetCSVPaths: v.GetStringSlice("fleet.csv_paths"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv exports the variables of an optional .env file. Variables
// already present in the environment are not overridden.
func loadDotEnv() error {
	path := os.Getenv("FLIGHT_GANTT_DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// validate validates the configuration values
func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case "sqlite3", "mysql":
	default:
		return fmt.Errorf("invalid db driver: %s (must be sqlite3 or mysql)", cfg.DB.Driver)
	}

	if cfg.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}

	if _, err := cfg.Location(); err != nil {
		return err
	}

	if cfg.RefreshInterval < MinRefreshInterval {
		return fmt.Errorf("refresh.interval_sec must be at least %d", MinRefreshInterval)
	}

	if cfg.Roster.TimeoutSec <= 0 {
		return fmt.Errorf("roster.timeout_sec must be greater than 0")
	}

	if cfg.Plan.TimeoutSec <= 0 {
		return fmt.Errorf("plan.timeout_sec must be greater than 0")
	}

	if cfg.TimeEdit.TimeoutSec <= 0 {
		return fmt.Errorf("timeedit.timeout_sec must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
