package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// DB holds the connection pool and the repositories built on it
type DB struct {
	db     *sql.DB
	driver string
	loc    *time.Location
}

// New opens the database. SQLite files get tuned and their schema created;
// a MySQL schema is managed outside the application. Naive timestamps are
// read and written in loc.
func New(driver, dsn string, loc *time.Location) (*DB, error) {
	if loc == nil {
		loc = time.Local
	}
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverMySQL {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{db: db, driver: driver, loc: loc}
	if driver == DriverMySQL {
		return database, nil
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite applies pragmas for a single writer with concurrent readers
func optimizeSQLite(db *sql.DB) error {
	// WAL lets the poller write while operator refreshes read
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA cache_size=-16000"); err != nil {
		return fmt.Errorf("failed to set cache size: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Flights returns the flight data source
func (d *DB) Flights() FlightRepository {
	return NewFlightRepository(d.db, d.loc)
}

// Fleet returns the fleet registry
func (d *DB) Fleet() AircraftRepository {
	return NewAircraftRepository(d.db)
}

// Runs returns the refresh run log
func (d *DB) Runs() RunRepository {
	return NewRunRepository(d.db)
}

// initSchema creates the tables if they don't exist
func (d *DB) initSchema() error {
	tables := []struct {
		name   string
		schema string
	}{
		{"flights", `CREATE TABLE IF NOT EXISTS flights (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			flight_date TEXT NOT NULL,
			registration TEXT NOT NULL DEFAULT '',
			dep TEXT NOT NULL DEFAULT '',
			arr TEXT NOT NULL DEFAULT '',
			std TEXT,
			sta TEXT,
			etd TEXT,
			eta TEXT,
			atd TEXT,
			ata TEXT,
			designator TEXT NOT NULL DEFAULT '',
			flight_number TEXT NOT NULL DEFAULT '',
			block_minutes TEXT,
			status TEXT,
			pax_adults TEXT,
			pax_children TEXT,
			pax_infants TEXT,
			bag_weight TEXT,
			passengers TEXT,
			delays TEXT,
			roster_id TEXT,
			plan_id TEXT,
			aircraft_type TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`},
		{"aircraft", `CREATE TABLE IF NOT EXISTS aircraft (
			registration TEXT PRIMARY KEY,
			typecode TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			operator TEXT NOT NULL DEFAULT '',
			seat_config TEXT NOT NULL DEFAULT ''
		);`},
		{"refresh_runs", `CREATE TABLE IF NOT EXISTS refresh_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			flight_date TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			ok INTEGER NOT NULL DEFAULT 0,
			resolved INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0,
			published INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);`},
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_flights_date_reg_std ON flights(flight_date, registration, std)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_runs_started ON refresh_runs(started_at)`,
	}

	for _, t := range tables {
		if _, err := d.db.Exec(t.schema); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
