package models

import "time"

// RefreshKind distinguishes background polling from operator requests
type RefreshKind string

const (
	RefreshSilent RefreshKind = "silent"
	RefreshManual RefreshKind = "manual"
)

// RefreshRun records the outcome of one refresh cycle
type RefreshRun struct {
	ID         int64
	Kind       RefreshKind
	FlightDate string
	StartedAt  time.Time
	FinishedAt time.Time
	OK         bool
	Resolved   int
	Dropped    int
	Published  bool
	Error      string
}
