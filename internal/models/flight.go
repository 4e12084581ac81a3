package models

import "time"

// Leg identifies which end of a flight a value belongs to
type Leg string

const (
	LegDeparture Leg = "departure"
	LegArrival   Leg = "arrival"
)

// FlightRecord is one raw leg row as returned by the flight data source.
// Every timestamp is independently nullable and the numeric fields are kept
// as the source sent them; parsing happens in the flight package.
type FlightRecord struct {
	ID               string
	FlightDate       string // YYYY-MM-DD operating day
	Registration     string
	DepartureStation string
	ArrivalStation   string

	ScheduledDeparture *time.Time
	ScheduledArrival   *time.Time
	EstimatedDeparture *time.Time
	EstimatedArrival   *time.Time
	ActualDeparture    *time.Time
	ActualArrival      *time.Time

	Designator   string // airline designator, or the full flight number when FlightNumber is empty
	FlightNumber string
	BlockMinutes string
	Status       string

	PaxAdults   string
	PaxChildren string
	PaxInfants  string
	BagWeight   string

	Passengers []PassengerRecord
	Delays     []DelayEntry

	RosterID     string // roster system flight identifier
	PlanID       string // plan system identifier
	AircraftType string
}

// PaxTotals holds passenger counts by fare type
type PaxTotals struct {
	Adults   int
	Children int
	Infants  int
}

// Total returns the number of passengers on board including infants
func (p PaxTotals) Total() int {
	return p.Adults + p.Children + p.Infants
}

// ResolvedFlight is the display entity built once per refresh from a FlightRecord.
// It is not mutated after construction.
type ResolvedFlight struct {
	Index int

	RecordID         string
	FlightDate       string
	Registration     string
	DepartureStation string
	ArrivalStation   string
	AircraftType     string

	DisplayStart time.Time
	DisplayEnd   time.Time

	// Scheduled pair for the thin reference bar; nil when the source had none
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time

	// Raw actuals for tooltips
	ActualDeparture *time.Time
	ActualArrival   *time.Time

	Status       Status
	RawStatus    string
	Designator   string
	FlightNumber string
	BlockMinutes int

	Pax         PaxTotals
	BagWeightKg float64

	Passengers []PassengerRecord
	Delays     []DelayEntry

	RosterID string
	PlanID   string
}

// Callsign returns designator and number joined, e.g. "3C701"
func (f *ResolvedFlight) Callsign() string {
	return f.Designator + f.FlightNumber
}

// Duration returns the length of the display span
func (f *ResolvedFlight) Duration() time.Duration {
	return f.DisplayEnd.Sub(f.DisplayStart)
}
