package plan

import (
	"fmt"
	"strings"
	"time"

	"flight_gantt/internal/models"
	"flight_gantt/internal/passenger"
	"flight_gantt/internal/stations"
)

// Passenger is one manifest line sent to the plan system
type Passenger struct {
	Name               string  `json:"name"`
	Seat               string  `json:"seat,omitempty"`
	FareType           string  `json:"fare_type"`
	WeightKg           float64 `json:"weight_kg"`
	BagKg              float64 `json:"bag_kg"`
	BookingRef         string  `json:"booking_ref,omitempty"`
	SSRs               string  `json:"ssrs,omitempty"`
	UnaccompaniedMinor bool    `json:"umnr"`
	State              string  `json:"state"`
}

// Request identifies a flight in the plan system and carries its manifest
type Request struct {
	PlanID       string      `json:"plan_id,omitempty"`
	Departure    string      `json:"adep"`
	Arrival      string      `json:"ades"`
	Date         string      `json:"date"`
	Designator   string      `json:"designator"`
	FlightNumber string      `json:"flight_no"`
	Registration string      `json:"registration"`
	RosterID     string      `json:"roster_flight_id,omitempty"`
	Passengers   []Passenger `json:"passengers"`
	Preview      bool        `json:"preview"`
}

// resetRequest is the key part of a Request
type resetRequest struct {
	PlanID       string `json:"plan_id,omitempty"`
	Departure    string `json:"adep"`
	Arrival      string `json:"ades"`
	Date         string `json:"date"`
	Designator   string `json:"designator"`
	FlightNumber string `json:"flight_no"`
	Registration string `json:"registration"`
	RosterID     string `json:"roster_flight_id,omitempty"`
}

func (r Request) key() resetRequest {
	return resetRequest{
		PlanID:       r.PlanID,
		Departure:    r.Departure,
		Arrival:      r.Arrival,
		Date:         r.Date,
		Designator:   r.Designator,
		FlightNumber: r.FlightNumber,
		Registration: r.Registration,
		RosterID:     r.RosterID,
	}
}

// MissingFieldsError lists the key fields a write could not be made without
type MissingFieldsError struct {
	Op     string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("cannot %s plan: missing %s", e.Op, strings.Join(e.Fields, ", "))
}

// Missing returns the names of empty key fields in a fixed order
func (r Request) Missing() []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("flight number", r.FlightNumber)
	check("designator", r.Designator)
	check("departure station", r.Departure)
	check("arrival station", r.Arrival)
	check("date", r.Date)
	check("registration", r.Registration)
	return missing
}

// RequestFor builds the plan request of a flight. Station codes are sent in
// ICAO form when the table knows them. ref is the date ages are computed at.
func RequestFor(f *models.ResolvedFlight, table *stations.Table, preview bool, ref time.Time) Request {
	req := Request{
		PlanID:       f.PlanID,
		Departure:    stationCode(table, f.DepartureStation),
		Arrival:      stationCode(table, f.ArrivalStation),
		Date:         f.FlightDate,
		Designator:   f.Designator,
		FlightNumber: f.FlightNumber,
		Registration: f.Registration,
		RosterID:     f.RosterID,
		Passengers:   make([]Passenger, 0, len(f.Passengers)),
		Preview:      preview,
	}

	for _, p := range f.Passengers {
		d := passenger.Describe(p, ref)
		req.Passengers = append(req.Passengers, Passenger{
			Name:               d.Name,
			Seat:               d.Seat,
			FareType:           d.FareType,
			WeightKg:           passenger.StandardWeightKg(d.FareType),
			BagKg:              passenger.Float(p, passenger.FieldBagWeight),
			BookingRef:         d.BookingRef,
			SSRs:               d.SSRText,
			UnaccompaniedMinor: d.UnaccompaniedMinor,
			State:              d.State.String(),
		})
	}
	return req
}

func stationCode(table *stations.Table, code string) string {
	clean := stations.Clean(code)
	if table == nil {
		return clean
	}
	if icao := table.ToICAO(clean); icao != "" {
		return icao
	}
	return clean
}
