package seatmap

import (
	"strconv"
	"strings"
	"time"

	"flight_gantt/internal/models"
	"flight_gantt/internal/passenger"
)

// Side is where a seat sits relative to the aisle
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideAisle Side = "aisle"
)

// Class is the base visual classification of a seat
type Class string

const (
	ClassEmpty           Class = "empty"
	ClassAdult           Class = "adult"
	ClassChild           Class = "child"
	ClassAdultWithInfant Class = "adult_infant"
	ClassInfant          Class = "infant"
)

// Icon is an overlay drawn on top of the base classification
type Icon string

const (
	IconWheelchair Icon = "wheelchair"
	IconSpecial    Icon = "special"
)

var wheelchairCodes = map[string]bool{"WCHR": true, "WCHS": true, "WCHC": true}

var specialCodes = map[string]bool{
	"BLND": true, "DEAF": true, "DPNA": true, "MEDA": true,
	"STCR": true, "SVAN": true, "PETC": true, "MAAS": true,
}

// Seat is one cell of a derived seat map
type Seat struct {
	Code               string
	Row                int
	Column             string
	Side               Side
	Class              Class
	Icons              []Icon
	UnaccompaniedMinor bool
	Passenger          models.PassengerRecord // nil when empty
}

// Row is one seat row
type Row struct {
	Number int
	Seats  []Seat
}

// SeatMap is a topology with passenger occupancy overlaid
type SeatMap struct {
	Topology Topology
	Rows     []Row
	Occupied int
	// Unplaced holds passengers whose seat code is not part of the topology
	Unplaced []models.PassengerRecord

	ref   time.Time
	index map[string]*Seat
}

// FleetLookup resolves an airframe's registry entry
type FleetLookup interface {
	Lookup(registration string) (models.Aircraft, bool)
}

// Deriver selects topologies and overlays occupancy
type Deriver struct {
	topologies map[string]Topology
	rules      []rule
	fleet      FleetLookup
}

// NewDeriver returns a deriver with the built-in topologies. fleet may be nil.
func NewDeriver(fleet FleetLookup) *Deriver {
	d := &Deriver{
		topologies: make(map[string]Topology, len(builtinTopologies)),
		rules:      builtinRules,
		fleet:      fleet,
	}
	for _, t := range builtinTopologies {
		d.topologies[t.Name] = t
	}
	return d
}

// Topology returns a topology by name
func (d *Deriver) Topology(name string) (Topology, bool) {
	t, ok := d.topologies[strings.ToUpper(strings.TrimSpace(name))]
	return t, ok
}

// Select picks the topology for an airframe. A fleet seat configuration wins,
// then the ordered rules on aircraft type and registration.
func (d *Deriver) Select(aircraftType, registration string) (Topology, bool) {
	reg := normalizeRegistration(registration)
	typ := strings.ToUpper(strings.TrimSpace(aircraftType))

	if d.fleet != nil {
		if ac, ok := d.fleet.Lookup(reg); ok {
			if t, ok := d.Topology(ac.SeatConfig); ok {
				return t, true
			}
			if typ == "" {
				typ = strings.ToUpper(ac.TypeCode)
			}
		}
	}

	for _, r := range d.rules {
		if r.matches(typ, reg) {
			t, ok := d.topologies[r.topology]
			return t, ok
		}
	}
	return Topology{}, false
}

// Derive builds the seat map of a flight. It returns false when no topology applies.
func (d *Deriver) Derive(f *models.ResolvedFlight, ref time.Time) (*SeatMap, bool) {
	t, ok := d.Select(f.AircraftType, f.Registration)
	if !ok {
		return nil, false
	}
	return Overlay(t, f.Passengers, ref), true
}

// Overlay places passengers on a topology. ref is the date ages are computed at.
func Overlay(t Topology, pax []models.PassengerRecord, ref time.Time) *SeatMap {
	sm := &SeatMap{Topology: t, ref: ref, index: make(map[string]*Seat)}

	for _, n := range t.Rows() {
		row := Row{Number: n}
		for _, c := range t.cells(n) {
			row.Seats = append(row.Seats, Seat{
				Code:   strconv.Itoa(n) + c.column,
				Row:    n,
				Column: c.column,
				Side:   c.side,
				Class:  ClassEmpty,
			})
		}
		sm.Rows = append(sm.Rows, row)
	}
	for i := range sm.Rows {
		for j := range sm.Rows[i].Seats {
			s := &sm.Rows[i].Seats[j]
			sm.index[s.Code] = s
		}
	}

	// Lap infants sharing a seat never displace the adult; otherwise last one wins
	occupant := make(map[string]models.PassengerRecord)
	infantOn := make(map[string]bool)
	for _, p := range pax {
		code := passenger.Seat(p)
		if code == "" {
			continue
		}
		if _, ok := sm.index[code]; !ok {
			sm.Unplaced = append(sm.Unplaced, p)
			continue
		}
		infant := passenger.FareType(p) == passenger.FareInfant
		if infant {
			infantOn[code] = true
		}
		if cur, taken := occupant[code]; taken && infant && passenger.FareType(cur) != passenger.FareInfant {
			continue
		}
		occupant[code] = p
	}

	for code, p := range occupant {
		s := sm.index[code]
		s.Passenger = p
		s.Class = classify(p, infantOn[code])
		s.Icons = icons(p)
		s.UnaccompaniedMinor = passenger.IsUnaccompaniedMinor(p)
		sm.Occupied++
	}
	return sm
}

func classify(p models.PassengerRecord, infantOnSeat bool) Class {
	fare := passenger.FareType(p)
	switch {
	case passenger.IsUnaccompaniedMinor(p) || fare == passenger.FareChild:
		return ClassChild
	case passenger.HasSSR(p, "INFT") || (infantOnSeat && fare != passenger.FareInfant):
		return ClassAdultWithInfant
	case fare == passenger.FareInfant:
		return ClassInfant
	}
	return ClassAdult
}

func icons(p models.PassengerRecord) []Icon {
	var out []Icon
	var wheelchair, special bool
	for _, s := range passenger.SSRs(p) {
		switch {
		case wheelchairCodes[s.Code]:
			wheelchair = true
		case specialCodes[s.Code]:
			special = true
		}
	}
	if wheelchair {
		out = append(out, IconWheelchair)
	}
	if special {
		out = append(out, IconSpecial)
	}
	return out
}

// Seat returns the cell for a seat code in any accepted spelling
func (m *SeatMap) Seat(code string) (Seat, bool) {
	s, ok := m.index[passenger.NormalizeSeat(code)]
	if !ok {
		return Seat{}, false
	}
	return *s, true
}

// Select returns the display attributes of the passenger in a seat.
// It returns false for unknown or empty seats.
func (m *SeatMap) Select(code string) (passenger.Details, bool) {
	s, ok := m.Seat(code)
	if !ok || s.Passenger == nil {
		return passenger.Details{}, false
	}
	return passenger.Describe(s.Passenger, m.ref), true
}
