package manifest

import (
	"sort"
	"time"

	"flight_gantt/internal/models"
	"flight_gantt/internal/passenger"
)

// Row is one passenger line of a manifest
type Row struct {
	Seat               string
	Name               string
	FareType           string
	Age                int // -1 when unknown
	State              passenger.State
	BookingRef         string
	SSRText            string
	UnaccompaniedMinor bool
	WeightKg           float64
	BagKg              float64
}

// Manifest is the passenger list of one flight in seat order
type Manifest struct {
	Flight       string
	Date         string
	Registration string
	Departure    string
	Arrival      string
	Rows         []Row

	Counts        passenger.Counts
	Fares         models.PaxTotals
	TotalWeightKg float64
	TotalBagKg    float64
}

// Build derives the manifest of a flight. ref is the date ages are computed at.
func Build(f *models.ResolvedFlight, ref time.Time) *Manifest {
	m := &Manifest{
		Flight:       f.Callsign(),
		Date:         f.FlightDate,
		Registration: f.Registration,
		Departure:    f.DepartureStation,
		Arrival:      f.ArrivalStation,
		Rows:         make([]Row, 0, len(f.Passengers)),
	}

	for _, p := range f.Passengers {
		d := passenger.Describe(p, ref)
		row := Row{
			Seat:               d.Seat,
			Name:               d.Name,
			FareType:           d.FareType,
			Age:                d.Age,
			State:              d.State,
			BookingRef:         d.BookingRef,
			SSRText:            d.SSRText,
			UnaccompaniedMinor: d.UnaccompaniedMinor,
			WeightKg:           passenger.StandardWeightKg(d.FareType),
			BagKg:              passenger.Float(p, passenger.FieldBagWeight),
		}
		m.Rows = append(m.Rows, row)

		switch row.FareType {
		case passenger.FareChild:
			m.Fares.Children++
		case passenger.FareInfant:
			m.Fares.Infants++
		default:
			m.Fares.Adults++
		}
		m.TotalWeightKg += row.WeightKg
		m.TotalBagKg += row.BagKg
	}
	m.Counts = passenger.Tally(f.Passengers)

	sort.SliceStable(m.Rows, func(i, j int) bool {
		a, b := m.Rows[i], m.Rows[j]
		if a.Seat == b.Seat {
			return a.Name < b.Name
		}
		return passenger.SeatLess(a.Seat, b.Seat)
	})
	return m
}
