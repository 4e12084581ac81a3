package flight

import (
	"math"
	"strconv"
	"strings"
	"time"

	"flight_gantt/internal/models"
)

// DefaultBlockMinutes is used when a record carries no usable block time
const DefaultBlockMinutes = 60

// Times holds the instants picked for one flight record
type Times struct {
	DisplayStart   *time.Time
	DisplayEnd     *time.Time
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
}

// ResolveTimes picks the display endpoints using actual, then estimated, then
// scheduled for each end independently. A missing end is synthesized from the
// start plus the block time.
func ResolveTimes(rec *models.FlightRecord) Times {
	t := Times{
		DisplayStart:   firstOf(rec.ActualDeparture, rec.EstimatedDeparture, rec.ScheduledDeparture),
		DisplayEnd:     firstOf(rec.ActualArrival, rec.EstimatedArrival, rec.ScheduledArrival),
		ScheduledStart: rec.ScheduledDeparture,
		ScheduledEnd:   rec.ScheduledArrival,
	}

	if t.DisplayEnd == nil && t.DisplayStart != nil {
		end := t.DisplayStart.Add(time.Duration(ParseBlockMinutes(rec.BlockMinutes)) * time.Minute)
		t.DisplayEnd = &end
	}

	return t
}

// Usable reports whether both display endpoints resolved
func (t Times) Usable() bool {
	return t.DisplayStart != nil && t.DisplayEnd != nil
}

func firstOf(candidates ...*time.Time) *time.Time {
	for _, c := range candidates {
		if c != nil && !c.IsZero() {
			v := *c
			return &v
		}
	}
	return nil
}

// Resolve builds the display entity for one record. The second return value is
// false when the record has no usable endpoints and must be left out.
func Resolve(index int, rec *models.FlightRecord) (*models.ResolvedFlight, bool) {
	times := ResolveTimes(rec)
	if !times.Usable() {
		return nil, false
	}

	designator, number := ParseDesignator(rec.Designator, rec.FlightNumber)

	return &models.ResolvedFlight{
		Index:            index,
		RecordID:         rec.ID,
		FlightDate:       rec.FlightDate,
		Registration:     strings.ToUpper(strings.TrimSpace(rec.Registration)),
		DepartureStation: strings.ToUpper(strings.TrimSpace(rec.DepartureStation)),
		ArrivalStation:   strings.ToUpper(strings.TrimSpace(rec.ArrivalStation)),
		AircraftType:     strings.TrimSpace(rec.AircraftType),
		DisplayStart:     *times.DisplayStart,
		DisplayEnd:       *times.DisplayEnd,
		ScheduledStart:   times.ScheduledStart,
		ScheduledEnd:     times.ScheduledEnd,
		ActualDeparture:  rec.ActualDeparture,
		ActualArrival:    rec.ActualArrival,
		Status:           NormalizeStatus(rec.Status),
		RawStatus:        rec.Status,
		Designator:       designator,
		FlightNumber:     number,
		BlockMinutes:     ParseBlockMinutes(rec.BlockMinutes),
		Pax: models.PaxTotals{
			Adults:   ParseCount(rec.PaxAdults),
			Children: ParseCount(rec.PaxChildren),
			Infants:  ParseCount(rec.PaxInfants),
		},
		BagWeightKg: ParseWeight(rec.BagWeight),
		Passengers:  rec.Passengers,
		Delays:      rec.Delays,
		RosterID:    strings.TrimSpace(rec.RosterID),
		PlanID:      strings.TrimSpace(rec.PlanID),
	}, true
}

// ResolveAll resolves a day's records, assigning indexes in input order to the
// flights that survive. It returns the number of dropped records as well.
func ResolveAll(recs []models.FlightRecord) ([]*models.ResolvedFlight, int) {
	flights := make([]*models.ResolvedFlight, 0, len(recs))
	dropped := 0
	for i := range recs {
		f, ok := Resolve(len(flights), &recs[i])
		if !ok {
			dropped++
			continue
		}
		flights = append(flights, f)
	}
	return flights, dropped
}

// ParseBlockMinutes parses a block duration, falling back to DefaultBlockMinutes
// for empty, malformed, non-finite or sub-minute input
func ParseBlockMinutes(raw string) int {
	n, ok := parseNumber(raw)
	if !ok || n < 1 {
		return DefaultBlockMinutes
	}
	return int(n)
}

// ParseCount parses a passenger count, falling back to zero
func ParseCount(raw string) int {
	n, ok := parseNumber(raw)
	if !ok || n < 0 {
		return 0
	}
	return int(n)
}

// ParseWeight parses a weight in kilograms, falling back to zero
func ParseWeight(raw string) float64 {
	n, ok := parseNumber(raw)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// maxNumber bounds parsed values so every accepted number converts to int safely
const maxNumber = math.MaxInt32

func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n > maxNumber {
		return 0, false
	}
	return n, true
}
