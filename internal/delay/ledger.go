package delay

import (
	"math"
	"time"

	"flight_gantt/internal/models"
)

// RequirementThreshold is the deviation in minutes above which delay codes must be allocated.
// It applies to every route and aircraft type.
const RequirementThreshold = 15

// Requirement compares the deviation measured from timestamps with the minutes
// accounted for by delay rows. It is informational; saving is never blocked on it.
type Requirement struct {
	Leg       models.Leg
	Required  int
	Allocated int
}

// NeedsCodes reports whether the deviation is large enough to require codes
func (r Requirement) NeedsCodes() bool {
	return r.Required > RequirementThreshold
}

// Shortfall returns the required minutes not yet allocated, 0 when none are required
func (r Requirement) Shortfall() int {
	if !r.NeedsCodes() || r.Allocated >= r.Required {
		return 0
	}
	return r.Required - r.Allocated
}

// Balanced reports whether the allocation covers the requirement
func (r Requirement) Balanced() bool {
	return r.Shortfall() == 0
}

// DepartureRequired is the late off-blocks time in minutes; early departures count as zero
func DepartureRequired(scheduled, offBlocks time.Time) int {
	m := minutesBetween(scheduled, offBlocks)
	if m < 0 {
		return 0
	}
	return m
}

// ArrivalRequired is the absolute ETA deviation in minutes, early or late
func ArrivalRequired(scheduled, eta time.Time) int {
	m := minutesBetween(scheduled, eta)
	if m < 0 {
		return -m
	}
	return m
}

func minutesBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Minutes()))
}

// Allocated sums the minutes of delay entries
func Allocated(entries []models.DelayEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Minutes
	}
	return total
}

// Reconcile builds the requirement for one leg
func Reconcile(leg models.Leg, required int, entries []models.DelayEntry) Requirement {
	return Requirement{Leg: leg, Required: required, Allocated: Allocated(entries)}
}
