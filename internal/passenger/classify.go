package passenger

import (
	"strings"

	"flight_gantt/internal/models"
)

// State is a passenger lifecycle state. Later states compare greater.
type State int

const (
	Booked State = iota
	Checked
	Boarded
	Flown
)

func (s State) String() string {
	switch s {
	case Checked:
		return "CHECKED"
	case Boarded:
		return "BOARDED"
	case Flown:
		return "FLOWN"
	default:
		return "BOOKED"
	}
}

// Classify returns the furthest state a passenger has reached.
// Flags win over status text and FLOWN is checked first because flown
// passengers often still carry a boarded flag.
func Classify(rec models.PassengerRecord) State {
	status := strings.ToUpper(String(rec, FieldStatus))

	if Bool(rec, FieldFlown) || isFlownText(status) {
		return Flown
	}
	if Bool(rec, FieldBoarded) {
		return Boarded
	}
	if Bool(rec, FieldCheckedIn) {
		return Checked
	}
	if status == "" {
		return Booked
	}

	switch {
	case isFlownText(status):
		return Flown
	case strings.Contains(status, "BOARD"):
		return Boarded
	case strings.Contains(status, "CHECK"):
		return Checked
	}

	switch status {
	case "CI", "CKIN", "CKI":
		return Checked
	case "BD", "BRD":
		return Boarded
	}
	return Booked
}

func isFlownText(status string) bool {
	return strings.Contains(status, "FLOWN") || status == "FLWN"
}

// Counts tallies passengers by state
type Counts struct {
	Booked  int
	Checked int
	Boarded int
	Flown   int
}

// Total returns the number of passengers counted
func (c Counts) Total() int {
	return c.Booked + c.Checked + c.Boarded + c.Flown
}

// Tally classifies every record
func Tally(recs []models.PassengerRecord) Counts {
	var c Counts
	for _, r := range recs {
		switch Classify(r) {
		case Flown:
			c.Flown++
		case Boarded:
			c.Boarded++
		case Checked:
			c.Checked++
		default:
			c.Booked++
		}
	}
	return c
}
