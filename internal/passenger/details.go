package passenger

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"flight_gantt/internal/models"
)

// Fare type codes after normalization
const (
	FareAdult  = "AD"
	FareChild  = "CHD"
	FareInfant = "INF"
)

// Details is what the manifest and seat map show for one passenger
type Details struct {
	Name               string
	DateOfBirth        string // YYYY-MM-DD, "" when unknown
	Age                int    // -1 when unknown
	BookingRef         string
	Seat               string
	FareType           string
	SSRText            string
	UnaccompaniedMinor bool
	State              State
}

// Describe derives the display attributes of a passenger. ref is the date ages are computed at.
func Describe(rec models.PassengerRecord, ref time.Time) Details {
	d := Details{
		Name:               Name(rec),
		Age:                -1,
		BookingRef:         strings.ToUpper(String(rec, FieldBookingRef)),
		Seat:               Seat(rec),
		FareType:           FareType(rec),
		SSRText:            SSRText(SSRs(rec)),
		UnaccompaniedMinor: IsUnaccompaniedMinor(rec),
		State:              Classify(rec),
	}
	if dob, ok := BirthDate(rec); ok {
		d.DateOfBirth = dob.Format("2006-01-02")
		d.Age = Age(dob, ref)
	}
	return d
}

// Name returns the full name field, or title, given name and surname joined
func Name(rec models.PassengerRecord) string {
	if full := String(rec, FieldFullName); full != "" {
		return full
	}
	parts := make([]string, 0, 3)
	for _, f := range []Field{FieldTitle, FieldFirstName, FieldLastName} {
		if s := String(rec, f); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

var birthDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// BirthDate parses the date of birth field
func BirthDate(rec models.PassengerRecord) (time.Time, bool) {
	raw := String(rec, FieldBirthDate)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return dateOnly(t), true
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Age returns completed years between dob and ref
func Age(dob, ref time.Time) int {
	years := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

var seatPattern = regexp.MustCompile(`^(\d+)([A-Z]+)$`)

// NormalizeSeat cleans a seat code: "02b " becomes "2B", "10-A" becomes "10A".
// Unparseable input returns "".
func NormalizeSeat(raw string) string {
	row, col, ok := ParseSeat(raw)
	if !ok {
		return ""
	}
	return strconv.Itoa(row) + col
}

// ParseSeat splits a seat code into row number and column letters
func ParseSeat(raw string) (int, string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "", "/", "", " ", "").Replace(s)
	m := seatPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return row, m[2], true
}

// Seat returns the passenger's normalized seat code
func Seat(rec models.PassengerRecord) string {
	return NormalizeSeat(String(rec, FieldSeat))
}

// SeatLess orders seat codes by row then column, unseated last
func SeatLess(a, b string) bool {
	ra, ca, oka := ParseSeat(a)
	rb, cb, okb := ParseSeat(b)
	switch {
	case !oka && !okb:
		return false
	case !oka:
		return false
	case !okb:
		return true
	case ra != rb:
		return ra < rb
	}
	return ca < cb
}

// FareType returns AD, CHD or INF; anything unrecognised counts as adult
func FareType(rec models.PassengerRecord) string {
	switch strings.ToUpper(String(rec, FieldFareType)) {
	case "CHD", "CH", "CHILD", "C", "UM", "UMNR":
		return FareChild
	case "INF", "INFANT", "IN":
		return FareInfant
	}
	return FareAdult
}

// IsUnaccompaniedMinor reports the UMNR flag or special service code
func IsUnaccompaniedMinor(rec models.PassengerRecord) bool {
	return Bool(rec, FieldUMNR) || HasSSR(rec, "UMNR")
}
