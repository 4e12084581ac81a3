package passenger

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"flight_gantt/internal/models"
)

// Field is a logical passenger attribute and the keys it may appear under,
// in order of preference
type Field struct {
	Name    string
	Aliases []string
}

var (
	FieldTitle      = Field{"title", []string{"Title", "NameTitle"}}
	FieldFirstName  = Field{"first_name", []string{"FirstName", "GivenName", "Firstname", "first_name", "given_name"}}
	FieldLastName   = Field{"last_name", []string{"LastName", "Surname", "FamilyName", "last_name"}}
	FieldFullName   = Field{"full_name", []string{"FullName", "PassengerName", "Name", "full_name"}}
	FieldBirthDate  = Field{"date_of_birth", []string{"DateOfBirth", "BirthDate", "DOB", "date_of_birth"}}
	FieldSeat       = Field{"seat", []string{"Seat", "SeatNumber", "SeatNo", "seat_number"}}
	FieldBookingRef = Field{"booking_ref", []string{"BookingReference", "PNR", "RecordLocator", "booking_ref"}}
	FieldStatus     = Field{"status", []string{"Status", "DcsStatus", "PassengerStatus", "dcs_status"}}
	FieldFlown      = Field{"flown", []string{"Flown", "IsFlown", "is_flown"}}
	FieldBoarded    = Field{"boarded", []string{"Boarded", "IsBoarded", "is_boarded"}}
	FieldCheckedIn  = Field{"checked_in", []string{"CheckedIn", "IsCheckedIn", "checked_in", "is_checked_in"}}
	FieldFareType   = Field{"fare_type", []string{"PassengerType", "PaxType", "FareType", "passenger_type", "pax_type"}}
	FieldSSRs       = Field{"ssrs", []string{"Ssrs", "SSRs", "SpecialServices", "ssr"}}
	FieldUMNR       = Field{"umnr", []string{"IsUnaccompaniedMinor", "Unaccompanied", "UMNR"}}
	FieldBagWeight  = Field{"bag_weight", []string{"BaggageWeight", "BagWeight", "baggage_weight"}}
)

// Lookup returns the first non-empty value among the field's aliases.
// Exact key matches are tried before case-insensitive ones; keys differing
// only in case are tried in sorted order.
func Lookup(rec models.PassengerRecord, f Field) (any, bool) {
	if rec == nil {
		return nil, false
	}
	for _, alias := range f.Aliases {
		if v, ok := rec[alias]; ok && !blank(v) {
			return v, true
		}
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, alias := range f.Aliases {
		for _, k := range keys {
			if v := rec[k]; strings.EqualFold(k, alias) && !blank(v) {
				return v, true
			}
		}
	}
	return nil, false
}

// String returns the field as trimmed text, or ""
func String(rec models.PassengerRecord, f Field) string {
	v, ok := Lookup(rec, f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text(v))
}

// Bool returns the field as a flag, false when absent or unparseable
func Bool(rec models.PassengerRecord, f Field) bool {
	v, ok := Lookup(rec, f)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int:
		return b != 0
	case int64:
		return b != 0
	case json.Number:
		n, err := b.Float64()
		return err == nil && n != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}

// Float returns the field as a number, 0 when absent, unparseable or not finite
func Float(rec models.PassengerRecord, f Field) float64 {
	v, ok := Lookup(rec, f)
	if !ok {
		return 0
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(text(v)), 64)
		if err != nil {
			return 0
		}
		n = parsed
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func blank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	}
	return false
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	}
	return ""
}
