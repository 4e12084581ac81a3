package models

// Aircraft represents one airframe in the fleet registry.
// Fields correspond to columns in the fleet CSV file.
type Aircraft struct {
	Registration string `csv:"registration"` // e.g. ZK-CIB
	TypeCode     string `csv:"typecode"`     // ICAO type designator, e.g. AT72
	Model        string `csv:"model"`
	Operator     string `csv:"operator"`
	SeatConfig   string `csv:"seat_config,omitempty"` // optional topology override
}
