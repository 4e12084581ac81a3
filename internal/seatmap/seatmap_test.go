package seatmap

import (
	"testing"
	"time"

	"flight_gantt/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

type mockFleet struct {
	aircraft map[string]models.Aircraft
}

func (m *mockFleet) Lookup(reg string) (models.Aircraft, bool) {
	ac, ok := m.aircraft[reg]
	return ac, ok
}

func TestTopology_Layouts(t *testing.T) {
	d := NewDeriver(nil)

	tests := []struct {
		name     string
		capacity int
	}{
		{"AT72", 68},
		{"AT72-66", 66},
		{"SF34", 34},
		{"CV58", 53},
		{"SW4", 19},
		{"C208", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, ok := d.Topology(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.capacity, topo.Capacity())
		})
	}
}

func TestTopology_IrregularRows(t *testing.T) {
	d := NewDeriver(nil)

	c208, _ := d.Topology("C208")
	sm := Overlay(c208, nil, refDate)
	require.Len(t, sm.Rows, 4)
	require.Len(t, sm.Rows[0].Seats, 1)
	assert.Equal(t, "1A", sm.Rows[0].Seats[0].Code)
	assert.Len(t, sm.Rows[1].Seats, 3)

	sw4, _ := d.Topology("SW4")
	sm = Overlay(sw4, nil, refDate)
	last := sm.Rows[len(sm.Rows)-1]
	require.Len(t, last.Seats, 3)
	assert.Equal(t, []string{"9A", "9C", "9B"}, []string{last.Seats[0].Code, last.Seats[1].Code, last.Seats[2].Code})
	assert.Equal(t, SideAisle, last.Seats[1].Side)

	sf34, _ := d.Topology("SF34")
	sm = Overlay(sf34, nil, refDate)
	last = sm.Rows[len(sm.Rows)-1]
	require.Len(t, last.Seats, 1)
	assert.Equal(t, "12A", last.Seats[0].Code)

	skip := Topology{Name: "X", FirstRow: 11, LastRow: 14, SkipRows: []int{13}, Left: []string{"A"}, Right: []string{"B"}}
	assert.Equal(t, []int{11, 12, 14}, skip.Rows())
}

func TestSelect(t *testing.T) {
	fleet := &mockFleet{aircraft: map[string]models.Aircraft{
		"ZK-CIY": {Registration: "ZK-CIY", TypeCode: "SF34"},
		"ZK-CIQ": {Registration: "ZK-CIQ", TypeCode: "AT72", SeatConfig: "at72-66"},
	}}
	d := NewDeriver(fleet)

	tests := []struct {
		name string
		typ  string
		reg  string
		want string
		ok   bool
	}{
		{"type rule", "ATR 72-500", "ZK-MCA", "AT72", true},
		{"tail override beats type", "ATR 72-500", "ZK-MCF", "AT72-66", true},
		{"tail override without dash", "", "zkmcf", "AT72-66", true},
		{"turboprop type", "SAAB 340B", "ZK-KKK", "SF34", true},
		{"registration fragment", "", "ZK-CIB", "CV58", true},
		{"fleet type when row has none", "", "ZK-CIY", "SF34", true},
		{"fleet seat config", "ATR72", "ZK-CIQ", "AT72-66", true},
		{"no match", "B737", "ZK-ABC", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, ok := d.Select(tt.typ, tt.reg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, topo.Name)
		})
	}
}

func TestDerive_NotAvailable(t *testing.T) {
	d := NewDeriver(nil)
	sm, ok := d.Derive(&models.ResolvedFlight{AircraftType: "DHC8", Registration: "ZK-NEA"}, refDate)
	assert.False(t, ok)
	assert.Nil(t, sm)
}

func TestDerive_Occupancy(t *testing.T) {
	d := NewDeriver(nil)
	f := &models.ResolvedFlight{
		AircraftType: "SW4",
		Registration: "ZK-CIX",
		Passengers: []models.PassengerRecord{
			{"FirstName": "Ana", "LastName": "Adult", "Seat": "1a", "PassengerType": "AD"},
			{"FirstName": "Ben", "LastName": "Minor", "Seat": "1B", "PassengerType": "AD",
				"Ssrs": []any{map[string]any{"Code": "UMNR"}}},
			{"FirstName": "Cas", "LastName": "Child", "Seat": "2A", "PassengerType": "CHD"},
			{"FirstName": "Dee", "LastName": "Parent", "Seat": "2B", "Ssrs": []any{"INFT", "WCHR"}},
			{"FirstName": "Eli", "LastName": "Lap", "Seat": "3A", "PassengerType": "INF"},
			{"FirstName": "Fay", "LastName": "Carer", "Seat": "3A", "PassengerType": "AD", "SSRs": "BLND"},
			{"FirstName": "Gus", "LastName": "Nowhere", "Seat": "40F"},
			{"FirstName": "Hal", "LastName": "Unseated"},
		},
	}

	sm, ok := d.Derive(f, refDate)
	require.True(t, ok)
	assert.Equal(t, 5, sm.Occupied)
	require.Len(t, sm.Unplaced, 1)

	tests := []struct {
		code  string
		class Class
		icons []Icon
		umnr  bool
	}{
		{"1A", ClassAdult, nil, false},
		{"1B", ClassChild, nil, true},
		{"2A", ClassChild, nil, false},
		{"2B", ClassAdultWithInfant, []Icon{IconWheelchair}, false},
		{"3A", ClassAdultWithInfant, []Icon{IconSpecial}, false},
		{"3B", ClassEmpty, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s, ok := sm.Seat(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.class, s.Class)
			assert.Equal(t, tt.icons, s.Icons)
			assert.Equal(t, tt.umnr, s.UnaccompaniedMinor)
		})
	}
}

func TestOverlay_UnaccompaniedMinorBeatsAdultFare(t *testing.T) {
	topo := Topology{Name: "T", FirstRow: 1, LastRow: 1, Left: []string{"A"}, Right: []string{"B"}}
	pax := []models.PassengerRecord{
		{"Seat": "1A", "PassengerType": "ADT", "Ssrs": []any{"UMNR", "INFT"}},
		{"Seat": "1B", "PassengerType": "ADULT", "IsUnaccompaniedMinor": true},
	}

	sm := Overlay(topo, pax, refDate)
	a, _ := sm.Seat("1A")
	b, _ := sm.Seat("1B")
	assert.Equal(t, ClassChild, a.Class)
	assert.Equal(t, ClassChild, b.Class)
}

func TestOverlay_InfantAlone(t *testing.T) {
	topo := Topology{Name: "T", FirstRow: 1, LastRow: 1, Left: []string{"A"}}
	sm := Overlay(topo, []models.PassengerRecord{{"Seat": "1A", "PassengerType": "INF"}}, refDate)
	s, _ := sm.Seat("1A")
	assert.Equal(t, ClassInfant, s.Class)
}

func TestSeatMap_Select(t *testing.T) {
	topo := Topology{Name: "T", FirstRow: 1, LastRow: 2, Left: []string{"A"}, Right: []string{"B"}}
	pax := []models.PassengerRecord{{
		"Title": "MS", "FirstName": "Ria", "Surname": "Ngata",
		"DateOfBirth": "2015-01-20T00:00:00", "PNR": "q7x2lp", "SeatNumber": "02-B",
		"Ssrs": []any{map[string]any{"Code": "UMNR", "FreeText": "met by aunt"}},
	}}

	sm := Overlay(topo, pax, refDate)

	d, ok := sm.Select("2b")
	require.True(t, ok)
	assert.Equal(t, "MS Ria Ngata", d.Name)
	assert.Equal(t, "2015-01-20", d.DateOfBirth)
	assert.Equal(t, 11, d.Age)
	assert.Equal(t, "Q7X2LP", d.BookingRef)
	assert.Equal(t, "UMNR (met by aunt)", d.SSRText)
	assert.True(t, d.UnaccompaniedMinor)

	_, ok = sm.Select("1A")
	assert.False(t, ok)
	_, ok = sm.Select("9Z")
	assert.False(t, ok)
}
