package flight

import (
	"testing"
	"time"

	"flight_gantt/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-10-14 "+hhmm)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestResolveTimes_ScheduledOnly(t *testing.T) {
	rec := &models.FlightRecord{
		ScheduledDeparture: at("08:00"),
		ScheduledArrival:   at("09:30"),
	}

	times := ResolveTimes(rec)
	require.True(t, times.Usable())
	assert.Equal(t, *rec.ScheduledDeparture, *times.DisplayStart)
	assert.Equal(t, *rec.ScheduledArrival, *times.DisplayEnd)
	assert.Equal(t, rec.ScheduledDeparture, times.ScheduledStart)
	assert.Equal(t, rec.ScheduledArrival, times.ScheduledEnd)
}

func TestResolveTimes_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		rec       models.FlightRecord
		wantStart string
		wantEnd   string
	}{
		{
			name: "actual beats estimated and scheduled",
			rec: models.FlightRecord{
				ScheduledDeparture: at("08:00"), EstimatedDeparture: at("08:10"), ActualDeparture: at("08:12"),
				ScheduledArrival: at("09:00"), EstimatedArrival: at("09:05"), ActualArrival: at("09:07"),
			},
			wantStart: "08:12",
			wantEnd:   "09:07",
		},
		{
			name: "estimated beats scheduled",
			rec: models.FlightRecord{
				ScheduledDeparture: at("08:00"), EstimatedDeparture: at("08:10"),
				ScheduledArrival: at("09:00"), EstimatedArrival: at("09:05"),
			},
			wantStart: "08:10",
			wantEnd:   "09:05",
		},
		{
			name: "endpoints resolve independently",
			rec: models.FlightRecord{
				ActualDeparture:  at("08:02"),
				ScheduledArrival: at("09:00"),
			},
			wantStart: "08:02",
			wantEnd:   "09:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := ResolveTimes(&tt.rec)
			require.True(t, times.Usable())
			assert.Equal(t, tt.wantStart, times.DisplayStart.Format("15:04"))
			assert.Equal(t, tt.wantEnd, times.DisplayEnd.Format("15:04"))
		})
	}
}

func TestResolveTimes_SynthesizedEnd(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  time.Duration
	}{
		{"valid block time", "45", 45 * time.Minute},
		{"empty block time", "", 60 * time.Minute},
		{"malformed block time", "abc", 60 * time.Minute},
		{"zero block time", "0", 60 * time.Minute},
		{"negative block time", "-5", 60 * time.Minute},
		{"not a number", "NaN", 60 * time.Minute},
		{"infinite", "Inf", 60 * time.Minute},
		{"out of range", "1e30", 60 * time.Minute},
		{"under a minute", "0.5", 60 * time.Minute},
		{"fractional minutes", "45.9", 45 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.FlightRecord{ActualDeparture: at("10:00"), BlockMinutes: tt.block}
			times := ResolveTimes(rec)
			require.True(t, times.Usable())
			assert.Equal(t, tt.want, times.DisplayEnd.Sub(*times.DisplayStart))
		})
	}
}

func TestResolve_DropsUnusable(t *testing.T) {
	recs := []models.FlightRecord{
		{ID: "a", ScheduledDeparture: at("08:00"), ScheduledArrival: at("09:00")},
		{ID: "b"},
		{ID: "c", ScheduledArrival: at("11:00")},
		{ID: "d", EstimatedDeparture: at("12:00")},
	}

	flights, dropped := ResolveAll(recs)
	require.Len(t, flights, 2)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, "a", flights[0].RecordID)
	assert.Equal(t, 0, flights[0].Index)
	assert.Equal(t, "d", flights[1].RecordID)
	assert.Equal(t, 1, flights[1].Index)
}

func TestResolve_Fields(t *testing.T) {
	rec := &models.FlightRecord{
		ID:                 "42",
		Registration:       " zk-cib ",
		DepartureStation:   "akl",
		ArrivalStation:     "CHT",
		ScheduledDeparture: at("08:00"),
		ScheduledArrival:   at("10:00"),
		Designator:         "3C 701",
		Status:             "Aircraft Landed",
		PaxAdults:          "20",
		PaxChildren:        "x",
		PaxInfants:         "1",
		BagWeight:          "312.5",
		RosterID:           "9001",
	}

	f, ok := Resolve(3, rec)
	require.True(t, ok)
	assert.Equal(t, 3, f.Index)
	assert.Equal(t, "ZK-CIB", f.Registration)
	assert.Equal(t, "AKL", f.DepartureStation)
	assert.Equal(t, "3C", f.Designator)
	assert.Equal(t, "701", f.FlightNumber)
	assert.Equal(t, "3C701", f.Callsign())
	assert.Equal(t, models.StatusLanded, f.Status)
	assert.Equal(t, models.PaxTotals{Adults: 20, Children: 0, Infants: 1}, f.Pax)
	assert.Equal(t, 21, f.Pax.Total())
	assert.InDelta(t, 312.5, f.BagWeightKg, 0.001)
	assert.Equal(t, 2*time.Hour, f.Duration())
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 0, ParseCount(""))
	assert.Equal(t, 0, ParseCount("n/a"))
	assert.Equal(t, 0, ParseCount("-3"))
	assert.Equal(t, 12, ParseCount(" 12 "))
	assert.Equal(t, 7, ParseCount("7.0"))
	assert.Equal(t, 0, ParseCount("NaN"))
	assert.Equal(t, 0, ParseCount("Inf"))
	assert.Equal(t, 0, ParseCount("-Inf"))
	assert.Equal(t, 0, ParseCount("1e30"))
}

func TestParseWeight_NonFinite(t *testing.T) {
	assert.Equal(t, 0.0, ParseWeight("NaN"))
	assert.Equal(t, 0.0, ParseWeight("Inf"))
	assert.Equal(t, 12.5, ParseWeight("12.5"))
}

func TestResolve_MalformedCountsStayZero(t *testing.T) {
	rec := models.FlightRecord{
		ScheduledDeparture: at("08:00"), ScheduledArrival: at("09:00"),
		PaxAdults: "NaN", PaxChildren: "2", PaxInfants: "1e30",
	}
	f, ok := Resolve(0, &rec)
	require.True(t, ok)
	assert.Equal(t, models.PaxTotals{Children: 2}, f.Pax)
	assert.Equal(t, 2, f.Pax.Total())
}

func TestParseDesignator(t *testing.T) {
	tests := []struct {
		designator, number string
		wantD, wantN       string
	}{
		{"3C", "701", "3C", "701"},
		{"3C701", "", "3C", "701"},
		{"3c 702", "", "3C", "702"},
		{"CVA701", "", "CVA", "701"},
		{"NZ5123", "", "NZ", "5123"},
		{"CHARTER", "", "CHARTER", ""},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.designator+"/"+tt.number, func(t *testing.T) {
			d, n := ParseDesignator(tt.designator, tt.number)
			assert.Equal(t, tt.wantD, d)
			assert.Equal(t, tt.wantN, n)
		})
	}
}
