package timeline

import (
	"sort"
	"strings"
	"time"

	"flight_gantt/internal/models"
	"flight_gantt/internal/stations"
)

// MinSpanWidth keeps short legs visible. It only affects the drawn bar.
const MinSpanWidth = 0.02

// Bar is a horizontal extent as fractions of the window width
type Bar struct {
	Left  float64
	Width float64
}

// Span places one flight on its lane
type Span struct {
	Flight    *models.ResolvedFlight
	Bar       Bar
	Scheduled *Bar // thin reference bar, nil without a scheduled pair
}

// Lane is the row for one aircraft registration
type Lane struct {
	Registration string
	Spans        []Span
}

// Timeline is the built chart model
type Timeline struct {
	Window Window
	Ticks  []Tick
	Lanes  []Lane
}

// Options controls which lanes are emitted
type Options struct {
	// StationFilter keeps lanes with at least one flight touching this station
	StationFilter string
	// Stations resolves IATA/ICAO equivalence for the filter; nil uses the built-in table
	Stations *stations.Table
}

// Build computes the window, the hourly axis and the lane layout.
// The window always covers every flight; the station filter only drops lanes.
func Build(flights []*models.ResolvedFlight, opts Options) *Timeline {
	tl := &Timeline{}
	w, ok := NewWindow(flights)
	if !ok {
		return tl
	}
	tl.Window = w
	tl.Ticks = w.Ticks()

	table := opts.Stations
	if table == nil {
		table = stations.Default()
	}
	filter := strings.TrimSpace(opts.StationFilter)

	for _, group := range groupByRegistration(flights) {
		if filter != "" && !laneTouches(group, filter, table) {
			continue
		}
		lane := Lane{Registration: group[0].Registration, Spans: make([]Span, 0, len(group))}
		for _, f := range group {
			lane.Spans = append(lane.Spans, place(w, f))
		}
		tl.Lanes = append(tl.Lanes, lane)
	}

	return tl
}

// Lane returns the lane for a registration
func (t *Timeline) Lane(registration string) (Lane, bool) {
	for _, l := range t.Lanes {
		if l.Registration == registration {
			return l, true
		}
	}
	return Lane{}, false
}

// Empty reports whether there is anything to draw
func (t *Timeline) Empty() bool {
	return len(t.Lanes) == 0
}

// groupByRegistration returns lanes ordered by their earliest departure, each
// sorted by display start
func groupByRegistration(flights []*models.ResolvedFlight) [][]*models.ResolvedFlight {
	byReg := make(map[string][]*models.ResolvedFlight)
	for _, f := range flights {
		byReg[f.Registration] = append(byReg[f.Registration], f)
	}

	groups := make([][]*models.ResolvedFlight, 0, len(byReg))
	for _, g := range byReg {
		sort.SliceStable(g, func(i, j int) bool {
			if g[i].DisplayStart.Equal(g[j].DisplayStart) {
				return g[i].Index < g[j].Index
			}
			return g[i].DisplayStart.Before(g[j].DisplayStart)
		})
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i][0], groups[j][0]
		if a.DisplayStart.Equal(b.DisplayStart) {
			return a.Registration < b.Registration
		}
		return a.DisplayStart.Before(b.DisplayStart)
	})
	return groups
}

func laneTouches(group []*models.ResolvedFlight, filter string, table *stations.Table) bool {
	for _, f := range group {
		if table.Equivalent(f.DepartureStation, filter) || table.Equivalent(f.ArrivalStation, filter) {
			return true
		}
	}
	return false
}

func place(w Window, f *models.ResolvedFlight) Span {
	span := Span{Flight: f, Bar: bar(w, f.DisplayStart.Sub(w.Start), f.Duration())}
	if f.ScheduledStart != nil && f.ScheduledEnd != nil {
		sb := bar(w, f.ScheduledStart.Sub(w.Start), f.ScheduledEnd.Sub(*f.ScheduledStart))
		span.Scheduled = &sb
	}
	return span
}

func bar(w Window, offset, length time.Duration) Bar {
	total := float64(w.Duration())
	b := Bar{
		Left:  float64(offset) / total,
		Width: float64(length) / total,
	}
	if b.Width < MinSpanWidth {
		b.Width = MinSpanWidth
	}
	return b
}
