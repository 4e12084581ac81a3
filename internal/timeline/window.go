package timeline

import (
	"time"

	"flight_gantt/internal/models"
)

// Margin pads the window on each side of the outermost flights
const Margin = 60 * time.Minute

// Window is the visible time range shared by every lane
type Window struct {
	Start time.Time
	End   time.Time
}

// Tick is an hourly axis mark
type Tick struct {
	At       time.Time
	Position float64 // fraction of the window width, 0..1
}

// Label returns the clock text shown under the tick
func (t Tick) Label() string {
	return t.At.Format("15:04")
}

// NewWindow computes the padded window for a set of flights.
// It returns false for an empty set.
func NewWindow(flights []*models.ResolvedFlight) (Window, bool) {
	if len(flights) == 0 {
		return Window{}, false
	}

	start, end := flights[0].DisplayStart, flights[0].DisplayEnd
	for _, f := range flights[1:] {
		if f.DisplayStart.Before(start) {
			start = f.DisplayStart
		}
		if f.DisplayEnd.After(end) {
			end = f.DisplayEnd
		}
	}

	return Window{Start: start.Add(-Margin), End: end.Add(Margin)}, true
}

// Duration returns the window length
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Position maps an instant to a fraction of the window width.
// Instants outside the window map outside 0..1.
func (w Window) Position(t time.Time) float64 {
	d := w.Duration()
	if d <= 0 {
		return 0
	}
	return float64(t.Sub(w.Start)) / float64(d)
}

// Ticks returns a tick at every whole hour inside the window, ends included
func (w Window) Ticks() []Tick {
	if w.Duration() <= 0 {
		return nil
	}

	s := w.Start
	h := time.Date(s.Year(), s.Month(), s.Day(), s.Hour(), 0, 0, 0, s.Location())
	if h.Before(s) {
		h = h.Add(time.Hour)
	}

	var ticks []Tick
	for ; !h.After(w.End); h = h.Add(time.Hour) {
		ticks = append(ticks, Tick{At: h, Position: w.Position(h)})
	}
	return ticks
}
