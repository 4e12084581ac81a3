package timeedit

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"flight_gantt/internal/delay"
	"flight_gantt/internal/models"
	"flight_gantt/internal/roster"
)

// Mode selects which end of the flight is being edited
type Mode string

const (
	ModeDeparture Mode = "departure"
	ModeArrival   Mode = "arrival"
)

func (m Mode) leg() models.Leg {
	if m == ModeArrival {
		return models.LegArrival
	}
	return models.LegDeparture
}

var (
	ErrNoFlight    = errors.New("no flight selected")
	ErrUnknownMode = errors.New("unknown time edit mode")
	ErrNoSession   = errors.New("time edit session not found")
)

// Entry holds the clocks typed by the operator, "HH:MM" or "" when blank
type Entry struct {
	OffBlocks string
	Airborne  string
	Landing   string
	OnChocks  string
	ETA       string
}

// Session is the editing context of one flight, created when the operator
// selects it and discarded on dismissal.
type Session struct {
	ID     string
	Mode   Mode
	Flight *models.ResolvedFlight
	Opened time.Time

	date   time.Time
	loc    *time.Location
	codes  *delay.CodeTable
	entry  Entry
	delays []models.DelayEntry
}

func newSession(f *models.ResolvedFlight, mode Mode, codes *delay.CodeTable, loc *time.Location) (*Session, error) {
	if f == nil {
		return nil, ErrNoFlight
	}
	if mode != ModeDeparture && mode != ModeArrival {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if loc == nil {
		loc = time.Local
	}
	date, err := time.ParseInLocation("2006-01-02", f.FlightDate, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flight date %q: %w", f.FlightDate, err)
	}

	s := &Session{
		ID:     uuid.NewString(),
		Mode:   mode,
		Flight: f,
		Opened: time.Now(),
		date:   date,
		loc:    loc,
		codes:  codes,
	}
	for _, d := range f.Delays {
		if d.Leg == "" || d.Leg == mode.leg() {
			d.Leg = mode.leg()
			s.delays = append(s.delays, d)
		}
	}
	return s, nil
}

// Entry returns the clocks entered so far
func (s *Session) Entry() Entry {
	return s.entry
}

// Delays returns the accepted delay entries
func (s *Session) Delays() []models.DelayEntry {
	out := make([]models.DelayEntry, len(s.delays))
	copy(out, s.delays)
	return out
}

// Prefill copies roster times into blank fields; entered values are kept
func (s *Session) Prefill(t *roster.ActualTimes) {
	if t == nil {
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&s.entry.OffBlocks, t.DepartureActual)
	fill(&s.entry.Airborne, t.DepartureAirborne)
	fill(&s.entry.Landing, t.ArrivalLanded)
	fill(&s.entry.OnChocks, t.ArrivalActual)
}

// SetTimes replaces the entered clocks. Blank fields are allowed; a malformed
// clock rejects the whole entry and leaves the session unchanged.
func (s *Session) SetTimes(e Entry) error {
	fields := []struct {
		name string
		v    *string
	}{
		{"off blocks", &e.OffBlocks},
		{"airborne", &e.Airborne},
		{"landing", &e.Landing},
		{"on chocks", &e.OnChocks},
		{"ETA", &e.ETA},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(*f.v)
		if raw == "" {
			*f.v = ""
			continue
		}
		c, err := delay.ParseClock(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.v = c.String()
	}
	s.entry = e
	return nil
}

// SetDelays validates the rows as one batch. On error the accepted delays
// stay as they were.
func (s *Session) SetDelays(rows []delay.Row) error {
	if s.codes == nil {
		return errors.New("no delay code table")
	}
	batch := make([]delay.Row, len(rows))
	for i, r := range rows {
		r.Leg = s.Mode.leg()
		batch[i] = r
	}
	entries, err := s.codes.Validate(batch)
	if err != nil {
		return err
	}
	s.delays = entries
	return nil
}

// Instants resolves the entered clocks on the operating date
type Instants struct {
	OffBlocks *time.Time
	Airborne  *time.Time
	Landing   *time.Time
	OnChocks  *time.Time
	ETA       *time.Time
}

// Instants combines the entered clocks with the flight date, applying the
// midnight crossing rules for airborne and landing
func (s *Session) Instants() Instants {
	var out Instants
	clock := func(raw string) (delay.Clock, bool) {
		if raw == "" {
			return delay.Clock{}, false
		}
		c, err := delay.ParseClock(raw)
		return c, err == nil
	}
	at := func(t time.Time) *time.Time { return &t }

	off, hasOff := clock(s.entry.OffBlocks)
	air, hasAir := clock(s.entry.Airborne)
	switch {
	case hasOff && hasAir:
		o, a := delay.DepartureInstants(s.date, off, air, s.loc)
		out.OffBlocks, out.Airborne = at(o), at(a)
	case hasOff:
		out.OffBlocks = at(off.On(s.date, s.loc))
	case hasAir:
		out.Airborne = at(air.On(s.date, s.loc))
	}

	land, hasLand := clock(s.entry.Landing)
	chocks, hasChocks := clock(s.entry.OnChocks)
	switch {
	case hasLand && hasChocks:
		l, c := delay.ArrivalInstants(s.date, land, chocks, s.loc)
		out.Landing, out.OnChocks = at(l), at(c)
	case hasLand:
		out.Landing = at(land.On(s.date, s.loc))
	case hasChocks:
		out.OnChocks = at(chocks.On(s.date, s.loc))
	}

	if eta, ok := clock(s.entry.ETA); ok {
		out.ETA = at(eta.On(s.date, s.loc))
	}
	return out
}

// Requirement compares the deviation from schedule with the allocated
// delay minutes. A missing scheduled time or entered time requires nothing.
func (s *Session) Requirement() delay.Requirement {
	in := s.Instants()
	required := 0

	switch s.Mode {
	case ModeDeparture:
		if s.Flight.ScheduledStart != nil && in.OffBlocks != nil {
			required = delay.DepartureRequired(*s.Flight.ScheduledStart, *in.OffBlocks)
		}
	case ModeArrival:
		eta := in.ETA
		if eta == nil {
			eta = in.OnChocks
		}
		if s.Flight.ScheduledEnd != nil && eta != nil {
			required = delay.ArrivalRequired(*s.Flight.ScheduledEnd, *eta)
		}
	}
	return delay.Reconcile(s.Mode.leg(), required, s.delays)
}

// Registry tracks open sessions by ID
type Registry struct {
	codes *delay.CodeTable
	loc   *time.Location

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(codes *delay.CodeTable, loc *time.Location) *Registry {
	return &Registry{codes: codes, loc: loc, sessions: make(map[string]*Session)}
}

// Open starts a session for a selected flight
func (r *Registry) Open(f *models.ResolvedFlight, mode Mode) (*Session, error) {
	s, err := newSession(f, mode, r.codes, r.loc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns an open session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Close discards a session
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
