package tasks

import (
	"context"
	"fmt"
	"time"

	"flight_gantt/internal/board"
)

// SilentRefresher is the background refresh path of the board
type SilentRefresher interface {
	RefreshSilently(ctx context.Context, date string) (*board.Snapshot, error)
}

// RefreshPoller reloads the board on a fixed interval without operator feedback
type RefreshPoller struct {
	board    SilentRefresher
	interval time.Duration
	loc      *time.Location
	date     string // fixed operating day; empty follows the clock
	now      func() time.Time
}

// NewRefreshPoller polls today's flights, where today is taken in loc
func NewRefreshPoller(b SilentRefresher, interval time.Duration, loc *time.Location) *RefreshPoller {
	if loc == nil {
		loc = time.Local
	}
	return &RefreshPoller{board: b, interval: interval, loc: loc, now: time.Now}
}

// NewRefreshPollerForDate polls one fixed operating day
func NewRefreshPollerForDate(b SilentRefresher, interval time.Duration, date string) *RefreshPoller {
	p := NewRefreshPoller(b, interval, nil)
	p.date = date
	return p
}

// Date returns the operating day the next run will load
func (p *RefreshPoller) Date() string {
	if p.date != "" {
		return p.date
	}
	return p.now().In(p.loc).Format("2006-01-02")
}

func (p *RefreshPoller) Run(ctx context.Context) error {
	date := p.Date()
	if _, err := p.board.RefreshSilently(ctx, date); err != nil {
		return fmt.Errorf("failed to refresh %s: %w", date, err)
	}
	return nil
}

func (p *RefreshPoller) Interval() time.Duration {
	return p.interval
}

func (p *RefreshPoller) Name() string {
	return "refresh_poller"
}
