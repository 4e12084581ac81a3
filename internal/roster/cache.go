package roster

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"flight_gantt/internal/models"
)

// Fetcher is the roster system as seen by the cache
type Fetcher interface {
	ActualTimes(ctx context.Context, flightID string) (*ActualTimes, bool, error)
	Crew(ctx context.Context, flightID string) ([]CrewMember, bool, error)
}

// State is the lifecycle of one cached lookup
type State int

const (
	StateUnfetched State = iota
	StatePending
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	}
	return "unfetched"
}

type entry[T any] struct {
	state     State
	value     T
	available bool
	err       error
}

type result[T any] struct {
	value     T
	available bool
}

// Cache holds crew and actual times for the flights of one board snapshot.
// Each flight is fetched at most once; concurrent callers share the pending
// call. Failed lookups are retried on the next request.
type Cache struct {
	fetcher Fetcher
	group   singleflight.Group

	mu    sync.Mutex
	crew  map[int]*entry[[]CrewMember]
	times map[int]*entry[*ActualTimes]
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		crew:    make(map[int]*entry[[]CrewMember]),
		times:   make(map[int]*entry[*ActualTimes]),
	}
}

// Crew returns the crew of a flight, fetching it on first use
func (c *Cache) Crew(ctx context.Context, f *models.ResolvedFlight) ([]CrewMember, bool, error) {
	return load(ctx, c, "crew", c.crew, f, c.fetcher.Crew)
}

// ActualTimes returns the recorded times of a flight, fetching them on first use
func (c *Cache) ActualTimes(ctx context.Context, f *models.ResolvedFlight) (*ActualTimes, bool, error) {
	return load(ctx, c, "times", c.times, f, c.fetcher.ActualTimes)
}

// CrewState reports the crew lookup state of a flight index
func (c *Cache) CrewState(index int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.crew[index]; ok {
		return e.state
	}
	return StateUnfetched
}

// TimesState reports the times lookup state of a flight index
func (c *Cache) TimesState(index int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.times[index]; ok {
		return e.state
	}
	return StateUnfetched
}

func load[T any](
	ctx context.Context,
	c *Cache,
	kind string,
	entries map[int]*entry[T],
	f *models.ResolvedFlight,
	fetch func(context.Context, string) (T, bool, error),
) (T, bool, error) {
	var zero T
	if f == nil || f.RosterID == "" {
		return zero, false, nil
	}

	c.mu.Lock()
	e, ok := entries[f.Index]
	if !ok {
		e = &entry[T]{}
		entries[f.Index] = e
	}
	if e.state == StateResolved {
		value, available := e.value, e.available
		c.mu.Unlock()
		return value, available, nil
	}

	// Joining the in-flight call happens under the lock, so a caller either
	// shares it or sees the resolved entry it stored
	e.state = StatePending
	id := f.RosterID
	key := kind + "/" + strconv.Itoa(f.Index)
	ch := c.group.DoChan(key, func() (any, error) {
		value, available, err := fetch(context.WithoutCancel(ctx), id)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			// A caller taking the lock after this starts a fresh fetch
			// instead of joining the failed one
			c.group.Forget(key)
			e.state = StateFailed
			e.err = err
			return nil, err
		}
		e.state = StateResolved
		e.value = value
		e.available = available
		e.err = nil
		return result[T]{value: value, available: available}, nil
	})
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, false, r.Err
		}
		res := r.Val.(result[T])
		return res.value, res.available, nil
	}
}
