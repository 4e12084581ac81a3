package roster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"flight_gantt/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockFetcher blocks crew calls until release is closed
type mockFetcher struct {
	crewCalls  atomic.Int32
	timesCalls atomic.Int32
	started    chan struct{}
	release    chan struct{}
	failFirst  bool
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (m *mockFetcher) Crew(ctx context.Context, id string) ([]CrewMember, bool, error) {
	n := m.crewCalls.Add(1)
	m.started <- struct{}{}
	<-m.release
	if m.failFirst && n == 1 {
		return nil, false, errors.New("roster unavailable")
	}
	return []CrewMember{{Position: "CPT", Name: "Crew " + id}}, true, nil
}

func (m *mockFetcher) ActualTimes(ctx context.Context, id string) (*ActualTimes, bool, error) {
	m.timesCalls.Add(1)
	return &ActualTimes{DepartureActual: "07:05"}, true, nil
}

func TestCache_SharesPendingFetch(t *testing.T) {
	m := newMockFetcher()
	c := NewCache(m)
	f := &models.ResolvedFlight{Index: 3, RosterID: "8812"}

	var wg sync.WaitGroup
	results := make([][]CrewMember, 6)
	run := func(i int) {
		defer wg.Done()
		crew, ok, err := c.Crew(context.Background(), f)
		assert.NoError(t, err)
		assert.True(t, ok)
		results[i] = crew
	}

	wg.Add(1)
	go run(0)
	<-m.started
	assert.Equal(t, StatePending, c.CrewState(3))

	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go run(i)
	}
	close(m.release)
	wg.Wait()

	assert.Equal(t, int32(1), m.crewCalls.Load())
	assert.Equal(t, StateResolved, c.CrewState(3))
	for _, r := range results {
		assert.Equal(t, []CrewMember{{Position: "CPT", Name: "Crew 8812"}}, r)
	}

	// resolved entries are served from the cache
	_, _, err := c.Crew(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int32(1), m.crewCalls.Load())
}

func TestCache_RetriesAfterFailure(t *testing.T) {
	m := newMockFetcher()
	m.failFirst = true
	close(m.release)
	c := NewCache(m)
	f := &models.ResolvedFlight{Index: 0, RosterID: "1"}

	_, _, err := c.Crew(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, StateFailed, c.CrewState(0))

	crew, ok, err := c.Crew(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, crew, 1)
	assert.Equal(t, int32(2), m.crewCalls.Load())
	assert.Equal(t, StateResolved, c.CrewState(0))
}

func TestCache_UnlinkedFlight(t *testing.T) {
	m := newMockFetcher()
	c := NewCache(m)

	crew, ok, err := c.Crew(context.Background(), &models.ResolvedFlight{Index: 1})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, crew)
	assert.Equal(t, int32(0), m.crewCalls.Load())
	assert.Equal(t, StateUnfetched, c.CrewState(1))
}

func TestCache_TimesIndependentOfCrew(t *testing.T) {
	m := newMockFetcher()
	c := NewCache(m)
	f := &models.ResolvedFlight{Index: 2, RosterID: "5"}

	for i := 0; i < 3; i++ {
		times, ok, err := c.ActualTimes(context.Background(), f)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "07:05", times.DepartureActual)
	}
	assert.Equal(t, int32(1), m.timesCalls.Load())
	assert.Equal(t, StateResolved, c.TimesState(2))
	assert.Equal(t, StateUnfetched, c.CrewState(2))
}

// flakyFetcher fails every other crew call
type flakyFetcher struct {
	calls atomic.Int32
}

func (f *flakyFetcher) Crew(ctx context.Context, id string) ([]CrewMember, bool, error) {
	if f.calls.Add(1)%2 == 1 {
		return nil, false, errors.New("roster unavailable")
	}
	return []CrewMember{{Position: "FO", Name: "Crew " + id}}, true, nil
}

func (f *flakyFetcher) ActualTimes(ctx context.Context, id string) (*ActualTimes, bool, error) {
	return nil, false, nil
}

func TestCache_NeverLeftPendingAfterFailure(t *testing.T) {
	for round := 0; round < 50; round++ {
		c := NewCache(&flakyFetcher{})
		f := &models.ResolvedFlight{Index: 0, RosterID: "77"}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Crew(context.Background(), f)
			}()
		}
		wg.Wait()

		// with no call in flight the entry has settled one way or the other
		state := c.CrewState(0)
		require.Contains(t, []State{StateFailed, StateResolved}, state, "round %d", round)
	}
}
