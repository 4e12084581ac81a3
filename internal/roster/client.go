package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flight_gantt/internal/delay"
)

// ActualTimes are the authoritative local times of day for a flight, "HH:MM" or "" when not recorded
type ActualTimes struct {
	DepartureActual   string `json:"departureActual"`
	DepartureAirborne string `json:"departureAirborne"`
	ArrivalLanded     string `json:"arrivalLanded"`
	ArrivalActual     string `json:"arrivalActual"`
}

// Empty reports whether no time is recorded
func (t ActualTimes) Empty() bool {
	return t.DepartureActual == "" && t.DepartureAirborne == "" && t.ArrivalLanded == "" && t.ArrivalActual == ""
}

// CrewMember is one crew assignment
type CrewMember struct {
	Position string `json:"position"`
	Name     string `json:"name"`
}

// StatusError is returned when the roster system answers with an unexpected status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("roster request %s returned status %d", e.URL, e.StatusCode)
}

// Client reads actual times and crew from the roster system
type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		http:         &http.Client{Timeout: timeout},
		maxRetries:   2,
		retryBackoff: 500 * time.Millisecond,
	}
}

// ActualTimes fetches the recorded times of a flight. It returns false when
// no flight is linked or the roster system does not know it.
func (c *Client) ActualTimes(ctx context.Context, flightID string) (*ActualTimes, bool, error) {
	if strings.TrimSpace(flightID) == "" {
		return nil, false, nil
	}

	var raw ActualTimes
	ok, err := c.getJSON(ctx, "/Flights/"+url.PathEscape(flightID)+"/ActualTimes", &raw)
	if err != nil || !ok {
		return nil, ok, err
	}

	times := &ActualTimes{
		DepartureActual:   clockOf(raw.DepartureActual),
		DepartureAirborne: clockOf(raw.DepartureAirborne),
		ArrivalLanded:     clockOf(raw.ArrivalLanded),
		ArrivalActual:     clockOf(raw.ArrivalActual),
	}
	return times, true, nil
}

// Crew fetches the crew list of a flight in roster order
func (c *Client) Crew(ctx context.Context, flightID string) ([]CrewMember, bool, error) {
	if strings.TrimSpace(flightID) == "" {
		return nil, false, nil
	}

	var crew []CrewMember
	ok, err := c.getJSON(ctx, "/Flights/"+url.PathEscape(flightID)+"/Crew", &crew)
	if err != nil || !ok {
		return nil, ok, err
	}

	out := make([]CrewMember, 0, len(crew))
	for _, m := range crew {
		m.Position = strings.TrimSpace(m.Position)
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" && m.Position == "" {
			continue
		}
		out = append(out, m)
	}
	return out, true, nil
}

// getJSON decodes a GET response into out. Transport errors and 5xx responses
// are retried with exponential backoff; 404 means not available.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	endpoint := c.baseURL + path
	backoff := c.retryBackoff

	for attempt := 0; ; attempt++ {
		ok, retry, err := c.do(ctx, endpoint, out)
		if err == nil || !retry || attempt >= c.maxRetries {
			return ok, err
		}

		slog.Warn("Roster request failed, retrying", "url", endpoint, "retry", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
	}
}

func (c *Client) do(ctx context.Context, endpoint string, out any) (ok bool, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, false, ctx.Err()
		}
		return false, true, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, false, nil
	case resp.StatusCode >= 500:
		return false, true, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return false, false, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return true, false, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// clockOf reduces a clock or local timestamp to "HH:MM"
func clockOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if c, err := delay.ParseClock(raw); err == nil {
		return c.String()
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}
