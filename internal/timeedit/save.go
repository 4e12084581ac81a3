package timeedit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"flight_gantt/internal/delay"
	"flight_gantt/internal/models"
)

// Payload is what a save sends. Timestamps are local ISO without a zone.
type Payload struct {
	SessionID    string `json:"session_id"`
	Mode         Mode   `json:"mode"`
	RecordID     string `json:"record_id,omitempty"`
	Date         string `json:"date"`
	Flight       string `json:"flight"`
	Registration string `json:"registration"`
	Departure    string `json:"dep"`
	Arrival      string `json:"arr"`

	OffBlocks string `json:"off_blocks,omitempty"`
	Airborne  string `json:"airborne,omitempty"`
	Landing   string `json:"landing,omitempty"`
	OnChocks  string `json:"on_chocks,omitempty"`
	ETA       string `json:"eta,omitempty"`

	Delays           []models.DelayEntry `json:"delays"`
	RequiredMinutes  int                 `json:"required_minutes"`
	AllocatedMinutes int                 `json:"allocated_minutes"`

	RosterID string `json:"roster_flight_id,omitempty"`
	PlanID   string `json:"plan_id,omitempty"`
}

// Payload builds the save request from the session state
func (s *Session) Payload() Payload {
	in := s.Instants()
	req := s.Requirement()
	iso := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return delay.LocalISO(*t, s.loc)
	}

	p := Payload{
		SessionID:        s.ID,
		Mode:             s.Mode,
		RecordID:         s.Flight.RecordID,
		Date:             s.Flight.FlightDate,
		Flight:           s.Flight.Callsign(),
		Registration:     s.Flight.Registration,
		Departure:        s.Flight.DepartureStation,
		Arrival:          s.Flight.ArrivalStation,
		Delays:           s.Delays(),
		RequiredMinutes:  req.Required,
		AllocatedMinutes: req.Allocated,
		RosterID:         s.Flight.RosterID,
		PlanID:           s.Flight.PlanID,
	}
	switch s.Mode {
	case ModeDeparture:
		p.OffBlocks = iso(in.OffBlocks)
		p.Airborne = iso(in.Airborne)
	case ModeArrival:
		p.Landing = iso(in.Landing)
		p.OnChocks = iso(in.OnChocks)
		p.ETA = iso(in.ETA)
		if p.ETA == "" {
			p.ETA = p.OnChocks
		}
	}
	return p
}

// SaveError is a failed save. The session is left intact so it can be retried.
type SaveError struct {
	StatusCode int
	Message    string
}

func (e *SaveError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("time edit save failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("time edit save failed (status %d)", e.StatusCode)
}

type saveResponse struct {
	OK      *bool  `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// SaveClient posts time edits
type SaveClient struct {
	url  string
	http *http.Client
}

func NewSaveClient(url string, timeout time.Duration) *SaveClient {
	return &SaveClient{url: url, http: &http.Client{Timeout: timeout}}
}

// Save posts the session payload. When the server accepts it the edit is
// final; any failure leaves the session unchanged for another attempt.
func (c *SaveClient) Save(ctx context.Context, s *Session) error {
	p := s.Payload()
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode time edit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("Time edit save failed", "flight", p.Flight, "session", s.ID, "error", err)
		return fmt.Errorf("failed to save time edit: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read save response: %w", err)
	}
	var r saveResponse
	_ = json.Unmarshal(data, &r)

	msg := r.Message
	if msg == "" {
		msg = r.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || (r.OK != nil && !*r.OK) {
		slog.Warn("Time edit save rejected", "flight", p.Flight, "session", s.ID, "status", resp.StatusCode, "message", msg)
		return &SaveError{StatusCode: resp.StatusCode, Message: msg}
	}

	slog.Info("Saved time edit", "flight", p.Flight, "mode", p.Mode, "delays", len(p.Delays), "required", p.RequiredMinutes, "allocated", p.AllocatedMinutes)
	return nil
}
