package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Result is the plan system's answer. Either shape is accepted:
// {"ok": false, "message": "..."} or {"status": {"success": false, "message": "..."}}.
type Result struct {
	OK      *bool  `json:"ok"`
	Message string `json:"message"`
	Status  *struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	} `json:"status"`
}

func (r Result) success() (bool, string) {
	switch {
	case r.OK != nil:
		return *r.OK, r.Message
	case r.Status != nil:
		return r.Status.Success, r.Status.Message
	}
	return true, r.Message
}

// RejectedError is a non-2xx response or an explicit failure reply
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("plan %s rejected (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("plan %s rejected (status %d)", e.Op, e.StatusCode)
}

// Client pushes and resets manifests in the plan system
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// PushManifest sends the flight key and passenger list. Nothing is sent when
// a key field is missing.
func (c *Client) PushManifest(ctx context.Context, req Request) error {
	if missing := req.Missing(); len(missing) > 0 {
		return &MissingFieldsError{Op: "push", Fields: missing}
	}
	if req.Passengers == nil {
		req.Passengers = []Passenger{}
	}
	if err := c.post(ctx, "push", "/manifest/push", req); err != nil {
		return err
	}
	slog.Info("Pushed manifest to plan", "flight", req.Designator+req.FlightNumber, "date", req.Date, "passengers", len(req.Passengers), "preview", req.Preview)
	return nil
}

// Reset clears the manifest held for a flight
func (c *Client) Reset(ctx context.Context, req Request) error {
	if missing := req.Missing(); len(missing) > 0 {
		return &MissingFieldsError{Op: "reset", Fields: missing}
	}
	if err := c.post(ctx, "reset", "/manifest/reset", req.key()); err != nil {
		return err
	}
	slog.Info("Reset manifest in plan", "flight", req.Designator+req.FlightNumber, "date", req.Date)
	return nil
}

func (c *Client) post(ctx context.Context, op, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode plan %s: %w", op, err)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("Plan request failed", "op", op, "url", endpoint, "error", err)
		return fmt.Errorf("failed to call plan %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read plan %s response: %w", op, err)
	}

	var result Result
	if len(bytes.TrimSpace(data)) > 0 {
		// a non-JSON body on success carries no verdict
		_ = json.Unmarshal(data, &result)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, msg := result.success()
		slog.Warn("Plan rejected request", "op", op, "status", resp.StatusCode, "message", msg)
		return &RejectedError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if ok, msg := result.success(); !ok {
		slog.Warn("Plan rejected request", "op", op, "status", resp.StatusCode, "message", msg)
		return &RejectedError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}
