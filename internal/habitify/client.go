// Package habitify implements the habit-list and log-create clients for the
// Habitify API. Unlike Todoist, the API key goes in the Authorization header
// raw, with no scheme prefix.
package habitify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

// Default log values: one rep per completed task. Partial credit and custom
// quantities are out of scope.
const (
	DefaultLogValue    = 1
	DefaultLogUnitType = "rep"
)

// Habit is one habit as returned by the list endpoint.
type Habit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Log is the body of a log-create request.
type Log struct {
	TargetDate string  `json:"target_date"`
	Value      float64 `json:"value"`
	UnitType   string  `json:"unit_type"`
}

// logResponse carries the status indicator the API sets on success.
type logResponse struct {
	Status bool `json:"status"`
}

// Client talks to the Habitify API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Habitify client. A nil httpClient uses
// http.DefaultClient (transport default timeouts apply).
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Habits returns the full habit list. The endpoint answers either with a
// bare array or with an envelope {"data": [...]}; both shapes are unwrapped
// into one canonical slice before leaving this package.
func (c *Client) Habits(ctx context.Context) ([]Habit, error) {
	endpoint := c.baseURL + "/habits"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, syncerrors.HabitifyError("failed to create request").
			WithCause(err).
			WithContext("url", endpoint)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, syncerrors.NetworkError("failed to fetch habits").
			WithCause(err).
			WithContext("url", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, c.statusError(resp, "habit list")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, syncerrors.HabitifyError("failed to read habit list response").WithCause(err)
	}
	return decodeHabitList(body)
}

// decodeHabitList unwraps either response shape into a habit slice.
func decodeHabitList(body []byte) ([]Habit, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var habits []Habit
		if err := json.Unmarshal(trimmed, &habits); err != nil {
			return nil, syncerrors.HabitifyError("failed to decode habit list").WithCause(err)
		}
		return habits, nil
	}

	var envelope struct {
		Data []Habit `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, syncerrors.HabitifyError("failed to decode habit list envelope").WithCause(err)
	}
	return envelope.Data, nil
}

// CreateLog submits a completion log for one habit. Success requires a 2xx
// response whose body carries a true status field; anything else is an error
// for this single call.
func (c *Client) CreateLog(ctx context.Context, habitID string, entry Log) error {
	endpoint := c.baseURL + "/logs/" + url.PathEscape(habitID)

	payload, err := json.Marshal(entry)
	if err != nil {
		return syncerrors.HabitifyError("failed to encode log entry").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return syncerrors.HabitifyError("failed to create request").
			WithCause(err).
			WithContext("url", endpoint)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return syncerrors.NetworkError("failed to create habit log").
			WithCause(err).
			WithContext("habit_id", habitID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.statusError(resp, "log create")
	}

	var decoded logResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return syncerrors.HabitifyError("failed to decode log create response").
			WithCause(err).
			WithContext("habit_id", habitID)
	}
	if !decoded.Status {
		return syncerrors.HabitifyError("log create reported failure status").
			WithContext("habit_id", habitID)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, operation string) error {
	// Read limited body for diagnostics
	limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

	category := syncerrors.CategoryHabitify
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		category = syncerrors.CategoryAuth
	}
	return syncerrors.New(category, syncerrors.SeverityError,
		fmt.Sprintf("habitify %s error: %s", operation, resp.Status)).
		WithContext("code", resp.StatusCode).
		WithContext("response", bodyStr)
}
