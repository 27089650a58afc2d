// Package todoist implements the completed-tasks client for the Todoist
// sync API.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

// WindowLayout is the minute-precision local-time format the completed-items
// endpoint expects for its since/until query parameters.
const WindowLayout = "2006-01-02T15:04"

const completedEndpoint = "/sync/v9/completed/get_all"

// Task is a completed task as returned by the service. CompletedAt stays a
// string here; date normalization happens per task in the syncer so a
// malformed timestamp only skips that task.
type Task struct {
	Content     string `json:"content"`
	CompletedAt string `json:"completed_at"`
}

type completedResponse struct {
	Items []Task `json:"items"`
}

// Client talks to the Todoist API using a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Todoist client. A nil httpClient uses http.DefaultClient
// (no explicit timeout is configured; transport defaults apply).
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// CompletedTasks returns all tasks completed in the half-open window
// [since, until), in the order the service returned them.
func (c *Client) CompletedTasks(ctx context.Context, since, until time.Time) ([]Task, error) {
	query := url.Values{}
	query.Set("since", since.Format(WindowLayout))
	query.Set("until", until.Format(WindowLayout))
	endpoint := c.baseURL + completedEndpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, syncerrors.TodoistError("failed to create request").
			WithCause(err).
			WithContext("url", endpoint)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, syncerrors.NetworkError("failed to fetch completed tasks").
			WithCause(err).
			WithContext("url", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		// Read limited body for diagnostics
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

		category := syncerrors.CategoryTodoist
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			category = syncerrors.CategoryAuth
		}
		return nil, syncerrors.New(category, syncerrors.SeverityError,
			fmt.Sprintf("todoist API error: %s", resp.Status)).
			WithContext("code", resp.StatusCode).
			WithContext("response", bodyStr)
	}

	var decoded completedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, syncerrors.TodoistError("failed to decode completed tasks response").
			WithCause(err)
	}
	return decoded.Items, nil
}
