package todoist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

func TestCompletedTasks(t *testing.T) {
	var gotAuth, gotSince, gotUntil, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSince = r.URL.Query().Get("since")
		gotUntil = r.URL.Query().Get("until")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"content": "Read Book", "completed_at": "2024-03-09T10:15:00Z"},
			{"content": "Meditate", "completed_at": "2024-03-09T11:00:00Z"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", nil)
	since := time.Date(2024, 3, 9, 10, 0, 0, 0, time.Local)
	until := time.Date(2024, 3, 9, 11, 30, 0, 0, time.Local)

	tasks, err := client.CompletedTasks(context.Background(), since, until)
	require.NoError(t, err)

	assert.Equal(t, "/sync/v9/completed/get_all", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "2024-03-09T10:00", gotSince)
	assert.Equal(t, "2024-03-09T11:30", gotUntil)

	// Order as returned by the service, no local reordering.
	require.Len(t, tasks, 2)
	assert.Equal(t, "Read Book", tasks[0].Content)
	assert.Equal(t, "2024-03-09T10:15:00Z", tasks[0].CompletedAt)
	assert.Equal(t, "Meditate", tasks[1].Content)
}

func TestCompletedTasksUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong", nil)
	_, err := client.CompletedTasks(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, syncerrors.HasCategory(err, syncerrors.CategoryAuth))
}

func TestCompletedTasksServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	_, err := client.CompletedTasks(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, syncerrors.HasCategory(err, syncerrors.CategoryTodoist))
}

func TestCompletedTasksMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	_, err := client.CompletedTasks(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
}

func TestCompletedTasksTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := NewClient(server.URL, "tok", nil)
	_, err := client.CompletedTasks(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, syncerrors.HasCategory(err, syncerrors.CategoryNetwork))
}
