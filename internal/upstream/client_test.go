package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/models"
)

const itemsBody = `{"items": [
	{"id":"t1","type":"task","title":"Collect evidence","status":"in-progress","priority":"high",
	 "dueDate":"2025-03-12","createdAt":"2025-03-01T08:00:00Z","updatedAt":"2025-03-02T08:00:00Z",
	 "assignedTo":"u1","category":"prep","subtasks":[{"id":"s1","title":"Scan","completed":true}]},
	{"id":"a1","type":"audit-activity","title":"Opening meeting","status":"not-started","priority":"medium",
	 "due_date":"2025-03-13T09:00:00Z","created_at":"2025-03-01T08:00:00Z","updated_at":"2025-03-01T08:00:00Z",
	 "client_name":"Acme","standard":"ISO 9001","activity_type":"opening"},
	{"id":"x1","type":"meeting","title":"Unknown"}
]}`

func params() models.FetchParams {
	return models.FetchParams{
		StartDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
	}
}

func newTestClient(url string) *Client {
	return NewClient(url, Options{
		Token:         "secret",
		Timeout:       time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		Location:      time.UTC,
	})
}

func TestClient_GetSchedulerItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scheduler/items", r.URL.Path)
		assert.Equal(t, "2025-02-10", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-03-18", r.URL.Query().Get("end_date"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(itemsBody))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).GetSchedulerItems(context.Background(), params())
	require.NoError(t, err)
	require.Len(t, items, 2)

	task := items[0]
	assert.Equal(t, models.TypeTask, task.Type)
	assert.Equal(t, "u1", task.AssignedTo)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), task.DueDate.UTC())
	details, ok := task.Details.(models.TaskDetails)
	require.True(t, ok)
	assert.Equal(t, "prep", details.Category)
	assert.Len(t, details.Subtasks, 1)

	assert.Equal(t, "Acme", items[1].Details.(models.AuditActivityDetails).ClientName)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).GetSchedulerItems(context.Background(), params())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetSchedulerItems(context.Background(), params())
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestQuery_OptionalFilters(t *testing.T) {
	p := params()
	q := Query(p)
	assert.False(t, q.Has("status"))
	assert.False(t, q.Has("assigned_to"))

	who := "u9"
	st := models.StatusReview
	typ := models.TypeChecklist
	p.AssignedTo, p.Status, p.Type = &who, &st, &typ
	q = Query(p)
	assert.Equal(t, "u9", q.Get("assigned_to"))
	assert.Equal(t, "review", q.Get("status"))
	assert.Equal(t, "checklist", q.Get("type"))
	assert.False(t, q.Has("priority"))
}

func TestDecodeItem(t *testing.T) {
	_, err := DecodeItem([]byte(`"just a string"`), time.UTC)
	assert.ErrorIs(t, err, models.ErrUnrecognizedItemShape)

	_, err = DecodeItem([]byte(`{"id":"c","type":"checklist","title":"x","dueDate":"12/03/2025"}`), time.UTC)
	assert.ErrorIs(t, err, models.ErrUnrecognizedItemShape)

	it, err := DecodeItem([]byte(`{"id":"c","type":"checklist","title":"x","status":"review","priority":"low",
		"dueDate":"2025-03-12","completedAt":"","templateName":"Intake","completionRate":40,
		"items":[{"id":"1","completed":true},{"id":"2","completed":true},{"id":"3","completed":false}]}`), time.UTC)
	require.NoError(t, err)
	assert.Nil(t, it.CompletedAt)
	cl := it.Details.(models.ChecklistDetails)
	assert.Equal(t, "Intake", cl.TemplateName)
	assert.Equal(t, 40, cl.CompletionRate)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "due_date", SnakeCase("dueDate"))
	assert.Equal(t, "assigned_to_name", SnakeCase("assignedToName"))
	assert.Equal(t, "due_date", SnakeCase("due_date"))
}

func TestDecodeItems_Envelopes(t *testing.T) {
	body := []byte(`{"data":[
		{"id":"a","type":"task","title":"A","status":"not-started","priority":"high","dueDate":"2025-03-12"},
		{"id":"b","type":"unknown","title":"B"}
	]}`)
	items, err := DecodeItems(body, time.UTC)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)

	_, err = DecodeItems([]byte(`nope`), time.UTC)
	assert.Error(t, err)
}
