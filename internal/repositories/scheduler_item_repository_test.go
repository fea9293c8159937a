package repositories

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/models"
	"bizdash/internal/scheduler"
)

func fetchParams() models.FetchParams {
	return models.FetchParams{
		StartDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildItemsQuery_RangeOnly(t *testing.T) {
	q, args := buildItemsQuery(fetchParams())
	assert.Contains(t, q, "WHERE due_date >= $1 AND due_date <= $2 ORDER BY")
	assert.Equal(t, []interface{}{"2025-02-10", "2025-03-18"}, args)
}

func TestBuildItemsQuery_Filters(t *testing.T) {
	p := fetchParams()
	who := "u1"
	prio := models.PriorityHigh
	typ := models.TypeWorkflow
	p.AssignedTo, p.Priority, p.Type = &who, &prio, &typ

	q, args := buildItemsQuery(p)
	assert.Contains(t, q, "assigned_to = $3")
	assert.Contains(t, q, "priority = $4")
	assert.Contains(t, q, "type = $5")
	assert.NotContains(t, q, "status =")
	assert.Equal(t, []interface{}{"2025-02-10", "2025-03-18", "u1", "high", "workflow"}, args)
}

func TestBuildPendingWriteUpdate(t *testing.T) {
	at := time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)
	title := "Renamed"
	tags := []string{"iso"}
	w := models.PendingWrite{
		ID:     "w1",
		ItemID: "t1",
		Kind:   models.WriteUpdate,
		Patch:  models.ItemPatch{Title: &title, Tags: &tags},
		At:     at,
	}

	q, args := buildPendingWriteUpdate(w)
	assert.True(t, strings.HasPrefix(q, "UPDATE scheduler_items SET title=$1, tags=$2, completed_at=$3, updated_at=$4"))
	assert.True(t, strings.HasSuffix(q, "WHERE id=$5"))
	require.Len(t, args, 5)
	assert.Equal(t, "Renamed", args[0])
	assert.Equal(t, pq.Array(tags), args[1])
	assert.Nil(t, args[2])
	assert.Equal(t, at, args[3])
	assert.Equal(t, "t1", args[4])
}

func TestBuildPendingWriteUpdate_Complete(t *testing.T) {
	at := time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)
	st := models.StatusCompleted
	w := models.PendingWrite{
		ItemID:      "t1",
		Kind:        models.WriteComplete,
		Patch:       models.ItemPatch{Status: &st},
		CompletedAt: &at,
		At:          at,
	}
	q, args := buildPendingWriteUpdate(w)
	assert.Contains(t, q, "status=$1, completed_at=$2")
	assert.Equal(t, "completed", args[0])
	got, ok := args[1].(*time.Time)
	require.True(t, ok)
	assert.Equal(t, at, *got)
}

func TestDetailsJSON(t *testing.T) {
	b, err := detailsJSON(models.AuditActivityDetails{ClientName: "Acme", Standard: "ISO 9001"})
	require.NoError(t, err)
	d, err := models.DecodeDetails(models.TypeAuditActivity, b)
	require.NoError(t, err)
	assert.Equal(t, "Acme", d.(models.AuditActivityDetails).ClientName)

	b, err = detailsJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}

// fakeRow hands fixed column values to Scan the way database/sql would.
type fakeRow struct {
	values []interface{}
	err    error
}

func (f fakeRow) Scan(dest ...interface{}) error {
	if f.err != nil {
		return f.err
	}
	if len(dest) != len(f.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		if sc, ok := d.(sql.Scanner); ok {
			if err := sc.Scan(f.values[i]); err != nil {
				return err
			}
			continue
		}
		dv := reflect.ValueOf(d).Elem()
		if f.values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		dv.Set(reflect.ValueOf(f.values[i]).Convert(dv.Type()))
	}
	return nil
}

// itemRow is a task row as lib/pq returns it: DATE columns arrive as midnight UTC.
func itemRow(due time.Time) fakeRow {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return fakeRow{values: []interface{}{
		"t1", "task", "File report", "", "not-started", "high", due,
		"14:00", "u1", "Dana", int64(30), []byte("{audit,ops}"), []byte("{}"),
		created, created, nil,
	}}
}

func TestScanItem(t *testing.T) {
	it, err := scanItem(itemRow(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)), time.UTC)
	require.NoError(t, err)
	require.NoError(t, it.Validate())
	assert.Equal(t, "t1", it.ID)
	assert.Equal(t, models.TypeTask, it.Type)
	assert.Equal(t, models.PriorityHigh, it.Priority)
	assert.Equal(t, []string{"audit", "ops"}, it.Tags)
	require.NotNil(t, it.EstimatedDuration)
	assert.Equal(t, 30, *it.EstimatedDuration)
	assert.Nil(t, it.CompletedAt)
	assert.IsType(t, models.TaskDetails{}, it.Details)

	_, err = scanItem(fakeRow{err: sql.ErrNoRows}, time.UTC)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScanItem_DueDateKeepsCalendarDayWestOfUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	it, err := scanItem(itemRow(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)), ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, ny), it.DueDate)
	assert.Equal(t, "2025-03-12", it.DueDate.Format(models.DateLayout))

	now := time.Date(2025, 3, 12, 10, 0, 0, 0, ny)
	assert.Equal(t, scheduler.Today(now), scheduler.DueDay(it, now))
	assert.False(t, scheduler.IsOverdue(it, now))
	assert.Equal(t, scheduler.BucketToday, scheduler.BucketOf(it, now))
}

func TestScanItem_DueDateKeepsCalendarDayEastOfUTC(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	it, err := scanItem(itemRow(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)), tokyo)
	require.NoError(t, err)
	now := time.Date(2025, 3, 11, 23, 0, 0, 0, tokyo)
	assert.Equal(t, scheduler.BucketTomorrow, scheduler.BucketOf(it, now))
}
