package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bizdash/internal/models"
)

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name   string
		due    time.Time
		status models.ItemStatus
		want   bool
	}{
		{"yesterday in progress", day(-1), models.StatusInProgress, true},
		{"yesterday completed", day(-1), models.StatusCompleted, false},
		{"today earlier hour", time.Date(2025, 3, 12, 0, 1, 0, 0, time.UTC), models.StatusNotStarted, false},
		{"tomorrow", day(1), models.StatusBlocked, false},
		{"last month", day(-30), models.StatusReview, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(task("x", tt.due, tt.status), refNow))
		})
	}
}

func TestIsOverdue_DateOnlyInLocalZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 23:30 UTC on the 11th is already the 12th in UTC+5
	now := time.Date(2025, 3, 12, 8, 0, 0, 0, loc)
	due := time.Date(2025, 3, 11, 23, 30, 0, 0, time.UTC)

	it := task("tz", due, models.StatusNotStarted)
	assert.False(t, IsOverdue(it, now))
	assert.Equal(t, BucketToday, BucketOf(it, now))
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		name   string
		due    time.Time
		status models.ItemStatus
		want   Bucket
	}{
		{"overdue", day(-2), models.StatusInProgress, BucketOverdue},
		{"today", day(0), models.StatusNotStarted, BucketToday},
		{"today completed", day(0), models.StatusCompleted, BucketToday},
		{"tomorrow", day(1), models.StatusNotStarted, BucketTomorrow},
		{"day after tomorrow", day(2), models.StatusNotStarted, BucketThisWeek},
		{"sixth day", day(6), models.StatusNotStarted, BucketThisWeek},
		{"seventh day", day(7), models.StatusNotStarted, BucketLater},
		{"past completed", day(-3), models.StatusCompleted, BucketLater},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(task("x", tt.due, tt.status), refNow))
		})
	}
}

func TestBucketOf_Partition(t *testing.T) {
	statuses := models.AllItemStatuses()
	var items []models.SchedulerItem
	for offset := -20; offset <= 40; offset++ {
		for _, st := range statuses {
			items = append(items, task("x", day(offset), st))
		}
	}

	grouping := GroupByDueDate(items, refNow)
	assert.Len(t, grouping, 5)

	total := 0
	for _, g := range grouping {
		total += len(g.Items)
		for _, it := range g.Items {
			assert.Equal(t, g.Bucket, BucketOf(it, refNow))
		}
	}
	assert.Equal(t, len(items), total)
}

func TestOverdueImpliesNotCompleted(t *testing.T) {
	for offset := -10; offset <= 10; offset++ {
		for _, st := range models.AllItemStatuses() {
			it := task("x", day(offset), st)
			if IsOverdue(it, refNow) {
				assert.NotEqual(t, models.StatusCompleted, it.Status)
			}
		}
	}
}

func TestDisplayStatus(t *testing.T) {
	assert.Equal(t, models.StatusOverdue, DisplayStatus(task("a", day(-1), models.StatusReview), refNow))
	assert.Equal(t, models.StatusReview, DisplayStatus(task("b", day(1), models.StatusReview), refNow))
}
