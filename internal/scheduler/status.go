// Package scheduler holds the pure rules behind the scheduler page: derived
// status, due-date buckets, filtering, statistics and the three view renderers.
// Nothing here performs I/O; every function takes the reference instant.
package scheduler

import (
	"time"

	"bizdash/internal/models"
)

// Bucket is one of five mutually exclusive due-date groups.
type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketThisWeek Bucket = "this-week"
	BucketLater    Bucket = "later"
)

// AllBuckets is the render order.
func AllBuckets() []Bucket {
	return []Bucket{BucketOverdue, BucketToday, BucketTomorrow, BucketThisWeek, BucketLater}
}

func (b Bucket) Title() string {
	switch b {
	case BucketOverdue:
		return "Overdue"
	case BucketToday:
		return "Today"
	case BucketTomorrow:
		return "Tomorrow"
	case BucketThisWeek:
		return "This Week"
	case BucketLater:
		return "Later"
	}
	return string(b)
}

// Today is local midnight of now's calendar date.
func Today(now time.Time) time.Time {
	return dayOf(now, now.Location())
}

// dayOf truncates t to midnight of its calendar date in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DueDay is the item's due date as a midnight in now's zone.
func DueDay(item models.SchedulerItem, now time.Time) time.Time {
	return dayOf(item.DueDate, now.Location())
}

func addDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// IsOverdue reports a due date strictly before today on an item that is not completed.
func IsOverdue(item models.SchedulerItem, now time.Time) bool {
	return !item.IsCompleted() && DueDay(item, now).Before(Today(now))
}

// BucketOf places the item into exactly one bucket, checked in order
// overdue, today, tomorrow, this-week (today..today+6), later.
// A completed item due in the past is not overdue and lands in later.
func BucketOf(item models.SchedulerItem, now time.Time) Bucket {
	today := Today(now)
	due := DueDay(item, now)

	switch {
	case IsOverdue(item, now):
		return BucketOverdue
	case due.Equal(today):
		return BucketToday
	case due.Equal(addDays(today, 1)):
		return BucketTomorrow
	case !due.Before(today) && due.Before(addDays(today, 7)):
		return BucketThisWeek
	default:
		return BucketLater
	}
}

// DisplayStatus is the stored status, except overdue items show as overdue.
func DisplayStatus(item models.SchedulerItem, now time.Time) models.ItemStatus {
	if IsOverdue(item, now) {
		return models.StatusOverdue
	}
	return item.Status
}
