package scheduler

import (
	"time"

	"bizdash/internal/models"
)

// refNow is Wednesday 2025-03-12 10:30 UTC.
var refNow = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2025, time.March, 12+offset, 9, 0, 0, 0, time.UTC)
}

func task(id string, due time.Time, status models.ItemStatus) models.SchedulerItem {
	return models.SchedulerItem{
		ID:        id,
		Type:      models.TypeTask,
		Title:     "Task " + id,
		Status:    status,
		Priority:  models.PriorityMedium,
		DueDate:   due,
		CreatedAt: refNow.AddDate(0, 0, -10),
		UpdatedAt: refNow.AddDate(0, 0, -10),
		Details:   models.TaskDetails{Category: "general"},
	}
}

func ids(items []models.SchedulerItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
