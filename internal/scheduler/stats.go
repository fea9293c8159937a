package scheduler

import (
	"math"
	"time"

	"bizdash/internal/models"
)

// Summarize reduces items in one pass. Only the passed collection is counted,
// so the caller decides whether stats reflect the raw, windowed or faceted set.
func Summarize(items []models.SchedulerItem, now time.Time) models.Stats {
	st := models.Stats{
		ByStatus:   make(map[models.ItemStatus]int),
		ByType:     make(map[models.ItemType]int),
		ByPriority: make(map[models.Priority]int),
	}
	for _, s := range models.AllItemStatuses() {
		st.ByStatus[s] = 0
	}
	for _, t := range models.AllItemTypes() {
		st.ByType[t] = 0
	}
	for _, p := range models.AllPriorities() {
		st.ByPriority[p] = 0
	}

	today := Today(now)
	tomorrow := addDays(today, 1)
	weekEnd := addDays(today, 7)
	completed := 0

	for _, it := range items {
		st.Total++
		st.ByStatus[it.Status]++
		st.ByType[it.Type]++
		st.ByPriority[it.Priority]++

		if it.IsCompleted() {
			completed++
			continue
		}
		due := DueDay(it, now)
		switch {
		case due.Before(today):
			st.Overdue++
		case due.Before(tomorrow):
			st.DueToday++
			st.DueThisWeek++
		case due.Before(weekEnd):
			st.DueThisWeek++
		}
	}

	if st.Total > 0 {
		st.CompletionRate = int(math.Round(100 * float64(completed) / float64(st.Total)))
	}
	return st
}
