package scheduler

import (
	"time"

	"bizdash/internal/models"
)

type CalendarDay struct {
	Date    string                 `json:"date"` // YYYY-MM-DD
	InMonth bool                   `json:"in_month"`
	IsToday bool                   `json:"is_today"`
	Items   []models.SchedulerItem `json:"items"`
}

// CalendarView is a month grid of full weeks starting on Sunday.
type CalendarView struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month"`
	Weeks [][]CalendarDay `json:"weeks"`
}

// RenderCalendar lays out the month `monthOffset` months away from now's month.
// Items due outside the visible grid are not shown.
func RenderCalendar(items []models.SchedulerItem, now time.Time, monthOffset int) CalendarView {
	today := Today(now)
	loc := today.Location()
	first := time.Date(today.Year(), today.Month()+time.Month(monthOffset), 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	gridStart := addDays(first, -int(first.Weekday()))
	lastDay := addDays(next, -1)
	gridEnd := addDays(lastDay, 7-int(lastDay.Weekday())) // exclusive

	byDay := make(map[string][]models.SchedulerItem)
	for _, it := range SortForDisplay(items) {
		due := DueDay(it, now)
		if due.Before(gridStart) || !due.Before(gridEnd) {
			continue
		}
		key := due.Format(models.DateLayout)
		byDay[key] = append(byDay[key], it)
	}

	view := CalendarView{Year: first.Year(), Month: first.Month()}
	var week []CalendarDay
	for day := gridStart; day.Before(gridEnd); day = addDays(day, 1) {
		key := day.Format(models.DateLayout)
		dayItems := byDay[key]
		if dayItems == nil {
			dayItems = []models.SchedulerItem{}
		}
		week = append(week, CalendarDay{
			Date:    key,
			InMonth: day.Month() == first.Month(),
			IsToday: day.Equal(today),
			Items:   dayItems,
		})
		if len(week) == 7 {
			view.Weeks = append(view.Weeks, week)
			week = nil
		}
	}
	return view
}
