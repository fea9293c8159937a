package scheduler

import (
	"fmt"
	"strings"
	"time"

	"bizdash/internal/models"
)

// Window is a half-open range of due days [Start, End).
type Window struct {
	Start     time.Time
	End       time.Time
	Unbounded bool
}

func (w Window) Contains(day time.Time) bool {
	if w.Unbounded {
		return true
	}
	return !day.Before(w.Start) && day.Before(w.End)
}

// WindowFor computes the due-date window of a time period relative to now.
func WindowFor(period models.TimePeriod, now time.Time) Window {
	today := Today(now)
	switch period {
	case models.PeriodToday:
		return Window{Start: today, End: addDays(today, 1)}
	case models.PeriodWeek:
		return Window{Start: today, End: addDays(today, 7)}
	case models.PeriodMonth:
		y, m, _ := today.Date()
		return Window{Start: today, End: time.Date(y, m+1, 1, 0, 0, 0, 0, today.Location())}
	default:
		return Window{Unbounded: true}
	}
}

// InPeriod keeps items due inside the window plus anything still overdue.
// Completed work due before today falls outside every bounded window.
func InPeriod(item models.SchedulerItem, w Window, now time.Time) bool {
	return w.Contains(DueDay(item, now)) || IsOverdue(item, now)
}

// Filter applies the time window first and then every facet (AND).
// The input slice is never modified.
func Filter(items []models.SchedulerItem, period models.TimePeriod, f models.Facets, now time.Time) []models.SchedulerItem {
	w := WindowFor(period, now)
	out := make([]models.SchedulerItem, 0, len(items))
	for _, it := range items {
		if !InPeriod(it, w, now) {
			continue
		}
		if !MatchesFacets(it, f) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func MatchesFacets(it models.SchedulerItem, f models.Facets) bool {
	if len(f.Types) > 0 && !contains(f.Types, it.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, it.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, it.Priority) {
		return false
	}
	if f.AssignedTo != "" && it.AssignedTo != f.AssignedTo {
		return false
	}
	if term := strings.TrimSpace(f.Search); term != "" && !matchesSearch(it, term) {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring test over title, description and tags.
func matchesSearch(it models.SchedulerItem, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(it.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(it.Description), term) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// BucketGroup is one due-date group of the list view.
type BucketGroup struct {
	Bucket Bucket                 `json:"bucket"`
	Title  string                 `json:"title"`
	Items  []models.SchedulerItem `json:"items"`
}

// Grouping always holds all five buckets in render order.
type Grouping []BucketGroup

// NonEmpty drops the groups with no items.
func (g Grouping) NonEmpty() Grouping {
	out := make(Grouping, 0, len(g))
	for _, grp := range g {
		if len(grp.Items) > 0 {
			out = append(out, grp)
		}
	}
	return out
}

func (g Grouping) Get(b Bucket) []models.SchedulerItem {
	for _, grp := range g {
		if grp.Bucket == b {
			return grp.Items
		}
	}
	return nil
}

// GroupByDueDate partitions items into the five buckets, keeping input order inside each.
func GroupByDueDate(items []models.SchedulerItem, now time.Time) Grouping {
	buckets := AllBuckets()
	index := make(map[Bucket]int, len(buckets))
	out := make(Grouping, len(buckets))
	for i, b := range buckets {
		index[b] = i
		out[i] = BucketGroup{Bucket: b, Title: b.Title(), Items: []models.SchedulerItem{}}
	}
	for _, it := range items {
		i := index[BucketOf(it, now)]
		out[i].Items = append(out[i].Items, it)
	}
	return out
}

// ParseFacets builds facets from comma-separated query values.
// Unknown enum values are rejected.
func ParseFacets(types, statuses, priorities, assignedTo, search string) (models.Facets, error) {
	var f models.Facets
	for _, v := range splitList(types) {
		t, err := models.ParseItemType(v)
		if err != nil {
			return models.Facets{}, fmt.Errorf("facet type: %w", err)
		}
		f.Types = append(f.Types, t)
	}
	for _, v := range splitList(statuses) {
		s, err := models.ParseItemStatus(v)
		if err != nil {
			return models.Facets{}, fmt.Errorf("facet status: %w", err)
		}
		f.Statuses = append(f.Statuses, s)
	}
	for _, v := range splitList(priorities) {
		p, err := models.ParsePriority(v)
		if err != nil {
			return models.Facets{}, fmt.Errorf("facet priority: %w", err)
		}
		f.Priorities = append(f.Priorities, p)
	}
	f.AssignedTo = strings.TrimSpace(assignedTo)
	f.Search = strings.TrimSpace(search)
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
