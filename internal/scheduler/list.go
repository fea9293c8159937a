package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bizdash/internal/models"
)

// ListRow is one rendered line of the list view.
type ListRow struct {
	Item          models.SchedulerItem `json:"item"`
	DisplayStatus models.ItemStatus    `json:"display_status"`
	Bucket        Bucket               `json:"bucket"`
	Subtitle      string               `json:"subtitle"`
}

type ListGroup struct {
	Bucket Bucket    `json:"bucket"`
	Title  string    `json:"title"`
	Rows   []ListRow `json:"rows"`
}

// ListView holds either flat rows or the non-empty bucket groups.
// BucketCounts always carries all five buckets.
type ListView struct {
	Grouped      bool           `json:"grouped"`
	Rows         []ListRow      `json:"rows,omitempty"`
	Groups       []ListGroup    `json:"groups,omitempty"`
	BucketCounts map[Bucket]int `json:"bucket_counts"`
}

func RenderList(items []models.SchedulerItem, now time.Time, groupByDueDate bool) ListView {
	sorted := SortForDisplay(items)
	grouping := GroupByDueDate(sorted, now)

	view := ListView{Grouped: groupByDueDate, BucketCounts: make(map[Bucket]int, len(grouping))}
	for _, g := range grouping {
		view.BucketCounts[g.Bucket] = len(g.Items)
	}

	if !groupByDueDate {
		view.Rows = rowsOf(sorted, now)
		return view
	}
	for _, g := range grouping.NonEmpty() {
		view.Groups = append(view.Groups, ListGroup{
			Bucket: g.Bucket,
			Title:  g.Title,
			Rows:   rowsOf(g.Items, now),
		})
	}
	return view
}

func rowsOf(items []models.SchedulerItem, now time.Time) []ListRow {
	rows := make([]ListRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, ListRow{
			Item:          it,
			DisplayStatus: DisplayStatus(it, now),
			Bucket:        BucketOf(it, now),
			Subtitle:      Subtitle(it),
		})
	}
	return rows
}

// SortForDisplay orders by due date, then priority (critical first), then title.
// It returns a new slice.
func SortForDisplay(items []models.SchedulerItem) []models.SchedulerItem {
	out := append([]models.SchedulerItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		return a.Title < b.Title
	})
	return out
}

// Subtitle renders the variant-specific secondary line.
func Subtitle(it models.SchedulerItem) string {
	switch d := it.Details.(type) {
	case models.TaskDetails:
		done := 0
		for _, s := range d.Subtasks {
			if s.Completed {
				done++
			}
		}
		if len(d.Subtasks) == 0 {
			return d.Category
		}
		return fmt.Sprintf("%s · %d/%d subtasks", d.Category, done, len(d.Subtasks))
	case models.AuditActivityDetails:
		parts := []string{d.ClientName, d.Standard, d.ActivityType}
		if d.Location != "" {
			parts = append(parts, d.Location)
		}
		return joinNonEmpty(parts)
	case models.ChecklistDetails:
		return fmt.Sprintf("%s · %d%% complete", d.TemplateName, d.CompletionRate)
	case models.WorkflowDetails:
		return fmt.Sprintf("%s · step %d of %d · %d%%", d.WorkflowType, d.CurrentStep, len(d.Steps), d.CompletionRate)
	case nil:
		return ""
	}
	return string(it.Type)
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}
