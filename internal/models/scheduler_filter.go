package models

import (
	"fmt"
	"time"
)

// TimePeriod is the coarse due-date window selected on the page.
type TimePeriod string

const (
	PeriodToday TimePeriod = "today"
	PeriodWeek  TimePeriod = "week"
	PeriodMonth TimePeriod = "month"
	PeriodAll   TimePeriod = "all"
)

func (p TimePeriod) IsValid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return true
	}
	return false
}

func ParseTimePeriod(s string) (TimePeriod, error) {
	p := TimePeriod(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid time period: %q", s)
	}
	return p, nil
}

// ViewMode selects which renderer the page shows.
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewKanban   ViewMode = "kanban"
	ViewCalendar ViewMode = "calendar"
)

func (v ViewMode) IsValid() bool {
	return v == ViewList || v == ViewKanban || v == ViewCalendar
}

func ParseViewMode(s string) (ViewMode, error) {
	v := ViewMode(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid view mode: %q", s)
	}
	return v, nil
}

// Facets are the optional local filters; every non-empty dimension is ANDed.
// An empty slice does not restrict its dimension.
type Facets struct {
	Types      []ItemType   `json:"types,omitempty"`
	Statuses   []ItemStatus `json:"statuses,omitempty"`
	Priorities []Priority   `json:"priorities,omitempty"`
	AssignedTo string       `json:"assigned_to,omitempty"`
	Search     string       `json:"search,omitempty"`
}

func (f Facets) IsZero() bool {
	return len(f.Types) == 0 && len(f.Statuses) == 0 && len(f.Priorities) == 0 &&
		f.AssignedTo == "" && f.Search == ""
}

// FetchParams is the request sent to the item source.
// StartDate and EndDate are inclusive calendar dates.
type FetchParams struct {
	StartDate  time.Time
	EndDate    time.Time
	AssignedTo *string
	Status     *ItemStatus
	Priority   *Priority
	Type       *ItemType
}

const DateLayout = "2006-01-02"

func (p FetchParams) StartISO() string { return p.StartDate.Format(DateLayout) }

func (p FetchParams) EndISO() string { return p.EndDate.Format(DateLayout) }
