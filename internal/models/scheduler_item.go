// internal/models/scheduler_item.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnrecognizedItemShape is returned when an ingested item cannot be trusted.
var ErrUnrecognizedItemShape = errors.New("unrecognized item shape")

// ItemType discriminates the item variant.
type ItemType string

const (
	TypeTask          ItemType = "task"
	TypeAuditActivity ItemType = "audit-activity"
	TypeChecklist     ItemType = "checklist"
	TypeWorkflow      ItemType = "workflow"
)

func AllItemTypes() []ItemType {
	return []ItemType{TypeTask, TypeAuditActivity, TypeChecklist, TypeWorkflow}
}

func (t ItemType) IsValid() bool {
	switch t {
	case TypeTask, TypeAuditActivity, TypeChecklist, TypeWorkflow:
		return true
	}
	return false
}

func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid item type: %q", s)
	}
	return t, nil
}

// ItemStatus is the stored lifecycle state of an item.
type ItemStatus string

const (
	StatusNotStarted ItemStatus = "not-started"
	StatusInProgress ItemStatus = "in-progress"
	StatusReview     ItemStatus = "review"
	StatusCompleted  ItemStatus = "completed"
	StatusBlocked    ItemStatus = "blocked"
	// StatusOverdue is derived for display; upstream may still send it.
	StatusOverdue ItemStatus = "overdue"
)

func AllItemStatuses() []ItemStatus {
	return []ItemStatus{
		StatusNotStarted,
		StatusInProgress,
		StatusReview,
		StatusCompleted,
		StatusBlocked,
		StatusOverdue,
	}
}

func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusReview, StatusCompleted, StatusBlocked, StatusOverdue:
		return true
	}
	return false
}

func ParseItemStatus(s string) (ItemStatus, error) {
	st := ItemStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid item status: %q", s)
	}
	return st, nil
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func AllPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting: critical is 0, low is 3, unknown sorts last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %q", s)
	}
	return p, nil
}

// SchedulerItem is the common envelope of every schedulable unit of work.
// Details holds the variant and must agree with Type.
type SchedulerItem struct {
	ID                string      `json:"id"`
	Type              ItemType    `json:"type"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Status            ItemStatus  `json:"status"`
	Priority          Priority    `json:"priority"`
	DueDate           time.Time   `json:"due_date"`
	DueTime           string      `json:"due_time,omitempty"`
	AssignedTo        string      `json:"assigned_to,omitempty"`
	AssignedToName    string      `json:"assigned_to_name,omitempty"`
	EstimatedDuration *int        `json:"estimated_duration,omitempty"` // minutes
	Tags              []string    `json:"tags,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
	Details           ItemDetails `json:"-"`
}

// ItemDetails is implemented only by the four variant types of this package.
type ItemDetails interface {
	ItemType() ItemType
	cloneDetails() ItemDetails
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type TaskDetails struct {
	Category       string    `json:"category"`
	RelatedAuditID string    `json:"related_audit_id,omitempty"`
	Subtasks       []Subtask `json:"subtasks,omitempty"`
}

func (TaskDetails) ItemType() ItemType { return TypeTask }

func (d TaskDetails) cloneDetails() ItemDetails {
	d.Subtasks = append([]Subtask(nil), d.Subtasks...)
	return d
}

type AuditActivityDetails struct {
	ClientName   string `json:"client_name"`
	Standard     string `json:"standard"`
	ActivityType string `json:"activity_type"`
	Location     string `json:"location,omitempty"`
	LeadAuditor  string `json:"lead_auditor,omitempty"`
}

func (AuditActivityDetails) ItemType() ItemType { return TypeAuditActivity }

func (d AuditActivityDetails) cloneDetails() ItemDetails { return d }

type ChecklistEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Required  bool   `json:"required"`
}

// ChecklistDetails.CompletionRate is stored upstream and never recomputed here.
type ChecklistDetails struct {
	TemplateName   string           `json:"template_name"`
	CompletionRate int              `json:"completion_rate"`
	Items          []ChecklistEntry `json:"items"`
}

func (ChecklistDetails) ItemType() ItemType { return TypeChecklist }

func (d ChecklistDetails) cloneDetails() ItemDetails {
	d.Items = append([]ChecklistEntry(nil), d.Items...)
	return d
}

type StepStatus string

const (
	StepNotStarted StepStatus = "not-started"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
)

func (s StepStatus) IsValid() bool {
	return s == StepNotStarted || s == StepInProgress || s == StepCompleted
}

type WorkflowStep struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Status           StepStatus `json:"status"`
	ApprovalRequired bool       `json:"approval_required"`
}

type WorkflowDetails struct {
	WorkflowType   string         `json:"workflow_type"`
	CompletionRate int            `json:"completion_rate"`
	CurrentStep    int            `json:"current_step"` // 1-based
	Steps          []WorkflowStep `json:"steps"`
}

func (WorkflowDetails) ItemType() ItemType { return TypeWorkflow }

func (d WorkflowDetails) cloneDetails() ItemDetails {
	d.Steps = append([]WorkflowStep(nil), d.Steps...)
	return d
}

func (it SchedulerItem) IsCompleted() bool {
	return it.Status == StatusCompleted
}

// Clone returns a deep copy safe to mutate.
func (it SchedulerItem) Clone() SchedulerItem {
	out := it
	out.Tags = append([]string(nil), it.Tags...)
	if it.EstimatedDuration != nil {
		v := *it.EstimatedDuration
		out.EstimatedDuration = &v
	}
	if it.CompletedAt != nil {
		v := *it.CompletedAt
		out.CompletedAt = &v
	}
	if it.Details != nil {
		out.Details = it.Details.cloneDetails()
	}
	return out
}

// Validate checks the item before it enters the in-memory collection.
func (it SchedulerItem) Validate() error {
	bad := func(field, format string, args ...any) error {
		return fmt.Errorf("%w: item %q: %s: %s", ErrUnrecognizedItemShape, it.ID, field, fmt.Sprintf(format, args...))
	}
	if it.ID == "" {
		return bad("id", "empty")
	}
	if !it.Type.IsValid() {
		return bad("type", "unknown %q", it.Type)
	}
	if it.Title == "" {
		return bad("title", "empty")
	}
	if !it.Status.IsValid() {
		return bad("status", "unknown %q", it.Status)
	}
	if !it.Priority.IsValid() {
		return bad("priority", "unknown %q", it.Priority)
	}
	if it.DueDate.IsZero() {
		return bad("due_date", "missing")
	}
	if it.EstimatedDuration != nil && *it.EstimatedDuration < 0 {
		return bad("estimated_duration", "negative")
	}
	if it.Details == nil {
		return bad("details", "missing for type %q", it.Type)
	}
	if it.Details.ItemType() != it.Type {
		return bad("details", "variant %q does not match type %q", it.Details.ItemType(), it.Type)
	}

	switch d := it.Details.(type) {
	case TaskDetails:
		return nil
	case AuditActivityDetails:
		if d.ClientName == "" {
			return bad("client_name", "empty")
		}
		return nil
	case ChecklistDetails:
		if d.CompletionRate < 0 || d.CompletionRate > 100 {
			return bad("completion_rate", "%d out of range", d.CompletionRate)
		}
		return nil
	case WorkflowDetails:
		if d.CompletionRate < 0 || d.CompletionRate > 100 {
			return bad("completion_rate", "%d out of range", d.CompletionRate)
		}
		if len(d.Steps) > 0 && (d.CurrentStep < 1 || d.CurrentStep > len(d.Steps)) {
			return bad("current_step", "%d outside 1..%d", d.CurrentStep, len(d.Steps))
		}
		for _, s := range d.Steps {
			if !s.Status.IsValid() {
				return bad("steps", "step %q has status %q", s.ID, s.Status)
			}
		}
		return nil
	}
	return bad("details", "unsupported variant %T", it.Details)
}

// envelope mirrors SchedulerItem without methods so the JSON codec does not recurse.
type envelope SchedulerItem

func (it SchedulerItem) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(envelope(it))
	if err != nil {
		return nil, err
	}
	if it.Details == nil {
		return base, nil
	}
	extra, err := json.Marshal(it.Details)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	variant := map[string]json.RawMessage{}
	if err := json.Unmarshal(extra, &variant); err != nil {
		return nil, err
	}
	for k, v := range variant {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func (it *SchedulerItem) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrUnrecognizedItemShape, err)
	}

	details, err := DecodeDetails(env.Type, data)
	if err != nil {
		return fmt.Errorf("item %q: %w", env.ID, err)
	}

	*it = SchedulerItem(env)
	it.Details = details
	return nil
}

// DecodeDetails reads the variant fields for type t out of a JSON object.
func DecodeDetails(t ItemType, data []byte) (ItemDetails, error) {
	var (
		details ItemDetails
		err     error
	)
	switch t {
	case TypeTask:
		var d TaskDetails
		err = json.Unmarshal(data, &d)
		details = d
	case TypeAuditActivity:
		var d AuditActivityDetails
		err = json.Unmarshal(data, &d)
		details = d
	case TypeChecklist:
		var d ChecklistDetails
		err = json.Unmarshal(data, &d)
		details = d
	case TypeWorkflow:
		var d WorkflowDetails
		err = json.Unmarshal(data, &d)
		details = d
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnrecognizedItemShape, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedItemShape, err)
	}
	return details, nil
}
