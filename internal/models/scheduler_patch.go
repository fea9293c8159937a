package models

import "time"

// ItemPatch is a partial update; nil fields are left untouched.
type ItemPatch struct {
	Title             *string     `json:"title,omitempty"`
	Description       *string     `json:"description,omitempty"`
	Status            *ItemStatus `json:"status,omitempty"`
	Priority          *Priority   `json:"priority,omitempty"`
	DueDate           *time.Time  `json:"due_date,omitempty"`
	DueTime           *string     `json:"due_time,omitempty"`
	AssignedTo        *string     `json:"assigned_to,omitempty"`
	AssignedToName    *string     `json:"assigned_to_name,omitempty"`
	EstimatedDuration *int        `json:"estimated_duration,omitempty"`
	Tags              *[]string   `json:"tags,omitempty"`
}

func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.DueDate == nil && p.DueTime == nil && p.AssignedTo == nil && p.AssignedToName == nil &&
		p.EstimatedDuration == nil && p.Tags == nil
}

// ApplyTo writes the set fields onto item. completed_at is not touched.
func (p ItemPatch) ApplyTo(item *SchedulerItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Priority != nil {
		item.Priority = *p.Priority
	}
	if p.DueDate != nil {
		item.DueDate = *p.DueDate
	}
	if p.DueTime != nil {
		item.DueTime = *p.DueTime
	}
	if p.AssignedTo != nil {
		item.AssignedTo = *p.AssignedTo
	}
	if p.AssignedToName != nil {
		item.AssignedToName = *p.AssignedToName
	}
	if p.EstimatedDuration != nil {
		v := *p.EstimatedDuration
		item.EstimatedDuration = &v
	}
	if p.Tags != nil {
		item.Tags = append([]string(nil), (*p.Tags)...)
	}
}

type WriteKind string

const (
	WriteUpdate   WriteKind = "update"
	WriteStatus   WriteKind = "status"
	WriteComplete WriteKind = "complete"
)

// PendingWrite is one local mutation not yet persisted anywhere.
type PendingWrite struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"item_id"`
	Kind        WriteKind  `json:"kind"`
	Patch       ItemPatch  `json:"patch"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	At          time.Time  `json:"at"`
}
