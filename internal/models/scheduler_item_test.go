package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowJSON = `{
	"id": "wf-1",
	"type": "workflow",
	"title": "Certification approval",
	"status": "in-progress",
	"priority": "high",
	"due_date": "2025-03-14T00:00:00Z",
	"created_at": "2025-03-01T08:00:00Z",
	"updated_at": "2025-03-10T08:00:00Z",
	"tags": ["iso-9001"],
	"workflow_type": "certification",
	"completion_rate": 50,
	"current_step": 2,
	"steps": [
		{"id": "s1", "title": "Draft", "status": "completed", "approval_required": false},
		{"id": "s2", "title": "Review", "status": "in-progress", "approval_required": true}
	]
}`

func TestSchedulerItem_UnmarshalByDiscriminator(t *testing.T) {
	var it SchedulerItem
	require.NoError(t, json.Unmarshal([]byte(workflowJSON), &it))

	assert.Equal(t, TypeWorkflow, it.Type)
	assert.Equal(t, PriorityHigh, it.Priority)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), it.DueDate.UTC())
	wf, ok := it.Details.(WorkflowDetails)
	require.True(t, ok)
	assert.Equal(t, "certification", wf.WorkflowType)
	assert.Equal(t, 2, wf.CurrentStep)
	require.Len(t, wf.Steps, 2)
	assert.True(t, wf.Steps[1].ApprovalRequired)
	assert.NoError(t, it.Validate())
}

func TestSchedulerItem_MarshalFlattensVariant(t *testing.T) {
	var it SchedulerItem
	require.NoError(t, json.Unmarshal([]byte(workflowJSON), &it))

	out, err := json.Marshal(it)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "workflow", fields["type"])
	assert.Equal(t, "certification", fields["workflow_type"])
	assert.EqualValues(t, 50, fields["completion_rate"])

	var back SchedulerItem
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, it.Details, back.Details)
}

func TestSchedulerItem_UnknownType(t *testing.T) {
	var it SchedulerItem
	err := json.Unmarshal([]byte(`{"id":"x","type":"meeting","title":"sync"}`), &it)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedItemShape))
}

func validChecklist() SchedulerItem {
	return SchedulerItem{
		ID:       "c1",
		Type:     TypeChecklist,
		Title:    "Pre-audit checklist",
		Status:   StatusInProgress,
		Priority: PriorityMedium,
		DueDate:  time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Details: ChecklistDetails{
			TemplateName:   "ISO intake",
			CompletionRate: 40,
			Items:          []ChecklistEntry{{ID: "1", Completed: true}, {ID: "2", Completed: true}, {ID: "3"}},
		},
	}
}

func TestSchedulerItem_Validate(t *testing.T) {
	// the stored rate disagrees with the entries and is still accepted
	require.NoError(t, validChecklist().Validate())

	neg := -5
	tests := []struct {
		name   string
		mutate func(*SchedulerItem)
	}{
		{"empty id", func(it *SchedulerItem) { it.ID = "" }},
		{"unknown status", func(it *SchedulerItem) { it.Status = "done" }},
		{"unknown priority", func(it *SchedulerItem) { it.Priority = "urgent" }},
		{"no due date", func(it *SchedulerItem) { it.DueDate = time.Time{} }},
		{"negative duration", func(it *SchedulerItem) { it.EstimatedDuration = &neg }},
		{"missing details", func(it *SchedulerItem) { it.Details = nil }},
		{"variant mismatch", func(it *SchedulerItem) { it.Details = TaskDetails{} }},
		{"rate out of range", func(it *SchedulerItem) { it.Details = ChecklistDetails{CompletionRate: 140} }},
		{"workflow step out of range", func(it *SchedulerItem) {
			it.Type = TypeWorkflow
			it.Details = WorkflowDetails{CurrentStep: 3, Steps: []WorkflowStep{{ID: "a", Status: StepNotStarted}}}
		}},
		{"audit without client", func(it *SchedulerItem) {
			it.Type = TypeAuditActivity
			it.Details = AuditActivityDetails{Standard: "ISO 9001"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validChecklist()
			tt.mutate(&it)
			err := it.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnrecognizedItemShape)
		})
	}
}

func TestSchedulerItem_CloneIsDeep(t *testing.T) {
	done := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	orig := validChecklist()
	orig.Tags = []string{"a"}
	orig.CompletedAt = &done

	cp := orig.Clone()
	cp.Tags[0] = "changed"
	*cp.CompletedAt = done.Add(time.Hour)
	cp.Details.(ChecklistDetails).Items[0].Completed = false

	assert.Equal(t, "a", orig.Tags[0])
	assert.Equal(t, done, *orig.CompletedAt)
	assert.True(t, orig.Details.(ChecklistDetails).Items[0].Completed)
}

func TestItemPatch(t *testing.T) {
	assert.True(t, ItemPatch{}.IsEmpty())

	title := "New"
	tags := []string{"x", "y"}
	p := ItemPatch{Title: &title, Tags: &tags}
	require.False(t, p.IsEmpty())

	it := validChecklist()
	p.ApplyTo(&it)
	assert.Equal(t, "New", it.Title)
	assert.Equal(t, []string{"x", "y"}, it.Tags)
	assert.Equal(t, StatusInProgress, it.Status)
	assert.Nil(t, it.CompletedAt)

	tags[0] = "mutated"
	assert.Equal(t, "x", it.Tags[0])
}

func TestParseEnums(t *testing.T) {
	_, err := ParseItemType("meeting")
	assert.Error(t, err)
	st, err := ParseItemStatus("blocked")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, st)
	_, err = ParseViewMode("timeline")
	assert.Error(t, err)
	assert.Less(t, PriorityCritical.Rank(), PriorityLow.Rank())
	assert.Equal(t, 4, Priority("urgent").Rank())
}
