package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"

	"bizdash/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNothingDragged    = errors.New("no item is being dragged")
)

// KanbanColumn is recomputed on every render and never stored.
type KanbanColumn struct {
	ID     string                 `json:"id"`
	Title  string                 `json:"title"`
	Status models.ItemStatus      `json:"status"`
	Items  []models.SchedulerItem `json:"items"`
	Color  string                 `json:"color"`
}

// KanbanBoard lists the five stage columns. Items stored as overdue match no
// column and are returned in Unstaged. DropTargets maps each card to the
// columns it may be dropped on under the board's policy.
type KanbanBoard struct {
	Columns     []KanbanColumn                 `json:"columns"`
	Unstaged    []models.SchedulerItem         `json:"unstaged,omitempty"`
	DropTargets map[string][]models.ItemStatus `json:"drop_targets"`
}

type columnDef struct {
	status models.ItemStatus
	title  string
	color  string
}

var kanbanColumns = []columnDef{
	{models.StatusNotStarted, "Not Started", "gray"},
	{models.StatusInProgress, "In Progress", "blue"},
	{models.StatusReview, "Review", "yellow"},
	{models.StatusBlocked, "Blocked", "red"},
	{models.StatusCompleted, "Completed", "green"},
}

// KanbanStatuses returns the drop targets in column order.
func KanbanStatuses() []models.ItemStatus {
	out := make([]models.ItemStatus, 0, len(kanbanColumns))
	for _, c := range kanbanColumns {
		out = append(out, c.status)
	}
	return out
}

func RenderKanban(items []models.SchedulerItem, policy TransitionPolicy) KanbanBoard {
	board := KanbanBoard{
		Columns:     make([]KanbanColumn, len(kanbanColumns)),
		DropTargets: make(map[string][]models.ItemStatus, len(items)),
	}
	index := make(map[models.ItemStatus]int, len(kanbanColumns))
	for i, c := range kanbanColumns {
		index[c.status] = i
		board.Columns[i] = KanbanColumn{
			ID:     string(c.status),
			Title:  c.title,
			Status: c.status,
			Items:  []models.SchedulerItem{},
			Color:  c.color,
		}
	}
	for _, it := range SortForDisplay(items) {
		board.DropTargets[it.ID] = AllowedTargets(it.Status, policy)
		i, ok := index[it.Status]
		if !ok {
			board.Unstaged = append(board.Unstaged, it)
			continue
		}
		board.Columns[i].Items = append(board.Columns[i].Items, it)
	}
	return board
}

// Move is a committed drop.
type Move struct {
	ItemID string            `json:"item_id"`
	To     models.ItemStatus `json:"to"`
}

// DragState tracks the item picked up on the board.
type DragState struct {
	itemID string
}

func (d *DragState) Start(itemID string) {
	d.itemID = itemID
}

func (d *DragState) Cancel() {
	d.itemID = ""
}

func (d *DragState) Dragged() (string, bool) {
	return d.itemID, d.itemID != ""
}

// Drop resolves the dragged item against a column. The drag stays active; the
// caller clears it with Cancel once the move has been applied.
func (d *DragState) Drop(to models.ItemStatus) (Move, error) {
	if d.itemID == "" {
		return Move{}, ErrNothingDragged
	}
	if !isColumnStatus(to) {
		return Move{}, fmt.Errorf("%w: %q is not a board column", ErrInvalidTransition, to)
	}
	return Move{ItemID: d.itemID, To: to}, nil
}

func isColumnStatus(s models.ItemStatus) bool {
	for _, c := range kanbanColumns {
		if c.status == s {
			return true
		}
	}
	return false
}

// TransitionPolicy decides which stage moves are accepted.
type TransitionPolicy string

const (
	// PolicyPermissive accepts any stage to any stage and leaves completed_at alone.
	PolicyPermissive TransitionPolicy = "permissive"
	// PolicyStrict follows the stage graph and keeps completed_at in sync with status.
	PolicyStrict TransitionPolicy = "strict"
)

func ParseTransitionPolicy(s string) (TransitionPolicy, error) {
	switch TransitionPolicy(s) {
	case PolicyPermissive, PolicyStrict:
		return TransitionPolicy(s), nil
	case "":
		return PolicyPermissive, nil
	}
	return "", fmt.Errorf("invalid transition policy: %q", s)
}

// Transition moves item to status `to` under the policy.
func Transition(item *models.SchedulerItem, to models.ItemStatus, policy TransitionPolicy, now time.Time) error {
	if !isColumnStatus(to) {
		return fmt.Errorf("%w: %q is not a stage", ErrInvalidTransition, to)
	}
	if policy == PolicyStrict {
		if err := checkStrict(item.Status, to); err != nil {
			return err
		}
	}

	item.Status = to
	if policy == PolicyStrict {
		switch {
		case to == models.StatusCompleted && item.CompletedAt == nil:
			t := now
			item.CompletedAt = &t
		case to != models.StatusCompleted:
			item.CompletedAt = nil
		}
	}
	return nil
}

// Stage state ids match the ItemStatus values.
const (
	stageNotStarted = "not-started"
	stageInProgress = "in-progress"
	stageReview     = "review"
	stageBlocked    = "blocked"
	stageCompleted  = "completed"
)

const (
	evToNotStarted = "to-not-started"
	evToInProgress = "to-in-progress"
	evToReview     = "to-review"
	evToBlocked    = "to-blocked"
	evToCompleted  = "to-completed"
)

// stageContext is unused by the guards but required by statekit.
type stageContext struct {
	ItemID string
}

func buildStageMachine(initial string) (*statekit.Interpreter[stageContext], error) {
	builder := statekit.NewMachine[stageContext]("kanban-stage").
		WithInitial(statekit.StateID(initial)).
		WithContext(stageContext{})

	builder.State(stageNotStarted).
		On(evToInProgress).Target(stageInProgress).
		On(evToBlocked).Target(stageBlocked).
		Done()

	builder.State(stageInProgress).
		On(evToNotStarted).Target(stageNotStarted).
		On(evToReview).Target(stageReview).
		On(evToBlocked).Target(stageBlocked).
		On(evToCompleted).Target(stageCompleted).
		Done()

	builder.State(stageReview).
		On(evToInProgress).Target(stageInProgress).
		On(evToBlocked).Target(stageBlocked).
		On(evToCompleted).Target(stageCompleted).
		Done()

	builder.State(stageBlocked).
		On(evToNotStarted).Target(stageNotStarted).
		On(evToInProgress).Target(stageInProgress).
		Done()

	// reopen
	builder.State(stageCompleted).
		On(evToInProgress).Target(stageInProgress).
		On(evToReview).Target(stageReview).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build stage machine: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}

func checkStrict(from, to models.ItemStatus) error {
	if from == to {
		return nil
	}
	// a stored overdue item has not been started from the board's point of view
	if from == models.StatusOverdue {
		from = models.StatusNotStarted
	}
	if !isColumnStatus(from) {
		return fmt.Errorf("%w: unknown current status %q", ErrInvalidTransition, from)
	}

	interp, err := buildStageMachine(string(from))
	if err != nil {
		return err
	}
	interp.Send(statekit.Event{Type: statekit.EventType("to-" + string(to))})
	if string(interp.State().Value) != string(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// AllowedTargets lists the columns reachable from `from` in one drop.
func AllowedTargets(from models.ItemStatus, policy TransitionPolicy) []models.ItemStatus {
	var out []models.ItemStatus
	for _, to := range KanbanStatuses() {
		if to == from {
			continue
		}
		if policy == PolicyStrict && checkStrict(from, to) != nil {
			continue
		}
		out = append(out, to)
	}
	return out
}
