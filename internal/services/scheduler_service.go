// internal/services/scheduler_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"bizdash/internal/models"
	"bizdash/internal/scheduler"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyPatch    = errors.New("empty patch")
	ErrUnknownScope  = errors.New("unknown stats scope")
	ErrInvalidField  = errors.New("invalid field")
)

// ItemSource is the fetch contract of the remote scheduler data.
type ItemSource interface {
	GetSchedulerItems(ctx context.Context, params models.FetchParams) ([]models.SchedulerItem, error)
}

// Persister receives local mutations when the pending-write log is flushed.
type Persister interface {
	ApplyPendingWrite(ctx context.Context, w models.PendingWrite) error
}

// StatsScope picks which collection a stats snapshot is computed over.
type StatsScope string

const (
	ScopeFiltered StatsScope = "filtered" // time window + facets
	ScopeWindow   StatsScope = "window"   // time window only
	ScopeAll      StatsScope = "all"      // everything fetched
)

type SchedulerOptions struct {
	Policy              scheduler.TransitionPolicy
	OverdueLookbackDays int
	AllHorizonYears     int
	Location            *time.Location
	Clock               func() time.Time

	// initial page state, applied before the first fetch
	Period models.TimePeriod
	Facets models.Facets
}

type RenderOptions struct {
	View           models.ViewMode // overrides the session view when set
	GroupByDueDate bool
	MonthOffset    int
}

// PageView is everything the page needs for one render.
type PageView struct {
	Period    models.TimePeriod       `json:"period"`
	Facets    models.Facets           `json:"facets"`
	View      models.ViewMode         `json:"view"`
	Loading   bool                    `json:"loading"`
	Error     string                  `json:"error,omitempty"`
	Rejected  int                     `json:"rejected"`
	FetchedAt *time.Time              `json:"fetched_at,omitempty"`
	Dragging  string                  `json:"dragging,omitempty"`
	Pending   int                     `json:"pending_writes"`
	Stats     *models.Stats           `json:"stats,omitempty"`
	List      *scheduler.ListView     `json:"list,omitempty"`
	Kanban    *scheduler.KanbanBoard  `json:"kanban,omitempty"`
	Calendar  *scheduler.CalendarView `json:"calendar,omitempty"`
}

// SchedulerService is the page controller: it owns the fetched collection and
// the active period, facets and view, and applies the mutation intents.
type SchedulerService interface {
	SetTimePeriod(ctx context.Context, p models.TimePeriod) error
	SetFacets(ctx context.Context, f models.Facets) error
	SetView(v models.ViewMode) error
	Refresh(ctx context.Context) error

	Items() []models.SchedulerItem
	Filtered() []models.SchedulerItem
	Render(opts RenderOptions) PageView
	Stats(scope StatsScope) (models.Stats, error)
	FetchParams() models.FetchParams

	UpdateItem(id string, patch models.ItemPatch) (*models.SchedulerItem, error)
	ChangeStatus(id string, to models.ItemStatus) (*models.SchedulerItem, error)
	CompleteItem(id string) (*models.SchedulerItem, error)
	StartDrag(id string) error
	Drop(to models.ItemStatus) (*models.SchedulerItem, error)

	PendingWrites() []models.PendingWrite
	FlushPendingWrites(ctx context.Context, p Persister) (int, error)
}

type schedulerService struct {
	source ItemSource
	opts   SchedulerOptions

	flushMu sync.Mutex // one flush at a time

	mu        sync.Mutex
	items     []models.SchedulerItem
	period    models.TimePeriod
	facets    models.Facets
	view      models.ViewMode
	loading   bool
	lastErr   error
	rejected  int
	fetchedAt *time.Time
	seq       uint64 // last issued fetch
	drag      scheduler.DragState
	pending   []models.PendingWrite
}

func NewSchedulerService(source ItemSource, opts SchedulerOptions) SchedulerService {
	if opts.Policy == "" {
		opts.Policy = scheduler.PolicyPermissive
	}
	if opts.OverdueLookbackDays <= 0 {
		opts.OverdueLookbackDays = 30
	}
	if opts.AllHorizonYears <= 0 {
		opts.AllHorizonYears = 5
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if !opts.Period.IsValid() {
		opts.Period = models.PeriodWeek
	}
	return &schedulerService{
		source: source,
		opts:   opts,
		period: opts.Period,
		facets: opts.Facets,
		view:   models.ViewList,
	}
}

func (s *schedulerService) now() time.Time {
	return s.opts.Clock().In(s.opts.Location)
}

func (s *schedulerService) SetTimePeriod(ctx context.Context, p models.TimePeriod) error {
	if !p.IsValid() {
		return fmt.Errorf("set period: invalid %q", p)
	}
	s.mu.Lock()
	s.period = p
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *schedulerService) SetFacets(ctx context.Context, f models.Facets) error {
	s.mu.Lock()
	s.facets = f
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *schedulerService) SetView(v models.ViewMode) error {
	if !v.IsValid() {
		return fmt.Errorf("set view: invalid %q", v)
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return nil
}

func (s *schedulerService) FetchParams() models.FetchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchParamsLocked(s.now())
}

// fetchParamsLocked mirrors the local window at the fetch layer. The start is
// pulled back by the overdue lookback so still-open past work arrives too.
// Facets are never sent upstream.
func (s *schedulerService) fetchParamsLocked(now time.Time) models.FetchParams {
	today := scheduler.Today(now)
	if s.period == models.PeriodAll {
		return models.FetchParams{
			StartDate: today.AddDate(-s.opts.AllHorizonYears, 0, 0),
			EndDate:   today.AddDate(s.opts.AllHorizonYears, 0, 0),
		}
	}
	w := scheduler.WindowFor(s.period, now)
	return models.FetchParams{
		StartDate: today.AddDate(0, 0, -s.opts.OverdueLookbackDays),
		EndDate:   w.End.AddDate(0, 0, -1),
	}
}

// Refresh fetches the collection for the current period. Only the response of
// the latest issued request is applied; older ones are dropped. On error the
// previous collection is kept.
func (s *schedulerService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	params := s.fetchParamsLocked(s.now())
	s.loading = true
	s.mu.Unlock()

	log.Printf("[scheduler][refresh] seq=%d start=%s end=%s", mine, params.StartISO(), params.EndISO())
	fetched, err := s.source.GetSchedulerItems(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if mine != s.seq {
		log.Printf("[scheduler][refresh][stale] seq=%d latest=%d dropped", mine, s.seq)
		return nil
	}
	s.loading = false
	if err != nil {
		log.Printf("[scheduler][refresh][err] seq=%d: %v", mine, err)
		s.lastErr = err
		return fmt.Errorf("fetch scheduler items: %w", err)
	}

	kept := make([]models.SchedulerItem, 0, len(fetched))
	rejected := 0
	for _, it := range fetched {
		if verr := it.Validate(); verr != nil {
			log.Printf("[scheduler][ingest][skip] %v", verr)
			rejected++
			continue
		}
		kept = append(kept, it.Clone())
	}
	at := s.now()
	s.items = kept
	s.rejected = rejected
	s.lastErr = nil
	s.fetchedAt = &at
	s.drag.Cancel()
	log.Printf("[scheduler][refresh][ok] seq=%d count=%d rejected=%d", mine, len(kept), rejected)
	return nil
}

func (s *schedulerService) Items() []models.SchedulerItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.items)
}

func (s *schedulerService) Filtered() []models.SchedulerItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(scheduler.Filter(s.items, s.period, s.facets, s.now()))
}

func (s *schedulerService) Stats(scope StatsScope) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	switch scope {
	case ScopeFiltered, "":
		return scheduler.Summarize(scheduler.Filter(s.items, s.period, s.facets, now), now), nil
	case ScopeWindow:
		return scheduler.Summarize(scheduler.Filter(s.items, s.period, models.Facets{}, now), now), nil
	case ScopeAll:
		return scheduler.Summarize(s.items, now), nil
	}
	return models.Stats{}, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
}

func (s *schedulerService) Render(opts RenderOptions) PageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.view
	if opts.View != "" {
		view = opts.View
	}
	pv := PageView{
		Period:   s.period,
		Facets:   s.facets,
		View:     view,
		Loading:  s.loading,
		Rejected: s.rejected,
		Pending:  len(s.pending),
	}
	if s.fetchedAt != nil {
		at := *s.fetchedAt
		pv.FetchedAt = &at
	}
	if id, ok := s.drag.Dragged(); ok {
		pv.Dragging = id
	}
	if s.loading {
		return pv
	}
	if s.lastErr != nil {
		pv.Error = "failed to load scheduler items"
		return pv
	}

	now := s.now()
	filtered := cloneAll(scheduler.Filter(s.items, s.period, s.facets, now))

	// the header stats follow what the user is looking at: window and facets applied
	st := scheduler.Summarize(filtered, now)
	pv.Stats = &st

	switch view {
	case models.ViewKanban:
		board := scheduler.RenderKanban(filtered, s.opts.Policy)
		pv.Kanban = &board
	case models.ViewCalendar:
		cal := scheduler.RenderCalendar(filtered, now, opts.MonthOffset)
		pv.Calendar = &cal
	default:
		list := scheduler.RenderList(filtered, now, opts.GroupByDueDate)
		pv.List = &list
	}
	return pv
}

func (s *schedulerService) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *schedulerService) UpdateItem(id string, patch models.ItemPatch) (*models.SchedulerItem, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidField, *patch.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	now := s.now()
	updated := s.items[i].Clone()

	rest := patch
	if patch.Status != nil {
		if err := s.transition(&updated, *patch.Status, now); err != nil {
			return nil, err
		}
		rest.Status = nil
	}
	rest.ApplyTo(&updated)
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	updated.UpdatedAt = now

	s.items[i] = updated
	s.record(models.WriteUpdate, id, patch, updated.CompletedAt, now)
	log.Printf("[scheduler][update][ok] id=%s", id)
	out := updated.Clone()
	return &out, nil
}

func (s *schedulerService) ChangeStatus(id string, to models.ItemStatus) (*models.SchedulerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeStatusLocked(id, to)
}

func (s *schedulerService) changeStatusLocked(id string, to models.ItemStatus) (*models.SchedulerItem, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	now := s.now()
	updated := s.items[i].Clone()
	from := updated.Status
	if err := s.transition(&updated, to, now); err != nil {
		log.Printf("[scheduler][status][deny] id=%s from=%q to=%q: %v", id, from, to, err)
		return nil, err
	}
	updated.UpdatedAt = now

	s.items[i] = updated
	s.record(models.WriteStatus, id, models.ItemPatch{Status: &to}, updated.CompletedAt, now)
	log.Printf("[scheduler][status][ok] id=%s from=%q to=%q", id, from, to)
	out := updated.Clone()
	return &out, nil
}

func (s *schedulerService) transition(item *models.SchedulerItem, to models.ItemStatus, now time.Time) error {
	if !to.IsValid() || to == models.StatusOverdue {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	return scheduler.Transition(item, to, s.opts.Policy, now)
}

// CompleteItem marks the item completed and stamps completed_at. It is the
// explicit completion intent and is accepted from any stage.
func (s *schedulerService) CompleteItem(id string) (*models.SchedulerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	now := s.now()
	updated := s.items[i].Clone()
	updated.Status = models.StatusCompleted
	if updated.CompletedAt == nil {
		t := now
		updated.CompletedAt = &t
	}
	updated.UpdatedAt = now

	s.items[i] = updated
	st := models.StatusCompleted
	s.record(models.WriteComplete, id, models.ItemPatch{Status: &st}, updated.CompletedAt, now)
	log.Printf("[scheduler][complete][ok] id=%s", id)
	out := updated.Clone()
	return &out, nil
}

func (s *schedulerService) StartDrag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	s.drag.Start(id)
	return nil
}

// Drop commits the dragged item to the column and routes it through ChangeStatus.
// A rejected move keeps the card in hand.
func (s *schedulerService) Drop(to models.ItemStatus) (*models.SchedulerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	move, err := s.drag.Drop(to)
	if err != nil {
		return nil, err
	}
	out, err := s.changeStatusLocked(move.ItemID, move.To)
	if err != nil {
		return nil, err
	}
	s.drag.Cancel()
	return out, nil
}

func (s *schedulerService) record(kind models.WriteKind, itemID string, patch models.ItemPatch, completedAt *time.Time, at time.Time) {
	w := models.PendingWrite{
		ID:     uuid.New().String(),
		ItemID: itemID,
		Kind:   kind,
		Patch:  patch,
		At:     at,
	}
	if completedAt != nil {
		t := *completedAt
		w.CompletedAt = &t
	}
	s.pending = append(s.pending, w)
}

func (s *schedulerService) PendingWrites() []models.PendingWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PendingWrite(nil), s.pending...)
}

// FlushPendingWrites hands the log to p in order. It stops at the first failure;
// the failed write and everything after it stay queued. Concurrent flushes run
// one after the other, so each write is handed over once.
func (s *schedulerService) FlushPendingWrites(ctx context.Context, p Persister) (int, error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	batch := s.PendingWrites()

	done := 0
	var flushErr error
	for _, w := range batch {
		if err := p.ApplyPendingWrite(ctx, w); err != nil {
			log.Printf("[scheduler][flush][err] write=%s item=%s: %v", w.ID, w.ItemID, err)
			flushErr = fmt.Errorf("flush write %s: %w", w.ID, err)
			break
		}
		done++
	}

	remaining := s.dropApplied(batch[:done])
	log.Printf("[scheduler][flush] applied=%d remaining=%d", done, remaining)
	return done, flushErr
}

// dropApplied removes the given writes from the log by id and keeps the rest,
// including anything recorded while the flush ran.
func (s *schedulerService) dropApplied(applied []models.PendingWrite) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(applied) == 0 {
		return len(s.pending)
	}
	gone := make(map[string]struct{}, len(applied))
	for _, w := range applied {
		gone[w.ID] = struct{}{}
	}
	kept := make([]models.PendingWrite, 0, len(s.pending))
	for _, w := range s.pending {
		if _, ok := gone[w.ID]; !ok {
			kept = append(kept, w)
		}
	}
	s.pending = kept
	return len(kept)
}

func cloneAll(items []models.SchedulerItem) []models.SchedulerItem {
	out := make([]models.SchedulerItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// SessionStore keeps one scheduler page per user.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]SchedulerService
	factory  func() SchedulerService
}

func NewSessionStore(factory func() SchedulerService) *SessionStore {
	return &SessionStore{sessions: make(map[string]SchedulerService), factory: factory}
}

// Get returns the user's session and whether it was just created.
func (st *SessionStore) Get(userKey string) (SchedulerService, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[userKey]; ok {
		return s, false
	}
	s := st.factory()
	st.sessions[userKey] = s
	return s, true
}

func (st *SessionStore) Drop(userKey string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userKey)
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
