package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"bizdash/internal/models"
)

var ErrNotFound = errors.New("not found")

// SchedulerItemRepository serves items from the local scheduler_items table and
// persists flushed pending writes back into it.
type SchedulerItemRepository interface {
	GetSchedulerItems(ctx context.Context, params models.FetchParams) ([]models.SchedulerItem, error)
	ApplyPendingWrite(ctx context.Context, w models.PendingWrite) error
	Upsert(ctx context.Context, it models.SchedulerItem) error
}

type schedulerItemRepository struct {
	db  *sql.DB
	loc *time.Location // zone of the business calendar
}

// NewSchedulerItemRepository reads due_date values as calendar days in loc.
// A nil loc means time.Local.
func NewSchedulerItemRepository(db *sql.DB, loc *time.Location) SchedulerItemRepository {
	if loc == nil {
		loc = time.Local
	}
	return &schedulerItemRepository{db: db, loc: loc}
}

const itemColumns = `id, type, title, COALESCE(description,''), status, priority, due_date,
       COALESCE(due_time,''), COALESCE(assigned_to,''), COALESCE(assigned_to_name,''),
       estimated_duration, tags, details, created_at, updated_at, completed_at`

// buildItemsQuery bounds due_date by the inclusive range and adds the optional
// equality filters in a fixed order.
func buildItemsQuery(p models.FetchParams) (string, []interface{}) {
	query := `SELECT ` + itemColumns + ` FROM scheduler_items`

	conditions := []string{"due_date >= $1", "due_date <= $2"}
	args := []interface{}{p.StartISO(), p.EndISO()}
	argID := 3

	if p.AssignedTo != nil && *p.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argID))
		args = append(args, *p.AssignedTo)
		argID++
	}
	if p.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, string(*p.Status))
		argID++
	}
	if p.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, string(*p.Priority))
		argID++
	}
	if p.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argID))
		args = append(args, string(*p.Type))
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY due_date ASC, id ASC"
	return query, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem reads one row. due_date is a DATE column, which the driver hands
// back as midnight UTC; it is rebuilt as midnight of the same day in loc.
func scanItem(row rowScanner, loc *time.Location) (models.SchedulerItem, error) {
	var (
		it        models.SchedulerItem
		duration  sql.NullInt64
		details   []byte
		completed sql.NullTime
	)
	if err := row.Scan(
		&it.ID, &it.Type, &it.Title, &it.Description, &it.Status, &it.Priority, &it.DueDate,
		&it.DueTime, &it.AssignedTo, &it.AssignedToName,
		&duration, pq.Array(&it.Tags), &details, &it.CreatedAt, &it.UpdatedAt, &completed,
	); err != nil {
		return models.SchedulerItem{}, err
	}
	if !it.DueDate.IsZero() {
		y, m, d := it.DueDate.Date()
		it.DueDate = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if duration.Valid {
		v := int(duration.Int64)
		it.EstimatedDuration = &v
	}
	if completed.Valid {
		t := completed.Time
		it.CompletedAt = &t
	}
	if len(details) == 0 {
		details = []byte("{}")
	}
	d, err := models.DecodeDetails(it.Type, details)
	if err != nil {
		return models.SchedulerItem{}, fmt.Errorf("item %q: %w", it.ID, err)
	}
	it.Details = d
	return it, nil
}

func (r *schedulerItemRepository) GetSchedulerItems(ctx context.Context, params models.FetchParams) ([]models.SchedulerItem, error) {
	query, args := buildItemsQuery(params)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.SchedulerItem
	for rows.Next() {
		it, err := scanItem(rows, r.loc)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// buildPendingWriteUpdate turns a logged mutation into one UPDATE. completed_at
// always takes the value the item had after the mutation.
func buildPendingWriteUpdate(w models.PendingWrite) (string, []interface{}) {
	sets := []string{}
	args := []interface{}{}
	argID := 1
	set := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, argID))
		args = append(args, v)
		argID++
	}

	p := w.Patch
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Priority != nil {
		set("priority", string(*p.Priority))
	}
	if p.DueDate != nil {
		set("due_date", p.DueDate.Format(models.DateLayout))
	}
	if p.DueTime != nil {
		set("due_time", *p.DueTime)
	}
	if p.AssignedTo != nil {
		set("assigned_to", *p.AssignedTo)
	}
	if p.AssignedToName != nil {
		set("assigned_to_name", *p.AssignedToName)
	}
	if p.EstimatedDuration != nil {
		set("estimated_duration", *p.EstimatedDuration)
	}
	if p.Tags != nil {
		set("tags", pq.Array(*p.Tags))
	}
	var completed *time.Time
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		completed = &t
	}
	set("completed_at", completed)
	set("updated_at", w.At)

	query := "UPDATE scheduler_items SET " + strings.Join(sets, ", ") + fmt.Sprintf(" WHERE id=$%d", argID)
	args = append(args, w.ItemID)
	return query, args
}

func (r *schedulerItemRepository) ApplyPendingWrite(ctx context.Context, w models.PendingWrite) error {
	query, args := buildPendingWriteUpdate(w)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("scheduler item %s: %w", w.ItemID, ErrNotFound)
	}
	return nil
}

// detailsJSON is what goes into the details column: the variant fields only.
func detailsJSON(d models.ItemDetails) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (r *schedulerItemRepository) Upsert(ctx context.Context, it models.SchedulerItem) error {
	details, err := detailsJSON(it.Details)
	if err != nil {
		return err
	}
	var duration interface{}
	if it.EstimatedDuration != nil {
		duration = *it.EstimatedDuration
	}
	query := `
		INSERT INTO scheduler_items (
			id, type, title, description, status, priority, due_date, due_time,
			assigned_to, assigned_to_name, estimated_duration, tags, details,
			created_at, updated_at, completed_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			type=EXCLUDED.type, title=EXCLUDED.title, description=EXCLUDED.description,
			status=EXCLUDED.status, priority=EXCLUDED.priority, due_date=EXCLUDED.due_date,
			due_time=EXCLUDED.due_time, assigned_to=EXCLUDED.assigned_to,
			assigned_to_name=EXCLUDED.assigned_to_name, estimated_duration=EXCLUDED.estimated_duration,
			tags=EXCLUDED.tags, details=EXCLUDED.details, updated_at=EXCLUDED.updated_at,
			completed_at=EXCLUDED.completed_at`
	_, err = r.db.ExecContext(ctx, query,
		it.ID, string(it.Type), it.Title, it.Description, string(it.Status), string(it.Priority),
		it.DueDate.Format(models.DateLayout), it.DueTime, it.AssignedTo, it.AssignedToName,
		duration, pq.Array(it.Tags), details, it.CreatedAt, it.UpdatedAt, it.CompletedAt,
	)
	return err
}
