package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/core/task"
	"github.com/taskdeck/taskdeck/internal/data/db"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `id, description, completed, deleted, deleted_by, deleted_reason,
	due_at, created_at, updated_at, priority, source, tags, origin,
	sort_order, indent_level, recurrence_rule`

// Display order: explicit sort order first, then due date ascending with
// undated tasks last, newest created first as the tiebreak.
const taskOrder = `ORDER BY sort_order IS NULL, sort_order ASC,
	due_at IS NULL, due_at ASC, created_at DESC`

// Create persists a new task. Generates an ID and timestamps when unset.
func (s *TaskStore) Create(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	tags, err := marshalTags(t.Tags)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Description, t.Completed, t.Deleted,
		deletedByToNull(t.DeletedBy), toNullString(t.DeletedReason),
		timeToNull(t.DueAt), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
		priorityToNull(t.Priority), toNullString(t.Source), tags,
		originToNull(t.Origin), intToNull(t.SortOrder), intToNull(t.IndentLevel),
		toNullString(t.RecurrenceRule),
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	return t, nil
}

// Get returns a single task by ID.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	t, err := scanTask(row)
	if IsNotFoundError(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks matching the filter in display order.
func (s *TaskStore) List(ctx context.Context, f task.ListFilter) ([]task.Task, error) {
	var where []string
	var args []any

	if !f.IncludeDeleted {
		where = append(where, "deleted = 0")
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " " + taskOrder
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetFiltered returns tasks matching the filter. Slice fields OR within
// themselves and AND against the other fields.
func (s *TaskStore) GetFiltered(ctx context.Context, f task.Filter) ([]task.Task, error) {
	var where []string
	var args []any

	switch {
	case f.DeletedBy != nil && *f.DeletedBy == task.DeletedByUser:
		where = append(where, "deleted = 1", "deleted_by = ?")
		args = append(args, string(task.DeletedByUser))
	case f.DeletedBy != nil:
		// Anything not explicitly removed by the user counts as a
		// system removal.
		where = append(where, "deleted = 1", "(deleted_by IS NULL OR deleted_by != ?)")
		args = append(args, string(task.DeletedByUser))
	case !f.IncludeDeleted:
		where = append(where, "deleted = 0")
	}

	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}

	if f.DateAfter != nil {
		where = append(where, "(due_at >= ? OR (due_at IS NULL AND created_at >= ?))")
		nano := f.DateAfter.UnixNano()
		args = append(args, nano, nano)
	}

	if clause, vals := inClause("source", f.Sources); clause != "" {
		where = append(where, clause)
		args = append(args, vals...)
	}
	if clause, vals := inClause("priority", f.Priorities); clause != "" {
		where = append(where, clause)
		args = append(args, vals...)
	}
	if clause, vals := inClause("origin", f.Origins); clause != "" {
		where = append(where, clause)
		args = append(args, vals...)
	}

	if len(f.Categories) > 0 {
		terms := make([]string, 0, len(f.Categories))
		for _, v := range f.Categories {
			terms = append(terms, "EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value = ?)")
			args = append(args, v)
		}
		where = append(where, "("+strings.Join(terms, " OR ")+")")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " " + taskOrder
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get filtered tasks: %w", err)
	}
	return tasks, nil
}

// Search returns tasks whose description contains the query, case-insensitive.
func (s *TaskStore) Search(ctx context.Context, query string, completed *bool, includeDeleted bool) ([]task.Task, error) {
	where := []string{"description LIKE ? ESCAPE '\\'"}
	args := []any{"%" + escapeLike(query) + "%"}

	if !includeDeleted {
		where = append(where, "deleted = 0")
	}
	if completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *completed)
	}

	sqlQuery := "SELECT " + taskColumns + " FROM tasks WHERE " +
		strings.Join(where, " AND ") + " " + taskOrder

	tasks, err := s.queryTasks(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

// FilterCounts returns store-wide aggregates for the filter bar. The
// grouped maps count incomplete, non-deleted tasks only.
func (s *TaskStore) FilterCounts(ctx context.Context) (task.Counts, error) {
	counts := task.Counts{
		Categories: make(map[string]int),
		Sources:    make(map[string]int),
		Priorities: make(map[string]int),
		Origins:    make(map[string]int),
	}

	conn := s.db.Conn()

	statusQuery := `
		SELECT
			COUNT(CASE WHEN deleted = 0 AND completed = 0 THEN 1 END),
			COUNT(CASE WHEN deleted = 0 AND completed = 1 THEN 1 END),
			COUNT(CASE WHEN deleted = 1 AND deleted_by = 'user' THEN 1 END),
			COUNT(CASE WHEN deleted = 1 AND (deleted_by IS NULL OR deleted_by != 'user') THEN 1 END)
		FROM tasks`
	err := conn.QueryRowContext(ctx, statusQuery).Scan(
		&counts.Todo, &counts.Done, &counts.DeletedByUser, &counts.DeletedByAI)
	if err != nil {
		return task.Counts{}, fmt.Errorf("filter counts: %w", err)
	}

	grouped := []struct {
		column string
		dest   map[string]int
	}{
		{"source", counts.Sources},
		{"priority", counts.Priorities},
		{"origin", counts.Origins},
	}
	for _, g := range grouped {
		query := fmt.Sprintf(
			"SELECT %s, COUNT(*) FROM tasks WHERE deleted = 0 AND completed = 0 AND %s IS NOT NULL GROUP BY %s",
			g.column, g.column, g.column)
		if err := s.scanGrouped(ctx, query, g.dest); err != nil {
			return task.Counts{}, fmt.Errorf("filter counts %s: %w", g.column, err)
		}
	}

	tagQuery := `
		SELECT json_each.value, COUNT(*)
		FROM tasks, json_each(tasks.tags)
		WHERE tasks.deleted = 0 AND tasks.completed = 0
		GROUP BY json_each.value`
	if err := s.scanGrouped(ctx, tagQuery, counts.Categories); err != nil {
		return task.Counts{}, fmt.Errorf("filter counts tags: %w", err)
	}

	return counts, nil
}

// Update applies a partial update. Returns ErrNotFound for unknown ids.
func (s *TaskStore) Update(ctx context.Context, id string, p task.Patch) error {
	set := []string{"updated_at = ?"}
	args := []any{time.Now().UnixNano()}

	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Completed != nil {
		set = append(set, "completed = ?")
		args = append(args, *p.Completed)
	}
	switch {
	case p.ClearDueAt:
		set = append(set, "due_at = NULL")
	case p.DueAt != nil:
		set = append(set, "due_at = ?")
		args = append(args, p.DueAt.UnixNano())
	}
	switch {
	case p.ClearPriority:
		set = append(set, "priority = NULL")
	case p.Priority != nil:
		set = append(set, "priority = ?")
		args = append(args, string(*p.Priority))
	}
	if p.Tags != nil {
		tags, err := marshalTags(*p.Tags)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		set = append(set, "tags = ?")
		args = append(args, tags)
	}
	switch {
	case p.ClearRecurrence:
		set = append(set, "recurrence_rule = NULL")
	case p.RecurrenceRule != nil:
		set = append(set, "recurrence_rule = ?")
		args = append(args, *p.RecurrenceRule)
	}

	args = append(args, id)
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}

// UpdateSortOrders writes a batch of sort-order and indent assignments in
// one transaction.
func (s *TaskStore) UpdateSortOrders(ctx context.Context, updates []task.SortUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	now := time.Now().UnixNano()
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			_, err := tx.ExecContext(ctx,
				"UPDATE tasks SET sort_order = ?, indent_level = ?, updated_at = ? WHERE id = ?",
				u.SortOrder, u.IndentLevel, now, u.ID)
			if err != nil {
				return fmt.Errorf("update sort order for %s: %w", u.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update sort orders: %w", err)
	}
	return nil
}

// Delete soft-deletes a task as a user removal.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE tasks SET deleted = 1, deleted_by = ?, updated_at = ? WHERE id = ?",
		string(task.DeletedByUser), time.Now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}

// ReplaceID rewrites a local placeholder id with the backend-assigned one.
func (s *TaskStore) ReplaceID(ctx context.Context, oldID, newID string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE tasks SET id = ?, updated_at = ? WHERE id = ?",
		newID, time.Now().UnixNano(), oldID)
	if err != nil {
		return fmt.Errorf("replace task id: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace task id: %w", err)
	}
	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Restore reinstates a previously deleted task with its full prior state.
func (s *TaskStore) Restore(ctx context.Context, t task.Task) error {
	t.Deleted = false
	t.DeletedBy = nil
	t.DeletedReason = nil
	t.UpdatedAt = time.Now()

	tags, err := marshalTags(t.Tags)
	if err != nil {
		return fmt.Errorf("restore task: %w", err)
	}

	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			completed = excluded.completed,
			deleted = 0,
			deleted_by = NULL,
			deleted_reason = NULL,
			due_at = excluded.due_at,
			updated_at = excluded.updated_at,
			priority = excluded.priority,
			source = excluded.source,
			tags = excluded.tags,
			origin = excluded.origin,
			sort_order = excluded.sort_order,
			indent_level = excluded.indent_level,
			recurrence_rule = excluded.recurrence_rule
	`,
		t.ID, t.Description, t.Completed, false,
		nil, nil,
		timeToNull(t.DueAt), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
		priorityToNull(t.Priority), toNullString(t.Source), tags,
		originToNull(t.Origin), intToNull(t.SortOrder), intToNull(t.IndentLevel),
		toNullString(t.RecurrenceRule),
	)
	if err != nil {
		return fmt.Errorf("restore task: %w", err)
	}
	return nil
}

func (s *TaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) scanGrouped(ctx context.Context, query string, dest map[string]int) error {
	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var (
		deletedBy, deletedReason sql.NullString
		priority, source, origin sql.NullString
		recurrence               sql.NullString
		dueAt, sortOrder, indent sql.NullInt64
		createdAt, updatedAt     int64
		tags                     string
	)

	err := row.Scan(
		&t.ID, &t.Description, &t.Completed, &t.Deleted, &deletedBy, &deletedReason,
		&dueAt, &createdAt, &updatedAt, &priority, &source, &tags, &origin,
		&sortOrder, &indent, &recurrence,
	)
	if err != nil {
		return task.Task{}, err
	}

	t.CreatedAt = time.Unix(0, createdAt)
	t.UpdatedAt = time.Unix(0, updatedAt)

	if deletedBy.Valid {
		v := task.DeletedBy(deletedBy.String)
		t.DeletedBy = &v
	}
	t.DeletedReason = fromNullString(deletedReason)
	if dueAt.Valid {
		v := time.Unix(0, dueAt.Int64)
		t.DueAt = &v
	}
	if priority.Valid {
		v := task.Priority(priority.String)
		t.Priority = &v
	}
	t.Source = fromNullString(source)
	if origin.Valid {
		v := task.Origin(origin.String)
		t.Origin = &v
	}
	if sortOrder.Valid {
		v := int(sortOrder.Int64)
		t.SortOrder = &v
	}
	if indent.Valid {
		v := int(indent.Int64)
		t.IndentLevel = &v
	}
	t.RecurrenceRule = fromNullString(recurrence)

	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return task.Task{}, fmt.Errorf("unmarshal tags for %s: %w", t.ID, err)
		}
	}

	return t, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(data), nil
}

func inClause(column string, values []string) (string, []any) {
	if len(values) == 0 {
		return "", nil
	}
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func timeToNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func intToNull(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func deletedByToNull(d *task.DeletedBy) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*d), Valid: true}
}

func priorityToNull(p *task.Priority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func originToNull(o *task.Origin) sql.NullString {
	if o == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*o), Valid: true}
}
