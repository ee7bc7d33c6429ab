package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mgdrago/anitmated-to-do-list/domain"
)

//go:embed schema.sql
var schema string

// reorderStep is the spacing between sort_order values assigned by Reorder,
// leaving room for a client to slot a task between two others without a
// full rewrite.
const reorderStep = 100

// Store persists tasks in a SQLite database. A single connection is used
// for every operation, so individual statements never observe each other's
// partial state; multi-statement operations additionally run in
// transactions.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

const taskColumns = "id, title, notes, priority, due_date, tags, is_completed, sort_order, created_at, updated_at, deleted_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	var deletedAt sql.NullInt64
	err := row.Scan(&t.ID, &t.Title, &t.Notes, &t.Priority, &t.DueDate, &t.Tags,
		&t.IsCompleted, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Task{}, err
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Int64
	}
	return t, nil
}

// List returns every non-deleted task matching all supplied filter fields.
// Results order incomplete tasks before completed ones, then ascending
// sort_order, then tasks with a due date before those without, then
// ascending due date, with id as the final tie-breaker. An empty filter
// matches everything; no matches yields an empty (non-nil) slice.
func (s *Store) List(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	var b strings.Builder
	b.WriteString("SELECT " + taskColumns + " FROM todos WHERE deleted_at IS NULL")
	args := make([]any, 0, 4)

	switch f.Status {
	case domain.StatusActive:
		b.WriteString(" AND is_completed = 0")
	case domain.StatusCompleted:
		b.WriteString(" AND is_completed = 1")
	}
	if f.Priority != "" {
		b.WriteString(" AND priority = ?")
		args = append(args, f.Priority)
	}
	if f.Query != "" {
		// SQLite LIKE is case-insensitive for ASCII, which is the
		// store's substring search contract.
		b.WriteString(" AND (title LIKE ? OR notes LIKE ?)")
		pattern := "%" + f.Query + "%"
		args = append(args, pattern, pattern)
	}
	b.WriteString(" ORDER BY is_completed ASC, sort_order ASC, (due_date = '') ASC, due_date ASC, id ASC")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		// Tag membership is whole-token; matching the comma-joined
		// column with LIKE would hit substrings, so filter here.
		if f.Tag != "" && !domain.HasTag(t.Tags, f.Tag) {
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create inserts a new task, assigning its id, timestamps and default
// sort_order. A missing or blank title is a domain.ValidationError.
func (s *Store) Create(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}
	now := nextTimestamp()
	t := domain.Task{
		Title:       in.Title,
		Notes:       in.Notes,
		Priority:    domain.NormalizePriority(in.Priority),
		DueDate:     in.DueDate,
		Tags:        string(in.Tags),
		IsCompleted: in.IsCompleted,
		SortOrder:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.SortOrder != nil {
		t.SortOrder = *in.SortOrder
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (title, notes, priority, due_date, tags, is_completed, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.Notes, t.Priority, t.DueDate, t.Tags, t.IsCompleted, t.SortOrder, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return domain.Task{}, err
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// Get returns the task with the given id regardless of its soft-delete
// state, or domain.ErrNotFound if no such row exists.
func (s *Store) Get(ctx context.Context, id int64) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM todos WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// Update merges the supplied patch over the stored row and re-stamps
// updated_at. Fields absent from the patch keep their prior values.
// Returns domain.ErrNotFound if the id does not exist.
func (s *Store) Update(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM todos WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}

	patch.Apply(&t)
	t.UpdatedAt = nextTimestamp()

	_, err = tx.ExecContext(ctx, `
		UPDATE todos SET title = ?, notes = ?, priority = ?, due_date = ?, tags = ?,
			is_completed = ?, sort_order = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Notes, t.Priority, t.DueDate, t.Tags, t.IsCompleted, t.SortOrder, t.UpdatedAt, id)
	if err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// Reorder assigns each listed id a sort_order following its position in
// ids, spaced by reorderStep, and refreshes updated_at on every touched
// row. Ids not listed keep their prior sort_order. The rewrite is a single
// transaction, so readers never observe a partial reorder.
func (s *Store) Reorder(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE todos SET sort_order = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, int64(i+1)*reorderStep, nextTimestamp(), id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SoftDelete stamps deleted_at on the task, hiding it from List while
// keeping the row until Purge. Deleting a missing or already-deleted id is
// a no-op.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	now := nextTimestamp()
	_, err := s.db.ExecContext(ctx,
		"UPDATE todos SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		now, now, id)
	return err
}

// Purge permanently removes every soft-deleted row and reports how many
// were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE deleted_at IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
