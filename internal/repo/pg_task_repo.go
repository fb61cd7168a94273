package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dom "github.com/hirmezb/tasktracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, user_id, title, description, priority, due_date, completed, category, created_at, updated_at`

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return dom.Task{}, fmt.Errorf("task id: %w", err)
	}
	owner, err := uuid.Parse(t.UserID)
	if err != nil {
		return dom.Task{}, fmt.Errorf("owner id: %w", err)
	}
	query := `
		INSERT INTO tasks (id, user_id, title, description, priority, due_date, completed, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		id, owner, t.Title, t.Description, string(t.Priority), t.DueDate, t.Completed, t.Category,
		t.CreatedAt, t.UpdatedAt,
	))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id string) (dom.Task, error) {
	taskID, owner, ok := parseScope(userID, id)
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRow(ctx, query, taskID, owner))
}

func (r *PGTaskRepo) List(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return []dom.Task{}, nil
	}
	query, args := buildListQuery(owner, f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	taskID, owner, ok := parseScope(t.UserID, t.ID)
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	query := `
		UPDATE tasks SET title = $3, description = $4, priority = $5, due_date = $6,
			completed = $7, category = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		taskID, owner, t.Title, t.Description, string(t.Priority), t.DueDate, t.Completed, t.Category, t.UpdatedAt,
	))
}

func (r *PGTaskRepo) Delete(ctx context.Context, userID, id string) error {
	taskID, owner, ok := parseScope(userID, id)
	if !ok {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildListQuery renders the owner-scoped list query with optional exact-match filters.
func buildListQuery(owner uuid.UUID, f dom.TaskFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{owner}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}
	sb.WriteString(" ORDER BY due_date ASC NULLS LAST, created_at ASC")
	return sb.String(), args
}

// parseScope converts string ids. A malformed id can never match a row.
func parseScope(userID, id string) (taskID, owner uuid.UUID, ok bool) {
	var err error
	if taskID, err = uuid.Parse(id); err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	if owner, err = uuid.Parse(userID); err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return taskID, owner, true
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var (
		t        dom.Task
		id       uuid.UUID
		owner    uuid.UUID
		priority string
	)
	err := row.Scan(&id, &owner, &t.Title, &t.Description, &priority, &t.DueDate,
		&t.Completed, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	t.ID = id.String()
	t.UserID = owner.String()
	t.Priority = dom.Priority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	return t, nil
}
