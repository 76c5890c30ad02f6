package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tasker/internal/models"
	"tasker/pkg/logger"
)

// TaskRepository handles durable CRUD for tasks.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and returns its id. Title and a parsable due date
// are required; the date is validated here so a malformed value can never
// reach the table and break listing later.
func (r *TaskRepository) Create(ctx context.Context, title, description, dueDate string, emailReminder bool) (int64, error) {
	if title == "" {
		return 0, fmt.Errorf("title is required")
	}
	if _, err := time.Parse(models.DueDateLayout, dueDate); err != nil {
		return 0, fmt.Errorf("invalid due date %q, expected %s", dueDate, models.DueDateLayout)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO task (title, description, due_date, completed, created_at, email_reminder)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		title, description, dueDate, time.Now().UTC().Format(time.RFC3339), emailReminder)
	if err != nil {
		logger.Error(ctx, "Repository Create failed", "error", err)
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task id: %w", err)
	}
	return id, nil
}

// ListOrdered returns all tasks ascending by due date, compared as timestamps.
func (r *TaskRepository) ListOrdered(ctx context.Context) ([]models.Task, error) {
	return r.list(ctx, `SELECT id, title, description, due_date, completed, created_at, email_reminder
		FROM task ORDER BY datetime(due_date) ASC`)
}

// ListEmailReminder returns tasks flagged for email reminders, for bulk send.
func (r *TaskRepository) ListEmailReminder(ctx context.Context) ([]models.Task, error) {
	return r.list(ctx, `SELECT id, title, description, due_date, completed, created_at, email_reminder
		FROM task WHERE email_reminder = 1 ORDER BY datetime(due_date) ASC`)
}

func (r *TaskRepository) list(ctx context.Context, query string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error(ctx, "Repository list failed", "error", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan task failed", "error", err)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Get returns the task with the given id, or sql.ErrNoRows if absent.
func (r *TaskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, due_date, completed, created_at, email_reminder
		 FROM task WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// ToggleCompleted flips the completed flag. Unknown ids are a silent no-op.
func (r *TaskRepository) ToggleCompleted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE task SET completed = NOT completed WHERE id = ?`, id)
	if err != nil {
		logger.Error(ctx, "Repository ToggleCompleted failed", "error", err, "id", id)
		return fmt.Errorf("toggle task %d: %w", id, err)
	}
	return nil
}

// Delete removes a task. Unknown ids are a silent no-op.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM task WHERE id = ?`, id)
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var completed, reminder int
	var createdAt string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &completed, &createdAt, &reminder); err != nil {
		return t, err
	}
	t.Completed = completed == 1
	t.EmailReminder = reminder == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}
