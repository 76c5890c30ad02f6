package models

import (
	"fmt"
	"time"
)

// Due dates come from an HTML datetime-local input and are stored verbatim.
const (
	DueDateLayout = "2006-01-02T15:04"
	DisplayLayout = "2006-01-02 15:04"
)

// Task represents one to-do item.
type Task struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DueDate       string    `json:"due_date"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
	EmailReminder bool      `json:"email_reminder"`
}

// TaskView is the read-side projection returned by the list endpoint.
type TaskView struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	DueDate       string `json:"due_date"`
	Completed     bool   `json:"completed"`
	EmailReminder bool   `json:"email_reminder"`
	IsOverdue     bool   `json:"is_overdue"`
}

// View derives the display projection for a task. A stored due date that does
// not parse is a hard error; writes are validated, so this only fires for rows
// predating validation.
func (t Task) View(now time.Time) (TaskView, error) {
	due, err := time.ParseInLocation(DueDateLayout, t.DueDate, now.Location())
	if err != nil {
		return TaskView{}, fmt.Errorf("task %d: parse due date %q: %w", t.ID, t.DueDate, err)
	}
	return TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       due.Format(DisplayLayout),
		Completed:     t.Completed,
		EmailReminder: t.EmailReminder,
		IsOverdue:     due.Before(now) && !t.Completed,
	}, nil
}
