// Package mailer keeps the append-only history of simulated reminder emails.
// Nothing here performs network I/O; a "send" is a log entry plus a JSON file
// write.
package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"tasker/internal/models"
	"tasker/pkg/logger"
)

const testRecipient = "test@example.com"

// ErrPersist marks a failure to write the history file. The event is still
// recorded in memory, but callers must not report the send as durable.
var ErrPersist = errors.New("persist email history")

// historyFile is the on-disk format. next_id is a monotonic counter so event
// ids stay unique even if the history is ever pruned.
type historyFile struct {
	NextID int                    `json:"next_id"`
	Events []models.ReminderEvent `json:"events"`
}

// Writer records simulated reminder sends. Appends are serialized behind a
// mutex and persisted with an atomic temp-file rename.
type Writer struct {
	path string

	mu      sync.Mutex
	history []models.ReminderEvent
	nextID  int
}

// New loads the history at path, or starts empty when the file is missing or
// unreadable.
func New(ctx context.Context, path string) *Writer {
	w := &Writer{path: path, nextID: 1}
	w.load(ctx)
	return w
}

func (w *Writer) load(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn(ctx, "Email history unreadable, starting empty", "path", w.path, "error", err)
		}
		return
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err == nil && file.NextID > 0 {
		w.history = file.Events
		w.nextID = file.NextID
		return
	}

	// Legacy format: a bare array of events. Rebuild the counter from the
	// highest recorded id.
	var events []models.ReminderEvent
	if err := json.Unmarshal(data, &events); err != nil {
		logger.Warn(ctx, "Email history corrupt, starting empty", "path", w.path, "error", err)
		return
	}
	w.history = events
	for _, e := range events {
		if e.ID >= w.nextID {
			w.nextID = e.ID + 1
		}
	}
}

// persist writes the whole history to disk via a temp file and rename, so a
// crash mid-write never truncates the previous copy.
func (w *Writer) persist() error {
	data, err := json.MarshalIndent(historyFile{NextID: w.nextID, Events: w.history}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPersist, err)
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// SendTaskReminder records a simulated reminder email for a task. On success
// the event has status "sent"; if the durable write fails, the event is
// recorded as "failed" with the error text and the caller gets ErrPersist.
func (w *Writer) SendTaskReminder(ctx context.Context, task models.Task, recipientEmail, userMessage string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	description := task.Description
	if description == "" {
		description = "No description"
	}
	event := models.ReminderEvent{
		ID:             w.nextID,
		Timestamp:      time.Now().Format(models.TimestampLayout),
		Type:           models.EventTaskReminder,
		Status:         models.StatusSent,
		TaskID:         task.ID,
		TaskTitle:      task.Title,
		RecipientEmail: recipientEmail,
		UserMessage:    userMessage,
		DueDate:        task.DueDate,
		Description:    description,
	}
	w.nextID++
	w.history = append(w.history, event)

	if err := w.persist(); err != nil {
		// Turn the optimistic record into its failure mirror so the history
		// matches what the caller is told.
		ev := &w.history[len(w.history)-1]
		ev.Status = models.StatusFailed
		ev.Error = err.Error()
		ev.DueDate = ""
		ev.Description = ""
		_ = w.persist()
		logger.Error(ctx, "Task reminder not persisted", "task_id", task.ID, "error", err)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info(ctx, "TASK REMINDER EMAIL SENT",
		"to", recipientEmail,
		"task", task.Title,
		"due", task.DueDate,
		"user_message", userMessage)
	return "Email sent successfully!", nil
}

// TestConnection records a connection-test event. There is no real
// connectivity check in demo mode.
func (w *Writer) TestConnection(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	event := models.ReminderEvent{
		ID:             w.nextID,
		Timestamp:      time.Now().Format(models.TimestampLayout),
		Type:           models.EventConnectionTest,
		Status:         models.StatusSuccess,
		RecipientEmail: testRecipient,
		Message:        "Email configuration test successful",
	}
	w.nextID++
	w.history = append(w.history, event)

	if err := w.persist(); err != nil {
		logger.Error(ctx, "Connection test not persisted", "error", err)
		return "", fmt.Errorf("email configuration test failed: %w", err)
	}
	return "Email configuration test successful! System is ready to send emails.", nil
}

// History returns the last limit events in append order, oldest first.
func (w *Writer) History(limit int) []models.ReminderEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	if limit <= 0 || len(w.history) == 0 {
		return nil
	}
	start := len(w.history) - limit
	if start < 0 {
		start = 0
	}
	out := make([]models.ReminderEvent, len(w.history)-start)
	copy(out, w.history[start:])
	return out
}

// Status scans the full history and returns aggregate counters.
func (w *Writer) Status() models.EmailStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := models.EmailStatus{
		TotalEmails:  len(w.history),
		LastActivity: "No activity",
		SystemStatus: "ready",
	}
	for _, e := range w.history {
		switch e.Status {
		case models.StatusSent:
			status.SuccessfulEmails++
		case models.StatusFailed:
			status.FailedEmails++
		}
	}
	if len(w.history) > 0 {
		status.LastActivity = w.history[len(w.history)-1].Timestamp
	}
	if status.SuccessfulEmails > 0 {
		status.SystemStatus = "active"
	}
	return status
}

// BulkSend records a reminder for every given task with a fixed sender and
// message, continuing past individual failures. Returns the number sent.
func (w *Writer) BulkSend(ctx context.Context, tasks []models.Task, from string) int {
	sent := 0
	for _, task := range tasks {
		if _, err := w.SendTaskReminder(ctx, task, from, "Automatic task reminder"); err == nil {
			sent++
		}
	}
	return sent
}
