package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tasker/internal/controller"
	"tasker/internal/database"
	"tasker/internal/mailer"
	"tasker/internal/models"
	"tasker/internal/repository"
	"tasker/internal/routes"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := repository.NewTaskRepository(db)
	mail := mailer.New(ctx, filepath.Join(t.TempDir(), "email_history.json"))
	ctrl := controller.New(db, repo, mail, nil, "tasker@example.com")
	return routes.Router(ctrl)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func addTask(t *testing.T, router *gin.Engine, title, due string, reminder bool) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/add_task", map[string]interface{}{
		"title":          title,
		"description":    "",
		"due_date":       due,
		"email_reminder": reminder,
	})
	resp := decode(t, w)
	if resp["success"] != true {
		t.Fatalf("add task %q failed: %v", title, resp["message"])
	}
}

func TestAddAndListTasks(t *testing.T) {
	router := newTestServer(t)

	future := time.Now().Add(48 * time.Hour)
	later := time.Now().Add(96 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	// Insert out of chronological order.
	addTask(t, router, "later", later.Format(models.DueDateLayout), false)
	addTask(t, router, "overdue", past.Format(models.DueDateLayout), true)
	addTask(t, router, "soon", future.Format(models.DueDateLayout), false)

	w := doJSON(t, router, http.MethodGet, "/get_tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var views []models.TaskView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(views))
	}
	if views[0].Title != "overdue" || views[1].Title != "soon" || views[2].Title != "later" {
		t.Errorf("wrong order: %s, %s, %s", views[0].Title, views[1].Title, views[2].Title)
	}
	if !views[0].IsOverdue {
		t.Error("past open task should be overdue")
	}
	if views[1].IsOverdue || views[2].IsOverdue {
		t.Error("future tasks should not be overdue")
	}
	if !views[0].EmailReminder || views[1].EmailReminder {
		t.Error("email_reminder flags not preserved")
	}
	for _, v := range views {
		if v.Completed {
			t.Errorf("new task %q should not be completed", v.Title)
		}
	}
}

func TestAddTaskValidation(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/add_task", map[string]interface{}{
		"title": "", "due_date": "2025-03-01T10:00",
	})
	if resp := decode(t, w); resp["success"] != false {
		t.Error("empty title should fail")
	}

	w = doJSON(t, router, http.MethodPost, "/add_task", map[string]interface{}{
		"title": "x", "due_date": "next tuesday",
	})
	if resp := decode(t, w); resp["success"] != false {
		t.Error("malformed due date should fail")
	}

	w = doJSON(t, router, http.MethodGet, "/get_tasks", nil)
	var views []models.TaskView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("rejected tasks were persisted: %+v", views)
	}
}

func TestCompleteAndDelete(t *testing.T) {
	router := newTestServer(t)
	past := time.Now().Add(-24 * time.Hour).Format(models.DueDateLayout)
	addTask(t, router, "chore", past, false)

	w := doJSON(t, router, http.MethodPost, "/complete_task/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("complete status %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/get_tasks", nil)
	var views []models.TaskView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !views[0].Completed {
		t.Error("task not completed")
	}
	// A completed overdue task is not overdue.
	if views[0].IsOverdue {
		t.Error("completed task reported overdue")
	}

	w = doJSON(t, router, http.MethodPost, "/delete_task/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/get_tasks", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("deleted task still listed")
	}

	// Deleting a missing task is still a 204.
	w = doJSON(t, router, http.MethodPost, "/delete_task/99", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete missing task status %d", w.Code)
	}
}

func TestSendTaskEmail(t *testing.T) {
	router := newTestServer(t)
	addTask(t, router, "remind me", time.Now().Add(time.Hour).Format(models.DueDateLayout), false)

	w := doJSON(t, router, http.MethodPost, "/send_task_email/42", map[string]interface{}{
		"recipient_email": "a@b.c",
	})
	resp := decode(t, w)
	if resp["success"] != false || resp["message"] != "Task not found" {
		t.Errorf("unknown id: %v", resp)
	}

	w = doJSON(t, router, http.MethodPost, "/send_task_email/1", map[string]interface{}{})
	resp = decode(t, w)
	if resp["success"] != false || resp["message"] != "Recipient email is required" {
		t.Errorf("empty recipient: %v", resp)
	}

	// Neither rejection recorded an event.
	w = doJSON(t, router, http.MethodGet, "/get_email_history", nil)
	hist := decode(t, w)
	if events := hist["history"].([]interface{}); len(events) != 0 {
		t.Errorf("rejected sends appended events: %v", events)
	}

	w = doJSON(t, router, http.MethodPost, "/send_task_email/1", map[string]interface{}{
		"recipient_email": "a@b.c",
		"message":         "ping",
	})
	resp = decode(t, w)
	if resp["success"] != true || resp["message"] != "Email sent successfully!" {
		t.Errorf("send: %v", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/get_email_history", nil)
	hist = decode(t, w)
	if events := hist["history"].([]interface{}); len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestSendBulkReminders(t *testing.T) {
	router := newTestServer(t)
	due := time.Now().Add(time.Hour).Format(models.DueDateLayout)
	addTask(t, router, "flagged one", due, true)
	addTask(t, router, "not flagged", due, false)
	addTask(t, router, "flagged two", due, true)

	w := doJSON(t, router, http.MethodGet, "/send_bulk_reminders", nil)
	resp := decode(t, w)
	if resp["success"] != true {
		t.Fatalf("bulk send failed: %v", resp)
	}
	if resp["message"] != fmt.Sprintf("Sent %d email reminder(s) successfully!", 2) {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestEmailStatusLifecycle(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/get_email_status", nil)
	resp := decode(t, w)
	if resp["system_status"] != "ready" {
		t.Errorf("initial system_status = %v", resp["system_status"])
	}

	// A connection test records an event but is not a successful send.
	w = doJSON(t, router, http.MethodGet, "/test_email_config", nil)
	if resp := decode(t, w); resp["success"] != true {
		t.Fatalf("test config failed: %v", resp)
	}
	w = doJSON(t, router, http.MethodGet, "/get_email_status", nil)
	resp = decode(t, w)
	if resp["system_status"] != "ready" {
		t.Errorf("system_status after connection test = %v", resp["system_status"])
	}
	details := resp["status_details"].(map[string]interface{})
	if details["total_emails"].(float64) != 1 {
		t.Errorf("total_emails = %v", details["total_emails"])
	}

	addTask(t, router, "remind me", time.Now().Add(time.Hour).Format(models.DueDateLayout), true)
	doJSON(t, router, http.MethodGet, "/send_bulk_reminders", nil)

	w = doJSON(t, router, http.MethodGet, "/get_email_status", nil)
	resp = decode(t, w)
	if resp["system_status"] != "active" {
		t.Errorf("system_status after send = %v", resp["system_status"])
	}
	details = resp["status_details"].(map[string]interface{})
	if details["total_emails"].(float64) != 2 || details["successful_emails"].(float64) != 1 {
		t.Errorf("status details: %v", details)
	}
	if recent := resp["recent_activity"].([]interface{}); len(recent) != 2 {
		t.Errorf("recent_activity len = %d", len(recent))
	}
}

func TestHealthAndReady(t *testing.T) {
	router := newTestServer(t)
	for _, path := range []string{"/health", "/ready"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s status %d", path, w.Code)
		}
	}
}
