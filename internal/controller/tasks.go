package controller

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"tasker/internal/cache"
	"tasker/internal/mailer"
	"tasker/internal/models"
	"tasker/internal/repository"
	"tasker/pkg/logger"
)

// Controller holds the services behind the HTTP surface.
type Controller struct {
	db    *sql.DB
	tasks *repository.TaskRepository
	mail  *mailer.Writer
	cache *cache.Cache
	from  string

	listGroup singleflight.Group
}

func New(db *sql.DB, tasks *repository.TaskRepository, mail *mailer.Writer, c *cache.Cache, from string) *Controller {
	return &Controller{db: db, tasks: tasks, mail: mail, cache: c, from: from}
}

// GetTasks returns all tasks as display views, ordered by due date
// (cache-first as raw bytes; concurrent misses collapse via singleflight).
func (ct *Controller) GetTasks(c *gin.Context) {
	ctx := c.Request.Context()

	if b, ok := ct.cache.GetTaskList(ctx); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	v, err, _ := ct.listGroup.Do("tasks", func() (interface{}, error) {
		return ct.renderTaskList(context.Background())
	})
	if err != nil {
		if ctx.Err() != nil || isContextErr(err) {
			return
		}
		logger.Error(ctx, "GetTasks failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tasks"})
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	go ct.cache.SetTaskList(context.Background(), b)
}

func (ct *Controller) renderTaskList(ctx context.Context) ([]byte, error) {
	tasks, err := ct.tasks.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		view, err := t.View(now)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return json.Marshal(views)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// AddTask creates a task. Failures come back as success=false with a message,
// not as an error status.
func (ct *Controller) AddTask(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		DueDate       string `json:"due_date"`
		EmailReminder bool   `json:"email_reminder"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if _, err := ct.tasks.Create(ctx, body.Title, body.Description, body.DueDate, body.EmailReminder); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	ct.cache.InvalidateTaskList(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task added successfully!"})
}

// CompleteTask flips a task's completed flag. Unknown ids are a no-op.
func (ct *Controller) CompleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return
	}
	if err := ct.tasks.ToggleCompleted(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	ct.cache.InvalidateTaskList(ctx)
	c.Status(http.StatusNoContent)
}

// DeleteTask removes a task. Unknown ids are a no-op.
func (ct *Controller) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return
	}
	if err := ct.tasks.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	ct.cache.InvalidateTaskList(ctx)
	c.Status(http.StatusNoContent)
}

// Health returns 200 if the process is alive.
func (ct *Controller) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the database is reachable.
func (ct *Controller) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := ct.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
		return
	}
	c.String(http.StatusOK, "OK")
}
