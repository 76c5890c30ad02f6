package controller

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasker/internal/models"
	"tasker/pkg/logger"
)

// GetEmailStatus reports the reminder system's aggregate state plus the most
// recent activity.
func (ct *Controller) GetEmailStatus(c *gin.Context) {
	status := ct.mail.Status()
	c.JSON(http.StatusOK, gin.H{
		"system_status":   status.SystemStatus,
		"status_details":  status,
		"recent_activity": eventsOrEmpty(ct.mail.History(5)),
		"configuration":   "Email writer system ready (demo mode, no real delivery)",
	})
}

// TestEmailConfig records a connection-test event and returns the canned
// result.
func (ct *Controller) TestEmailConfig(c *gin.Context) {
	message, err := ct.mail.TestConnection(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// GetEmailHistory returns the last 20 recorded events, oldest first.
func (ct *Controller) GetEmailHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": eventsOrEmpty(ct.mail.History(20))})
}

// SendBulkReminders records a reminder for every task flagged for email
// reminders and reports how many went through.
func (ct *Controller) SendBulkReminders(c *gin.Context) {
	ctx := c.Request.Context()
	tasks, err := ct.tasks.ListEmailReminder(ctx)
	if err != nil {
		logger.Error(ctx, "Bulk reminders list failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": fmt.Sprintf("Error sending reminders: %v", err)})
		return
	}
	sent := ct.mail.BulkSend(ctx, tasks, ct.from)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sent %d email reminder(s) successfully!", sent),
	})
}

// SendTaskEmail records a reminder for one task to a caller-supplied
// recipient. Rejects unknown task ids and empty recipients without recording
// anything.
func (ct *Controller) SendTaskEmail(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Task not found"})
		return
	}
	task, err := ct.tasks.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Error(ctx, "SendTaskEmail lookup failed", "error", err, "id", id)
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Task not found"})
		return
	}

	var body struct {
		RecipientEmail string `json:"recipient_email"`
		Message        string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RecipientEmail == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Recipient email is required"})
		return
	}

	message, err := ct.mail.SendTaskReminder(ctx, *task, body.RecipientEmail, body.Message)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func eventsOrEmpty(events []models.ReminderEvent) []models.ReminderEvent {
	if events == nil {
		return []models.ReminderEvent{}
	}
	return events
}
