package routes

import (
	"github.com/gin-gonic/gin"

	"tasker/internal/controller"
	"tasker/internal/middleware"
)

// Router wires the HTTP surface. Route paths mirror the original app so the
// stock frontend keeps working.
func Router(ct *controller.Controller) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	// Health for load balancers and probes
	router.GET("/health", ct.Health)
	router.GET("/ready", ct.Ready)

	// Task store
	router.GET("/get_tasks", ct.GetTasks)
	router.POST("/add_task", ct.AddTask)
	router.POST("/complete_task/:id", ct.CompleteTask)
	router.POST("/delete_task/:id", ct.DeleteTask)

	// Reminder log
	router.GET("/get_email_status", ct.GetEmailStatus)
	router.GET("/test_email_config", ct.TestEmailConfig)
	router.GET("/get_email_history", ct.GetEmailHistory)
	router.GET("/send_bulk_reminders", ct.SendBulkReminders)
	router.POST("/send_task_email/:id", ct.SendTaskEmail)

	return router
}
