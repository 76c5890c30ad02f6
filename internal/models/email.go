package models

// Event types and statuses recorded in the reminder history.
const (
	EventTaskReminder   = "task_reminder"
	EventConnectionTest = "connection_test"

	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSuccess = "success"
)

// TimestampLayout is the wall-clock format used for event timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// ReminderEvent is one simulated email attempt or connection test.
type ReminderEvent struct {
	ID             int    `json:"id"`
	Timestamp      string `json:"timestamp"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	TaskID         int64  `json:"task_id,omitempty"`
	TaskTitle      string `json:"task_title,omitempty"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	UserMessage    string `json:"user_message,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	Description    string `json:"description,omitempty"`
	Error          string `json:"error,omitempty"`
	Message        string `json:"message,omitempty"`
}

// EmailStatus is the aggregate view over the whole history.
type EmailStatus struct {
	TotalEmails      int    `json:"total_emails"`
	SuccessfulEmails int    `json:"successful_emails"`
	FailedEmails     int    `json:"failed_emails"`
	LastActivity     string `json:"last_activity"`
	SystemStatus     string `json:"system_status"`
}
