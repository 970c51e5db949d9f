package model

// StepEvent is a step-update notification delivered by the subscription
type StepEvent struct {
	StepID string `json:"step_id"`
	TaskID string `json:"task_id,omitempty"`
	Did    string `json:"did,omitempty"`
}

// TaskEvent is a sub-agent task progress notification passed to task callbacks
type TaskEvent struct {
	TaskID  string `json:"task_id"`
	Status  Status `json:"task_status,omitempty"`
	Message string `json:"message,omitempty"`
}

// LogLevel represents task log level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// TaskLog is an observability entry attached to a task
type TaskLog struct {
	TaskID  string   `json:"task_id"`
	Level   LogLevel `json:"level"`
	Message string   `json:"message"`
	Status  Status   `json:"task_status,omitempty"`
}
