package model

// Status represents step or task execution status
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In_Progress"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

// IsTerminal returns true for Completed and Failed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsPending returns true when status is Pending
func (s Status) IsPending() bool {
	return s == StatusPending
}

func (s Status) String() string {
	return string(s)
}
