package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// IsValidTaskStatus reports whether s is one of the three known statuses.
// Transitions are free in both directions; there is no forward-only rule.
func IsValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single entry on a user's board. SortOrder is dense and
// unique per user at rest; the column is called sort_order, the API field
// stays "order".
type Task struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           TaskStatus `json:"status"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	SortOrder        int        `json:"order"`
	CreatedAt        time.Time  `json:"created_at"`
	NotificationSent bool       `json:"-"`
}

// TaskPage is one page of a filtered listing.
type TaskPage struct {
	Tasks       []Task `json:"tasks"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}
