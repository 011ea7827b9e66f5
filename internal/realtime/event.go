package realtime

import "encoding/json"

// Event names on the realtime channel.
const (
	EventAuthenticate = "authenticate" // client -> server, carries the bearer token
	EventTasksUpdated = "tasks_updated"
	EventTaskDueSoon  = "task_due_soon"
)

// Event is the envelope every frame on the channel carries.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DueSoonPayload is the task_due_soon event body.
type DueSoonPayload struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}
