package model

import "time"

// Stage/task statuses. "Completed" excludes an entity from overdue scanning.
const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
	StatusPending    = "Pending"
)

// DateRange is a stage/task schedule window. Overdue checks use End.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Task is one unit of work inside a stage.
type Task struct {
	ID                      string     `json:"id"`
	Title                   string     `json:"title"`
	Status                  string     `json:"status"`
	DueDate                 DateRange  `json:"dueDate"`
	LastOverdueNotification *time.Time `json:"lastOverdueNotification,omitempty"`
}

// Stage is one step of a project's task timeline.
type Stage struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Status                  string     `json:"status"`
	DueDate                 DateRange  `json:"dueDate"`
	LastOverdueNotification *time.Time `json:"lastOverdueNotification,omitempty"`
	Tasks                   []Task     `json:"tasks,omitempty"`
}

// Project owns an ordered task timeline. ClientID is the owning client,
// ManagerID the assigned project manager. The timeline is stored as a single
// JSONB document, so stage/task marker updates are written back in one go.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ClientID     string    `json:"clientId"`
	ManagerID    string    `json:"managerId"`
	TaskTimeline []Stage   `json:"taskTimeline"`
	CreatedAt    time.Time `json:"createdAt"`
}
