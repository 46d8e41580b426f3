package planning

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mwongozo/backend/core/task"
)

// Event types
const (
	EventTypeTaskGenerated = "task-generated"
)

// Event statuses
const (
	EventStatusToDo = "to-do"
	EventStatusDone = "done"
)

var EventStatuses = []string{EventStatusToDo, EventStatusDone}

// Provenance links a generated event back to the task and rule that produced it.
// Events carrying a task's provenance are owned exclusively by that task's
// regenerate/clear path; no other writer may touch them.
type Provenance struct {
	TaskID         string         `json:"task_id"`
	ObjectiveID    string         `json:"objective_id"`
	Frequency      task.Frequency `json:"frequency"`
	RepeatWeekdays []task.Weekday `json:"repeat_weekdays,omitempty"`
}

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	OwnerID     string     `json:"owner_id"`
	Provenance  Provenance `json:"provenance"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

// Occurrence is one concrete (start, end) pair produced by expanding a recurrence rule.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Window is the [start, end) span within which occurrences are generated.
type Window struct {
	Start time.Time
	End   time.Time
}

// UpdateEvent defines what information may be provided to modify an existing Event.
// Generated timestamps are rule-owned and cannot be edited directly.
type UpdateEvent struct {
	Status string `json:"status" validate:"required,oneof=to-do done"`
}

func (ue UpdateEvent) Validate(validate *validator.Validate) error { return validate.Struct(ue) }
