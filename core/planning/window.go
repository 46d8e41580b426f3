package planning

import (
	"errors"
	"time"

	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/task"
)

// defaultWindowSpan bounds generation when neither the task nor its
// objective carries an end date.
const defaultWindowSpan = 3 * 7 * 24 * time.Hour

var ErrInvalidWindow = errors.New("window end is not after its start")

// ResolveWindow computes the generation window for t.
// Start falls back from the task's explicit start to the objective's creation
// date; end falls back from the task's due date to the objective's deadline to
// start + 3 weeks.
func ResolveWindow(t task.Task, obj objective.Objective) (Window, error) {
	start := obj.CreatedAt
	if t.StartAt.Valid {
		start = t.StartAt.Time
	}

	var end time.Time
	switch {
	case t.DueDate.Valid:
		end = t.DueDate.Time
	case obj.Deadline.Valid:
		end = obj.Deadline.Time
	default:
		end = start.Add(defaultWindowSpan)
	}

	if !end.After(start) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: start, End: end}, nil
}
