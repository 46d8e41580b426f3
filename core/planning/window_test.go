package planning

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/task"
)

func TestResolveWindow(t *testing.T) {
	created := time.Date(2024, time.March, 4, 10, 30, 0, 0, time.Local)
	deadline := time.Date(2024, time.April, 1, 18, 0, 0, 0, time.Local)
	taskStart := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.Local)
	taskDue := time.Date(2024, time.March, 20, 17, 0, 0, 0, time.Local)

	obj := objective.Objective{CreatedAt: created}
	objWithDeadline := objective.Objective{CreatedAt: created, Deadline: null.TimeFrom(deadline)}

	tests := []struct {
		name    string
		task    task.Task
		obj     objective.Objective
		want    Window
		wantErr error
	}{
		{
			name: "explicit task dates win",
			task: task.Task{StartAt: null.TimeFrom(taskStart), DueDate: null.TimeFrom(taskDue)},
			obj:  objWithDeadline,
			want: Window{Start: taskStart, End: taskDue},
		},
		{
			name: "start falls back to the objective creation date",
			task: task.Task{DueDate: null.TimeFrom(taskDue)},
			obj:  obj,
			want: Window{Start: created, End: taskDue},
		},
		{
			name: "end falls back to the objective deadline",
			task: task.Task{StartAt: null.TimeFrom(taskStart)},
			obj:  objWithDeadline,
			want: Window{Start: taskStart, End: deadline},
		},
		{
			name: "end falls back to start plus three weeks",
			task: task.Task{},
			obj:  obj,
			want: Window{Start: created, End: created.AddDate(0, 0, 21)},
		},
		{
			name:    "end equal to start is invalid",
			task:    task.Task{StartAt: null.TimeFrom(taskStart), DueDate: null.TimeFrom(taskStart)},
			obj:     obj,
			wantErr: ErrInvalidWindow,
		},
		{
			name:    "end before start is invalid",
			task:    task.Task{StartAt: null.TimeFrom(taskDue), DueDate: null.TimeFrom(taskStart)},
			obj:     obj,
			wantErr: ErrInvalidWindow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWindow(tt.task, tt.obj)
			if err != tt.wantErr {
				t.Fatalf("ResolveWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !got.Start.Equal(tt.want.Start) || !got.End.Equal(tt.want.End) {
				t.Errorf("ResolveWindow() = [%v, %v], want [%v, %v]",
					got.Start, got.End, tt.want.Start, tt.want.End)
			}
		})
	}
}
