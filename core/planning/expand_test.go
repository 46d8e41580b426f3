package planning

import (
	"testing"
	"time"

	"github.com/mwongozo/backend/core/task"
)

// 2024-01-01 is a Monday in ISO week 1 (odd); 2024-01-08 opens week 2 (even).
func dt(day, hour, min int) time.Time {
	return time.Date(2024, time.January, day, hour, min, 0, 0, time.Local)
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		w    Window
		freq task.Frequency
		days []task.Weekday
		want []Occurrence
	}{
		{
			name: "none yields the window verbatim",
			w:    Window{Start: dt(1, 8, 0), End: dt(3, 8, 0)},
			freq: task.FreqNone,
			want: []Occurrence{{dt(1, 8, 0), dt(3, 8, 0)}},
		},
		{
			name: "daily stops strictly before the window end",
			w:    Window{Start: dt(1, 8, 0), End: dt(3, 8, 0)},
			freq: task.FreqDaily,
			want: []Occurrence{
				{dt(1, 8, 0), time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)},
				{dt(2, 0, 0), time.Date(2024, 1, 2, 23, 59, 59, 0, time.Local)},
			},
		},
		{
			name: "daily single day",
			w:    Window{Start: dt(1, 8, 0), End: time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)},
			freq: task.FreqDaily,
			want: []Occurrence{{dt(1, 8, 0), time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)}},
		},
		{
			name: "weekly filters on weekdays and keeps times of day",
			w:    Window{Start: dt(1, 9, 0), End: dt(14, 17, 0)},
			freq: task.FreqWeekly,
			days: []task.Weekday{task.Monday, task.Wednesday},
			want: []Occurrence{
				{dt(1, 9, 0), dt(1, 17, 0)},
				{dt(3, 9, 0), dt(3, 17, 0)},
				{dt(8, 9, 0), dt(8, 17, 0)},
				{dt(10, 9, 0), dt(10, 17, 0)},
			},
		},
		{
			name: "weekly clamps an inverted span to the day end",
			w:    Window{Start: dt(1, 9, 0), End: dt(8, 8, 0)},
			freq: task.FreqWeekly,
			days: []task.Weekday{task.Monday},
			// Jan 8 09:00 falls after the window end and is not emitted
			want: []Occurrence{{dt(1, 9, 0), time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)}},
		},
		{
			name: "weekly final day ends exactly at the window end",
			w:    Window{Start: dt(1, 9, 0), End: dt(8, 9, 0)},
			freq: task.FreqWeekly,
			days: []task.Weekday{task.Monday},
			want: []Occurrence{
				{dt(1, 9, 0), time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)},
				{dt(8, 9, 0), dt(8, 9, 0)}, // verbatim, no clamping
			},
		},
		{
			name: "weekly same-day window yields exactly one occurrence",
			w:    Window{Start: dt(1, 9, 0), End: dt(1, 17, 0)},
			freq: task.FreqWeekly,
			days: []task.Weekday{task.Monday},
			want: []Occurrence{{dt(1, 9, 0), dt(1, 17, 0)}},
		},
		{
			name: "weekly with no matching day yields empty",
			w:    Window{Start: dt(1, 9, 0), End: dt(2, 17, 0)},
			freq: task.FreqWeekly,
			days: []task.Weekday{task.Saturday},
			want: nil,
		},
		{
			name: "weekly with empty weekday set expands every day",
			w:    Window{Start: dt(1, 9, 0), End: dt(3, 17, 0)},
			freq: task.FreqWeekly,
			want: []Occurrence{
				{dt(1, 9, 0), dt(1, 17, 0)},
				{dt(2, 9, 0), dt(2, 17, 0)},
				{dt(3, 9, 0), dt(3, 17, 0)},
			},
		},
		{
			name: "fortnightly-even skips odd ISO weeks",
			w:    Window{Start: dt(1, 9, 0), End: dt(7, 17, 0)},
			freq: task.FreqFortnightlyEven,
			days: []task.Weekday{task.Monday},
			want: nil,
		},
		{
			name: "fortnightly-even matches even ISO weeks",
			w:    Window{Start: dt(1, 9, 0), End: dt(14, 17, 0)},
			freq: task.FreqFortnightlyEven,
			days: []task.Weekday{task.Monday},
			want: []Occurrence{{dt(8, 9, 0), dt(8, 17, 0)}},
		},
		{
			name: "fortnightly-odd matches odd ISO weeks",
			w:    Window{Start: dt(1, 9, 0), End: dt(14, 17, 0)},
			freq: task.FreqFortnightlyOdd,
			days: []task.Weekday{task.Monday},
			want: []Occurrence{{dt(1, 9, 0), dt(1, 17, 0)}},
		},
		{
			name: "fortnightly clamps the final day instead of ending verbatim",
			w:    Window{Start: dt(1, 9, 0), End: dt(15, 9, 0)},
			freq: task.FreqFortnightlyOdd,
			days: []task.Weekday{task.Monday},
			want: []Occurrence{
				{dt(1, 9, 0), time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)},
				{dt(15, 9, 0), time.Date(2024, 1, 15, 23, 59, 59, 0, time.Local)},
			},
		},
		{
			name: "monthly stops strictly before the window end",
			w:    Window{Start: dt(15, 10, 0), End: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local)},
			freq: task.FreqMonthly,
			want: []Occurrence{
				{dt(15, 10, 0), time.Date(2024, 2, 15, 23, 59, 59, 0, time.Local)},
				{time.Date(2024, 2, 15, 0, 0, 0, 0, time.Local), time.Date(2024, 3, 15, 23, 59, 59, 0, time.Local)},
			},
		},
		{
			name: "monthly too short for a single month yields empty",
			w:    Window{Start: dt(15, 10, 0), End: dt(31, 0, 0)},
			freq: task.FreqMonthly,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.w, tt.freq, tt.days)
			if len(got) != len(tt.want) {
				t.Fatalf("Expand() = %d occurrences, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if !got[i].Start.Equal(tt.want[i].Start) || !got[i].End.Equal(tt.want[i].End) {
					t.Errorf("Expand()[%d] = [%v, %v], want [%v, %v]",
						i, got[i].Start, got[i].End, tt.want[i].Start, tt.want[i].End)
				}
			}
		})
	}
}

func TestExpandOrdering(t *testing.T) {
	w := Window{Start: dt(1, 9, 0), End: dt(28, 17, 0)}
	occs := Expand(w, task.FreqWeekly, []task.Weekday{task.Monday, task.Thursday})
	for i := 1; i < len(occs); i++ {
		if !occs[i].Start.After(occs[i-1].Start) {
			t.Errorf("occurrence %d (%v) is not after occurrence %d (%v)",
				i, occs[i].Start, i-1, occs[i-1].Start)
		}
	}
}
