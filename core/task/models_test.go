package task

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core"
)

func newTestValidator() *validator.Validate {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)
	return validate
}

func TestFrequencyIsValid(t *testing.T) {
	tests := []struct {
		freq Frequency
		want bool
	}{
		{FreqNone, true},
		{FreqDaily, true},
		{FreqWeekly, true},
		{FreqFortnightlyEven, true},
		{FreqFortnightlyOdd, true},
		{FreqMonthly, true},
		{Frequency("hourly"), false},
		{Frequency("fortnightly"), false},
	}
	for _, tt := range tests {
		if got := tt.freq.IsValid(); got != tt.want {
			t.Errorf("Frequency(%q).IsValid() = %v, want %v", tt.freq, got, tt.want)
		}
	}
}

func TestNewTaskValidate(t *testing.T) {
	validate := newTestValidator()

	tests := []struct {
		name    string
		nt      NewTask
		wantErr bool
	}{
		{name: "minimal", nt: NewTask{ObjectiveID: "obj", Title: "Drills"}},
		{name: "missing objective", nt: NewTask{Title: "Drills"}, wantErr: true},
		{name: "missing title", nt: NewTask{ObjectiveID: "obj"}, wantErr: true},
		{name: "bad frequency", nt: NewTask{ObjectiveID: "obj", Title: "Drills", Frequency: "hourly"}, wantErr: true},
		{name: "good frequency", nt: NewTask{ObjectiveID: "obj", Title: "Drills", Frequency: FreqWeekly, RepeatWeekdays: []Weekday{Monday}}},
		{name: "weekday out of range", nt: NewTask{ObjectiveID: "obj", Title: "Drills", Frequency: FreqWeekly, RepeatWeekdays: []Weekday{7}}, wantErr: true},
		{name: "negative weekday", nt: NewTask{ObjectiveID: "obj", Title: "Drills", Frequency: FreqWeekly, RepeatWeekdays: []Weekday{-1}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nt.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateTaskApply(t *testing.T) {
	start := null.TimeFrom(time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC))
	orig := Task{
		ID:             "t1",
		ObjectiveID:    "obj",
		AssigneeID:     "usr",
		Title:          "Drills",
		Description:    "Daily drills",
		Frequency:      FreqDaily,
		RepeatWeekdays: nil,
		StartAt:        start,
	}

	t.Run("unset fields are kept", func(t *testing.T) {
		got := (UpdateTask{Title: "Drills"}).Apply(orig)
		if got.AssigneeID != orig.AssigneeID || got.Description != orig.Description ||
			got.Frequency != orig.Frequency || !got.StartAt.Time.Equal(orig.StartAt.Time) {
			t.Errorf("Apply() dropped unset fields: %+v", got)
		}
	})

	t.Run("set fields replace", func(t *testing.T) {
		freq := FreqWeekly
		descr := ""
		unassigned := ""
		got := (UpdateTask{
			Title:          "New drills",
			Description:    &descr,
			AssigneeID:     &unassigned,
			Frequency:      &freq,
			RepeatWeekdays: []Weekday{Monday, Wednesday},
			StartAt:        &null.Time{},
		}).Apply(orig)

		if got.Title != "New drills" {
			t.Errorf("Title = %q", got.Title)
		}
		if got.Description != "" {
			t.Errorf("Description = %q, want cleared", got.Description)
		}
		if got.AssigneeID != "" {
			t.Errorf("AssigneeID = %q, want cleared", got.AssigneeID)
		}
		if got.Frequency != FreqWeekly {
			t.Errorf("Frequency = %q", got.Frequency)
		}
		if len(got.RepeatWeekdays) != 2 {
			t.Errorf("RepeatWeekdays = %v", got.RepeatWeekdays)
		}
		if got.StartAt.Valid {
			t.Error("StartAt not cleared")
		}
		if got.UpdatedAt.IsZero() {
			t.Error("UpdatedAt not bumped")
		}
	})
}

func TestContainsWeekday(t *testing.T) {
	days := []Weekday{Monday, Wednesday}
	if !ContainsWeekday(days, Monday) {
		t.Error("expected Monday in set")
	}
	if ContainsWeekday(days, Sunday) {
		t.Error("did not expect Sunday in set")
	}
	if ContainsWeekday(nil, Monday) {
		t.Error("empty set contains nothing")
	}
}
