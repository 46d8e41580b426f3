package task

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core"
)

// Frequency is the closed set of repetition kinds a Task may carry.
// The string codes are stored as-is and must not change.
type Frequency string

const (
	FreqNone            Frequency = ""
	FreqDaily           Frequency = "daily"
	FreqWeekly          Frequency = "weekly"
	FreqFortnightlyEven Frequency = "fortnightly-even"
	FreqFortnightlyOdd  Frequency = "fortnightly-odd"
	FreqMonthly         Frequency = "monthly"
)

var Frequencies = []Frequency{FreqNone, FreqDaily, FreqWeekly, FreqFortnightlyEven, FreqFortnightlyOdd, FreqMonthly}

func (f Frequency) IsValid() bool {
	for _, freq := range Frequencies {
		if f == freq {
			return true
		}
	}
	return false
}

// IsWeekdayBased reports whether f expands against a weekday set.
func (f Frequency) IsWeekdayBased() bool {
	return f == FreqWeekly || f == FreqFortnightlyEven || f == FreqFortnightlyOdd
}

// Weekday is a day of the week, 0=Sunday..6=Saturday.
// The numbering matches the stored provenance metadata and time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func (d Weekday) IsValid() bool { return d >= Sunday && d <= Saturday }

// Matches reports whether t falls on this weekday.
func (d Weekday) Matches(t time.Time) bool { return time.Weekday(d) == t.Weekday() }

// ContainsWeekday reports whether day is in days.
func ContainsWeekday(days []Weekday, day Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

type Task struct {
	ID             string    `json:"id"`
	ObjectiveID    string    `json:"objective_id"`
	AssigneeID     string    `json:"assignee_id,omitempty"` // empty when unassigned
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Frequency      Frequency `json:"frequency"`
	RepeatWeekdays []Weekday `json:"repeat_weekdays,omitempty"`
	StartAt        null.Time `json:"start_at,omitempty"`
	DueDate        null.Time `json:"due_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	ObjectiveID    string    `json:"objective_id" validate:"required"`
	AssigneeID     string    `json:"assignee_id"`
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	Frequency      Frequency `json:"frequency" validate:"freq"`
	RepeatWeekdays []Weekday `json:"repeat_weekdays" validate:"weekdays"`
	StartAt        null.Time `json:"start_at"`
	DueDate        null.Time `json:"due_date"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
// Pointer and null fields distinguish "leave as is" from "clear".
type UpdateTask struct {
	AssigneeID     *string    `json:"assignee_id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Frequency      *Frequency `json:"frequency" validate:"omitempty,freq"`
	RepeatWeekdays []Weekday  `json:"repeat_weekdays" validate:"weekdays"`
	StartAt        *null.Time `json:"start_at"`
	DueDate        *null.Time `json:"due_date"`
}

func (tu *UpdateTask) Validate(origTask Task, validate *validator.Validate) error {
	title := core.CleanString(tu.Title)
	if title != "" {
		tu.Title = title
	} else {
		tu.Title = origTask.Title
	}
	return validate.Struct(tu)
}

// Apply merges the update into t, returning the updated copy.
func (tu UpdateTask) Apply(t Task) Task {
	t.Title = tu.Title
	if tu.Description != nil {
		t.Description = *tu.Description
	}
	if tu.AssigneeID != nil {
		t.AssigneeID = *tu.AssigneeID
	}
	if tu.Frequency != nil {
		t.Frequency = *tu.Frequency
	}
	if tu.RepeatWeekdays != nil {
		t.RepeatWeekdays = tu.RepeatWeekdays
	}
	if tu.StartAt != nil {
		t.StartAt = *tu.StartAt
	}
	if tu.DueDate != nil {
		t.DueDate = *tu.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	return t
}

type QueryFilter struct {
	Search      string `query:"search"`
	ObjectiveID string `query:"objective_id"`
	AssigneeID  string `query:"assignee_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ObjectiveID == "" && qf.AssigneeID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// custom validation tags & texts
var (
	freqTag  = "freq"
	freqText = "invalid frequency"

	weekdaysTag  = "weekdays"
	weekdaysText = "weekdays must be between 0 (Sunday) and 6 (Saturday)"
)

// RegisterValidators registers the task domain validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(freqTag, freqValidation)
	core.RegisterCustomTranslation(validate, translator, freqTag, freqText)

	_ = validate.RegisterValidation(weekdaysTag, weekdaysValidation)
	core.RegisterCustomTranslation(validate, translator, weekdaysTag, weekdaysText)
}

func freqValidation(fl validator.FieldLevel) bool {
	return Frequency(fl.Field().String()).IsValid()
}

func weekdaysValidation(fl validator.FieldLevel) bool {
	days, ok := fl.Field().Interface().([]Weekday)
	if !ok {
		return false
	}
	for _, d := range days {
		if !d.IsValid() {
			return false
		}
	}
	return true
}
